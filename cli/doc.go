// Package cli contains the command line interface for twine.
//
// # Usage
//
//	twine [flags] <command> [args]
//
// Templates are loaded by name from the SQLite store named by --db, if any,
// then from each --dir directory in order, then from each directory listed
// in the TWINE_PATH environment variable:
//
//	twine -d ./site render page.html -D data.yaml -s 'title="Home"'
//	twine -d ./site fmt tree --resolve page.html
//	twine -d ./site check
//	twine --db ~/.twine.db store import ./site
//	twine -d ./site repl -D data.yaml
//
// The render command is the default, so the first example may also be
// written as "twine -d ./site page.html ...".
//
// # Configuration
//
// Flags may be given in config.yaml or config.json in the user
// configuration directory (for example ~/.config/twine). Top-level YAML keys
// name flags of any command, and a mapping keyed by a command name holds
// flags of that command only:
//
//	log-level: debug
//	dir: [~/templates]
//	render:
//	  sanitize: true
//
// Command-line flags override config file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling flags exist only in binaries built with "-tags pprof":
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default ~/.cache/twine/pprof)
package cli
