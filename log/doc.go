// Package log wraps [log/slog] with a small value-type [Logger].
//
// Loggers are configured once at creation using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
// All logging methods take typed [slog.Attr] values rather than loosely
// paired key/value arguments:
//
//	logger.Info("template rendered", slog.String("path", path))
//
// The zero value of [Logger] discards everything, so library code can hold a
// Logger field without requiring callers to configure one.
//
// In addition to the levels defined by [log/slog], the package adds
// [LevelTrace] below [LevelDebug] for very chatty diagnostics such as
// per-node parser and renderer events.
//
// A package-level default logger backs the functions [Trace], [Debug],
// [Info], [Warn], and [Error]. It is reconfigured with [Config].
package log
