// Package cmd implements the twine subcommands.
//
// Commands receive their environment through [context.Context]: the parsed
// [kong.Context] ([WithContext]), the template search path
// ([WithSearchPath]), the optional SQLite template store ([WithStorePath]),
// and the writer receiving command output ([WithOutput]).
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"

	// FormatsIdentifier is the kong variable identifier containing the
	// comma-separated template output formats.
	FormatsIdentifier = "formats"

	// MaxDepthIdentifier is the kong variable identifier containing the
	// default bound on inheritance and include depth.
	MaxDepthIdentifier = "maxDepth"
)
