// Package cmd implements the subcommands of the non CLI: compile, check,
// get, repl, and init.
//
// Commands receive their [context.Context] from kong. [WithContext] stores
// the parsed kong.Context in it, and [WithStdio] redirects the standard
// streams, which tests use to drive commands without touching the process.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the configuration file written in the non language. The record with
	// the same name as the file supplies flag defaults.
	ConfigIdentifier = "config"
)
