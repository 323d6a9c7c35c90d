// Package cli contains the command line interface for non.
//
// # Usage
//
//	non [flags] [compile] <source> [--format F] [--flat] [--id ID ...] [--where EXPR] [--watch]
//	non check <source>
//	non get <source> <id> [field]
//	non repl <source>
//	non init [--force]
//
// Compile is the default command, so "non people.non" prints the records of
// people.non in canonical form. A source of "-" reads standard input.
//
// # Configuration Files
//
// Flag defaults are read from two optional files in the user configuration
// directory (for example ~/.config/non):
//
//   - config.json: a JSON object keyed by flag name with underscores in
//     place of hyphens. Comments and trailing commas are allowed.
//   - config: a source file whose record named "config" is resolved; each
//     of its fields sets the flag of the same name.
//
// For example:
//
//	config:
//	.log_level 'debug'
//	.format 'json'
//	.flat 'true'
//
// Flags given on the command line take precedence. "non init" writes the
// second file from the current flag values.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (text, json)
//   - --log-time-layout: timestamp layout, a time constant name such as
//     RFC3339 or "none"
//   - --[no-]log-caller: include caller information
//   - --[no-]log-pretty: colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o non .
//
//   - --pprof-mode: enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory (default ~/.cache/non/pprof)
//
// # Examples
//
//	# Resolve every record to JSON
//	non compile --flat -f json people.non
//
//	# Records inheriting from alice, recompiled on every save
//	non compile --flat --where '"alice" in parents' --watch people.non
//
//	# One value
//	non get people.non bob mail
package cli
