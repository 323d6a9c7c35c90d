// Package log provides a leveled structured logger built on [log/slog].
//
// A [Logger] is configured once, at creation, with functional options.
// Changing configuration yields a new Logger, so a Logger value may be
// copied and shared between goroutines freely. The zero Logger is valid and
// discards everything, which lets library types hold one without checks.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("table parsed", slog.Int("records", n))
//	logger.Error("resolve failed", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("Kitchen"),
//		log.WithCaller(true))
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Trace sits below slog's Debug and is used
// for per-record parser and resolver progress.
//
// # Output Formats
//
// [FormatText] (default) and [FormatJSON] are supported. With pretty
// printing enabled (the default), text output is column-aligned and colored
// with lipgloss when the writer is a terminal, and JSON output is indented.
//
// # Default Logger
//
// The package-level functions ([Info], [Error], ...) write through a
// process-wide logger on stderr. [Config] reconfigures it; [Default]
// returns it for injection into other packages.
package log
