// Package log provides a concurrency-safe structured logger built on
// [log/slog].
//
// A [Logger] is created with [Make] and configured with functional options
// applied at creation time:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// [Logger.Wrap] derives a logger with further options and [Logger.With]
// adds attributes to every record. The zero Logger discards everything, so
// components can hold one without checking for nil.
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn] and [LevelError]. Trace sits below slog's Debug and is used
// for parser and builder stage boundaries.
//
// # Output
//
// Records are written as JSON ([FormatJSON], the default) or key=value text
// ([FormatText]). Pretty printing, enabled by default, styles keys, values
// and levels with lipgloss; styling is dropped when the output is not a
// terminal. Pretty JSON is indented and unquoted, meant for reading.
//
// # Default logger
//
// The package functions ([Info], [DebugContext], ...) write through a
// package default logger that [Config] reconfigures. Methods without a
// context argument use [DefaultContextProvider].
package log
