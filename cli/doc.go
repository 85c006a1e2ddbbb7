// Package cli contains the command line interface for lrx.
//
// # Usage
//
//	lrx [flags] <command> [args]
//
// The parse command is the default, so "lrx page.yatt" prints the
// declarations of page.yatt.
//
// # Template Options
//
//   - --namespace: namespace words recognized in templates (default yatt)
//   - --default-kind: kind of the implicit leading part (default args)
//   - --legacy-comment: accept "-->" as a comment closer
//   - --body-argument: name of the synthesized body argument (default body)
//   - --max-depth: nesting limit of brackets, entities and elements
//   - -I, --include: directories searched for widgets of other files
//
// # Configuration File
//
// Flag values are read from config.yaml in the user configuration directory
// (for example ~/.config/lrx/config.yaml). The init command writes the
// current values there. Keys are flag names:
//
//	log-level: debug
//	namespace:
//	  - yatt
//	max-depth: 50
//
// Command-line flags override file values.
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: log output format (json, text)
//   - --log-time-layout: timestamp format
//   - --log-caller: include caller information
//   - --log-pretty: colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof
//
//   - --pprof-mode: enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory (default ~/.cache/lrx/pprof)
package cli
