// Package profile wraps [github.com/pkg/profile] for optional runtime
// profiling of the lrx command.
//
// Profiling is compiled in only with the "pprof" build tag; otherwise
// [Profiler.Start] returns a no-op handle and [Modes] is empty.
//
//	go build -tags pprof .
//	lrx --pprof-mode cpu --pprof-dir ./prof check templates/*.yatt
//	go tool pprof -http=: ./prof/cpu.pprof
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread and trace. Built with the tag, the package also registers
// the [net/http/pprof] handlers on the default mux.
package profile

// Tag is the build tag that enables profiling.
const Tag = `pprof`
