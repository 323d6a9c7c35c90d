// Package profile provides optional runtime profiling for the non compiler.
//
// Profiling uses [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag:
//
//	go build -tags pprof ./...
//	non compile --pprof-mode cpu --pprof-dir ./profiles users.non
//
// Without the tag every operation is a no-op and [Modes] is empty.
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread, and trace. Each writes <mode>.pprof (or trace.out) into
// the output directory; inspect it with:
//
//	go tool pprof -http=: ./profiles/cpu.pprof
package profile
