// Package profile provides optional runtime profiling for the cfgconv
// command.
//
// Profiling wraps [github.com/pkg/profile] and is compiled in only when the
// "pprof" build tag is set. Without the tag, [Settings.Start] returns a no-op
// and [Modes] reports no modes, so the command line exposes no profiling
// flags.
//
// # Modes
//
// With the pprof tag, the supported modes are:
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     blocking profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      live heap profiling
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution tracing
//
// # Usage
//
//	defer profile.Settings{Mode: "cpu", Dir: "/tmp/profiles"}.Start().Stop()
//
// Profiling a large conversion from the command line:
//
//	go build -tags pprof .
//	./cfgconv --pprof-mode cpu convert -i big.cfg -o /dev/null
//	go tool pprof -http=: ./cfgconv "$XDG_CACHE_HOME/cfgconv/pprof/cpu.pprof"
//
// The default output directory is the pprof subdirectory of the user cache
// directory for cfgconv. Importing this package with the tag also registers
// the [net/http/pprof] handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
