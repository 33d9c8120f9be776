// Package profile provides optional runtime profiling for twine.
//
// Profiling is compiled in only with the "pprof" build tag, which also
// registers the [net/http/pprof] handlers. Without the tag, [Profiler.Start]
// returns a no-op and [Modes] is empty.
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/twine-prof"}
//	defer p.Start().Stop()
//
// Profiles are written by [github.com/pkg/profile] into Path using names
// matching the mode (cpu.pprof, mem.pprof, ...). Analyze them with
//
//	go tool pprof -http=: /tmp/twine-prof/cpu.pprof
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
