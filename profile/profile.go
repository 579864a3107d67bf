package profile

import "slices"

// Settings selects what to profile and where to write the results.
type Settings struct {
	Mode  string // one of [Modes], or empty to disable profiling
	Dir   string // output directory; empty uses the working directory
	Quiet bool   // suppress the profiler's own log output
}

// Stopper ends a profiling run and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling. The returned Stopper is a no-op when s.Mode is
// empty or unsupported by this build, so callers can always defer Stop.
func (s Settings) Start() Stopper {
	if !s.Enabled() {
		return nop{}
	}

	return start(s)
}

// Enabled reports whether s selects a mode supported by this build.
func (s Settings) Enabled() bool {
	return s.Mode != "" && slices.Contains(Modes(), s.Mode)
}

type nop struct{}

func (nop) Stop() {}
