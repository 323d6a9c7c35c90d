package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Profiler describes one profiling session.
type Profiler struct {
	Mode  string // one of Modes(); empty disables profiling
	Path  string // output directory; empty uses a temporary directory
	Quiet bool   // suppress the profiler's own start/stop messages
}

// Start begins profiling and returns a Stopper that ends it.
//
// Without the pprof build tag, or with an empty or unknown Mode, Start
// returns a no-op Stopper. Both Start and Stop are always safe to call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

// Enabled reports whether the binary was built with profiling support.
func Enabled() bool { return len(Modes()) > 0 }

type ignore struct{}

func (ignore) Stop() {}
