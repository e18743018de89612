package pipeline

// Option configures a Pipeline at construction.
type Option func(*Pipeline)

// WithName sets the pipeline's display name, reported by Name, String
// and training diagnostics.
func WithName(name string) Option {
	return func(p *Pipeline) {
		p.name = name
	}
}

// WithVerbose sets the verbosity level. Positive values emit structured
// training diagnostics through pkg/log.
func WithVerbose(verbose int) Option {
	return func(p *Pipeline) {
		p.verbose = verbose
	}
}

// WithParallelFanOut runs ensemble members and fan-out branches
// concurrently. Branches own disjoint data and independent stage copies,
// so the fitted results are identical to a sequential run.
func WithParallelFanOut() Option {
	return func(p *Pipeline) {
		p.parallel = true
	}
}
