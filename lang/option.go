package lang

import "github.com/ardnew/non/log"

// options holds parse configuration.
type options struct {
	skipValidate bool
}

// Option configures parsing and resolution behavior of a [Table].
type Option func(*Table)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(t *Table) {
		t.logger = logger
	}
}

// WithoutValidation disables the inheritance check that normally runs after
// parsing. The returned table may then contain undefined parents or parent
// cycles; [Table.Resolve] still reports those as errors.
func WithoutValidation() Option {
	return func(t *Table) {
		t.opts.skipValidate = true
	}
}

// applyOptions applies functional options to a table.
func applyOptions(t *Table, opts ...Option) {
	for _, opt := range opts {
		opt(t)
	}
}
