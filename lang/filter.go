package lang

import (
	"context"
	"errors"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter is a compiled boolean expression that selects records.
//
// The expression sees the variables
//
//	id       string             the record id
//	parents  []string           declared parents
//	fields   map[string]string  resolved field values
//
// and the function has(name) reporting whether a resolved field exists.
// For example:
//
//	has("mail") && fields.mail endsWith "@example.edu"
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles src into a [Filter].
func CompileFilter(src string) (*Filter, error) {
	program, err := expr.Compile(src, expr.Env(filterEnv(nil, nil)), expr.AsBool())
	if err != nil {
		return nil, ErrInvalidFilter.Wrap(err).
			With(slog.String("filter", src))
	}

	return &Filter{source: src, program: program}, nil
}

// String returns the filter source.
func (f *Filter) String() string { return f.source }

// Match resolves the record with the given id and reports whether it
// satisfies the filter.
func (f *Filter) Match(ctx context.Context, t *Table, id string) (bool, error) {
	res, err := t.Resolve(ctx, id)
	if err != nil {
		return false, err
	}

	rec, _ := t.Get(id)

	out, err := expr.Run(f.program, filterEnv(rec, res))
	if err != nil {
		return false, ErrInvalidFilter.Wrap(err).
			With(slog.String("filter", f.source)).
			With(slog.String("id", id))
	}

	ok, _ := out.(bool)

	return ok, nil
}

// Select returns the ids, in order, of records that satisfy f. With no ids
// given, every record is considered. Records whose resolution or filter
// evaluation fails are skipped and their errors returned joined.
func (t *Table) Select(
	ctx context.Context,
	f *Filter,
	ids ...string,
) ([]string, error) {
	if len(ids) == 0 {
		ids = t.order
	}

	var (
		out  []string
		errs []error
	)

	for _, id := range ids {
		ok, err := f.Match(ctx, t, id)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		if ok {
			out = append(out, id)
		}
	}

	t.logger.TraceContext(ctx, "filter applied",
		slog.String("filter", f.source),
		slog.Int("matched", len(out)),
		slog.Int("considered", len(ids)))

	return out, errors.Join(errs...)
}

// filterEnv builds the expression environment for one record. With nil
// arguments it returns a zero environment suitable for type checking.
func filterEnv(rec *Record, res *Resolved) map[string]any {
	var (
		id      string
		parents = []string{}
		fields  = map[string]string{}
	)

	if rec != nil {
		id = rec.ID
		parents = append(parents, rec.Parents...)
	}

	if res != nil {
		fields = res.Map()
	}

	return map[string]any{
		"id":      id,
		"parents": parents,
		"fields":  fields,
		"has": func(name string) bool {
			_, ok := fields[name]

			return ok
		},
	}
}
