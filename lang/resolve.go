package lang

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Flat is the inheritance-merged view of a record: the winning expression
// for every field name, in order of first appearance.
type Flat struct {
	ID     string
	Fields []Field
	index  map[string]int
}

// Lookup returns the winning expression for the named field.
func (f *Flat) Lookup(name string) (Value, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}

	return f.Fields[i].Value, true
}

// Names returns the field names in order.
func (f *Flat) Names() []string {
	names := make([]string, len(f.Fields))
	for i, fld := range f.Fields {
		names[i] = fld.Name
	}

	return names
}

// set overlays fld, replacing any expression already held under its name.
func (f *Flat) set(fld Field) {
	if i, ok := f.index[fld.Name]; ok {
		f.Fields[i] = fld

		return
	}

	f.index[fld.Name] = len(f.Fields)
	f.Fields = append(f.Fields, fld)
}

// Pair is a resolved field.
type Pair struct {
	Name  string
	Value string
}

// Resolved is a fully flattened and evaluated record.
type Resolved struct {
	ID     string
	Fields []Pair
}

// Map returns the resolved fields keyed by name.
func (r *Resolved) Map() map[string]string {
	m := make(map[string]string, len(r.Fields))
	for _, p := range r.Fields {
		m[p.Name] = p.Value
	}

	return m
}

// Get returns the resolved value of the named field.
func (r *Resolved) Get(name string) (string, bool) {
	for _, p := range r.Fields {
		if p.Name == name {
			return p.Value, true
		}
	}

	return "", false
}

// Flatten returns the merged field set of the record with the given id.
//
// Parents are merged left to right, each flattened depth-first, and the
// record's own fields are overlaid last. A later expression for a name
// replaces an earlier one.
func (t *Table) Flatten(id string) (*Flat, error) {
	return newEvaluator(t).flatten(id)
}

// Resolve flattens the record with the given id and evaluates every field to
// a string.
//
// Each call works on its own scratch state, so concurrent calls on the same
// table are safe and an error only affects the id being resolved.
func (t *Table) Resolve(ctx context.Context, id string) (*Resolved, error) {
	ev := newEvaluator(t)

	flat, err := ev.flatten(id)
	if err != nil {
		return nil, WrapError(err).With(slog.String("resolving", id))
	}

	res := &Resolved{ID: id, Fields: make([]Pair, 0, len(flat.Fields))}

	for _, fld := range flat.Fields {
		s, err := ev.eval(id, fld.Name)
		if err != nil {
			return nil, WrapError(err).With(slog.String("resolving", id))
		}

		res.Fields = append(res.Fields, Pair{Name: fld.Name, Value: s})
	}

	t.logger.TraceContext(ctx, "record resolved",
		slog.String("id", id),
		slog.Int("field_count", len(res.Fields)))

	return res, nil
}

// Lookup resolves a single field of the record with the given id.
func (t *Table) Lookup(ctx context.Context, id, field string) (string, error) {
	s, err := newEvaluator(t).eval(id, field)
	if err != nil {
		return "", WrapError(err).With(slog.String("resolving", id))
	}

	t.logger.TraceContext(ctx, "field resolved",
		slog.String("id", id),
		slog.String("field", field))

	return s, nil
}

// ResolveAll resolves every record in table order. A record that fails does
// not stop the others; the successful results are returned together with
// the failures joined by errors.Join.
func (t *Table) ResolveAll(ctx context.Context) ([]*Resolved, error) {
	return t.ResolveIDs(ctx, t.order...)
}

// ResolveIDs resolves the given records in order, continuing past failures
// like [Table.ResolveAll].
func (t *Table) ResolveIDs(
	ctx context.Context,
	ids ...string,
) ([]*Resolved, error) {
	var (
		out  = make([]*Resolved, 0, len(ids))
		errs []error
	)

	for _, id := range ids {
		res, err := t.Resolve(ctx, id)
		if err != nil {
			t.logger.DebugContext(ctx, "record unresolved",
				slog.String("id", id),
				slog.Any("error", err))

			errs = append(errs, err)

			continue
		}

		out = append(out, res)
	}

	return out, errors.Join(errs...)
}

// fieldKey identifies one field of one record during evaluation.
type fieldKey struct {
	record string
	field  string
}

// evaluator holds the scratch state of one resolution call.
type evaluator struct {
	table  *Table
	flats  map[string]*Flat
	values map[fieldKey]string
	active map[fieldKey]bool // fields on the current evaluation stack
	chain  map[string]bool   // records on the current flatten stack
}

func newEvaluator(t *Table) *evaluator {
	return &evaluator{
		table:  t,
		flats:  make(map[string]*Flat),
		values: make(map[fieldKey]string),
		active: make(map[fieldKey]bool),
		chain:  make(map[string]bool),
	}
}

func (ev *evaluator) flatten(id string) (*Flat, error) {
	if f, ok := ev.flats[id]; ok {
		return f, nil
	}

	rec, ok := ev.table.Get(id)
	if !ok {
		return nil, ev.table.undefinedRecord(id)
	}

	// Only reachable on tables parsed with WithoutValidation.
	if ev.chain[id] {
		return nil, ErrCyclicDependency.With(slog.String("id", id))
	}

	ev.chain[id] = true
	defer delete(ev.chain, id)

	f := &Flat{ID: id, index: make(map[string]int)}

	for _, parent := range rec.Parents {
		pf, err := ev.flatten(parent)
		if err != nil {
			return nil, err
		}

		for _, fld := range pf.Fields {
			f.set(fld)
		}
	}

	for _, fld := range rec.Fields {
		f.set(fld)
	}

	ev.flats[id] = f

	return f, nil
}

// eval returns the value of field on the flattened record id.
func (ev *evaluator) eval(id, field string) (string, error) {
	key := fieldKey{record: id, field: field}

	if s, ok := ev.values[key]; ok {
		return s, nil
	}

	if ev.active[key] {
		return "", ErrCyclicFieldReference.
			With(slog.String("id", id)).
			With(slog.String("field", field))
	}

	flat, err := ev.flatten(id)
	if err != nil {
		return "", err
	}

	v, ok := flat.Lookup(field)
	if !ok {
		err := ErrUndefinedField.
			With(slog.String("id", id)).
			With(slog.String("field", field))

		if s := suggest(field, flat.Names(), maxSuggestions); len(s) > 0 {
			err = err.With(slog.String("suggest", joinSuggestions(s)))
		}

		return "", err
	}

	ev.active[key] = true
	s, err := ev.evalValue(flat, v)
	delete(ev.active, key)

	if err != nil {
		return "", err
	}

	ev.values[key] = s

	return s, nil
}

func (ev *evaluator) evalValue(flat *Flat, v Value) (string, error) {
	switch v := v.(type) {
	case Literal:
		return string(v), nil

	case SelfID:
		return flat.ID, nil

	case SelfFieldRef:
		return ev.eval(flat.ID, v.Field)

	case CrossFieldRef:
		return ev.eval(v.Record, v.Field)

	case Concat:
		var sb strings.Builder

		for _, part := range v {
			s, err := ev.evalValue(flat, part)
			if err != nil {
				return "", err
			}

			sb.WriteString(s)
		}

		return sb.String(), nil

	case nil:
		return "", ErrEmptyFieldValue.With(slog.String("id", flat.ID))

	default:
		return "", ErrUnexpectedToken.
			With(slog.String("value", v.String()))
	}
}
