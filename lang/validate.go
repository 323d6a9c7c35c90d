package lang

import (
	"log/slog"
)

// Validate checks that every parent named by a record in t exists and that
// the parent graph is acyclic.
//
// Records are traversed depth-first in table order. A missing parent fails
// with [ErrUndefinedRecord]; a back edge fails with [ErrCyclicDependency]
// naming the record at which the failing traversal started.
func Validate(t *Table) error {
	const (
		inProgress = iota + 1
		visited
	)

	state := make(map[string]int, t.Len())

	var visit func(root, id string) error

	visit = func(root, id string) error {
		switch state[id] {
		case visited:
			return nil

		case inProgress:
			return ErrCyclicDependency.
				With(slog.String("id", root)).
				With(slog.String("via", id))
		}

		rec, ok := t.Get(id)
		if !ok {
			return t.undefinedRecord(id)
		}

		state[id] = inProgress

		for _, parent := range rec.Parents {
			if !t.Has(parent) {
				return t.undefinedRecord(parent).
					With(slog.String("record", id))
			}

			err := visit(root, parent)
			if err != nil {
				return err
			}
		}

		state[id] = visited

		return nil
	}

	for id := range t.All() {
		err := visit(id, id)
		if err != nil {
			return err
		}
	}

	return nil
}

// Validate checks the parent graph of t. See [Validate].
func (t *Table) Validate() error { return Validate(t) }

// undefinedRecord returns ErrUndefinedRecord for id with suggestions drawn
// from the table.
func (t *Table) undefinedRecord(id string) *Error {
	err := ErrUndefinedRecord.With(slog.String("id", id))

	if s := t.Suggest(id, maxSuggestions); len(s) > 0 {
		err = err.With(slog.String("suggest", joinSuggestions(s)))
	}

	return err
}
