package lang

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Format writes the records of t in canonical source syntax, preserving
// parents and unevaluated field expressions. Parsing the output yields a
// table equal to t.
func (t *Table) Format(ctx context.Context, w io.Writer) error {
	return t.formatIDs(ctx, w, t.order)
}

func (t *Table) formatIDs(ctx context.Context, w io.Writer, ids []string) error {
	for i, id := range ids {
		rec, ok := t.Get(id)
		if !ok {
			return t.undefinedRecord(id)
		}

		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		if err := formatRecord(w, rec); err != nil {
			return err
		}
	}

	t.logger.TraceContext(ctx, "format complete")

	return nil
}

// FormatResolved writes resolved records in canonical syntax with every
// field reduced to a single literal.
func FormatResolved(w io.Writer, records ...*Resolved) error {
	for i, res := range records {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, "%s:\n", res.ID); err != nil {
			return err
		}

		for _, p := range res.Fields {
			_, err := fmt.Fprintf(w, ".%s %s\n", p.Name, Literal(p.Value))
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// formatRecord writes one record header and its fields.
func formatRecord(w io.Writer, rec *Record) error {
	header := rec.ID + ":"
	if len(rec.Parents) > 0 {
		header += " " + strings.Join(rec.Parents, " ")
	}

	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	for _, fld := range rec.Fields {
		if _, err := fmt.Fprintf(w, ".%s %s\n", fld.Name, fld.Value); err != nil {
			return err
		}
	}

	return nil
}
