package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ardnew/non/lang"
)

// Get prints one resolved record, or the value of one of its fields.
type Get struct {
	Format string `default:"canonical" enum:"${formatEnum}" help:"Output format of a record (${enum})." short:"f"`
	Indent int    `default:"2"                              help:"Indent width for JSON and YAML; 0 is compact." short:"i"`

	Source string `arg:""                help:"Source file or '-' for stdin." name:"source"`
	ID     string `arg:""                help:"Record identifier."             name:"id"`
	Field  string `arg:"" optional:""    help:"Field name; prints only its value." name:"field"`
}

// Run executes the get command.
func (g *Get) Run(ctx context.Context) error {
	table, err := loadTable(ctx, g.Source)
	if err != nil {
		return err
	}

	out := stdoutFrom(ctx)

	if g.Field != "" {
		value, err := table.Lookup(ctx, g.ID, g.Field)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(out, value)
		if err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	format, err := lang.ParseFormat(g.Format)
	if err != nil {
		return err
	}

	var buf bytes.Buffer

	err = table.Encode(ctx, &buf, lang.Encoding{
		Format: format,
		Flat:   true,
		Indent: g.Indent,
		IDs:    []string{g.ID},
	})
	if err != nil {
		return err
	}

	_, err = buf.WriteTo(out)
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
