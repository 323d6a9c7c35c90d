package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/ardnew/non/lang"
	"github.com/ardnew/non/log"
)

// outputFileMode is the permission mode of files written with --output.
const outputFileMode os.FileMode = 0o644

// Compile compiles a source file and writes its records.
type Compile struct {
	Format string   `default:"canonical" enum:"${formatEnum}" help:"Output format (${enum})."                                   short:"f"`
	Output string   `                                         help:"Write output to file instead of stdout."                    short:"o" type:"path"`
	Flat   bool     `                                         help:"Resolve inheritance and references into literal values."`
	Indent int      `default:"2"                              help:"Indent width for JSON and YAML; 0 is compact."              short:"i"`
	ID     []string `                                         help:"Only write the given records, in order."                               name:"id"`
	Where  string   `                                         help:"Only write records matching an expression over id, parents, and fields."`
	Watch  bool     `                                         help:"Recompile whenever the source file changes."                short:"w"`

	Source string `arg:"" default:"-" help:"Source file or '-' for stdin." name:"source"`
}

// debounceInterval is the quiet period after a change before recompiling.
const debounceInterval = 100 * time.Millisecond

// Run executes the compile command.
func (c *Compile) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	format, err := lang.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	var filter *lang.Filter

	if c.Where != "" {
		filter, err = lang.CompileFilter(c.Where)
		if err != nil {
			return err
		}
	}

	enc := lang.Encoding{Format: format, Flat: c.Flat, Indent: c.Indent}

	if !c.Watch {
		return c.compile(ctx, enc, filter)
	}

	if c.Source == stdinSource {
		return ErrWatchStdin
	}

	return watch(ctx, c.Source, debounceInterval, func(ctx context.Context) error {
		return c.compile(ctx, enc, filter)
	})
}

// compile runs one full compilation of the source.
func (c *Compile) compile(
	ctx context.Context,
	enc lang.Encoding,
	filter *lang.Filter,
) error {
	table, err := loadTable(ctx, c.Source)
	if err != nil {
		return err
	}

	var failed int

	if len(c.ID) > 0 {
		enc.IDs = c.ID
	}

	if filter != nil {
		matched, err := table.Select(ctx, filter, enc.IDs...)
		failed += logFailures(ctx, "filter failed", err)

		// Non-nil even when nothing matched, which selects no records.
		enc.IDs = append([]string{}, matched...)
	}

	var buf bytes.Buffer

	err = table.Encode(ctx, &buf, enc)

	unresolved, err := splitUnresolved(err)
	failed += logFailures(ctx, "record unresolved", unresolved)

	if err != nil {
		return err
	}

	err = c.write(ctx, buf.Bytes())
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "compiled",
		slog.String("source", c.Source),
		slog.String("format", enc.Format.String()),
		slog.Bool("flat", enc.Flat),
		slog.Int("bytes", buf.Len()),
	)

	if failed > 0 {
		return ErrUnresolved.With(slog.Int("count", failed))
	}

	return nil
}

// write sends data to the output file or stdout.
func (c *Compile) write(ctx context.Context, data []byte) error {
	if c.Output == "" {
		_, err := stdoutFrom(ctx).Write(data)
		if err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	err := os.WriteFile(c.Output, data, outputFileMode)
	if err != nil {
		return ErrWriteOutput.With(slog.String("path", c.Output)).Wrap(err)
	}

	return nil
}

// splitUnresolved separates per-record resolution failures from any other
// error joined in err.
func splitUnresolved(err error) (unresolved, rest error) {
	if err == nil {
		return nil, nil
	}

	var u, r []error

	for _, e := range splitJoined(err) {
		var le *lang.Error
		if errors.As(e, &le) {
			if _, ok := le.Attr("resolving"); ok {
				u = append(u, e)

				continue
			}
		}

		r = append(r, e)
	}

	return errors.Join(u...), errors.Join(r...)
}
