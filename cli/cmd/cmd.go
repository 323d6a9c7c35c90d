package cmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/non/lang"
	"github.com/ardnew/non/log"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	stdinKey  struct{}
	stdoutKey struct{}
)

// WithStdio returns a new context.Context whose commands read "-" from in
// and write results to out instead of the process streams. Nil leaves the
// corresponding stream unchanged.
func WithStdio(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	if in != nil {
		ctx = context.WithValue(ctx, stdinKey{}, in)
	}

	if out != nil {
		ctx = context.WithValue(ctx, stdoutKey{}, out)
	}

	return ctx
}

func stdinFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(stdinKey{}).(io.Reader); ok {
		return r
	}

	return os.Stdin
}

func stdoutFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stdoutKey{}).(io.Writer); ok {
		return w
	}

	return os.Stdout
}

// stdinSource is the special source path for reading from stdin.
const stdinSource = "-"

// openSource opens path for reading, or stdin if path is [stdinSource].
func openSource(ctx context.Context, path string) (io.ReadCloser, error) {
	if path == stdinSource {
		return io.NopCloser(stdinFrom(ctx)), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, ErrOpenSource.With(slog.String("path", path)).Wrap(err)
	}

	return file, nil
}

// loadTable parses and validates the source at path.
func loadTable(ctx context.Context, path string) (*lang.Table, error) {
	r, err := openSource(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	table, err := lang.ParseReader(
		ctx,
		bufio.NewReader(r),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("path", path))
	}

	log.DebugContext(ctx, "table parsed",
		slog.String("path", path),
		slog.Int("records", table.Len()),
	)

	return table, nil
}

// logFailures logs each error joined in err on its own line and returns how
// many there were.
func logFailures(ctx context.Context, msg string, err error) int {
	if err == nil {
		return 0
	}

	errs := splitJoined(err)

	for _, e := range errs {
		attrs := []slog.Attr{slog.Any("error", e)}

		var le *lang.Error
		if errors.As(e, &le) {
			if id, ok := le.Attr("resolving"); ok {
				attrs = append([]slog.Attr{slog.String("id", id)}, attrs...)
			}
		}

		log.ErrorContext(ctx, msg, attrs...)
	}

	return len(errs)
}

// splitJoined returns the leaves of a tree of errors combined with
// errors.Join, in order.
func splitJoined(err error) []error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		if err == nil {
			return nil
		}

		return []error{err}
	}

	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, splitJoined(e)...)
	}

	return out
}
