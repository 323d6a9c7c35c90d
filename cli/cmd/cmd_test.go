package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/non/lang"
)

const sampleSource = `alice:
.name 'Alice'
.login @
.mail .login '@' univ.domain

bob: alice
.name 'Bob'

univ:
.domain 'example.edu'
`

// writeSource writes src to a new file in a temporary directory and returns
// its path.
func writeSource(t *testing.T, src string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sample.non")
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestOpenSource_Stdin(t *testing.T) {
	ctx := WithStdio(context.Background(), strings.NewReader("from stdin"), nil)

	r, err := openSource(ctx, stdinSource)
	if err != nil {
		t.Fatalf("openSource: %v", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "from stdin" {
		t.Errorf("read %q, want %q", got, "from stdin")
	}
}

func TestOpenSource_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.non")

	_, err := openSource(context.Background(), path)
	if !errors.Is(err, ErrOpenSource) {
		t.Fatalf("error = %v, want ErrOpenSource", err)
	}

	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestWithStdio_Defaults(t *testing.T) {
	ctx := WithStdio(context.Background(), nil, nil)

	if stdinFrom(ctx) != os.Stdin {
		t.Error("stdin should default to os.Stdin")
	}

	if stdoutFrom(ctx) != os.Stdout {
		t.Error("stdout should default to os.Stdout")
	}

	var buf bytes.Buffer

	ctx = WithStdio(ctx, nil, &buf)
	if stdoutFrom(ctx) != &buf {
		t.Error("stdout not replaced")
	}
}

func TestLoadTable(t *testing.T) {
	table, err := loadTable(context.Background(), writeSource(t, sampleSource))
	if err != nil {
		t.Fatalf("loadTable: %v", err)
	}

	if diff := cmp.Diff([]string{"alice", "bob", "univ"}, table.IDs()); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTable_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"syntax", "a b\n", lang.ErrUnexpectedToken},
		{"undefined parent", "bob: alice\n.x 'y'\n", lang.ErrUndefinedRecord},
		{"parent cycle", "a: b\nb: a\n", lang.ErrCyclicDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSource(t, tt.src)

			_, err := loadTable(context.Background(), path)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			var le *lang.Error
			if !errors.As(err, &le) {
				t.Fatalf("error %T is not a *lang.Error", err)
			}

			if got, _ := le.Attr("path"); got != path {
				t.Errorf("path attr = %q, want %q", got, path)
			}
		})
	}
}

func TestSplitJoined(t *testing.T) {
	a, b, c := errors.New("a"), errors.New("b"), errors.New("c")

	tests := []struct {
		name string
		err  error
		want []error
	}{
		{"nil", nil, nil},
		{"single", a, []error{a}},
		{"flat", errors.Join(a, b), []error{a, b}},
		{"nested", errors.Join(a, errors.Join(b, c)), []error{a, b, c}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitJoined(tt.err)
			if diff := cmp.Diff(tt.want, got, cmp.Comparer(func(x, y error) bool {
				return x == y
			})); diff != "" {
				t.Errorf("splitJoined mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLogFailures(t *testing.T) {
	unresolved := lang.ErrUndefinedField.With(slog.String("resolving", "bob"))
	err := errors.Join(unresolved, errors.Join(errors.New("other")))

	if got := logFailures(context.Background(), "failed", err); got != 2 {
		t.Errorf("logFailures = %d, want 2", got)
	}

	if got := logFailures(context.Background(), "failed", nil); got != 0 {
		t.Errorf("logFailures(nil) = %d, want 0", got)
	}
}
