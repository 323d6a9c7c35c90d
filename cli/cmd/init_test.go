package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/non/lang"
)

type initCLI struct {
	LogLevel  string   `default:"info"`
	Tags      []string `default:"a,b"`
	Greeting  string   `default:"it's"`
	Empty     string
	Secret    string `default:"hidden" hidden:""`
	PprofMode string `default:"cpu"`

	Init Init `cmd:""`
}

// parseInit parses args against a CLI with an init command whose
// configuration file is confPath.
func parseInit(t *testing.T, confPath string, args ...string) (*initCLI, context.Context) {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(append([]string{"init"}, args...))
	if err != nil {
		t.Fatal(err)
	}

	return &cli, WithContext(context.Background(), ktx)
}

func TestInit_Run(t *testing.T) {
	tests := []struct {
		name     string
		existing bool
		args     []string
		want     error
	}{
		{"create", false, nil, nil},
		{"overwrite with force", true, []string{"--force"}, nil},
		{"exists without force", true, nil, ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), ConfigIdentifier)

			if tt.existing {
				if err := os.WriteFile(confPath, []byte("old:\n.x 'y'\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			cli, ctx := parseInit(t, confPath, tt.args...)

			err := cli.Init.Run(ctx)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			if tt.want != nil {
				if !errors.Is(err, ErrWriteConfig) {
					t.Errorf("error = %v, want ErrWriteConfig", err)
				}

				return
			}

			data, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			table, err := lang.Parse(context.Background(), string(data))
			if err != nil {
				t.Fatalf("generated file does not parse: %v\n%s", err, data)
			}

			res, err := table.Resolve(context.Background(), ConfigIdentifier)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}

			want := map[string]string{"log_level": "info", "tags": "a,b"}
			if diff := cmp.Diff(want, res.Map()); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInit_BuildTable(t *testing.T) {
	cli, ctx := parseInit(t, filepath.Join(t.TempDir(), ConfigIdentifier),
		"--log-level=debug", "--empty=x")

	table := cli.Init.buildTable(ctx)

	want := lang.NewTable(lang.NewRecord(ConfigIdentifier, nil,
		lang.NewField("log_level", lang.Lit("debug")),
		lang.NewField("tags", lang.Lit("a,b")),
		lang.NewField("empty", lang.Lit("x")),
	))

	if !table.Equal(want) {
		t.Errorf("table mismatch:\ngot  %v\nwant %v", table.IDs(), want.IDs())
	}
}
