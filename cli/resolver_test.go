package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func flagNamed(name string) *kong.Flag {
	return &kong.Flag{Value: &kong.Value{Name: name}}
}

func TestResolve(t *testing.T) {
	const src = `base:
.log_format 'json'

config: base
.log_level 'debug'
.indent '4'

other:
.foo 'bar'
`

	loader := resolve(context.Background(), "config")

	r, err := loader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("loader: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log_level", "debug"},
		{"log-level", "debug"},
		{"log-format", "json"},
		{"indent", "4"},
		{"foo", nil},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got, err := r.Resolve(nil, nil, flagNamed(tt.flag))
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}

			if got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.flag, got, tt.want)
			}
		})
	}
}

func TestResolve_Ignored(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing record", "other:\n.foo 'bar'\n"},
		{"syntax error", "config\n"},
		{"unresolvable", "config:\n.a .b\n"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := resolve(context.Background(), "config")(strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("loader: %v", err)
			}

			got, err := r.Resolve(nil, nil, flagNamed("foo"))
			if err != nil || got != nil {
				t.Errorf("Resolve = %v, %v; want nil, nil", got, err)
			}
		})
	}
}

func TestLoadJSONC(t *testing.T) {
	const src = `{
	// comments are allowed
	"log_level": "warn",
	"indent": 2, /* so are trailing commas */
}`

	r, err := loadJSONC(strings.NewReader(src))
	if err != nil {
		t.Fatalf("loadJSONC: %v", err)
	}

	got, err := r.Resolve(nil, nil, flagNamed("log-level"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if got != "warn" {
		t.Errorf("log-level = %v, want warn", got)
	}
}
