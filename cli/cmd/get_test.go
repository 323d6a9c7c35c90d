package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/non/lang"
)

func TestGet(t *testing.T) {
	path := writeSource(t, sampleSource)

	tests := []struct {
		name string
		cmd  Get
		want string
	}{
		{
			name: "field",
			cmd:  Get{ID: "bob", Field: "mail"},
			want: "bob@example.edu\n",
		},
		{
			name: "inherited self id",
			cmd:  Get{ID: "alice", Field: "login"},
			want: "alice\n",
		},
		{
			name: "record canonical",
			cmd:  Get{Format: "canonical", ID: "univ"},
			want: "univ:\n.domain 'example.edu'\n",
		},
		{
			name: "record json",
			cmd:  Get{Format: "json", ID: "bob"},
			want: `{"bob":{"name":"Bob","login":"bob","mail":"bob@example.edu"}}` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.cmd.Source = path

			err := tt.cmd.Run(WithStdio(context.Background(), nil, &buf))
			if err != nil {
				t.Fatalf("Run: %v", err)
			}

			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGet_Errors(t *testing.T) {
	path := writeSource(t, sampleSource+"\nbroken:\n.x .nope\n")

	tests := []struct {
		name    string
		cmd     Get
		want    error
		suggest string
	}{
		{"unknown record", Get{Format: "json", ID: "bb"}, lang.ErrUndefinedRecord, "bob"},
		{"unknown field", Get{ID: "alice", Field: "phone"}, lang.ErrUndefinedField, ""},
		{"unresolvable record", Get{Format: "canonical", ID: "broken"}, lang.ErrUndefinedField, ""},
		{"unknown format", Get{Format: "toml", ID: "bob"}, lang.ErrUnknownFormat, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.cmd.Source = path

			err := tt.cmd.Run(WithStdio(context.Background(), nil, &buf))
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			if buf.Len() != 0 {
				t.Errorf("unexpected output %q", buf.String())
			}

			if tt.suggest == "" {
				return
			}

			var le *lang.Error
			if !errors.As(err, &le) {
				t.Fatalf("error %T is not a *lang.Error", err)
			}

			if got, _ := le.Attr("suggest"); got != tt.suggest {
				t.Errorf("suggest = %q, want %q", got, tt.suggest)
			}
		})
	}
}
