package lang

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, src string, opts ...Option) *Table {
	t.Helper()

	table, err := Parse(context.Background(), src, opts...)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return table
}

func TestResolve_Literals(t *testing.T) {
	table := mustParse(t, "a:\n.x 'one'\n.y ''\n.z 'a b c'\n")

	res, err := table.Resolve(context.Background(), "a")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	want := &Resolved{ID: "a", Fields: []Pair{
		{Name: "x", Value: "one"},
		{Name: "y", Value: ""},
		{Name: "z", Value: "a b c"},
	}}

	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("resolved mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_Sample(t *testing.T) {
	table := mustParse(t, sampleSource)

	tests := []struct {
		id   string
		want map[string]string
	}{
		{
			id: "alice",
			want: map[string]string{
				"name":  "Alice",
				"login": "alice",
				"mail":  "alice@example.edu",
			},
		},
		{
			id: "bob",
			want: map[string]string{
				"name":  "Bob",
				"login": "bob",
				"mail":  "bob@example.edu",
			},
		},
		{
			id:   "univ",
			want: map[string]string{"domain": "example.edu"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			res, err := table.Resolve(context.Background(), tt.id)
			if err != nil {
				t.Fatalf("resolve error: %v", err)
			}

			if diff := cmp.Diff(tt.want, res.Map()); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_InheritanceOrder(t *testing.T) {
	src := `p1:
.x 'p1'
.y 'p1'
.only1 'p1'
p2:
.y 'p2'
.z 'p2'
c: p1 p2
.z 'c'
.own 'c'
`
	table := mustParse(t, src)

	res, err := table.Resolve(context.Background(), "c")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	want := []Pair{
		{Name: "x", Value: "p1"},
		{Name: "y", Value: "p2"},
		{Name: "only1", Value: "p1"},
		{Name: "z", Value: "c"},
		{Name: "own", Value: "c"},
	}

	if diff := cmp.Diff(want, res.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_ChildOverridesParent(t *testing.T) {
	table := mustParse(t, "p:\n.x 'parent'\n.y .x\nc: p\n.x 'child'\n")

	got, err := table.Lookup(context.Background(), "c", "y")
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}

	if got != "child" {
		t.Errorf("c.y = %q, want %q", got, "child")
	}
}

func TestResolve_SelfIDAtDepth(t *testing.T) {
	table := mustParse(t, "a:\n.who @\nb: a\nc: b\nd: c\n")

	for _, id := range table.IDs() {
		got, err := table.Lookup(context.Background(), id, "who")
		if err != nil {
			t.Fatalf("lookup %s error: %v", id, err)
		}

		if got != id {
			t.Errorf("%s.who = %q, want %q", id, got, id)
		}
	}
}

func TestResolve_Concat(t *testing.T) {
	table := NewTable(
		NewRecord("r", nil,
			NewField("ab", Cat(Lit("a"), Lit("b"))),
			NewField("nested", Cat(Ref("ab"), Lit("-"), Self(), Ref("ab"))),
		),
	)

	res, err := table.Resolve(context.Background(), "r")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	want := map[string]string{"ab": "ab", "nested": "ab-rab"}
	if diff := cmp.Diff(want, res.Map()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_CrossRefUsesReferencedRecord(t *testing.T) {
	src := `univ:
.domain 'example.edu'
.login 'univ'
alice:
.login 'alice'
.domain 'wrong.example'
.mail .login '@' univ.domain
.who univ.login
`
	table := mustParse(t, src)

	res, err := table.Resolve(context.Background(), "alice")
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	if got, _ := res.Get("mail"); got != "alice@example.edu" {
		t.Errorf("mail = %q, want %q", got, "alice@example.edu")
	}

	if got, _ := res.Get("who"); got != "univ" {
		t.Errorf("who = %q, want %q", got, "univ")
	}
}

func TestResolve_CrossRefSeesInheritedFields(t *testing.T) {
	table := mustParse(t, "base:\n.x @\nderived: base\nuser:\n.y derived.x\n")

	got, err := table.Lookup(context.Background(), "user", "y")
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}

	if got != "derived" {
		t.Errorf("user.y = %q, want %q", got, "derived")
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		id    string
		want  error
		attrs map[string]string
	}{
		{
			name:  "self reference cycle",
			src:   "a:\n.field1 .field2\n.field2 .field1\n",
			id:    "a",
			want:  ErrCyclicFieldReference,
			attrs: map[string]string{"id": "a", "field": "field1", "resolving": "a"},
		},
		{
			name: "field refers to itself",
			src:  "a:\n.x '1' .x\n",
			id:   "a",
			want: ErrCyclicFieldReference,
		},
		{
			name:  "cross record cycle",
			src:   "a:\n.x b.y\nb:\n.y a.x\n",
			id:    "a",
			want:  ErrCyclicFieldReference,
			attrs: map[string]string{"id": "a", "field": "x"},
		},
		{
			name:  "undefined self field",
			src:   "a:\n.name 'x'\n.x .nmae\n",
			id:    "a",
			want:  ErrUndefinedField,
			attrs: map[string]string{"id": "a", "field": "nmae"},
		},
		{
			name:  "undefined cross record",
			src:   "alice:\n.x alcie.y\n",
			id:    "alice",
			want:  ErrUndefinedRecord,
			attrs: map[string]string{"id": "alcie", "resolving": "alice"},
		},
		{
			name:  "undefined cross field",
			src:   "a:\n.x b.y\nb:\n.z 'z'\n",
			id:    "a",
			want:  ErrUndefinedField,
			attrs: map[string]string{"id": "b", "field": "y"},
		},
		{
			name: "unknown record",
			src:  "a:\n",
			id:   "nope",
			want: ErrUndefinedRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := mustParse(t, tt.src)

			res, err := table.Resolve(context.Background(), tt.id)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}

			if res != nil {
				t.Error("expected nil result on error")
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *Error, got %T", err)
			}

			for key, want := range tt.attrs {
				if got, ok := e.Attr(key); !ok || got != want {
					t.Errorf("attr %s = %q, want %q", key, got, want)
				}
			}
		})
	}
}

func TestResolve_UndefinedFieldSuggests(t *testing.T) {
	table := mustParse(t, "a:\n.domain 'd'\n.x .dom\n")

	_, err := table.Resolve(context.Background(), "a")

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}

	if got, _ := e.Attr("suggest"); got != "domain" {
		t.Errorf("suggest = %q, want %q", got, "domain")
	}
}

func TestResolve_UnvalidatedParentCycle(t *testing.T) {
	table := mustParse(t, "a: b\n.x 'a'\nb: a\n", WithoutValidation())

	_, err := table.Resolve(context.Background(), "a")
	if !errors.Is(err, ErrCyclicDependency) {
		t.Errorf("expected ErrCyclicDependency, got %v", err)
	}
}

func TestResolve_SharedReferenceIsNotACycle(t *testing.T) {
	table := mustParse(t, "a:\n.base 'b'\n.x .base\n.y .base .x\n")

	got, err := table.Lookup(context.Background(), "a", "y")
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}

	if got != "bb" {
		t.Errorf("a.y = %q, want %q", got, "bb")
	}
}

func TestResolveAll_ContinuesPastFailure(t *testing.T) {
	src := "good:\n.x '1'\nbad:\n.y .y\nalso:\n.z good.x\n"
	table := mustParse(t, src)

	res, err := table.ResolveAll(context.Background())
	if !errors.Is(err, ErrCyclicFieldReference) {
		t.Fatalf("expected ErrCyclicFieldReference, got %v", err)
	}

	var ids []string
	for _, r := range res {
		ids = append(ids, r.ID)
	}

	if diff := cmp.Diff([]string{"good", "also"}, ids); diff != "" {
		t.Errorf("resolved ids mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveIDs_AllFailuresJoined(t *testing.T) {
	table := mustParse(t, "a:\n.x .x\nb:\n.y .missing\n")

	res, err := table.ResolveIDs(context.Background(), "a", "b", "c")
	if len(res) != 0 {
		t.Errorf("expected no results, got %d", len(res))
	}

	for _, want := range []error{
		ErrCyclicFieldReference,
		ErrUndefinedField,
		ErrUndefinedRecord,
	} {
		if !errors.Is(err, want) {
			t.Errorf("joined error does not contain %v: %v", want, err)
		}
	}
}

func TestResolve_Concurrent(t *testing.T) {
	table := mustParse(t, sampleSource)

	var wg sync.WaitGroup

	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for _, id := range table.IDs() {
				if _, err := table.Resolve(context.Background(), id); err != nil {
					t.Errorf("resolve %s error: %v", id, err)
				}
			}
		}()
	}

	wg.Wait()
}

func TestFlatten(t *testing.T) {
	table := mustParse(t, "p:\n.x 'p'\n.y .x\nc: p\n.x 'c'\n")

	flat, err := table.Flatten("c")
	if err != nil {
		t.Fatalf("flatten error: %v", err)
	}

	if diff := cmp.Diff([]string{"x", "y"}, flat.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	v, ok := flat.Lookup("x")
	if !ok || !EqualValues(v, Lit("c")) {
		t.Errorf("x = %v, want 'c'", v)
	}

	v, ok = flat.Lookup("y")
	if !ok || !EqualValues(v, Ref("x")) {
		t.Errorf("y = %v, want .x", v)
	}

	if _, ok := flat.Lookup("z"); ok {
		t.Error("unexpected field z")
	}
}
