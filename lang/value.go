package lang

import "strings"

// Value is a field value expression.
//
// The concrete types are [Literal], [SelfID], [SelfFieldRef],
// [CrossFieldRef], and [Concat]. String renders the expression in canonical
// source syntax.
type Value interface {
	String() string
	equal(Value) bool
	value()
}

// Literal is a quoted string value.
type Literal string

// SelfID is the '@' value. It evaluates to the id of the record being
// resolved.
type SelfID struct{}

// SelfFieldRef is a '.field' reference to another field of the same
// flattened record.
type SelfFieldRef struct {
	Field string
}

// CrossFieldRef is a 'record.field' reference to a field of another record.
type CrossFieldRef struct {
	Record string
	Field  string
}

// Concat is two or more values whose results are joined with no separator.
type Concat []Value

// Lit returns a [Literal] value.
func Lit(s string) Value { return Literal(s) }

// Self returns the [SelfID] value.
func Self() Value { return SelfID{} }

// Ref returns a [SelfFieldRef] to field.
func Ref(field string) Value { return SelfFieldRef{Field: field} }

// CrossRef returns a [CrossFieldRef] to field on record.
func CrossRef(record, field string) Value {
	return CrossFieldRef{Record: record, Field: field}
}

// Cat returns the concatenation of parts. A single part is returned as-is.
func Cat(parts ...Value) Value {
	if len(parts) == 1 {
		return parts[0]
	}

	return Concat(parts)
}

func (Literal) value()       {}
func (SelfID) value()        {}
func (SelfFieldRef) value()  {}
func (CrossFieldRef) value() {}
func (Concat) value()        {}

func (v Literal) String() string       { return "'" + string(v) + "'" }
func (SelfID) String() string          { return "@" }
func (v SelfFieldRef) String() string  { return "." + v.Field }
func (v CrossFieldRef) String() string { return v.Record + "." + v.Field }

func (v Concat) String() string {
	part := make([]string, len(v))
	for i, p := range v {
		part[i] = p.String()
	}

	return strings.Join(part, " ")
}

func (v Literal) equal(o Value) bool {
	w, ok := o.(Literal)

	return ok && v == w
}

func (SelfID) equal(o Value) bool {
	_, ok := o.(SelfID)

	return ok
}

func (v SelfFieldRef) equal(o Value) bool {
	w, ok := o.(SelfFieldRef)

	return ok && v == w
}

func (v CrossFieldRef) equal(o Value) bool {
	w, ok := o.(CrossFieldRef)

	return ok && v == w
}

func (v Concat) equal(o Value) bool {
	w, ok := o.(Concat)
	if !ok || len(v) != len(w) {
		return false
	}

	for i := range v {
		if !v[i].equal(w[i]) {
			return false
		}
	}

	return true
}

// EqualValues reports whether a and b are the same expression.
func EqualValues(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return a.equal(b)
}
