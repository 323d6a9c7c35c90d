package lang

import (
	"iter"
	"slices"

	"github.com/ardnew/non/log"
)

// Record is a parsed definition: an id, its parents in declaration order,
// and its own fields in declaration order.
//
// Fields may repeat a name; the last one wins during flattening.
type Record struct {
	ID      string
	Parents []string
	Fields  []Field
	Pos     Position
}

// Field is a name/expression pair attached to a record.
type Field struct {
	Name  string
	Value Value
	Pos   Position
}

// NewRecord returns a record with the given id, parents, and fields.
func NewRecord(id string, parents []string, fields ...Field) *Record {
	return &Record{ID: id, Parents: parents, Fields: fields}
}

// NewField returns a field with the given name and value.
func NewField(name string, value Value) Field {
	return Field{Name: name, Value: value}
}

// Equal reports whether r and o have the same id, parents, and field
// expressions. Positions are ignored.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}

	if r.ID != o.ID || !slices.Equal(r.Parents, o.Parents) ||
		len(r.Fields) != len(o.Fields) {
		return false
	}

	for i := range r.Fields {
		if r.Fields[i].Name != o.Fields[i].Name ||
			!EqualValues(r.Fields[i].Value, o.Fields[i].Value) {
			return false
		}
	}

	return true
}

// Table maps record ids to records. Iteration follows the order in which
// each id was first defined.
//
// A table is populated once by the parser and is read-only afterward, so
// any number of goroutines may resolve records from it concurrently.
type Table struct {
	records map[string]*Record
	order   []string
	opts    options    // parse configuration
	logger  log.Logger // structured logger (zero value is silent)
}

// NewTable returns a table containing the given records, in order.
func NewTable(records ...*Record) *Table {
	t := &Table{records: make(map[string]*Record, len(records))}

	for _, r := range records {
		t.Define(r)
	}

	return t
}

// Define adds r to the table. A record already defined with the same id is
// replaced entirely; the id keeps its original position.
func (t *Table) Define(r *Record) {
	if t.records == nil {
		t.records = make(map[string]*Record)
	}

	if _, ok := t.records[r.ID]; !ok {
		t.order = append(t.order, r.ID)
	}

	t.records[r.ID] = r
}

// Get returns the record with the given id.
func (t *Table) Get(id string) (*Record, bool) {
	r, ok := t.records[id]

	return r, ok
}

// Has reports whether a record with the given id exists.
func (t *Table) Has(id string) bool {
	_, ok := t.records[id]

	return ok
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.order) }

// IDs returns the record ids in table order.
func (t *Table) IDs() []string { return slices.Clone(t.order) }

// All returns an iterator over all records in table order.
func (t *Table) All() iter.Seq2[string, *Record] {
	return func(yield func(string, *Record) bool) {
		for _, id := range t.order {
			if !yield(id, t.records[id]) {
				return
			}
		}
	}
}

// Equal reports whether t and o contain equal records under the same ids.
// Order is not significant.
func (t *Table) Equal(o *Table) bool {
	if t.Len() != o.Len() {
		return false
	}

	for id, r := range t.All() {
		other, ok := o.Get(id)
		if !ok || !r.Equal(other) {
			return false
		}
	}

	return true
}
