package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-yaml"
)

// OutputFormat selects a serialization for [Table.Encode].
type OutputFormat int

const (
	FormatCanonical OutputFormat = iota // canonical
	FormatJSON                          // json
	FormatYAML                          // yaml
	FormatCBOR                          // cbor
)

// String returns the name of the format.
func (f OutputFormat) String() string {
	switch f {
	case FormatCanonical:
		return "canonical"

	case FormatJSON:
		return "json"

	case FormatYAML:
		return "yaml"

	case FormatCBOR:
		return "cbor"

	default:
		return "unknown"
	}
}

// Formats returns an iterator over the names of all output formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []OutputFormat{
			FormatCanonical,
			FormatJSON,
			FormatYAML,
			FormatCBOR,
		} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFormat parses the name of an output format, ignoring case.
func ParseFormat(s string) (OutputFormat, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for f := FormatCanonical; f <= FormatCBOR; f++ {
		if f.String() == name {
			return f, nil
		}
	}

	return FormatCanonical, ErrUnknownFormat.With(slog.String("format", s))
}

// Encoding configures [Table.Encode].
type Encoding struct {
	Format OutputFormat
	Flat   bool     // resolve every field instead of writing expressions
	Indent int      // indent width for JSON and YAML; 0 is compact
	IDs    []string // records to write, in order; nil means all
}

// Encode writes the records of t to w.
//
// In flat mode each record is resolved independently. Records that fail to
// resolve are left out of the output, and their errors are returned joined
// after everything else has been written.
func (t *Table) Encode(ctx context.Context, w io.Writer, enc Encoding) error {
	ids := enc.IDs
	if ids == nil {
		ids = t.order
	}

	for _, id := range ids {
		if !t.Has(id) {
			return t.undefinedRecord(id)
		}
	}

	t.logger.TraceContext(ctx, "encode start",
		slog.String("format", enc.Format.String()),
		slog.Bool("flat", enc.Flat),
		slog.Int("record_count", len(ids)))

	if !enc.Flat {
		if enc.Format == FormatCanonical {
			return t.formatIDs(ctx, w, ids)
		}

		return writeDocument(ctx, w, enc, t.nestedDocument(ids))
	}

	resolved, resolveErr := t.ResolveIDs(ctx, ids...)

	var err error
	if enc.Format == FormatCanonical {
		err = FormatResolved(w, resolved...)
	} else {
		err = writeDocument(ctx, w, enc, flatDocument(resolved))
	}

	return errors.Join(err, resolveErr)
}

// writeDocument serializes doc in one of the structured formats.
func writeDocument(
	ctx context.Context,
	w io.Writer,
	enc Encoding,
	doc orderedMap,
) error {
	var (
		data []byte
		err  error
	)

	switch enc.Format {
	case FormatJSON:
		data, err = marshalJSON(doc, enc.Indent)

	case FormatYAML:
		data, err = marshalYAML(ctx, doc, enc.Indent)

	case FormatCBOR:
		data, err = marshalCBOR(doc)

	default:
		return ErrUnknownFormat.With(slog.String("format", enc.Format.String()))
	}

	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// nestedDocument builds {id: {parents: [...], fields: {name: expr}}}.
func (t *Table) nestedDocument(ids []string) orderedMap {
	doc := make(orderedMap, 0, len(ids))

	for _, id := range ids {
		rec, _ := t.Get(id)

		var entry orderedMap

		if len(rec.Parents) > 0 {
			entry = entry.set("parents", rec.Parents)
		}

		fields := make(orderedMap, 0, len(rec.Fields))
		for _, fld := range rec.Fields {
			fields = fields.set(fld.Name, fld.Value.String())
		}

		entry = entry.set("fields", fields)
		doc = doc.set(id, entry)
	}

	return doc
}

// flatDocument builds {id: {name: value}}.
func flatDocument(records []*Resolved) orderedMap {
	doc := make(orderedMap, 0, len(records))

	for _, res := range records {
		fields := make(orderedMap, 0, len(res.Fields))
		for _, p := range res.Fields {
			fields = fields.set(p.Name, p.Value)
		}

		doc = doc.set(res.ID, fields)
	}

	return doc
}

// mapItem is one key/value pair of an orderedMap.
type mapItem struct {
	Key   string
	Value any
}

// orderedMap is a string-keyed map that serializes its keys in insertion
// order.
type orderedMap []mapItem

// set assigns value to key, replacing an existing entry in place.
func (m orderedMap) set(key string, value any) orderedMap {
	for i := range m {
		if m[i].Key == key {
			m[i].Value = value

			return m
		}
	}

	return append(m, mapItem{Key: key, Value: value})
}

// MarshalJSON implements json.Marshaler.
func (m orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, item := range m {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(item.Key)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(item.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// mapSlice converts m, recursively, to a [yaml.MapSlice].
func (m orderedMap) mapSlice() yaml.MapSlice {
	out := make(yaml.MapSlice, len(m))

	for i, item := range m {
		value := item.Value
		if sub, ok := value.(orderedMap); ok {
			value = sub.mapSlice()
		}

		out[i] = yaml.MapItem{Key: item.Key, Value: value}
	}

	return out
}

// native converts m, recursively, to a map[string]any.
func (m orderedMap) native() map[string]any {
	out := make(map[string]any, len(m))

	for _, item := range m {
		value := item.Value
		if sub, ok := value.(orderedMap); ok {
			value = sub.native()
		}

		out[item.Key] = value
	}

	return out
}

func marshalJSON(doc orderedMap, indent int) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(doc, "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(doc)
	}

	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}

	return append(data, '\n'), nil
}

func marshalYAML(
	ctx context.Context,
	doc orderedMap,
	indent int,
) ([]byte, error) {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, doc.mapSlice(), opts...)
	if err != nil {
		return nil, fmt.Errorf("marshal YAML: %w", err)
	}

	return data, nil
}

// cborMode encodes with Core Deterministic Encoding (RFC 8949 §4.2), so the
// same table always produces identical bytes.
var cborMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("lang: CBOR encoder initialization failed: " + err.Error())
	}

	return mode
}()

func marshalCBOR(doc orderedMap) ([]byte, error) {
	data, err := cborMode.Marshal(doc.native())
	if err != nil {
		return nil, fmt.Errorf("marshal CBOR: %w", err)
	}

	return data, nil
}
