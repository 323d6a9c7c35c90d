// Package lang compiles the non record language into resolved key/value
// records.
//
// # Language
//
// A source file declares records. Each record has an id, zero or more
// parents, and a list of fields:
//
//	alice:
//	.name 'Alice'
//	.login @
//	.mail .login '@' univ.domain
//	bob: alice
//	.name 'Bob'
//	univ:
//	.domain 'example.edu'
//
// A field value is one or more of:
//
//   - 'text'         a literal (no escapes; may not contain a quote)
//   - @              the id of the record being resolved
//   - .field         another field of the same record
//   - record.field   a field of another record
//
// Two or more values on one line are concatenated with no separator.
//
// # Grammar
//
//	file    := NEWLINE* record*
//	record  := NEWLINE* IDENT COLON IDENT* (NEWLINE|EOF) field*
//	field   := DOT IDENT value+ (NEWLINE|EOF)
//	value   := LITERAL | AT | DOT IDENT | IDENT DOT IDENT
//
// # Pipeline
//
// [Parse] tokenizes with a [Lexer], builds a [Table] in a single pass, and
// runs [Validate] to reject undefined parents and parent cycles. The table
// is immutable afterward. [Table.Resolve] then flattens one record's
// inheritance chain (parents left to right, own fields last) and evaluates
// each field, rejecting reference loops with [ErrCyclicFieldReference].
//
// Resolution errors are scoped to the record being resolved:
// [Table.ResolveAll] keeps going past a failing record.
//
// # Output
//
// [Table.Format] writes canonical source that parses back to an equal
// table. [Table.Encode] writes canonical text, JSON, YAML, or CBOR, either
// nested (parents and expressions) or flat (resolved strings).
package lang
