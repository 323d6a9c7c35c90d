package lang

import (
	"context"
	"io"
	"log/slog"
)

// ParseReader parses a table from an io.Reader.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return Parse(ctx, string(data), opts...)
}

// Parse parses source text into a table of records.
//
// Parsing is a single left-to-right pass with one token of lookahead:
//
//	file    := NEWLINE* record*
//	record  := NEWLINE* IDENT COLON IDENT* (NEWLINE|EOF) field*
//	field   := DOT IDENT value+ (NEWLINE|EOF)
//	value   := LITERAL | AT | DOT IDENT | IDENT DOT IDENT
//
// Spaces are dropped by the lexer, so whitespace between tokens is never
// required: "b:a" declares record b with parent a just like "b: a".
// Blank lines may appear between fields. Once every record is read, the
// parent graph is checked with [Validate] unless [WithoutValidation] is
// given. Any error fails the whole parse.
func Parse(ctx context.Context, src string, opts ...Option) (*Table, error) {
	t := NewTable()
	applyOptions(t, opts...)

	t.logger.TraceContext(ctx, "parse start",
		slog.Int("source_length", len(src)))

	p := &parser{lex: NewLexer(src), table: t}

	err := p.advance()
	if err != nil {
		return nil, err
	}

	err = p.parseFile(ctx)
	if err != nil {
		return nil, err
	}

	t.logger.TraceContext(ctx, "parse complete",
		slog.Int("record_count", t.Len()))

	if t.opts.skipValidate {
		return t, nil
	}

	err = t.Validate()
	if err != nil {
		return nil, err
	}

	return t, nil
}

// parser holds the parser state: the lexer and the current lookahead token.
type parser struct {
	lex   *Lexer
	tok   Token
	table *Table
}

// advance replaces the lookahead token with the next one from the lexer.
func (p *parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}

	p.tok = tok

	return nil
}

// skipNewlines consumes any run of newline tokens.
func (p *parser) skipNewlines() error {
	for p.tok.Kind == TokenNewline {
		err := p.advance()
		if err != nil {
			return err
		}
	}

	return nil
}

// expect consumes and returns the lookahead token if it has the given kind.
func (p *parser) expect(kind TokenKind) (Token, error) {
	tok := p.tok
	if tok.Kind != kind {
		return tok, p.unexpected(kind.String())
	}

	return tok, p.advance()
}

// endOfLine consumes a newline, or accepts end of input in its place.
func (p *parser) endOfLine() error {
	switch p.tok.Kind {
	case TokenNewline:
		return p.advance()

	case TokenEOF:
		return nil

	default:
		return p.unexpected(TokenNewline.String())
	}
}

// unexpected builds the error for the current lookahead token.
func (p *parser) unexpected(expected string) error {
	if p.tok.Kind == TokenEOF {
		return ErrUnexpectedEOF.
			With(slog.String("expected", expected)).
			With(p.tok.Pos.attrs()...)
	}

	return ErrUnexpectedToken.
		With(slog.String("token", p.tok.String())).
		With(slog.String("expected", expected)).
		With(p.tok.Pos.attrs()...)
}

// parseFile parses: NEWLINE* record*.
func (p *parser) parseFile(ctx context.Context) error {
	err := p.skipNewlines()
	if err != nil {
		return err
	}

	for p.tok.Kind != TokenEOF {
		rec, err := p.parseRecord()
		if err != nil {
			return err
		}

		if p.table.Has(rec.ID) {
			p.table.logger.DebugContext(ctx, "record redefined",
				slog.String("id", rec.ID),
				slog.String("pos", rec.Pos.String()))
		}

		p.table.Define(rec)

		p.table.logger.TraceContext(ctx, "record parsed",
			slog.String("id", rec.ID),
			slog.Int("parent_count", len(rec.Parents)),
			slog.Int("field_count", len(rec.Fields)))
	}

	return nil
}

// parseRecord parses: NEWLINE* IDENT COLON IDENT* (NEWLINE|EOF) field*.
func (p *parser) parseRecord() (*Record, error) {
	err := p.skipNewlines()
	if err != nil {
		return nil, err
	}

	ident, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}

	_, err = p.expect(TokenColon)
	if err != nil {
		return nil, err
	}

	rec := &Record{ID: ident.Text, Pos: ident.Pos}

	for p.tok.Kind == TokenIdentifier {
		rec.Parents = append(rec.Parents, p.tok.Text)

		err = p.advance()
		if err != nil {
			return nil, err
		}
	}

	err = p.endOfLine()
	if err != nil {
		return nil, err
	}

	for {
		err = p.skipNewlines()
		if err != nil {
			return nil, err
		}

		if p.tok.Kind != TokenDot {
			return rec, nil
		}

		field, err := p.parseField()
		if err != nil {
			return nil, err
		}

		rec.Fields = append(rec.Fields, field)
	}
}

// parseField parses: DOT IDENT value+ (NEWLINE|EOF).
func (p *parser) parseField() (Field, error) {
	dot, err := p.expect(TokenDot)
	if err != nil {
		return Field{}, err
	}

	name, err := p.expect(TokenIdentifier)
	if err != nil {
		return Field{}, err
	}

	var parts []Value

	for p.tok.Kind != TokenNewline && p.tok.Kind != TokenEOF {
		v, err := p.parseValue()
		if err != nil {
			return Field{}, err
		}

		parts = append(parts, v)
	}

	if len(parts) == 0 {
		return Field{}, ErrEmptyFieldValue.
			With(slog.String("field", name.Text)).
			With(dot.Pos.attrs()...)
	}

	err = p.endOfLine()
	if err != nil {
		return Field{}, err
	}

	return Field{Name: name.Text, Value: Cat(parts...), Pos: dot.Pos}, nil
}

// parseValue parses: LITERAL | AT | DOT IDENT | IDENT DOT IDENT.
func (p *parser) parseValue() (Value, error) {
	tok := p.tok

	switch tok.Kind {
	case TokenLiteral:
		return Literal(tok.Text), p.advance()

	case TokenAt:
		return SelfID{}, p.advance()

	case TokenDot:
		err := p.advance()
		if err != nil {
			return nil, err
		}

		field, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}

		return SelfFieldRef{Field: field.Text}, nil

	case TokenIdentifier:
		err := p.advance()
		if err != nil {
			return nil, err
		}

		if p.tok.Kind != TokenDot {
			return nil, ErrUnexpectedIdentifier.
				With(slog.String("id", tok.Text)).
				With(tok.Pos.attrs()...)
		}

		err = p.advance()
		if err != nil {
			return nil, err
		}

		field, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}

		return CrossFieldRef{Record: tok.Text, Field: field.Text}, nil

	default:
		return nil, p.unexpected("value")
	}
}
