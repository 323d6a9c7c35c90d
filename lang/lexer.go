package lang

import (
	"log/slog"
	"unicode/utf8"
)

// Lexer splits source text into tokens.
//
// The only state is a cursor into the input plus the line and column of that
// cursor. Space runs are recognized but skipped by [Lexer.Next].
type Lexer struct {
	input string
	pos   int
	line  int
	col   int
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{input: src, line: 1, col: 1}
}

// Next returns the next significant token. Once the input is exhausted it
// returns a [TokenEOF] token on every call.
func (l *Lexer) Next() (Token, error) {
	for {
		tok, err := l.scan()
		if err != nil {
			return Token{}, err
		}

		if tok.Kind != TokenSpace {
			return tok, nil
		}
	}
}

// Tokenize returns every significant token in src, ending with [TokenEOF].
func Tokenize(src string) ([]Token, error) {
	l := NewLexer(src)

	var toks []Token

	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)

		if tok.Kind == TokenEOF {
			return toks, nil
		}
	}
}

// scan matches one token at the cursor. Rules are tried in order: identifier,
// quoted literal, single-character punctuation, newline, space run.
func (l *Lexer) scan() (Token, error) {
	start := l.position()

	if l.eof() {
		return Token{Kind: TokenEOF, Pos: start}, nil
	}

	ch := l.input[l.pos]

	switch {
	case isIdentByte(ch):
		from := l.pos
		for !l.eof() && isIdentByte(l.input[l.pos]) {
			l.advance()
		}

		return Token{Kind: TokenIdentifier, Text: l.input[from:l.pos], Pos: start}, nil

	case ch == '\'':
		l.advance()

		from := l.pos
		for !l.eof() && l.input[l.pos] != '\'' {
			l.advance()
		}

		if l.eof() {
			return Token{}, ErrTokenize.
				With(slog.String("reason", "unterminated literal")).
				With(start.attrs()...)
		}

		text := l.input[from:l.pos]
		l.advance() // closing quote

		return Token{Kind: TokenLiteral, Text: text, Pos: start}, nil

	case ch == '.':
		l.advance()

		return Token{Kind: TokenDot, Pos: start}, nil

	case ch == ':':
		l.advance()

		return Token{Kind: TokenColon, Pos: start}, nil

	case ch == '@':
		l.advance()

		return Token{Kind: TokenAt, Pos: start}, nil

	case ch == '\n':
		l.advance()

		return Token{Kind: TokenNewline, Pos: start}, nil

	case ch == '\r' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '\n':
		l.advance()
		l.advance()

		return Token{Kind: TokenNewline, Pos: start}, nil

	case ch == ' ' || ch == '\t':
		for !l.eof() && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
			l.advance()
		}

		return Token{Kind: TokenSpace, Pos: start}, nil
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])

	return Token{}, ErrTokenize.
		With(slog.String("char", string(r))).
		With(start.attrs()...)
}

func (l *Lexer) eof() bool { return l.pos >= len(l.input) }

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// advance moves the cursor past one rune, tracking line and column.
func (l *Lexer) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])

	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
