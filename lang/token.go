package lang

import (
	"log/slog"
	"strconv"
)

// TokenKind identifies the lexical class of a [Token].
type TokenKind int

const (
	// TokenEOF marks the end of input. The lexer returns it indefinitely once
	// the source is exhausted.
	TokenEOF TokenKind = iota

	// TokenIdentifier is a run of ASCII letters, digits, and underscores.
	TokenIdentifier

	// TokenLiteral is text enclosed in single quotes. The quotes are not part
	// of [Token.Text], which may be empty: '' is a valid literal.
	TokenLiteral

	// TokenDot is '.'.
	TokenDot

	// TokenColon is ':'.
	TokenColon

	// TokenAt is '@'.
	TokenAt

	// TokenNewline is a line terminator ("\n" or "\r\n").
	TokenNewline

	// TokenSpace is a run of spaces and tabs. It is never returned by
	// [Lexer.Next].
	TokenSpace
)

// String returns a human-readable name for the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"

	case TokenIdentifier:
		return "identifier"

	case TokenLiteral:
		return "literal"

	case TokenDot:
		return "dot"

	case TokenColon:
		return "colon"

	case TokenAt:
		return "at"

	case TokenNewline:
		return "newline"

	case TokenSpace:
		return "space"

	default:
		return "unknown"
	}
}

// Position locates a token in the source text.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, counted in runes
}

// String formats the position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// attrs returns the position as structured logging attributes.
func (p Position) attrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
	}
}

// Token is a single lexeme produced by the [Lexer].
type Token struct {
	Kind TokenKind
	Text string // identifier name or literal contents; empty otherwise
	Pos  Position
}

// String renders the token the way it appears in source.
func (t Token) String() string {
	switch t.Kind {
	case TokenIdentifier:
		return t.Text

	case TokenLiteral:
		return "'" + t.Text + "'"

	case TokenDot:
		return "."

	case TokenColon:
		return ":"

	case TokenAt:
		return "@"

	default:
		return t.Kind.String()
	}
}
