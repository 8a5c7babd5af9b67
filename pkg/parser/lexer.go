package parser

import (
	"strconv"
	"unicode/utf8"

	"github.com/leapstack-labs/leapcell/pkg/core"
	"github.com/leapstack-labs/leapcell/pkg/token"
)

// Lexer tokenizes formula text (without the leading '=').
type Lexer struct {
	input string
	pos   int // current offset in input
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize splits text into tokens. The returned slice does not include an
// EOF token.
func Tokenize(text string) ([]token.Token, error) {
	l := NewLexer(text)
	var tokens []token.Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == token.EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// NextToken returns the next token, or a token of type EOF at the end of
// input.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	pos := l.currentPos()
	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, Pos: pos}, nil
	}

	// Function names share the leading uppercase letter with cell
	// references, so they are matched first.
	if name, ok := token.LookupFunctionPrefix(l.input[l.pos:]); ok {
		l.pos += len(name)
		return token.Token{Type: token.FUNC, Literal: name, Pos: pos}, nil
	}

	ch := l.input[l.pos]
	switch {
	case isUpper(ch):
		return l.readCell(pos)
	case isDigit(ch):
		return l.readInt(pos)
	}

	if typ, ok := token.LookupOperator(ch); ok {
		l.pos++
		return token.Token{Type: typ, Literal: string(ch), Pos: pos}, nil
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return token.Token{Type: token.ILLEGAL, Literal: string(r), Pos: pos},
		&ParseError{Kind: UnexpectedChar, Pos: pos, Char: r}
}

// readCell reads an uppercase run followed by a digit run.
func (l *Lexer) readCell(pos token.Position) (token.Token, error) {
	start := l.pos
	for l.pos < len(l.input) && isUpper(l.input[l.pos]) {
		l.pos++
	}
	digits := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	lit := l.input[start:l.pos]
	if l.pos == digits {
		return token.Token{Type: token.ILLEGAL, Literal: lit, Pos: pos},
			&ParseError{Kind: BadCellRef, Pos: pos}
	}
	// Row zero and out-of-range labels are rejected here so the parser can
	// assume every CELL token names a cell.
	if _, err := core.ParseCellID(lit); err != nil {
		return token.Token{Type: token.ILLEGAL, Literal: lit, Pos: pos},
			&ParseError{Kind: BadCellRef, Pos: pos}
	}
	return token.Token{Type: token.CELL, Literal: lit, Pos: pos}, nil
}

// readInt reads a run of decimal digits that must fit in int64.
func (l *Lexer) readInt(pos token.Position) (token.Token, error) {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	lit := l.input[start:l.pos]
	if _, err := strconv.ParseInt(lit, 10, 64); err != nil {
		return token.Token{Type: token.ILLEGAL, Literal: lit, Pos: pos},
			&ParseError{Kind: InvalidNumber, Pos: pos}
	}
	return token.Token{Type: token.INT, Literal: lit, Pos: pos}, nil
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{Column: l.pos + 1, Offset: l.pos}
}

func isUpper(ch byte) bool { return ch >= 'A' && ch <= 'Z' }

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }
