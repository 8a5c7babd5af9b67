// Package token defines the lexical tokens of the formula language.
//
// The set is closed: formulas only know integers, cell references, the five
// registered functions, the binary operators + - * / ^, parentheses and
// commas.
package token

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexical token.
//
//nolint:revive // token.TokenType reads better at call sites than token.Type
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	INT  // 123
	CELL // A1, AB12
	FUNC // Sum, Concat, Max, Min, If

	// Operators
	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /
	CARET // ^

	// Punctuation
	LPAREN // (
	RPAREN // )
	COMMA  // ,
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	INT:  "INT",
	CELL: "CELL",
	FUNC: "FUNC",

	PLUS:  "+",
	MINUS: "-",
	STAR:  "*",
	SLASH: "/",
	CARET: "^",

	LPAREN: "(",
	RPAREN: ")",
	COMMA:  ",",
}

// operators maps operator characters to their token types.
var operators = map[byte]TokenType{
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'/': SLASH,
	'^': CARET,
	'(': LPAREN,
	')': RPAREN,
	',': COMMA,
}

// LookupOperator returns the token type for a single-character operator or
// punctuation mark.
func LookupOperator(ch byte) (TokenType, bool) {
	t, ok := operators[ch]
	return t, ok
}

// IsOperator returns true if the token type is a binary operator.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= CARET
}

// Precedence levels for binary operators. Higher binds tighter.
const (
	PrecedenceNone     = 0
	PrecedenceAddition = 1 // + -
	PrecedenceMultiply = 2 // * /
	PrecedencePower    = 3 // ^
)

// Precedence returns the binding power of a binary operator token.
// Non-operators return PrecedenceNone.
func Precedence(t TokenType) int {
	switch t {
	case PLUS, MINUS:
		return PrecedenceAddition
	case STAR, SLASH:
		return PrecedenceMultiply
	case CARET:
		return PrecedencePower
	default:
		return PrecedenceNone
	}
}

// Functions lists the registered function names in the order the lexer
// tries them. Matching is exact and case-sensitive.
var Functions = []string{"Sum", "Concat", "Max", "Min", "If"}

// LookupFunctionPrefix reports the registered function name that s starts
// with, if any.
func LookupFunctionPrefix(s string) (string, bool) {
	for _, name := range Functions {
		if strings.HasPrefix(s, name) {
			return name, true
		}
	}
	return "", false
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// String renders the token for diagnostics.
func (t Token) String() string {
	switch t.Type {
	case INT, CELL, FUNC:
		return fmt.Sprintf("%s(%s)", t.Type, t.Literal)
	default:
		return t.Type.String()
	}
}
