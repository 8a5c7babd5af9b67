package parser

import (
	"fmt"

	"github.com/leapstack-labs/leapcell/pkg/token"
)

// ErrorKind classifies a ParseError.
type ErrorKind int

// Parse error kinds. The first three are raised by the lexer.
const (
	UnexpectedChar ErrorKind = iota + 1
	BadCellRef
	InvalidNumber
	MismatchedParens
	EmptyExpression
	UnexpectedToken
	ExpectedOpenParen
	ExpectedCommaOrCloseParen
	UnknownFunction
	WrongArity
)

var errorKindNames = map[ErrorKind]string{
	UnexpectedChar:            "unexpected character",
	BadCellRef:                "bad cell reference",
	InvalidNumber:             "invalid number",
	MismatchedParens:          "mismatched parentheses",
	EmptyExpression:           "empty expression",
	UnexpectedToken:           "unexpected token",
	ExpectedOpenParen:         "expected '('",
	ExpectedCommaOrCloseParen: "expected ',' or ')'",
	UnknownFunction:           "unknown function",
	WrongArity:                "wrong number of arguments",
}

// String returns a short description of the kind.
func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// ParseError represents a tokenizer or parser failure with position
// information. Only the fields relevant to Kind are set.
type ParseError struct {
	Kind  ErrorKind
	Pos   token.Position
	Char  rune        // UnexpectedChar
	Token token.Token // UnexpectedToken
	Func  string      // ExpectedOpenParen, UnknownFunction, WrongArity
	Want  string      // WrongArity: "3", "at least 1"
	Got   int         // WrongArity
}

func (e *ParseError) Error() string {
	var detail string
	switch e.Kind {
	case UnexpectedChar:
		detail = fmt.Sprintf("%s %q", e.Kind, e.Char)
	case UnexpectedToken:
		detail = fmt.Sprintf("%s %s", e.Kind, e.Token)
	case ExpectedOpenParen:
		detail = fmt.Sprintf("expected '(' after function name %q", e.Func)
	case UnknownFunction:
		detail = fmt.Sprintf("%s %q", e.Kind, e.Func)
	case WrongArity:
		detail = fmt.Sprintf("%s expects %s argument(s), got %d", e.Func, e.Want, e.Got)
	default:
		detail = e.Kind.String()
	}
	if !e.Pos.IsValid() {
		return "parse error: " + detail
	}
	return fmt.Sprintf("parse error at column %d: %s", e.Pos.Column, detail)
}

// Is matches any *ParseError of the same kind, so callers can write
// errors.Is(err, parser.ErrMismatchedParens).
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUnexpectedChar            = &ParseError{Kind: UnexpectedChar}
	ErrBadCellRef                = &ParseError{Kind: BadCellRef}
	ErrInvalidNumber             = &ParseError{Kind: InvalidNumber}
	ErrMismatchedParens          = &ParseError{Kind: MismatchedParens}
	ErrEmptyExpression           = &ParseError{Kind: EmptyExpression}
	ErrUnexpectedToken           = &ParseError{Kind: UnexpectedToken}
	ErrExpectedOpenParen         = &ParseError{Kind: ExpectedOpenParen}
	ErrExpectedCommaOrCloseParen = &ParseError{Kind: ExpectedCommaOrCloseParen}
	ErrUnknownFunction           = &ParseError{Kind: UnknownFunction}
	ErrWrongArity                = &ParseError{Kind: WrongArity}
)
