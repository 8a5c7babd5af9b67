package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the runtime type of a Value.
type Kind uint8

// Value kinds.
const (
	KindInt Kind = iota
	KindFloat
	KindText
	KindError
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ErrorKind classifies runtime evaluation errors. These travel as values
// and are displayed in place of a result; they are never Go errors.
type ErrorKind uint8

// Runtime error kinds, displayed with spreadsheet-style codes.
const (
	MissingCell      ErrorKind = 1 // #REF! - reference to a cell that was never set
	DivideByZero     ErrorKind = 2 // #DIV/0! - divisor is the number zero
	TypeMismatch     ErrorKind = 3 // #VALUE! - text where a number is required
	InvalidFormula   ErrorKind = 4 // #PARSE! - the cell holds a formula that failed to parse
	NumberOutOfRange ErrorKind = 5 // #NUM! - arithmetic result is not a finite number
)

var errorCodes = map[ErrorKind]string{
	MissingCell:      "#REF!",
	DivideByZero:     "#DIV/0!",
	TypeMismatch:     "#VALUE!",
	InvalidFormula:   "#PARSE!",
	NumberOutOfRange: "#NUM!",
}

// Code returns the display code, e.g. "#DIV/0!".
func (e ErrorKind) Code() string {
	if code, ok := errorCodes[e]; ok {
		return code
	}
	return "#ERROR!"
}

// String returns a descriptive name.
func (e ErrorKind) String() string {
	switch e {
	case MissingCell:
		return "MissingCell"
	case DivideByZero:
		return "DivideByZero"
	case TypeMismatch:
		return "TypeMismatch"
	case InvalidFormula:
		return "InvalidFormula"
	case NumberOutOfRange:
		return "NumberOutOfRange"
	default:
		return fmt.Sprintf("ErrorKind(%d)", e)
	}
}

// Value is the result of evaluating a cell: an integer, a float, text or
// an error. The zero Value is the integer 0.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	err  ErrorKind
}

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Error returns an error value of the given kind.
func Error(e ErrorKind) Value { return Value{kind: KindError, err: e} }

// Kind returns the runtime type.
func (v Value) Kind() Kind { return v.kind }

// IsNumber reports whether v is an integer or a float.
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }

// IsError reports whether v is an error value.
func (v Value) IsError() bool { return v.kind == KindError }

// IntValue returns the integer payload. Only meaningful for KindInt.
func (v Value) IntValue() int64 { return v.i }

// FloatValue returns the float payload. Only meaningful for KindFloat.
func (v Value) FloatValue() float64 { return v.f }

// TextValue returns the text payload. Only meaningful for KindText.
func (v Value) TextValue() string { return v.s }

// ErrorKind returns the error payload. Only meaningful for KindError.
func (v Value) ErrorKind() ErrorKind { return v.err }

// AsFloat converts a numeric value to float64.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// IsZero reports whether v is the number zero (integer or float).
func (v Value) IsZero() bool {
	switch v.kind {
	case KindInt:
		return v.i == 0
	case KindFloat:
		return v.f == 0
	default:
		return false
	}
}

// Truthy reports whether v counts as true in a condition:
// a non-zero number or non-empty text.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindInt:
		return v.i != 0
	case KindFloat:
		return v.f != 0
	case KindText:
		return v.s != ""
	default:
		return false
	}
}

// Equal reports whether two values have the same kind and payload.
// Int(4) and Float(4) are not equal.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindText:
		return v.s == other.s
	default:
		return v.err == other.err
	}
}

// String renders the canonical display form: integers in decimal, floats
// with at least one fractional digit ("4.0"), text verbatim and errors as
// their code.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindText:
		return v.s
	default:
		return v.err.Code()
	}
}

// GoString is used by %#v and in test failure output.
func (v Value) GoString() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("Int(%d)", v.i)
	case KindFloat:
		return fmt.Sprintf("Float(%s)", formatFloat(v.f))
	case KindText:
		return fmt.Sprintf("Text(%q)", v.s)
	default:
		return fmt.Sprintf("Error(%s)", v.err)
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
