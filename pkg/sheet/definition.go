package sheet

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapcell/pkg/core"
	"github.com/leapstack-labs/leapcell/pkg/parser"
)

// DefinitionKind classifies the text assigned to a cell.
type DefinitionKind int

const (
	// Literal is text stored verbatim.
	Literal DefinitionKind = iota
	// Integer is a run of digits that fits in int64.
	Integer
	// Formula is text starting with '=' that parsed.
	Formula
	// InvalidFormula is text starting with '=' that did not parse. It reads
	// as Error(InvalidFormula).
	InvalidFormula
)

func (k DefinitionKind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Integer:
		return "integer"
	case Formula:
		return "formula"
	case InvalidFormula:
		return "invalid formula"
	default:
		return "unknown"
	}
}

// Definition is the classified content of a cell.
type Definition struct {
	Kind    DefinitionKind
	Text    string    // raw text as assigned
	Integer int64     // Integer
	Expr    core.Expr // Formula
	Err     error     // InvalidFormula: the parse error
}

// Classify turns cell text into a Definition. Parse failures are not
// errors here; they produce an InvalidFormula definition.
func Classify(text string) Definition {
	if rest, ok := strings.CutPrefix(text, "="); ok {
		expr, err := parser.ParseFormula(rest)
		if err != nil {
			return Definition{Kind: InvalidFormula, Text: text, Err: err}
		}
		return Definition{Kind: Formula, Text: text, Expr: expr}
	}
	if isDigits(text) {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Definition{Kind: Integer, Text: text, Integer: n}
		}
	}
	return Definition{Kind: Literal, Text: text}
}

// Dependencies returns the cells the definition reads.
func (d Definition) Dependencies() []core.CellID {
	if d.Kind != Formula {
		return nil
	}
	return core.Dependencies(d.Expr)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
