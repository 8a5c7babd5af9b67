package core

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------- Expression Types ----------

// Expr is a node of a formula expression tree. The set of node types is
// closed; every consumer switches over it exhaustively.
//
// A node owns its children exclusively, so trees are acyclic.
type Expr interface {
	exprNode()
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
}

func (*IntLit) exprNode() {}

// StrLit is a text literal.
type StrLit struct {
	Value string
}

func (*StrLit) exprNode() {}

// CellRef references another cell.
type CellRef struct {
	Cell CellID
}

func (*CellRef) exprNode() {}

// BinaryExpr applies an arithmetic operator to two operands.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// CallExpr calls one of the built-in functions.
type CallExpr struct {
	Func Function
	Args []Expr
}

func (*CallExpr) exprNode() {}

// BinaryOp is an arithmetic operator.
type BinaryOp uint8

// Binary operators.
const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

var opSymbols = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpPow: "^",
}

// String returns the operator symbol.
func (op BinaryOp) String() string {
	if int(op) < len(opSymbols) {
		return opSymbols[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", op)
}

// precedence mirrors token.Precedence for formatting.
func (op BinaryOp) precedence() int {
	switch op {
	case OpAdd, OpSub:
		return 1
	case OpMul, OpDiv:
		return 2
	default:
		return 3
	}
}

// Function is a built-in function.
type Function uint8

// Built-in functions.
const (
	FuncSum Function = iota
	FuncConcat
	FuncMax
	FuncMin
	FuncIf
)

var functionNames = [...]string{
	FuncSum:    "Sum",
	FuncConcat: "Concat",
	FuncMax:    "Max",
	FuncMin:    "Min",
	FuncIf:     "If",
}

// String returns the function name as written in formulas.
func (f Function) String() string {
	if int(f) < len(functionNames) {
		return functionNames[f]
	}
	return fmt.Sprintf("Function(%d)", f)
}

// Arity returns the accepted argument count range. max < 0 means unbounded.
func (f Function) Arity() (minArgs, maxArgs int) {
	if f == FuncIf {
		return 3, 3
	}
	return 1, -1
}

// LookupFunction resolves a function name (exact, case-sensitive).
func LookupFunction(name string) (Function, bool) {
	for i, n := range functionNames {
		if n == name {
			return Function(i), true
		}
	}
	return 0, false
}

// Dependencies returns every cell referenced in the tree, duplicates
// merged, in order of first appearance.
func Dependencies(e Expr) []CellID {
	if e == nil {
		return nil
	}

	var deps []CellID
	seen := make(map[CellID]struct{})
	stack := []Expr{e}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n := n.(type) {
		case *CellRef:
			if _, ok := seen[n.Cell]; !ok {
				seen[n.Cell] = struct{}{}
				deps = append(deps, n.Cell)
			}
		case *BinaryExpr:
			// push right first so the left operand is visited first
			stack = append(stack, n.Right, n.Left)
		case *CallExpr:
			for i := len(n.Args) - 1; i >= 0; i-- {
				stack = append(stack, n.Args[i])
			}
		case *IntLit, *StrLit:
		}
	}
	return deps
}

// Format renders a tree back to formula text (without the leading "=").
// Sum nodes are always written as calls, so Format output re-parses to an
// identical tree.
func Format(e Expr) string {
	var sb strings.Builder
	formatExpr(&sb, e)
	return sb.String()
}

func formatExpr(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *IntLit:
		sb.WriteString(strconv.FormatInt(n.Value, 10))
	case *StrLit:
		sb.WriteString(strconv.Quote(n.Value))
	case *CellRef:
		sb.WriteString(n.Cell.String())
	case *BinaryExpr:
		formatOperand(sb, n.Left, n.Op.precedence(), false)
		sb.WriteString(n.Op.String())
		formatOperand(sb, n.Right, n.Op.precedence(), true)
	case *CallExpr:
		sb.WriteString(n.Func.String())
		sb.WriteByte('(')
		for i, arg := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			formatExpr(sb, arg)
		}
		sb.WriteByte(')')
	case nil:
		sb.WriteString("<nil>")
	}
}

// formatOperand parenthesizes a binary operand when its operator binds
// looser than the parent, or equally on the right (operators are
// left-associative).
func formatOperand(sb *strings.Builder, e Expr, parentPrec int, right bool) {
	if b, ok := e.(*BinaryExpr); ok {
		p := b.Op.precedence()
		if p < parentPrec || (right && p == parentPrec) {
			sb.WriteByte('(')
			formatExpr(sb, e)
			sb.WriteByte(')')
			return
		}
	}
	formatExpr(sb, e)
}
