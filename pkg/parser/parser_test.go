package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapcell/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(s string) *core.CellRef { return &core.CellRef{Cell: core.MustParseCellID(s)} }

func num(v int64) *core.IntLit { return &core.IntLit{Value: v} }

func bin(op core.BinaryOp, l, r core.Expr) *core.BinaryExpr {
	return &core.BinaryExpr{Op: op, Left: l, Right: r}
}

func call(fn core.Function, args ...core.Expr) *core.CallExpr {
	return &core.CallExpr{Func: fn, Args: args}
}

func TestParseFormula(t *testing.T) {
	tests := []struct {
		input string
		want  core.Expr
	}{
		{"42", num(42)},
		{"A1", ref("A1")},
		{"A01", ref("A1")},
		{"1-2", bin(core.OpSub, num(1), num(2))},
		{"1-2-3", bin(core.OpSub, bin(core.OpSub, num(1), num(2)), num(3))},
		{"1-(2-3)", bin(core.OpSub, num(1), bin(core.OpSub, num(2), num(3)))},
		{"2*3^2", bin(core.OpMul, num(2), bin(core.OpPow, num(3), num(2)))},
		{"2^3^2", bin(core.OpPow, bin(core.OpPow, num(2), num(3)), num(2))},
		{"8/4/2", bin(core.OpDiv, bin(core.OpDiv, num(8), num(4)), num(2))},
		{"1+2", call(core.FuncSum, num(1), num(2))},
		{"1+2*3", call(core.FuncSum, num(1), bin(core.OpMul, num(2), num(3)))},
		{"(1+2)*3", bin(core.OpMul, call(core.FuncSum, num(1), num(2)), num(3))},
		{"1+Sum(2,3)+4", call(core.FuncSum, num(1), num(2), num(3), num(4))},
		{"A1+(B1+C1)", call(core.FuncSum, ref("A1"), ref("B1"), ref("C1"))},
		{"1-2+3", call(core.FuncSum, bin(core.OpSub, num(1), num(2)), num(3))},
		{"((7))", num(7)},
		{"Max(1)", call(core.FuncMax, num(1))},
		{"Min(A1, B2, 3)", call(core.FuncMin, ref("A1"), ref("B2"), num(3))},
		{"Concat(A1,Sum(1,2))", call(core.FuncConcat, ref("A1"), call(core.FuncSum, num(1), num(2)))},
		{"If(A1, 1, 2)", call(core.FuncIf, ref("A1"), num(1), num(2))},
		{"If((A1-1)*2,Max(1,2),3)", call(core.FuncIf,
			bin(core.OpMul, bin(core.OpSub, ref("A1"), num(1)), num(2)),
			call(core.FuncMax, num(1), num(2)),
			num(3))},
		{"Sum(1,2)*2", bin(core.OpMul, call(core.FuncSum, num(1), num(2)), num(2))},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormula(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormula_Errors(t *testing.T) {
	tests := []struct {
		input  string
		target error
	}{
		{"", ErrEmptyExpression},
		{"()", ErrEmptyExpression},
		{"(1", ErrMismatchedParens},
		{"1)", ErrMismatchedParens},
		{"(1+2))", ErrMismatchedParens},
		{"1+", ErrUnexpectedToken},
		{"*1", ErrUnexpectedToken},
		{"-5", ErrUnexpectedToken},
		{"1 2", ErrUnexpectedToken},
		{"A1(2)", ErrUnexpectedToken},
		{"1,2", ErrUnexpectedToken},
		{"Sum", ErrExpectedOpenParen},
		{"Sum 1", ErrExpectedOpenParen},
		{"Sum(", ErrExpectedCommaOrCloseParen},
		{"Sum(1", ErrExpectedCommaOrCloseParen},
		{"Sum(1,", ErrExpectedCommaOrCloseParen},
		{"Sum(Max(1,2", ErrExpectedCommaOrCloseParen},
		{"Sum(1,(2", ErrMismatchedParens},
		{"Sum(1,)", ErrEmptyExpression},
		{"Sum(,1)", ErrEmptyExpression},
		{"Sum()", ErrWrongArity},
		{"If(1,2)", ErrWrongArity},
		{"If(1,2,3,4)", ErrWrongArity},
		{"Max((1,2))", ErrUnexpectedToken},
		{"1 $ 2", ErrUnexpectedChar},
		{"AB", ErrBadCellRef},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseFormula(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target, "got %v", err)
		})
	}
}

func TestParseFormula_UnclosedCall(t *testing.T) {
	tests := []struct {
		input  string
		column int
	}{
		{"Sum(", 5},
		{"Sum(1", 6},
		{"Sum(1,", 7},
		{"Concat(1, A1 ,", 15},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseFormula(tt.input)
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, ExpectedCommaOrCloseParen, perr.Kind)
			assert.Equal(t, tt.column, perr.Pos.Column)
		})
	}
}

func TestParseFormula_WrongArityDetails(t *testing.T) {
	_, err := ParseFormula("1+If(1,2)")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "If", perr.Func)
	assert.Equal(t, "3", perr.Want)
	assert.Equal(t, 2, perr.Got)
	assert.Equal(t, 3, perr.Pos.Column)
	assert.Contains(t, perr.Error(), "If expects 3 argument(s), got 2")
}

func TestParseFormula_RoundTrip(t *testing.T) {
	inputs := []string{
		"1-2-3",
		"1-(2-3)",
		"2^3^2",
		"2^(3^2)",
		"(1+2)*3",
		"1+Sum(2,3)+4",
		"If(A1-1,Concat(B1,C1),Max(1,2^2,D4/2))",
		"Sum(Sum(1,2),3)",
		"A1/(B1*C1)",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first, err := ParseFormula(input)
			require.NoError(t, err)

			second, err := ParseFormula(core.Format(first))
			require.NoError(t, err, "formatted: %s", core.Format(first))
			assert.Equal(t, first, second)
		})
	}
}

func TestParseFormula_DeepNesting(t *testing.T) {
	const depth = 5000
	input := strings.Repeat("(", depth) + "1" + strings.Repeat(")", depth)

	got, err := ParseFormula(input)
	require.NoError(t, err)
	assert.Equal(t, num(1), got)
}

func TestParseFormula_LongChain(t *testing.T) {
	var sb strings.Builder
	for i := 1; i <= 1000; i++ {
		if i > 1 {
			sb.WriteByte('+')
		}
		fmt.Fprintf(&sb, "A%d", i)
	}

	got, err := ParseFormula(sb.String())
	require.NoError(t, err)

	sum, ok := got.(*core.CallExpr)
	require.True(t, ok)
	assert.Equal(t, core.FuncSum, sum.Func)
	assert.Len(t, sum.Args, 1000)
}

func TestParseError_Error(t *testing.T) {
	_, err := ParseFormula("1 % 2")
	require.Error(t, err)
	assert.Equal(t, `parse error at column 3: unexpected character '%'`, err.Error())
}
