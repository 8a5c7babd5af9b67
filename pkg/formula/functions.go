package formula

import (
	"strings"

	"github.com/leapstack-labs/leapcell/pkg/core"
)

// callFunction applies a variadic built-in to already type-checked
// arguments. If is handled by the evaluator itself.
func callFunction(fn core.Function, args []core.Value) core.Value {
	switch fn {
	case core.FuncSum:
		return sum(args)
	case core.FuncMax:
		return extreme(args, 1)
	case core.FuncMin:
		return extreme(args, -1)
	case core.FuncConcat:
		return concat(args)
	default:
		return core.Error(core.InvalidFormula)
	}
}

// sum left-folds addition, so integer arguments give an integer total.
func sum(args []core.Value) core.Value {
	if len(args) == 0 {
		return core.Int(0)
	}
	total := args[0]
	for _, v := range args[1:] {
		total = add(total, v)
	}
	return total
}

// extreme returns the largest (sign 1) or smallest (sign -1) argument,
// keeping its kind. Ties keep the earliest argument.
func extreme(args []core.Value, sign int) core.Value {
	if len(args) == 0 {
		return core.Error(core.TypeMismatch)
	}
	best := args[0]
	for _, v := range args[1:] {
		if compare(v, best)*sign > 0 {
			best = v
		}
	}
	return best
}

func concat(args []core.Value) core.Value {
	var sb strings.Builder
	for _, v := range args {
		sb.WriteString(v.String())
	}
	return core.Text(sb.String())
}
