package formula

import (
	"math"

	"github.com/leapstack-labs/leapcell/pkg/core"
)

// Numeric promotion:
//   - int op int stays int for + - * ^, unless the result overflows int64,
//     in which case the operation is redone in float64;
//   - any float operand makes the result float;
//   - division is always float;
//   - a negative integer exponent gives a float;
//   - a float result that is NaN or infinite, such as a negative base to a
//     fractional power, is Error(NumberOutOfRange).

func applyBinary(op core.BinaryOp, l, r core.Value) core.Value {
	switch op {
	case core.OpAdd:
		return add(l, r)
	case core.OpSub:
		return sub(l, r)
	case core.OpMul:
		return mul(l, r)
	case core.OpDiv:
		return div(l, r)
	default:
		return pow(l, r)
	}
}

// number wraps a float result, rejecting values that are not finite.
func number(f float64) core.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return core.Error(core.NumberOutOfRange)
	}
	return core.Float(f)
}

func bothInt(l, r core.Value) bool {
	return l.Kind() == core.KindInt && r.Kind() == core.KindInt
}

func floats(l, r core.Value) (float64, float64) {
	a, _ := l.AsFloat()
	b, _ := r.AsFloat()
	return a, b
}

func add(l, r core.Value) core.Value {
	if bothInt(l, r) {
		a, b := l.IntValue(), r.IntValue()
		s := a + b
		if (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0) {
			return core.Float(float64(a) + float64(b))
		}
		return core.Int(s)
	}
	a, b := floats(l, r)
	return number(a + b)
}

func sub(l, r core.Value) core.Value {
	if bothInt(l, r) {
		a, b := l.IntValue(), r.IntValue()
		d := a - b
		if (b < 0 && d < a) || (b > 0 && d > a) {
			return core.Float(float64(a) - float64(b))
		}
		return core.Int(d)
	}
	a, b := floats(l, r)
	return number(a - b)
}

func mul(l, r core.Value) core.Value {
	if bothInt(l, r) {
		a, b := l.IntValue(), r.IntValue()
		if p, ok := mulInt(a, b); ok {
			return core.Int(p)
		}
		return core.Float(float64(a) * float64(b))
	}
	a, b := floats(l, r)
	return number(a * b)
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

func div(l, r core.Value) core.Value {
	if r.IsZero() {
		return core.Error(core.DivideByZero)
	}
	a, b := floats(l, r)
	return number(a / b)
}

func pow(l, r core.Value) core.Value {
	if l.IsZero() {
		if neg, _ := r.AsFloat(); neg < 0 {
			return core.Error(core.DivideByZero)
		}
	}
	if bothInt(l, r) && r.IntValue() >= 0 {
		if p, ok := powInt(l.IntValue(), r.IntValue()); ok {
			return core.Int(p)
		}
	}
	a, b := floats(l, r)
	return number(math.Pow(a, b))
}

// powInt computes base^exp by repeated squaring, reporting overflow.
func powInt(base, exp int64) (int64, bool) {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			var ok bool
			if result, ok = mulInt(result, base); !ok {
				return 0, false
			}
		}
		exp >>= 1
		if exp > 0 {
			var ok bool
			if base, ok = mulInt(base, base); !ok {
				return 0, false
			}
		}
	}
	return result, true
}

// compare orders two numbers, exactly when both are integers.
func compare(l, r core.Value) int {
	if bothInt(l, r) {
		a, b := l.IntValue(), r.IntValue()
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	a, b := floats(l, r)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
