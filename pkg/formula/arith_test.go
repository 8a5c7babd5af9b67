package formula

import (
	"math"
	"testing"

	"github.com/leapstack-labs/leapcell/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestMulInt(t *testing.T) {
	tests := []struct {
		a, b int64
		want int64
		ok   bool
	}{
		{3, 4, 12, true},
		{-3, 4, -12, true},
		{0, math.MaxInt64, 0, true},
		{math.MaxInt64, 2, 0, false},
		{math.MinInt64, -1, 0, false},
		{-1, math.MinInt64, 0, false},
		{1 << 31, 1 << 31, 1 << 62, true},
		{1 << 32, 1 << 31, 0, false},
	}

	for _, tt := range tests {
		got, ok := mulInt(tt.a, tt.b)
		assert.Equal(t, tt.ok, ok, "%d*%d", tt.a, tt.b)
		if tt.ok {
			assert.Equal(t, tt.want, got, "%d*%d", tt.a, tt.b)
		}
	}
}

func TestPowInt(t *testing.T) {
	tests := []struct {
		base, exp int64
		want      int64
		ok        bool
	}{
		{2, 10, 1024, true},
		{-2, 3, -8, true},
		{7, 0, 1, true},
		{0, 0, 1, true},
		{3, 39, 4052555153018976267, true},
		{3, 40, 0, false},
		{2, 63, 0, false},
		{-2, 63, math.MinInt64, true},
	}

	for _, tt := range tests {
		got, ok := powInt(tt.base, tt.exp)
		assert.Equal(t, tt.ok, ok, "%d^%d", tt.base, tt.exp)
		if tt.ok {
			assert.Equal(t, tt.want, got, "%d^%d", tt.base, tt.exp)
		}
	}
}

func TestApplyBinary_NonFinite(t *testing.T) {
	tests := []struct {
		name string
		op   core.BinaryOp
		l, r core.Value
		want core.Value
	}{
		{"negative base fractional power", core.OpPow, core.Int(-8), core.Float(1.0 / 3), core.Error(core.NumberOutOfRange)},
		{"negative float base half power", core.OpPow, core.Float(-2.5), core.Float(0.5), core.Error(core.NumberOutOfRange)},
		{"pow overflows float", core.OpPow, core.Int(10), core.Float(400), core.Error(core.NumberOutOfRange)},
		{"product overflows float", core.OpMul, core.Float(1e200), core.Float(1e200), core.Error(core.NumberOutOfRange)},
		{"quotient overflows float", core.OpDiv, core.Float(1e300), core.Float(1e-300), core.Error(core.NumberOutOfRange)},
		{"sum overflows float", core.OpAdd, core.Float(math.MaxFloat64), core.Float(math.MaxFloat64), core.Error(core.NumberOutOfRange)},
		{"negative base integer power", core.OpPow, core.Int(-8), core.Float(2), core.Float(64)},
		{"positive base fractional power", core.OpPow, core.Int(8), core.Float(1.0 / 3), core.Float(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyBinary(tt.op, tt.l, tt.r)
			if tt.want.Kind() == core.KindFloat {
				assert.Equal(t, core.KindFloat, got.Kind(), "got %v", got)
				f, _ := got.AsFloat()
				want, _ := tt.want.AsFloat()
				assert.InDelta(t, want, f, 1e-12)
				return
			}
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}
