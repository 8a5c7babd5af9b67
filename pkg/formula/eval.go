// Package formula evaluates expression trees.
//
// Evaluation runs on an explicit stack, so deeply nested formulas never
// grow the Go call stack. Runtime failures are core.Error values that
// poison every expression consuming them; they are never Go errors.
package formula

import (
	"github.com/leapstack-labs/leapcell/pkg/core"
)

// Resolver returns the current value of a cell.
type Resolver func(core.CellID) core.Value

// LazyResolver returns the current value of a cell, or ok=false when that
// value has not been computed yet.
type LazyResolver func(core.CellID) (v core.Value, ok bool)

// Evaluate computes the value of expr, reading cells through resolve.
func Evaluate(expr core.Expr, resolve Resolver) core.Value {
	v, _ := EvaluateLazy(expr, func(id core.CellID) (core.Value, bool) {
		return resolve(id), true
	})
	return v
}

// EvaluateLazy computes the value of expr like Evaluate, but tolerates
// cells the resolver cannot supply yet. When any are hit, evaluation keeps
// going through sibling operands to collect as many of them as it can and
// returns them as misses; the value is then meaningless and the caller
// retries once the misses are available.
//
// Branches of an If whose condition is still missing are not visited, so a
// retry never asks for cells in the branch that is not taken.
func EvaluateLazy(expr core.Expr, resolve LazyResolver) (core.Value, []core.CellID) {
	m := &machine{resolve: resolve}
	r := m.run(expr)
	if r.pending {
		return core.Value{}, m.misses
	}
	return r.v, nil
}

// result is the outcome of one subexpression.
type result struct {
	v       core.Value
	pending bool
}

type machine struct {
	resolve LazyResolver
	stack   []*frame
	misses  []core.CellID
	seen    map[core.CellID]struct{}
}

func (m *machine) run(root core.Expr) result {
	carry, leaf := m.enter(root)
	if leaf {
		return carry
	}

	for len(m.stack) > 0 {
		f := m.stack[len(m.stack)-1]
		if f.received {
			f.received = false
			if r, done := f.receive(carry); done {
				m.pop()
				carry = r
				m.deliver()
				continue
			}
		}

		child, ok := f.next()
		if !ok {
			carry = f.finish()
			m.pop()
			m.deliver()
			continue
		}
		if r, leaf := m.enter(child); leaf {
			carry = r
			f.received = true
		}
	}
	return carry
}

func (m *machine) pop() {
	m.stack = m.stack[:len(m.stack)-1]
}

// deliver marks the new top frame as having a child result to consume.
func (m *machine) deliver() {
	if len(m.stack) > 0 {
		m.stack[len(m.stack)-1].received = true
	}
}

// enter evaluates leaves immediately. Composite nodes get a frame and are
// finished by run.
func (m *machine) enter(e core.Expr) (result, bool) {
	switch n := e.(type) {
	case *core.IntLit:
		return result{v: core.Int(n.Value)}, true
	case *core.StrLit:
		return result{v: core.Text(n.Value)}, true
	case *core.CellRef:
		v, ok := m.resolve(n.Cell)
		if !ok {
			m.miss(n.Cell)
			return result{pending: true}, true
		}
		return result{v: v}, true
	case *core.BinaryExpr:
		m.stack = append(m.stack, &frame{
			kind:     frameBinary,
			op:       n.Op,
			children: []core.Expr{n.Left, n.Right},
			numeric:  true,
		})
		return result{}, false
	case *core.CallExpr:
		f := &frame{fn: n.Func, args: n.Args, children: n.Args}
		switch n.Func {
		case core.FuncIf:
			if len(n.Args) != 3 {
				return result{v: core.Error(core.InvalidFormula)}, true
			}
			f.kind = frameIf
			f.children = n.Args[:1]
		case core.FuncConcat:
			f.kind = frameCall
		default:
			f.kind = frameCall
			f.numeric = true
		}
		m.stack = append(m.stack, f)
		return result{}, false
	default:
		return result{v: core.Error(core.InvalidFormula)}, true
	}
}

func (m *machine) miss(id core.CellID) {
	if m.seen == nil {
		m.seen = make(map[core.CellID]struct{})
	}
	if _, ok := m.seen[id]; ok {
		return
	}
	m.seen[id] = struct{}{}
	m.misses = append(m.misses, id)
}

type frameKind uint8

const (
	frameBinary frameKind = iota
	frameCall
	frameIf
)

// frame tracks one composite node while its operands are evaluated left
// to right.
type frame struct {
	kind     frameKind
	op       core.BinaryOp
	fn       core.Function
	args     []core.Expr // If: condition, then, else
	children []core.Expr // operands still to visit, in order
	numeric  bool        // operands must be numbers

	pos      int
	values   []core.Value
	pending  bool
	received bool
	decided  bool // If: branch chosen
}

// next returns the next operand to evaluate.
func (f *frame) next() (core.Expr, bool) {
	if f.pos >= len(f.children) {
		return nil, false
	}
	e := f.children[f.pos]
	f.pos++
	return e, true
}

// receive consumes an operand result. done reports that the frame's own
// result is already decided.
func (f *frame) receive(r result) (out result, done bool) {
	if f.kind == frameIf {
		return f.receiveIf(r)
	}

	if r.pending {
		f.pending = true
		return result{}, false
	}

	v := r.v
	if !v.IsError() && f.numeric && !v.IsNumber() {
		v = core.Error(core.TypeMismatch)
	}
	if v.IsError() {
		// An earlier operand may still fail first once it is available.
		if f.pending {
			return result{pending: true}, true
		}
		return result{v: v}, true
	}

	f.values = append(f.values, v)
	return result{}, false
}

// receiveIf handles the condition and then the chosen branch. A pending
// or failed condition decides the whole If without visiting a branch.
func (f *frame) receiveIf(r result) (result, bool) {
	if f.decided || r.pending || r.v.IsError() {
		return r, true
	}
	f.decided = true
	branch := f.args[2]
	if r.v.Truthy() {
		branch = f.args[1]
	}
	f.children = []core.Expr{branch}
	f.pos = 0
	return result{}, false
}

// finish computes the frame's result once every operand has arrived.
func (f *frame) finish() result {
	if f.pending {
		return result{pending: true}
	}
	switch f.kind {
	case frameBinary:
		return result{v: applyBinary(f.op, f.values[0], f.values[1])}
	default:
		return result{v: callFunction(f.fn, f.values)}
	}
}
