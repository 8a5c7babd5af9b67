// Package sheet holds cell definitions, their dependency graph and the
// value cache.
//
// SetCell classifies and parses the text, rejects assignments that would
// create a cycle, rewires the graph and evicts every cached value that
// could have read the old definition. GetCellValue computes values on
// demand, evaluating each cell at most once per cache generation.
//
// A Sheet is not safe for concurrent use.
package sheet

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/leapcell/internal/dag"
	"github.com/leapstack-labs/leapcell/pkg/core"
	"github.com/leapstack-labs/leapcell/pkg/formula"
)

// cell is the state of one defined cell.
type cell struct {
	def    Definition
	value  core.Value
	cached bool
}

// Sheet is a spreadsheet of formula cells.
type Sheet struct {
	graph *dag.Graph
	cells []*cell // indexed by dag.NodeID; nil for referenced but undefined cells

	evaluations int

	maxCols int
	maxRows int
	logger  *slog.Logger
}

// New creates an empty sheet.
func New(opts ...Option) *Sheet {
	s := &Sheet{
		graph:  dag.NewGraph(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bounds returns the column and row limits; zero means unbounded.
func (s *Sheet) Bounds() (cols, rows int) {
	return s.maxCols, s.maxRows
}

// SetCell assigns text to a cell.
//
// Text starting with '=' is a formula; a formula that does not parse is
// still stored and reads as Error(InvalidFormula). A run of digits is an
// integer and anything else is literal text.
//
// If the formula would make the cell depend on itself, SetCell returns a
// *CycleError and leaves the sheet unchanged. Assigning the text a cell
// already holds is a no-op.
func (s *Sheet) SetCell(name, text string) error {
	id, err := s.cellID(name)
	if err != nil {
		return err
	}
	key := id.String()

	if c := s.lookup(key); c != nil && c.def.Text == text {
		s.logger.Debug("cell unchanged", "cell", key)
		return nil
	}

	def := Classify(text)
	refs := def.Dependencies()

	if path := s.findCycle(key, refs); path != nil {
		s.logger.Debug("rejected circular assignment", "cell", key, "path", path)
		return &CycleError{Cell: key, Path: path}
	}

	nid := s.intern(key)
	deps := make([]dag.NodeID, len(refs))
	for i, ref := range refs {
		deps[i] = s.intern(ref.String())
	}
	s.graph.SetDependencies(nid, deps)
	s.cells[nid] = &cell{def: def}

	evicted := s.invalidate(nid)
	s.logger.Debug("cell set",
		"cell", key,
		"kind", def.Kind.String(),
		"deps", len(deps),
		"evicted", evicted,
	)
	return nil
}

// findCycle checks the prospective dependencies of key against the
// committed graph without changing it. Cells not in the graph yet have no
// edges, so they can only take part in a cycle through key itself.
func (s *Sheet) findCycle(key string, refs []core.CellID) []string {
	origin, known := s.graph.Lookup(key)

	deps := make([]dag.NodeID, 0, len(refs))
	for _, ref := range refs {
		name := ref.String()
		if name == key {
			return []string{key, key}
		}
		if id, ok := s.graph.Lookup(name); ok {
			deps = append(deps, id)
		}
	}
	if !known {
		return nil
	}
	if path := s.graph.FindCycle(origin, deps); path != nil {
		return s.graph.Names(path)
	}
	return nil
}

// invalidate evicts the cached value of id and of everything downstream.
func (s *Sheet) invalidate(id dag.NodeID) int {
	evicted := 0
	for _, n := range s.graph.GetAffectedNodes(id) {
		if c := s.cells[n]; c != nil && c.cached {
			c.cached = false
			c.value = core.Value{}
			evicted++
		}
	}
	return evicted
}

// GetCellValue returns the value of a cell, computing and caching it and
// any uncached cells it depends on. Undefined cells and invalid names read
// as Error(MissingCell) and are never cached.
func (s *Sheet) GetCellValue(name string) core.Value {
	id, err := s.cellID(name)
	if err != nil {
		return core.Error(core.MissingCell)
	}
	nid, ok := s.graph.Lookup(id.String())
	if !ok || s.cells[nid] == nil {
		return core.Error(core.MissingCell)
	}
	if c := s.cells[nid]; c.cached {
		return c.value
	}

	s.resolve(nid)
	return s.cells[nid].value
}

// resolve computes root with an explicit work stack. A cell whose formula
// reads uncached cells pushes them and is retried once they are done, so
// only the cells a formula actually reads are evaluated and each at most
// once. The graph is acyclic, so the stack always drains.
func (s *Sheet) resolve(root dag.NodeID) {
	stack := []dag.NodeID{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		c := s.cells[n]
		if c.cached {
			stack = stack[:len(stack)-1]
			continue
		}

		v, misses := s.evaluate(c)
		if len(misses) > 0 {
			for _, m := range misses {
				mid, _ := s.graph.Lookup(m.String())
				stack = append(stack, mid)
			}
			continue
		}

		c.value, c.cached = v, true
		s.evaluations++
		stack = stack[:len(stack)-1]
		s.logger.Debug("cell evaluated", "cell", s.graph.Name(n), "value", v.String())
	}
}

// evaluate computes a cell from its definition. It returns the defined but
// uncached cells the formula needs first, if any.
func (s *Sheet) evaluate(c *cell) (core.Value, []core.CellID) {
	switch c.def.Kind {
	case Integer:
		return core.Int(c.def.Integer), nil
	case Formula:
		return formula.EvaluateLazy(c.def.Expr, s.cachedValue)
	case InvalidFormula:
		return core.Error(core.InvalidFormula), nil
	default:
		return core.Text(c.def.Text), nil
	}
}

// cachedValue is the resolver handed to formulas: undefined cells are
// MissingCell, uncached cells are reported as not ready.
func (s *Sheet) cachedValue(id core.CellID) (core.Value, bool) {
	nid, ok := s.graph.Lookup(id.String())
	if !ok || s.cells[nid] == nil {
		return core.Error(core.MissingCell), true
	}
	c := s.cells[nid]
	if !c.cached {
		return core.Value{}, false
	}
	return c.value, true
}

// GetCellExpr returns the raw text last assigned to a cell, or "" if it
// was never set.
func (s *Sheet) GetCellExpr(name string) string {
	if c := s.lookupName(name); c != nil {
		return c.def.Text
	}
	return ""
}

// Definition returns the classified definition of a cell.
func (s *Sheet) Definition(name string) (Definition, bool) {
	if c := s.lookupName(name); c != nil {
		return c.def, true
	}
	return Definition{}, false
}

// IsCached reports whether a cell currently holds a cached value.
func (s *Sheet) IsCached(name string) bool {
	c := s.lookupName(name)
	return c != nil && c.cached
}

// EvaluationCount returns how many cell evaluations have completed since
// the sheet was created or cleared.
func (s *Sheet) EvaluationCount() int {
	return s.evaluations
}

// Dependencies returns the cells a cell's formula reads, in row-major
// order. Undefined cells are included.
func (s *Sheet) Dependencies(name string) []string {
	return s.related(name, s.graph.GetParents)
}

// Dependents returns the cells whose formulas read a cell, in row-major
// order.
func (s *Sheet) Dependents(name string) []string {
	return s.related(name, s.graph.GetChildren)
}

// Precedents returns every cell a cell transitively reads, in row-major
// order.
func (s *Sheet) Precedents(name string) []string {
	return s.related(name, s.graph.GetUpstreamNodes)
}

// PrecedentsWithin is Precedents limited to depth levels of formulas;
// depth 1 equals Dependencies and 0 or less is unlimited.
func (s *Sheet) PrecedentsWithin(name string, depth int) []string {
	return s.related(name, func(id dag.NodeID) []dag.NodeID {
		return s.graph.Reachable(id, dag.Upstream, depth)
	})
}

// DependentsWithin returns the cells that read a cell through at most
// depth formulas, in row-major order; 0 or less is unlimited.
func (s *Sheet) DependentsWithin(name string, depth int) []string {
	return s.related(name, func(id dag.NodeID) []dag.NodeID {
		return s.graph.Reachable(id, dag.Downstream, depth)
	})
}

// Levels groups every known cell by evaluation depth: level 0 holds cells
// that read nothing (including referenced but undefined cells) and level N
// holds cells whose deepest dependency is at level N-1. Each level is in
// row-major order.
func (s *Sheet) Levels() ([][]string, error) {
	ids, err := s.graph.GetExecutionLevels()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCircularDependency, err)
	}
	levels := make([][]string, len(ids))
	for i, level := range ids {
		levels[i] = sortCells(s.graph.Names(level))
	}
	return levels, nil
}

func (s *Sheet) related(name string, edges func(dag.NodeID) []dag.NodeID) []string {
	id, err := core.ParseCellID(name)
	if err != nil {
		return nil
	}
	nid, ok := s.graph.Lookup(id.String())
	if !ok {
		return nil
	}
	return sortCells(s.graph.Names(edges(nid)))
}

// Cells returns the defined cells in row-major order.
func (s *Sheet) Cells() []string {
	var names []string
	for i, c := range s.cells {
		if c != nil {
			names = append(names, s.graph.Name(dag.NodeID(i)))
		}
	}
	return sortCells(names)
}

// Stats summarizes the sheet.
type Stats struct {
	Cells       int // defined cells
	Referenced  int // cells known to the graph, defined or not
	Edges       int
	Cached      int
	Evaluations int
}

// Stats returns counters describing the sheet.
func (s *Sheet) Stats() Stats {
	st := Stats{
		Referenced:  s.graph.NodeCount(),
		Edges:       s.graph.EdgeCount(),
		Evaluations: s.evaluations,
	}
	for _, c := range s.cells {
		if c == nil {
			continue
		}
		st.Cells++
		if c.cached {
			st.Cached++
		}
	}
	return st
}

// Clear removes every cell and resets the evaluation counter.
func (s *Sheet) Clear() {
	s.graph.Clear()
	s.cells = nil
	s.evaluations = 0
}

// CheckInvariants verifies graph symmetry and acyclicity.
func (s *Sheet) CheckInvariants() error {
	if err := s.graph.CheckInvariants(); err != nil {
		return err
	}
	if hasCycle, path := s.graph.HasCycle(); hasCycle {
		return fmt.Errorf("%w: %v", ErrCircularDependency, s.graph.Names(path))
	}
	return nil
}

// cellID validates a cell name against the grammar and the bounds.
func (s *Sheet) cellID(name string) (core.CellID, error) {
	id, err := core.ParseCellID(name)
	if err != nil {
		return core.CellID{}, fmt.Errorf("%w: %q", ErrInvalidCellName, name)
	}
	if (s.maxCols > 0 && id.Col > s.maxCols) || (s.maxRows > 0 && id.Row > s.maxRows) {
		return core.CellID{}, fmt.Errorf("%w: %s is outside %d columns x %d rows",
			ErrOutOfBounds, id, s.maxCols, s.maxRows)
	}
	return id, nil
}

func (s *Sheet) intern(key string) dag.NodeID {
	id := s.graph.Intern(key)
	for int(id) >= len(s.cells) {
		s.cells = append(s.cells, nil)
	}
	return id
}

func (s *Sheet) lookup(key string) *cell {
	if id, ok := s.graph.Lookup(key); ok {
		return s.cells[id]
	}
	return nil
}

func (s *Sheet) lookupName(name string) *cell {
	id, err := core.ParseCellID(name)
	if err != nil {
		return nil
	}
	return s.lookup(id.String())
}

// sortCells orders cell names row-major. Names are canonical labels.
func sortCells(names []string) []string {
	slices.SortFunc(names, func(a, b string) int {
		ia, ib := core.MustParseCellID(a), core.MustParseCellID(b)
		switch {
		case ia.Less(ib):
			return -1
		case ib.Less(ia):
			return 1
		}
		return 0
	})
	return names
}
