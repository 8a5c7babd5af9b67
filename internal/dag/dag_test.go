package dag

import (
	"fmt"
	"runtime"
	"slices"
	"testing"
)

// build interns names and sets dependencies: edges["b"] = {"a"} means b
// depends on a.
func build(t *testing.T, edges map[string][]string) *Graph {
	t.Helper()
	g := NewGraph()
	names := make([]string, 0, len(edges))
	for name := range edges {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		id := g.Intern(name)
		deps := make([]NodeID, 0, len(edges[name]))
		for _, d := range edges[name] {
			deps = append(deps, g.Intern(d))
		}
		g.SetDependencies(id, deps)
	}
	if err := g.CheckInvariants(); err != nil {
		t.Fatalf("invariants violated after build: %v", err)
	}
	return g
}

func id(t *testing.T, g *Graph, name string) NodeID {
	t.Helper()
	n, ok := g.Lookup(name)
	if !ok {
		t.Fatalf("node %q not interned", name)
	}
	return n
}

func sortedNames(g *Graph, ids []NodeID) []string {
	names := g.Names(ids)
	slices.Sort(names)
	return names
}

func TestGraph_Intern(t *testing.T) {
	g := NewGraph()

	a := g.Intern("A1")
	b := g.Intern("B1")
	if a == b {
		t.Fatalf("expected distinct ids, got %d and %d", a, b)
	}
	if again := g.Intern("A1"); again != a {
		t.Errorf("expected Intern to be stable, got %d want %d", again, a)
	}
	if g.NodeCount() != 2 {
		t.Errorf("expected 2 nodes, got %d", g.NodeCount())
	}
	if g.Name(b) != "B1" {
		t.Errorf("expected name B1, got %q", g.Name(b))
	}
	if _, ok := g.Lookup("C1"); ok {
		t.Error("expected Lookup to miss an unknown name")
	}

	g.Clear()
	if g.NodeCount() != 0 {
		t.Errorf("expected empty graph after Clear, got %d nodes", g.NodeCount())
	}
}

func TestGraph_SetDependencies(t *testing.T) {
	g := build(t, map[string][]string{
		"C1": {"A1", "B1", "A1"},
	})

	c := id(t, g, "C1")
	if got := sortedNames(g, g.GetParents(c)); !slices.Equal(got, []string{"A1", "B1"}) {
		t.Errorf("expected C1 parents [A1 B1], got %v", got)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
	if got := g.Names(g.GetChildren(id(t, g, "A1"))); !slices.Equal(got, []string{"C1"}) {
		t.Errorf("expected A1 children [C1], got %v", got)
	}
}

func TestGraph_SetDependencies_Reparent(t *testing.T) {
	g := build(t, map[string][]string{
		"B1": {"A1"},
	})
	b := id(t, g, "B1")
	a := id(t, g, "A1")

	g.SetDependencies(b, []NodeID{g.Intern("C1")})

	if err := g.CheckInvariants(); err != nil {
		t.Fatalf("invariants violated: %v", err)
	}
	if got := g.Names(g.GetParents(b)); !slices.Equal(got, []string{"C1"}) {
		t.Errorf("expected B1 parents [C1], got %v", got)
	}
	if len(g.GetChildren(a)) != 0 {
		t.Errorf("expected A1 to have no children, got %v", g.Names(g.GetChildren(a)))
	}

	g.SetDependencies(b, nil)
	if g.EdgeCount() != 0 {
		t.Errorf("expected no edges, got %d", g.EdgeCount())
	}
}

func TestGraph_FindCycle(t *testing.T) {
	tests := []struct {
		name    string
		edges   map[string][]string
		origin  string
		newDeps []string
		want    []string
	}{
		{
			name:    "no cycle",
			edges:   map[string][]string{"B1": {"A1"}},
			origin:  "C1",
			newDeps: []string{"B1"},
		},
		{
			name:    "self reference",
			edges:   map[string][]string{},
			origin:  "A1",
			newDeps: []string{"A1"},
			want:    []string{"A1", "A1"},
		},
		{
			name:    "two cells",
			edges:   map[string][]string{"A1": {"B1"}},
			origin:  "B1",
			newDeps: []string{"A1"},
			want:    []string{"B1", "A1", "B1"},
		},
		{
			name:    "longer path",
			edges:   map[string][]string{"B1": {"C1"}, "C1": {"D1"}, "D1": {"A1"}},
			origin:  "A1",
			newDeps: []string{"X1", "B1"},
			want:    []string{"A1", "B1", "C1", "D1", "A1"},
		},
		{
			name:    "old edges of origin are ignored",
			edges:   map[string][]string{"A1": {"B1"}, "B1": {"C1"}},
			origin:  "A1",
			newDeps: []string{"C1"},
		},
		{
			name:    "diamond is not a cycle",
			edges:   map[string][]string{"B1": {"A1"}, "C1": {"A1"}},
			origin:  "D1",
			newDeps: []string{"B1", "C1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.edges)
			origin := g.Intern(tt.origin)
			var deps []NodeID
			for _, d := range tt.newDeps {
				deps = append(deps, g.Intern(d))
			}
			edgesBefore := g.EdgeCount()

			got := g.Names(g.FindCycle(origin, deps))
			if len(tt.want) == 0 && len(got) != 0 {
				t.Errorf("expected no cycle, got %v", got)
			}
			if len(tt.want) > 0 && !slices.Equal(got, tt.want) {
				t.Errorf("expected cycle %v, got %v", tt.want, got)
			}
			if g.EdgeCount() != edgesBefore {
				t.Errorf("FindCycle modified the graph: %d edges, was %d", g.EdgeCount(), edgesBefore)
			}
		})
	}
}

func TestGraph_HasCycle(t *testing.T) {
	g := build(t, map[string][]string{
		"B1": {"A1"},
		"C1": {"B1"},
	})
	if hasCycle, path := g.HasCycle(); hasCycle {
		t.Errorf("expected no cycle, but found: %v", g.Names(path))
	}

	// SetDependencies does not check; HasCycle must notice.
	g.SetDependencies(id(t, g, "A1"), []NodeID{id(t, g, "C1")})
	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Fatal("expected cycle to be detected")
	}
	if len(path) != 4 || path[0] != path[len(path)-1] {
		t.Errorf("expected closed cycle path of 4 nodes, got %v", g.Names(path))
	}
}

func TestGraph_GetAffectedNodes(t *testing.T) {
	g := build(t, map[string][]string{
		"B1": {"A1"},
		"C1": {"B1"},
		"E1": {"D1"},
	})

	got := sortedNames(g, g.GetAffectedNodes(id(t, g, "A1")))
	if !slices.Equal(got, []string{"A1", "B1", "C1"}) {
		t.Errorf("expected [A1 B1 C1] affected, got %v", got)
	}

	got = sortedNames(g, g.GetAffectedNodes(id(t, g, "C1")))
	if !slices.Equal(got, []string{"C1"}) {
		t.Errorf("expected only C1 affected, got %v", got)
	}
}

func TestGraph_GetUpstreamNodes(t *testing.T) {
	g := build(t, map[string][]string{
		"C1": {"A1", "B1"},
		"D1": {"C1"},
	})

	got := sortedNames(g, g.GetUpstreamNodes(id(t, g, "D1")))
	if !slices.Equal(got, []string{"A1", "B1", "C1"}) {
		t.Errorf("expected 3 upstream nodes, got %v", got)
	}
}

func TestGraph_LongChain(t *testing.T) {
	const n = 100000
	g := NewGraph()
	prev := g.Intern("A1")
	for i := 2; i <= n; i++ {
		cur := g.Intern(fmt.Sprintf("A%d", i))
		g.SetDependencies(cur, []NodeID{prev})
		prev = cur
	}

	first := id(t, g, "A1")
	if got := len(g.GetAffectedNodes(first)); got != n {
		t.Errorf("expected %d affected nodes, got %d", n, got)
	}
	if levels, err := g.GetExecutionLevels(); err != nil || len(levels) != n {
		t.Errorf("expected %d levels, got %d (err %v)", n, len(levels), err)
	}
	if path := g.FindCycle(first, []NodeID{prev}); len(path) != n+1 {
		t.Errorf("expected cycle of %d nodes, got %d", n+1, len(path))
	}
	if hasCycle, _ := g.HasCycle(); hasCycle {
		t.Error("expected chain to be acyclic")
	}
}

func TestGraph_Reachable(t *testing.T) {
	g := build(t, map[string][]string{
		"B1": {"A1"},
		"C1": {"B1"},
		"D1": {"C1", "A1"},
	})

	tests := []struct {
		name  string
		start string
		dir   Direction
		depth int
		want  []string
	}{
		{"upstream unlimited", "D1", Upstream, 0, []string{"A1", "B1", "C1"}},
		{"upstream depth 1", "D1", Upstream, 1, []string{"A1", "C1"}},
		{"upstream depth 2", "D1", Upstream, 2, []string{"A1", "B1", "C1"}},
		{"downstream unlimited", "A1", Downstream, 0, []string{"B1", "C1", "D1"}},
		{"downstream depth 1", "A1", Downstream, 1, []string{"B1", "D1"}},
		{"leaf", "D1", Downstream, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sortedNames(g, g.Reachable(id(t, g, tt.start), tt.dir, tt.depth))
			if len(got) != len(tt.want) || (len(got) > 0 && !slices.Equal(got, tt.want)) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGraph_GetExecutionLevels(t *testing.T) {
	g := build(t, map[string][]string{
		"B1": {"A1"},
		"C1": {"A1"},
		"D1": {"B1", "C1"},
		"E1": {"A1", "D1"},
	})

	levels, err := g.GetExecutionLevels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]string{{"A1"}, {"B1", "C1"}, {"D1"}, {"E1"}}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %d", len(want), len(levels))
	}
	for i, level := range levels {
		if got := sortedNames(g, level); !slices.Equal(got, want[i]) {
			t.Errorf("level %d: expected %v, got %v", i, want[i], got)
		}
	}

	g.SetDependencies(id(t, g, "A1"), []NodeID{id(t, g, "E1")})
	if _, err := g.GetExecutionLevels(); err == nil {
		t.Error("expected cycle error")
	}
}

// bytesPerRun returns the average heap bytes allocated by one call of f.
func bytesPerRun(runs int, f func()) uint64 {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	for range runs {
		f()
	}
	runtime.ReadMemStats(&after)
	return (after.TotalAlloc - before.TotalAlloc) / uint64(runs)
}

func TestGraph_WalkCostIndependentOfSize(t *testing.T) {
	perWalk := func(n int) uint64 {
		g := NewGraph()
		prev := g.Intern("A1")
		for i := 2; i <= n; i++ {
			cur := g.Intern(fmt.Sprintf("A%d", i))
			g.SetDependencies(cur, []NodeID{prev})
			prev = cur
		}
		lone := g.Intern("Z1")
		return bytesPerRun(200, func() {
			g.GetAffectedNodes(lone)
			g.FindCycle(lone, nil)
			g.Reachable(lone, Downstream, 0)
		})
	}

	small, large := perWalk(100), perWalk(200000)
	if large > small+512 {
		t.Errorf("walks from an isolated node allocate %d bytes on a large graph, %d on a small one", large, small)
	}
}

func TestGraph_ManyDependents(t *testing.T) {
	const n = 50000
	g := NewGraph()
	hub := g.Intern("A1")
	other := g.Intern("B1")
	readers := make([]NodeID, n)
	for i := range readers {
		readers[i] = g.Intern(fmt.Sprintf("C%d", i+1))
		g.SetDependencies(readers[i], []NodeID{hub})
	}
	if got := len(g.GetChildren(hub)); got != n {
		t.Fatalf("expected %d dependents, got %d", n, got)
	}

	// Move every third reader to another node, from the middle outwards.
	moved := 0
	for i := n / 2; i < n; i += 3 {
		g.SetDependencies(readers[i], []NodeID{other})
		moved++
	}
	for i := n/2 - 3; i >= 0; i -= 3 {
		g.SetDependencies(readers[i], []NodeID{other, hub})
	}

	if err := g.CheckInvariants(); err != nil {
		t.Fatalf("invariants violated: %v", err)
	}
	if got := len(g.GetChildren(hub)); got != n-moved {
		t.Errorf("expected %d dependents of A1, got %d", n-moved, got)
	}
	if slices.Contains(g.GetChildren(hub), readers[n/2]) {
		t.Error("expected moved reader to be gone from A1 dependents")
	}

	for _, r := range readers {
		g.SetDependencies(r, nil)
	}
	if g.EdgeCount() != 0 || len(g.GetChildren(hub)) != 0 || len(g.GetChildren(other)) != 0 {
		t.Errorf("expected no edges left, got %d", g.EdgeCount())
	}
	if err := g.CheckInvariants(); err != nil {
		t.Fatalf("invariants violated: %v", err)
	}
}

func TestGraph_WalksAfterClear(t *testing.T) {
	g := build(t, map[string][]string{"B1": {"A1"}})
	g.Clear()

	a := g.Intern("A1")
	b := g.Intern("B1")
	g.SetDependencies(b, []NodeID{a})
	if got := g.Names(g.GetAffectedNodes(a)); !slices.Equal(got, []string{"A1", "B1"}) {
		t.Errorf("expected [A1 B1] affected, got %v", got)
	}
	if path := g.Names(g.FindCycle(a, []NodeID{b})); !slices.Equal(path, []string{"A1", "B1", "A1"}) {
		t.Errorf("expected cycle [A1 B1 A1], got %v", path)
	}
}
