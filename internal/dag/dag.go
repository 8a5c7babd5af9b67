// Package dag provides the cell dependency graph.
//
// Names are interned into dense NodeIDs backed by an arena. Every node
// keeps a sorted dependency (parent) list and an unordered dependent
// (child) list whose positions are indexed, so adding or dropping a reader
// is constant time however many readers a node has. All walks are
// iterative and only touch the nodes they reach.
package dag

import (
	"fmt"
	"slices"
)

// NodeID is the interned identifier of a node.
type NodeID uint32

type node struct {
	name string
	deps []NodeID // parents: nodes this node reads, sorted
	rev  []NodeID // children: nodes that read this node, unordered
}

// edge identifies child reading parent.
type edge struct {
	parent, child NodeID
}

// Graph is a directed graph from each node to the nodes it depends on.
// Edges are kept acyclic by callers checking FindCycle before
// SetDependencies.
type Graph struct {
	nodes  []node
	index  map[string]NodeID
	revPos map[edge]int // position of child in nodes[parent].rev

	// Walk scratch, reused across walks: mark[n] == epoch means n was
	// reached by the current walk, and parent[n] is only read for such n.
	mark   []uint32
	parent []NodeID
	epoch  uint32
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		index:  make(map[string]NodeID),
		revPos: make(map[edge]int),
	}
}

// Clear removes all nodes and edges from the graph.
func (g *Graph) Clear() {
	g.nodes = nil
	g.index = make(map[string]NodeID)
	g.revPos = make(map[edge]int)
	g.mark = nil
	g.parent = nil
	g.epoch = 0
}

// Intern returns the id for name, adding a node without edges if needed.
func (g *Graph) Intern(name string) NodeID {
	if id, ok := g.index[name]; ok {
		return id
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, node{name: name})
	g.mark = append(g.mark, 0)
	g.parent = append(g.parent, 0)
	g.index[name] = id
	return id
}

// Lookup returns the id for name without interning it.
func (g *Graph) Lookup(name string) (NodeID, bool) {
	id, ok := g.index[name]
	return id, ok
}

// Name returns the name a node was interned with.
func (g *Graph) Name(id NodeID) string {
	return g.nodes[id].name
}

// Names maps ids back to names.
func (g *Graph) Names(ids []NodeID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = g.nodes[id].name
	}
	return names
}

// NodeCount returns the number of interned nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of dependency edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for i := range g.nodes {
		count += len(g.nodes[i].deps)
	}
	return count
}

// GetParents returns the dependencies of a node.
func (g *Graph) GetParents(id NodeID) []NodeID {
	return g.nodes[id].deps
}

// GetChildren returns the dependents of a node in no particular order.
func (g *Graph) GetChildren(id NodeID) []NodeID {
	return g.nodes[id].rev
}

// FindCycle reports whether replacing the dependencies of id with newDeps
// would close a cycle. Only committed edges are followed; the graph is not
// modified. The returned path starts and ends with id, e.g. [A1 B1 A1].
func (g *Graph) FindCycle(id NodeID, newDeps []NodeID) []NodeID {
	if slices.Contains(newDeps, id) {
		return []NodeID{id, id}
	}

	g.beginWalk()
	stack := make([]NodeID, 0, len(newDeps))
	for _, d := range newDeps {
		if g.visit(d) {
			g.parent[d] = id
			stack = append(stack, d)
		}
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, p := range g.nodes[n].deps {
			if p == id {
				return cyclePath(id, n, g.parent)
			}
			if g.visit(p) {
				g.parent[p] = n
				stack = append(stack, p)
			}
		}
	}
	return nil
}

// cyclePath rebuilds origin -> ... -> last -> origin from the DFS parents.
func cyclePath(origin, last NodeID, parent []NodeID) []NodeID {
	path := []NodeID{origin, last}
	for cur := last; parent[cur] != origin; {
		cur = parent[cur]
		path = append(path, cur)
	}
	path = append(path, origin)
	// path is origin, last, ..., first; reverse the middle.
	slices.Reverse(path[1 : len(path)-1])
	return path
}

// SetDependencies replaces the dependencies of id, keeping the reverse
// edges in step. Duplicates in newDeps are ignored.
func (g *Graph) SetDependencies(id NodeID, newDeps []NodeID) {
	for _, old := range g.nodes[id].deps {
		g.removeDependent(old, id)
	}

	deps := slices.Clone(newDeps)
	slices.Sort(deps)
	deps = slices.Compact(deps)
	g.nodes[id].deps = deps

	for _, d := range deps {
		g.addDependent(d, id)
	}
}

func (g *Graph) addDependent(parent, child NodeID) {
	e := edge{parent, child}
	if _, ok := g.revPos[e]; ok {
		return
	}
	g.revPos[e] = len(g.nodes[parent].rev)
	g.nodes[parent].rev = append(g.nodes[parent].rev, child)
}

// removeDependent swaps the last dependent into child's slot.
func (g *Graph) removeDependent(parent, child NodeID) {
	e := edge{parent, child}
	i, ok := g.revPos[e]
	if !ok {
		return
	}
	rev := g.nodes[parent].rev
	last := rev[len(rev)-1]
	rev[i] = last
	g.revPos[edge{parent, last}] = i
	g.nodes[parent].rev = rev[:len(rev)-1]
	delete(g.revPos, e)
}

// GetAffectedNodes returns id and every node that transitively depends on
// it, in discovery order.
func (g *Graph) GetAffectedNodes(id NodeID) []NodeID {
	return g.walk(id, func(n *node) []NodeID { return n.rev })
}

// GetUpstreamNodes returns every node id transitively depends on, in
// discovery order. id itself is not included.
func (g *Graph) GetUpstreamNodes(id NodeID) []NodeID {
	return g.walk(id, func(n *node) []NodeID { return n.deps })[1:]
}

// Direction selects which edges a traversal follows.
type Direction int

const (
	// Upstream follows dependencies.
	Upstream Direction = iota
	// Downstream follows dependents.
	Downstream
)

// Reachable returns the nodes reachable from id in breadth-first order,
// excluding id. A maxDepth of 0 or less means unlimited.
func (g *Graph) Reachable(id NodeID, dir Direction, maxDepth int) []NodeID {
	next := func(n *node) []NodeID { return n.deps }
	if dir == Downstream {
		next = func(n *node) []NodeID { return n.rev }
	}

	g.beginWalk()
	g.visit(id)
	var result []NodeID
	frontier := []NodeID{id}

	for depth := 1; len(frontier) > 0 && (maxDepth <= 0 || depth <= maxDepth); depth++ {
		var following []NodeID
		for _, n := range frontier {
			for _, c := range next(&g.nodes[n]) {
				if g.visit(c) {
					following = append(following, c)
				}
			}
		}
		result = append(result, following...)
		frontier = following
	}
	return result
}

// GetExecutionLevels returns nodes grouped by execution level.
// Level 0 contains nodes with no dependencies; a node at level N depends
// on at least one node at level N-1 and none at N or later.
func (g *Graph) GetExecutionLevels() ([][]NodeID, error) {
	pending := make([]int, len(g.nodes))
	var level []NodeID
	for i := range g.nodes {
		pending[i] = len(g.nodes[i].deps)
		if pending[i] == 0 {
			level = append(level, NodeID(i))
		}
	}

	var levels [][]NodeID
	placed := 0
	for len(level) > 0 {
		levels = append(levels, level)
		placed += len(level)

		var next []NodeID
		for _, n := range level {
			for _, c := range g.nodes[n].rev {
				pending[c]--
				if pending[c] == 0 {
					next = append(next, c)
				}
			}
		}
		level = next
	}

	if placed != len(g.nodes) {
		_, path := g.HasCycle()
		return nil, fmt.Errorf("cycle detected: %v", g.Names(path))
	}
	return levels, nil
}

func (g *Graph) walk(start NodeID, next func(*node) []NodeID) []NodeID {
	g.beginWalk()
	g.visit(start)
	result := []NodeID{start}
	stack := []NodeID{start}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, c := range next(&g.nodes[n]) {
			if g.visit(c) {
				result = append(result, c)
				stack = append(stack, c)
			}
		}
	}
	return result
}

// beginWalk starts a new visited set in constant time.
func (g *Graph) beginWalk() {
	g.epoch++
	if g.epoch == 0 {
		clear(g.mark)
		g.epoch = 1
	}
}

// visit marks n for the current walk and reports whether it was unmarked.
func (g *Graph) visit(n NodeID) bool {
	if g.mark[n] == g.epoch {
		return false
	}
	g.mark[n] = g.epoch
	return true
}

// HasCycle returns true if the graph contains a cycle, along with the cycle
// path (first node repeated at the end).
func (g *Graph) HasCycle() (bool, []NodeID) {
	const (
		white = iota
		grey
		black
	)
	color := make([]uint8, len(g.nodes))

	type entry struct {
		id   NodeID
		next int // index into deps of the next edge to follow
	}

	for start := range g.nodes {
		if color[start] != white {
			continue
		}
		stack := []entry{{id: NodeID(start)}}
		color[start] = grey

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := g.nodes[top.id].deps
			if top.next == len(deps) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			d := deps[top.next]
			top.next++

			switch color[d] {
			case white:
				color[d] = grey
				stack = append(stack, entry{id: d})
			case grey:
				// d is on the stack; the cycle is the stack from d upward.
				var path []NodeID
				for i := range stack {
					if stack[i].id == d || len(path) > 0 {
						path = append(path, stack[i].id)
					}
				}
				return true, append(path, d)
			}
		}
	}
	return false, nil
}

// CheckInvariants verifies that dependency and dependent lists mirror each
// other, that dependencies are sorted without duplicates and that the
// dependent index matches the dependent lists.
func (g *Graph) CheckInvariants() error {
	edges := 0
	for i := range g.nodes {
		id := NodeID(i)
		n := &g.nodes[i]
		if !isStrictlySorted(n.deps) {
			return fmt.Errorf("dependencies of %s are not sorted and unique: %v", n.name, n.deps)
		}
		for _, d := range n.deps {
			if _, ok := g.revPos[edge{d, id}]; !ok {
				return fmt.Errorf("%s depends on %s but is not among its dependents", n.name, g.nodes[d].name)
			}
		}
		for pos, r := range n.rev {
			if _, ok := slices.BinarySearch(g.nodes[r].deps, id); !ok {
				return fmt.Errorf("%s lists dependent %s which does not depend on it", n.name, g.nodes[r].name)
			}
			if got, ok := g.revPos[edge{id, r}]; !ok || got != pos {
				return fmt.Errorf("dependent %s of %s is indexed at %d, found at %d", g.nodes[r].name, n.name, got, pos)
			}
		}
		edges += len(n.deps)
	}
	if len(g.revPos) != edges {
		return fmt.Errorf("dependent index has %d entries for %d edges", len(g.revPos), edges)
	}
	return nil
}

func isStrictlySorted(s []NodeID) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] >= s[i] {
			return false
		}
	}
	return true
}
