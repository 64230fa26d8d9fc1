// Package graph provides the directed acyclic graph of build targets.
// It supports cycle detection, topological sorting, dependency levels,
// and transitive closure queries keyed by canonical label.
package graph

import (
	"fmt"
	"sort"

	"github.com/depscope-dev/depscope/pkg/build"
)

// Node is one target in the graph.
type Node struct {
	// ID is the canonical label.
	ID string
	// Target is the declared target, nil for placeholder nodes.
	Target *build.Target
}

// Graph is a directed acyclic graph of build targets. Edges run from a
// dependency to its dependents, so topological order yields dependencies
// before the targets that need them.
type Graph struct {
	nodes      map[string]*Node
	dependents map[string][]string // dep -> targets that depend on it
	deps       map[string][]string // target -> its direct dependencies
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:      make(map[string]*Node),
		dependents: make(map[string][]string),
		deps:       make(map[string][]string),
	}
}

// AddTarget adds a target node, updating the payload if it exists.
func (g *Graph) AddTarget(id string, t *build.Target) {
	if n, exists := g.nodes[id]; exists {
		if t != nil {
			n.Target = t
		}
		return
	}
	g.nodes[id] = &Node{ID: id, Target: t}
	g.dependents[id] = []string{}
	g.deps[id] = []string{}
}

// AddDep records that target depends on dep. Both nodes must exist.
func (g *Graph) AddDep(target, dep string) error {
	if _, exists := g.nodes[target]; !exists {
		return fmt.Errorf("target node %q does not exist", target)
	}
	if _, exists := g.nodes[dep]; !exists {
		return fmt.Errorf("dependency node %q does not exist", dep)
	}
	if target == dep {
		return fmt.Errorf("self-dependency: %s", target)
	}

	if !contains(g.dependents[dep], target) {
		g.dependents[dep] = append(g.dependents[dep], target)
	}
	if !contains(g.deps[target], dep) {
		g.deps[target] = append(g.deps[target], dep)
	}
	return nil
}

// Node returns a node by canonical label.
func (g *Graph) Node(id string) (*Node, bool) {
	n, exists := g.nodes[id]
	return n, exists
}

// Deps returns the direct dependencies of a target.
func (g *Graph) Deps(id string) []string {
	return g.deps[id]
}

// Dependents returns the targets that directly depend on id.
func (g *Graph) Dependents(id string) []string {
	return g.dependents[id]
}

// Nodes returns all nodes sorted by label.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of dependency edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, ds := range g.deps {
		count += len(ds)
	}
	return count
}

// HasCycle reports whether the graph contains a dependency cycle, along
// with one cycle path for reporting.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	cameFrom := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, next := range g.dependents[id] {
			if !visited[next] {
				cameFrom[next] = id
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				cyclePath = []string{next}
				for curr := id; curr != next; curr = cameFrom[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{next}, cyclePath...)
				return true
			}
		}

		onStack[id] = false
		return false
	}

	// Deterministic start order so the reported cycle is stable.
	ids := g.sortedIDs()
	for _, id := range ids {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}
	return false, nil
}

// TopologicalSort returns nodes with dependencies before dependents.
// Returns an error if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("dependency cycle: %v", cyclePath)
	}

	visited := make(map[string]bool)
	var result []*Node

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, dep := range g.deps[id] {
			visit(dep)
		}
		result = append(result, g.nodes[id])
	}

	for _, id := range g.sortedIDs() {
		visit(id)
	}
	return result, nil
}

// Levels groups targets by dependency depth. Targets at level N depend
// only on targets at levels below N; level 0 has no dependencies.
func (g *Graph) Levels() ([][]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("dependency cycle: %v", cyclePath)
	}

	assigned := make(map[string]int)

	var levelOf func(id string) int
	levelOf = func(id string) int {
		if lvl, ok := assigned[id]; ok {
			return lvl
		}
		deps := g.deps[id]
		if len(deps) == 0 {
			assigned[id] = 0
			return 0
		}
		max := 0
		for _, dep := range deps {
			if l := levelOf(dep); l > max {
				max = l
			}
		}
		assigned[id] = max + 1
		return max + 1
	}

	maxLevel := 0
	for id := range g.nodes {
		if l := levelOf(id); l > maxLevel {
			maxLevel = l
		}
	}

	levels := make([][]string, maxLevel+1)
	for id, lvl := range assigned {
		levels[lvl] = append(levels[lvl], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

// TransitiveDependents returns the given targets plus everything that
// transitively depends on them, sorted.
func (g *Graph) TransitiveDependents(ids []string) []string {
	reached := make(map[string]bool)

	var mark func(id string)
	mark = func(id string) {
		if reached[id] {
			return
		}
		reached[id] = true
		for _, next := range g.dependents[id] {
			mark(next)
		}
	}

	for _, id := range ids {
		if _, exists := g.nodes[id]; exists {
			mark(id)
		}
	}
	return sortedKeys(reached)
}

// TransitiveDeps returns everything the given target transitively
// depends on, sorted. The target itself is excluded.
func (g *Graph) TransitiveDeps(id string) []string {
	reached := make(map[string]bool)

	var mark func(nodeID string)
	mark = func(nodeID string) {
		for _, dep := range g.deps[nodeID] {
			if !reached[dep] {
				reached[dep] = true
				mark(dep)
			}
		}
	}
	mark(id)
	return sortedKeys(reached)
}

// SomePath returns one dependency path from `from` down to `to`, or nil
// when `to` is not in the transitive dependencies of `from`.
func (g *Graph) SomePath(from, to string) []string {
	if _, ok := g.nodes[from]; !ok {
		return nil
	}
	if from == to {
		return []string{from}
	}

	visited := make(map[string]bool)

	var walk func(id string) []string
	walk = func(id string) []string {
		if visited[id] {
			return nil
		}
		visited[id] = true

		deps := append([]string(nil), g.deps[id]...)
		sort.Strings(deps)
		for _, dep := range deps {
			if dep == to {
				return []string{id, dep}
			}
			if rest := walk(dep); rest != nil {
				return append([]string{id}, rest...)
			}
		}
		return nil
	}
	return walk(from)
}

// Roots returns targets nothing depends on, sorted.
func (g *Graph) Roots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.dependents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns targets with no dependencies, sorted.
func (g *Graph) Leaves() []string {
	var leaves []string
	for id := range g.nodes {
		if len(g.deps[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Subgraph returns a new graph restricted to the given labels and the
// edges among them.
func (g *Graph) Subgraph(ids []string) *Graph {
	sub := New()
	included := make(map[string]bool)

	for _, id := range ids {
		if n, exists := g.nodes[id]; exists {
			included[id] = true
			sub.AddTarget(id, n.Target)
		}
	}
	for id := range included {
		for _, dep := range g.deps[id] {
			if included[dep] {
				_ = sub.AddDep(id, dep)
			}
		}
	}
	return sub
}

func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
