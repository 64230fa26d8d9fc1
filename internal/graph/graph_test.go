package graph

import (
	"testing"
)

func addAll(g *Graph, ids ...string) {
	for _, id := range ids {
		g.AddTarget(id, nil)
	}
}

func TestGraph_AddTargetAndDep(t *testing.T) {
	g := New()
	addAll(g, "//a:a", "//b:b", "//c:c")

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}

	if err := g.AddDep("//b:b", "//a:a"); err != nil {
		t.Errorf("failed to add dep: %v", err)
	}
	if err := g.AddDep("//c:c", "//b:b"); err != nil {
		t.Errorf("failed to add dep: %v", err)
	}

	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
}

func TestGraph_AddDep_MissingNodes(t *testing.T) {
	g := New()
	g.AddTarget("//a:a", nil)

	if err := g.AddDep("//a:a", "//missing:dep"); err == nil {
		t.Error("expected error for missing dependency node")
	}
	if err := g.AddDep("//missing:t", "//a:a"); err == nil {
		t.Error("expected error for missing target node")
	}
}

func TestGraph_AddDep_SelfDependency(t *testing.T) {
	g := New()
	g.AddTarget("//a:a", nil)

	if err := g.AddDep("//a:a", "//a:a"); err == nil {
		t.Error("expected error for self-dependency")
	}
}

func TestGraph_DepsAndDependents(t *testing.T) {
	g := New()
	addAll(g, "a", "b", "c")

	// b depends on a; c depends on a and b
	g.AddDep("b", "a")
	g.AddDep("c", "a")
	g.AddDep("c", "b")

	if deps := g.Deps("c"); len(deps) != 2 {
		t.Errorf("expected c to have 2 deps, got %d", len(deps))
	}
	if dependents := g.Dependents("a"); len(dependents) != 2 {
		t.Errorf("expected a to have 2 dependents, got %d", len(dependents))
	}
}

func TestGraph_DuplicateDeps(t *testing.T) {
	g := New()
	addAll(g, "a", "b")

	g.AddDep("b", "a")
	g.AddDep("b", "a")

	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge after duplicate add, got %d", g.EdgeCount())
	}
}

func TestGraph_HasCycle(t *testing.T) {
	g := New()
	addAll(g, "a", "b", "c")
	g.AddDep("b", "a")
	g.AddDep("c", "b")

	if hasCycle, path := g.HasCycle(); hasCycle {
		t.Errorf("expected no cycle, found %v", path)
	}

	g.AddDep("a", "c") // closes the loop

	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Fatal("expected cycle to be detected")
	}
	if len(path) < 3 {
		t.Errorf("expected cycle path, got %v", path)
	}
}

func TestGraph_TopologicalSort(t *testing.T) {
	// Diamond: d depends on b and c, both depend on a.
	g := New()
	addAll(g, "a", "b", "c", "d")
	g.AddDep("b", "a")
	g.AddDep("c", "a")
	g.AddDep("d", "b")
	g.AddDep("d", "c")

	sorted, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("failed to sort: %v", err)
	}

	pos := make(map[string]int)
	for i, n := range sorted {
		pos[n.ID] = i
	}

	if pos["a"] != 0 {
		t.Error("a should come first")
	}
	if pos["d"] != 3 {
		t.Error("d should come last")
	}
}

func TestGraph_TopologicalSort_Cycle(t *testing.T) {
	g := New()
	addAll(g, "a", "b")
	g.AddDep("b", "a")
	g.AddDep("a", "b")

	if _, err := g.TopologicalSort(); err == nil {
		t.Error("expected error for cyclic graph")
	}
}

func TestGraph_Levels(t *testing.T) {
	g := New()
	addAll(g, "base1", "base2", "mid1", "mid2", "top")
	g.AddDep("mid1", "base1")
	g.AddDep("mid2", "base2")
	g.AddDep("top", "mid1")
	g.AddDep("top", "mid2")

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("failed to get levels: %v", err)
	}

	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(levels))
	}
	if len(levels[0]) != 2 || len(levels[1]) != 2 {
		t.Errorf("unexpected level sizes: %v", levels)
	}
	if len(levels[2]) != 1 || levels[2][0] != "top" {
		t.Errorf("expected [top] at level 2, got %v", levels[2])
	}
}

func TestGraph_TransitiveDependents(t *testing.T) {
	g := New()
	addAll(g, "a", "b", "c", "d")
	g.AddDep("b", "a")
	g.AddDep("c", "b")
	// d is independent

	affected := g.TransitiveDependents([]string{"a"})
	if len(affected) != 3 {
		t.Fatalf("expected 3 targets, got %v", affected)
	}
	for _, id := range affected {
		if id == "d" {
			t.Error("d should not be affected")
		}
	}
}

func TestGraph_TransitiveDeps(t *testing.T) {
	g := New()
	addAll(g, "a", "b", "c", "d")
	g.AddDep("c", "a")
	g.AddDep("c", "b")
	g.AddDep("d", "c")

	deps := g.TransitiveDeps("d")
	if len(deps) != 3 {
		t.Errorf("expected 3 transitive deps, got %v", deps)
	}
}

func TestGraph_SomePath(t *testing.T) {
	g := New()
	addAll(g, "a", "b", "c", "d")
	g.AddDep("b", "a")
	g.AddDep("c", "b")

	path := g.SomePath("c", "a")
	if len(path) != 3 || path[0] != "c" || path[2] != "a" {
		t.Errorf("unexpected path: %v", path)
	}

	if p := g.SomePath("a", "c"); p != nil {
		t.Errorf("expected no path against dependency direction, got %v", p)
	}
	if p := g.SomePath("d", "a"); p != nil {
		t.Errorf("expected no path from independent target, got %v", p)
	}
	if p := g.SomePath("a", "a"); len(p) != 1 {
		t.Errorf("expected trivial path, got %v", p)
	}
}

func TestGraph_RootsAndLeaves(t *testing.T) {
	g := New()
	addAll(g, "a", "b", "c")
	g.AddDep("c", "a")
	g.AddDep("c", "b")

	roots := g.Roots()
	if len(roots) != 1 || roots[0] != "c" {
		t.Errorf("expected [c] as roots, got %v", roots)
	}

	leaves := g.Leaves()
	if len(leaves) != 2 {
		t.Errorf("expected 2 leaves, got %v", leaves)
	}
}

func TestGraph_Subgraph(t *testing.T) {
	g := New()
	addAll(g, "a", "b", "c", "d")
	g.AddDep("b", "a")
	g.AddDep("c", "b")
	g.AddDep("d", "c")

	sub := g.Subgraph([]string{"b", "c"})
	if sub.NodeCount() != 2 {
		t.Errorf("expected 2 nodes, got %d", sub.NodeCount())
	}
	if sub.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", sub.EdgeCount())
	}
	if deps := sub.Deps("c"); len(deps) != 1 || deps[0] != "b" {
		t.Errorf("expected c to depend on b, got %v", deps)
	}
}

func TestGraph_DisconnectedComponents(t *testing.T) {
	g := New()
	addAll(g, "a", "b", "c", "d")
	g.AddDep("b", "a")
	g.AddDep("d", "c")

	sorted, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("failed to sort: %v", err)
	}
	if len(sorted) != 4 {
		t.Errorf("expected 4 nodes, got %d", len(sorted))
	}

	pos := make(map[string]int)
	for i, n := range sorted {
		pos[n.ID] = i
	}
	if pos["a"] >= pos["b"] || pos["c"] >= pos["d"] {
		t.Error("dependencies should sort before dependents")
	}
}
