package graph

import (
	"errors"
	"testing"
)

func TestBuild_SimpleDAG(t *testing.T) {
	// A -> B -> D
	// A -> C -> D
	nodes := []Node{
		{Code: "a", Duration: 1},
		{Code: "b", Duration: 1, Prerequisites: []string{"a"}},
		{Code: "c", Duration: 1, Prerequisites: []string{"a"}},
		{Code: "d", Duration: 1, Prerequisites: []string{"c", "b"}},
	}

	g, err := Build(nodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.NodeCount() != 4 {
		t.Errorf("expected 4 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 4 {
		t.Errorf("expected 4 edges, got %d", g.EdgeCount())
	}
	if len(g.Roots) != 1 || g.Roots[0] != "a" {
		t.Errorf("expected roots=[a], got %v", g.Roots)
	}
	if len(g.Leaves) != 1 || g.Leaves[0] != "d" {
		t.Errorf("expected leaves=[d], got %v", g.Leaves)
	}
	if adj := g.Adj["a"]; len(adj) != 2 {
		t.Errorf("expected 2 activities waiting on a, got %v", adj)
	}
	if rev := g.RevAdj["d"]; len(rev) != 2 || rev[0] != "b" {
		t.Errorf("expected sorted prerequisites [b c] for d, got %v", rev)
	}
}

func TestBuild_SingleNode(t *testing.T) {
	g, err := Build([]Node{{Code: "x", Duration: 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Roots) != 1 || g.Roots[0] != "x" {
		t.Errorf("expected roots=[x], got %v", g.Roots)
	}
	if len(g.Leaves) != 1 || g.Leaves[0] != "x" {
		t.Errorf("expected leaves=[x], got %v", g.Leaves)
	}
}

func TestBuild_CycleDetection(t *testing.T) {
	// A -> B -> C -> A
	nodes := []Node{
		{Code: "a", Prerequisites: []string{"c"}},
		{Code: "b", Prerequisites: []string{"a"}},
		{Code: "c", Prerequisites: []string{"b"}},
	}

	_, err := Build(nodes)
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	if len(cycleErr.Path) != 4 || cycleErr.Path[0] != cycleErr.Path[3] {
		t.Errorf("expected closed path of 4, got %v", cycleErr.Path)
	}
}

func TestBuild_SelfDependency(t *testing.T) {
	_, err := Build([]Node{{Code: "a", Prerequisites: []string{"a"}}})
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
}

func TestBuild_UnresolvedPrerequisitesIgnored(t *testing.T) {
	nodes := []Node{
		{Code: "a", Prerequisites: []string{"z", "z"}},
		{Code: "b", Prerequisites: []string{"y"}},
	}

	g, err := Build(nodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.RevAdj["a"]) != 0 {
		t.Errorf("expected no prerequisites for a, got %v", g.RevAdj["a"])
	}
	if len(g.Unresolved) != 2 || g.Unresolved[0] != "z" || g.Unresolved[1] != "y" {
		t.Errorf("expected unresolved=[z y], got %v", g.Unresolved)
	}
}

func TestBuild_DuplicateCodesKeepFirst(t *testing.T) {
	g, err := Build([]Node{
		{Code: "a", Name: "first"},
		{Code: "a", Name: "second"},
		{Code: ""},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.NodeCount() != 1 {
		t.Errorf("expected 1 node, got %d", g.NodeCount())
	}
	if g.Nodes["a"].Name != "first" {
		t.Errorf("expected first node to win, got %q", g.Nodes["a"].Name)
	}
	if len(g.Duplicates) != 1 {
		t.Errorf("expected 1 duplicate, got %v", g.Duplicates)
	}
}

func TestBuild_RepeatedEdgeCountedOnce(t *testing.T) {
	g, err := Build([]Node{
		{Code: "a"},
		{Code: "b", Prerequisites: []string{"a", "a"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge, got %d", g.EdgeCount())
	}
}

func TestDetectCycle_NoCycle(t *testing.T) {
	g := &Graph{
		Nodes:  map[string]*Node{"a": {Code: "a"}, "b": {Code: "b"}},
		Adj:    map[string][]string{"a": {"b"}},
		RevAdj: map[string][]string{"b": {"a"}},
	}
	if cycle := g.DetectCycle(); cycle != nil {
		t.Errorf("expected no cycle, got %v", cycle)
	}
}

func TestBuild_Empty(t *testing.T) {
	g, err := Build(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.NodeCount() != 0 {
		t.Errorf("expected 0 nodes, got %d", g.NodeCount())
	}
}
