// Package graph links activities through their declared prerequisites.
package graph

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError reports a dependency loop.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Path, " -> "))
}

// Build constructs a Graph from nodes. Prerequisites outside the node set are
// recorded in Unresolved and otherwise ignored. A cycle yields *CycleError.
func Build(nodes []Node) (*Graph, error) {
	g := &Graph{
		Nodes:  make(map[string]*Node, len(nodes)),
		Adj:    make(map[string][]string),
		RevAdj: make(map[string][]string),
	}

	for i := range nodes {
		n := nodes[i]
		if n.Code == "" {
			continue
		}
		if _, dup := g.Nodes[n.Code]; dup {
			g.Duplicates = append(g.Duplicates, n.Code)
			continue
		}
		g.Nodes[n.Code] = &n
		g.Order = append(g.Order, n.Code)
	}

	edgeSet := make(map[[2]string]bool)
	unresolved := make(map[string]bool)
	for _, code := range g.Order {
		for _, pre := range g.Nodes[code].Prerequisites {
			if _, ok := g.Nodes[pre]; !ok {
				if !unresolved[pre] {
					unresolved[pre] = true
					g.Unresolved = append(g.Unresolved, pre)
				}
				continue
			}
			key := [2]string{pre, code}
			if edgeSet[key] {
				continue
			}
			edgeSet[key] = true
			g.Adj[pre] = append(g.Adj[pre], code)
			g.RevAdj[code] = append(g.RevAdj[code], pre)
		}
	}

	for k := range g.Adj {
		sort.Strings(g.Adj[k])
	}
	for k := range g.RevAdj {
		sort.Strings(g.RevAdj[k])
	}

	for _, code := range g.Order {
		if len(g.RevAdj[code]) == 0 {
			g.Roots = append(g.Roots, code)
		}
		if len(g.Adj[code]) == 0 {
			g.Leaves = append(g.Leaves, code)
		}
	}
	sort.Strings(g.Roots)
	sort.Strings(g.Leaves)

	if cycle := g.DetectCycle(); cycle != nil {
		return nil, &CycleError{Path: cycle}
	}
	return g, nil
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// DFS with white/gray/black coloring.
func (g *Graph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.Adj[node] {
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// NodeCount returns the number of activities in the graph.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of resolved prerequisite links.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, succ := range g.Adj {
		n += len(succ)
	}
	return n
}
