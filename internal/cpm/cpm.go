// Package cpm runs the critical path method over an activity dependency graph.
package cpm

import (
	"fmt"
	"sort"

	"github.com/joshharrison/gantry/internal/graph"
)

// Analyze performs a forward and backward pass over g. An activity's planned
// duration is used as its length; anything shorter than a day counts as 1.
func Analyze(g *graph.Graph) (*Result, error) {
	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}

	durations := make(map[string]int, len(g.Nodes))
	for code, n := range g.Nodes {
		durations[code] = max(1, n.Duration)
	}

	result := &Result{
		Schedules: make(map[string]*Schedule, len(order)),
		TopoOrder: order,
	}
	for _, code := range order {
		result.Schedules[code] = &Schedule{Code: code}
	}

	// Forward pass
	for _, code := range order {
		s := result.Schedules[code]
		es := 0
		for _, pred := range g.RevAdj[code] {
			es = max(es, result.Schedules[pred].EF)
		}
		s.ES = es
		s.EF = es + durations[code]
		result.TotalDays = max(result.TotalDays, s.EF)
	}

	// Backward pass
	for i := len(order) - 1; i >= 0; i-- {
		code := order[i]
		s := result.Schedules[code]
		lf := result.TotalDays
		for _, succ := range g.Adj[code] {
			lf = min(lf, result.Schedules[succ].LS)
		}
		s.LF = lf
		s.LS = lf - durations[code]
		s.TotalFloat = s.LS - s.ES
		s.Critical = s.TotalFloat == 0
	}

	for _, code := range order {
		if result.Schedules[code].Critical {
			result.CriticalPath = append(result.CriticalPath, code)
		}
	}

	result.Phases = computePhases(result)
	return result, nil
}

// topoSort performs Kahn's algorithm for topological sorting.
func topoSort(g *graph.Graph) ([]string, error) {
	inDegree := make(map[string]int, len(g.Nodes))
	for code := range g.Nodes {
		inDegree[code] = len(g.RevAdj[code])
	}

	var queue []string
	for code := range g.Nodes {
		if inDegree[code] == 0 {
			queue = append(queue, code)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var ready []string
		for _, succ := range g.Adj[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
		sort.Strings(ready)
		queue = append(queue, ready...)
	}

	if len(order) != len(g.Nodes) {
		return nil, fmt.Errorf("topological sort failed: graph has a cycle (%d of %d activities sorted)", len(order), len(g.Nodes))
	}
	return order, nil
}

// computePhases groups activities by earliest start, critical ones first.
func computePhases(result *Result) []Phase {
	byES := make(map[int][]string)
	for _, code := range result.TopoOrder {
		es := result.Schedules[code].ES
		byES[es] = append(byES[es], code)
	}

	starts := make([]int, 0, len(byES))
	for es := range byES {
		starts = append(starts, es)
	}
	sort.Ints(starts)

	phases := make([]Phase, len(starts))
	for i, es := range starts {
		codes := byES[es]
		sort.Strings(codes)

		critical := false
		for _, code := range codes {
			result.Schedules[code].Phase = i
			critical = critical || result.Schedules[code].Critical
		}
		sort.SliceStable(codes, func(a, b int) bool {
			return result.Schedules[codes[a]].Critical && !result.Schedules[codes[b]].Critical
		})

		phases[i] = Phase{Index: i, Codes: codes, Critical: critical}
	}
	return phases
}
