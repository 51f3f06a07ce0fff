// Package engine runs the full analytics pipeline over one timeline.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/joshharrison/gantry/internal/cost"
	"github.com/joshharrison/gantry/internal/cpm"
	"github.com/joshharrison/gantry/internal/dates"
	"github.com/joshharrison/gantry/internal/delay"
	"github.com/joshharrison/gantry/internal/gantt"
	"github.com/joshharrison/gantry/internal/graph"
	"github.com/joshharrison/gantry/internal/health"
	"github.com/joshharrison/gantry/internal/kpi"
	"github.com/joshharrison/gantry/internal/rasi"
	"github.com/joshharrison/gantry/internal/stage"
	"github.com/joshharrison/gantry/internal/tasks"
	"github.com/joshharrison/gantry/internal/timeline"
)

// Options tune the responsibility table. Zero values pick the defaults.
type Options struct {
	OverloadThreshold int `json:"overload_threshold" yaml:"overload_threshold"`
	TopPeople         int `json:"top_people" yaml:"top_people"`
}

// Input is everything Compute needs besides the timeline itself.
type Input struct {
	Module string
	Group  string
	// Now is the reference day for health classification. Callers resolve it;
	// Compute never reads the clock.
	Now time.Time
	// People maps person identifiers to display labels.
	People  map[string]string
	Options Options
}

// CriticalPath summarises the dependency network. Codes is empty when the
// activities declare no prerequisites or the network has a cycle.
type CriticalPath struct {
	Codes     []string `json:"codes"`
	TotalDays int      `json:"total_days"`
	Phases    int      `json:"phases"`
	Links     int      `json:"links"`
}

// Report is the full set of derived indicators.
type Report struct {
	Module  string   `json:"module"`
	Group   string   `json:"group"`
	Now     string   `json:"now"`
	Modules []string `json:"modules"`
	Groups  []string `json:"groups"`

	Rows          []gantt.Row `json:"rows"`
	BaselineStart string      `json:"baseline_start"`
	BaselineEnd   string      `json:"baseline_end"`
	ProjectEnd    string      `json:"project_end"`
	TotalDays     int         `json:"total_days"`

	Health         health.Summary  `json:"health"`
	Delay          delay.Breakdown `json:"delay"`
	Stages         stage.Funnel    `json:"stages"`
	Cost           cost.Burn       `json:"cost"`
	Responsibility rasi.Summary    `json:"responsibility"`
	KPIs           kpi.Summary     `json:"kpis"`
	CriticalPath   CriticalPath    `json:"critical_path"`

	Warnings []string `json:"warnings,omitempty"`
}

// Compute runs every stage in order. It never fails: anything it cannot
// interpret degrades to absent values or a warning.
func Compute(tl timeline.Timeline, in Input) *Report {
	ts := tasks.Flatten(tl, tasks.Filter{Module: in.Module, Group: in.Group})
	chart := gantt.Build(ts, in.Now)

	r := &Report{
		Module:        in.Module,
		Group:         in.Group,
		Now:           dates.Format(dates.Day(in.Now), true),
		Modules:       tasks.ModuleNames(tl),
		Groups:        tasks.GroupNames(tl),
		BaselineStart: dates.Format(chart.BaselineStart, true),
		BaselineEnd:   dates.Format(chart.BaselineEnd, true),
		ProjectEnd:    dates.Format(chart.ProjectEnd, true),
		TotalDays:     chart.TotalDays,
	}

	r.CriticalPath, r.Warnings = analyzeNetwork(chart.Rows)
	r.Rows = chart.Rows

	entries := make([]health.Entry, len(chart.Rows))
	for i, row := range chart.Rows {
		entries[i] = health.Entry{Status: row.Status, DelayDays: row.DelayDays}
	}
	r.Health = health.Summarize(entries)
	r.Delay = delay.Attribute(chart.Rows)
	r.Stages = stage.Tally(chart.Rows)
	r.Cost = cost.Simulate(chart)
	r.Responsibility = rasi.Aggregate(chart.Rows, rasi.Options{
		Labels:            in.People,
		OverloadThreshold: in.Options.OverloadThreshold,
		TopPeople:         in.Options.TopPeople,
	})
	r.KPIs = kpi.Summarize(kpi.Input{
		Rows:   chart.Rows,
		Health: r.Health,
		Delay:  r.Delay,
		Stages: r.Stages,
		Cost:   r.Cost,
	})
	return r
}

// analyzeNetwork links rows through their prerequisites and marks the
// critical ones in place.
func analyzeNetwork(rows []gantt.Row) (CriticalPath, []string) {
	var warnings []string

	nodes := make([]graph.Node, len(rows))
	for i, row := range rows {
		nodes[i] = graph.Node{
			Code:          row.Code(),
			Name:          row.Activity,
			Duration:      row.PlannedDuration,
			Prerequisites: row.Prerequisites(),
		}
	}

	g, err := graph.Build(nodes)
	if err != nil {
		return CriticalPath{}, []string{fmt.Sprintf("no critical path: %v", err)}
	}
	if len(g.Duplicates) > 0 {
		warnings = append(warnings, fmt.Sprintf("duplicate activity codes, first occurrence used: %s", strings.Join(g.Duplicates, ", ")))
	}
	if len(g.Unresolved) > 0 {
		warnings = append(warnings, fmt.Sprintf("prerequisites not in scope: %s", strings.Join(g.Unresolved, ", ")))
	}
	if g.EdgeCount() == 0 {
		return CriticalPath{}, warnings
	}

	res, err := cpm.Analyze(g)
	if err != nil {
		return CriticalPath{}, append(warnings, fmt.Sprintf("no critical path: %v", err))
	}

	seen := make(map[string]bool, len(rows))
	for i := range rows {
		code := rows[i].Code()
		if seen[code] {
			continue
		}
		seen[code] = true
		if s, ok := res.Schedules[code]; ok {
			rows[i].Critical = s.Critical
			rows[i].TotalFloat = s.TotalFloat
		}
	}

	return CriticalPath{
		Codes:     res.CriticalPath,
		TotalDays: res.TotalDays,
		Phases:    len(res.Phases),
		Links:     g.EdgeCount(),
	}, warnings
}
