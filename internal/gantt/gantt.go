// Package gantt turns flattened tasks into baseline-relative row geometry.
package gantt

import (
	"time"

	"github.com/joshharrison/gantry/internal/dates"
	"github.com/joshharrison/gantry/internal/health"
	"github.com/joshharrison/gantry/internal/tasks"
)

// Row is a task with its computed geometry and health.
type Row struct {
	tasks.Task

	PlannedOffset   int `json:"planned_offset"`
	PlannedDuration int `json:"planned_duration"`
	ActualOffset    int `json:"actual_offset"`
	ActualDuration  int `json:"actual_duration"` // 0 means no actual span was recorded

	PlannedStartDate string `json:"planned_start"`
	PlannedEndDate   string `json:"planned_end"`
	ActualStartDate  string `json:"actual_start"`
	ActualEndDate    string `json:"actual_end"`

	DelayDays     int           `json:"delay_days"`
	StartSlipDays int           `json:"start_slip_days"`
	Status        health.Status `json:"status"`

	// Filled by critical path analysis; zero when no dependency data exists.
	Critical   bool `json:"critical"`
	TotalFloat int  `json:"total_float"`
}

// HasActualStart reports whether an actual start was recorded.
func (r Row) HasActualStart() bool { return r.ActualStartDate != "-" }

// HasActualEnd reports whether an actual finish was recorded.
func (r Row) HasActualEnd() bool { return r.ActualEndDate != "-" }

// Chart is the complete row set plus the window it is drawn against.
type Chart struct {
	Rows          []Row
	BaselineStart time.Time
	BaselineEnd   time.Time
	ProjectEnd    time.Time
	TotalDays     int
}

type parsed struct {
	ps, pe, as, ae             time.Time
	hasPS, hasPE, hasAS, hasAE bool
}

// Build computes rows for tasks in order. now feeds the health classifier.
func Build(ts []tasks.Task, now time.Time) Chart {
	today := dates.Day(now)
	if len(ts) == 0 {
		return Chart{Rows: []Row{}, BaselineStart: today, BaselineEnd: today, ProjectEnd: today, TotalDays: 1}
	}

	all := make([]parsed, len(ts))
	for i, t := range ts {
		p := &all[i]
		p.ps, p.hasPS = dates.Parse(t.PlannedStart)
		p.pe, p.hasPE = dates.Parse(t.PlannedEnd)
		p.as, p.hasAS = dates.Parse(t.ActualStart)
		p.ae, p.hasAE = dates.Parse(t.ActualEnd)
	}

	base := baselineStart(all, today)
	baseEnd := baselineEnd(all, base)
	projectEnd := baseEnd
	for _, p := range all {
		if p.hasAE && p.ae.After(projectEnd) {
			projectEnd = p.ae
		}
	}

	chart := Chart{
		BaselineStart: base,
		BaselineEnd:   baseEnd,
		ProjectEnd:    projectEnd,
		TotalDays:     dates.ClampNonNeg(dates.DiffDays(projectEnd, base)) + 1,
		Rows:          make([]Row, 0, len(ts)),
	}
	for i, t := range ts {
		chart.Rows = append(chart.Rows, buildRow(t, all[i], base, today))
	}
	return chart
}

func buildRow(t tasks.Task, p parsed, base, now time.Time) Row {
	start := base
	if p.hasPS {
		start = p.ps
	}
	end := start
	if p.hasPE {
		end = p.pe
	}

	r := Row{
		Task:             t,
		PlannedOffset:    dates.ClampNonNeg(dates.DiffDays(start, base)),
		PlannedDuration:  dates.ClampNonNeg(dates.DiffDays(end, start)) + 1,
		PlannedStartDate: dates.Format(start, true),
		PlannedEndDate:   dates.Format(end, true),
		ActualStartDate:  dates.Format(p.as, p.hasAS),
		ActualEndDate:    dates.Format(p.ae, p.hasAE),
	}

	r.ActualOffset = r.PlannedOffset
	if p.hasAS {
		r.ActualOffset = max(r.PlannedOffset, dates.ClampNonNeg(dates.DiffDays(p.as, base)))
		r.StartSlipDays = dates.DiffDays(p.as, start)
	}
	if p.hasAS && p.hasAE {
		r.ActualDuration = dates.ClampNonNeg(dates.DiffDays(p.ae, p.as)) + 1
	}
	if p.hasAE {
		r.DelayDays = dates.DiffDays(p.ae, end)
	}

	r.Status = health.Classify(health.Input{
		PlannedStart:   start,
		PlannedEnd:     end,
		ActualStart:    p.as,
		HasActualStart: p.hasAS,
		ActualEnd:      p.ae,
		HasActualEnd:   p.hasAE,
		SlackDays:      t.SlackDays,
		Now:            now,
	})
	return r
}

// baselineStart is the earliest planned start, else the earliest actual
// start or planned end, else today.
func baselineStart(ps []parsed, today time.Time) time.Time {
	var best time.Time
	found := false
	take := func(t time.Time, ok bool) {
		if ok && (!found || t.Before(best)) {
			best, found = t, true
		}
	}
	for _, p := range ps {
		take(p.ps, p.hasPS)
	}
	if found {
		return best
	}
	for _, p := range ps {
		take(p.as, p.hasAS)
		take(p.pe, p.hasPE)
	}
	if found {
		return best
	}
	return today
}

// baselineEnd is the latest planned end, else the latest actual end, else
// the baseline start.
func baselineEnd(ps []parsed, base time.Time) time.Time {
	var best time.Time
	found := false
	take := func(t time.Time, ok bool) {
		if ok && (!found || t.After(best)) {
			best, found = t, true
		}
	}
	for _, p := range ps {
		take(p.pe, p.hasPE)
	}
	if !found {
		for _, p := range ps {
			take(p.ae, p.hasAE)
		}
	}
	if !found {
		return base
	}
	return best
}
