// Package stage places each activity in a coarse execution funnel, based on
// recorded dates and status metadata rather than schedule health.
package stage

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/gantry/internal/gantt"
	"github.com/joshharrison/gantry/internal/health"
	"github.com/joshharrison/gantry/internal/meta"
)

// Stage is a funnel bucket.
type Stage string

const (
	NotStarted Stage = "Not Started"
	InProgress Stage = "In Progress"
	Blocked    Stage = "Blocked"
	Completed  Stage = "Completed"
)

// Stages lists the funnel in display order.
var Stages = []Stage{NotStarted, InProgress, Blocked, Completed}

func (s Stage) String() string { return string(s) }

var statusKeys = meta.Keys{"workStatus", "status", "activityStatus", "state", "executionStatus", "progressStatus"}

// Rule decides a stage or passes to the next one.
type Rule struct {
	Name   string
	Decide func(r gantt.Row, status string) (Stage, bool)
}

// Rules is evaluated in order; In Progress is the fallback.
var Rules = []Rule{
	{Name: "completed", Decide: completedRule},
	{Name: "blocked", Decide: blockedRule},
	{Name: "not-started", Decide: notStartedRule},
}

// Of returns the stage of a single row.
func Of(r gantt.Row) Stage {
	status := r.Meta.Text(statusKeys...)
	for _, rule := range Rules {
		if s, ok := rule.Decide(r, status); ok {
			return s
		}
	}
	return InProgress
}

func completedRule(r gantt.Row, _ string) (Stage, bool) {
	if r.Status == health.Completed || r.HasActualEnd() {
		return Completed, true
	}
	return "", false
}

func blockedRule(r gantt.Row, status string) (Stage, bool) {
	m := r.Meta
	blocked := m.Get("blocked").Type == gjson.True ||
		m.Contains("blocked", "blockerStatus", "state", "status") ||
		hasReason(m.Get("blockReason")) ||
		status == "blocked"
	if blocked {
		return Blocked, true
	}
	return "", false
}

// hasReason reports whether v is a non-blank reason. Falsy values such as
// false or 0 carry no reason.
func hasReason(v gjson.Result) bool {
	return meta.Truthy(v) && strings.TrimSpace(v.String()) != ""
}

func notStartedRule(r gantt.Row, status string) (Stage, bool) {
	started := r.HasActualStart() || status == "in progress" || status == "inprogress" || status == "started"
	if !started {
		return NotStarted, true
	}
	return "", false
}

// Funnel counts rows per stage.
type Funnel struct {
	Counts map[Stage]int `json:"counts"`
	Total  int           `json:"total"`
}

// Tally classifies every row.
func Tally(rows []gantt.Row) Funnel {
	f := Funnel{Counts: make(map[Stage]int, len(Stages)), Total: len(rows)}
	for _, s := range Stages {
		f.Counts[s] = 0
	}
	for _, r := range rows {
		f.Counts[Of(r)]++
	}
	return f
}
