// Package health classifies each activity as On Track, At Risk, Delayed or
// Completed relative to a reference "now".
package health

import (
	"math"
	"time"

	"github.com/joshharrison/gantry/internal/dates"
)

// Status is the health of one activity.
type Status string

const (
	OnTrack   Status = "On Track"
	AtRisk    Status = "At Risk"
	Delayed   Status = "Delayed"
	Completed Status = "Completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{OnTrack, AtRisk, Delayed, Completed}

// String returns the display label.
func (s Status) String() string { return string(s) }

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case OnTrack, AtRisk, Delayed, Completed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition can happen.
func (s Status) IsTerminal() bool { return s == Completed }

// stalledProgress is the planned-progress fraction under which a started,
// overdue activity is flagged at risk.
const stalledProgress = 0.05

// Input is everything the classifier looks at for one activity. Planned
// dates are always present (the row builder substitutes fallbacks); actual
// dates are optional.
type Input struct {
	PlannedStart   time.Time
	PlannedEnd     time.Time
	ActualStart    time.Time
	HasActualStart bool
	ActualEnd      time.Time
	HasActualEnd   bool
	SlackDays      float64
	Now            time.Time
}

func (in Input) plannedTotal() int {
	return dates.ClampNonNeg(dates.DiffDays(in.PlannedEnd, in.PlannedStart)) + 1
}

func (in Input) plannedProgress() float64 {
	elapsed := dates.ClampNonNeg(dates.DiffDays(in.Now, in.PlannedStart)) + 1
	return math.Min(1, math.Max(0, float64(elapsed)/float64(in.plannedTotal())))
}

func (in Input) exceedsSlack(days int) bool {
	return float64(days) > in.SlackDays
}

// Rule decides a status, or passes (ok == false) to the next rule.
type Rule struct {
	Name   string
	Decide func(in Input) (Status, bool)
}

// Rules is the ordered rule table. The first rule that decides wins, so slack
// checks always run before raw lateness and a recorded finish short-circuits
// everything.
var Rules = []Rule{
	{Name: "completed", Decide: completedRule},
	{Name: "not-started", Decide: notStartedRule},
	{Name: "start-slip", Decide: startSlipRule},
	{Name: "forecast", Decide: forecastRule},
	{Name: "stalled", Decide: stalledRule},
}

// Classify runs the rule table and falls back to On Track.
func Classify(in Input) Status {
	for _, r := range Rules {
		if s, ok := r.Decide(in); ok {
			return s
		}
	}
	return OnTrack
}

func completedRule(in Input) (Status, bool) {
	if in.HasActualEnd {
		return Completed, true
	}
	return "", false
}

func notStartedRule(in Input) (Status, bool) {
	if in.HasActualStart {
		return "", false
	}
	slip := dates.DiffDays(in.Now, in.PlannedStart)
	switch {
	case in.exceedsSlack(slip):
		return Delayed, true
	case slip > 0:
		return AtRisk, true
	default:
		return OnTrack, true
	}
}

func startSlipRule(in Input) (Status, bool) {
	if in.exceedsSlack(dates.DiffDays(in.ActualStart, in.PlannedStart)) {
		return Delayed, true
	}
	return "", false
}

func forecastRule(in Input) (Status, bool) {
	expectedEnd := dates.AddDays(in.ActualStart, in.plannedTotal()-1)
	forecast := dates.DiffDays(expectedEnd, in.PlannedEnd)
	switch {
	case in.exceedsSlack(forecast):
		return Delayed, true
	case forecast > 0:
		return AtRisk, true
	}
	return "", false
}

func stalledRule(in Input) (Status, bool) {
	if in.plannedProgress() < stalledProgress && dates.DiffDays(in.Now, in.PlannedStart) > 0 {
		return AtRisk, true
	}
	return "", false
}
