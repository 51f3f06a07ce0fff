package tasks

import "github.com/joshharrison/gantry/internal/meta"

// All disables a module or group filter.
const All = "ALL"

// Uninitialized is the module filter value used before a selection exists.
// It behaves like All.
const Uninitialized = "__INIT__"

// Task is one activity flattened out of the module hierarchy.
type Task struct {
	ID           string      `json:"id"`
	Module       string      `json:"module"`
	Group        string      `json:"group"`
	Activity     string      `json:"activity"`
	Owner        string      `json:"owner"`
	PlannedStart string      `json:"-"`
	PlannedEnd   string      `json:"-"`
	ActualStart  string      `json:"-"`
	ActualEnd    string      `json:"-"`
	SlackDays    float64     `json:"slack_days"`
	Meta         meta.Record `json:"-"` // the raw activity, for heuristics downstream
}

// Filter selects modules by group label and module name.
type Filter struct {
	Module string
	Group  string
}
