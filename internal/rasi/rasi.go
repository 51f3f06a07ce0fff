// Package rasi tallies Responsible/Accountable/Supportive/Informed assignments
// per person.
package rasi

import (
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/joshharrison/gantry/internal/gantt"
	"github.com/joshharrison/gantry/internal/meta"
)

const (
	DefaultOverloadThreshold = 8
	DefaultTopPeople         = 20
)

// Role is one RASI letter.
type Role string

const (
	Responsible Role = "R"
	Accountable Role = "A"
	Supportive  Role = "S"
	Informed    Role = "I"
)

// Roles lists roles in tally order.
var Roles = []Role{Responsible, Accountable, Supportive, Informed}

var blockKeys = meta.Keys{"rasi", "RASI", "raci", "RACI"}

// roleKeys are read from the RASI block first, then from the activity. The
// activity fallback for Responsible also accepts assignedTo.
var roleKeys = map[Role]struct{ block, activity meta.Keys }{
	Responsible: {meta.Keys{"responsible", "Responsible", "R", "r"}, meta.Keys{"responsible", "Responsible", "R", "r", "assignedTo"}},
	Accountable: {meta.Keys{"accountable", "Accountable", "A", "a"}, meta.Keys{"accountable", "Accountable", "A", "a"}},
	Supportive:  {meta.Keys{"consulted", "Consulted", "C", "c", "S", "s"}, meta.Keys{"consulted", "Consulted", "C", "c", "S", "s"}},
	Informed:    {meta.Keys{"informed", "Informed", "I", "i"}, meta.Keys{"informed", "Informed", "I", "i"}},
}

// Assignments returns the identifiers holding each role on an activity.
func Assignments(m meta.Record) map[Role][]string {
	block := m.Object(blockKeys...)
	out := make(map[Role][]string, len(Roles))
	for _, role := range Roles {
		keys := roleKeys[role]
		v, ok := block.First(keys.block...)
		if !ok {
			v, ok = m.First(keys.activity...)
		}
		if !ok {
			v = gjson.Result{}
		}
		out[role] = meta.List(v)
	}
	return out
}

// Load is one person's assignment counts.
type Load struct {
	Person string `json:"person"`
	R      int    `json:"r"`
	A      int    `json:"a"`
	S      int    `json:"s"`
	I      int    `json:"i"`
	Total  int    `json:"total"`
}

func (l *Load) add(role Role) {
	switch role {
	case Responsible:
		l.R++
	case Accountable:
		l.A++
	case Supportive:
		l.S++
	case Informed:
		l.I++
	}
	l.Total++
}

// Options tune the aggregation. Zero values pick the defaults.
type Options struct {
	// Labels maps raw identifiers to display names.
	Labels            map[string]string
	OverloadThreshold int
	TopPeople         int
}

func (o Options) withDefaults() Options {
	if o.OverloadThreshold <= 0 {
		o.OverloadThreshold = DefaultOverloadThreshold
	}
	if o.TopPeople <= 0 {
		o.TopPeople = DefaultTopPeople
	}
	return o
}

// Summary is the ranked load table.
type Summary struct {
	Loads      []Load   `json:"loads"`
	Overloaded []string `json:"overloaded"`
	Threshold  int      `json:"threshold"`
}

// Aggregate counts roles across rows. People are ranked by total load, ties
// keeping first-seen order, and cut to the top N. Overloaded lists kept
// people whose Responsible count reaches the threshold.
func Aggregate(rows []gantt.Row, opts Options) Summary {
	opts = opts.withDefaults()

	index := make(map[string]int)
	var loads []Load
	for _, r := range rows {
		roles := Assignments(r.Meta)
		for _, role := range Roles {
			for _, id := range roles[role] {
				id = strings.TrimSpace(id)
				if id == "" {
					continue
				}
				person := id
				if label := opts.Labels[id]; label != "" {
					person = label
				}
				i, ok := index[person]
				if !ok {
					i = len(loads)
					index[person] = i
					loads = append(loads, Load{Person: person})
				}
				loads[i].add(role)
			}
		}
	}

	sort.SliceStable(loads, func(i, j int) bool { return loads[i].Total > loads[j].Total })
	if len(loads) > opts.TopPeople {
		loads = loads[:opts.TopPeople]
	}

	overloaded := lo.FilterMap(loads, func(l Load, _ int) (string, bool) {
		return l.Person, l.R >= opts.OverloadThreshold
	})
	return Summary{Loads: loads, Overloaded: overloaded, Threshold: opts.OverloadThreshold}
}
