// Package cost spreads activity cost fields across the project day grid and
// finds where actual plus delay spend first overtakes the budget curve.
package cost

import (
	"math"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/gantry/internal/dates"
	"github.com/joshharrison/gantry/internal/gantt"
	"github.com/joshharrison/gantry/internal/meta"
)

// Field is one cost concept and the aliases it may be recorded under.
type Field struct {
	Name string
	Keys meta.Keys
}

var (
	Budget = Field{"budget", meta.Keys{"budget", "budgetCost", "budgetedCost", "plannedCost", "plannedBudget", "activityBudget", "projectCost", "cost.projectCost"}}
	Actual = Field{"actual", meta.Keys{"actualCost", "actualSpend", "spent", "actualAmount", "expense", "costActual", "opCost", "cost.opCost"}}
	Delay  = Field{"delay", meta.Keys{"delayCost", "delay_cost", "costDelay", "delayPenalty", "delayPenaltyCost"}}
	DPR    = Field{"dpr", meta.Keys{"dprCost", "dpr_cost", "dailyProgressCost", "progressCost", "dprAmount", "cost.dprCost"}}
)

// sources are tried in order; the activity itself comes first.
var sources = []string{"cost", "costs", "financials", "finance"}

// Read returns the first non-zero number recorded for f, looking at the
// activity and then its nested cost objects. Empty strings and nulls are
// skipped.
func Read(m meta.Record, f Field) float64 {
	if n, ok := readFrom(m, f.Keys); ok {
		return n
	}
	for _, src := range sources {
		nested := m.Get(src)
		if !meta.Truthy(nested) || !nested.IsObject() {
			continue
		}
		if n, ok := readFrom(meta.FromResult(nested), f.Keys); ok {
			return n
		}
	}
	return 0
}

func readFrom(m meta.Record, keys meta.Keys) (float64, bool) {
	for _, k := range keys {
		v := m.Get(k)
		if !v.Exists() || v.Type == gjson.Null || (v.Type == gjson.String && v.Str == "") {
			continue
		}
		if n := meta.ToNumber(v); n != 0 {
			return n, true
		}
	}
	return 0, false
}

// Point is one day of the burn curve. The plain fields hold the amount spread
// onto that day; the Cum fields are running totals rounded to cents.
type Point struct {
	Day   int    `json:"day"`
	Index int    `json:"index"`
	Date  string `json:"date"`

	Budgeted  float64 `json:"budgeted"`
	Actual    float64 `json:"actual"`
	DelayCost float64 `json:"delay_cost"`
	DprCost   float64 `json:"dpr_cost"`

	CumBudgeted     float64 `json:"cum_budgeted"`
	CumActual       float64 `json:"cum_actual"`
	CumDelayCost    float64 `json:"cum_delay_cost"`
	CumDprCost      float64 `json:"cum_dpr_cost"`
	ActualPlusDelay float64 `json:"actual_plus_delay"`
}

// Totals are the final cumulative values plus the overrun marker.
type Totals struct {
	Budgeted          float64 `json:"budgeted"`
	Actual            float64 `json:"actual"`
	DelayCost         float64 `json:"delay_cost"`
	DprCost           float64 `json:"dpr_cost"`
	ActualPlusDelay   float64 `json:"actual_plus_delay"`
	FirstOverrunIndex *int    `json:"first_overrun_index,omitempty"`
	FirstOverrunDate  string  `json:"first_overrun_date,omitempty"`
}

// Flags records which cost fields appeared on any activity.
type Flags struct {
	Budget bool `json:"budget"`
	Actual bool `json:"actual"`
	Delay  bool `json:"delay"`
	DPR    bool `json:"dpr"`
}

// Burn is the simulated cost curve for a chart.
type Burn struct {
	Series []Point `json:"series"`
	Totals Totals  `json:"totals"`
	Flags  Flags   `json:"flags"`
	HasAny bool    `json:"has_any"`
}

// Simulate builds the burn curve over the chart's day grid.
func Simulate(c gantt.Chart) Burn {
	n := max(c.TotalDays, 0)
	series := make([]Point, n)
	for i := range series {
		series[i].Day = i + 1
		series[i].Index = i
		series[i].Date = dates.Format(dates.AddDays(c.BaselineStart, i), true)
	}

	spread := func(pick func(*Point) *float64, start, dur int, total float64) {
		if total <= 0 || dur <= 0 {
			return
		}
		perDay := total / float64(dur)
		for i := 0; i < dur; i++ {
			idx := start + i
			if idx < 0 || idx >= n {
				continue
			}
			*pick(&series[idx]) += perDay
		}
	}

	var flags Flags
	for _, r := range c.Rows {
		budget := Read(r.Meta, Budget)
		actual := Read(r.Meta, Actual)
		delay := Read(r.Meta, Delay)
		dpr := Read(r.Meta, DPR)

		flags.Budget = flags.Budget || budget > 0
		flags.Actual = flags.Actual || actual > 0
		flags.Delay = flags.Delay || delay > 0
		flags.DPR = flags.DPR || dpr > 0

		spread(func(p *Point) *float64 { return &p.Budgeted }, r.PlannedOffset, r.PlannedDuration, budget)

		start, dur := executedSpan(r)
		spread(func(p *Point) *float64 { return &p.Actual }, start, dur, actual)
		spread(func(p *Point) *float64 { return &p.DprCost }, start, dur, dpr)

		if late := max(0, r.DelayDays); late > 0 {
			from := r.PlannedOffset + r.PlannedDuration
			spread(func(p *Point) *float64 { return &p.DelayCost }, from, min(late, n-from), delay)
		} else {
			spread(func(p *Point) *float64 { return &p.DelayCost }, r.PlannedOffset, r.PlannedDuration, delay)
		}
	}

	var cb, ca, cd, cp float64
	var totals Totals
	for i := range series {
		p := &series[i]
		cb += p.Budgeted
		ca += p.Actual
		cd += p.DelayCost
		cp += p.DprCost
		p.CumBudgeted = cents(cb)
		p.CumActual = cents(ca)
		p.CumDelayCost = cents(cd)
		p.CumDprCost = cents(cp)
		p.ActualPlusDelay = cents(ca + cd)

		if totals.FirstOverrunIndex == nil && p.CumBudgeted > 0 && p.ActualPlusDelay > p.CumBudgeted {
			idx := i
			totals.FirstOverrunIndex = &idx
			totals.FirstOverrunDate = p.Date
		}
	}
	if n > 0 {
		last := series[n-1]
		totals.Budgeted = last.CumBudgeted
		totals.Actual = last.CumActual
		totals.DelayCost = last.CumDelayCost
		totals.DprCost = last.CumDprCost
		totals.ActualPlusDelay = last.ActualPlusDelay
	}

	return Burn{
		Series: series,
		Totals: totals,
		Flags:  flags,
		HasAny: flags.Budget || flags.Actual || flags.Delay || flags.DPR,
	}
}

// executedSpan is the actual bar when one was recorded, else the planned bar.
func executedSpan(r gantt.Row) (start, dur int) {
	if r.ActualDuration > 0 {
		return r.ActualOffset, r.ActualDuration
	}
	return r.PlannedOffset, r.PlannedDuration
}

func cents(v float64) float64 {
	return math.Round(v*100) / 100
}
