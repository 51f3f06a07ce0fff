// Package kpi folds the per-activity analytics into headline numbers.
package kpi

import (
	"math"

	"github.com/joshharrison/gantry/internal/cost"
	"github.com/joshharrison/gantry/internal/delay"
	"github.com/joshharrison/gantry/internal/gantt"
	"github.com/joshharrison/gantry/internal/health"
	"github.com/joshharrison/gantry/internal/stage"
)

// Cost holds the budget indicators.
type Cost struct {
	Variance     float64 `json:"variance"`
	VariancePct  float64 `json:"variance_pct"`
	Budgeted     float64 `json:"budgeted"`
	Forecast     float64 `json:"forecast"`
	OverrunStart string  `json:"overrun_start,omitempty"`
	HasCost      bool    `json:"has_cost"`
}

// Summary is the headline KPI set.
type Summary struct {
	TotalActivities     int            `json:"total_activities"`
	Completed           int            `json:"completed"`
	CompletionPct       int            `json:"completion_pct"`
	OnTimeCompletionPct int            `json:"on_time_completion_pct"`
	LateCompleted       int            `json:"late_completed"`
	RiskLoad            int            `json:"risk_load"`
	RiskLoadPct         int            `json:"risk_load_pct"`
	TotalDelayDays      float64        `json:"total_delay_days"`
	DelayedActivities   int            `json:"delayed_activities"`
	AvgDelayPerDelayed  float64        `json:"avg_delay_per_delayed"`
	TopDelayBucket      delay.Category `json:"top_delay_bucket,omitempty"`
	Cost                Cost           `json:"cost"`
}

// Input is everything the fold reads. Nothing is recomputed here.
type Input struct {
	Rows   []gantt.Row
	Health health.Summary
	Delay  delay.Breakdown
	Stages stage.Funnel
	Cost   cost.Burn
}

// Summarize computes the KPIs.
func Summarize(in Input) Summary {
	total := len(in.Rows)
	completed := in.Health.Counts[health.Completed]

	onTime := 0
	for _, r := range in.Rows {
		if r.Status == health.Completed && r.DelayDays <= 0 {
			onTime++
		}
	}

	risk := in.Health.Counts[health.Delayed] + in.Health.Counts[health.AtRisk] + in.Stages.Counts[stage.Blocked]

	s := Summary{
		TotalActivities:     total,
		Completed:           completed,
		CompletionPct:       pct(completed, total),
		OnTimeCompletionPct: pct(onTime, completed),
		LateCompleted:       max(0, completed-onTime),
		RiskLoad:            risk,
		RiskLoadPct:         pct(risk, total),
		TotalDelayDays:      round(in.Delay.Totals.DelayDays, 10),
		DelayedActivities:   in.Delay.Totals.Activities,
		TopDelayBucket:      in.Delay.TopBucket(),
	}
	if s.DelayedActivities > 0 {
		s.AvgDelayPerDelayed = round(s.TotalDelayDays/float64(s.DelayedActivities), 10)
	}

	budgeted := in.Cost.Totals.Budgeted
	forecast := in.Cost.Totals.ActualPlusDelay
	s.Cost = Cost{
		Variance:     round(forecast-budgeted, 100),
		Budgeted:     budgeted,
		Forecast:     forecast,
		OverrunStart: in.Cost.Totals.FirstOverrunDate,
		HasCost:      in.Cost.HasAny,
	}
	if budgeted > 0 {
		s.Cost.VariancePct = round(s.Cost.Variance/budgeted*100, 10)
	}
	return s
}

func pct(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Floor(float64(n)/float64(d)*100 + 0.5))
}

// round rounds half up at 1/scale.
func round(v, scale float64) float64 {
	return math.Floor(v*scale+0.5) / scale
}
