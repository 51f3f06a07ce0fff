package health

import "math"

// Slice is one donut segment.
type Slice struct {
	Name  Status `json:"name"`
	Value int    `json:"value"`
}

// Summary aggregates statuses across rows.
type Summary struct {
	Donut              []Slice        `json:"donut"`
	Counts             map[Status]int `json:"counts"`
	TotalActive        int            `json:"total_active"`
	PctOnTrack         int            `json:"pct_on_track"`
	DelayedBeyondSlack int            `json:"delayed_beyond_slack"`
	AvgCompletedDelay  float64        `json:"avg_completed_delay_days"`
}

// Entry is the per-row input to Summarize.
type Entry struct {
	Status    Status
	DelayDays int
}

// Summarize counts statuses in display order and derives the health totals.
func Summarize(entries []Entry) Summary {
	s := Summary{Counts: make(map[Status]int, len(Statuses))}
	for _, st := range Statuses {
		s.Counts[st] = 0
	}

	completedDelay := 0
	for _, e := range entries {
		s.Counts[e.Status]++
		if e.Status == Completed {
			completedDelay += e.DelayDays
		}
	}

	for _, st := range Statuses {
		s.Donut = append(s.Donut, Slice{Name: st, Value: s.Counts[st]})
	}

	s.TotalActive = len(entries) - s.Counts[Completed]
	if s.TotalActive > 0 {
		s.PctOnTrack = int(math.Round(float64(s.Counts[OnTrack]) / float64(s.TotalActive) * 100))
	}
	s.DelayedBeyondSlack = s.Counts[Delayed]
	if n := s.Counts[Completed]; n > 0 {
		s.AvgCompletedDelay = math.Floor(float64(completedDelay)/float64(n)*10+0.5) / 10
	}
	return s
}
