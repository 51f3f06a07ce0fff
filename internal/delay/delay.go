// Package delay attributes schedule slippage to root-cause categories.
package delay

import (
	"math"
	"sort"
	"strings"

	"github.com/joshharrison/gantry/internal/gantt"
	"github.com/joshharrison/gantry/internal/health"
	"github.com/joshharrison/gantry/internal/meta"
)

// Category is a root-cause bucket.
type Category string

const (
	Dependency Category = "Activity dependency"
	Resource   Category = "Resource/RASI"
	Documents  Category = "External/document pending"
	Commercial Category = "Commercial/budget hold"
)

// Categories lists buckets in rule order.
var Categories = []Category{Dependency, Resource, Documents, Commercial}

func (c Category) String() string { return string(c) }

// Rule matches activity metadata to a category.
type Rule struct {
	Category Category
	Match    func(m meta.Record) bool
}

// Rules is evaluated in order. Anything that matches none of them falls into
// Fallback, which shares the document-pending bucket.
var Rules = []Rule{
	{Category: Dependency, Match: dependencyBlocked},
	{Category: Resource, Match: resourceMissing},
	{Category: Documents, Match: documentsPending},
	{Category: Commercial, Match: commercialHold},
}

// Fallback absorbs delays with no matching signal.
const Fallback = Documents

// Categorize returns the first matching category for an activity.
func Categorize(m meta.Record) Category {
	for _, r := range Rules {
		if r.Match(m) {
			return r.Category
		}
	}
	return Fallback
}

func dependencyBlocked(m meta.Record) bool {
	if m.Present("prerequisite", "prerequisites", "dependsOn", "dependencies") {
		return true
	}
	status := m.Text("prerequisiteStatus", "dependencyStatus", "dependsOnStatus", "dependency_state", "prereq_status")
	if containsAny(status, "pending", "blocked") {
		return true
	}
	return m.Number("prerequisiteDelayDays", "dependencyDelayDays") > 0
}

func resourceMissing(m meta.Record) bool {
	if m.Truthy("rasiMissing", "rasiPending", "rasi_required_missing", "responsibleMissing", "accountableMissing") {
		return true
	}
	if m.Contains("pending", "rasiStatus", "resourceStatus") {
		return true
	}
	return !m.Truthy("owner", "responsible", "assignedTo")
}

func documentsPending(m meta.Record) bool {
	if m.Truthy("documentsPending", "docsPending", "documents_pending") {
		return true
	}
	if m.Contains("pending", "docStatus", "documentStatus") {
		return true
	}
	return m.Truthy("attachmentRequired") && !m.Truthy("documentsUploaded")
}

func commercialHold(m meta.Record) bool {
	if m.Truthy("commercialHold", "budgetHold", "poPending", "contractHold") {
		return true
	}
	return m.Contains("pending", "commercialStatus", "budgetStatus")
}

// Bucket is the accumulated delay for one category.
type Bucket struct {
	Name      Category `json:"name"`
	DelayDays float64  `json:"delay_days"`
	Count     int      `json:"count"`
}

// Totals sums every bucket.
type Totals struct {
	DelayDays  float64 `json:"total_delay_days"`
	Activities int     `json:"total_delayed_activities"`
}

// Breakdown is the attributed delay, buckets sorted by delay descending.
type Breakdown struct {
	Buckets []Bucket `json:"buckets"`
	Totals  Totals   `json:"totals"`
}

// TopBucket names the bucket carrying the most delay, or "" when nothing is
// delayed.
func (b Breakdown) TopBucket() Category {
	for _, bk := range b.Buckets {
		if bk.DelayDays > 0 {
			return bk.Name
		}
	}
	return ""
}

// Magnitude is the delay a row contributes: finish delay when an actual span
// was recorded, start slip otherwise. Never negative.
func Magnitude(r gantt.Row) int {
	if r.ActualDuration > 0 {
		return max(0, r.DelayDays)
	}
	return max(0, r.StartSlipDays)
}

// Eligible reports whether a row enters attribution at all.
func Eligible(r gantt.Row) bool {
	return r.Status == health.Delayed || (r.ActualDuration > 0 && r.DelayDays > 0)
}

// Attribute buckets delayed rows by root cause.
func Attribute(rows []gantt.Row) Breakdown {
	acc := make(map[Category]*Bucket, len(Categories))
	for _, c := range Categories {
		acc[c] = &Bucket{Name: c}
	}

	for _, r := range rows {
		if !Eligible(r) {
			continue
		}
		mag := Magnitude(r)
		if mag <= 0 {
			continue
		}
		b := acc[Categorize(r.Meta)]
		b.DelayDays += float64(mag)
		b.Count++
	}

	var out Breakdown
	for _, c := range Categories {
		b := *acc[c]
		b.DelayDays = math.Round(b.DelayDays*10) / 10
		out.Buckets = append(out.Buckets, b)
		out.Totals.DelayDays += b.DelayDays
		out.Totals.Activities += b.Count
	}
	sort.SliceStable(out.Buckets, func(i, j int) bool {
		return out.Buckets[i].DelayDays > out.Buckets[j].DelayDays
	})
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
