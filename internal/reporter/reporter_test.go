package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/joshharrison/gantry/internal/claude"
	"github.com/joshharrison/gantry/internal/engine"
	"github.com/joshharrison/gantry/internal/gantt"
	"github.com/joshharrison/gantry/internal/timeline"
)

func init() {
	color.NoColor = true
}

const fixture = `[
  {
    "moduleName": "Civil",
    "activities": [
      {"code": "A1", "activityName": "Excavation", "start": "2026-02-01", "end": "2026-02-04",
       "actualStart": "2026-02-01", "actualFinish": "2026-02-05", "budget": 400, "actualCost": 500,
       "responsible": "u1"},
      {"code": "A2", "activityName": "Footings", "start": "2026-02-05", "end": "2026-02-09",
       "actualStart": "2026-02-08", "prerequisites": ["A1"], "budget": 500}
    ]
  },
  {
    "moduleName": "MEP",
    "activities": [
      {"code": "B1", "start": "2026-02-20", "end": "2026-02-25", "blocked": true}
    ]
  }
]`

func newReporter(t *testing.T, raw string) *Reporter {
	t.Helper()
	r := engine.Compute(timeline.MustParse(raw), engine.Input{Now: time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)})
	return New(r, "tower", "4")
}

func TestPrintSummary(t *testing.T) {
	r := newReporter(t, fixture)
	var buf bytes.Buffer
	out := r.PrintSummary(&buf)

	if out != buf.String() {
		t.Error("returned summary should match written output")
	}
	for _, want := range []string{
		"Schedule Health Report",
		"tower",
		"2026-02-01 → 2026-02-25",
		"Completion",
		"Delay attribution",
		"Execution funnel",
		"Blocked",
		"Critical:  ⚡ A1 → A2",
		"u1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected summary to contain %q\n%s", want, out)
		}
	}
}

func TestPrintSummary_NoDelay(t *testing.T) {
	r := newReporter(t, `[{"activities": [{"code": "X", "start": "2026-03-01", "end": "2026-03-04"}]}]`)
	var buf bytes.Buffer
	out := r.PrintSummary(&buf)
	if !strings.Contains(out, NoDelayBucket) {
		t.Errorf("expected %q in summary", NoDelayBucket)
	}
	if !strings.Contains(out, "No cost data recorded") {
		t.Error("expected no-cost notice")
	}
	if strings.Contains(out, "Critical:") {
		t.Error("expected no critical path without prerequisites")
	}
}

func TestPrintSummary_Warnings(t *testing.T) {
	r := newReporter(t, `[{"activities": [{"code": "X", "dependsOn": "GONE", "start": "2026-03-01"}]}]`)
	var buf bytes.Buffer
	out := r.PrintSummary(&buf)
	if !strings.Contains(out, "Warnings:") || !strings.Contains(out, "GONE") {
		t.Errorf("expected warning block, got:\n%s", out)
	}
}

func TestBar(t *testing.T) {
	row := gantt.Row{PlannedOffset: 0, PlannedDuration: 4, ActualOffset: 0, ActualDuration: 5}
	got := Bar(row, 10, 10)
	if got != "####=     " {
		t.Errorf("expected %q, got %q", "####=     ", got)
	}

	row = gantt.Row{PlannedOffset: 2, PlannedDuration: 3}
	got = Bar(row, 10, 10)
	if got != "  ---     " {
		t.Errorf("expected %q, got %q", "  ---     ", got)
	}
}

func TestBar_Scaled(t *testing.T) {
	row := gantt.Row{PlannedOffset: 50, PlannedDuration: 50}
	got := Bar(row, 100, 10)
	if got != "     -----" {
		t.Errorf("expected %q, got %q", "     -----", got)
	}
}

func TestPrintGantt(t *testing.T) {
	r := newReporter(t, fixture)
	var buf bytes.Buffer
	r.PrintGantt(&buf, 25)
	out := buf.String()

	if !strings.Contains(out, "[Civil]") || !strings.Contains(out, "[MEP]") {
		t.Errorf("expected module headers, got:\n%s", out)
	}
	if !strings.Contains(out, "A1 Excavation") {
		t.Errorf("expected row label, got:\n%s", out)
	}
	if strings.Count(out, "|") != 6 {
		t.Errorf("expected 3 bars, got:\n%s", out)
	}
}

func TestPrintGantt_Empty(t *testing.T) {
	r := newReporter(t, `[]`)
	var buf bytes.Buffer
	r.PrintGantt(&buf, 0)
	if !strings.Contains(buf.String(), "No activities in scope") {
		t.Errorf("expected empty notice, got:\n%s", buf.String())
	}
}

func TestJSON(t *testing.T) {
	r := newReporter(t, fixture)
	data, err := r.JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["project"] != "tower" || decoded["version"] != "4" {
		t.Errorf("unexpected envelope: %v / %v", decoded["project"], decoded["version"])
	}
	if decoded["total_days"] != float64(25) {
		t.Errorf("expected total_days 25, got %v", decoded["total_days"])
	}
	if _, ok := decoded["kpis"]; !ok {
		t.Error("expected kpis in output")
	}
}

func TestHeadline(t *testing.T) {
	r := newReporter(t, fixture)
	got := r.Headline()
	if !strings.HasPrefix(got, "tower v4: 33% complete") {
		t.Errorf("unexpected headline: %s", got)
	}
}

func TestPrintBriefing(t *testing.T) {
	var buf bytes.Buffer
	PrintBriefing(&buf, &claude.Briefing{Headline: "Slipping", Risks: []string{"Footings late"}, Summary: "Watch A2."})
	out := buf.String()
	for _, want := range []string{"Slipping", "Footings late", "Watch A2."} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in briefing", want)
		}
	}

	buf.Reset()
	PrintBriefing(&buf, nil)
	if buf.Len() != 0 {
		t.Error("expected nothing for nil briefing")
	}
}
