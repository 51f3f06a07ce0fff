package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/joshharrison/gantry/internal/health"
	"github.com/joshharrison/gantry/internal/stage"
)

func init() {
	color.NoColor = true
}

func TestModuleLabel_Stable(t *testing.T) {
	a := ModuleLabel("Civil")
	b := ModuleLabel("Civil")
	if a != b {
		t.Errorf("expected same label, got %q and %q", a, b)
	}
	if a != "[Civil]" {
		t.Errorf("expected [Civil], got %q", a)
	}
}

func TestModuleColorIndex_InRange(t *testing.T) {
	for _, name := range []string{"", "Civil", "MEP", "Façade", "x"} {
		if i := moduleColorIndex(name); i < 0 || i >= len(moduleColors) {
			t.Errorf("index %d out of range for %q", i, name)
		}
	}
}

func TestHealthIcon(t *testing.T) {
	tests := map[health.Status]string{
		health.Completed: "✓",
		health.OnTrack:   "●",
		health.AtRisk:    "▲",
		health.Delayed:   "✗",
		"unknown":        "◌",
	}
	for s, want := range tests {
		if got := HealthIcon(s); got != want {
			t.Errorf("HealthIcon(%q): expected %q, got %q", s, want, got)
		}
	}
}

func TestLabels(t *testing.T) {
	if got := HealthStatus(health.AtRisk); got != "At Risk" {
		t.Errorf("expected At Risk, got %q", got)
	}
	if got := StageLabel(stage.Blocked); got != "Blocked" {
		t.Errorf("expected Blocked, got %q", got)
	}
}

func TestPrintLogo(t *testing.T) {
	var buf bytes.Buffer
	PrintLogo(&buf)
	if !strings.Contains(buf.String(), "G  A  N  T  R  Y") {
		t.Errorf("logo missing brand line:\n%s", buf.String())
	}
}
