// Package snapshot keeps a per-project history of KPI summaries so trends can
// be compared across timeline versions.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joshharrison/gantry/internal/kpi"
)

// DefaultDir is where histories live when no directory is configured.
const DefaultDir = ".gantry/history"

// Entry is one recorded KPI summary.
type Entry struct {
	ID      string      `json:"id"`
	Version string      `json:"version"`
	AsOf    string      `json:"as_of"`
	TakenAt time.Time   `json:"taken_at"`
	KPIs    kpi.Summary `json:"kpis"`
}

// History is the persistent snapshot list for one project.
type History struct {
	Project string  `json:"project"`
	Entries []Entry `json:"entries"`

	mu   sync.Mutex
	path string
}

// Delta compares one entry against the entry before it.
type Delta struct {
	From string `json:"from"`
	To   string `json:"to"`

	CompletionPct  int     `json:"completion_pct"`
	RiskLoad       int     `json:"risk_load"`
	TotalDelayDays float64 `json:"total_delay_days"`
	CostVariance   float64 `json:"cost_variance"`
}

func fileName(project string) (string, error) {
	if project == "" || strings.ContainsAny(project, `/\`) || project == "." || project == ".." {
		return "", fmt.Errorf("invalid project name %q", project)
	}
	return project + ".json", nil
}

// Open loads the history for project from dir, or starts an empty one if none
// has been recorded yet.
func Open(dir, project string) (*History, error) {
	name, err := fileName(project)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = DefaultDir
	}
	h := &History{Project: project, path: filepath.Join(dir, name)}

	data, err := os.ReadFile(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if err := json.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	return h, nil
}

// Save persists the history to disk.
func (h *History) Save() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return os.WriteFile(h.path, data, 0644)
}

// Record appends a summary and saves. Recording the same version and as-of
// day again replaces the earlier entry.
func (h *History) Record(version, asOf string, takenAt time.Time, k kpi.Summary) (Entry, error) {
	e := Entry{
		ID:      uuid.NewString(),
		Version: version,
		AsOf:    asOf,
		TakenAt: takenAt.UTC(),
		KPIs:    k,
	}

	h.mu.Lock()
	replaced := false
	for i := range h.Entries {
		if h.Entries[i].Version == version && h.Entries[i].AsOf == asOf {
			e.ID = h.Entries[i].ID
			h.Entries[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		h.Entries = append(h.Entries, e)
	}
	h.mu.Unlock()

	return e, h.Save()
}

// Latest returns the most recently recorded entry.
func (h *History) Latest() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.Entries) == 0 {
		return Entry{}, false
	}
	return h.Entries[len(h.Entries)-1], true
}

// Trend returns the change between each pair of consecutive entries.
func (h *History) Trend() []Delta {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []Delta
	for i := 1; i < len(h.Entries); i++ {
		prev, cur := h.Entries[i-1], h.Entries[i]
		out = append(out, Delta{
			From:           label(prev),
			To:             label(cur),
			CompletionPct:  cur.KPIs.CompletionPct - prev.KPIs.CompletionPct,
			RiskLoad:       cur.KPIs.RiskLoad - prev.KPIs.RiskLoad,
			TotalDelayDays: round1(cur.KPIs.TotalDelayDays - prev.KPIs.TotalDelayDays),
			CostVariance:   round2(cur.KPIs.Cost.Variance - prev.KPIs.Cost.Variance),
		})
	}
	return out
}

func label(e Entry) string {
	return fmt.Sprintf("v%s@%s", e.Version, e.AsOf)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
