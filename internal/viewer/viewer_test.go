package viewer

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joshharrison/gantry/internal/engine"
	"github.com/joshharrison/gantry/internal/logging"
	"github.com/joshharrison/gantry/internal/store"
)

const timelineV1 = `[{"moduleName": "Civil", "activities": [
  {"code": "A1", "start": "2026-02-01", "end": "2026-02-04", "actualStart": "2026-02-01", "actualFinish": "2026-02-04", "responsible": "u1"},
  {"code": "A2", "start": "2026-02-05", "end": "2026-02-09"}
]}]`

const timelineV2 = `[{"moduleName": "Civil", "activities": [
  {"code": "A1", "start": "2026-02-01", "end": "2026-02-04", "actualStart": "2026-02-01", "actualFinish": "2026-02-04"}
]}, {"moduleName": "MEP", "activities": [
  {"code": "B1", "start": "2026-02-05", "end": "2026-02-09"}
]}]`

func setup(t *testing.T) *httptest.Server {
	t.Helper()
	root := t.TempDir()
	write := func(rel, body string) {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("tower/1.json", timelineV1)
	write("tower/2.json", timelineV2)
	write("people.json", `{"u1": "Ana"}`)

	fs := store.NewFileStore(root)
	s := New(fs, fs, engine.Options{}, logging.Discard())
	s.Clock = func() time.Time { return time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC) }

	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestHealthz(t *testing.T) {
	ts := setup(t)
	code, body := get(t, ts.URL+"/healthz")
	if code != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Errorf("unexpected healthz: %d %s", code, body)
	}
}

func TestProjects(t *testing.T) {
	ts := setup(t)
	code, body := get(t, ts.URL+"/api/projects")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var out map[string][]string
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out["projects"]) != 1 || out["projects"][0] != "tower" {
		t.Errorf("unexpected projects: %v", out["projects"])
	}
}

func TestVersions(t *testing.T) {
	ts := setup(t)
	code, body := get(t, ts.URL+"/api/projects/tower/versions")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(body, `"latest":"2"`) {
		t.Errorf("expected latest 2, got %s", body)
	}
}

func TestReport_LatestVersion(t *testing.T) {
	ts := setup(t)
	code, body := get(t, ts.URL+"/api/projects/tower/report")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out["version"] != "2" {
		t.Errorf("expected latest version 2, got %v", out["version"])
	}
	if out["now"] != "2026-02-10" {
		t.Errorf("expected clock day, got %v", out["now"])
	}
	if rows := out["rows"].([]any); len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}
}

func TestReport_Filters(t *testing.T) {
	ts := setup(t)
	code, body := get(t, ts.URL+"/api/projects/tower/report?version=1&now=2026-02-03&module=Civil")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, body)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out["version"] != "1" || out["now"] != "2026-02-03" || out["module"] != "Civil" {
		t.Errorf("unexpected envelope: version=%v now=%v module=%v", out["version"], out["now"], out["module"])
	}
	if !strings.Contains(body, `"person": "Ana"`) {
		t.Errorf("expected person label applied, got %s", body)
	}
}

func TestReport_Errors(t *testing.T) {
	ts := setup(t)
	if code, _ := get(t, ts.URL+"/api/projects/missing/report"); code != http.StatusNotFound {
		t.Errorf("expected 404 for missing project, got %d", code)
	}
	if code, _ := get(t, ts.URL+"/api/projects/tower/report?version=9"); code != http.StatusNotFound {
		t.Errorf("expected 404 for missing version, got %d", code)
	}
	if code, _ := get(t, ts.URL+"/api/projects/tower/report?now=someday"); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad now, got %d", code)
	}
}

func TestMetrics(t *testing.T) {
	ts := setup(t)
	get(t, ts.URL+"/api/projects/tower/report")
	code, body := get(t, ts.URL+"/metrics")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	for _, want := range []string{
		`gantry_reports_computed_total{project="tower"} 1`,
		`gantry_completion_percent{project="tower"} 50`,
		`gantry_http_requests_total{code="200",route="/api/projects/{project}/report"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics to contain %q", want)
		}
	}
}
