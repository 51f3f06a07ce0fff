package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.StoreDir != "data" || c.Addr != ":7171" || c.GanttWidth != 60 {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gantry.yaml")
	body := `
store_dir: /srv/timelines
log_format: json
gantt_width: 80
analytics:
  overload_threshold: 5
  top_people: 10
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	c := Default()
	if err := c.loadFile(path); err != nil {
		t.Fatalf("loadFile: %v", err)
	}
	if c.StoreDir != "/srv/timelines" || c.LogFormat != "json" || c.GanttWidth != 80 {
		t.Errorf("unexpected config: %+v", c)
	}
	if c.Analytics.OverloadThreshold != 5 || c.Analytics.TopPeople != 10 {
		t.Errorf("unexpected analytics: %+v", c.Analytics)
	}
	if c.Addr != ":7171" {
		t.Errorf("expected default addr kept, got %s", c.Addr)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("gantt_width: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, ""); err == nil || !strings.Contains(err.Error(), "unmarshal config") {
		t.Errorf("expected unmarshal error, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.applyEnv(lookupFrom(map[string]string{
		"GANTRY_DATABASE_URL":       "postgres://localhost/gantry",
		"GANTRY_LOG_LEVEL":          "debug",
		"GANTRY_TOP_PEOPLE":         "7",
		"GANTRY_STORE_DIR":          "",
		"ANTHROPIC_API_KEY":         "sk-test",
		"GANTRY_OVERLOAD_THRESHOLD": "3",
	}))
	if err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if c.DatabaseURL != "postgres://localhost/gantry" || c.LogLevel != "debug" {
		t.Errorf("unexpected strings: %+v", c)
	}
	if c.StoreDir != "data" {
		t.Errorf("empty env value should not override, got %q", c.StoreDir)
	}
	if c.Analytics.TopPeople != 7 || c.Analytics.OverloadThreshold != 3 {
		t.Errorf("unexpected analytics: %+v", c.Analytics)
	}
	if c.AnthropicAPIKey != "sk-test" {
		t.Errorf("expected api key, got %q", c.AnthropicAPIKey)
	}
}

func TestApplyEnv_BadInt(t *testing.T) {
	c := Default()
	err := c.applyEnv(lookupFrom(map[string]string{"GANTRY_GANTT_WIDTH": "wide"}))
	if err == nil || !strings.Contains(err.Error(), "GANTRY_GANTT_WIDTH") {
		t.Errorf("expected parse error naming the variable, got %v", err)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("GANTRY_HISTORY_DIR=/var/gantry/history\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GANTRY_HISTORY_DIR", "")
	os.Unsetenv("GANTRY_HISTORY_DIR")
	t.Setenv("GANTRY_ADDR", ":9000")

	cfgPath := filepath.Join(dir, "gantry.yaml")
	if err := os.WriteFile(cfgPath, []byte("addr: \":8080\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(cfgPath, envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HistoryDir != "/var/gantry/history" {
		t.Errorf("expected history dir from .env, got %q", c.HistoryDir)
	}
	if c.Addr != ":9000" {
		t.Errorf("expected env to override file, got %q", c.Addr)
	}
}

func TestValidate(t *testing.T) {
	c := Default()
	c.GanttWidth = -1
	if err := c.Validate(); err == nil {
		t.Error("expected error for negative width")
	}
	c = Default()
	c.StoreDir = ""
	if err := c.Validate(); err == nil {
		t.Error("expected error without any store")
	}
}
