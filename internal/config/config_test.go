package config

import (
	"os"
	"path/filepath"
	"route-planner-service/internal/aco"
	"route-planner-service/internal/domain"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestGet(t *testing.T) {
	t.Setenv("PLANNER_TEST_KEY", "  value ")
	if got := Get("PLANNER_TEST_KEY", "x"); got != "value" {
		t.Fatalf("Get = %q, want %q", got, "value")
	}

	t.Setenv("PLANNER_TEST_KEY", "   ")
	if got := Get("PLANNER_TEST_KEY", "x"); got != "x" {
		t.Fatalf("Get blank = %q, want fallback", got)
	}
}

func TestGetFloat(t *testing.T) {
	t.Setenv("PLANNER_TEST_RATE", "2.5")
	got, err := GetFloat("PLANNER_TEST_RATE", 1)
	if err != nil || got != 2.5 {
		t.Fatalf("GetFloat = %v, %v; want 2.5", got, err)
	}

	t.Setenv("PLANNER_TEST_RATE", "fast")
	if _, err := GetFloat("PLANNER_TEST_RATE", 1); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadEnvKeepsExistingValues(t *testing.T) {
	path := writeFile(t, ".env", "PLANNER_TEST_ENV=from-file\nPLANNER_TEST_SET=from-file\n")
	t.Setenv("PLANNER_TEST_SET", "from-env")
	t.Setenv("PLANNER_TEST_ENV", "")
	os.Unsetenv("PLANNER_TEST_ENV")

	LoadEnv(path)

	if got := os.Getenv("PLANNER_TEST_ENV"); got != "from-file" {
		t.Fatalf("PLANNER_TEST_ENV = %q, want from-file", got)
	}
	if got := os.Getenv("PLANNER_TEST_SET"); got != "from-env" {
		t.Fatalf("PLANNER_TEST_SET = %q, want from-env", got)
	}
}

func TestLoadPlannerLayersOverBase(t *testing.T) {
	path := writeFile(t, "planner.yaml", "truck_count: 5\noptimize_by: meters\nseed: 42\n")

	got, err := LoadPlanner(path, aco.DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TruckCount != 5 || got.OptimizeBy != domain.MetricMeters {
		t.Fatalf("params = %+v", got.Params)
	}
	if got.Q != 0.7 || got.TimeLimit != 21600 {
		t.Fatalf("defaults lost: q=%v time_limit=%d", got.Q, got.TimeLimit)
	}
	if got.Seed == nil || *got.Seed != 42 {
		t.Fatalf("seed = %v, want 42", got.Seed)
	}
}

func TestLoadPlannerEmptyPath(t *testing.T) {
	got, err := LoadPlanner("", aco.DefaultParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Params != aco.DefaultParams() || got.Seed != nil {
		t.Fatalf("got %+v, want defaults", got)
	}
}

func TestLoadPlannerEmptyFile(t *testing.T) {
	path := writeFile(t, "planner.yaml", "")
	if _, err := LoadPlanner(path, aco.DefaultParams()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadPlannerRejectsUnknownKey(t *testing.T) {
	path := writeFile(t, "planner.yaml", "trucks: 5\n")
	if _, err := LoadPlanner(path, aco.DefaultParams()); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}
