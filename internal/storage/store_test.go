package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/san-kum/flightsim/internal/metrics"
	"github.com/san-kum/flightsim/internal/scenario"
	"github.com/san-kum/flightsim/internal/sim"
)

func flyTrace(t *testing.T) (*scenario.Trace, map[string]float64) {
	t.Helper()
	sc := &scenario.Scenario{
		Name:   "test",
		Seed:   42,
		StepDt: 0.1,
		Segments: []scenario.Segment{
			{Name: "idle", Duration: 0.5, Command: sim.Command{Throttle: 0}},
			{Name: "climb", Duration: 0.5, Command: sim.Command{Throttle: 1.4, Pitch: 0.5}},
		},
	}
	set := metrics.Default()
	trace, err := scenario.Run(context.Background(), sc, scenario.Options{Observers: []metrics.Observer{set}})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return trace, set.Values()
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	trace, values := flyTrace(t)
	runID, err := st.Save(trace, values)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := uuid.Parse(runID); err != nil {
		t.Errorf("run id %q is not a uuid: %v", runID, err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Name != "test" {
		t.Errorf("expected name 'test', got '%s'", meta.Name)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Steps != len(trace.Samples) {
		t.Errorf("expected %d steps, got %d", len(trace.Samples), meta.Steps)
	}
	if meta.Metrics["max_altitude"] != values["max_altitude"] {
		t.Errorf("expected max_altitude %f, got %f", values["max_altitude"], meta.Metrics["max_altitude"])
	}
	climbSteps := trace.Segments[1].Steps
	if meta.Warnings[string(sim.WarnThrottleClamped)] != climbSteps {
		t.Errorf("expected %d throttle_clamped steps, got %d", climbSteps, meta.Warnings[string(sim.WarnThrottleClamped)])
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}

	if len(samples) != len(trace.Samples) {
		t.Fatalf("expected %d samples, got %d", len(trace.Samples), len(samples))
	}

	for i, got := range samples {
		want := trace.Samples[i]
		if got.Time != want.Time || got.Segment != want.Segment || got.Command != want.Command {
			t.Errorf("sample %d header mismatch: got %+v", i, got)
		}
		if got.Result.State != want.Result.State {
			t.Errorf("sample %d state mismatch: got %+v want %+v", i, got.Result.State, want.Result.State)
		}
		if got.Result.Sensors != want.Result.Sensors {
			t.Errorf("sample %d sensors mismatch", i)
		}
		if len(got.Result.Warnings) != len(want.Result.Warnings) {
			t.Errorf("sample %d warnings: got %v want %v", i, got.Result.Warnings, want.Result.Warnings)
			continue
		}
		for j := range got.Result.Warnings {
			if got.Result.Warnings[j] != want.Result.Warnings[j] {
				t.Errorf("sample %d warning %d: got %s want %s", i, j, got.Result.Warnings[j], want.Result.Warnings[j])
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	trace, values := flyTrace(t)
	for i := 0; i < 2; i++ {
		if _, err := st.Save(trace, values); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	if err := os.Mkdir(filepath.Join(tmpDir, "stray"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	trace, values := flyTrace(t)
	runID, err := st.Save(trace, values)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "telemetry.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestLoadSamplesRejectsShortRow(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	runDir := filepath.Join(tmpDir, "broken")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	data := "segment,time\n0,0.1\n"
	if err := os.WriteFile(filepath.Join(runDir, "telemetry.csv"), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := st.LoadSamples("broken"); err == nil {
		t.Error("expected error for short row")
	}
}

func TestHeaderMatchesRow(t *testing.T) {
	row := Row(scenario.Sample{Result: sim.StepResult{Warnings: []sim.Warning{sim.WarnStallRisk, sim.WarnBatteryLow}}})
	if len(row) != len(Header()) {
		t.Fatalf("row has %d fields, header %d", len(row), len(Header()))
	}
	if got := row[len(row)-1]; got != "stall_risk|battery_low" {
		t.Errorf("warnings column = %q", got)
	}
}
