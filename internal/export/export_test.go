package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/flightsim/internal/scenario"
	"github.com/san-kum/flightsim/internal/sim"
)

func flyTrace(t *testing.T) *scenario.Trace {
	t.Helper()
	sc := &scenario.Scenario{
		Name:   "export",
		Seed:   3,
		StepDt: 0.1,
		Segments: []scenario.Segment{
			{Name: "turn", Duration: 2, Command: sim.Command{Throttle: 0.6, Pitch: 0.2, Yaw: 0.7}},
		},
	}
	trace, err := scenario.Run(context.Background(), sc, scenario.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return trace
}

func TestWriteJSON(t *testing.T) {
	trace := flyTrace(t)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, trace, map[string]float64{"max_altitude": 51}); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Name != "export" || got.Seed != 3 {
		t.Errorf("got name=%q seed=%d", got.Name, got.Seed)
	}
	if got.Steps != len(trace.Samples) || len(got.Samples) != got.Steps {
		t.Errorf("steps=%d samples=%d, want %d", got.Steps, len(got.Samples), len(trace.Samples))
	}
	if math.Abs(got.Duration-2) > 1e-9 {
		t.Errorf("duration = %v", got.Duration)
	}
	if got.Metrics["max_altitude"] != 51 {
		t.Errorf("metrics not exported: %v", got.Metrics)
	}
}

func TestExportJSONFile(t *testing.T) {
	trace := flyTrace(t)
	path := filepath.Join(t.TempDir(), "trace.json")
	if err := ExportJSON(path, trace, nil); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Error("exported file is not valid JSON")
	}
}

func TestWriteCSV(t *testing.T) {
	trace := flyTrace(t)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, trace.Samples); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != len(trace.Samples)+1 {
		t.Errorf("expected %d records, got %d", len(trace.Samples)+1, len(records))
	}
	if records[0][0] != "segment" || records[0][1] != "time" {
		t.Errorf("unexpected header %v", records[0])
	}
}

func TestGroundTrack(t *testing.T) {
	trace := flyTrace(t)
	truth, sensed := GroundTrack(trace.Samples)
	if len(truth) != len(trace.Samples) || len(sensed) != len(trace.Samples) {
		t.Fatal("track length mismatch")
	}
	if truth[0] != (Point{}) {
		t.Errorf("track should start at the origin, got %+v", truth[0])
	}
	last := truth[len(truth)-1]
	if last.Y <= 0 || last.X <= 0 {
		t.Errorf("right turn from north should end north-east, got %+v", last)
	}

	// GPS noise is at most 5e-5 degrees, about 5.6 m.
	for i := range truth {
		if math.Abs(truth[i].Y-sensed[i].Y) > 6 {
			t.Errorf("sample %d: sensed north %v too far from %v", i, sensed[i].Y, truth[i].Y)
		}
	}
}

func TestGroundTrackEmpty(t *testing.T) {
	truth, sensed := GroundTrack(nil)
	if truth != nil || sensed != nil {
		t.Error("expected nil tracks")
	}
	if svg := GroundTrackSVG(nil, 100, 100); svg != "" {
		t.Error("expected empty svg")
	}
}

func TestGroundTrackSVG(t *testing.T) {
	trace := flyTrace(t)
	svg := GroundTrackSVG(trace.Samples, 400, 300)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("malformed svg document")
	}
	if n := strings.Count(svg, "<path"); n != 2 {
		t.Errorf("expected 2 paths, got %d", n)
	}
	if !strings.Contains(svg, `width="400" height="300"`) {
		t.Error("missing dimensions")
	}
	if !strings.Contains(svg, "stroke-dasharray") {
		t.Error("sensed track should be dashed")
	}
}

func TestAltitudeProfileSVG(t *testing.T) {
	trace := flyTrace(t)
	svg := AltitudeProfileSVG(trace.Samples, 200, 100)
	if strings.Count(svg, "<path") != 2 {
		t.Error("expected truth and sensed altitude paths")
	}
}

func TestPlotSVGFlatSeries(t *testing.T) {
	svg := PlotSVG(100, 100, Series{Points: []Point{{0, 5}, {1, 5}}, Stroke: "#fff"})
	if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
		t.Error("flat series produced non-finite coordinates")
	}
}
