package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/flightsim/internal/scenario"
)

type ExportData struct {
	Name     string                   `json:"name"`
	Seed     int64                    `json:"seed"`
	StepDt   float64                  `json:"step_dt"`
	Duration float64                  `json:"duration"`
	Steps    int                      `json:"steps"`
	Segments []scenario.SegmentResult `json:"segments,omitempty"`
	Samples  []scenario.Sample        `json:"samples"`
	Metrics  map[string]float64       `json:"metrics"`
}

func NewExportData(trace *scenario.Trace, metrics map[string]float64) ExportData {
	duration := 0.0
	if n := len(trace.Samples); n > 0 {
		duration = trace.Samples[n-1].Time
	}
	return ExportData{
		Name:     trace.Name,
		Seed:     trace.Seed,
		StepDt:   trace.StepDt,
		Duration: duration,
		Steps:    len(trace.Samples),
		Segments: trace.Segments,
		Samples:  trace.Samples,
		Metrics:  metrics,
	}
}

func WriteJSON(w io.Writer, trace *scenario.Trace, metrics map[string]float64) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(trace, metrics))
}

// ExportJSON writes the trace to path, or to stdout when path is "-".
func ExportJSON(path string, trace *scenario.Trace, metrics map[string]float64) error {
	if path == "-" {
		return WriteJSON(os.Stdout, trace, metrics)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, trace, metrics)
}
