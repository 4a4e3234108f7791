package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/flightsim/internal/scenario"
	"github.com/san-kum/flightsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	telemetryFile = "telemetry.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	StepDt    float64            `json:"step_dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics"`
	Warnings  map[string]int     `json:"warnings"`
}

// Save writes a trace and its metric values to a new run directory and
// returns the run id.
func (s *Store) Save(trace *scenario.Trace, metrics map[string]float64) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	duration := 0.0
	if n := len(trace.Samples); n > 0 {
		duration = trace.Samples[n-1].Time
	}

	warnings := make(map[string]int)
	for w, n := range trace.WarningCounts() {
		warnings[string(w)] = n
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      trace.Name,
		Timestamp: time.Now(),
		Seed:      trace.Seed,
		StepDt:    trace.StepDt,
		Duration:  duration,
		Steps:     len(trace.Samples),
		Metrics:   metrics,
		Warnings:  warnings,
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTelemetry(filepath.Join(runDir, telemetryFile), trace.Samples); err != nil {
		return "", err
	}

	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeTelemetry(path string, samples []scenario.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header()); err != nil {
		return err
	}
	for _, sample := range samples {
		if err := w.Write(Row(sample)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every stored run, oldest first. Directories without
// readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// TelemetryPath is where a run's CSV lives.
func (s *Store) TelemetryPath(runID string) string {
	return filepath.Join(s.baseDir, runID, telemetryFile)
}

// LoadSamples reads a run's telemetry back into samples.
func (s *Store) LoadSamples(runID string) ([]scenario.Sample, error) {
	file, err := os.Open(s.TelemetryPath(runID))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []scenario.Sample{}, nil
	}

	samples := make([]scenario.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		sample, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", telemetryFile, i+2, err)
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

// column binds a CSV column to a float field of a sample.
type column struct {
	name  string
	field func(*scenario.Sample) *float64
}

var columns = []column{
	{"time", func(s *scenario.Sample) *float64 { return &s.Time }},
	{"cmd_throttle", func(s *scenario.Sample) *float64 { return &s.Command.Throttle }},
	{"cmd_pitch", func(s *scenario.Sample) *float64 { return &s.Command.Pitch }},
	{"cmd_roll", func(s *scenario.Sample) *float64 { return &s.Command.Roll }},
	{"cmd_yaw", func(s *scenario.Sample) *float64 { return &s.Command.Yaw }},
	{"pitch", func(s *scenario.Sample) *float64 { return &s.Result.State.Pitch }},
	{"roll", func(s *scenario.Sample) *float64 { return &s.Result.State.Roll }},
	{"yaw", func(s *scenario.Sample) *float64 { return &s.Result.State.Yaw }},
	{"airspeed", func(s *scenario.Sample) *float64 { return &s.Result.State.Airspeed }},
	{"altitude", func(s *scenario.Sample) *float64 { return &s.Result.State.Altitude }},
	{"battery", func(s *scenario.Sample) *float64 { return &s.Result.State.Battery }},
	{"lat", func(s *scenario.Sample) *float64 { return &s.Result.State.Lat }},
	{"lon", func(s *scenario.Sample) *float64 { return &s.Result.State.Lon }},
	{"sensor_pitch", func(s *scenario.Sample) *float64 { return &s.Result.Sensors.Pitch }},
	{"sensor_roll", func(s *scenario.Sample) *float64 { return &s.Result.Sensors.Roll }},
	{"sensor_yaw", func(s *scenario.Sample) *float64 { return &s.Result.Sensors.Yaw }},
	{"sensor_airspeed", func(s *scenario.Sample) *float64 { return &s.Result.Sensors.Airspeed }},
	{"sensor_altitude", func(s *scenario.Sample) *float64 { return &s.Result.Sensors.Altitude }},
	{"sensor_battery", func(s *scenario.Sample) *float64 { return &s.Result.Sensors.Battery }},
	{"sensor_lat", func(s *scenario.Sample) *float64 { return &s.Result.Sensors.Lat }},
	{"sensor_lon", func(s *scenario.Sample) *float64 { return &s.Result.Sensors.Lon }},
}

// Header is the telemetry CSV header: segment, the float columns, then the
// step's warnings joined by "|".
func Header() []string {
	h := []string{"segment"}
	for _, c := range columns {
		h = append(h, c.name)
	}
	return append(h, "warnings")
}

func Row(sample scenario.Sample) []string {
	row := make([]string, 0, len(columns)+2)
	row = append(row, strconv.Itoa(sample.Segment))
	for _, c := range columns {
		row = append(row, strconv.FormatFloat(*c.field(&sample), 'f', -1, 64))
	}

	tags := make([]string, len(sample.Result.Warnings))
	for i, w := range sample.Result.Warnings {
		tags[i] = string(w)
	}
	return append(row, strings.Join(tags, "|"))
}

func parseRow(record []string) (scenario.Sample, error) {
	var sample scenario.Sample
	if len(record) != len(columns)+2 {
		return sample, fmt.Errorf("expected %d fields, got %d", len(columns)+2, len(record))
	}

	seg, err := strconv.Atoi(record[0])
	if err != nil {
		return sample, fmt.Errorf("segment: %w", err)
	}
	sample.Segment = seg

	for i, c := range columns {
		v, err := strconv.ParseFloat(record[i+1], 64)
		if err != nil {
			return sample, fmt.Errorf("%s: %w", c.name, err)
		}
		*c.field(&sample) = v
	}

	if tags := record[len(record)-1]; tags != "" {
		for _, tag := range strings.Split(tags, "|") {
			sample.Result.Warnings = append(sample.Result.Warnings, sim.Warning(tag))
		}
	}

	return sample, nil
}
