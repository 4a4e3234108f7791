package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/flightsim/internal/config"
	"github.com/san-kum/flightsim/internal/export"
	"github.com/san-kum/flightsim/internal/metrics"
	"github.com/san-kum/flightsim/internal/scenario"
	"github.com/san-kum/flightsim/internal/sim"
	"github.com/san-kum/flightsim/internal/storage"
	"github.com/san-kum/flightsim/internal/viz"
	"github.com/spf13/cobra"
)

func runFlight(cmd *cobra.Command, args []string) error {
	cfg, err := loadFlight()
	if err != nil {
		return err
	}
	return flyAndStore(cfg.Scenario())
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenario.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if sweepParam != "" {
		return sweepScenario(sc)
	}
	return flyAndStore(sc)
}

// flyAndStore runs sc with the default metrics, stores the run and prints a
// summary.
func flyAndStore(sc *scenario.Scenario) error {
	ctx, cancel := signalContext()
	defer cancel()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	set := metrics.Default()
	observers := []metrics.Observer{set}

	var exporter *metrics.Exporter
	if metricsOut != "" {
		var err error
		exporter, err = metrics.NewExporter(prometheus.NewRegistry())
		if err != nil {
			return err
		}
		observers = append(observers, exporter)
	}

	logger.Info("flight started",
		slog.String("name", sc.Name),
		slog.Int64("seed", sc.Seed),
		slog.Int("segments", len(sc.Segments)))
	start := time.Now()

	trace, err := scenario.Run(ctx, sc, scenario.Options{Observers: observers, Logger: logger})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	values := set.Values()
	runID, err := st.Save(trace, values)
	if err != nil {
		return err
	}

	if exporter != nil {
		if err := exporter.WriteTextfile(metricsOut); err != nil {
			return err
		}
		logger.Info("metrics written", slog.String("path", metricsOut))
	}

	final, _ := trace.Final()
	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(trace.Samples))

	if len(trace.Segments) > 1 {
		headColor.Println("\nsegments:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  NAME\tSTART\tEND\tSTEPS\tALT\tSPEED\tBATT")
		for _, seg := range trace.Segments {
			s := seg.Final.State
			fmt.Fprintf(w, "  %s\t%.1fs\t%.1fs\t%d\t%.1f\t%.1f\t%.1f%%\n",
				seg.Name, seg.Start, seg.End, seg.Steps, s.Altitude, s.Airspeed, s.Battery)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	headColor.Println("\nfinal:")
	printState("  truth ", final.State)
	printState("  sensor", sim.State(final.Sensors))

	headColor.Println("\nmetrics:")
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-22s %.6f\n", name, values[name])
	}

	headColor.Println("\nwarnings:")
	printWarnings(trace.WarningCounts(), len(trace.Samples))
	return nil
}

func sweepScenario(sc *scenario.Scenario) error {
	ctx, cancel := signalContext()
	defer cancel()

	results, err := scenario.RunSweep(ctx, sc, scenario.Sweep{
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
	}, scenario.Options{Logger: logger})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMAX ALT\tFINAL ALT\tSPEED\tBATT\tWARNINGS\n", sweepParam)
	for _, r := range results {
		total := 0
		for _, n := range r.Warnings {
			total += n
		}
		s := r.Final.State
		fmt.Fprintf(w, "%.4f\t%.2f\t%.2f\t%.2f\t%.1f%%\t%d\n",
			r.ParamValue, r.MaxAltitude, s.Altitude, s.Airspeed, s.Battery, total)
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadFlight()
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", numRuns)
	}

	ctx, cancel := signalContext()
	defer cancel()

	ens := sim.NewEnsemble(numRuns, seedStart,
		sim.WithConfig(cfg.Vehicle),
		sim.WithInitialState(cfg.InitialState),
		sim.WithLogger(logger))

	start := time.Now()
	results, err := ens.Run(ctx, cfg.Duration, cfg.Command, cfg.StepDt)
	if err != nil {
		return err
	}
	logger.Info("ensemble finished",
		slog.Int("runs", numRuns),
		slog.Duration("elapsed", time.Since(start)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSENSED ALT\tSENSED SPEED\tSENSED LAT\tSENSED LON\tWARNINGS")
	var sum, sumSq float64
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%.6f\t%.6f\t%d\n",
			seedStart+int64(i), r.Sensors.Altitude, r.Sensors.Airspeed, r.Sensors.Lat, r.Sensors.Lon, len(r.Warnings))
		sum += r.Sensors.Altitude
		sumSq += r.Sensors.Altitude * r.Sensors.Altitude
	}
	if err := w.Flush(); err != nil {
		return err
	}

	n := float64(len(results))
	mean := sum / n
	spread := math.Sqrt(math.Max(0, sumSq/n-mean*mean))
	fmt.Println()
	printState("truth ", results[0].State)
	fmt.Printf("sensed altitude mean=%.3f std=%.3f\n", mean, spread)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadFlight()
	if err != nil {
		return err
	}

	var observers []metrics.Observer
	var exporter *metrics.Exporter
	if metricsOut != "" {
		exporter, err = metrics.NewExporter(prometheus.NewRegistry())
		if err != nil {
			return err
		}
		observers = append(observers, exporter)
	}

	m, err := viz.NewModel(viz.LiveConfig{
		Seed:    cfg.Seed,
		StepDt:  cfg.StepDt,
		Command: cfg.Command,
		Options: []sim.Option{
			sim.WithConfig(cfg.Vehicle),
			sim.WithInitialState(cfg.InitialState),
		},
		Observers: observers,
		Theme:     theme,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	if exporter != nil {
		return exporter.WriteTextfile(metricsOut)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSEED\tDURATION\tDT\tSTEPS\tWARNINGS")

	for _, run := range runs {
		total := 0
		for _, n := range run.Warnings {
			total += n
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Duration,
			run.StepDt,
			run.Steps,
			total,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	graph, err := viz.PlotChannel(samples, channel, viz.PlotOptions{Width: 80, Height: 12, WithSensors: withSensor})
	if err != nil {
		return err
	}

	headColor.Printf("%s (seed %d)\n\n", meta.Name, meta.Seed)
	fmt.Println(graph)
	return nil
}

// output opens path for writing, treating "-" as stdout.
func output(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func loadTrace(runID string) (*scenario.Trace, *storage.RunMetadata, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("no data to export")
	}
	return &scenario.Trace{
		Name:    meta.Name,
		Seed:    meta.Seed,
		StepDt:  meta.StepDt,
		Samples: samples,
	}, meta, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	trace, _, err := loadTrace(args[0])
	if err != nil {
		return err
	}

	w, err := output(outPath)
	if err != nil {
		return err
	}
	defer w.Close()

	return export.WriteCSV(w, trace.Samples)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	trace, meta, err := loadTrace(args[0])
	if err != nil {
		return err
	}
	if err := export.ExportJSON(outPath, trace, meta.Metrics); err != nil {
		return err
	}
	if outPath != "-" {
		logger.Info("exported", slog.String("path", outPath))
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	trace, _, err := loadTrace(args[0])
	if err != nil {
		return err
	}

	var svg string
	switch svgKind {
	case "track":
		svg = export.GroundTrackSVG(trace.Samples, 800, 800)
	case "altitude":
		svg = export.AltitudeProfileSVG(trace.Samples, 800, 400)
	default:
		return fmt.Errorf("unknown svg kind: %s (available: track, altitude)", svgKind)
	}
	if svg == "" {
		return fmt.Errorf("not enough samples to draw")
	}

	w, err := output(outPath)
	if err != nil {
		return err
	}
	defer w.Close()

	_, err = io.WriteString(w, svg+"\n")
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSEED\tDT\tDURATION\tTHROTTLE\tPITCH\tROLL\tYAW")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.1fs\t%.2f\t%.2f\t%.2f\t%.2f\n",
			name, p.Seed, p.StepDt, p.Duration,
			p.Command.Throttle, p.Command.Pitch, p.Command.Roll, p.Command.Yaw)
	}
	return w.Flush()
}
