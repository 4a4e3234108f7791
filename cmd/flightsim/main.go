package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/san-kum/flightsim/internal/config"
	"github.com/san-kum/flightsim/internal/logging"
	"github.com/san-kum/flightsim/internal/observability"
	"github.com/san-kum/flightsim/internal/sim"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	settingsFile string
	dataDir      string
	logLevel     string
	logFormat    string
	noColor      bool
	tracing      bool

	// Flight selection
	configFile string
	preset     string
	pick       bool
	seed       int64
	stepDt     float64
	duration   float64
	throttle   float64
	pitch      float64
	roll       float64
	yaw        float64

	metricsOut string
	outPath    string
	channel    string
	withSensor bool
	svgKind    string
	theme      string

	numRuns   int
	seedStart int64

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	logger          = logging.NewFromEnv()
	settings        = viper.New()
	shutdownTracing func(context.Context) error

	cautionColor = color.New(color.FgYellow)
	alertColor   = color.New(color.FgRed, color.Bold)
	okColor      = color.New(color.FgGreen)
	headColor    = color.New(color.FgCyan, color.Bold)
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "flightsim",
		Short: "discrete-time flight control simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (default is $HOME/.flightsim/settings.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".flightsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&tracing, "trace", false, "emit OpenTelemetry spans (see FLIGHTSIM_TRACING_*)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "fly one command for a duration and store the run",
		Args:  cobra.NoArgs,
		RunE:  runFlight,
	}
	addFlightFlags(runCmd)
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write prometheus textfile metrics to path")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "fly a YAML scenario and store the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write prometheus textfile metrics to path")
	scenarioCmd.Flags().StringVar(&sweepParam, "sweep", "", "vehicle parameter to sweep instead of storing a run")
	scenarioCmd.Flags().Float64Var(&sweepMin, "sweep-min", 0, "sweep start value")
	scenarioCmd.Flags().Float64Var(&sweepMax, "sweep-max", 1, "sweep end value")
	scenarioCmd.Flags().IntVar(&sweepSteps, "sweep-steps", 5, "number of sweep values")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "fly the same flight with consecutive seeds in parallel",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addFlightFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of engines")
	ensembleCmd.Flags().Int64Var(&seedStart, "seed-start", 0, "seed of the first engine")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "fly interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addFlightFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "cockpit", "color theme")
	liveCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write prometheus textfile metrics on exit")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a telemetry channel of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&channel, "channel", "altitude", "channel to plot")
	plotCmd.Flags().BoolVar(&withSensor, "sensors", false, "overlay sensor readings")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run telemetry as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "output", "o", "-", "output file (- for stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "output", "o", "-", "output file (- for stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export ground track or altitude profile as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "output", "o", "-", "output file (- for stdout)")
	exportSVGCmd.Flags().StringVar(&svgKind, "kind", "track", "plot kind (track, altitude)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list flight presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, scenarioCmd, ensembleCmd, liveCmd, listCmd, plotCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd)

	err := rootCmd.Execute()
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func addFlightFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "flight file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset flight")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose a preset interactively")
	cmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "noise seed")
	cmd.Flags().Float64Var(&stepDt, "dt", sim.DefaultStepDt, "timestep in seconds")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().Float64Var(&throttle, "throttle", 0.5, "throttle command [0, 1]")
	cmd.Flags().Float64Var(&pitch, "pitch", 0, "pitch command [-1, 1]")
	cmd.Flags().Float64Var(&roll, "roll", 0, "roll command [-1, 1]")
	cmd.Flags().Float64Var(&yaw, "yaw", 0, "yaw command [-1, 1]")
}

// initConfig layers the settings file and FLIGHTSIM_* environment under the
// command line flags, then builds the logger.
func initConfig(cmd *cobra.Command) error {
	v := settings
	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
	} else {
		v.AddConfigPath("$HOME/.flightsim")
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("settings")
	}
	v.SetEnvPrefix("flightsim")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if settingsFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read settings: %w", err)
		}
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Flags left at their defaults pick up the settings file or environment.
	dataDir = v.GetString("data")
	logLevel = v.GetString("log-level")
	logFormat = v.GetString("log-format")
	noColor = v.GetBool("no-color")
	if cmd.Flags().Lookup("preset") != nil {
		preset = v.GetString("preset")
		configFile = v.GetString("config")
		pick = v.GetBool("pick")
	}

	color.NoColor = color.NoColor || noColor
	logger = logging.New(logging.Config{Level: logLevel, Format: logFormat})
	slog.SetDefault(logger)

	tcfg := observability.TracingConfigFromEnv()
	tcfg.Enabled = tcfg.Enabled || v.GetBool("trace")
	shutdown, err := observability.InitTracing(cmd.Context(), tcfg, logger)
	if err != nil {
		return err
	}
	shutdownTracing = shutdown

	logger.Debug("configuration loaded",
		slog.String("settings", v.ConfigFileUsed()),
		slog.String("data", dataDir))
	return nil
}

// loadFlight resolves the flight from, in increasing precedence: defaults,
// preset, flight file, explicitly set flags and environment.
func loadFlight() (*config.Config, error) {
	cfg := config.DefaultConfig()

	if pick {
		name, err := pickPreset()
		if err != nil {
			return nil, err
		}
		preset = name
	}

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if settings.IsSet("seed") {
		cfg.Seed = settings.GetInt64("seed")
	}
	overrides := map[string]*float64{
		"dt":       &cfg.StepDt,
		"time":     &cfg.Duration,
		"throttle": &cfg.Command.Throttle,
		"pitch":    &cfg.Command.Pitch,
		"roll":     &cfg.Command.Roll,
		"yaw":      &cfg.Command.Yaw,
	}
	for name, field := range overrides {
		if settings.IsSet(name) {
			*field = settings.GetFloat64(name)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printWarnings(counts map[sim.Warning]int, steps int) {
	if len(counts) == 0 {
		okColor.Println("  none")
		return
	}
	for _, w := range sim.AllWarnings {
		n, ok := counts[w]
		if !ok {
			continue
		}
		c := cautionColor
		switch w {
		case sim.WarnStallRisk, sim.WarnOverspeedRisk, sim.WarnBatteryLow:
			c = alertColor
		}
		c.Printf("  %-22s %d/%d steps\n", w, n, steps)
	}
}

func printState(label string, s sim.State) {
	fmt.Printf("%s pitch=%.2f° roll=%.2f° heading=%.2f° airspeed=%.2f altitude=%.2f battery=%.2f%% lat=%.6f lon=%.6f\n",
		label, s.Pitch, s.Roll, s.Yaw, s.Airspeed, s.Altitude, s.Battery, s.Lat, s.Lon)
}

// pickPreset prompts for a preset on an interactive terminal.
func pickPreset() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("--pick needs an interactive terminal")
	}

	names := config.ListPresets()
	var selected string
	prompt := &survey.Select{
		Message: "Select flight:",
		Options: names,
		Description: func(value string, index int) string {
			return config.Presets[value].Description
		},
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}
	return selected, nil
}
