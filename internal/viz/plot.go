package viz

import (
	"fmt"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/flightsim/internal/scenario"
	"github.com/san-kum/flightsim/internal/sim"
)

var channels = map[string]func(sim.State) float64{
	"pitch":    func(s sim.State) float64 { return s.Pitch },
	"roll":     func(s sim.State) float64 { return s.Roll },
	"yaw":      func(s sim.State) float64 { return s.Yaw },
	"airspeed": func(s sim.State) float64 { return s.Airspeed },
	"altitude": func(s sim.State) float64 { return s.Altitude },
	"battery":  func(s sim.State) float64 { return s.Battery },
	"lat":      func(s sim.State) float64 { return s.Lat },
	"lon":      func(s sim.State) float64 { return s.Lon },
}

// ChannelNames lists the plottable channels.
func ChannelNames() []string {
	names := make([]string, 0, len(channels))
	for name := range channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ChannelSeries extracts the truth and sensed values of one channel.
func ChannelSeries(samples []scenario.Sample, channel string) (truth, sensed []float64, err error) {
	get, ok := channels[channel]
	if !ok {
		return nil, nil, fmt.Errorf("unknown channel: %s", channel)
	}
	truth = make([]float64, len(samples))
	sensed = make([]float64, len(samples))
	for i, s := range samples {
		truth[i] = get(s.Result.State)
		sensed[i] = get(sim.State(s.Result.Sensors))
	}
	return truth, sensed, nil
}

type PlotOptions struct {
	Width, Height int
	// WithSensors overlays the sensed series in a second color.
	WithSensors bool
}

// PlotChannel draws one channel of a recorded flight.
func PlotChannel(samples []scenario.Sample, channel string, opts PlotOptions) (string, error) {
	if len(samples) == 0 {
		return "", fmt.Errorf("no samples to plot")
	}
	truth, sensed, err := ChannelSeries(samples, channel)
	if err != nil {
		return "", err
	}

	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 12
	}

	caption := fmt.Sprintf("%s (%.1fs)", channel, samples[len(samples)-1].Time)
	if !opts.WithSensors {
		return asciigraph.Plot(truth,
			asciigraph.Height(opts.Height),
			asciigraph.Width(opts.Width),
			asciigraph.Caption(caption),
		), nil
	}

	return asciigraph.PlotMany([][]float64{truth, sensed},
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption+" truth/sensed"),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.DarkOrange),
	), nil
}
