package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/flightsim/internal/scenario"
)

const metersPerDegree = 111_000.0

type Point struct{ X, Y float64 }

// Series is one polyline in a plot.
type Series struct {
	Points []Point
	Stroke string
	Dashed bool
}

// GroundTrack projects truth and sensed positions to metres east/north of
// the first truth sample.
func GroundTrack(samples []scenario.Sample) (truth, sensed []Point) {
	if len(samples) == 0 {
		return nil, nil
	}
	lat0 := samples[0].Result.State.Lat
	lon0 := samples[0].Result.State.Lon
	cosLat := math.Cos(lat0 * math.Pi / 180)

	project := func(lat, lon float64) Point {
		return Point{
			X: (lon - lon0) * metersPerDegree * cosLat,
			Y: (lat - lat0) * metersPerDegree,
		}
	}

	truth = make([]Point, len(samples))
	sensed = make([]Point, len(samples))
	for i, s := range samples {
		truth[i] = project(s.Result.State.Lat, s.Result.State.Lon)
		sensed[i] = project(s.Result.Sensors.Lat, s.Result.Sensors.Lon)
	}
	return truth, sensed
}

// GroundTrackSVG plots the truth track solid and the GPS track dashed.
func GroundTrackSVG(samples []scenario.Sample, width, height int) string {
	truth, sensed := GroundTrack(samples)
	return PlotSVG(width, height,
		Series{Points: sensed, Stroke: "#ff8800", Dashed: true},
		Series{Points: truth, Stroke: "#00ff00"},
	)
}

// AltitudeProfileSVG plots truth and sensed altitude against time.
func AltitudeProfileSVG(samples []scenario.Sample, width, height int) string {
	truth := make([]Point, len(samples))
	sensed := make([]Point, len(samples))
	for i, s := range samples {
		truth[i] = Point{X: s.Time, Y: s.Result.State.Altitude}
		sensed[i] = Point{X: s.Time, Y: s.Result.Sensors.Altitude}
	}
	return PlotSVG(width, height,
		Series{Points: sensed, Stroke: "#ff8800", Dashed: true},
		Series{Points: truth, Stroke: "#00aaff"},
	)
}

// PlotSVG draws every series on shared axes. Series with fewer than two
// points are skipped; if none remain the result is empty.
func PlotSVG(width, height int, series ...Series) string {
	first := true
	var minX, maxX, minY, maxY float64
	for _, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		for _, p := range s.Points {
			if first {
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				first = false
				continue
			}
			minX = math.Min(minX, p.X)
			maxX = math.Max(maxX, p.X)
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
		}
	}
	if first {
		return ""
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		dash := ""
		if s.Dashed {
			dash = ` stroke-dasharray="4 3"`
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5"%s d="M`, s.Stroke, dash))
		for i, p := range s.Points {
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)

			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
