package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/tgisim/internal/metrics"
	"github.com/san-kum/tgisim/internal/sim"
)

const (
	DefaultChartWidth  = 80
	DefaultChartHeight = 10
)

// Chart plots a series with an optional horizontal reference line at ref.
// Pass a NaN ref for no line.
func Chart(series []float64, caption string, ref float64, width, height int) string {
	if len(series) == 0 {
		return ""
	}
	if width <= 0 {
		width = DefaultChartWidth
	}
	if height <= 0 {
		height = DefaultChartHeight
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	}
	if math.IsNaN(ref) {
		opts = append(opts, asciigraph.SeriesColors(asciigraph.Green))
		return asciigraph.Plot(series, opts...)
	}

	line := make([]float64, len(series))
	for i := range line {
		line[i] = ref
	}
	opts = append(opts, asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red))
	return asciigraph.PlotMany([][]float64{series, line}, opts...)
}

// DiameterChart plots tumor diameter against the initial diameter.
func DiameterChart(result *sim.Result, width, height int) string {
	d := result.Diameters()
	if len(d) == 0 {
		return ""
	}
	return Chart(d, "tumor diameter [cm] (red: initial)", d[0], width, height)
}

// ExposureChart plots exposure against the toxicity threshold.
func ExposureChart(result *sim.Result, width, height int) string {
	return Chart(result.Exposures(), "exposure [mg/L] (red: toxicity threshold)", metrics.DefaultToxicThreshold, width, height)
}
