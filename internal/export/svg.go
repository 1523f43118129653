package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/tgisim/internal/sim"
	"gonum.org/v1/gonum/floats"
)

type point struct{ X, Y float64 }

// pathD scales points into a width x height box with 10% padding and
// returns an SVG path.
func pathD(points []point, minX, maxX, minY, maxY float64, width, height int) string {
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString("M")
	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	return sb.String()
}

// WriteSVG draws the diameter trajectory, shading the windows in which
// treatment was active.
func WriteSVG(w io.Writer, result *sim.Result, width, height int) error {
	if result.Len() < 2 {
		return fmt.Errorf("export: need at least 2 samples, got %d", result.Len())
	}

	times := result.Times()
	diameters := result.Diameters()
	active := result.Active()

	minX, maxX := times[0], times[len(times)-1]
	points := make([]point, len(times))
	for i := range times {
		points[i] = point{times[i], diameters[i]}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	// Each sample's flag covers the window ending at its time.
	scale := float64(width) / (maxX - minX)
	sb.WriteString(`<g fill="#ff5f5f" fill-opacity="0.15">` + "\n")
	for i := 1; i < len(times); i++ {
		if !active[i] {
			continue
		}
		j := i
		for j+1 < len(times) && active[j+1] {
			j++
		}
		x0 := (times[i-1] - minX) * scale
		x1 := (times[j] - minX) * scale
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="0" width="%.1f" height="%d"/>`+"\n", x0, x1-x0, height))
		i = j
	}
	sb.WriteString("</g>\n")

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="#00ff00" stroke-width="1.5" d="%s"/>`+"\n",
		pathD(points, minX, maxX, floats.Min(diameters), floats.Max(diameters), width, height)))
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
