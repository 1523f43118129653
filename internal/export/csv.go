// Package export writes finished runs to CSV, JSON or SVG. Nothing written
// here is meant to be read back.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/san-kum/tgisim/internal/sim"
)

var csvHeader = []string{"time", "diameter", "exposure", "clock", "active", "gut", "central", "peripheral"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes one row per sample.
func WriteCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	row := make([]string, len(csvHeader))
	for _, s := range result.Samples() {
		row[0] = formatFloat(s.Time)
		row[1] = formatFloat(s.Diameter)
		row[2] = formatFloat(s.Exposure)
		row[3] = formatFloat(s.Clock)
		row[4] = strconv.FormatBool(s.Active)
		row[5] = formatFloat(s.Gut)
		row[6] = formatFloat(s.Central)
		row[7] = formatFloat(s.Peripheral)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteDosesCSV writes the administered boluses.
func WriteDosesCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"scheduled", "time", "amount", "gut_before", "gut_after"}); err != nil {
		return err
	}
	for _, d := range result.Doses() {
		rec := []string{
			formatFloat(d.Scheduled),
			formatFloat(d.Time),
			formatFloat(d.Amount),
			formatFloat(d.GutBefore),
			formatFloat(d.GutAfter),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
