package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/san-kum/tgisim/internal/sim"
)

type metricLine struct {
	key, label, format string
}

var summaryLines = []metricLine{
	{"final_diameter", "final diameter", "%.4f cm"},
	{"relative_change", "relative change", "%+.1f%%"},
	{"nadir", "nadir", "%.4f cm"},
	{"time_to_nadir", "time to nadir", "%.1f d"},
	{"cmax", "Cmax", "%.4g mg/L"},
	{"auc", "AUC", "%.4g mg·d/L"},
	{"time_toxic", "time above tox.", "%.1f d"},
	{"time_on_treatment", "time on treatment", "%.1f d"},
}

func formatMetric(l metricLine, v float64) string {
	if l.key == "relative_change" {
		v *= 100
	}
	return fmt.Sprintf(l.format, v)
}

// Summary renders the metrics of one run as a panel. Metrics absent from
// the result are skipped.
func Summary(name string, result *sim.Result) string {
	m := result.Metrics()

	var s strings.Builder
	s.WriteString(Title.Render(name) + "\n\n")
	s.WriteString(MetricLabel.Render("samples") + MetricValue.Render(fmt.Sprint(result.Len())) + "\n")
	s.WriteString(MetricLabel.Render("doses") + MetricValue.Render(fmt.Sprint(len(result.Doses()))) + "\n")
	for _, l := range summaryLines {
		v, ok := m[l.key]
		if !ok {
			continue
		}
		s.WriteString(MetricLabel.Render(l.label) + MetricValue.Render(formatMetric(l, v)) + "\n")
	}
	return GlassPanel.Render(strings.TrimRight(s.String(), "\n"))
}

type CompareRow struct {
	Name   string
	Result *sim.Result
}

// CompareTable renders one row per run with the headline metrics.
func CompareTable(rows []CompareRow) string {
	headers := []string{"scenario", "doses", "final", "nadir", "Cmax", "AUC", "tox days", "clock"}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Subtle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Title.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, r := range rows {
		m := r.Result.Metrics()
		t.Row(
			r.Name,
			fmt.Sprint(len(r.Result.Doses())),
			fmt.Sprintf("%.3f", r.Result.Final().Diameter),
			fmt.Sprintf("%.3f", m["nadir"]),
			fmt.Sprintf("%.4g", m["cmax"]),
			fmt.Sprintf("%.4g", m["auc"]),
			fmt.Sprintf("%.1f", m["time_toxic"]),
			fmt.Sprintf("%.1f", r.Result.Final().Clock),
		)
	}
	return t.String()
}
