package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/tgisim/internal/config"
	"gonum.org/v1/gonum/floats"
)

// Sweep varies one named parameter of a base scenario.
type Sweep struct {
	Base   *config.Scenario
	Param  string
	Values []float64
}

type SweepRow struct {
	Value         float64
	FinalDiameter float64
	Nadir         float64
	Cmax          float64
	AUC           float64
	Metrics       map[string]float64
}

// Linspace returns n evenly spaced values from min to max inclusive.
func Linspace(min, max float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{min}
	}
	return floats.Span(make([]float64, n), min, max)
}

func RunSweep(ctx context.Context, sweep *Sweep, limit int, logger *slog.Logger) ([]SweepRow, error) {
	if len(sweep.Values) == 0 {
		return nil, fmt.Errorf("sweep over %s has no values", sweep.Param)
	}

	scenarios := make([]*config.Scenario, len(sweep.Values))
	for i, v := range sweep.Values {
		sc := sweep.Base.Clone()
		if err := sc.SetParam(sweep.Param, v); err != nil {
			return nil, err
		}
		sc.Name = fmt.Sprintf("%s[%s=%g]", sweep.Base.Name, sweep.Param, v)
		scenarios[i] = sc
	}

	outcomes, err := RunScenarios(ctx, scenarios, limit, logger)
	if err != nil {
		return nil, err
	}

	rows := make([]SweepRow, len(outcomes))
	for i, o := range outcomes {
		m := o.Result.Metrics()
		rows[i] = SweepRow{
			Value:         sweep.Values[i],
			FinalDiameter: o.Result.Final().Diameter,
			Nadir:         m["nadir"],
			Cmax:          m["cmax"],
			AUC:           m["auc"],
			Metrics:       m,
		}
	}
	return rows, nil
}

// Best returns the row minimising the named metric.
func Best(rows []SweepRow, metric string) (SweepRow, error) {
	best := math.Inf(1)
	idx := -1
	for i, r := range rows {
		v, ok := r.Metrics[metric]
		if !ok {
			return SweepRow{}, fmt.Errorf("unknown metric: %s", metric)
		}
		if v < best {
			best = v
			idx = i
		}
	}
	if idx < 0 {
		return SweepRow{}, fmt.Errorf("no rows")
	}
	return rows[idx], nil
}
