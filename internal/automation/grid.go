package automation

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math"

	"github.com/san-kum/tgisim/internal/config"
)

// GridSearch evaluates every combination of parameter values and keeps the
// one minimising a metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("grid: %d params but %d ranges", len(params), len(ranges))
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Points expands the grid in row-major order.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.expand(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) expand(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, maps.Clone(current))
		return
	}
	name := g.paramNames[depth]
	for _, v := range g.ranges[depth] {
		current[name] = v
		g.expand(depth+1, current, out)
	}
	delete(current, name)
}

func (g *GridSearch) Search(ctx context.Context, base *config.Scenario, metric string, limit int, logger *slog.Logger) (map[string]float64, float64, error) {
	points := g.Points()
	if len(points) == 0 {
		return nil, 0, fmt.Errorf("grid: empty")
	}

	scenarios := make([]*config.Scenario, len(points))
	for i, p := range points {
		sc := base.Clone()
		for k, v := range p {
			if err := sc.SetParam(k, v); err != nil {
				return nil, 0, err
			}
		}
		sc.Name = fmt.Sprintf("%s[%d]", base.Name, i)
		scenarios[i] = sc
	}

	outcomes, err := RunScenarios(ctx, scenarios, limit, logger)
	if err != nil {
		return nil, 0, err
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	for i, o := range outcomes {
		val, ok := o.Result.Metrics()[metric]
		if !ok {
			return nil, 0, fmt.Errorf("unknown metric: %s", metric)
		}
		if val < best {
			best = val
			bestParams = points[i]
		}
	}
	return bestParams, best, nil
}
