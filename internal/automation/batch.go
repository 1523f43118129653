package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/san-kum/tgisim/internal/config"
	"github.com/san-kum/tgisim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Batch is a named list of scenarios run side by side.
type Batch struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Entries     []BatchEntry `yaml:"scenarios"`
}

// BatchEntry references a preset or carries an inline scenario. Set
// overrides are applied last.
type BatchEntry struct {
	Preset   string             `yaml:"preset,omitempty"`
	Name     string             `yaml:"name,omitempty"`
	Set      map[string]float64 `yaml:"set,omitempty"`
	Scenario yaml.Node          `yaml:"scenario,omitempty"`
}

// Outcome pairs a resolved scenario with its result.
type Outcome struct {
	Scenario *config.Scenario
	Result   *sim.Result
}

func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(batch.Entries) == 0 {
		return nil, fmt.Errorf("batch %s has no scenarios", path)
	}
	return &batch, nil
}

// Resolve turns an entry into a scenario. Inline scenarios start from
// config.DefaultScenario, so omitted fields keep their defaults.
func (e BatchEntry) Resolve() (*config.Scenario, error) {
	var sc *config.Scenario
	switch {
	case e.Preset != "":
		sc = config.GetPreset(e.Preset)
		if sc == nil {
			return nil, fmt.Errorf("unknown preset: %s", e.Preset)
		}
	case e.Scenario.Kind != 0:
		sc = config.DefaultScenario()
		if err := e.Scenario.Decode(sc); err != nil {
			return nil, fmt.Errorf("decode scenario: %w", err)
		}
	default:
		return nil, fmt.Errorf("entry needs a preset or a scenario")
	}

	if e.Name != "" {
		sc.Name = e.Name
	}
	for k, v := range e.Set {
		if err := sc.SetParam(k, v); err != nil {
			return nil, fmt.Errorf("%s: %w", sc.Name, err)
		}
	}
	return sc, nil
}

func (b *Batch) Scenarios() ([]*config.Scenario, error) {
	out := make([]*config.Scenario, 0, len(b.Entries))
	for i, e := range b.Entries {
		sc, err := e.Resolve()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		out = append(out, sc)
	}
	return out, nil
}

// RunScenarios runs every scenario concurrently, at most limit at a time,
// and returns outcomes in input order.
func RunScenarios(ctx context.Context, scenarios []*config.Scenario, limit int, logger *slog.Logger) ([]Outcome, error) {
	if logger == nil {
		logger = slog.Default()
	}

	jobs := make([]sim.Job, len(scenarios))
	for i, sc := range scenarios {
		s, cfg, err := sc.Simulator()
		if err != nil {
			return nil, err
		}
		s.WithLogger(logger.With("scenario", sc.Name))
		jobs[i] = sim.Job{Name: sc.Name, Sim: s, Config: cfg}
	}

	results, err := sim.RunBatch(ctx, jobs, limit)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(results))
	for i := range results {
		outcomes[i] = Outcome{Scenario: scenarios[i], Result: results[i]}
	}
	return outcomes, nil
}

func RunBatch(ctx context.Context, batch *Batch, limit int, logger *slog.Logger) ([]Outcome, error) {
	scenarios, err := batch.Scenarios()
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", batch.Name, err)
	}
	return RunScenarios(ctx, scenarios, limit, logger)
}
