package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/tgisim/internal/dosing"
	"github.com/san-kum/tgisim/internal/dynamo"
	"github.com/san-kum/tgisim/internal/pkpd"
)

// Simulator drives the dosed PK/PD model through time. A Simulator may
// start many runs, one after another; each Run owns its state exclusively.
type Simulator struct {
	model      *pkpd.TGI
	schedule   *dosing.Schedule
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	logger     *slog.Logger
}

func New(model *pkpd.TGI, schedule *dosing.Schedule, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		model:      model,
		schedule:   schedule,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
		logger:     slog.Default(),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) WithLogger(l *slog.Logger) *Simulator {
	if l != nil {
		s.logger = l
	}
	return s
}

func (s *Simulator) Model() *pkpd.TGI           { return s.model }
func (s *Simulator) Schedule() *dosing.Schedule { return s.schedule }

// Run integrates from t=0 to cfg.Duration. On failure the partial result
// is returned together with the error.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	run, err := s.Start(cfg)
	if err != nil {
		return nil, err
	}

	for !run.Done() {
		select {
		case <-ctx.Done():
			return run.Result(), fmt.Errorf("run canceled at t=%.4f: %w", run.Time(), ctx.Err())
		default:
		}

		if err := run.Step(); err != nil {
			s.logger.Error("simulation failed", "t", run.Time(), "step", run.Index(), "err", err)
			return run.Result(), err
		}
	}

	result := run.Result()
	final := result.Final()
	s.logger.Info("simulation complete",
		"steps", run.Index(),
		"doses", len(result.doses),
		"diameter", final.Diameter,
		"exposure", final.Exposure,
	)
	return result, nil
}

// Start validates cfg and returns a run positioned at t=0.
func (s *Simulator) Start(cfg Config) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s.model == nil || s.schedule == nil || s.integrator == nil {
		return nil, fmt.Errorf("simulator not set up: model, schedule and integrator are required")
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	steps := cfg.Steps()
	capacity := steps
	if cfg.MaxSteps > 0 && cfg.MaxSteps < capacity {
		capacity = cfg.MaxSteps
	}
	r := &Run{
		sim:    s,
		cfg:    cfg,
		steps:  steps,
		x:      s.model.InitialState(cfg.InitialDiameter),
		cursor: s.schedule.Cursor(),
		result: newResult(min(capacity, preallocSamples) + 1),
	}
	r.record(0, false)
	return r, nil
}

// Run is a single in-progress simulation.
type Run struct {
	sim    *Simulator
	cfg    Config
	steps  int
	i      int
	x      dynamo.State
	cursor *dosing.Cursor
	result *Result
	err    error
}

func (r *Run) Done() bool { return r.i >= r.steps || r.err != nil }

// Index is the number of windows completed.
func (r *Run) Index() int { return r.i }

func (r *Run) Steps() int { return r.steps }

// Time is the start of the next window, or Duration once the run is done.
func (r *Run) Time() float64 { return r.windowEnd(r.i) }

func (r *Run) windowEnd(i int) float64 {
	if i >= r.steps {
		return r.cfg.Duration
	}
	return float64(i) * r.cfg.Dt
}

func (r *Run) Last() dynamo.Sample { return r.result.Final() }

// Step advances one reporting window: administer due doses, sample the
// active flag, integrate, record.
func (r *Run) Step() error {
	if r.err != nil {
		return r.err
	}
	if r.i >= r.steps {
		return nil
	}
	if r.cfg.MaxSteps > 0 && r.i >= r.cfg.MaxSteps {
		return r.fail(dynamo.ErrStepBudget)
	}

	s := r.sim
	t := r.Time()

	for {
		due, ok := r.cursor.Next(t, r.cfg.DoseTolerance)
		if !ok {
			break
		}
		ev := DoseEvent{
			Scheduled: due,
			Time:      t,
			Amount:    s.schedule.Dose(),
			GutBefore: r.x[pkpd.Gut],
		}
		r.x[pkpd.Gut] += ev.Amount
		ev.GutAfter = r.x[pkpd.Gut]
		r.result.doses = append(r.result.doses, ev)
		s.logger.Debug("dose administered", "t", t, "scheduled", due, "amount", ev.Amount, "gut", ev.GutAfter)
	}

	active := s.schedule.Active(t)

	next, err := s.integrator.Integrate(s.model, r.x, active, t, r.windowEnd(r.i+1))
	if err != nil {
		return r.fail(err)
	}

	r.x = next
	r.i++
	r.record(r.Time(), active)
	return nil
}

func (r *Run) fail(err error) error {
	r.err = &dynamo.SimulationError{
		Step:    r.i,
		Time:    r.Time(),
		State:   r.x.Clone(),
		Wrapped: err,
	}
	return r.err
}

func (r *Run) record(t float64, active bool) {
	m := r.sim.model
	sample := dynamo.Sample{
		Time:       t,
		Gut:        r.x[pkpd.Gut],
		Central:    r.x[pkpd.Central],
		Peripheral: r.x[pkpd.Peripheral],
		Diameter:   r.x[pkpd.Diameter],
		Exposure:   m.Exposure(r.x),
		Clock:      r.x[pkpd.Clock],
		Active:     active,
	}
	r.result.samples = append(r.result.samples, sample)

	for _, mt := range r.sim.metrics {
		mt.Observe(sample)
	}
	for _, obs := range r.sim.observers {
		obs.OnSample(sample)
	}
}

// Result returns the samples recorded so far with metric values filled in.
func (r *Run) Result() *Result {
	for _, m := range r.sim.metrics {
		r.result.metrics[m.Name()] = m.Value()
	}
	return r.result
}
