package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/tgisim/internal/dosing"
	"github.com/san-kum/tgisim/internal/dynamo"
	"github.com/san-kum/tgisim/internal/integrators"
	"github.com/san-kum/tgisim/internal/pkpd"
)

func newSim(t *testing.T, p pkpd.Params, schedule *dosing.Schedule) *Simulator {
	t.Helper()
	model, err := pkpd.NewTGI(p)
	if err != nil {
		t.Fatalf("NewTGI: %v", err)
	}
	return New(model, schedule, integrators.NewRK45())
}

func fixed(t *testing.T, dose, interval, duration float64) *dosing.Schedule {
	t.Helper()
	s, err := dosing.NewFixedInterval(dose, interval, duration)
	if err != nil {
		t.Fatalf("NewFixedInterval: %v", err)
	}
	return s
}

func TestSimulatorRun(t *testing.T) {
	s := newSim(t, pkpd.DefaultParams(), fixed(t, 20, 2, 10))

	cfg := Config{Dt: 0.1, Duration: 1.0, InitialDiameter: 10, DoseTolerance: 1e-6}
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Len() != 11 {
		t.Errorf("expected 11 samples, got %d", result.Len())
	}

	times := result.Times()
	for i, v := range times {
		if v != float64(i)*0.1 {
			t.Errorf("time[%d] = %v, want %v", i, v, float64(i)*0.1)
		}
	}

	if n := len(result.Diameters()); n != len(times) || len(result.Exposures()) != n {
		t.Error("series lengths differ")
	}

	first := result.At(0)
	if first.Gut != 0 || first.Exposure != 0 || first.Diameter != 10 {
		t.Errorf("unexpected initial sample %+v", first)
	}

	if result.Final().Exposure <= 0 {
		t.Error("expected positive exposure after the first dose")
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := newSim(t, pkpd.DefaultParams(), fixed(t, 20, 2, 10))

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"dt beyond duration", Config{Dt: 2, Duration: 1.0}},
		{"negative diameter", Config{Dt: 0.1, Duration: 1.0, InitialDiameter: -1}},
		{"negative budget", Config{Dt: 0.1, Duration: 1.0, MaxSteps: -1}},
		{"too many windows", Config{Dt: 1, Duration: 1e20, MaxSteps: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tt.cfg)
			if !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestSimulatorDoseBolusConservesMass(t *testing.T) {
	s := newSim(t, pkpd.DefaultParams(), fixed(t, 20, 2, 20))

	result, err := s.Run(context.Background(), Config{Dt: 0.1, Duration: 30, InitialDiameter: 10, DoseTolerance: 1e-6})
	if err != nil {
		t.Fatal(err)
	}

	doses := result.Doses()
	if len(doses) != 11 {
		t.Fatalf("expected 11 doses, got %d", len(doses))
	}
	for i, d := range doses {
		if d.GutAfter != d.GutBefore+d.Amount {
			t.Errorf("dose %d: %g + %g != %g", i, d.GutBefore, d.Amount, d.GutAfter)
		}
		if math.Abs(d.Time-d.Scheduled) > 1e-6 {
			t.Errorf("dose %d administered at %g, scheduled %g", i, d.Time, d.Scheduled)
		}
	}
	if doses[0].GutBefore != 0 {
		t.Errorf("first dose should land in an empty gut, had %g", doses[0].GutBefore)
	}
}

func TestSimulatorOffGridDosesCatchUp(t *testing.T) {
	s := newSim(t, pkpd.DefaultParams(), fixed(t, 10, 0.25, 1))

	result, err := s.Run(context.Background(), Config{Dt: 0.3, Duration: 1.5, InitialDiameter: 10, DoseTolerance: 1e-6})
	if err != nil {
		t.Fatal(err)
	}

	doses := result.Doses()
	if len(doses) != 5 {
		t.Fatalf("every scheduled dose must be administered, got %d", len(doses))
	}
	for _, d := range doses {
		if d.Time < d.Scheduled-1e-6 {
			t.Errorf("dose scheduled at %g given early at %g", d.Scheduled, d.Time)
		}
	}
}

func TestSimulatorEndsOnDuration(t *testing.T) {
	tests := []struct {
		dt      float64
		samples int
	}{
		{0.3, 5},
		{0.4, 4},
		{0.1, 11},
	}

	for _, tt := range tests {
		s := newSim(t, pkpd.DefaultParams(), fixed(t, 10, 0.25, 1))
		result, err := s.Run(context.Background(), Config{Dt: tt.dt, Duration: 1, InitialDiameter: 10, DoseTolerance: 1e-6})
		if err != nil {
			t.Fatalf("dt=%g: %v", tt.dt, err)
		}
		if result.Len() != tt.samples {
			t.Errorf("dt=%g: expected %d samples, got %d", tt.dt, tt.samples, result.Len())
		}
		if got := result.Final().Time; got != 1 {
			t.Errorf("dt=%g: final sample at %.17g, want 1", tt.dt, got)
		}
		times := result.Times()
		for i := 1; i < len(times); i++ {
			if times[i] <= times[i-1] {
				t.Errorf("dt=%g: times not increasing at %d: %v", tt.dt, i, times[i-1:i+1])
			}
		}
	}
}

func TestSimulatorClockFreezesAfterTreatment(t *testing.T) {
	s := newSim(t, pkpd.DefaultParams(), fixed(t, 20, 2, 10))

	result, err := s.Run(context.Background(), Config{Dt: 0.1, Duration: 40, InitialDiameter: 10, DoseTolerance: 1e-6})
	if err != nil {
		t.Fatal(err)
	}

	var frozen float64
	seen := false
	for _, smp := range result.Samples() {
		if smp.Time <= 10.1+1e-9 {
			continue
		}
		if smp.Active {
			t.Fatalf("active after treatment end at t=%g", smp.Time)
		}
		if !seen {
			frozen, seen = smp.Clock, true
			continue
		}
		if smp.Clock != frozen {
			t.Fatalf("clock moved off treatment: %g -> %g at t=%g", frozen, smp.Clock, smp.Time)
		}
	}
	if math.Abs(frozen-10.1) > 1e-6 {
		t.Errorf("time on treatment = %g, want 10.1", frozen)
	}
}

func TestSimulatorDeterministic(t *testing.T) {
	cfg := Config{Dt: 0.1, Duration: 60, InitialDiameter: 10, DoseTolerance: 1e-6}

	a, err := newSim(t, pkpd.DefaultParams(), fixed(t, 20, 2, 30)).Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := newSim(t, pkpd.DefaultParams(), fixed(t, 20, 2, 30)).Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	da, db := a.Diameters(), b.Diameters()
	ea, eb := a.Exposures(), b.Exposures()
	for i := range da {
		if da[i] != db[i] || ea[i] != eb[i] {
			t.Fatalf("runs diverge at sample %d", i)
		}
	}
}

// failingIntegrator delegates until failAt, then reports a solver failure.
type failingIntegrator struct {
	inner  dynamo.Integrator
	failAt float64
}

func (f *failingIntegrator) Integrate(sys dynamo.System, x dynamo.State, active bool, t0, t1 float64) (dynamo.State, error) {
	if t0 >= f.failAt {
		return nil, dynamo.ErrStepTooSmall
	}
	return f.inner.Integrate(sys, x, active, t0, t1)
}

func TestSimulatorIntegrationFailureIsFatal(t *testing.T) {
	model, _ := pkpd.NewTGI(pkpd.DefaultParams())
	s := New(model, fixed(t, 20, 2, 10), &failingIntegrator{inner: integrators.NewRK45(), failAt: 5})

	result, err := s.Run(context.Background(), Config{Dt: 0.5, Duration: 10, InitialDiameter: 10})
	if !errors.Is(err, dynamo.ErrIntegrationFailure) {
		t.Fatalf("expected integration failure, got %v", err)
	}

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected *dynamo.SimulationError, got %T", err)
	}
	if simErr.Time != 5 || simErr.Step != 10 {
		t.Errorf("failure reported at step %d t=%g, want step 10 t=5", simErr.Step, simErr.Time)
	}
	if len(simErr.State) != pkpd.StateDim {
		t.Errorf("failure state has %d elements", len(simErr.State))
	}

	if result == nil || result.Len() != 11 {
		t.Errorf("expected partial result with 11 samples, got %v", result)
	}
	if result.Final().Time != 5 {
		t.Errorf("partial result must stop at the failing window, last t=%g", result.Final().Time)
	}
}

func TestSimulatorCancellation(t *testing.T) {
	s := newSim(t, pkpd.DefaultParams(), fixed(t, 20, 2, 10))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, DefaultConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.Len() != 1 {
		t.Errorf("canceled run should hold only the initial sample, got %d", result.Len())
	}
}

func TestSimulatorStepBudget(t *testing.T) {
	s := newSim(t, pkpd.DefaultParams(), fixed(t, 20, 2, 10))

	cfg := DefaultConfig()
	cfg.MaxSteps = 50
	result, err := s.Run(context.Background(), cfg)
	if !errors.Is(err, dynamo.ErrStepBudget) {
		t.Fatalf("expected ErrStepBudget, got %v", err)
	}
	if result.Len() != 51 {
		t.Errorf("expected 51 samples before the budget ran out, got %d", result.Len())
	}
}

type countingMetric struct {
	count int
	sum   float64
}

func (c *countingMetric) Name() string { return "test" }
func (c *countingMetric) Observe(s dynamo.Sample) {
	c.count++
	c.sum += s.Diameter
}
func (c *countingMetric) Value() float64 {
	if c.count == 0 {
		return 0
	}
	return c.sum / float64(c.count)
}
func (c *countingMetric) Reset() {
	c.count = 0
	c.sum = 0
}

type recordingObserver struct{ times []float64 }

func (r *recordingObserver) OnSample(s dynamo.Sample) { r.times = append(r.times, s.Time) }

func TestSimulatorMetricsAndObservers(t *testing.T) {
	s := newSim(t, pkpd.DefaultParams(), fixed(t, 20, 2, 10))

	metric := &countingMetric{}
	obs := &recordingObserver{}
	s.AddMetric(metric)
	s.AddObserver(obs)

	cfg := Config{Dt: 0.1, Duration: 1.0, InitialDiameter: 10}
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics()["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}
	if len(obs.times) != 11 {
		t.Errorf("expected 11 observer callbacks, got %d", len(obs.times))
	}

	// Metrics are reset at the start of every run.
	if _, err := s.Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if metric.count != 11 {
		t.Errorf("metric not reset between runs, count %d", metric.count)
	}
}

func TestSimulatorStepwise(t *testing.T) {
	s := newSim(t, pkpd.DefaultParams(), fixed(t, 20, 2, 10))

	run, err := s.Start(Config{Dt: 0.1, Duration: 2, InitialDiameter: 10, DoseTolerance: 1e-6})
	if err != nil {
		t.Fatal(err)
	}

	for !run.Done() {
		if err := run.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if run.Index() != 20 || run.Steps() != 20 {
		t.Errorf("index %d steps %d, want 20", run.Index(), run.Steps())
	}
	if err := run.Step(); err != nil {
		t.Errorf("stepping a finished run should be a no-op, got %v", err)
	}
	if run.Result().Len() != 21 {
		t.Errorf("expected 21 samples, got %d", run.Result().Len())
	}
}

func TestSimulatorResultIsReadOnly(t *testing.T) {
	s := newSim(t, pkpd.DefaultParams(), fixed(t, 20, 2, 10))
	result, err := s.Run(context.Background(), Config{Dt: 0.1, Duration: 1, InitialDiameter: 10})
	if err != nil {
		t.Fatal(err)
	}

	d := result.Diameters()
	d[0] = -1
	if result.At(0).Diameter != 10 {
		t.Error("mutating an accessor copy changed the result")
	}
}

func TestRunBatch(t *testing.T) {
	cfg := Config{Dt: 0.1, Duration: 20, InitialDiameter: 10, DoseTolerance: 1e-6}
	jobs := []Job{
		{Name: "low", Sim: newSim(t, pkpd.DefaultParams(), fixed(t, 20, 2, 10)), Config: cfg},
		{Name: "high", Sim: newSim(t, pkpd.DefaultParams(), fixed(t, 200, 2, 10)), Config: cfg},
		{Name: "none", Sim: newSim(t, pkpd.DefaultParams(), dosing.NewNone()), Config: cfg},
	}

	results, err := RunBatch(context.Background(), jobs, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	low, high, none := results[0].Final(), results[1].Final(), results[2].Final()
	if !(high.Diameter < low.Diameter && low.Diameter < none.Diameter) {
		t.Errorf("results out of job order: high=%g low=%g none=%g", high.Diameter, low.Diameter, none.Diameter)
	}

	bad := append(jobs, Job{Name: "broken", Sim: jobs[0].Sim, Config: Config{Dt: 0}})
	if _, err := RunBatch(context.Background(), bad[2:], 0); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected batch failure, got %v", err)
	}
}
