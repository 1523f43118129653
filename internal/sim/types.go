package sim

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/tgisim/internal/dynamo"
)

// MaxWindows bounds the number of reporting windows a configuration may
// describe.
const MaxWindows = 100_000_000

// preallocSamples caps the sample buffer reserved up front.
const preallocSamples = 1 << 20

type Config struct {
	Dt              float64
	Duration        float64
	InitialDiameter float64
	DoseTolerance   float64
	// MaxSteps bounds the number of windows a run may take; zero means no bound.
	MaxSteps int
}

func DefaultConfig() Config {
	return Config{
		Dt:              0.1,
		Duration:        365,
		InitialDiameter: 10,
		DoseTolerance:   1e-6,
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return dynamo.InvalidParam("dt", c.Dt, "must be positive")
	}
	if !(c.Duration > 0) || math.IsInf(c.Duration, 0) {
		return dynamo.InvalidParam("duration", c.Duration, "must be positive")
	}
	if c.Dt > c.Duration {
		return dynamo.InvalidParam("dt", c.Dt, "must not exceed the simulation duration")
	}
	if n := c.Duration / c.Dt; !(n <= MaxWindows) {
		return dynamo.InvalidParam("dt", c.Dt, fmt.Sprintf("yields more than %d windows", MaxWindows))
	}
	if !(c.InitialDiameter >= 0) || math.IsInf(c.InitialDiameter, 0) {
		return dynamo.InvalidParam("initial_diameter", c.InitialDiameter, "must be non-negative")
	}
	if !(c.DoseTolerance >= 0) {
		return dynamo.InvalidParam("dose_tolerance", c.DoseTolerance, "must be non-negative")
	}
	if c.MaxSteps < 0 {
		return dynamo.InvalidParam("max_steps", float64(c.MaxSteps), "must be non-negative")
	}
	return nil
}

// Steps is the number of reporting windows covering Duration. When Dt
// does not divide Duration the last window is shorter and ends on Duration.
func (c Config) Steps() int {
	n := c.Duration / c.Dt
	// Absorb the rounding of quotients such as 0.3/0.1.
	return int(math.Ceil(n * (1 - 1e-12)))
}

// DoseEvent records one bolus into the gut compartment.
type DoseEvent struct {
	Scheduled float64 `json:"scheduled"`
	Time      float64 `json:"time"`
	Amount    float64 `json:"amount"`
	GutBefore float64 `json:"gut_before"`
	GutAfter  float64 `json:"gut_after"`
}

// Result is the output of a run. It is append-only while the run is in
// progress and read-only afterwards; accessors return copies.
type Result struct {
	samples []dynamo.Sample
	doses   []DoseEvent
	metrics map[string]float64
}

func newResult(capacity int) *Result {
	return &Result{
		samples: make([]dynamo.Sample, 0, capacity),
		doses:   make([]DoseEvent, 0),
		metrics: make(map[string]float64),
	}
}

func (r *Result) Len() int { return len(r.samples) }

func (r *Result) At(i int) dynamo.Sample { return r.samples[i] }

// Final is the last sample; it panics on an empty result.
func (r *Result) Final() dynamo.Sample { return r.samples[len(r.samples)-1] }

func (r *Result) Samples() []dynamo.Sample { return slices.Clone(r.samples) }

func (r *Result) Doses() []DoseEvent { return slices.Clone(r.doses) }

func (r *Result) Times() []float64 {
	return r.column(func(s dynamo.Sample) float64 { return s.Time })
}

func (r *Result) Diameters() []float64 {
	return r.column(func(s dynamo.Sample) float64 { return s.Diameter })
}

func (r *Result) Exposures() []float64 {
	return r.column(func(s dynamo.Sample) float64 { return s.Exposure })
}

func (r *Result) TimeOnTreatment() []float64 {
	return r.column(func(s dynamo.Sample) float64 { return s.Clock })
}

func (r *Result) Active() []bool {
	out := make([]bool, len(r.samples))
	for i, s := range r.samples {
		out[i] = s.Active
	}
	return out
}

func (r *Result) Metrics() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for k, v := range r.metrics {
		out[k] = v
	}
	return out
}

func (r *Result) column(f func(dynamo.Sample) float64) []float64 {
	out := make([]float64, len(r.samples))
	for i, s := range r.samples {
		out[i] = f(s)
	}
	return out
}
