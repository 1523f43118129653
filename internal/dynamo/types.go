package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is an ODE right-hand side gated by a treatment-active flag.
type System interface {
	Derive(t float64, x State, active bool) State
	StateDim() int
}

// Integrator advances x from t0 to exactly t1 with the active flag held fixed.
type Integrator interface {
	Integrate(sys System, x State, active bool, t0, t1 float64) (State, error)
}

// Sample is one reported point of a run. Active reports whether the kill
// term was enabled during the window that ended at Time.
type Sample struct {
	Time       float64
	Gut        float64
	Central    float64
	Peripheral float64
	Diameter   float64
	Exposure   float64
	Clock      float64
	Active     bool
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(s Sample)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
