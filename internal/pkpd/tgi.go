package pkpd

import (
	"math"

	"github.com/san-kum/tgisim/internal/dynamo"
)

// State vector layout.
const (
	Gut = iota
	Central
	Peripheral
	Diameter
	Clock
	StateDim
)

const (
	// FloorDiameter is the size below which growth is suppressed and only
	// the kill term acts.
	FloorDiameter = 0.08
	// CeilingDiameter is the size above which the tumor is frozen.
	CeilingDiameter = 1e12
	// SizeAttenuation scales the reduction of kill efficacy in large tumors.
	SizeAttenuation = 0.1
)

// TGI is the coupled PK/PD right-hand side.
type TGI struct {
	p Params
}

func NewTGI(p Params) (*TGI, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &TGI{p: p}, nil
}

func (m *TGI) Params() Params { return m.p }

func (m *TGI) StateDim() int { return StateDim }

// InitialState is drug-free with the clock at zero.
func (m *TGI) InitialState(diameter float64) dynamo.State {
	x := make(dynamo.State, StateDim)
	x[Diameter] = diameter
	return x
}

// Exposure is the central-compartment concentration.
func (m *TGI) Exposure(x dynamo.State) float64 {
	return x[Central] / m.p.V1
}

// KillCoefficient is the instantaneous log-kill rate; zero off treatment.
func (m *TGI) KillCoefficient(x dynamo.State, active bool) float64 {
	if !active {
		return 0
	}
	return m.p.KillRate * m.Exposure(x) *
		math.Exp(-m.p.ResistanceDecay*x[Clock]) *
		math.Exp(-SizeAttenuation*x[Diameter])
}

// TumorRate is dTS/dt for diameter ts under kill coefficient k.
func (m *TGI) TumorRate(ts, k float64) float64 {
	switch {
	case ts > CeilingDiameter:
		return 0
	case ts < FloorDiameter:
		return -k * ts
	default:
		return m.p.GrowthRate*ts - k*ts
	}
}

// Derive is time-invariant given the active flag; t is unused.
func (m *TGI) Derive(t float64, x dynamo.State, active bool) dynamo.State {
	k12, k21, ke := m.p.K12(), m.p.K21(), m.p.Ke()
	gut, central, peripheral := x[Gut], x[Central], x[Peripheral]

	dx := make(dynamo.State, StateDim)
	dx[Gut] = -m.p.Ka * gut
	dx[Central] = m.p.Ka*gut - k12*central - ke*central + k21*peripheral
	dx[Peripheral] = k12*central - k21*peripheral
	dx[Diameter] = m.TumorRate(x[Diameter], m.KillCoefficient(x, active))
	if active {
		dx[Clock] = 1
	}
	return dx
}

func (m *TGI) GetParams() map[string]float64 { return m.p.GetParams() }

// SetParam replaces one constant, keeping the model valid.
func (m *TGI) SetParam(name string, value float64) error {
	p, err := m.p.With(name, value)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	m.p = p
	return nil
}

// SphereVolume is the volume of a spherical tumor of diameter d.
func SphereVolume(d float64) float64 {
	r := d / 2
	return 4.0 / 3.0 * math.Pi * r * r * r
}
