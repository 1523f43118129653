package pkpd

import (
	"fmt"
	"math"

	"github.com/san-kum/tgisim/internal/dynamo"
)

// Params holds the fixed PK/PD constants of a run. Time is in days,
// volumes in litres, amounts in mg.
type Params struct {
	Ka              float64 `yaml:"ka" json:"ka"`
	CL              float64 `yaml:"cl" json:"cl"`
	V1              float64 `yaml:"v1" json:"v1"`
	V2              float64 `yaml:"v2" json:"v2"`
	Q               float64 `yaml:"q" json:"q"`
	GrowthRate      float64 `yaml:"growth_rate" json:"growth_rate"`
	KillRate        float64 `yaml:"kill_rate" json:"kill_rate"`
	ResistanceDecay float64 `yaml:"resistance_decay" json:"resistance_decay"`
}

const (
	DefaultKa              = 3.024
	DefaultCL              = 818.4
	DefaultV1              = 2700.0
	DefaultV2              = 774.0
	DefaultQ               = 16.512
	DefaultGrowthRate      = 0.001
	DefaultKillRate        = 0.1
	DefaultResistanceDecay = 0.002
)

func DefaultParams() Params {
	return Params{
		Ka:              DefaultKa,
		CL:              DefaultCL,
		V1:              DefaultV1,
		V2:              DefaultV2,
		Q:               DefaultQ,
		GrowthRate:      DefaultGrowthRate,
		KillRate:        DefaultKillRate,
		ResistanceDecay: DefaultResistanceDecay,
	}
}

// Validate rejects non-positive PK constants and negative PD rates.
func (p Params) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"ka", p.Ka}, {"cl", p.CL}, {"v1", p.V1}, {"v2", p.V2}, {"q", p.Q},
	}
	for _, f := range positive {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return dynamo.InvalidParam(f.name, f.v, "must be positive and finite")
		}
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"growth_rate", p.GrowthRate}, {"kill_rate", p.KillRate}, {"resistance_decay", p.ResistanceDecay},
	}
	for _, f := range nonNegative {
		if !(f.v >= 0) || math.IsInf(f.v, 0) {
			return dynamo.InvalidParam(f.name, f.v, "must be non-negative and finite")
		}
	}
	return nil
}

// K12 is the central-to-peripheral rate constant.
func (p Params) K12() float64 { return p.Q / p.V1 }

// K21 is the peripheral-to-central rate constant.
func (p Params) K21() float64 { return p.Q / p.V2 }

// Ke is the elimination rate constant from the central compartment.
func (p Params) Ke() float64 { return p.CL / p.V1 }

func (p Params) GetParams() map[string]float64 {
	return map[string]float64{
		"ka":               p.Ka,
		"cl":               p.CL,
		"v1":               p.V1,
		"v2":               p.V2,
		"q":                p.Q,
		"growth_rate":      p.GrowthRate,
		"kill_rate":        p.KillRate,
		"resistance_decay": p.ResistanceDecay,
	}
}

// With returns a copy of p with one named constant replaced.
func (p Params) With(name string, value float64) (Params, error) {
	switch name {
	case "ka":
		p.Ka = value
	case "cl":
		p.CL = value
	case "v1":
		p.V1 = value
	case "v2":
		p.V2 = value
	case "q":
		p.Q = value
	case "growth_rate":
		p.GrowthRate = value
	case "kill_rate":
		p.KillRate = value
	case "resistance_decay":
		p.ResistanceDecay = value
	default:
		return p, fmt.Errorf("unknown param: %s", name)
	}
	return p, nil
}
