package metrics

import (
	"github.com/san-kum/tgisim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Nadir tracks the smallest tumor diameter and when it occurred.
type Nadir struct {
	times     []float64
	diameters []float64
}

func NewNadir() *Nadir {
	return &Nadir{}
}

func (n *Nadir) Name() string { return "nadir" }

func (n *Nadir) Observe(s dynamo.Sample) {
	n.times = append(n.times, s.Time)
	n.diameters = append(n.diameters, s.Diameter)
}

func (n *Nadir) Value() float64 {
	if len(n.diameters) == 0 {
		return 0
	}
	return floats.Min(n.diameters)
}

// Time is when the nadir was first reached.
func (n *Nadir) Time() float64 {
	if len(n.diameters) == 0 {
		return 0
	}
	return n.times[floats.MinIdx(n.diameters)]
}

func (n *Nadir) Reset() {
	n.times = n.times[:0]
	n.diameters = n.diameters[:0]
}

// TimeToNadir reports Nadir.Time as a metric of its own.
type TimeToNadir struct {
	*Nadir
}

func NewTimeToNadir() *TimeToNadir {
	return &TimeToNadir{Nadir: NewNadir()}
}

func (t *TimeToNadir) Name() string   { return "time_to_nadir" }
func (t *TimeToNadir) Value() float64 { return t.Nadir.Time() }

type FinalDiameter struct {
	last float64
}

func NewFinalDiameter() *FinalDiameter { return &FinalDiameter{} }

func (f *FinalDiameter) Name() string            { return "final_diameter" }
func (f *FinalDiameter) Observe(s dynamo.Sample) { f.last = s.Diameter }
func (f *FinalDiameter) Value() float64          { return f.last }
func (f *FinalDiameter) Reset()                  { f.last = 0 }

// RelativeChange is (final - initial) / initial diameter.
type RelativeChange struct {
	initial float64
	last    float64
	samples int
}

func NewRelativeChange() *RelativeChange { return &RelativeChange{} }

func (r *RelativeChange) Name() string { return "relative_change" }

func (r *RelativeChange) Observe(s dynamo.Sample) {
	if r.samples == 0 {
		r.initial = s.Diameter
	}
	r.last = s.Diameter
	r.samples++
}

func (r *RelativeChange) Value() float64 {
	if r.initial == 0 {
		return 0
	}
	return (r.last - r.initial) / r.initial
}

func (r *RelativeChange) Reset() {
	r.initial = 0
	r.last = 0
	r.samples = 0
}

// TimeOnTreatment is the final value of the resistance clock.
type TimeOnTreatment struct {
	clock float64
}

func NewTimeOnTreatment() *TimeOnTreatment { return &TimeOnTreatment{} }

func (t *TimeOnTreatment) Name() string            { return "time_on_treatment" }
func (t *TimeOnTreatment) Observe(s dynamo.Sample) { t.clock = s.Clock }
func (t *TimeOnTreatment) Value() float64          { return t.clock }
func (t *TimeOnTreatment) Reset()                  { t.clock = 0 }
