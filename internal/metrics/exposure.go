package metrics

import (
	"math"

	"github.com/san-kum/tgisim/internal/dynamo"
	"gonum.org/v1/gonum/integrate"
)

// DefaultToxicThreshold is the exposure above which a regimen is
// considered toxic.
const DefaultToxicThreshold = 0.06

type PeakExposure struct {
	name string
	peak float64
}

func NewPeakExposure() *PeakExposure {
	return &PeakExposure{name: "cmax"}
}

func (p *PeakExposure) Name() string { return p.name }

func (p *PeakExposure) Observe(s dynamo.Sample) {
	p.peak = math.Max(p.peak, s.Exposure)
}

func (p *PeakExposure) Value() float64 { return p.peak }

func (p *PeakExposure) Reset() { p.peak = 0 }

// ExposureAUC is the trapezoidal area under the exposure curve.
type ExposureAUC struct {
	name   string
	times  []float64
	values []float64
}

func NewExposureAUC() *ExposureAUC {
	return &ExposureAUC{name: "auc"}
}

func (a *ExposureAUC) Name() string { return a.name }

func (a *ExposureAUC) Observe(s dynamo.Sample) {
	a.times = append(a.times, s.Time)
	a.values = append(a.values, s.Exposure)
}

func (a *ExposureAUC) Value() float64 {
	if len(a.times) < 2 {
		return 0
	}
	return integrate.Trapezoidal(a.times, a.values)
}

func (a *ExposureAUC) Reset() {
	a.times = a.times[:0]
	a.values = a.values[:0]
}

// TimeAboveThreshold accumulates the time spent with exposure above a
// threshold, crediting each interval by its end sample.
type TimeAboveThreshold struct {
	name      string
	threshold float64
	lastTime  float64
	total     float64
	samples   int
}

func NewTimeAboveThreshold(threshold float64) *TimeAboveThreshold {
	return &TimeAboveThreshold{name: "time_toxic", threshold: threshold}
}

func (m *TimeAboveThreshold) Name() string { return m.name }

func (m *TimeAboveThreshold) Observe(s dynamo.Sample) {
	if m.samples > 0 && s.Exposure > m.threshold {
		m.total += s.Time - m.lastTime
	}
	m.lastTime = s.Time
	m.samples++
}

func (m *TimeAboveThreshold) Value() float64 { return m.total }

func (m *TimeAboveThreshold) Reset() {
	m.total = 0
	m.lastTime = 0
	m.samples = 0
}
