// Package dosing builds dose-administration schedules and answers whether
// treatment is active at a given time.
package dosing

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/tgisim/internal/dynamo"
)

type Mode int

const (
	None Mode = iota
	FixedInterval
	Cyclic
)

func (m Mode) String() string {
	switch m {
	case FixedInterval:
		return "fixed"
	case Cyclic:
		return "cyclic"
	default:
		return "none"
	}
}

func ParseMode(s string) (Mode, error) {
	switch s {
	case "fixed", "fixed-interval", "":
		return FixedInterval, nil
	case "cyclic", "onoff":
		return Cyclic, nil
	case "none", "untreated":
		return None, nil
	}
	return None, fmt.Errorf("%w: unknown dosing mode %q", dynamo.ErrInvalidParameter, s)
}

// MaxDoses bounds the length of a generated schedule.
const MaxDoses = 1 << 20

// DefaultActiveTolerance is the half-width of the window around each cyclic
// dose time during which treatment counts as active.
const DefaultActiveTolerance = 0.5

// Schedule is an immutable, strictly increasing sequence of dose times.
type Schedule struct {
	mode     Mode
	dose     float64
	times    []float64
	duration float64
	tol      float64
}

// NewFixedInterval doses at 0, interval, 2*interval, ... while <= duration.
func NewFixedInterval(dose, interval, duration float64) (*Schedule, error) {
	if err := checkDose(dose); err != nil {
		return nil, err
	}
	if !(interval > 0) || math.IsInf(interval, 0) {
		return nil, dynamo.InvalidParam("interval", interval, "must be positive")
	}
	if err := checkDuration(duration); err != nil {
		return nil, err
	}

	count := math.Floor(duration/interval+1e-9) + 1
	if !(count <= MaxDoses) {
		return nil, dynamo.InvalidParam("interval", interval, fmt.Sprintf("yields more than %d doses", MaxDoses))
	}
	times := make([]float64, int(count))
	for i := range times {
		// i*interval can round just past duration on the last dose.
		times[i] = math.Min(float64(i)*interval, duration)
	}

	return &Schedule{mode: FixedInterval, dose: dose, times: times, duration: duration}, nil
}

// NewCyclic doses once per day for onDays, then rests offDays, repeating
// while the block start is before duration. Only times before duration
// are kept.
func NewCyclic(dose float64, onDays, offDays int, duration float64) (*Schedule, error) {
	if err := checkDose(dose); err != nil {
		return nil, err
	}
	if onDays <= 0 {
		return nil, dynamo.InvalidParam("on_days", float64(onDays), "must be positive")
	}
	if offDays < 0 {
		return nil, dynamo.InvalidParam("off_days", float64(offDays), "must be non-negative")
	}
	if err := checkDuration(duration); err != nil {
		return nil, err
	}

	cycle := onDays + offDays
	count := math.Ceil(duration/float64(cycle)) * math.Min(float64(onDays), math.Ceil(duration))
	if !(count <= MaxDoses) {
		return nil, dynamo.InvalidParam("treatment_duration", duration, fmt.Sprintf("yields more than %d doses", MaxDoses))
	}
	times := make([]float64, 0, int(count))
	for start := 0; float64(start) < duration; start += cycle {
		for d := 0; d < onDays; d++ {
			if t := float64(start + d); t < duration {
				times = append(times, t)
			}
		}
	}

	return &Schedule{mode: Cyclic, dose: dose, times: times, duration: duration, tol: DefaultActiveTolerance}, nil
}

// NewNone is the untreated arm: no doses, never active.
func NewNone() *Schedule {
	return &Schedule{mode: None}
}

// WithActiveTolerance returns a copy using tol for the cyclic predicate.
func (s *Schedule) WithActiveTolerance(tol float64) (*Schedule, error) {
	if !(tol >= 0) {
		return nil, dynamo.InvalidParam("active_tolerance", tol, "must be non-negative")
	}
	c := *s
	c.tol = tol
	return &c, nil
}

func checkDose(dose float64) error {
	if !(dose > 0) || math.IsInf(dose, 0) {
		return dynamo.InvalidParam("dose", dose, "must be positive")
	}
	return nil
}

func checkDuration(d float64) error {
	if !(d > 0) || math.IsInf(d, 0) {
		return dynamo.InvalidParam("treatment_duration", d, "must be positive")
	}
	return nil
}

func (s *Schedule) Mode() Mode               { return s.mode }
func (s *Schedule) Dose() float64            { return s.dose }
func (s *Schedule) Duration() float64        { return s.duration }
func (s *Schedule) Len() int                 { return len(s.times) }
func (s *Schedule) At(i int) float64         { return s.times[i] }
func (s *Schedule) ActiveTolerance() float64 { return s.tol }

// Times returns a copy of the dose times.
func (s *Schedule) Times() []float64 {
	out := make([]float64, len(s.times))
	copy(out, s.times)
	return out
}

// Last is the final dose time, or false when there are none.
func (s *Schedule) Last() (float64, bool) {
	if len(s.times) == 0 {
		return 0, false
	}
	return s.times[len(s.times)-1], true
}

// Active reports whether treatment counts as active at t.
func (s *Schedule) Active(t float64) bool {
	switch s.mode {
	case FixedInterval:
		return t <= s.duration
	case Cyclic:
		return s.nearDose(t)
	default:
		return false
	}
}

func (s *Schedule) nearDose(t float64) bool {
	i := sort.SearchFloat64s(s.times, t)
	if i < len(s.times) && math.Abs(s.times[i]-t) <= s.tol {
		return true
	}
	return i > 0 && math.Abs(t-s.times[i-1]) <= s.tol
}

// Cursor walks the schedule in order. It is owned by a single run.
type Cursor struct {
	s    *Schedule
	next int
}

func (s *Schedule) Cursor() *Cursor {
	return &Cursor{s: s}
}

// Next returns the next dose time if it is due at t within tol, and
// advances past it.
func (c *Cursor) Next(t, tol float64) (float64, bool) {
	if c.next >= len(c.s.times) {
		return 0, false
	}
	due := c.s.times[c.next]
	if due > t+tol {
		return 0, false
	}
	c.next++
	return due, true
}

// Remaining is the number of doses not yet administered.
func (c *Cursor) Remaining() int {
	return len(c.s.times) - c.next
}
