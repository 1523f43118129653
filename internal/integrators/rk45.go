package integrators

import (
	"errors"
	"math"

	"github.com/san-kum/tgisim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// ErrStepRejected is returned by StepAdaptive when the local error exceeds
// tolerance. The returned step size is the suggested retry.
var ErrStepRejected = errors.New("integrators: step rejected")

const (
	DefaultRTol        = 1e-6
	DefaultATol        = 1e-9
	DefaultMinStep     = 1e-10
	DefaultMaxSubsteps = 10000
)

// RK45 is an embedded Dormand-Prince 5(4) solver with step-size control.
// Instances keep no state between calls and may be shared by sequential
// runs, but not by concurrent ones.
type RK45 struct {
	RTol        float64
	ATol        float64
	MinStep     float64
	MaxSubsteps int

	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		RTol:        DefaultRTol,
		ATol:        DefaultATol,
		MinStep:     DefaultMinStep,
		MaxSubsteps: DefaultMaxSubsteps,
		safety:      0.9,
		minScale:    0.2,
		maxScale:    10.0,
	}
}

// WithTolerances returns a copy using the given relative and absolute
// tolerances; non-positive values keep the current setting.
func (r *RK45) WithTolerances(rtol, atol float64) *RK45 {
	c := *r
	if rtol > 0 {
		c.RTol = rtol
	}
	if atol > 0 {
		c.ATol = atol
	}
	return &c
}

// Integrate advances x from t0 to exactly t1. The active flag is held for
// the whole window.
func (r *RK45) Integrate(sys dynamo.System, x dynamo.State, active bool, t0, t1 float64) (dynamo.State, error) {
	if !x.IsValid() {
		return nil, dynamo.ErrInvalidState
	}

	t := t0
	h := t1 - t0
	cur := x.Clone()

	for n := 0; ; n++ {
		if n >= r.MaxSubsteps {
			return nil, dynamo.ErrTooManySteps
		}

		remaining := t1 - t
		last := h >= remaining
		if last {
			h = remaining
		}

		next, hNext, err := r.StepAdaptive(sys, cur, active, t, h)
		if errors.Is(err, ErrStepRejected) {
			if hNext < r.MinStep {
				return nil, dynamo.ErrStepTooSmall
			}
			h = hNext
			continue
		}
		if err != nil {
			return nil, err
		}

		cur = next
		if last {
			return cur, nil
		}
		t += h
		h = hNext
	}
}

// StepAdaptive takes one trial step of size dt. On success it returns the
// new state and the suggested next step size.
func (r *RK45) StepAdaptive(sys dynamo.System, x dynamo.State, active bool, t, dt float64) (dynamo.State, float64, error) {
	n := len(x)

	k1 := sys.Derive(t, x, active)

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := sys.Derive(t+a2*dt, x2, active)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := sys.Derive(t+a3*dt, x3, active)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := sys.Derive(t+a4*dt, x4, active)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := sys.Derive(t+a5*dt, x5, active)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := sys.Derive(t+dt, x6, active)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := sys.Derive(t+dt, xNew, active)

	// RMS of the embedded error estimate scaled by a mixed tolerance.
	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := r.ATol + r.RTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		e := errEst / scale
		sum += e * e
	}
	errRatio := math.Sqrt(sum / float64(n))

	if math.IsNaN(errRatio) || math.IsInf(errRatio, 0) || !xNew.IsValid() {
		return nil, 0, dynamo.ErrInvalidState
	}

	if errRatio > 1 {
		scale := math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.2))
		return nil, dt * scale, ErrStepRejected
	}

	var dtNew float64
	if errRatio > 0 {
		dtNew = dt * math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
	} else {
		dtNew = dt * r.maxScale
	}

	return xNew, dtNew, nil
}
