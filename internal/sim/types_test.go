package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/tgisim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("DefaultConfig has invalid Dt")
	}
	if cfg.Duration <= 0 {
		t.Error("DefaultConfig has invalid Duration")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig does not validate: %v", err)
	}
}

func TestConfig_Steps(t *testing.T) {
	tests := []struct {
		dt, duration float64
		want         int
	}{
		{0.1, 365, 3650},
		{0.1, 0.3, 3},
		{0.3, 1, 4},
		{0.4, 1, 3},
		{0.25, 1, 4},
		{0.3, 1.5, 5},
		{1, 1, 1},
	}

	for _, tt := range tests {
		cfg := Config{Dt: tt.dt, Duration: tt.duration}
		if got := cfg.Steps(); got != tt.want {
			t.Errorf("Steps(dt=%g, duration=%g) = %d, want %d", tt.dt, tt.duration, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"zero dt", Config{Dt: 0, Duration: 1}, "dt"},
		{"NaN dt", Config{Dt: math.NaN(), Duration: 1}, "dt"},
		{"inf duration", Config{Dt: 0.1, Duration: math.Inf(1)}, "duration"},
		{"dt above duration", Config{Dt: 2, Duration: 1}, "dt"},
		{"negative diameter", Config{Dt: 0.1, Duration: 1, InitialDiameter: -1}, "initial_diameter"},
		{"negative tolerance", Config{Dt: 0.1, Duration: 1, DoseTolerance: -1}, "dose_tolerance"},
		{"negative budget", Config{Dt: 0.1, Duration: 1, MaxSteps: -1}, "max_steps"},
		{"too many windows", Config{Dt: 1, Duration: 1e20, MaxSteps: 10}, "dt"},
		{"tiny dt", Config{Dt: 1e-300, Duration: 1}, "dt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			var pe *dynamo.ParameterError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParameterError, got %v", err)
			}
			if pe.Field != tt.field {
				t.Errorf("field = %q, want %q", pe.Field, tt.field)
			}
		})
	}
}
