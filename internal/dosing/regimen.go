package dosing

// Regimen is the declarative form of a schedule, as read from config files.
type Regimen struct {
	Mode            string  `yaml:"mode" json:"mode"`
	Dose            float64 `yaml:"dose" json:"dose"`
	Interval        float64 `yaml:"interval,omitempty" json:"interval,omitempty"`
	OnDays          int     `yaml:"on_days,omitempty" json:"on_days,omitempty"`
	OffDays         int     `yaml:"off_days,omitempty" json:"off_days,omitempty"`
	Duration        float64 `yaml:"duration" json:"duration"`
	ActiveTolerance float64 `yaml:"active_tolerance,omitempty" json:"active_tolerance,omitempty"`
}

func (r Regimen) Build() (*Schedule, error) {
	mode, err := ParseMode(r.Mode)
	if err != nil {
		return nil, err
	}

	switch mode {
	case FixedInterval:
		return NewFixedInterval(r.Dose, r.Interval, r.Duration)
	case Cyclic:
		s, err := NewCyclic(r.Dose, r.OnDays, r.OffDays, r.Duration)
		if err != nil {
			return nil, err
		}
		if r.ActiveTolerance > 0 {
			return s.WithActiveTolerance(r.ActiveTolerance)
		}
		return s, nil
	default:
		return NewNone(), nil
	}
}
