package config

import (
	"sort"

	"github.com/san-kum/tgisim/internal/dosing"
	"github.com/san-kum/tgisim/internal/pkpd"
)

func preset(name, desc string, ts0 float64, p pkpd.Params, r dosing.Regimen) *Scenario {
	sc := DefaultScenario()
	sc.Name = name
	sc.Description = desc
	sc.InitialDiameter = ts0
	sc.Params = p
	sc.Regimen = r
	return sc
}

func fitted() pkpd.Params {
	p := pkpd.DefaultParams()
	p.GrowthRate = 5.34e-4
	p.KillRate = 3.46e-3
	p.ResistanceDecay = 1.32e-2
	return p
}

var Presets = map[string]*Scenario{
	"low-dose-q2d": preset("low-dose-q2d", "20 mg every 2 days for 36 weeks, 10 cm tumor",
		10, pkpd.DefaultParams(),
		dosing.Regimen{Mode: "fixed", Dose: 20, Interval: 2, Duration: 252}),
	"fitted-short": preset("fitted-short", "fitted rates, 50 mg every 2 days for 6 weeks",
		10, fitted(),
		dosing.Regimen{Mode: "fixed", Dose: 50, Interval: 2, Duration: 42}),
	"cyclic-short": preset("cyclic-short", "100 mg daily, 4 weeks on / 2 weeks off, 12 weeks",
		10, pkpd.DefaultParams(),
		dosing.Regimen{Mode: "cyclic", Dose: 100, OnDays: 28, OffDays: 14, Duration: 84}),
	"cyclic-long": preset("cyclic-long", "100 mg daily, 4 weeks on / 2 weeks off, 36 weeks, 1 cm tumor",
		1, pkpd.DefaultParams(),
		dosing.Regimen{Mode: "cyclic", Dose: 100, OnDays: 28, OffDays: 14, Duration: 252}),
	"small-tumor": preset("small-tumor", "20 mg every 2 days for 36 weeks, 1 mm tumor",
		0.1, pkpd.DefaultParams(),
		dosing.Regimen{Mode: "fixed", Dose: 20, Interval: 2, Duration: 252}),
	"untreated": preset("untreated", "no treatment, 10 cm tumor",
		10, pkpd.DefaultParams(),
		dosing.Regimen{Mode: "none"}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Scenario {
	sc, ok := Presets[name]
	if !ok {
		return nil
	}
	return sc.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
