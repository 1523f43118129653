package main

import (
	"fmt"

	"github.com/san-kum/tgisim/internal/config"
	"github.com/spf13/cobra"
)

// scenarioFlags are the overrides shared by every command that builds a
// single scenario.
type scenarioFlags struct {
	configFile string
	mode       string
	values     map[string]*float64
}

var paramFlags = []struct {
	flag, param, usage string
}{
	{"dose", "dose", "dose amount [mg]"},
	{"interval", "interval", "dosing interval [d] (fixed mode)"},
	{"treatment", "treatment", "treatment duration [d]"},
	{"on-days", "on_days", "days on per cycle (cyclic mode)"},
	{"off-days", "off_days", "days off per cycle (cyclic mode)"},
	{"ts0", "ts0", "initial tumor diameter [cm]"},
	{"dt", "dt", "reporting step [d]"},
	{"horizon", "horizon", "simulated days"},
	{"ka", "ka", "absorption rate [1/d]"},
	{"cl", "cl", "clearance [L/d]"},
	{"v1", "v1", "central volume [L]"},
	{"v2", "v2", "peripheral volume [L]"},
	{"q", "q", "intercompartmental clearance [L/d]"},
	{"growth-rate", "growth_rate", "tumor growth rate [1/d]"},
	{"kill-rate", "kill_rate", "drug kill rate [1/d]"},
	{"resistance-decay", "resistance_decay", "resistance decay [1/d]"},
}

func addScenarioFlags(cmd *cobra.Command) *scenarioFlags {
	sf := &scenarioFlags{values: make(map[string]*float64)}
	cmd.Flags().StringVar(&sf.configFile, "config", "", "scenario file path (yaml)")
	cmd.Flags().StringVar(&sf.mode, "mode", "", "dosing mode (fixed, cyclic, none)")
	for _, f := range paramFlags {
		sf.values[f.flag] = cmd.Flags().Float64(f.flag, 0, f.usage)
	}
	return sf
}

// resolve builds the scenario: preset (or defaults), then the config file,
// then any flags set on the command line.
func (sf *scenarioFlags) resolve(cmd *cobra.Command, args []string) (*config.Scenario, error) {
	sc := config.DefaultScenario()
	if len(args) > 0 {
		sc = config.GetPreset(args[0])
		if sc == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}

	if sf.configFile != "" {
		loaded, err := config.Load(sf.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		sc = loaded
	}

	if cmd.Flags().Changed("mode") {
		sc.Regimen.Mode = sf.mode
	}
	for _, f := range paramFlags {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		if err := sc.SetParam(f.param, *sf.values[f.flag]); err != nil {
			return nil, err
		}
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}
