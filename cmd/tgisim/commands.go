package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/tgisim/internal/automation"
	"github.com/san-kum/tgisim/internal/config"
	"github.com/san-kum/tgisim/internal/export"
	"github.com/san-kum/tgisim/internal/viz"
	"github.com/spf13/cobra"
)

var outputFormats = []string{"table", "csv", "json", "svg"}

func checkFormat(format string) error {
	if !slices.Contains(outputFormats, format) {
		return fmt.Errorf("unknown format: %s (available: %v)", format, outputFormats)
	}
	return nil
}

func newRunCmd() *cobra.Command {
	var (
		format string
		out    string
		plot   bool
		doses  bool
	)
	cmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run one scenario",
		Args:  cobra.MaximumNArgs(1),
	}
	sf := addScenarioFlags(cmd)
	cmd.Flags().StringVar(&format, "format", "table", "output format (table, csv, json, svg)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write output to file instead of stdout")
	cmd.Flags().BoolVar(&plot, "plot", false, "plot diameter and exposure (table format)")
	cmd.Flags().BoolVar(&doses, "doses", false, "write the dose log instead of samples (csv format)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(format); err != nil {
			return err
		}
		sc, err := sf.resolve(cmd, args)
		if err != nil {
			return err
		}
		s, cfg, err := sc.Simulator()
		if err != nil {
			return err
		}
		s.WithLogger(slog.Default().With("scenario", sc.Name))

		result, err := s.Run(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		w := io.Writer(os.Stdout)
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		switch format {
		case "csv":
			if doses {
				return export.WriteDosesCSV(w, result)
			}
			return export.WriteCSV(w, result)
		case "json":
			meta := export.Meta{
				Scenario:        sc.Name,
				Description:     sc.Description,
				Mode:            sc.Regimen.Mode,
				Dt:              cfg.Dt,
				Duration:        cfg.Duration,
				InitialDiameter: cfg.InitialDiameter,
			}
			return export.WriteJSON(w, meta, result)
		case "svg":
			return export.WriteSVG(w, result, 800, 400)
		case "table":
			fmt.Fprintln(w, viz.Summary(sc.Name, result))
			if plot {
				fmt.Fprintln(w)
				fmt.Fprintln(w, viz.DiameterChart(result, 0, 0))
				fmt.Fprintln(w)
				fmt.Fprintln(w, viz.ExposureChart(result, 0, 0))
			}
			return nil
		}
		return checkFormat(format)
	}
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMODE\tTS0\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%g\t%s\n", name, p.Regimen.Mode, p.InitialDiameter, p.Description)
			}
			return w.Flush()
		},
	}
}

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare preset...",
		Short: "run presets side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios := make([]*config.Scenario, len(args))
			for i, name := range args {
				sc := config.GetPreset(name)
				if sc == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
				}
				scenarios[i] = sc
			}
			outcomes, err := automation.RunScenarios(cmd.Context(), scenarios, parallel, slog.Default())
			if err != nil {
				return err
			}
			fmt.Println(compareTable(outcomes))
			return nil
		},
	}
}

func compareTable(outcomes []automation.Outcome) string {
	rows := make([]viz.CompareRow, len(outcomes))
	for i, o := range outcomes {
		rows[i] = viz.CompareRow{Name: o.Scenario.Name, Result: o.Result}
	}
	return viz.CompareTable(rows)
}

func newSweepCmd() *cobra.Command {
	var (
		param  string
		lo, hi float64
		steps  int
		metric string
	)
	cmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep one parameter and report the best value",
		Args:  cobra.MaximumNArgs(1),
	}
	sf := addScenarioFlags(cmd)
	cmd.Flags().StringVar(&param, "param", "dose", fmt.Sprintf("parameter to sweep %v", config.ParamNames()))
	cmd.Flags().Float64Var(&lo, "min", 10, "first value")
	cmd.Flags().Float64Var(&hi, "max", 100, "last value")
	cmd.Flags().IntVar(&steps, "steps", 10, "number of values")
	cmd.Flags().StringVar(&metric, "metric", "final_diameter", "metric to minimise")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		base, err := sf.resolve(cmd, args)
		if err != nil {
			return err
		}
		sweep := &automation.Sweep{Base: base, Param: param, Values: automation.Linspace(lo, hi, steps)}
		rows, err := automation.RunSweep(cmd.Context(), sweep, parallel, slog.Default())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "%s\tFINAL\tNADIR\tCMAX\tAUC\t%s\n", param, metric)
		for _, r := range rows {
			fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%.4g\t%.4g\t%.4g\n",
				r.Value, r.FinalDiameter, r.Nadir, r.Cmax, r.AUC, r.Metrics[metric])
		}
		if err := w.Flush(); err != nil {
			return err
		}

		best, err := automation.Best(rows, metric)
		if err != nil {
			return err
		}
		fmt.Printf("\nbest %s=%.4g (%s=%.4g)\n", param, best.Value, metric, best.Metrics[metric])
		return nil
	}
	return cmd
}

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch file.yaml",
		Short: "run every scenario in a batch file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := automation.LoadBatch(args[0])
			if err != nil {
				return err
			}
			outcomes, err := automation.RunBatch(cmd.Context(), batch, parallel, slog.Default())
			if err != nil {
				return err
			}
			if batch.Name != "" {
				fmt.Println(viz.Title.Render(batch.Name))
			}
			fmt.Println(compareTable(outcomes))
			return nil
		},
	}
}

func newLiveCmd() *cobra.Command {
	var fps, speed int
	cmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "play a scenario back in the terminal",
		Args:  cobra.MaximumNArgs(1),
	}
	sf := addScenarioFlags(cmd)
	cmd.Flags().IntVar(&fps, "fps", 30, "frame rate")
	cmd.Flags().IntVar(&speed, "speed", 5, "windows per frame")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		sc, err := sf.resolve(cmd, args)
		if err != nil {
			return err
		}
		s, cfg, err := sc.Simulator()
		if err != nil {
			return err
		}
		// Log lines would tear the alt screen.
		s.WithLogger(slog.New(slog.DiscardHandler))

		run, err := s.Start(cfg)
		if err != nil {
			return err
		}
		final, err := tea.NewProgram(viz.NewLiveModel(sc.Name, run, fps, speed), tea.WithAltScreen()).Run()
		if err != nil {
			return err
		}
		return final.(viz.LiveModel).Err()
	}
	return cmd
}
