package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/carewatch/app"
	"github.com/kilianp07/carewatch/config"
	"github.com/kilianp07/carewatch/core/model"
	"github.com/kilianp07/carewatch/core/simulation"
	"github.com/kilianp07/carewatch/infra/logger"
	"github.com/kilianp07/carewatch/pkg/export"
)

var simulateOpts struct {
	ticks   int
	seed    int64
	horizon int
	warmup  int
	export  string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run ticks offline and print the final state and forecasts",
	RunE:  runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.IntVarP(&simulateOpts.ticks, "ticks", "n", 60, "number of ticks to run")
	f.Int64Var(&simulateOpts.seed, "seed", 1, "random seed, 0 seeds from the clock")
	f.IntVar(&simulateOpts.horizon, "horizon", 0, "forecast steps, defaults to the configured horizon")
	f.IntVar(&simulateOpts.warmup, "warmup", -1, "synthetic history points before the first tick, -1 disables")
	f.StringVar(&simulateOpts.export, "export", "", "also print the retained history as csv or json")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if simulateOpts.ticks < 0 {
		return fmt.Errorf("%w: ticks must not be negative", config.ErrInvalidConfiguration)
	}
	if simulateOpts.export != "" {
		if err := export.CheckFormat(simulateOpts.export); err != nil {
			return fmt.Errorf("%w: %v", config.ErrInvalidConfiguration, err)
		}
	}
	if cmd.Flags().Changed("horizon") {
		cfg.Simulation.ForecastHorizon = simulateOpts.horizon
	}
	cfg.Simulation.Seed = simulateOpts.seed
	cfg.Simulation.Warmup = simulateOpts.warmup
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return err
	}

	svc, err := app.NewWithDeps(cfg, simulation.NewRand(cfg.Simulation.Seed), nil, logger.New("simulate"))
	if err != nil {
		return err
	}
	defer svc.Close()
	for i := 0; i < simulateOpts.ticks; i++ {
		svc.Controller().Tick()
	}
	out := cmd.OutOrStdout()
	if err := printReport(out, svc.Snapshot(), svc.Forecasts()); err != nil {
		return err
	}
	if simulateOpts.export == "" {
		return nil
	}
	return export.Write(out, simulateOpts.export, export.Rows(svc))
}

func printReport(out io.Writer, st model.State, forecasts []model.Forecast) error {
	fmt.Fprintf(out, "state: oxygen=%.1f %s beds=%d staff=%d\n",
		st.Oxygen, model.MetricOxygen.Unit(), st.Beds, st.Staff)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := "metric\t"
	steps := 0
	if len(forecasts) > 0 {
		steps = len(forecasts[0].Values)
	}
	for i := 1; i <= steps; i++ {
		header += "t+" + strconv.Itoa(i) + "\t"
	}
	fmt.Fprintln(w, header)
	for _, f := range forecasts {
		line := f.Metric.String() + "\t"
		for _, v := range f.Values {
			line += strconv.FormatFloat(v, 'f', 0, 64) + "\t"
		}
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}
