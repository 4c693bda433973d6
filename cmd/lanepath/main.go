package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/zeusync/lanepath/internal/config"
	"github.com/zeusync/lanepath/internal/core/observability/log"
	"github.com/zeusync/lanepath/internal/core/planner"
	"github.com/zeusync/lanepath/internal/fleet"
	"github.com/zeusync/lanepath/internal/injector"
)

type options struct {
	configPath string
	serve      string
	logLevel   string
	waypoints  bool
	printCfg   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "scenario YAML file (default: built-in single tractor)")
	flag.StringVar(&opts.serve, "serve", "", "stream telemetry frames on this address, e.g. 127.0.0.1:8088")
	flag.StringVar(&opts.logLevel, "log-level", "", "override the scenario log level")
	flag.BoolVar(&opts.waypoints, "waypoints", false, "print the coverage path of every agent and exit")
	flag.BoolVar(&opts.printCfg, "print-config", false, "print the effective scenario as YAML and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "lanepath:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	sc, err := loadScenario(opts)
	if err != nil {
		return err
	}

	if opts.printCfg {
		return sc.Encode(out)
	}
	if opts.waypoints {
		return printWaypoints(out, sc)
	}

	runner := injector.InitializeRunner(sc.Level())
	defer func() { _ = log.Provide().Sync() }()

	results, err := runner.Run(ctx, sc)
	if err != nil {
		return err
	}
	return printResults(out, results)
}

func loadScenario(opts options) (*config.Scenario, error) {
	sc := config.Default()
	if opts.configPath != "" {
		loaded, err := config.LoadFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		sc = loaded
	}
	if opts.logLevel != "" {
		sc.LogLevel = opts.logLevel
	}
	if opts.serve != "" {
		sc.Telemetry.Enabled = true
		sc.Telemetry.Addr = opts.serve
		sc.Loop.RealTime = true
	}
	return sc, sc.Validate()
}

func printResults(out io.Writer, results []fleet.Result) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AGENT\tSTRATEGY\tROWS\tTICKS\tSIM(s)\tDISTANCE\tMARKERS\tDONE\tFINGERPRINT")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f\t%.2f\t%d\t%t\t%016x\n",
			r.Name, r.Strategy, r.TotalRows, r.Ticks, r.Simulated, r.Distance, r.Markers, r.Complete, r.Fingerprint)
	}
	return tw.Flush()
}

func printWaypoints(out io.Writer, sc *config.Scenario) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AGENT\tROW\tCOL\tX\tY\tZ\tHEADING")
	for _, a := range sc.Agents {
		wps, err := planner.Waypoints(a.Config, a.Start.Pose())
		if err != nil {
			return fmt.Errorf("agent %q: %w", a.Name, err)
		}
		for _, wp := range wps {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.1f\n",
				a.Name, wp.Row, wp.Column, wp.Position.Xv, wp.Position.Yv, wp.Position.Zv, wp.Heading)
		}
	}
	return tw.Flush()
}
