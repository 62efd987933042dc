// Command lnsim is the CLI entry point for the payment-routing simulator,
// structured the way cmd/lncli dispatches subcommands through urfave/cli,
// with each subcommand's own flag surface bound via go-flags instead of
// urfave/cli's flag package, matching config.Config's `long` tags.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"

	"github.com/ferencberes/lnroutesim/build"
	"github.com/ferencberes/lnroutesim/capacity"
	"github.com/ferencberes/lnroutesim/config"
	"github.com/ferencberes/lnroutesim/export"
	"github.com/ferencberes/lnroutesim/feeopt"
	"github.com/ferencberes/lnroutesim/genetic"
	"github.com/ferencberes/lnroutesim/graph"
	"github.com/ferencberes/lnroutesim/pathengine"
	"github.com/ferencberes/lnroutesim/sampler"
	"github.com/ferencberes/lnroutesim/simulator"
	"github.com/ferencberes/lnroutesim/snapshot"
	"github.com/ferencberes/lnroutesim/sweep"
)

func main() {
	app := cli.NewApp()
	app.Name = "lnsim"
	app.Usage = "simulate Lightning Network payment routing over a channel snapshot"
	app.Commands = []cli.Command{simulateCommand}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "lnsim: %v\n", err)
		os.Exit(1)
	}
}

var simulateCommand = cli.Command{
	Name:  "simulate",
	Usage: "run one simulation and export its result tables",
	Description: "Flags are parsed by go-flags against config.Config; run " +
		"`lnsim simulate --help` for the full surface (spec.md §6).",
	SkipFlagParsing: true,
	Action:          runSimulate,
}

func runSimulate(ctx *cli.Context) error {
	cfg, err := config.Parse(ctx.Args())
	if err != nil {
		return fmt.Errorf("parsing configuration: %w", err)
	}

	useLogging(cfg.DebugLevel)

	edgesFile, err := os.Open(cfg.EdgesPath)
	if err != nil {
		return fmt.Errorf("opening edges file: %w", err)
	}
	defer edgesFile.Close()

	rawEdges, err := snapshot.LoadRawEdgesCSV(edgesFile)
	if err != nil {
		return fmt.Errorf("loading edges: %w", err)
	}

	var merchants []string
	if cfg.MerchantsPath != "" {
		merchantsFile, err := os.Open(cfg.MerchantsPath)
		if err != nil {
			return fmt.Errorf("opening merchants file: %w", err)
		}
		defer merchantsFile.Close()

		merchants, err = snapshot.LoadMerchantsCSV(merchantsFile)
		if err != nil {
			return fmt.Errorf("loading merchants: %w", err)
		}
	}

	var metrics *export.Metrics
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = export.NewMetrics(reg)

		srv := &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fmt.Fprintf(os.Stderr, "lnsim: metrics server: %v\n", err)
			}
		}()
		defer srv.Close()
	}

	sim := simulator.New(cfg, rawEdges, merchants)

	start := time.Now()
	report, err := sim.Simulate(context.Background())
	if err != nil {
		return fmt.Errorf("running simulation: %w", err)
	}

	if metrics != nil {
		metrics.RunDurationSeconds.Observe(time.Since(start).Seconds())
		metrics.Observe(report.Paths, report.RouterFees, report.DepletionCounts)
		if report.OptimalFees != nil {
			metrics.ObserveOptimalFees(report.OptimalFees)
		}
	}

	if err := report.Export(cfg.OutputDir); err != nil {
		return fmt.Errorf("exporting results: %w", err)
	}

	return nil
}

// useLogging wires a stderr-backed logger into every package that exposes
// UseLogger, at the level named by cfg.DebugLevel, mirroring lnd's own
// subsystem-logger bring-up in its main command (one named sub-logger per
// package, all sharing a single backend).
func useLogging(debugLevel string) {
	backend := build.LoggingBackend(os.Stderr)

	level, ok := btclog.LevelFromString(debugLevel)
	if !ok {
		level = btclog.LevelInfo
	}

	newLogger := func(subsystem string) btclog.Logger {
		l := backend.Logger(subsystem)
		l.SetLevel(level)
		return l
	}

	snapshot.UseLogger(newLogger("SNAP"))
	sampler.UseLogger(newLogger("SAMP"))
	capacity.UseLogger(newLogger("CAPS"))
	graph.UseLogger(newLogger("GRPH"))
	genetic.UseLogger(newLogger("GNTC"))
	pathengine.UseLogger(newLogger("PATH"))
	sweep.UseLogger(newLogger("SWEP"))
	feeopt.UseLogger(newLogger("FEOP"))
	export.UseLogger(newLogger("EXPT"))
	simulator.UseLogger(newLogger("SIMU"))
}
