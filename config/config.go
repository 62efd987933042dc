// Package config defines the simulation's external configuration surface
// (spec.md §6a), bound from CLI flags via github.com/jessevdk/go-flags the
// way lnd's sibling tools (see the regolancer-style configParams pattern in
// the wider retrieval pack) declare one struct field per flag with a `long`
// tag and a human-readable `description`.
package config

import (
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Config is the full set of knobs spec.md §6 enumerates for one simulation
// run.
type Config struct {
	EdgesPath     string `long:"edges" description:"path to the raw channel snapshot CSV" required:"true"`
	MerchantsPath string `long:"merchants" description:"path to the merchant pub_key CSV"`
	OutputDir     string `long:"output" description:"directory all output artifacts are written to" default:"./output"`
	Seed          int64  `long:"seed" description:"root random seed all derived RNG streams are seeded from"`

	Amount  int64   `long:"amount" description:"payment amount in satoshi" required:"true"`
	Count   int     `long:"count" description:"number of transactions to sample"`
	Epsilon float64 `long:"epsilon" description:"merchant-bias ratio in [0,1] used when sampling transaction targets" default:"0.8"`

	WithDepletion bool   `long:"with-depletion" description:"track and deplete channel capacity while routing; without it, paths are static min-fee paths"`
	DropDisabled  bool   `long:"drop-disabled" description:"drop disabled edges during preprocessing"`
	DropLowCap    bool   `long:"drop-low-cap" description:"drop edges with capacity below amount during preprocessing"`
	TimeWindow    *int64 `long:"time-window" description:"drop edges last updated more than this many seconds before the most recent update"`
	TsUpperBound  *int64 `long:"ts-upper-bound" description:"drop edges last updated at or after this unix timestamp"`

	Weight string `long:"weight" description:"edge weight column used for shortest-path search" default:"total_fee"`

	WithNodeRemovals bool     `long:"with-node-removals" description:"run the counterfactual sweep and fee optimizer"`
	MaxThreads       int      `long:"max-threads" description:"worker pool size for the counterfactual sweep" default:"2"`
	Excluded         []string `long:"excluded" description:"node id to remove from the search graph before routing (may be repeated)"`

	RequiredLength *int `long:"required-length" description:"target hop count for the genetic path extender"`

	CapChangeNodes   []string `long:"cap-change-node" description:"node id whose incident edges have capacity scaled by capacity-fraction (may be repeated)"`
	CapacityFraction float64  `long:"capacity-fraction" description:"fraction applied to cap-change-node edges' capacity" default:"1.0"`

	MinRatio float64 `long:"min-ratio" description:"retained-traffic floor at which the fee optimizer's threshold sweep stops"`

	DebugLevel string `long:"debuglevel" description:"logging level: trace, debug, info, warn, error, critical, off" default:"info"`

	MetricsAddr string `long:"metrics-addr" description:"if set, serve prometheus metrics on this address for the run's duration"`
}

// Parse binds args (typically os.Args[1:]) into a Config via go-flags and
// validates it.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}

	if _, err := flags.NewParser(cfg, flags.Default).ParseArgs(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration surface's documented ranges (spec.md
// §6). It is deliberately not a simerrors.Error: these are CLI usage
// mistakes caught before the simulation pipeline ever runs, not a fatal
// condition the pipeline itself can hit.
func (c *Config) Validate() error {
	if c.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", c.Amount)
	}
	if c.Count < 0 {
		return fmt.Errorf("count must be non-negative, got %d", c.Count)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon must be in [0,1], got %f", c.Epsilon)
	}
	if c.MaxThreads < 0 {
		return fmt.Errorf("max-threads must be non-negative, got %d", c.MaxThreads)
	}
	if c.CapacityFraction <= 0 || c.CapacityFraction > 1 {
		return fmt.Errorf("capacity-fraction must be in (0,1], got %f", c.CapacityFraction)
	}
	if c.MinRatio < 0 || c.MinRatio > 1 {
		return fmt.Errorf("min-ratio must be in [0,1], got %f", c.MinRatio)
	}
	if c.RequiredLength != nil && *c.RequiredLength < 3 {
		return fmt.Errorf("required-length must be >= 3 to have any effect, got %d", *c.RequiredLength)
	}
	return nil
}
