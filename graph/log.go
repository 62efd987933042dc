package graph

import (
	"github.com/btcsuite/btclog"
	"github.com/ferencberes/lnroutesim/build"
)

var log btclog.Logger = build.NewSubLogger("GRPH")

// UseLogger plugs a non-disabled logger into this package, following lnd's
// per-subsystem logging convention.
func UseLogger(logger btclog.Logger) {
	log = logger
}
