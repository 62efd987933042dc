package pathengine

import (
	"github.com/btcsuite/btclog"
	"github.com/ferencberes/lnroutesim/build"
)

var log btclog.Logger = build.NewSubLogger("PATH")

// UseLogger plugs a non-disabled logger into this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
