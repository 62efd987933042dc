// Package build provides the small set of helpers every other package in
// this module uses to wire up its subsystem logger. It mirrors lnd's own
// build.NewSubLogger convention: each package declares a package-level log
// variable backed by a disabled logger until the caller plugs in a real
// backend via UseLogger.
package build

import (
	"io"

	"github.com/btcsuite/btclog"
)

// NewSubLogger creates a named logger backed by the disabled backend. Callers
// that want output should pass a real btclog.Backend-derived logger to
// UseLogger on the returned value's owning package instead of constructing
// one directly.
func NewSubLogger(subsystem string) btclog.Logger {
	return btclog.Disabled
}

// LoggingBackend creates a btclog.Backend writing to the given target, for
// use by cmd/lnsim when a user asks for non-disabled logging.
func LoggingBackend(w io.Writer) *btclog.Backend {
	return btclog.NewBackend(w)
}
