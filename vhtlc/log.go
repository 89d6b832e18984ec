package vhtlc

import (
	"github.com/btcsuite/btclog"

	"github.com/arkade-os/boltz-swap-go/internal/buildlog"
)

var log btclog.Logger = buildlog.NewSubLogger("VHTC")

// UseLogger installs logger as the package-wide logger, overriding the
// default. Not used concurrently with logging calls.
func UseLogger(logger btclog.Logger) { log = logger }

// DisableLog silences the package's logger.
func DisableLog() { log = btclog.Disabled }
