package swapmonitor

import (
	"github.com/btcsuite/btclog"

	"github.com/arkade-os/boltz-swap-go/internal/buildlog"
)

var log btclog.Logger = buildlog.NewSubLogger("SWPM")

// UseLogger installs logger as the package-wide logger.
func UseLogger(logger btclog.Logger) { log = logger }

// DisableLog silences the package's logger.
func DisableLog() { log = btclog.Disabled }
