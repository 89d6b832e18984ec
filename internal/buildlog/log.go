// Package buildlog centralizes the btclog backend wiring shared by
// every package's log.go, so each of those stays the usual three-line
// boilerplate (package-level log var, UseLogger, DisableLog) in the
// style of the teacher's per-subsystem loggers (peerLog, srvrLog, ...).
package buildlog

import (
	"os"

	"github.com/btcsuite/btclog"
)

var backend = btclog.NewBackend(os.Stdout)

// NewSubLogger returns a new logger tagged with subsystem, used as the
// default logger for a package before the host application calls
// UseLogger to install its own.
func NewSubLogger(subsystem string) btclog.Logger {
	return backend.Logger(subsystem)
}
