// Package vlog centralizes structured logging setup for the interpreter on
// commonlog.Configure + commonlog/simple as the concrete backend, with one
// namespaced logger per subsystem rather than a single hardcoded logger.
package vlog

import (
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

// Configure sets global log verbosity from a level name: debug, info,
// notice, warning, error. Unrecognized names fall back to warning.
func Configure(level string) {
	verbosity := 2
	switch level {
	case "debug":
		verbosity = 5
	case "info":
		verbosity = 4
	case "notice":
		verbosity = 3
	case "warning":
		verbosity = 2
	case "error":
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)
}

// For returns a namespaced logger, e.g. vlog.For("driver") -> "vcl.driver".
func For(name string) commonlog.Logger {
	return commonlog.GetLogger("vcl." + name)
}
