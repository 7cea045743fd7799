// Package ccnlog is a thin wrapper over logrus, used by every other
// package in this module for level-gated Debugf/Warnf/Errorf calls at
// protocol-decision points, with no custom formatting layer.
package ccnlog

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Logger is an alias so callers can depend on this package instead of
// importing logrus directly, while getting the identical API.
type Logger = log.Logger

// init sets the default logger level from CCN_DEBUG: Debug when set,
// Info otherwise.
func init() {
	if os.Getenv("CCN_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// Default returns the package-level logrus logger.
func Default() *log.Logger { return log.StandardLogger() }

// New returns a fresh logger with the given field set attached, used by
// components (client handle, fetch stream, sync root) that want a
// consistently-tagged sub-logger.
func New(fields log.Fields) *log.Entry {
	return log.WithFields(fields)
}
