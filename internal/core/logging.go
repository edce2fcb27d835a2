package core

import (
	"io"

	"github.com/sirupsen/logrus"
)

// newDiscardLogger returns the logger used until a caller installs one:
// fully configured, writing nowhere. Components stay silent by default and
// SetLogger turns tracing on.
func newDiscardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)

	return logger
}
