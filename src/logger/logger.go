// This file is part of godchecker.

// godchecker is free software released under the MIT License.
// See LICENSE.md file for details.

// Package logger configures the process-wide logrus logger.
package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup applies level and format ("text" or "json") and returns the root
// entry components log through.
func Setup(level, format string) *logrus.Entry {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logrus.NewEntry(logrus.StandardLogger())
}
