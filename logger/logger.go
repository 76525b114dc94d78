// Package logger holds the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is shared by every package that logs. Engine packages stay silent
// apart from the accelerator fallback warning.
var Logger *logrus.Logger

func init() {
	Logger = logrus.New()

	// Diagnostics go to stderr so tables printed on stdout stay clean.
	Logger.SetOutput(os.Stderr)

	SetLevel(os.Getenv("LOG_LEVEL"))
	SetFormat(os.Getenv("LOG_FORMAT"))
}

// SetLevel parses a level name (debug, info, warn, error). Unknown names fall back to info.
//
// Arguments:
// - level: The level name, case-insensitive.
//
// Returns:
// - The level that was applied.
func SetLevel(level string) logrus.Level {
	var l logrus.Level
	switch strings.ToLower(level) {
	case "debug":
		l = logrus.DebugLevel
	case "warn", "warning":
		l = logrus.WarnLevel
	case "error":
		l = logrus.ErrorLevel
	default:
		l = logrus.InfoLevel
	}
	Logger.SetLevel(l)
	return l
}

// SetFormat switches between the JSON formatter (default) and a colored text
// formatter for interactive use ("text").
func SetFormat(format string) {
	if strings.EqualFold(format, "text") {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		return
	}
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// WithFields creates a new entry with the given fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithField creates a new entry with a single field
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithError creates a new entry with an error field
func WithError(err error) *logrus.Entry {
	return Logger.WithError(err)
}
