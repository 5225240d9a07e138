// Package logging wraps logrus with the structured field style used across
// the service.
package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields is structured log context attached to a single message.
type Fields map[string]interface{}

// Logger is a named structured logger.
type Logger struct {
	entry *logrus.Entry
}

// New creates a logger tagged with a component name. The level comes from
// LOG_LEVEL (debug, info, warn, error), defaulting to info.
func New(component string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(levelFromEnv())

	return &Logger{
		entry: l.WithField("component", component),
	}
}

func levelFromEnv() logrus.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func (l *Logger) withFields(fields Fields) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	return l.entry.WithFields(logrus.Fields(fields))
}

func (l *Logger) Debug(msg string, fields Fields) {
	l.withFields(fields).Debug(msg)
}

func (l *Logger) Info(msg string, fields Fields) {
	l.withFields(fields).Info(msg)
}

func (l *Logger) Warn(msg string, fields Fields) {
	l.withFields(fields).Warn(msg)
}

func (l *Logger) Error(msg string, fields Fields) {
	l.withFields(fields).Error(msg)
}
