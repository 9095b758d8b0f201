//go:build !tinygo

package cc1101

import (
	"github.com/sirupsen/logrus"
)

func init() {
	globalLogger = NewLogrusLogger(logrus.StandardLogger().WithField("driver", "cc1101"))
}

// logrusLogger forwards driver messages to a logrus entry.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger returns a Logger writing to entry. The default host logger
// uses the logrus standard logger with the field driver=cc1101.
func NewLogrusLogger(entry *logrus.Entry) Logger {
	return &logrusLogger{entry: entry}
}

func (l *logrusLogger) Debug(msg string) { l.entry.Debug(msg) }
func (l *logrusLogger) Info(msg string)  { l.entry.Info(msg) }
func (l *logrusLogger) Warn(msg string)  { l.entry.Warn(msg) }
func (l *logrusLogger) Error(msg string) { l.entry.Error(msg) }
