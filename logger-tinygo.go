//go:build tinygo

package cc1101

import (
	"machine"
)

func init() {
	globalLogger = MinSeverity(&serialLogger{}, SeverityInfo)
}

// serialLogger writes to machine.Serial directly to keep fmt and its
// allocations out of the interrupt path.
type serialLogger struct{}

func (l *serialLogger) log(prefix, msg string) {
	machine.Serial.Write([]byte(prefix))
	machine.Serial.Write([]byte(msg))
	machine.Serial.Write([]byte("\r\n"))
}

func (l *serialLogger) Debug(msg string) { l.log("cc1101 DEBUG ", msg) }
func (l *serialLogger) Info(msg string)  { l.log("cc1101 INFO  ", msg) }
func (l *serialLogger) Warn(msg string)  { l.log("cc1101 WARN  ", msg) }
func (l *serialLogger) Error(msg string) { l.log("cc1101 ERROR ", msg) }
