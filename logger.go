package cc1101

// Logger receives the driver's diagnostic messages. Messages are plain strings
// so that TinyGo builds do not need a formatting layer in the logger itself.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

var globalLogger Logger = nopLogger{}

// SetLogger replaces the logger used by every Device. A nil logger silences
// the driver.
func SetLogger(l Logger) {
	if l == nil {
		globalLogger = nopLogger{}
		return
	}
	globalLogger = l
}

// Severity orders log messages for MinSeverity.
type Severity uint8

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

// MinSeverity returns a Logger that forwards to l only the messages at or
// above min.
func MinSeverity(l Logger, min Severity) Logger {
	return &filteredLogger{next: l, min: min}
}

type filteredLogger struct {
	next Logger
	min  Severity
}

func (l *filteredLogger) Debug(msg string) {
	if l.min <= SeverityDebug {
		l.next.Debug(msg)
	}
}

func (l *filteredLogger) Info(msg string) {
	if l.min <= SeverityInfo {
		l.next.Info(msg)
	}
}

func (l *filteredLogger) Warn(msg string) {
	if l.min <= SeverityWarn {
		l.next.Warn(msg)
	}
}

func (l *filteredLogger) Error(msg string) { l.next.Error(msg) }

type nopLogger struct{}

func (nopLogger) Debug(msg string) {}
func (nopLogger) Info(msg string)  {}
func (nopLogger) Warn(msg string)  {}
func (nopLogger) Error(msg string) {}
