package tpcsim

type Logger interface {
	Info(message string, module string)
	Error(string)
}

type nopLogger struct{}

func (nopLogger) Info(string, string) {}
func (nopLogger) Error(string)        {}

var logger Logger = nopLogger{}

func SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	logger = l
}

var logVerbosity int

// SetVerbosity sets how much the package reports: 0 only run level
// messages, 1 configuration and per-stage messages, 2 and above per event.
func SetVerbosity(v int) {
	logVerbosity = v
}

func GetLogger() Logger {
	return logger
}
