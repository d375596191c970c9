// Package definition holds the small set of interfaces a caller of pkg/tcb
// can swap out, starting with the logger.
package definition

// Logger is the logging surface every component (transport, engines,
// dispatcher) accepts. Callers may plug in their own implementation; if
// none is given, NewDefaultLogger provides one.
type Logger interface {
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})

	// ToggleDebug turns debug-level logging on or off and returns the new
	// state.
	ToggleDebug(enabled bool) bool
}
