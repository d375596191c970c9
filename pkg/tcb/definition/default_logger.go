package definition

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// DefaultLogger backs Logger with logrus, giving every component leveled,
// field-structured logging. Level prefixes are colorized with fatih/color
// when writing to a terminal.
type DefaultLogger struct {
	entry *logrus.Entry
}

// NewDefaultLogger builds the logger used when a caller doesn't supply its
// own. name is attached to every line as the "component" field (e.g. a peer
// id or "transport").
func NewDefaultLogger(name string) *DefaultLogger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&colorLevelFormatter{})
	return &DefaultLogger{entry: log.WithField("component", name)}
}

func (l *DefaultLogger) Info(v ...interface{})                   { l.entry.Info(v...) }
func (l *DefaultLogger) Infof(format string, v ...interface{})    { l.entry.Infof(format, v...) }
func (l *DefaultLogger) Warn(v ...interface{})                    { l.entry.Warn(v...) }
func (l *DefaultLogger) Warnf(format string, v ...interface{})    { l.entry.Warnf(format, v...) }
func (l *DefaultLogger) Error(v ...interface{})                   { l.entry.Error(v...) }
func (l *DefaultLogger) Errorf(format string, v ...interface{})   { l.entry.Errorf(format, v...) }
func (l *DefaultLogger) Debug(v ...interface{})                   { l.entry.Debug(v...) }
func (l *DefaultLogger) Debugf(format string, v ...interface{})   { l.entry.Debugf(format, v...) }
func (l *DefaultLogger) Fatal(v ...interface{})                   { l.entry.Fatal(v...) }
func (l *DefaultLogger) Fatalf(format string, v ...interface{})   { l.entry.Fatalf(format, v...) }

func (l *DefaultLogger) ToggleDebug(enabled bool) bool {
	if enabled {
		l.entry.Logger.SetLevel(logrus.DebugLevel)
	} else {
		l.entry.Logger.SetLevel(logrus.InfoLevel)
	}
	return enabled
}

// colorLevelFormatter renders "[LEVEL] message component=..." lines, with
// the level tag colorized by severity.
type colorLevelFormatter struct{}

func (f *colorLevelFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var c *color.Color
	switch e.Level {
	case logrus.DebugLevel:
		c = color.New(color.FgCyan)
	case logrus.InfoLevel:
		c = color.New(color.FgGreen)
	case logrus.WarnLevel:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgRed)
	}

	level := c.Sprintf("[%s]", fmtLevel(e.Level))
	line := fmt.Sprintf("%s %s", level, e.Message)
	for k, v := range e.Data {
		line += fmt.Sprintf(" %s=%v", k, v)
	}
	line += "\n"
	return []byte(line), nil
}

func fmtLevel(lvl logrus.Level) string {
	switch lvl {
	case logrus.DebugLevel:
		return "DEBUG"
	case logrus.InfoLevel:
		return "INFO"
	case logrus.WarnLevel:
		return "WARN"
	case logrus.ErrorLevel:
		return "ERROR"
	default:
		return "FATAL"
	}
}
