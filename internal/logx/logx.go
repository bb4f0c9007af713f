// Package logx is the small level-gated logger used across the Zephyr
// core (allocator, GC, scheduler, event loop). It wraps the standard
// library's log.Logger rather than reaching for a structured-logging
// dependency the rest of the core never imports.
package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Level is a logging severity.
type Level int32

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger gates a standard logger by a minimum level that can be changed
// concurrently (the CLI's -q / --pst flags flip it at startup).
type Logger struct {
	std *log.Logger
	min atomic.Int32
}

// New creates a Logger writing to w with the given minimum level.
func New(w io.Writer, min Level) *Logger {
	l := &Logger{std: log.New(w, "", log.LstdFlags|log.Lmicroseconds)}
	l.min.Store(int32(min))
	return l
}

// Default is the process-wide logger used by package-level helpers; call
// sites that need an isolated logger (tests, embedding) should construct
// their own with New instead of relying on the global.
var Default = New(os.Stderr, Info)

// SetLevel changes the minimum level gated for future log calls.
func (l *Logger) SetLevel(lv Level) { l.min.Store(int32(lv)) }

func (l *Logger) enabled(lv Level) bool { return int32(lv) >= l.min.Load() }

func (l *Logger) log(lv Level, component, format string, args ...interface{}) {
	if !l.enabled(lv) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.std.Printf("[%s] %-5s %s", component, lv, msg)
}

func (l *Logger) Debugf(component, format string, args ...interface{}) { l.log(Debug, component, format, args...) }
func (l *Logger) Infof(component, format string, args ...interface{})  { l.log(Info, component, format, args...) }
func (l *Logger) Warnf(component, format string, args ...interface{})  { l.log(Warn, component, format, args...) }
func (l *Logger) Errorf(component, format string, args ...interface{}) { l.log(Error, component, format, args...) }
