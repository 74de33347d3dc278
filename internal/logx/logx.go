// Package logx is a small leveled wrapper over the standard log package,
// grounded on the original implementation's log.h: four levels, a
// settable minimum, and automatic file:line tagging. It is still plain
// stdlib log underneath — there is no ecosystem logging library anywhere
// in the example corpus to reach for instead (see DESIGN.md).
package logx

import (
	"fmt"
	"log"
	"os"
)

type Level int

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
		return "?"
	}
}

// Logger is a named, leveled sink. Construct one with New; a nil *Logger
// discards every message.
type Logger struct {
	name string
	min  Level
	out  *log.Logger
}

// New opens (or creates) a log file named "<name>.log" inside dir and
// returns a Logger that writes to that file, matching log_init(name)
// writing "in the same directory as the socket path". If dir is empty, or
// the file cannot be opened, it logs to stderr instead.
func New(name, dir string) *Logger {
	var w *os.File = os.Stderr
	if dir != "" {
		if f, err := os.OpenFile(dir+"/"+name+".log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600); err == nil {
			w = f
		}
	}
	return &Logger{
		name: name,
		min:  Info,
		out:  log.New(w, "", log.LstdFlags|log.Lshortfile),
	}
}

// SetLevel sets the minimum level that is actually written (log_set_level).
func (l *Logger) SetLevel(lv Level) { l.min = lv }

func (l *Logger) write(lv Level, format string, args ...any) {
	if l == nil || lv < l.min {
		return
	}
	l.out.Output(3, fmt.Sprintf("[%s] %s", lv, fmt.Sprintf(format, args...)))
}

func (l *Logger) Debugf(format string, args ...any) { l.write(Debug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.write(Info, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.write(Warn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.write(Error, format, args...) }
