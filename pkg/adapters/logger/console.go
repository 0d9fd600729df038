// Package logger provides logging implementations.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/user/camgrid/pkg/ports"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// output is shared by a logger and every logger derived from it, so lines
// from concurrent merge jobs never interleave.
type output struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
	color  bool
}

// ConsoleLogger writes translated log lines to the console. Warnings and
// errors go to stderr.
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	out       *output
}

// NewConsole creates a console logger on os.Stdout and os.Stderr. Color is
// enabled when stdout is a terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	fd := os.Stdout.Fd()
	return NewConsoleTo(level, os.Stdout, os.Stderr, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// NewConsoleTo creates a console logger writing to the given streams.
func NewConsoleTo(level ports.LogLevel, stdout, stderr io.Writer, color bool) *ConsoleLogger {
	return &ConsoleLogger{
		level: level,
		out:   &output{stdout: stdout, stderr: stderr, color: color},
	}
}

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) { l.log(ports.LevelDebug, msg, args) }
func (l *ConsoleLogger) Info(msg string, args ...interface{}) { l.log(ports.LevelInfo, msg, args) }
func (l *ConsoleLogger) Warn(msg string, args ...interface{}) { l.log(ports.LevelWarn, msg, args) }
func (l *ConsoleLogger) Error(msg string, args ...interface{}) { l.log(ports.LevelError, msg, args) }

// WithComponent returns a logger prefixing its lines with component. Nested
// components are joined with '/', e.g. "batch/resample".
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	if l.component != "" && component != "" {
		component = l.component + "/" + component
	}
	return &ConsoleLogger{level: l.level, component: component, out: l.out}
}

func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args []interface{}) {
	if level < l.level {
		return
	}

	line := l10n.F(msg, args...)
	color := l.out.color
	if l.component != "" {
		if color {
			line = fmt.Sprintf("%s[%s]%s %s", colorCyan, l.component, colorReset, line)
		} else {
			line = fmt.Sprintf("[%s] %s", l.component, line)
		}
	}

	if color {
		switch level {
		case ports.LevelDebug:
			line = colorGray + line + colorReset
		case ports.LevelWarn:
			line = colorYellow + line + colorReset
		case ports.LevelError:
			line = colorRed + line + colorReset
		}
	}

	w := l.out.stdout
	if level >= ports.LevelWarn {
		w = l.out.stderr
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	fmt.Fprintln(w, line)
}

var _ ports.Logger = (*ConsoleLogger)(nil)
