// Package logging provides the console logger used by the CLI and importer.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	verboseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// ConsoleLogger writes log messages to stderr.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	out     io.Writer
	verbose bool
	styled  bool
	mu      sync.Mutex
}

// NewConsoleLogger creates a logger on stderr. Level prefixes are colored
// when stderr is a terminal and NO_COLOR is unset.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	styled := os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stderr.Fd()))
	return NewWriterLogger(os.Stderr, verbose, styled)
}

// NewWriterLogger creates a logger writing to w
func NewWriterLogger(w io.Writer, verbose, styled bool) *ConsoleLogger {
	return &ConsoleLogger{out: w, verbose: verbose, styled: styled}
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.write(verboseStyle, "[VERBOSE] ", format, args)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.write(lipgloss.Style{}, "", format, args)
}

// Warn logs problems that do not stop the run.
func (l *ConsoleLogger) Warn(format string, args ...interface{}) {
	l.write(warnStyle, "[WARN] ", format, args)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.write(errorStyle, "[ERROR] ", format, args)
}

func (l *ConsoleLogger) write(style lipgloss.Style, prefix, format string, args []interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if prefix != "" && l.styled {
		prefix = style.Render(prefix)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = fmt.Fprint(l.out, prefix+msg+"\n")
}
