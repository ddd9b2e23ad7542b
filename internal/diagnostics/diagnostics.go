// Package diagnostics is the logger collaborator spec.md §6 names but
// leaves unspecified ("info/success/error messages routed to a logger
// collaborator; the emitter itself does not format or transport
// them"). The emitter and parser never import this package directly —
// only internal/driver and the cmd/nuua entry point do, at the edge.
package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Sink receives formatted diagnostic messages from a compile run.
type Sink interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// StderrSink is the default Sink: plain text piped through a file, or
// colorized when the destination is an interactive terminal.
type StderrSink struct {
	w       io.Writer
	colored bool
}

// NewStderrSink builds a Sink writing to os.Stderr, enabling color
// only when os.Stderr is a real TTY.
func NewStderrSink() *StderrSink {
	return &StderrSink{
		w:       os.Stderr,
		colored: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

func (s *StderrSink) print(c *color.Color, prefix, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if s.colored {
		fmt.Fprintln(s.w, c.Sprintf("%s %s", prefix, msg))
		return
	}
	fmt.Fprintf(s.w, "%s %s\n", prefix, msg)
}

func (s *StderrSink) Info(format string, args ...interface{}) {
	s.print(color.New(color.FgCyan), "[info]", format, args...)
}

func (s *StderrSink) Success(format string, args ...interface{}) {
	s.print(color.New(color.FgGreen), "[ok]", format, args...)
}

func (s *StderrSink) Warn(format string, args ...interface{}) {
	s.print(color.New(color.FgYellow), "[warn]", format, args...)
}

func (s *StderrSink) Error(format string, args ...interface{}) {
	s.print(color.New(color.FgRed), "[error]", format, args...)
}

// NullSink discards every message; useful in tests that exercise the
// driver without wanting console noise.
type NullSink struct{}

func (NullSink) Info(string, ...interface{})    {}
func (NullSink) Success(string, ...interface{}) {}
func (NullSink) Warn(string, ...interface{})    {}
func (NullSink) Error(string, ...interface{})   {}
