// Package progress shows a spinner while a command waits on the API.
//
// The spinner is only drawn when the target writer is a terminal, so
// output piped into other tools or captured by CI stays clean.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Config says whether and where to draw.
type Config struct {
	Enabled bool
	Writer  io.Writer
}

// DefaultConfig draws on stderr when it is a terminal.
func DefaultConfig() *Config {
	return ConfigFor(os.Stderr)
}

// ConfigFor draws on w when it is a terminal.
func ConfigFor(w io.Writer) *Config {
	return &Config{Enabled: IsTerminal(w), Writer: w}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Spinner is a single-use pterm spinner. A disabled spinner does nothing.
type Spinner struct {
	config  *Config
	printer *pterm.SpinnerPrinter
}

// NewSpinner returns a spinner for config, or DefaultConfig when nil.
func NewSpinner(config *Config) *Spinner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Spinner{config: config}
}

// Start draws message until Stop.
func (s *Spinner) Start(message string) error {
	if !s.config.Enabled {
		return nil
	}
	if s.printer != nil {
		return fmt.Errorf("spinner already active")
	}

	p := pterm.DefaultSpinner.WithRemoveWhenDone(true)
	if s.config.Writer != nil {
		p = p.WithWriter(s.config.Writer)
	}
	started, err := p.Start(message)
	if err != nil {
		return fmt.Errorf("failed to start spinner: %w", err)
	}
	s.printer = started
	return nil
}

// Stop removes the spinner.
func (s *Spinner) Stop() {
	if s.printer == nil {
		return
	}
	_ = s.printer.Stop()
	s.printer = nil
}

// Run shows message while fn runs. fn still runs when the spinner cannot
// be drawn.
func Run(config *Config, message string, fn func() error) error {
	s := NewSpinner(config)
	if err := s.Start(message); err == nil {
		defer s.Stop()
	}
	return fn()
}
