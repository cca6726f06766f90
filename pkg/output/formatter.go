// Package output renders API responses and command results.
//
// The request command prints response bodies verbatim by default ("raw");
// json, yaml and table re-render the decoded document.
package output

import (
	"io"
)

// Format names accepted by --output.
const (
	FormatRaw   = "raw"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// Formatter writes data in one output format.
type Formatter interface {
	Format(w io.Writer, data interface{}, config *FormatConfig) error
	Name() string
}

// FormatConfig holds presentation options shared by the formatters.
type FormatConfig struct {
	// Pretty indents JSON.
	Pretty bool
	// Colors styles table headers.
	Colors      bool
	ShowHeaders bool
}

// NewFormatConfig returns the options used on a terminal.
func NewFormatConfig() *FormatConfig {
	return &FormatConfig{Pretty: true, Colors: true, ShowHeaders: true}
}
