package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Manager looks formatters up by name.
type Manager struct {
	formatters map[string]Formatter
	config     *FormatConfig
}

// NewManager returns a manager with the raw, json, yaml and table formats.
func NewManager() *Manager {
	m := &Manager{
		formatters: make(map[string]Formatter),
		config:     NewFormatConfig(),
	}
	m.register(encoder{name: FormatRaw, encode: encodeRaw})
	m.register(encoder{name: FormatJSON, encode: encodeJSON})
	m.register(encoder{name: FormatYAML, encode: encodeYAML})
	m.register(NewTableFormatter())
	return m
}

func (m *Manager) register(f Formatter) {
	m.formatters[f.Name()] = f
}

// GetFormatter returns the named formatter; an empty name means raw.
func (m *Manager) GetFormatter(name string) (Formatter, error) {
	if name == "" {
		name = FormatRaw
	}
	f, ok := m.formatters[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %s)", name, strings.Join(m.Formats(), ", "))
	}
	return f, nil
}

// Formats returns the registered format names, sorted.
func (m *Manager) Formats() []string {
	names := make([]string, 0, len(m.formatters))
	for name := range m.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetConfig replaces the presentation options.
func (m *Manager) SetConfig(config *FormatConfig) {
	m.config = config
}

// FormatBody renders a response body. Raw output writes the body as is;
// the other formats decode it first. An empty body prints nothing.
func (m *Manager) FormatBody(w io.Writer, body []byte, format string) error {
	f, err := m.GetFormatter(format)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if f.Name() == FormatRaw {
		return f.Format(w, body, m.config)
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return fmt.Errorf("response is not JSON, use --output %s: %w", FormatRaw, err)
	}
	return f.Format(w, data, m.config)
}
