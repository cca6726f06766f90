package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/pterm/pterm"
)

// leadingColumns are shown first when present; the remaining columns follow
// in alphabetical order.
var leadingColumns = []string{"Id", "Name"}

// TableFormatter formats decoded JSON as a table using pterm.
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Name returns the formatter name.
func (f *TableFormatter) Name() string {
	return FormatTable
}

// Format renders a list of objects with one row per object, or a single
// object as a two-column key/value table.
func (f *TableFormatter) Format(w io.Writer, data interface{}, config *FormatConfig) error {
	if config == nil {
		config = NewFormatConfig()
	}

	var tableData [][]string
	switch v := data.(type) {
	case []interface{}:
		if len(v) == 0 {
			_, err := io.WriteString(w, "No results\n")
			return err
		}
		rows, err := f.formatList(v, config)
		if err != nil {
			return err
		}
		tableData = rows
	case map[string]interface{}:
		tableData = f.formatObject(v, config)
	default:
		return fmt.Errorf("unsupported data type for table formatting: %T", data)
	}

	table := pterm.DefaultTable.WithHasHeader(config.ShowHeaders)
	if config.Colors {
		table = table.WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold))
	} else {
		pterm.DisableColor()
		defer pterm.EnableColor()
	}

	rendered, err := table.WithData(tableData).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	_, err = io.WriteString(w, rendered+"\n")
	return err
}

func (f *TableFormatter) formatList(items []interface{}, config *FormatConfig) ([][]string, error) {
	seen := make(map[string]bool)
	var keys []string
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unsupported list element for table formatting: %T", item)
		}
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	columns := orderColumns(keys)

	tableData := make([][]string, 0, len(items)+1)
	if config.ShowHeaders {
		tableData = append(tableData, columns)
	}
	for _, item := range items {
		obj := item.(map[string]interface{})
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = formatValue(obj[col])
		}
		tableData = append(tableData, row)
	}
	return tableData, nil
}

func (f *TableFormatter) formatObject(obj map[string]interface{}, config *FormatConfig) [][]string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}

	tableData := make([][]string, 0, len(obj)+1)
	if config.ShowHeaders {
		tableData = append(tableData, []string{"KEY", "VALUE"})
	}
	for _, k := range orderColumns(keys) {
		tableData = append(tableData, []string{k, formatValue(obj[k])})
	}
	return tableData
}

func orderColumns(keys []string) []string {
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}

	out := make([]string, 0, len(keys))
	for _, k := range leadingColumns {
		if present[k] {
			out = append(out, k)
			delete(present, k)
		}
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// formatValue renders scalars plainly and nested values as compact JSON.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool, float64, json.Number:
		return fmt.Sprint(val)
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(encoded)
	}
}
