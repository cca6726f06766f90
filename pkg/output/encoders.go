package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type encodeFunc func(w io.Writer, data interface{}, config *FormatConfig) error

// encoder adapts an encodeFunc to Formatter.
type encoder struct {
	name   string
	encode encodeFunc
}

func (e encoder) Name() string { return e.name }

func (e encoder) Format(w io.Writer, data interface{}, config *FormatConfig) error {
	if config == nil {
		config = NewFormatConfig()
	}
	return e.encode(w, data, config)
}

// encodeRaw writes bodies unchanged; anything else is compact JSON.
func encodeRaw(w io.Writer, data interface{}, _ *FormatConfig) error {
	var body []byte
	switch v := data.(type) {
	case nil:
		return nil
	case []byte:
		body = v
	case json.RawMessage:
		body = v
	case string:
		body = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		body = b
	}

	if !bytes.HasSuffix(body, []byte("\n")) {
		body = append(body[:len(body):len(body)], '\n')
	}
	_, err := w.Write(body)
	return err
}

func encodeJSON(w io.Writer, data interface{}, config *FormatConfig) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if config.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func encodeYAML(w io.Writer, data interface{}, _ *FormatConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
