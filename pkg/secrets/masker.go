// Package secrets hides credentials in debug output: the session token in
// headers, passwords in login and registry payloads, and stack environment
// variables whose names look sensitive.
package secrets

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

const replacement = "***"

// Visible prefix of tokens matched by value.
const tokenPrefix = 6

var defaultFields = []string{
	"*password*",
	"*passwd*",
	"*secret*",
	"*token*",
	"jwt",
	"*apikey*",
	"*api_key*",
	"*credential*",
	"*private_key*",
}

var defaultValues = []string{
	`eyJ[A-Za-z0-9_-]{4,}\.[A-Za-z0-9_-]{4,}\.[A-Za-z0-9_-]*`,
	`ptr_[A-Za-z0-9+/=]{20,}`,
}

var defaultHeaders = []string{"Authorization", "X-API-Key", "Cookie", "Set-Cookie"}

// Masker rewrites values that look secret.
type Masker struct {
	fields  []*regexp.Regexp
	values  []*regexp.Regexp
	headers map[string]bool
}

// New builds a masker. fields are case-insensitive globs over JSON keys,
// values are regular expressions over string values and free text.
func New(fields, values, headers []string) (*Masker, error) {
	m := &Masker{headers: make(map[string]bool, len(headers))}

	for _, f := range fields {
		re, err := globToRegexp(f)
		if err != nil {
			return nil, fmt.Errorf("invalid field pattern %q: %w", f, err)
		}
		m.fields = append(m.fields, re)
	}
	for _, v := range values {
		re, err := regexp.Compile(v)
		if err != nil {
			return nil, fmt.Errorf("invalid value pattern %q: %w", v, err)
		}
		m.values = append(m.values, re)
	}
	for _, h := range headers {
		m.headers[http.CanonicalHeaderKey(h)] = true
	}
	return m, nil
}

// Default returns the masker used by the API client.
func Default() *Masker {
	m, err := New(defaultFields, defaultValues, defaultHeaders)
	if err != nil {
		panic(err)
	}
	return m
}

// IsSecretField reports whether a JSON key or variable name is sensitive.
func (m *Masker) IsSecretField(name string) bool {
	for _, re := range m.fields {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Text masks token-shaped substrings, keeping a short prefix so tokens can
// still be told apart.
func (m *Masker) Text(s string) string {
	for _, re := range m.values {
		s = re.ReplaceAllStringFunc(s, partial)
	}
	return s
}

// Headers returns a copy of h with sensitive headers masked.
func (m *Masker) Headers(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for key, values := range h {
		if !m.headers[http.CanonicalHeaderKey(key)] {
			out[key] = values
			continue
		}
		masked := make([]string, len(values))
		for i, v := range values {
			scheme, _, found := strings.Cut(v, " ")
			if found {
				masked[i] = scheme + " " + replacement
			} else {
				masked[i] = replacement
			}
		}
		out[key] = masked
	}
	return out
}

// Body masks a request or response body. JSON is walked key by key; other
// content is treated as text.
func (m *Masker) Body(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return m.Text(string(body))
	}
	masked, err := json.Marshal(m.walk(data))
	if err != nil {
		return m.Text(string(body))
	}
	return string(masked)
}

func (m *Masker) walk(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if value != nil && m.IsSecretField(key) {
				out[key] = replacement
				continue
			}
			out[key] = m.walk(value)
		}
		// Stack environment entries: {"name": "DB_PASSWORD", "value": "..."}.
		if name, ok := v["name"].(string); ok && m.IsSecretField(name) {
			if _, ok := v["value"]; ok {
				out["value"] = replacement
			}
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = m.walk(item)
		}
		return out
	case string:
		return m.Text(v)
	default:
		return v
	}
}

func partial(s string) string {
	if len(s) <= tokenPrefix {
		return replacement
	}
	return s[:tokenPrefix] + replacement
}

func globToRegexp(pattern string) (*regexp.Regexp, error) {
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.ReplaceAll(escaped, `\*`, ".*")
	escaped = strings.ReplaceAll(escaped, `\?`, ".")
	return regexp.Compile("(?i)^" + escaped + "$")
}
