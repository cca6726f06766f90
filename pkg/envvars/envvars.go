// Package envvars parses stack environment variables and merges them into
// the environment a stack already has.
//
// Variables come either from a file of KEY=VALUE lines or from
// --env.KEY=VALUE command line tokens. A Map keeps insertion order so the
// payload sent to Portainer is stable.
package envvars

import (
	"github.com/ilhasoft/portainer-cli/pkg/portainer"
)

// Map is an ordered set of environment variables with unique names.
type Map struct {
	keys   []string
	values map[string]string
}

// New returns an empty map.
func New() *Map {
	return &Map{values: make(map[string]string)}
}

// FromPairs builds a map from Portainer's list form. A later duplicate name
// overwrites the earlier value but keeps the earlier position.
func FromPairs(pairs []portainer.Pair) *Map {
	m := New()
	for _, p := range pairs {
		m.Set(p.Name, p.Value)
	}
	return m
}

// Set adds or overwrites a variable.
func (m *Map) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value of key.
func (m *Map) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of variables.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the variable names in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Pairs returns the list form sent to Portainer. It is never nil, so an
// empty map encodes as [].
func (m *Map) Pairs() []portainer.Pair {
	pairs := make([]portainer.Pair, 0, m.Len())
	if m == nil {
		return pairs
	}
	for _, k := range m.keys {
		pairs = append(pairs, portainer.Pair{Name: k, Value: m.values[k]})
	}
	return pairs
}

// ToMap returns a plain map copy.
func (m *Map) ToMap() map[string]string {
	out := make(map[string]string, m.Len())
	if m == nil {
		return out
	}
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Merge combines the current environment with new variables. With clear the
// result is next alone, possibly empty. Otherwise current keys keep their
// order and take the value from next when present, followed by the keys
// only next has.
func Merge(current, next *Map, clear bool) *Map {
	out := New()
	if !clear {
		for _, k := range current.Keys() {
			v, _ := current.Get(k)
			out.Set(k, v)
		}
	}
	for _, k := range next.Keys() {
		v, _ := next.Get(k)
		out.Set(k, v)
	}
	return out
}

// ForUpdate returns the Env to send when updating a stack. Without new
// variables and without clear the current list is returned unchanged.
func ForUpdate(current []portainer.Pair, next *Map, provided, clear bool) []portainer.Pair {
	if !provided && !clear {
		return current
	}
	return Merge(FromPairs(current), next, clear).Pairs()
}
