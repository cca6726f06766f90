package config

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v9"
)

// Proxy is the outbound proxy configuration read from the environment.
// It is parsed once and passed by value to the API client.
type Proxy struct {
	HTTP  string `env:"HTTP_PROXY"`
	HTTPS string `env:"HTTPS_PROXY"`
}

// LoadProxy parses HTTP_PROXY and HTTPS_PROXY from the process environment.
func LoadProxy() (Proxy, error) {
	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environ[k] = v
		}
	}
	return loadProxyFrom(environ)
}

func loadProxyFrom(environ map[string]string) (Proxy, error) {
	var p Proxy
	if err := env.ParseWithOptions(&p, env.Options{Environment: environ}); err != nil {
		return Proxy{}, fmt.Errorf("parsing proxy config: %w", err)
	}
	return p, p.validate()
}

// IsEmpty reports whether no proxy is configured.
func (p Proxy) IsEmpty() bool {
	return p.HTTP == "" && p.HTTPS == ""
}

// Map returns the scheme to proxy URL mapping. It is empty when no proxy
// variable is set.
func (p Proxy) Map() map[string]string {
	m := make(map[string]string, 2)
	if p.HTTP != "" {
		m["http"] = p.HTTP
	}
	if p.HTTPS != "" {
		m["https"] = p.HTTPS
	}
	return m
}

// Func returns a function suitable for http.Transport.Proxy. Loopback
// targets are never proxied.
func (p Proxy) Func() func(*http.Request) (*url.URL, error) {
	m := p.Map()
	return func(req *http.Request) (*url.URL, error) {
		raw, ok := m[req.URL.Scheme]
		if !ok || isLoopback(req.URL.Hostname()) {
			return nil, nil
		}
		return url.Parse(raw)
	}
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (p Proxy) validate() error {
	for scheme, raw := range p.Map() {
		if _, err := url.Parse(raw); err != nil {
			return fmt.Errorf("invalid %s proxy URL %q: %w", scheme, raw, err)
		}
	}
	return nil
}
