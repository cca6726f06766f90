// Package portainer is the authenticated gateway to the Portainer REST API.
//
// Every call goes through Client.Request, which builds the URL from the
// configured base URL, attaches the session token as a Bearer header,
// honours the proxy settings and turns any non-2xx response into a
// *RemoteAPIError. Typed helpers for the endpoints the CLI needs live in
// api.go.
package portainer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ilhasoft/portainer-cli/pkg/config"
	"github.com/ilhasoft/portainer-cli/pkg/secrets"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	// BaseURL is the Portainer root, e.g. "http://localhost:9000/".
	BaseURL string
	// Token is sent as a Bearer token when non-empty.
	Token string
	Proxy config.Proxy
	// Timeout defaults to DefaultTimeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
	// Masker hides secrets in debug output. Defaults to secrets.Default.
	Masker *secrets.Masker
}

// Client sends requests to the Portainer API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.SugaredLogger
	masker     *secrets.Masker
}

// Response is a successful API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into out.
func (r *Response) Decode(out interface{}) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// New creates a client from opts.
func New(opts Options) (*Client, error) {
	baseURL, err := config.NormalizeBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		// Only the proxy passed in applies; the environment is not consulted.
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = nil
		if !opts.Proxy.IsEmpty() {
			transport.Proxy = opts.Proxy.Func()
		}
		httpClient = &http.Client{Timeout: timeout, Transport: transport}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	masker := opts.Masker
	if masker == nil {
		masker = secrets.Default()
	}

	return &Client{
		baseURL:    baseURL,
		token:      opts.Token,
		httpClient: httpClient,
		logger:     logger,
		masker:     masker,
	}, nil
}

// NewFromProfile creates a client for the stored profile.
func NewFromProfile(profile *config.Profile, proxy config.Proxy, logger *zap.SugaredLogger) (*Client, error) {
	if profile == nil {
		profile = config.DefaultProfile()
	}
	return New(Options{
		BaseURL: profile.BaseURL,
		Token:   profile.JWT,
		Proxy:   proxy,
		Logger:  logger,
	})
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the absolute URL for an API path such as "stacks/3".
func (c *Client) URL(path string) string {
	return c.baseURL + "api/" + strings.TrimPrefix(path, "/")
}

// Request sends method to path. A string, []byte or json.RawMessage body
// that is already valid JSON is sent verbatim; any other non-nil body is
// JSON encoded. Non-2xx responses are returned as *RemoteAPIError.
func (c *Client) Request(ctx context.Context, path, method string, body interface{}) (*Response, error) {
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	url := c.URL(path)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debugw("request",
		"method", method,
		"url", url,
		"headers", c.masker.Headers(req.Header),
		"body", c.masker.Body(payload),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debugw("response",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"body", c.masker.Body(respBody),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteAPIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       respBody,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// Do sends a request and decodes the response into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.Request(ctx, path, method, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

func encodeBody(body interface{}) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if len(b) == 0 {
			return nil, nil
		}
		if !json.Valid(b) {
			return nil, fmt.Errorf("request body is not valid JSON")
		}
		return b, nil
	case []byte:
		return encodeText(string(b))
	case string:
		return encodeText(b)
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		return data, nil
	}
}

// encodeText passes JSON text through and encodes anything else as a JSON
// string.
func encodeText(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, nil
}
