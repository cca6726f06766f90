package portainer

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhasoft/portainer-cli/pkg/config"
)

func transportOf(t *testing.T, c *Client) *http.Transport {
	t.Helper()
	tr, ok := c.httpClient.Transport.(*http.Transport)
	require.True(t, ok)
	return tr
}

func TestNew_IgnoresProxyEnvironment(t *testing.T) {
	t.Setenv("http_proxy", "http://lowercase-proxy:3128")
	t.Setenv("HTTPS_PROXY", "http://env-proxy:3128")

	c, err := New(Options{BaseURL: "http://portainer.example.com:9000"})
	require.NoError(t, err)
	assert.Nil(t, transportOf(t, c).Proxy)
}

func TestNew_UsesGivenProxy(t *testing.T) {
	c, err := New(Options{
		BaseURL: "https://portainer.example.com",
		Proxy:   config.Proxy{HTTPS: "http://secure-proxy:3128"},
	})
	require.NoError(t, err)

	proxy := transportOf(t, c).Proxy
	require.NotNil(t, proxy)
	req, _ := http.NewRequest(http.MethodGet, c.URL("stacks"), nil)
	u, err := proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "secure-proxy:3128", u.Host)
}
