package registry

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhasoft/portainer-cli/pkg/portainer"
	"github.com/ilhasoft/portainer-cli/pkg/portainer/portainertest"
)

func newServer(t *testing.T) *portainertest.Server {
	t.Helper()
	srv := portainertest.NewServer(t)
	srv.OnJSON(http.MethodGet, "registries/5", http.StatusOK, portainer.Registry{
		ID:             5,
		Name:           "old",
		URL:            "http://y",
		Authentication: true,
		Username:       "deployer",
	})
	srv.OnJSON(http.MethodPut, "registries/5", http.StatusOK, nil)
	return srv
}

func TestUpdate_FallsBackToCurrent(t *testing.T) {
	srv := newServer(t)

	payload, err := Update(context.Background(), srv.Client(t, "t"), 5, Options{URL: "http://x"})
	require.NoError(t, err)

	want := portainer.RegistryUpdatePayload{
		Name:           "old",
		URL:            "http://x",
		Authentication: false,
		Username:       "deployer",
		Password:       "",
	}
	assert.Equal(t, want, *payload)

	var sent portainer.RegistryUpdatePayload
	srv.Last().DecodeBody(t, &sent)
	assert.Equal(t, want, sent)
	assert.JSONEq(t, `{"Name":"old","URL":"http://x","Authentication":false,"Username":"deployer","Password":""}`, string(srv.Last().Body))
}

func TestUpdate_Authentication(t *testing.T) {
	srv := newServer(t)

	_, err := Update(context.Background(), srv.Client(t, "t"), 5, Options{
		Name:           "hub",
		Authentication: true,
		Username:       "ci",
		Password:       "s3cret",
	})
	require.NoError(t, err)

	var sent portainer.RegistryUpdatePayload
	srv.Last().DecodeBody(t, &sent)
	assert.Equal(t, "hub", sent.Name)
	assert.Equal(t, "http://y", sent.URL)
	assert.True(t, sent.Authentication)
	assert.Equal(t, "ci", sent.Username)
	assert.Equal(t, "s3cret", sent.Password)
}

func TestUpdate_AuthenticationRequiresCredentials(t *testing.T) {
	for _, opts := range []Options{
		{Authentication: true},
		{Authentication: true, Username: "ci"},
		{Authentication: true, Password: "x"},
	} {
		srv := newServer(t)

		_, err := Update(context.Background(), srv.Client(t, "t"), 5, opts)
		assert.Error(t, err)
		assert.Empty(t, srv.Requests())
	}
}

func TestUpdate_GetFailureHalts(t *testing.T) {
	srv := portainertest.NewServer(t)

	_, err := Update(context.Background(), srv.Client(t, "t"), 9, Options{})
	assert.True(t, portainer.IsNotFound(err))
	assert.Equal(t, []string{"GET registries/9"}, srv.Keys())
}
