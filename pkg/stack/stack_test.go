package stack

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhasoft/portainer-cli/pkg/envvars"
	"github.com/ilhasoft/portainer-cli/pkg/portainer"
	"github.com/ilhasoft/portainer-cli/pkg/portainer/portainertest"
)

const composeFile = `version: "3.7"
services:
  web:
    image: nginx:${TAG:-latest}
    deploy:
      replicas: 2
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newServer(t *testing.T) *portainertest.Server {
	t.Helper()
	srv := portainertest.NewServer(t)
	srv.OnJSON(http.MethodGet, "endpoints/1/docker/swarm", http.StatusOK, map[string]string{"ID": "swarm-1"})
	srv.OnJSON(http.MethodGet, "stacks", http.StatusOK, []portainer.Stack{
		{ID: 3, Name: "web", EndpointID: 1},
		{ID: 4, Name: "web", EndpointID: 2},
	})
	srv.OnJSON(http.MethodGet, "stacks/3", http.StatusOK, portainer.Stack{
		ID:         3,
		Name:       "web",
		EndpointID: 1,
		Env:        []portainer.Pair{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}},
	})
	srv.OnJSON(http.MethodGet, "stacks/3/file", http.StatusOK, portainer.StackFile{StackFileContent: composeFile})
	srv.OnJSON(http.MethodPut, "stacks/3", http.StatusOK, portainer.Stack{ID: 3, Name: "web"})
	srv.OnJSON(http.MethodPost, "stacks", http.StatusOK, portainer.Stack{ID: 9, Name: "api"})
	return srv
}

func newManager(t *testing.T, srv *portainertest.Server) *Manager {
	t.Helper()
	return NewManager(srv.Client(t, "token"), nil)
}

func TestCreate(t *testing.T) {
	srv := newServer(t)
	m := newManager(t, srv)

	s, err := m.Create(context.Background(), CreateOptions{
		Name:       "api",
		EndpointID: 1,
		StackFile:  writeFile(t, "docker-compose.yml", composeFile),
		Env:        envvars.Source{Args: []string{"--env.TAG=1.25", "--env.MODE=prod"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 9, s.ID)

	assert.Equal(t, []string{"GET endpoints/1/docker/swarm", "POST stacks"}, srv.Keys())
	post := srv.Last()
	assert.Equal(t, "endpointId=1&method=string&type=1", post.Query)

	var payload portainer.StackCreatePayload
	post.DecodeBody(t, &payload)
	assert.Equal(t, "api", payload.Name)
	assert.Equal(t, "swarm-1", payload.SwarmID)
	assert.Equal(t, composeFile, payload.StackFileContent)
	assert.Equal(t, []portainer.Pair{{Name: "TAG", Value: "1.25"}, {Name: "MODE", Value: "prod"}}, payload.Env)
}

func TestCreate_EmptyEnvIsList(t *testing.T) {
	srv := newServer(t)

	_, err := newManager(t, srv).Create(context.Background(), CreateOptions{
		Name:       "api",
		EndpointID: 1,
		StackFile:  writeFile(t, "docker-compose.yml", composeFile),
	})
	require.NoError(t, err)
	assert.Contains(t, string(srv.Last().Body), `"Env":[]`)
}

func TestCreate_SwarmFailureHalts(t *testing.T) {
	srv := portainertest.NewServer(t)
	srv.On(http.MethodGet, "endpoints/1/docker/swarm", portainertest.ErrorResponse(http.StatusInternalServerError, "This node is not a swarm manager"))

	_, err := NewManager(srv.Client(t, "t"), nil).Create(context.Background(), CreateOptions{
		Name:       "api",
		EndpointID: 1,
		StackFile:  writeFile(t, "docker-compose.yml", composeFile),
	})

	var apiErr *portainer.RemoteAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Empty(t, srv.Find(http.MethodPost, "stacks"))
}

func TestCreate_InvalidStackFile(t *testing.T) {
	srv := newServer(t)

	_, err := newManager(t, srv).Create(context.Background(), CreateOptions{
		Name:       "api",
		EndpointID: 1,
		StackFile:  writeFile(t, "docker-compose.yml", "services: [this, is, wrong]\n"),
	})

	var fileErr *StackFileError
	require.ErrorAs(t, err, &fileErr)
	assert.Empty(t, srv.Requests())
}

func TestCreate_SkipValidation(t *testing.T) {
	srv := newServer(t)

	_, err := newManager(t, srv).Create(context.Background(), CreateOptions{
		Name:           "api",
		EndpointID:     1,
		StackFile:      writeFile(t, "docker-compose.yml", "not: [a, stack]\n"),
		SkipValidation: true,
	})
	require.NoError(t, err)
	assert.Len(t, srv.Find(http.MethodPost, "stacks"), 1)
}

func TestCreate_MissingFile(t *testing.T) {
	srv := newServer(t)

	_, err := newManager(t, srv).Create(context.Background(), CreateOptions{
		Name:       "api",
		EndpointID: 1,
		StackFile:  filepath.Join(t.TempDir(), "missing.yml"),
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, srv.Requests())
}

func TestUpdate_ReusesCurrentFileAndEnv(t *testing.T) {
	srv := newServer(t)

	_, err := newManager(t, srv).Update(context.Background(), UpdateOptions{Stack: "3", EndpointID: 1, Prune: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"GET stacks/3", "GET stacks/3/file", "PUT stacks/3"}, srv.Keys())
	put := srv.Last()
	assert.Equal(t, "endpointId=1", put.Query)

	var payload portainer.StackUpdatePayload
	put.DecodeBody(t, &payload)
	assert.Equal(t, 3, payload.ID)
	assert.True(t, payload.Prune)
	assert.Equal(t, composeFile, payload.StackFileContent)
	assert.Equal(t, []portainer.Pair{{Name: "A", Value: "1"}, {Name: "B", Value: "2"}}, payload.Env)
}

func TestUpdate_ByNameMergesEnv(t *testing.T) {
	srv := newServer(t)
	file := writeFile(t, "docker-compose.yml", composeFile)

	_, err := newManager(t, srv).Update(context.Background(), UpdateOptions{
		Stack:      "web",
		EndpointID: 1,
		StackFile:  file,
		Env:        envvars.Source{Args: []string{"--env.B=20", "--env.C=3"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"GET stacks", "GET stacks/3", "PUT stacks/3"}, srv.Keys())

	var payload portainer.StackUpdatePayload
	srv.Last().DecodeBody(t, &payload)
	assert.False(t, payload.Prune)
	assert.Equal(t, []portainer.Pair{
		{Name: "A", Value: "1"},
		{Name: "B", Value: "20"},
		{Name: "C", Value: "3"},
	}, payload.Env)
}

func TestUpdate_ClearEnv(t *testing.T) {
	srv := newServer(t)

	_, err := newManager(t, srv).Update(context.Background(), UpdateOptions{Stack: "3", EndpointID: 1, ClearEnv: true})
	require.NoError(t, err)
	assert.Contains(t, string(srv.Last().Body), `"Env":[]`)
}

func TestUpdate_EnvFile(t *testing.T) {
	srv := newServer(t)
	envFile := writeFile(t, "stack.env", "# overrides\nA = one\n")

	_, err := newManager(t, srv).Update(context.Background(), UpdateOptions{
		Stack:      "3",
		EndpointID: 1,
		ClearEnv:   true,
		Env:        envvars.Source{File: envFile, Args: []string{"--env.IGNORED=1"}},
	})
	require.NoError(t, err)

	var payload portainer.StackUpdatePayload
	srv.Last().DecodeBody(t, &payload)
	assert.Equal(t, []portainer.Pair{{Name: "A", Value: "one"}}, payload.Env)
}

func TestUpdate_UnknownName(t *testing.T) {
	srv := newServer(t)

	_, err := newManager(t, srv).Update(context.Background(), UpdateOptions{Stack: "ghost", EndpointID: 1})

	var notFound *portainer.StackNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.Name)
	assert.Empty(t, srv.Find(http.MethodPut, "stacks/3"))
}

func TestUpdate_UnknownID(t *testing.T) {
	srv := newServer(t)

	_, err := newManager(t, srv).Update(context.Background(), UpdateOptions{Stack: "42", EndpointID: 1})

	var notFound *portainer.StackNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 42, notFound.ID)
	assert.True(t, portainer.IsNotFound(err))
}

func TestUpdate_MissingTarget(t *testing.T) {
	srv := newServer(t)

	_, err := newManager(t, srv).Update(context.Background(), UpdateOptions{EndpointID: 1})

	var targetErr *portainer.AmbiguousOrMissingTargetError
	assert.ErrorAs(t, err, &targetErr)
	assert.Empty(t, srv.Requests())
}

func TestUpdate_PutFailure(t *testing.T) {
	srv := newServer(t)
	srv.On(http.MethodPut, "stacks/3", portainertest.ErrorResponse(http.StatusConflict, "stack is being updated"))

	_, err := newManager(t, srv).Update(context.Background(), UpdateOptions{Stack: "3", EndpointID: 1})

	var apiErr *portainer.RemoteAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestCreateOrUpdate(t *testing.T) {
	tests := []struct {
		name       string
		stack      string
		endpointID int
		want       Action
		wantLast   string
	}{
		{name: "existing pair updates", stack: "web", endpointID: 1, want: ActionUpdated, wantLast: "PUT stacks/3"},
		{name: "unknown name creates", stack: "api", endpointID: 1, want: ActionCreated, wantLast: "POST stacks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t)

			res, err := newManager(t, srv).CreateOrUpdate(context.Background(), CreateOptions{
				Name:       tt.stack,
				EndpointID: tt.endpointID,
				StackFile:  writeFile(t, "docker-compose.yml", composeFile),
			}, false, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Action)
			assert.Equal(t, tt.wantLast, srv.Last().Key())
		})
	}
}

func TestCreateOrUpdate_NotFoundOnEndpoint(t *testing.T) {
	srv := newServer(t)
	srv.OnJSON(http.MethodGet, "endpoints/2/docker/swarm", http.StatusOK, map[string]string{"ID": "swarm-2"})

	res, err := newManager(t, srv).CreateOrUpdate(context.Background(), CreateOptions{
		Name:       "db",
		EndpointID: 2,
		StackFile:  writeFile(t, "docker-compose.yml", composeFile),
	}, false, false)
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, res.Action)
	assert.Equal(t, "endpointId=2&method=string&type=1", srv.Last().Query)
}
