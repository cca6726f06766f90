package directory

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ilhasoft/portainer-cli/pkg/portainer"
	"github.com/ilhasoft/portainer-cli/pkg/portainer/portainertest"
)

func observedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func newFixture(t *testing.T) (*Resolver, *portainertest.Server, *observer.ObservedLogs) {
	t.Helper()
	srv := portainertest.NewServer(t)
	srv.OnJSON(http.MethodGet, "users", http.StatusOK, []portainer.User{
		{ID: 1, Username: "admin"},
		{ID: 2, Username: "alice"},
		{ID: 3, Username: "bob"},
	})
	srv.OnJSON(http.MethodGet, "teams", http.StatusOK, []portainer.Team{
		{ID: 10, Name: "devs"},
		{ID: 11, Name: "ops"},
	})
	srv.OnJSON(http.MethodGet, "stacks", http.StatusOK, []portainer.Stack{
		{ID: 5, Name: "web", EndpointID: 1},
		{ID: 6, Name: "web", EndpointID: 2},
		{ID: 7, Name: "db", EndpointID: 1},
	})

	logger, logs := observedLogger()
	return NewResolver(srv.Client(t, "t"), logger), srv, logs
}

func TestResolveUsers(t *testing.T) {
	r, srv, logs := newFixture(t)

	users, err := r.ResolveUsers(context.Background(), []string{"bob", "ghost", "alice", "bob"})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, UserIDs(users))
	assert.Len(t, srv.Find(http.MethodGet, "users"), 1)

	misses := logs.FilterMessage("user not found").All()
	require.Len(t, misses, 1)
	assert.Equal(t, "ghost", misses[0].ContextMap()["username"])
}

func TestResolveUsers_ExactMatch(t *testing.T) {
	r, _, _ := newFixture(t)

	users, err := r.ResolveUsers(context.Background(), []string{"Alice", "ali"})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestResolveUsers_NoNamesSkipsRequest(t *testing.T) {
	r, srv, _ := newFixture(t)

	users, err := r.ResolveUsers(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, users)
	assert.Empty(t, srv.Requests())
}

func TestResolveTeams(t *testing.T) {
	r, _, logs := newFixture(t)

	teams, err := r.ResolveTeams(context.Background(), []string{"ops", "qa"})
	require.NoError(t, err)
	assert.Equal(t, []int{11}, TeamIDs(teams))
	assert.Equal(t, 1, logs.FilterMessage("team not found").Len())
}

func TestResolve_RemoteError(t *testing.T) {
	srv := portainertest.NewServer(t)
	srv.On(http.MethodGet, "users", portainertest.ErrorResponse(http.StatusForbidden, "Access denied"))

	r := NewResolver(srv.Client(t, "t"), nil)
	_, err := r.ResolveUsers(context.Background(), []string{"alice"})

	var apiErr *portainer.RemoteAPIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestStackID(t *testing.T) {
	r, _, _ := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		endpointID int
		wantID     int
		wantFound  bool
	}{
		{name: "web", endpointID: 1, wantID: 5, wantFound: true},
		{name: "web", endpointID: 2, wantID: 6, wantFound: true},
		{name: "db", endpointID: 2, wantID: NotFound, wantFound: false},
		{name: "missing", endpointID: 1, wantID: NotFound, wantFound: false},
	}

	for _, tt := range tests {
		id, found, err := r.StackID(ctx, tt.name, tt.endpointID)
		require.NoError(t, err)
		assert.Equal(t, tt.wantID, id, "%s@%d", tt.name, tt.endpointID)
		assert.Equal(t, tt.wantFound, found, "%s@%d", tt.name, tt.endpointID)
	}
}

func TestSplitNames(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitNames("a, b,,c "))
	assert.Nil(t, SplitNames(""))
	assert.Nil(t, SplitNames(" , "))
}
