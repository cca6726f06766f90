// Package directory resolves user, team and stack names to Portainer ids.
//
// Every lookup lists the whole collection once and matches names exactly.
// Names that do not resolve are logged and skipped; only remote failures
// are returned as errors.
package directory

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ilhasoft/portainer-cli/pkg/portainer"
)

// NotFound is the id reported for a stack that does not exist.
const NotFound = -1

// API is the subset of the Portainer client the resolver needs.
type API interface {
	ListUsers(ctx context.Context) ([]portainer.User, error)
	ListTeams(ctx context.Context) ([]portainer.Team, error)
	ListStacks(ctx context.Context) ([]portainer.Stack, error)
}

// Resolver resolves names through the API.
type Resolver struct {
	api    API
	logger *zap.SugaredLogger
}

// NewResolver creates a resolver. A nil logger discards misses.
func NewResolver(api API, logger *zap.SugaredLogger) *Resolver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Resolver{api: api, logger: logger}
}

// ResolveUsers returns the users named in names, in request order. Unknown
// names are logged and omitted; repeated names resolve once.
func (r *Resolver) ResolveUsers(ctx context.Context, names []string) ([]portainer.User, error) {
	if len(names) == 0 {
		return nil, nil
	}

	users, err := r.api.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]portainer.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}

	var out []portainer.User
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		u, ok := byName[name]
		if !ok {
			r.logger.Warnw("user not found", "username", name)
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// ResolveTeams returns the teams named in names, in request order. Unknown
// names are logged and omitted; repeated names resolve once.
func (r *Resolver) ResolveTeams(ctx context.Context, names []string) ([]portainer.Team, error) {
	if len(names) == 0 {
		return nil, nil
	}

	teams, err := r.api.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]portainer.Team, len(teams))
	for _, t := range teams {
		byName[t.Name] = t
	}

	var out []portainer.Team
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		t, ok := byName[name]
		if !ok {
			r.logger.Warnw("team not found", "team", name)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// StackID finds the stack called name on endpointID. found is false and
// the id is NotFound when no such stack exists.
func (r *Resolver) StackID(ctx context.Context, name string, endpointID int) (id int, found bool, err error) {
	stacks, err := r.api.ListStacks(ctx)
	if err != nil {
		return NotFound, false, err
	}
	for _, s := range stacks {
		if s.Name == name && s.EndpointID == endpointID {
			return s.ID, true, nil
		}
	}
	r.logger.Debugw("stack not found", "name", name, "endpoint", endpointID)
	return NotFound, false, nil
}

// UserIDs returns the ids of users.
func UserIDs(users []portainer.User) []int {
	ids := make([]int, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

// TeamIDs returns the ids of teams.
func TeamIDs(teams []portainer.Team) []int {
	ids := make([]int, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids
}

// SplitNames splits a comma separated list, dropping blanks.
func SplitNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
