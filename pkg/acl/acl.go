// Package acl reconciles the access control of a stack with a desired
// ownership.
//
// Ownership is derived, Portainer only stores the resource control:
//
//	admin       no resource control; only administrators see the stack
//	public      resource control with Public set
//	restricted  resource control listing the users and teams granted access
//
// Restricted grants are additive: newly named users and teams are added to
// the ones already granted unless Clear is set.
package acl

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ilhasoft/portainer-cli/pkg/directory"
	"github.com/ilhasoft/portainer-cli/pkg/portainer"
)

// Ownership is the desired visibility of a stack.
type Ownership string

// Supported ownership types.
const (
	OwnershipAdmin      Ownership = "admin"
	OwnershipPublic     Ownership = "public"
	OwnershipRestricted Ownership = "restricted"
)

// ParseOwnership validates s.
func ParseOwnership(s string) (Ownership, error) {
	switch o := Ownership(strings.ToLower(strings.TrimSpace(s))); o {
	case OwnershipAdmin, OwnershipPublic, OwnershipRestricted:
		return o, nil
	default:
		return "", fmt.Errorf("unknown ownership %q: must be one of admin, public, restricted", s)
	}
}

// API is the subset of the Portainer client used for access control.
type API interface {
	directory.API
	GetStack(ctx context.Context, id, endpointID int) (*portainer.Stack, error)
	CreateResourceControl(ctx context.Context, payload portainer.ResourceControlCreatePayload) error
	UpdateResourceControl(ctx context.Context, id int, payload portainer.ResourceControlUpdatePayload) error
	DeleteResourceControl(ctx context.Context, id int) error
}

// Request describes the desired access control of one stack.
type Request struct {
	// Exactly one of StackID and StackName identifies the stack.
	StackID    int
	StackName  string
	EndpointID int
	Ownership  Ownership
	// Users and Teams are names, only used for restricted ownership.
	Users []string
	Teams []string
	// Clear replaces the current grants instead of extending them.
	Clear bool
}

// Change is the remote action Update performed.
type Change string

// Changes reported by Update.
const (
	ChangeNone    Change = "none"
	ChangeCreated Change = "created"
	ChangeUpdated Change = "updated"
	ChangeDeleted Change = "deleted"
)

// Result reports what Update did.
type Result struct {
	StackID int
	Change  Change
	Public  bool
	Users   []int
	Teams   []int
}

// Reconciler applies access control requests.
type Reconciler struct {
	api      API
	resolver *directory.Resolver
	logger   *zap.SugaredLogger
}

// NewReconciler creates a reconciler.
func NewReconciler(api API, logger *zap.SugaredLogger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Reconciler{
		api:      api,
		resolver: directory.NewResolver(api, logger),
		logger:   logger,
	}
}

// Update brings the stack's resource control in line with req.
func (r *Reconciler) Update(ctx context.Context, req Request) (*Result, error) {
	if err := validateTarget(req); err != nil {
		return nil, err
	}
	ownership, err := ParseOwnership(string(req.Ownership))
	if err != nil {
		return nil, err
	}
	req.Ownership = ownership

	id := req.StackID
	if req.StackName != "" {
		var found bool
		if id, found, err = r.resolver.StackID(ctx, req.StackName, req.EndpointID); err != nil {
			return nil, err
		}
		if !found {
			return nil, &portainer.StackNotFoundError{Name: req.StackName, EndpointID: req.EndpointID}
		}
	}

	stack, err := r.api.GetStack(ctx, id, req.EndpointID)
	if err != nil {
		if portainer.IsNotFound(err) {
			return nil, &portainer.StackNotFoundError{ID: id, EndpointID: req.EndpointID, Err: err}
		}
		return nil, err
	}

	switch req.Ownership {
	case OwnershipAdmin:
		return r.makeAdmin(ctx, stack)
	case OwnershipPublic:
		return r.upsert(ctx, stack, true, []int{}, []int{})
	case OwnershipRestricted:
		return r.restrict(ctx, stack, req)
	}
	return nil, fmt.Errorf("unknown ownership %q", req.Ownership)
}

func validateTarget(req Request) error {
	switch {
	case req.StackID != 0 && req.StackName != "":
		return &portainer.AmbiguousOrMissingTargetError{Reason: "give either a stack id or a stack name, not both"}
	case req.StackID == 0 && req.StackName == "":
		return &portainer.AmbiguousOrMissingTargetError{Reason: "a stack id or a stack name is required"}
	case req.StackID < 0:
		return &portainer.AmbiguousOrMissingTargetError{Reason: fmt.Sprintf("invalid stack id %d", req.StackID)}
	}
	return nil
}

func (r *Reconciler) makeAdmin(ctx context.Context, stack *portainer.Stack) (*Result, error) {
	res := &Result{StackID: stack.ID, Change: ChangeNone, Users: []int{}, Teams: []int{}}
	if !stack.HasResourceControl() {
		r.logger.Infow("stack already restricted to administrators", "stack", stack.ID)
		return res, nil
	}

	if err := r.api.DeleteResourceControl(ctx, stack.ResourceControl.ID); err != nil {
		return nil, err
	}
	res.Change = ChangeDeleted
	return res, nil
}

func (r *Reconciler) restrict(ctx context.Context, stack *portainer.Stack, req Request) (*Result, error) {
	users, err := r.resolver.ResolveUsers(ctx, req.Users)
	if err != nil {
		return nil, err
	}
	teams, err := r.resolver.ResolveTeams(ctx, req.Teams)
	if err != nil {
		return nil, err
	}

	userIDs := directory.UserIDs(users)
	teamIDs := directory.TeamIDs(teams)
	if !req.Clear {
		// A stack without a resource control has no current grants.
		userIDs = append(userIDs, stack.ResourceControl.UserIDs()...)
		teamIDs = append(teamIDs, stack.ResourceControl.TeamIDs()...)
	}

	return r.upsert(ctx, stack, false, normalize(userIDs), normalize(teamIDs))
}

func (r *Reconciler) upsert(ctx context.Context, stack *portainer.Stack, public bool, users, teams []int) (*Result, error) {
	res := &Result{StackID: stack.ID, Public: public, Users: users, Teams: teams}

	if stack.HasResourceControl() {
		err := r.api.UpdateResourceControl(ctx, stack.ResourceControl.ID, portainer.ResourceControlUpdatePayload{
			Public: public,
			Users:  users,
			Teams:  teams,
		})
		if err != nil {
			return nil, err
		}
		res.Change = ChangeUpdated
		return res, nil
	}

	err := r.api.CreateResourceControl(ctx, portainer.ResourceControlCreatePayload{
		Type:       portainer.ResourceControlTypeStack,
		ResourceID: stack.Name,
		Public:     public,
		Users:      users,
		Teams:      teams,
	})
	if err != nil {
		return nil, err
	}
	res.Change = ChangeCreated
	return res, nil
}

// normalize sorts and de-duplicates ids. The result is never nil.
func normalize(ids []int) []int {
	out := make([]int, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}
