// Package stack creates and updates swarm stacks.
//
// Create deploys a new stack from a compose file on an endpoint's swarm.
// Update redeploys an existing stack, merging new environment variables
// into the ones it already has unless asked to clear them. CreateOrUpdate
// picks between the two by looking the stack up by name, which makes it
// safe to run repeatedly from CI.
package stack

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/ilhasoft/portainer-cli/pkg/directory"
	"github.com/ilhasoft/portainer-cli/pkg/envvars"
	"github.com/ilhasoft/portainer-cli/pkg/portainer"
)

// API is the subset of the Portainer client used for stacks.
type API interface {
	directory.API
	SwarmID(ctx context.Context, endpointID int) (string, error)
	GetStack(ctx context.Context, id, endpointID int) (*portainer.Stack, error)
	GetStackFile(ctx context.Context, id, endpointID int) (string, error)
	CreateStack(ctx context.Context, endpointID int, payload portainer.StackCreatePayload) (*portainer.Stack, error)
	UpdateStack(ctx context.Context, endpointID int, payload portainer.StackUpdatePayload) (*portainer.Stack, error)
}

// CreateOptions describes a new stack.
type CreateOptions struct {
	Name       string
	EndpointID int
	// StackFile is the path of the compose file.
	StackFile      string
	Env            envvars.Source
	SkipValidation bool
}

// UpdateOptions describes an update of an existing stack.
type UpdateOptions struct {
	// Stack is the numeric id or the name of the stack.
	Stack      string
	EndpointID int
	// StackFile is optional; the deployed content is reused when empty.
	StackFile      string
	Env            envvars.Source
	Prune          bool
	ClearEnv       bool
	SkipValidation bool
}

// Action tells which path CreateOrUpdate took.
type Action string

// Actions reported by CreateOrUpdate.
const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

// Result is the outcome of CreateOrUpdate.
type Result struct {
	Action Action
	Stack  *portainer.Stack
}

// Manager runs stack operations.
type Manager struct {
	api      API
	resolver *directory.Resolver
	logger   *zap.SugaredLogger
	validate func(ctx context.Context, name, content string, env map[string]string) error
}

// NewManager creates a manager.
func NewManager(api API, logger *zap.SugaredLogger) *Manager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	RouteComposeLogs(logger)
	return &Manager{
		api:      api,
		resolver: directory.NewResolver(api, logger),
		logger:   logger,
		validate: ValidateStackFile,
	}
}

// Create deploys a new stack.
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (*portainer.Stack, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("stack name is required")
	}
	if opts.StackFile == "" {
		return nil, fmt.Errorf("stack file is required to create a stack")
	}

	content, err := readStackFile(opts.StackFile)
	if err != nil {
		return nil, err
	}
	env, _, err := opts.Env.Load()
	if err != nil {
		return nil, err
	}
	if !opts.SkipValidation {
		if err := m.validate(ctx, opts.Name, content, env.ToMap()); err != nil {
			return nil, err
		}
	}

	swarmID, err := m.api.SwarmID(ctx, opts.EndpointID)
	if err != nil {
		return nil, fmt.Errorf("failed to get swarm id of endpoint %d: %w", opts.EndpointID, err)
	}
	if swarmID == "" {
		return nil, fmt.Errorf("endpoint %d is not part of a swarm", opts.EndpointID)
	}

	m.logger.Infow("creating stack", "name", opts.Name, "endpoint", opts.EndpointID, "env", env.Keys())
	return m.api.CreateStack(ctx, opts.EndpointID, portainer.StackCreatePayload{
		Name:             opts.Name,
		SwarmID:          swarmID,
		StackFileContent: content,
		Env:              env.Pairs(),
	})
}

// Update redeploys an existing stack.
func (m *Manager) Update(ctx context.Context, opts UpdateOptions) (*portainer.Stack, error) {
	next, provided, err := opts.Env.Load()
	if err != nil {
		return nil, err
	}

	var content string
	if opts.StackFile != "" {
		if content, err = readStackFile(opts.StackFile); err != nil {
			return nil, err
		}
	}

	id, err := m.ResolveID(ctx, opts.Stack, opts.EndpointID)
	if err != nil {
		return nil, err
	}

	current, err := m.api.GetStack(ctx, id, opts.EndpointID)
	if err != nil {
		if portainer.IsNotFound(err) {
			return nil, &portainer.StackNotFoundError{ID: id, EndpointID: opts.EndpointID, Err: err}
		}
		return nil, err
	}

	if opts.StackFile == "" {
		if content, err = m.api.GetStackFile(ctx, id, opts.EndpointID); err != nil {
			return nil, fmt.Errorf("failed to get stack file: %w", err)
		}
	}

	env := envvars.ForUpdate(current.Env, next, provided, opts.ClearEnv)
	if !opts.SkipValidation {
		name := current.Name
		if name == "" {
			name = opts.Stack
		}
		if err := m.validate(ctx, name, content, envvars.FromPairs(env).ToMap()); err != nil {
			return nil, err
		}
	}

	m.logger.Infow("updating stack", "id", id, "endpoint", opts.EndpointID, "prune", opts.Prune, "clear_env", opts.ClearEnv)
	return m.api.UpdateStack(ctx, opts.EndpointID, portainer.StackUpdatePayload{
		ID:               id,
		StackFileContent: content,
		Prune:            opts.Prune,
		Env:              env,
	})
}

// CreateOrUpdate updates the stack called opts.Name on the endpoint when it
// exists and creates it otherwise.
func (m *Manager) CreateOrUpdate(ctx context.Context, opts CreateOptions, prune, clearEnv bool) (*Result, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("stack name is required")
	}

	id, found, err := m.resolver.StackID(ctx, opts.Name, opts.EndpointID)
	if err != nil {
		return nil, err
	}

	if !found {
		s, err := m.Create(ctx, opts)
		if err != nil {
			return nil, err
		}
		return &Result{Action: ActionCreated, Stack: s}, nil
	}

	s, err := m.Update(ctx, UpdateOptions{
		Stack:          strconv.Itoa(id),
		EndpointID:     opts.EndpointID,
		StackFile:      opts.StackFile,
		Env:            opts.Env,
		Prune:          prune,
		ClearEnv:       clearEnv,
		SkipValidation: opts.SkipValidation,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Action: ActionUpdated, Stack: s}, nil
}

// ResolveID turns a stack reference into an id. Numeric references are
// ids; anything else is looked up by name on the endpoint.
func (m *Manager) ResolveID(ctx context.Context, ref string, endpointID int) (int, error) {
	if ref == "" {
		return 0, &portainer.AmbiguousOrMissingTargetError{Reason: "a stack id or name is required"}
	}
	if id, err := strconv.Atoi(ref); err == nil {
		return id, nil
	}

	id, found, err := m.resolver.StackID(ctx, ref, endpointID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, &portainer.StackNotFoundError{Name: ref, EndpointID: endpointID}
	}
	return id, nil
}

func readStackFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read stack file: %w", err)
	}
	return string(data), nil
}
