package portainer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Authenticate exchanges credentials for a session token.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	var out AuthResponse
	if err := c.Do(ctx, http.MethodPost, "auth", AuthRequest{Username: username, Password: password}, &out); err != nil {
		return "", err
	}
	if out.JWT == "" {
		return "", fmt.Errorf("auth response did not contain a token")
	}
	return out.JWT, nil
}

// ListUsers returns all users visible to the caller.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.Do(ctx, http.MethodGet, "users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListTeams returns all teams visible to the caller.
func (c *Client) ListTeams(ctx context.Context) ([]Team, error) {
	var teams []Team
	if err := c.Do(ctx, http.MethodGet, "teams", nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// ListStacks returns all stacks visible to the caller.
func (c *Client) ListStacks(ctx context.Context) ([]Stack, error) {
	var stacks []Stack
	if err := c.Do(ctx, http.MethodGet, "stacks", nil, &stacks); err != nil {
		return nil, err
	}
	return stacks, nil
}

// GetStack fetches a stack on an endpoint.
func (c *Client) GetStack(ctx context.Context, id, endpointID int) (*Stack, error) {
	var stack Stack
	if err := c.Do(ctx, http.MethodGet, stackPath(id, "", endpointID), nil, &stack); err != nil {
		return nil, err
	}
	return &stack, nil
}

// GetStackFile fetches the current compose content of a stack.
func (c *Client) GetStackFile(ctx context.Context, id, endpointID int) (string, error) {
	var file StackFile
	if err := c.Do(ctx, http.MethodGet, stackPath(id, "/file", endpointID), nil, &file); err != nil {
		return "", err
	}
	return file.StackFileContent, nil
}

// SwarmID returns the id of the swarm cluster behind an endpoint.
func (c *Client) SwarmID(ctx context.Context, endpointID int) (string, error) {
	var info SwarmInfo
	path := fmt.Sprintf("endpoints/%d/docker/swarm", endpointID)
	if err := c.Do(ctx, http.MethodGet, path, nil, &info); err != nil {
		return "", err
	}
	return info.ID, nil
}

// CreateStack creates a swarm stack from string content.
func (c *Client) CreateStack(ctx context.Context, endpointID int, payload StackCreatePayload) (*Stack, error) {
	q := url.Values{}
	q.Set("type", "1")
	q.Set("method", "string")
	q.Set("endpointId", strconv.Itoa(endpointID))

	var stack Stack
	if err := c.Do(ctx, http.MethodPost, "stacks?"+q.Encode(), payload, &stack); err != nil {
		return nil, err
	}
	return &stack, nil
}

// UpdateStack replaces the content and environment of a stack.
func (c *Client) UpdateStack(ctx context.Context, endpointID int, payload StackUpdatePayload) (*Stack, error) {
	var stack Stack
	if err := c.Do(ctx, http.MethodPut, stackPath(payload.ID, "", endpointID), payload, &stack); err != nil {
		return nil, err
	}
	return &stack, nil
}

// CreateResourceControl creates an access control object.
func (c *Client) CreateResourceControl(ctx context.Context, payload ResourceControlCreatePayload) error {
	return c.Do(ctx, http.MethodPost, "resource_controls", payload, nil)
}

// UpdateResourceControl replaces the grants of an access control object.
func (c *Client) UpdateResourceControl(ctx context.Context, id int, payload ResourceControlUpdatePayload) error {
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("resource_controls/%d", id), payload, nil)
}

// DeleteResourceControl removes an access control object.
func (c *Client) DeleteResourceControl(ctx context.Context, id int) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("resource_controls/%d", id), nil, nil)
}

// GetRegistry fetches a registry.
func (c *Client) GetRegistry(ctx context.Context, id int) (*Registry, error) {
	var reg Registry
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("registries/%d", id), nil, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// UpdateRegistry replaces the settings of a registry.
func (c *Client) UpdateRegistry(ctx context.Context, id int, payload RegistryUpdatePayload) error {
	return c.Do(ctx, http.MethodPut, fmt.Sprintf("registries/%d", id), payload, nil)
}

func stackPath(id int, suffix string, endpointID int) string {
	return fmt.Sprintf("stacks/%d%s?endpointId=%d", id, suffix, endpointID)
}
