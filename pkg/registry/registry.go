// Package registry updates image registry settings.
package registry

import (
	"context"
	"fmt"

	"github.com/ilhasoft/portainer-cli/pkg/portainer"
)

// API is the subset of the Portainer client used for registries.
type API interface {
	GetRegistry(ctx context.Context, id int) (*portainer.Registry, error)
	UpdateRegistry(ctx context.Context, id int, payload portainer.RegistryUpdatePayload) error
}

// Options are the requested settings. Empty Name, URL and Username keep
// the current values; Password is always sent as given, so an empty
// password clears it.
type Options struct {
	Name           string
	URL            string
	Authentication bool
	Username       string
	Password       string
}

// Validate checks the options before any request is made.
func (o Options) Validate() error {
	if o.Authentication && (o.Username == "" || o.Password == "") {
		return fmt.Errorf("authentication requires both a username and a password")
	}
	return nil
}

// Payload builds the update sent for current.
func (o Options) Payload(current *portainer.Registry) portainer.RegistryUpdatePayload {
	return portainer.RegistryUpdatePayload{
		Name:           orDefault(o.Name, current.Name),
		URL:            orDefault(o.URL, current.URL),
		Authentication: o.Authentication,
		Username:       orDefault(o.Username, current.Username),
		Password:       o.Password,
	}
}

// Update applies opts to registry id and returns the payload that was sent.
func Update(ctx context.Context, api API, id int, opts Options) (*portainer.RegistryUpdatePayload, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	current, err := api.GetRegistry(ctx, id)
	if err != nil {
		return nil, err
	}

	payload := opts.Payload(current)
	if err := api.UpdateRegistry(ctx, id, payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
