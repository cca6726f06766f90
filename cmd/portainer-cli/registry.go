package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ilhasoft/portainer-cli/pkg/registry"
)

func newUpdateRegistryCmd(a *app) *cobra.Command {
	var opts registry.Options

	cmd := &cobra.Command{
		Use:   "update-registry <id>",
		Short: "Update a registry's address and credentials",
		Long: `Update a registry. Name, URL and username keep their current values when
omitted. The password is always sent as given, so leaving it out clears it.`,
		Example: `  portainer-cli update-registry 5 --url registry.example.com:5000
  portainer-cli update-registry 5 -a --username ci --password "$REGISTRY_PASSWORD"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid registry id %q", args[0])
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			payload, err := registry.Update(cmd.Context(), client, id, opts)
			if err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("Updated registry %d (%s, %s)", id, payload.Name, payload.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "New registry name")
	cmd.Flags().StringVar(&opts.URL, "url", "", "New registry URL")
	cmd.Flags().BoolVarP(&opts.Authentication, "authentication", "a", false, "Enable authentication")
	cmd.Flags().StringVar(&opts.Username, "username", "", "Registry username")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Registry password")
	return withAliases(cmd, "update_registry")
}
