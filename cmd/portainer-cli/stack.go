package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ilhasoft/portainer-cli/pkg/directory"
	"github.com/ilhasoft/portainer-cli/pkg/envvars"
	"github.com/ilhasoft/portainer-cli/pkg/portainer"
	"github.com/ilhasoft/portainer-cli/pkg/progress"
	"github.com/ilhasoft/portainer-cli/pkg/stack"
)

const envHelp = `
Environment variables are given as --env.NAME=VALUE arguments or read from
a file of NAME=VALUE lines with --env-file; the file wins when both are
given.`

type stackFlags struct {
	envFile        string
	skipValidation bool
	prune          bool
	clearEnv       bool
}

func (f *stackFlags) bindEnv(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.envFile, "env-file", "", "Read environment variables from a file")
	cmd.Flags().BoolVar(&f.skipValidation, "skip-validation", false, "Send the stack file without validating it")
}

func (f *stackFlags) bindUpdate(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.prune, "prune", "p", false, "Prune services that are no longer referenced")
	cmd.Flags().BoolVarP(&f.clearEnv, "clear-env", "c", false, "Replace the environment instead of merging into it")
}

func (a *app) envSource(f *stackFlags) envvars.Source {
	return envvars.Source{File: f.envFile, Args: a.envArgs}
}

func (a *app) stackManager() (*stack.Manager, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	return stack.NewManager(client, a.logger), nil
}

func parseEndpointID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid endpoint id %q", s)
	}
	return id, nil
}

func newCreateStackCmd(a *app) *cobra.Command {
	var flags stackFlags

	cmd := &cobra.Command{
		Use:     "create-stack <name> <endpoint_id> <stack_file>",
		Short:   "Create a swarm stack",
		Long:    "Create a swarm stack from a compose file on an endpoint." + envHelp,
		Example: `  portainer-cli create-stack web 1 docker-compose.yml --env.TAG=1.2.0`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointID, err := parseEndpointID(args[1])
			if err != nil {
				return err
			}
			m, err := a.stackManager()
			if err != nil {
				return err
			}

			var created *portainer.Stack
			err = progress.Run(a.spinner(cmd.ErrOrStderr()), "Creating stack "+args[0], func() error {
				created, err = m.Create(cmd.Context(), stack.CreateOptions{
					Name:           args[0],
					EndpointID:     endpointID,
					StackFile:      args[2],
					Env:            a.envSource(&flags),
					SkipValidation: flags.skipValidation,
				})
				return err
			})
			if err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("Created stack %s (id %d)", args[0], created.ID)
			return nil
		},
	}

	flags.bindEnv(cmd)
	return withAliases(cmd, "create_stack")
}

func newUpdateStackCmd(a *app) *cobra.Command {
	var flags stackFlags

	cmd := &cobra.Command{
		Use:   "update-stack <stack> <endpoint_id> [stack_file]",
		Short: "Update a stack",
		Long: `Redeploy a stack given by id or name. Without stack_file the deployed
content is reused. New variables are merged into the current environment
unless --clear-env is set; with neither, the environment is left as is.` + envHelp,
		Example: `  portainer-cli update-stack 12 1 --env.TAG=1.3.0
  portainer-cli update-stack web 1 docker-compose.yml --prune --clear-env --env-file prod.env`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointID, err := parseEndpointID(args[1])
			if err != nil {
				return err
			}
			m, err := a.stackManager()
			if err != nil {
				return err
			}

			opts := stack.UpdateOptions{
				Stack:          args[0],
				EndpointID:     endpointID,
				Env:            a.envSource(&flags),
				Prune:          flags.prune,
				ClearEnv:       flags.clearEnv,
				SkipValidation: flags.skipValidation,
			}
			if len(args) > 2 {
				opts.StackFile = args[2]
			}

			var updated *portainer.Stack
			err = progress.Run(a.spinner(cmd.ErrOrStderr()), "Updating stack "+args[0], func() error {
				updated, err = m.Update(cmd.Context(), opts)
				return err
			})
			if err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("Updated stack %s (id %d)", args[0], updated.ID)
			return nil
		},
	}

	flags.bindEnv(cmd)
	flags.bindUpdate(cmd)
	return withAliases(cmd, "update_stack")
}

func newCreateOrUpdateStackCmd(a *app) *cobra.Command {
	var flags stackFlags

	cmd := &cobra.Command{
		Use:   "create-or-update-stack <name> <endpoint_id> <stack_file>",
		Short: "Create a stack or update it when it already exists",
		Long: `Look the stack up by name on the endpoint, update it when found and
create it otherwise. Safe to run on every deploy.` + envHelp,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointID, err := parseEndpointID(args[1])
			if err != nil {
				return err
			}
			m, err := a.stackManager()
			if err != nil {
				return err
			}

			var res *stack.Result
			err = progress.Run(a.spinner(cmd.ErrOrStderr()), "Deploying stack "+args[0], func() error {
				res, err = m.CreateOrUpdate(cmd.Context(), stack.CreateOptions{
					Name:           args[0],
					EndpointID:     endpointID,
					StackFile:      args[2],
					Env:            a.envSource(&flags),
					SkipValidation: flags.skipValidation,
				}, flags.prune, flags.clearEnv)
				return err
			})
			if err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("Stack %s %s (id %d)", args[0], res.Action, res.Stack.ID)
			return nil
		},
	}

	flags.bindEnv(cmd)
	flags.bindUpdate(cmd)
	return withAliases(cmd, "create_or_update_stack")
}

func newGetStackIDCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get-stack-id <name> <endpoint_id>",
		Short: "Print the id of a stack, or -1 when it does not exist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			endpointID, err := parseEndpointID(args[1])
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			id, _, err := directory.NewResolver(client, a.logger).StackID(cmd.Context(), args[0], endpointID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	return withAliases(cmd, "get_stack_id")
}
