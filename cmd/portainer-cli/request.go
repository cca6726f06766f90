package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ilhasoft/portainer-cli/pkg/output"
)

func newRequestCmd(a *app) *cobra.Command {
	var (
		printBody bool
		format    string
	)

	cmd := &cobra.Command{
		Use:   "request <path> [method] [data]",
		Short: "Send an arbitrary API request",
		Long: `Send a request to <base_url>/api/<path> with the stored session token.

data is sent as is when it is JSON and as a JSON string otherwise. Any
non-2xx response fails the command.`,
		Example: `  portainer-cli request status --print
  portainer-cli request stacks GET -o table
  portainer-cli request endpoints/1 PUT '{"Name":"prod"}'`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			method := http.MethodGet
			if len(args) > 1 {
				method = args[1]
			}
			var body interface{}
			if len(args) > 2 {
				body = args[2]
			}

			manager := output.NewManager()
			if _, err := manager.GetFormatter(format); err != nil {
				return err
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			resp, err := client.Request(cmd.Context(), path, method, body)
			if err != nil {
				return err
			}

			if !printBody && !cmd.Flags().Changed("output") {
				return nil
			}
			return manager.FormatBody(cmd.OutOrStdout(), resp.Body, format)
		},
	}

	cmd.Flags().BoolVarP(&printBody, "print", "p", false, "Print the response body")
	cmd.Flags().StringVarP(&format, "output", "o", output.FormatRaw, "Output format: raw, json, yaml or table (implies --print)")
	return cmd
}
