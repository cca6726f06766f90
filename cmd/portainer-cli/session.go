package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ilhasoft/portainer-cli/pkg/auth"
)

func newConfigureCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "configure <base_url>",
		Short: "Set the Portainer base URL",
		Example: `  portainer-cli configure http://localhost:9000
  portainer-cli --local configure https://portainer.example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Configure(cmd.Context(), a.profile, args[0]); err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("Configured %s in %s", a.profile.BaseURL, a.store.Path())
			return nil
		},
	}
}

func newLoginCmd(a *app) *cobra.Command {
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login <username> [password]",
		Short: "Authenticate and store the session token",
		Long: `Authenticate against Portainer and store the returned token.

When the password is omitted it is prompted for, or read from stdin with
--password-stdin.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			var password string
			switch {
			case len(args) == 2:
				password = args[1]
			case passwordStdin:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read password from stdin: %w", err)
				}
				password = strings.TrimRight(string(data), "\r\n")
			default:
				p, err := promptForPassword(cmd, "Password")
				if err != nil {
					return err
				}
				password = p
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			session, err := a.session.Login(cmd.Context(), client, a.profile, username, password)
			if err != nil {
				return err
			}

			if session.Claims != nil {
				a.logger.Infow("logged in", "username", session.Claims.Username, "role", session.Claims.RoleName(), "expires", session.Claims.ExpiresAt)
			}
			pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("Logged in to %s as %s", a.profile.BaseURL, username)
			return nil
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(cmd.Context(), a.profile); err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.ErrOrStderr()).Printfln("Logged out of %s", a.profile.BaseURL)
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the configured server and session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config:   %s\n", a.store.Path())
			fmt.Fprintf(out, "Base URL: %s\n", a.profile.BaseURL)

			if !a.profile.HasToken() {
				fmt.Fprintln(out, "Session:  not logged in")
				return nil
			}

			claims, err := auth.ParseClaims(a.profile.JWT)
			if err != nil {
				fmt.Fprintln(out, "Session:  token present (not a readable JWT)")
				return nil
			}
			fmt.Fprintf(out, "User:     %s (id %d, %s)\n", claims.Username, claims.UserID, claims.RoleName())
			switch {
			case claims.ExpiresAt.IsZero():
				fmt.Fprintln(out, "Session:  no expiry")
			case claims.Expired(time.Now()):
				fmt.Fprintf(out, "Session:  expired at %s\n", claims.ExpiresAt.Format(time.RFC3339))
			default:
				fmt.Fprintf(out, "Session:  valid until %s\n", claims.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func promptForPassword(cmd *cobra.Command, label string) (string, error) {
	if file, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
		bytes, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
	value, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(value), nil
}
