package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ilhasoft/portainer-cli/internal/logging"
	"github.com/ilhasoft/portainer-cli/pkg/auth"
	"github.com/ilhasoft/portainer-cli/pkg/auth/storage"
	"github.com/ilhasoft/portainer-cli/pkg/config"
	"github.com/ilhasoft/portainer-cli/pkg/portainer"
	"github.com/ilhasoft/portainer-cli/pkg/progress"
)

type globalOptions struct {
	debug      bool
	local      bool
	keyring    bool
	configPath string
}

// app carries the state shared by all commands of one invocation.
type app struct {
	opts    globalOptions
	envArgs []string

	logger  *zap.SugaredLogger
	store   *config.Store
	session *auth.Manager
	profile *config.Profile
	proxy   config.Proxy
}

func newRootCmd(envArgs []string) *cobra.Command {
	a := &app{envArgs: envArgs}

	cmd := &cobra.Command{
		Use:   "portainer-cli",
		Short: "Manage Portainer stacks, registries and access control",
		Long: `portainer-cli talks to the Portainer API to deploy and update swarm
stacks, manage who can see them and update registry credentials.

Run "portainer-cli configure <url>" and "portainer-cli login <user>" once;
the session is stored in ~/.portainer-cli.json, or in the working directory
with --local.`,
		Version:           fmt.Sprintf("%s (built %s)", version, buildDate),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&a.opts.debug, "debug", "d", false, "Enable debug logging")
	flags.BoolVarP(&a.opts.local, "local", "l", false, "Use the configuration file in the working directory")
	flags.BoolVar(&a.opts.keyring, "keyring", false, "Keep the session token in the OS keyring")
	flags.StringVar(&a.opts.configPath, "config", "", "Path of the configuration file (overrides --local)")

	cmd.AddCommand(
		newConfigureCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newRequestCmd(a),
		newCreateStackCmd(a),
		newUpdateStackCmd(a),
		newCreateOrUpdateStackCmd(a),
		newGetStackIDCmd(a),
		newUpdateStackACLCmd(a),
		newUpdateRegistryCmd(a),
	)

	return cmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(a.opts.debug)
	if err != nil {
		return err
	}
	a.logger = logger

	if a.opts.configPath != "" {
		a.store = config.NewStoreAt(a.opts.configPath)
	} else {
		a.store = config.NewStore(a.opts.local)
	}

	var tokens storage.TokenStorage
	if a.opts.keyring {
		if tokens, err = storage.NewKeyringStorage(storage.DefaultService); err != nil {
			return err
		}
	}
	a.session = auth.NewManager(a.store, tokens)

	if a.profile, err = a.session.Load(cmd.Context()); err != nil {
		return err
	}
	if a.proxy, err = config.LoadProxy(); err != nil {
		return err
	}

	a.logger.Debugw("loaded profile", "path", a.store.Path(), "base_url", a.profile.BaseURL, "logged_in", a.profile.HasToken())
	return nil
}

func (a *app) client() (*portainer.Client, error) {
	return portainer.NewFromProfile(a.profile, a.proxy, a.logger)
}

func (a *app) spinner(w io.Writer) *progress.Config {
	cfg := progress.ConfigFor(w)
	if a.opts.debug {
		cfg.Enabled = false
	}
	return cfg
}

// withAliases registers the underscore spelling of a command name.
func withAliases(cmd *cobra.Command, aliases ...string) *cobra.Command {
	cmd.Aliases = append(cmd.Aliases, aliases...)
	return cmd
}
