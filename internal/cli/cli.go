package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/modfactory/internal/app"
	"github.com/specialistvlad/modfactory/internal/config"
	"github.com/specialistvlad/modfactory/internal/registry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that override flags, e.g.
// MODFACTORY_LOG_LEVEL for --log-level.
const EnvPrefix = "MODFACTORY"

// Options are the collaborators the commands run with.
type Options struct {
	Out    io.Writer // command results
	Err    io.Writer // logs
	Loader config.Loader
	// Modules replaces the compiled-in modules when non-empty.
	Modules []registry.Module
}

// command carries the per-invocation state shared by the subcommands.
type command struct {
	opts    Options
	v       *viper.Viper
	cfgFile string
}

// NewRootCommand builds the modfactory command tree. Every call returns an
// independent tree with its own viper instance.
func NewRootCommand(opts Options) *cobra.Command {
	c := &command{opts: opts, v: viper.New()}

	root := &cobra.Command{
		Use:   "modfactory",
		Short: "Load values out of Go modules described by HCL or YAML manifests",
		Long: `modfactory resolves the module entries declared in HCL or YAML manifests, produces
their values through registered Go modules or Go plugins, validates them
against CUE schemas and prints the results as JSON lines.

Every flag can also be set through a MODFACTORY_* environment variable
(e.g. MODFACTORY_LOG_LEVEL) or a config file passed with --config.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.initConfig,
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (YAML, TOML or JSON)")
	flags.String("log-level", "info", "logging level: trace, debug, info, warn or error")
	flags.String("log-format", "text", "log output format: text or json")
	flags.Int("workers", 4, "number of entries loaded concurrently")
	flags.Bool("strict", false, "fail startup when manifests reference missing exports")

	root.AddCommand(c.loadCommand(), c.validateCommand())
	return root
}

func (c *command) loadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load <manifest> [entry...]",
		Short: "Load manifest entries and print them as JSON lines",
		Long: `Load every entry of the manifest, or only the named entries, and print one
JSON object per entry. <manifest> is an .hcl, .yaml or .yml file or a
directory searched recursively.`,
		Args: minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(args[0])
			if err != nil {
				return err
			}
			if err := a.Load(cmd.Context(), args[1:]...); err != nil {
				return &ExitError{Code: ExitFailure, Message: "load failed", Err: err}
			}
			return nil
		},
	}
}

func (c *command) validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Check manifest entries against the registered modules",
		Long: `Check the structure of every entry and that every referenced module and
export exists, without invoking any factory. With --watch, validation runs
again whenever a manifest file changes, until interrupted.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.v.GetBool("watch") {
				cfg, err := c.appConfig(args[0])
				if err != nil {
					return err
				}
				if err := app.Watch(cmd.Context(), c.opts.Out, c.opts.Err, cfg, c.opts.Loader, c.opts.Modules...); err != nil {
					return &ExitError{Code: ExitFailure, Message: "watch failed", Err: err}
				}
				return nil
			}
			a, err := c.newApp(args[0])
			if err != nil {
				return err
			}
			if err := a.Validate(cmd.Context()); err != nil {
				return &ExitError{Code: ExitFailure, Message: "validation failed", Err: err}
			}
			return nil
		},
	}
	cmd.Flags().Bool("watch", false, "revalidate whenever a manifest file changes")
	cmd.Flags().Int("healthcheck-port", 0, "port for the health check and metrics server while watching; 0 is disabled")
	return cmd
}

// initConfig binds flags, environment and the optional config file into the
// command's viper instance. Flags set on the command line win, then the
// environment, then the config file, then flag defaults.
func (c *command) initConfig(cmd *cobra.Command, _ []string) error {
	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	c.v.SetEnvPrefix(EnvPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
		if err := c.v.ReadInConfig(); err != nil {
			return usageError(fmt.Errorf("failed to read config file: %w", err))
		}
		slog.Debug("Config file loaded.", "path", c.v.ConfigFileUsed())
	}
	return nil
}

func (c *command) appConfig(manifest string) (*app.Config, error) {
	cfg, err := app.NewConfig(app.Config{
		ManifestPaths:   []string{manifest},
		LogLevel:        c.v.GetString("log-level"),
		LogFormat:       c.v.GetString("log-format"),
		Workers:         c.v.GetInt("workers"),
		Strict:          c.v.GetBool("strict"),
		HealthcheckPort: c.v.GetInt("healthcheck-port"),
	})
	if err != nil {
		return nil, usageError(err)
	}
	slog.Debug("CLI configuration resolved.", "config", cfg)
	return cfg, nil
}

func (c *command) newApp(manifest string) (*app.App, error) {
	cfg, err := c.appConfig(manifest)
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(c.opts.Out, c.opts.Err, cfg, c.opts.Loader, c.opts.Modules...)
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Message: "startup failed", Err: err}
	}
	return a, nil
}

func minArgs(n int) cobra.PositionalArgs {
	return wrapArgs(cobra.MinimumNArgs(n))
}

func exactArgs(n int) cobra.PositionalArgs {
	return wrapArgs(cobra.ExactArgs(n))
}

func wrapArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError(fmt.Errorf("%s: %w", cmd.UseLine(), err))
		}
		return nil
	}
}

// Execute runs the command tree over args.
func Execute(ctx context.Context, opts Options, args []string) error {
	root := NewRootCommand(opts)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	// Unknown subcommands and similar cobra errors are usage errors.
	return usageError(err)
}
