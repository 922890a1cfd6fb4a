package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bootkit/internal/config"
	"bootkit/internal/environment"
	"bootkit/internal/logging"
	"bootkit/internal/notify"
)

type rootFlags struct {
	config       string
	suite        string
	store        string
	storePath    string
	environments string
	logLevel     string
	logFormat    string
}

// app is the state shared by every subcommand once the root pre-run has
// resolved configuration.
type app struct {
	flags   rootFlags
	getenv  func(string) string
	cfg     config.Config
	log     zerolog.Logger
	store   environment.Store
	mgr     *environment.Manager[environment.Environment]
	printer *logging.Printer
}

func newRootCommand() *cobra.Command {
	a := &app{getenv: os.Getenv}

	root := &cobra.Command{
		Use:           "bootkit",
		Short:         "Select and persist the backend environment an app targets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.config, "config", "c", "", "Configuration file path (yaml|json|toml, default "+config.DefaultPath+" when present)")
	pf.StringVar(&a.flags.suite, "suite", "", "Store suite name (env BOOTKIT_SUITE)")
	pf.StringVar(&a.flags.store, "store", "", "Store backend: memory|file|sqlite (env BOOTKIT_STORE)")
	pf.StringVar(&a.flags.storePath, "store-path", "", "Store file for the file and sqlite backends (env BOOTKIT_STORE_PATH)")
	pf.StringVar(&a.flags.environments, "environments", "", "Environments file; the bundled list is used when empty (env BOOTKIT_ENVIRONMENTS)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "Log level: debug|info|warn|error (env BOOTKIT_LOG_LEVEL)")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "Log format: console|json (env BOOTKIT_LOG_FORMAT)")

	root.AddCommand(newEnvCommand(a))
	root.AddCommand(newServeCommand(a))
	return root
}

func (a *app) overrides(c *config.Config) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&c.Suite, a.flags.suite)
	set(&c.Store.Backend, a.flags.store)
	set(&c.Store.Path, a.flags.storePath)
	set(&c.EnvironmentsFile, a.flags.environments)
	set(&c.Log.Level, a.flags.logLevel)
	set(&c.Log.Format, a.flags.logFormat)
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve(a.flags.config, a.getenv, a.overrides)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log, err = logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Out: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	notify.Default().SetLogger(a.log)
	a.printer = logging.NewPrinter(cmd.OutOrStdout())

	a.store, err = environment.OpenStore(environment.StoreOptions{
		Backend: cfg.Store.Backend,
		Path:    cfg.Store.Path,
		Suite:   cfg.Suite,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	var src environment.Source = environment.Bundled()
	if cfg.EnvironmentsFile != "" {
		src = environment.FileSource{Path: cfg.EnvironmentsFile}
	}
	a.mgr, err = environment.NewEnvironments(src, a.store, environment.WithLogger(a.log))
	if err != nil {
		_ = a.close()
		return err
	}
	a.log.Debug().Str("suite", cfg.Suite).Str("store", cfg.Store.Backend).Int("environments", len(a.mgr.Environments())).Msg("environment manager ready")
	return nil
}

func (a *app) close() error {
	if c, ok := a.store.(io.Closer); ok {
		a.store = nil
		return c.Close()
	}
	return nil
}
