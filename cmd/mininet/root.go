package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/mininet/internal/catalog"
	"github.com/dshills/mininet/internal/config"
	"github.com/dshills/mininet/internal/database"
	"github.com/dshills/mininet/internal/log"
	"github.com/dshills/mininet/internal/menu"
	"github.com/dshills/mininet/internal/report"
)

type options struct {
	configFile string
	envFile    string
	driver     string
	host       string
	database   string
	user       string
	password   string
	logLevel   string
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "mininet",
		Short: "Run the mininet reports against a database",
		Long: `mininet connects to the mininet database and offers a menu of five
fixed reports over its users, subscriptions, actors and movies. Each
report is printed as a table.

Connection settings come from defaults, an optional config file, a .env
file, MININET_* environment variables and finally these flags.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       versionString(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, in, out, cmd.ErrOrStderr())
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "Path to a YAML or JSON configuration file")
	f.StringVar(&opts.envFile, "env-file", "", "Path to a dotenv file (default .env when present)")
	f.StringVar(&opts.driver, "driver", "", "Database driver: mysql, postgres, pgx or sqlite")
	f.StringVar(&opts.host, "host", "", "Database server host")
	f.StringVar(&opts.database, "database", "", "Database name, or file path for sqlite")
	f.StringVar(&opts.user, "user", "", "Database user")
	f.StringVar(&opts.password, "password", "", "Database password")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	return cmd
}

// run loads the configuration, opens the session and hands it to the menu.
// Only configuration problems are returned; a failed connection is reported
// on out and ends the program normally.
func run(ctx context.Context, opts *options, in io.Reader, out, errOut io.Writer) error {
	cfg, err := config.Load(config.Sources{File: opts.configFile, EnvFile: opts.envFile})
	if err != nil {
		return err
	}
	cfg.LoadFromFlags(opts.driver, opts.host, opts.database, opts.user, opts.password, opts.logLevel)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.Configure(cfg.Log, errOut)
	logger.Debug("configuration loaded", "config", cfg.Redacted())

	console := report.NewConsole(out)
	session, err := database.Connect(ctx, *cfg, logger)
	if err != nil {
		logger.Debug("connection failed", log.Err(err))
		console.Failure(err)
		return nil
	}
	defer session.Close()

	logger = logger.With(log.String("session", session.ID()))
	console.Connected(session.Dialect().Title())

	cat, err := catalog.New(session.Dialect())
	if err != nil {
		return err
	}

	exec := report.NewExecutor(session, console, logger)
	if err := menu.New(cat, exec, in, console, logger).Run(ctx); err != nil {
		logger.Warn("session ended", log.Err(err))
	}
	return nil
}
