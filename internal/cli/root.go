package cli

import (
	"github.com/alexanderramin/focustrack/internal/config"
	"github.com/alexanderramin/focustrack/internal/eventsource"
	"github.com/alexanderramin/focustrack/internal/logging"
	"github.com/alexanderramin/focustrack/internal/store"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// SourceFactory builds the focus event source used by track.
type SourceFactory func(cfg *config.Config, clock quartz.Clock, logger zerolog.Logger) (eventsource.Source, error)

// App holds the dependencies shared by all commands. Fields left nil are
// filled from configuration before a command runs, so tests can inject a
// store and config up front.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  *store.Store
	Clock  quartz.Clock

	NewSource     SourceFactory
	IsInteractive func() bool

	ownsStore bool
}

type globalOptions struct {
	configPath string
	dbPath     string
	logLevel   string
}

// NewRootCmd creates the top-level "focustrack" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var opts globalOptions

	root := &cobra.Command{
		Use:           "focustrack",
		Short:         "Track time spent per application and window",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/focustrack/config.yaml)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Database path, overrides storage.path")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(
		newTrackCmd(app),
		newAppsCmd(app),
		newWindowsCmd(app),
		newTodayCmd(app),
		newStatsCmd(app),
		newWeekCmd(app),
		newCategoriesCmd(app),
	)

	return root
}

func (a *App) setup(cmd *cobra.Command, opts globalOptions) error {
	if a.Clock == nil {
		a.Clock = quartz.NewReal()
	}
	if a.IsInteractive == nil {
		a.IsInteractive = func() bool { return false }
	}

	if a.Config == nil {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		if opts.dbPath != "" {
			cfg.Storage.Path = opts.dbPath
		}
		if opts.logLevel != "" {
			cfg.Logging.Level = opts.logLevel
		}
		a.Config = cfg
		a.Logger = logging.New(cfg.Logging, cmd.ErrOrStderr())
	}

	if a.Store == nil {
		// Open logs and returns a disabled store on failure; commands then
		// report ErrUnavailable.
		st, _ := store.Open(a.Config.Storage.Path, store.Options{
			Clock:     a.Clock,
			Logger:    a.Logger,
			QueueSize: a.Config.Store.QueueSize,
		})
		a.Store = st
		a.ownsStore = true
	}
	return nil
}

// Close releases the store when setup opened it. Safe to call more than once.
func (a *App) Close() error {
	if !a.ownsStore || a.Store == nil {
		return nil
	}
	a.ownsStore = false
	return a.Store.Close()
}
