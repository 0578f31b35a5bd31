package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	core "github.com/alexanderramin/focustrack/internal/app"
	"github.com/alexanderramin/focustrack/internal/config"
	"github.com/alexanderramin/focustrack/internal/eventsource"
	"github.com/alexanderramin/focustrack/internal/logging"
	"github.com/alexanderramin/focustrack/internal/metrics"
	"github.com/alexanderramin/focustrack/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const metricsShutdownTimeout = 5 * time.Second

func newTrackCmd(app *App) *cobra.Command {
	var tui bool

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Record application and window focus until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runTrack(ctx, cmd, app, tui)
		},
	}

	cmd.Flags().BoolVar(&tui, "tui", false, "Show a live view of the current session")

	return cmd
}

func runTrack(ctx context.Context, cmd *cobra.Command, app *App, tui bool) error {
	cfg := app.Config
	logger := app.Logger

	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr, logging.Component(logger, "metrics"))
		if err := srv.Start(); err != nil {
			return fmt.Errorf("starting metrics server: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			if err := srv.Stop(stopCtx); err != nil {
				logger.Warn().Err(err).Msg("Metrics server shutdown failed")
			}
		}()
	}

	if !app.Store.Enabled() {
		logger.Warn().Msg("Usage store unavailable, focus changes will not be recorded")
	} else if cfg.Tracking.ReconcileOrphans {
		n, err := app.Store.ReconcileOrphans(ctx, 0)
		if err != nil {
			logger.Warn().Err(err).Msg("Could not close sessions left open by a previous run")
		} else if n > 0 {
			logger.Info().Int64("sessions", n).Msg("Closed sessions left open by a previous run")
		}
	}

	newSource := app.NewSource
	if newSource == nil {
		newSource = DefaultSource
	}
	src, err := newSource(cfg, app.Clock, logging.Component(logger, "eventsource"))
	if err != nil {
		return err
	}

	manager := service.NewSessionManager(app.Store, app.Clock, logger)
	coord, err := core.New(manager, app.Store, core.Options{
		Clock:           app.Clock,
		Logger:          logger,
		RecentAppsLimit: cfg.Tracking.RecentAppsLimit,
	})
	if err != nil {
		return err
	}

	logger.Info().Str("source", cfg.Source.Kind).Bool("tui", tui).Msg("Tracking started")
	if !tui {
		return coord.Run(ctx, src)
	}
	return runLiveView(ctx, cmd, coord, src)
}

// runLiveView runs the coordinator in the background and renders its
// read-model until the user quits or ctx ends.
func runLiveView(ctx context.Context, cmd *cobra.Command, coord *core.Coordinator, src eventsource.Source) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, unsubscribe := coord.Subscribe()
	defer unsubscribe()

	runErr := make(chan error, 1)
	go func() { runErr <- coord.Run(ctx, src) }()

	p := tea.NewProgram(newLiveModel(updates),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)
	_, progErr := p.Run()

	cancel()
	err := <-runErr
	if progErr != nil && !errors.Is(progErr, tea.ErrProgramKilled) {
		return progErr
	}
	return err
}

// DefaultSource builds the event source named by source.kind.
func DefaultSource(cfg *config.Config, clock quartz.Clock, logger zerolog.Logger) (eventsource.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceX11, "":
		return eventsource.NewPoller(eventsource.NewX11Probe(nil), eventsource.PollerConfig{
			PollInterval:  cfg.Tracking.PollInterval,
			TickInterval:  cfg.Tracking.TickInterval,
			IdleThreshold: cfg.Tracking.IdleThreshold,
		}, clock, logger), nil
	case config.SourceFeed:
		if cfg.Source.FeedPath == "" {
			return nil, fmt.Errorf("source.feed_path is required for the feed source")
		}
		return eventsource.NewFeed(cfg.Source.FeedPath, cfg.Tracking.TickInterval, clock, logger), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}
