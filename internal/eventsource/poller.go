package eventsource

import (
	"context"
	"errors"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// Poller is a Source that samples a Probe at a fixed interval.
type Poller struct {
	probe         Probe
	clock         quartz.Clock
	logger        zerolog.Logger
	pollInterval  time.Duration
	tickInterval  time.Duration
	idleThreshold time.Duration
}

type PollerConfig struct {
	PollInterval  time.Duration
	TickInterval  time.Duration
	IdleThreshold time.Duration
}

func NewPoller(probe Probe, cfg PollerConfig, clock quartz.Clock, logger zerolog.Logger) *Poller {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Poller{
		probe:         probe,
		clock:         clock,
		logger:        logger.With().Str("component", "eventsource").Logger(),
		pollInterval:  cfg.PollInterval,
		tickInterval:  cfg.TickInterval,
		idleThreshold: cfg.IdleThreshold,
	}
}

// Run samples the probe once immediately and then every poll interval, and
// ticks every tick interval while the user is active. It returns nil when ctx
// is cancelled.
func (p *Poller) Run(ctx context.Context, l Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	em := newEmitter(l, p.logger)
	p.sample(ctx, em)

	poll := p.clock.TickerFunc(ctx, p.pollInterval, func() error {
		p.sample(ctx, em)
		return nil
	}, "poller", "poll")
	tick := p.clock.TickerFunc(ctx, p.tickInterval, func() error {
		em.tick()
		return nil
	}, "poller", "tick")

	pollErr := poll.Wait()
	cancel()
	tickErr := tick.Wait()
	for _, err := range []error{pollErr, tickErr} {
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	return nil
}

func (p *Poller) sample(ctx context.Context, em *emitter) {
	if idle, err := p.probe.IdleTime(ctx); err != nil {
		p.logger.Debug().Err(err).Msg("Idle probe failed")
	} else {
		em.setIdle(idle >= p.idleThreshold)
	}

	app, err := p.probe.ActiveApp(ctx)
	if err != nil {
		p.logger.Debug().Err(err).Msg("Active application probe failed")
		return
	}
	title, err := p.probe.WindowTitle(ctx, app)
	if err != nil {
		p.logger.Debug().Err(err).Str("app", app.Name).Msg("Window title unavailable")
		title = ""
	}
	em.focus(app, title)
}
