// Package app hosts the Coordinator, the process-wide owner of the session
// manager. It serializes event-source callbacks onto one goroutine and keeps
// the read-model that presentation layers subscribe to.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/focustrack/internal/domain"
	"github.com/alexanderramin/focustrack/internal/eventsource"
	"github.com/alexanderramin/focustrack/internal/metrics"
	"github.com/alexanderramin/focustrack/internal/service"
	"github.com/coder/quartz"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

const (
	DefaultRecentAppsLimit = 5
	defaultInboxSize       = 64
	defaultCategoryTTL     = time.Minute
	categoryCacheSize      = 64
)

// ErrStopped is returned by operations that need the event loop after Run
// has returned.
var ErrStopped = errors.New("coordinator stopped")

// ReadStore is the query surface the coordinator needs beyond what the
// session manager writes.
type ReadStore interface {
	Enabled() bool
	GetRecentApplications(ctx context.Context, limit int) ([]*domain.Application, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
}

type Options struct {
	Clock           quartz.Clock
	Logger          zerolog.Logger
	RecentAppsLimit int
	InboxSize       int
	CategoryTTL     time.Duration
}

type cachedCategory struct {
	category  domain.Category
	fetchedAt time.Time
}

// Coordinator implements eventsource.Listener. Callbacks only enqueue work;
// a single goroutine started by Run applies it, so session transitions never
// interleave.
type Coordinator struct {
	manager *service.SessionManager
	store   ReadStore
	clock   quartz.Clock
	logger  zerolog.Logger

	recentLimit int
	categoryTTL time.Duration
	categories  *lru.Cache[string, cachedCategory]

	inbox   chan func(ctx context.Context)
	stopped chan struct{}
	runOnce sync.Once

	// owned by the event loop
	idle    bool
	lastApp string

	mu   sync.RWMutex
	view View
	subs *broadcaster
}

var _ eventsource.Listener = (*Coordinator)(nil)

func New(manager *service.SessionManager, store ReadStore, opts Options) (*Coordinator, error) {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.RecentAppsLimit <= 0 {
		opts.RecentAppsLimit = DefaultRecentAppsLimit
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = defaultInboxSize
	}
	if opts.CategoryTTL <= 0 {
		opts.CategoryTTL = defaultCategoryTTL
	}

	cache, err := lru.New[string, cachedCategory](categoryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create category cache: %w", err)
	}

	return &Coordinator{
		manager:     manager,
		store:       store,
		clock:       opts.Clock,
		logger:      opts.Logger.With().Str("component", "coordinator").Logger(),
		recentLimit: opts.RecentAppsLimit,
		categoryTTL: opts.CategoryTTL,
		categories:  cache,
		inbox:       make(chan func(ctx context.Context), opts.InboxSize),
		stopped:     make(chan struct{}),
		view: View{
			ElapsedText:     FormatElapsed(0),
			TrackingEnabled: store.Enabled(),
		},
		subs: newBroadcaster(),
	}, nil
}

// Run processes events from src until ctx is done or src returns, then ends
// the open session and closes all subscriptions. It may be called once.
func (c *Coordinator) Run(ctx context.Context, src eventsource.Source) error {
	err := ErrStopped
	c.runOnce.Do(func() {
		err = c.run(ctx, src)
	})
	return err
}

func (c *Coordinator) run(ctx context.Context, src eventsource.Source) error {
	work := context.WithoutCancel(ctx)
	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		c.loop(loopCtx, work)
	}()

	c.enqueue(func(ctx context.Context) { c.refreshRecentApps(ctx) })

	srcErr := src.Run(ctx, c)
	if srcErr != nil {
		c.logger.Error().Err(srcErr).Msg("Event source stopped")
	}
	stopLoop()
	<-loopDone

	c.manager.EndCurrentSession(work)
	c.mu.Lock()
	c.view.ActiveApp = ""
	c.view.ActiveWindow = ""
	c.view.CategoryName = ""
	c.view.CategoryColor = ""
	c.view.Elapsed = 0
	c.view.ElapsedText = FormatElapsed(0)
	final := c.view.clone()
	c.mu.Unlock()
	c.subs.publish(final)
	c.subs.close()

	c.logger.Info().Msg("Coordinator stopped")
	return srcErr
}

func (c *Coordinator) loop(ctx, work context.Context) {
	defer close(c.stopped)
	for {
		select {
		case fn := <-c.inbox:
			fn(work)
		case <-ctx.Done():
			for {
				select {
				case fn := <-c.inbox:
					fn(work)
				default:
					return
				}
			}
		}
	}
}

// enqueue hands fn to the event loop. It reports false once the loop has
// exited.
func (c *Coordinator) enqueue(fn func(ctx context.Context)) bool {
	select {
	case c.inbox <- fn:
		return true
	case <-c.stopped:
		return false
	}
}

// do runs fn on the event loop and waits for it.
func (c *Coordinator) do(ctx context.Context, fn func(ctx context.Context)) error {
	done := make(chan struct{})
	if !c.enqueue(func(ctx context.Context) {
		defer close(done)
		fn(ctx)
	}) {
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-c.stopped:
		select {
		case <-done:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sync waits until every event received before it has been applied.
func (c *Coordinator) Sync(ctx context.Context) error {
	return c.do(ctx, func(context.Context) {})
}

// RefreshRecentApps reloads the recent-applications list from the store.
func (c *Coordinator) RefreshRecentApps(ctx context.Context) error {
	return c.do(ctx, c.refreshRecentApps)
}

// Snapshot returns a copy of the current read-model.
func (c *Coordinator) Snapshot() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view.clone()
}

// Subscribe returns a channel that always holds the newest read-model. The
// channel is closed when the coordinator stops or cancel is called.
func (c *Coordinator) Subscribe() (<-chan View, func()) {
	c.mu.RLock()
	current := c.view.clone()
	c.mu.RUnlock()
	return c.subs.subscribe(current)
}

func (c *Coordinator) OnAppChanged(app eventsource.AppIdentity, title string) {
	metrics.EventsTotal.WithLabelValues(metrics.EventApp).Inc()
	c.enqueue(func(ctx context.Context) {
		c.lastApp = app.Name
		c.focus(ctx, app.Name, title)
	})
}

func (c *Coordinator) OnWindowChanged(title string) {
	metrics.EventsTotal.WithLabelValues(metrics.EventWindow).Inc()
	c.enqueue(func(ctx context.Context) {
		appName := c.lastApp
		if target, state := c.manager.Current(); state != service.StateIdle {
			appName = target.AppName
		}
		if appName == "" {
			c.logger.Debug().Msg("Window change before any application ignored")
			return
		}
		c.focus(ctx, appName, title)
	})
}

func (c *Coordinator) OnIdleChanged(idle bool) {
	metrics.EventsTotal.WithLabelValues(metrics.EventIdle).Inc()
	c.enqueue(func(ctx context.Context) {
		if idle == c.idle {
			return
		}
		c.idle = idle
		if idle {
			c.manager.PauseSession()
		} else {
			c.manager.ResumeSession()
		}
		c.logger.Debug().Bool("idle", idle).Msg("Idle state changed")
		c.updateView(ctx)
	})
}

func (c *Coordinator) OnTick() {
	metrics.EventsTotal.WithLabelValues(metrics.EventTick).Inc()
	c.enqueue(func(context.Context) {
		elapsed := c.manager.Elapsed()
		c.mu.Lock()
		c.view.Elapsed = elapsed
		c.view.ElapsedText = FormatElapsed(elapsed)
		v := c.view.clone()
		c.mu.Unlock()
		c.subs.publish(v)
	})
}

// focus switches the session to appName/title unless that pair is already
// the open target. Focus changes while idle open the new session paused.
func (c *Coordinator) focus(ctx context.Context, appName, title string) {
	resolved := c.manager.ResolveTitle(appName, title)
	if target, state := c.manager.Current(); state != service.StateIdle &&
		target.AppName == appName && target.Title == resolved {
		metrics.EventsDeduplicated.Inc()
		return
	}

	if err := c.manager.StartNewSession(ctx, appName, title); err != nil {
		c.logger.Warn().Err(err).Str("app", appName).Msg("Could not start session")
	} else if c.idle {
		c.manager.PauseSession()
	}

	c.refreshRecentApps(ctx)
	c.updateView(ctx)
}

func (c *Coordinator) updateView(ctx context.Context) {
	target, state := c.manager.Current()
	elapsed := c.manager.Elapsed()

	var cat domain.Category
	if state != service.StateIdle {
		cat = c.category(ctx, target.CategoryID)
	}

	c.mu.Lock()
	c.view.ActiveApp = target.AppName
	c.view.ActiveWindow = target.Title
	c.view.Elapsed = elapsed
	c.view.ElapsedText = FormatElapsed(elapsed)
	c.view.CategoryName = cat.Name
	c.view.CategoryColor = cat.Color
	c.view.Idle = c.idle
	v := c.view.clone()
	c.mu.Unlock()
	c.subs.publish(v)
}

func (c *Coordinator) refreshRecentApps(ctx context.Context) {
	apps, err := c.store.GetRecentApplications(ctx, c.recentLimit)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Recent applications unavailable")
		return
	}

	seen := make(map[string]bool, len(apps))
	names := make([]string, 0, c.recentLimit)
	for _, a := range apps {
		if seen[a.Name] {
			continue
		}
		seen[a.Name] = true
		names = append(names, a.Name)
		if len(names) == c.recentLimit {
			break
		}
	}

	c.mu.Lock()
	c.view.RecentApps = names
	v := c.view.clone()
	c.mu.Unlock()
	c.subs.publish(v)
}

// category looks id up through the cache. Entries older than the TTL are
// refetched so renames and recolors show up while tracking.
func (c *Coordinator) category(ctx context.Context, id string) domain.Category {
	now := c.clock.Now()
	if cached, ok := c.categories.Get(id); ok && now.Sub(cached.fetchedAt) < c.categoryTTL {
		return cached.category
	}

	cat, err := c.store.GetCategory(ctx, id)
	if err != nil {
		c.logger.Debug().Err(err).Str("category_id", id).Msg("Category lookup failed")
		if cached, ok := c.categories.Get(id); ok {
			return cached.category
		}
		return domain.Category{}
	}
	c.categories.Add(id, cachedCategory{category: *cat, fetchedAt: now})
	return *cat
}
