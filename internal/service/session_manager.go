package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/focustrack/internal/domain"
	"github.com/alexanderramin/focustrack/internal/metrics"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// UsageStore is the persistence surface the session manager drives.
// Methods without an error result are queued writes.
type UsageStore interface {
	GetOrCreateApplication(ctx context.Context, name string) (*domain.Application, bool, error)
	GetOrCreateWindow(ctx context.Context, appID int64, title string) (*domain.Window, bool, error)
	IncrementAppVisits(ctx context.Context, name string)
	IncrementWindowVisits(ctx context.Context, windowID int64)
	CreateSession(ctx context.Context, windowID int64) (*domain.Session, error)
	CloseSession(ctx context.Context, id int64, endedAt time.Time, active time.Duration)
	UpdateWindowTime(ctx context.Context, windowID int64, delta time.Duration)
	UpdateAppTime(ctx context.Context, appID int64, delta time.Duration)
}

type State int

const (
	StateIdle State = iota
	StateActive
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Target is the application/window pair of the open session.
type Target struct {
	SessionID  int64
	AppID      int64
	AppName    string
	CategoryID string
	WindowID   int64
	Title      string
	StartedAt  time.Time
}

// SessionManager owns the lifecycle of the single open session. At most one
// session is open at a time, and a new one opens only after the previous one
// has been queued for closing.
type SessionManager struct {
	mu     sync.Mutex
	store  UsageStore
	clock  quartz.Clock
	logger zerolog.Logger

	state       State
	target      Target
	activeSince time.Time     // start of the current accumulating span
	accumulated time.Duration // active time before activeSince
	pausedAt    time.Time

	lastTitles map[string]string // app name -> last non-empty title
}

func NewSessionManager(store UsageStore, clock quartz.Clock, logger zerolog.Logger) *SessionManager {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &SessionManager{
		store:      store,
		clock:      clock,
		logger:     logger.With().Str("component", "session-manager").Logger(),
		lastTitles: make(map[string]string),
	}
}

// Current returns the state and, unless idle, the open session's target.
func (m *SessionManager) Current() (Target, State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateIdle {
		return Target{}, StateIdle
	}
	return m.target, m.state
}

// Elapsed is the active time of the open session, excluding pauses.
func (m *SessionManager) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsedLocked(m.clock.Now())
}

func (m *SessionManager) elapsedLocked(now time.Time) time.Duration {
	switch m.state {
	case StateActive:
		return m.accumulated + now.Sub(m.activeSince)
	case StatePaused:
		return m.accumulated
	default:
		return 0
	}
}

// ResolveTitle returns the title a session for appName would be recorded
// under. Empty titles fall back to the last title seen for the app, then to
// the app name.
func (m *SessionManager) ResolveTitle(appName, title string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveTitleLocked(appName, title)
}

func (m *SessionManager) resolveTitleLocked(appName, title string) string {
	if title != "" {
		return title
	}
	return domain.CoalesceStr(m.lastTitles[appName], appName)
}

// StartNewSession ends the open session, if any, and opens one on the
// application/window pair. Applications and windows seen before get their
// visit counters bumped. On error the manager is left idle.
func (m *SessionManager) StartNewSession(ctx context.Context, appName, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.endLocked(ctx)

	title = m.resolveTitleLocked(appName, title)
	m.lastTitles[appName] = title

	app, created, err := m.store.GetOrCreateApplication(ctx, appName)
	if err != nil {
		return fmt.Errorf("resolving application %q: %w", appName, err)
	}
	if !created {
		m.store.IncrementAppVisits(ctx, appName)
	}

	win, created, err := m.store.GetOrCreateWindow(ctx, app.ID, title)
	if err != nil {
		return fmt.Errorf("resolving window %q: %w", title, err)
	}
	if !created {
		m.store.IncrementWindowVisits(ctx, win.ID)
	}

	sess, err := m.store.CreateSession(ctx, win.ID)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	if sess == nil {
		m.logger.Warn().Int64("window_id", win.ID).Msg("Window vanished before session start")
		return nil
	}

	now := m.clock.Now()
	m.state = StateActive
	m.target = Target{
		SessionID:  sess.ID,
		AppID:      app.ID,
		AppName:    app.Name,
		CategoryID: app.CategoryID,
		WindowID:   win.ID,
		Title:      title,
		StartedAt:  sess.StartTime,
	}
	m.activeSince = now
	m.accumulated = 0
	metrics.SessionsOpened.Inc()

	m.logger.Debug().
		Int64("session_id", sess.ID).
		Str("app", app.Name).
		Str("title", title).
		Msg("Session started")
	return nil
}

// EndCurrentSession closes the open session. A paused session closes at its
// pause point. Calling it with no open session does nothing.
func (m *SessionManager) EndCurrentSession(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateIdle {
		m.logger.Debug().Msg("End with no open session ignored")
		return
	}
	m.endLocked(ctx)
}

func (m *SessionManager) endLocked(ctx context.Context) {
	if m.state == StateIdle {
		return
	}
	now := m.clock.Now()
	active := m.elapsedLocked(now)
	endedAt := now
	if m.state == StatePaused {
		endedAt = m.pausedAt
	}

	m.store.CloseSession(ctx, m.target.SessionID, endedAt, active)
	m.store.UpdateWindowTime(ctx, m.target.WindowID, active)
	m.store.UpdateAppTime(ctx, m.target.AppID, active)
	metrics.SessionsClosed.Inc()

	m.logger.Debug().
		Int64("session_id", m.target.SessionID).
		Str("app", m.target.AppName).
		Dur("active", active).
		Msg("Session ended")

	m.state = StateIdle
	m.target = Target{}
	m.accumulated = 0
}

// PauseSession freezes the open session's accumulated time.
func (m *SessionManager) PauseSession() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateActive {
		m.logger.Debug().Stringer("state", m.state).Msg("Pause ignored")
		return
	}
	now := m.clock.Now()
	m.accumulated += now.Sub(m.activeSince)
	m.pausedAt = now
	m.state = StatePaused
}

// ResumeSession restarts accumulation from now, so the pause is not counted.
func (m *SessionManager) ResumeSession() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePaused {
		m.logger.Debug().Stringer("state", m.state).Msg("Resume ignored")
		return
	}
	m.activeSince = m.clock.Now()
	m.state = StateActive
}
