package eventsource

import (
	"sync"

	"github.com/rs/zerolog"
)

// emitter remembers the last reported state and forwards only changes.
type emitter struct {
	mu       sync.Mutex
	listener Listener
	logger   zerolog.Logger

	started bool
	app     AppIdentity
	title   string
	idle    bool
}

func newEmitter(l Listener, logger zerolog.Logger) *emitter {
	return &emitter{listener: l, logger: logger}
}

// focus reports the current foreground app and title.
func (e *emitter) focus(app AppIdentity, title string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case !e.started || app != e.app:
		e.started = true
		e.app = app
		e.title = title
		e.listener.OnAppChanged(app, title)
	case title != e.title:
		e.title = title
		e.listener.OnWindowChanged(title)
	}
}

// windowTitle reports a title change for the current app only.
func (e *emitter) windowTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		e.logger.Debug().Str("title", title).Msg("Title before any application, ignored")
		return
	}
	if title == e.title {
		return
	}
	e.title = title
	e.listener.OnWindowChanged(title)
}

func (e *emitter) setIdle(idle bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if idle == e.idle {
		return
	}
	e.idle = idle
	e.listener.OnIdleChanged(idle)
}

// tick fires OnTick unless the user is idle.
func (e *emitter) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.idle {
		return
	}
	e.listener.OnTick()
}
