// Package eventsource turns OS focus and idle signals into the four events
// the tracker consumes: application change, window-title change, idle change
// and a periodic tick.
package eventsource

import (
	"context"
	"time"
)

// AppIdentity identifies the foreground application.
type AppIdentity struct {
	PID  int
	Name string
}

// Listener receives events from a Source. Calls may arrive from different
// goroutines; implementations serialize them.
type Listener interface {
	// OnAppChanged reports a new foreground application with its current
	// window title, which is empty when the title could not be read.
	OnAppChanged(app AppIdentity, title string)
	// OnWindowChanged reports a title change within the same application.
	OnWindowChanged(title string)
	OnIdleChanged(idle bool)
	OnTick()
}

// Source delivers events to l until ctx is done.
type Source interface {
	Run(ctx context.Context, l Listener) error
}

// Probe answers point-in-time questions about the desktop. Implementations
// return an empty title rather than an error when the title is unavailable
// for permission reasons.
type Probe interface {
	ActiveApp(ctx context.Context) (AppIdentity, error)
	WindowTitle(ctx context.Context, app AppIdentity) (string, error)
	IdleTime(ctx context.Context) (time.Duration, error)
}
