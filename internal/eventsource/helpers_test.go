package eventsource

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// recorder is a Listener that records events as short strings.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}

func (r *recorder) OnAppChanged(app AppIdentity, title string) {
	r.add(fmt.Sprintf("app:%s:%s", app.Name, title))
}
func (r *recorder) OnWindowChanged(title string) { r.add("window:" + title) }
func (r *recorder) OnIdleChanged(idle bool)      { r.add(fmt.Sprintf("idle:%t", idle)) }
func (r *recorder) OnTick()                      { r.add("tick") }

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// without returns the recorded events minus ticks.
func (r *recorder) without(kind string) []string {
	var out []string
	for _, e := range r.snapshot() {
		if !strings.HasPrefix(e, kind) {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) count(kind string) int {
	n := 0
	for _, e := range r.snapshot() {
		if strings.HasPrefix(e, kind) {
			n++
		}
	}
	return n
}

type fakeProbe struct {
	mu       sync.Mutex
	app      AppIdentity
	appErr   error
	title    string
	titleErr error
	idle     time.Duration
}

func (p *fakeProbe) set(fn func(p *fakeProbe)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

func (p *fakeProbe) ActiveApp(context.Context) (AppIdentity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.app, p.appErr
}

func (p *fakeProbe) WindowTitle(context.Context, AppIdentity) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title, p.titleErr
}

func (p *fakeProbe) IdleTime(context.Context) (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idle, nil
}
