package app

import (
	"fmt"
	"sync"
	"time"
)

// View is the read-model published to presentation layers.
type View struct {
	ActiveApp       string
	ActiveWindow    string
	Elapsed         time.Duration
	ElapsedText     string
	RecentApps      []string
	CategoryName    string
	CategoryColor   string
	Idle            bool
	TrackingEnabled bool
}

func (v View) clone() View {
	if v.RecentApps != nil {
		v.RecentApps = append([]string(nil), v.RecentApps...)
	}
	return v
}

// FormatElapsed renders d as H:MM:SS from one hour up and M:SS below.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// broadcaster fans the latest View out to subscribers. Each subscriber
// channel holds at most one value; a slow reader only ever sees the newest.
type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan View
	closed bool
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan View)}
}

func (b *broadcaster) subscribe(initial View) (<-chan View, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan View, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	ch <- initial.clone()

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

func (b *broadcaster) publish(v View) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v.clone()
	}
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
