package eventsource

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/coder/quartz"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Feed line types.
const (
	feedApp   = "app"
	feedTitle = "title"
	feedIdle  = "idle"
)

// feedLine is one JSON object per line, for example
//
//	{"type":"app","pid":4242,"name":"Editor","title":"main.go"}
//	{"type":"title","title":"README.md"}
//	{"type":"idle","idle":true}
type feedLine struct {
	Type  string `json:"type"`
	PID   int    `json:"pid"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Idle  bool   `json:"idle"`
}

// Feed is a Source fed by an append-only JSON-lines file that a window
// manager hook writes to. Only lines appended after Run starts are read.
type Feed struct {
	path         string
	tickInterval time.Duration
	clock        quartz.Clock
	logger       zerolog.Logger

	offset int64
}

func NewFeed(path string, tickInterval time.Duration, clock quartz.Clock, logger zerolog.Logger) *Feed {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Feed{
		path:         path,
		tickInterval: tickInterval,
		clock:        clock,
		logger:       logger.With().Str("component", "eventsource").Str("feed", path).Logger(),
	}
}

// Run watches the feed's directory so the file may be created or replaced
// after Run starts. It returns nil when ctx is cancelled.
func (f *Feed) Run(ctx context.Context, l Listener) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating feed watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(f.path), err)
	}

	if info, err := os.Stat(f.path); err == nil {
		f.offset = info.Size()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	em := newEmitter(l, f.logger)
	tick := f.clock.TickerFunc(ctx, f.tickInterval, func() error {
		em.tick()
		return nil
	}, "feed", "tick")

	err = f.watch(ctx, watcher, em)
	cancel()
	_ = tick.Wait()
	return err
}

func (f *Feed) watch(ctx context.Context, watcher *fsnotify.Watcher, em *emitter) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(f.path) {
				continue
			}
			switch {
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				f.offset = 0
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				if err := f.drain(em); err != nil {
					f.logger.Warn().Err(err).Msg("Reading focus feed failed")
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn().Err(err).Msg("Focus feed watcher error")
		}
	}
}

// drain reads complete lines past the stored offset. A trailing partial line
// is left for the next write.
func (f *Feed) drain(em *emitter) error {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < f.offset {
		f.logger.Debug().Int64("offset", f.offset).Msg("Focus feed truncated, rewinding")
		f.offset = 0
	}
	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return err
	}

	r := bufio.NewReader(file)
	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		f.offset += int64(len(line))
		f.apply(line, em)
	}
}

func (f *Feed) apply(raw []byte, em *emitter) {
	var line feedLine
	if err := json.Unmarshal(raw, &line); err != nil {
		f.logger.Debug().Err(err).Msg("Skipping malformed feed line")
		return
	}
	switch line.Type {
	case feedApp:
		if line.Name == "" {
			f.logger.Debug().Msg("Skipping app line without a name")
			return
		}
		em.focus(AppIdentity{PID: line.PID, Name: line.Name}, line.Title)
	case feedTitle:
		em.windowTitle(line.Title)
	case feedIdle:
		em.setIdle(line.Idle)
	default:
		f.logger.Debug().Str("type", line.Type).Msg("Skipping unknown feed line")
	}
}
