// Package store implements the usage store: a single-writer queue in front of
// the SQLite repositories. Writes are fire-and-forget, reads and
// identifier-returning writes wait behind everything queued before them.
package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/alexanderramin/focustrack/internal/db"
	"github.com/alexanderramin/focustrack/internal/domain"
	"github.com/alexanderramin/focustrack/internal/metrics"
	"github.com/alexanderramin/focustrack/internal/repository"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

var (
	// ErrUnavailable is returned by every operation of a store whose
	// database could not be opened. Tracking is disabled.
	ErrUnavailable = errors.New("usage store unavailable")

	// ErrClosed is returned by operations issued after Close.
	ErrClosed = errors.New("usage store closed")
)

const defaultQueueSize = 256

type Options struct {
	Clock     quartz.Clock
	Logger    zerolog.Logger
	QueueSize int
	// Rules drives category assignment of new applications. Nil means
	// domain.DefaultCategoryRules.
	Rules []domain.CategoryRule
	// UnitOfWork overrides the transaction runner. Nil means a
	// SQLiteUnitOfWork over the store's database.
	UnitOfWork db.UnitOfWork
}

type op struct {
	name   string
	fn     func(ctx context.Context) error
	result chan error // nil for fire-and-forget writes
}

// Store is safe for concurrent use. All database access happens on one
// goroutine, in submission order.
type Store struct {
	database *sql.DB
	ownsDB   bool
	uow      db.UnitOfWork

	categories   repository.CategoryRepo
	applications repository.ApplicationRepo
	windows      repository.WindowRepo
	sessions     repository.SessionRepo

	rules  []domain.CategoryRule
	clock  quartz.Clock
	logger zerolog.Logger

	ops  chan op
	done chan struct{}

	mu     sync.RWMutex
	closed bool
}

// New starts a store over an open, migrated database. The caller keeps
// ownership of database.
func New(database *sql.DB, opts Options) *Store {
	opts = withDefaults(opts)
	uow := opts.UnitOfWork
	if uow == nil {
		uow = db.NewSQLiteUnitOfWork(database)
	}
	s := &Store{
		database:     database,
		uow:          uow,
		categories:   repository.NewSQLiteCategoryRepo(database),
		applications: repository.NewSQLiteApplicationRepo(database),
		windows:      repository.NewSQLiteWindowRepo(database),
		sessions:     repository.NewSQLiteSessionRepo(database),
		rules:        opts.Rules,
		clock:        opts.Clock,
		logger:       opts.Logger.With().Str("component", "store").Logger(),
		ops:          make(chan op, opts.QueueSize),
		done:         make(chan struct{}),
	}
	go s.run()
	return s
}

// Open opens the database at path and starts a store that owns it. When the
// database cannot be opened the returned store is disabled rather than nil,
// and the open error is returned alongside it for reporting.
func Open(path string, opts Options) (*Store, error) {
	database, err := db.OpenDB(path)
	if err != nil {
		opts = withDefaults(opts)
		opts.Logger.Error().Err(err).Str("path", path).Msg("Usage store unavailable, tracking disabled")
		return Disabled(opts.Logger), err
	}
	s := New(database, opts)
	s.ownsDB = true
	return s, nil
}

// Disabled returns a store whose operations are all no-ops that report
// ErrUnavailable.
func Disabled(logger zerolog.Logger) *Store {
	return &Store{
		clock:  quartz.NewReal(),
		logger: logger.With().Str("component", "store").Logger(),
		closed: true,
	}
}

func withDefaults(opts Options) Options {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Rules == nil {
		opts.Rules = domain.DefaultCategoryRules
	}
	return opts
}

// Enabled reports whether the store is backed by a database.
func (s *Store) Enabled() bool {
	return s.ops != nil
}

func (s *Store) run() {
	defer close(s.done)
	ctx := context.Background()
	for o := range s.ops {
		metrics.StoreQueueDepth.Set(float64(len(s.ops)))
		err := o.fn(ctx)
		if o.result != nil {
			o.result <- err
			continue
		}
		if err != nil {
			metrics.StoreWriteErrors.Inc()
			s.logger.Error().Err(err).Str("op", o.name).Msg("Store write failed")
		}
	}
}

// enqueue hands o to the writer goroutine. It blocks only while the queue is
// full.
func (s *Store) enqueue(ctx context.Context, o op) error {
	if s.ops == nil {
		return ErrUnavailable
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.ops <- o:
		metrics.StoreQueueDepth.Set(float64(len(s.ops)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// write queues fn without waiting for it to run. Failures are logged by the
// writer goroutine.
func (s *Store) write(ctx context.Context, name string, fn func(ctx context.Context) error) {
	if err := s.enqueue(ctx, op{name: name, fn: fn}); err != nil && !errors.Is(err, ErrUnavailable) {
		s.logger.Debug().Err(err).Str("op", name).Msg("Dropped store write")
	}
}

// call queues fn and waits for its result. The operation still runs if ctx
// ends while waiting.
func (s *Store) call(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	result := make(chan error, 1)
	if err := s.enqueue(ctx, op{name: name, fn: fn, result: result}); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until every operation queued before it has run.
func (s *Store) Flush(ctx context.Context) error {
	return s.call(ctx, "flush", func(context.Context) error { return nil })
}

// Close stops accepting operations, drains the queue and, for stores created
// by Open, closes the database. It is safe to call more than once.
func (s *Store) Close() error {
	if s.ops == nil {
		return nil
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.closed = true
	close(s.ops)
	s.mu.Unlock()

	<-s.done
	metrics.StoreQueueDepth.Set(0)
	if s.ownsDB {
		return s.database.Close()
	}
	return nil
}
