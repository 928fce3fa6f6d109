// Package connection keeps one shared database handle per process.
//
// A Manager is built once at startup and passed to whatever needs the store.
// It dials lazily on the first Get, shares a single in-flight dial between
// concurrent callers, caches the handle on success and caches nothing on
// failure so the next Get dials again.
package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"event-bookings/config"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const defaultConnectTimeout = 10 * time.Second

// ErrClosed is returned by a Get whose dial was overtaken by Close.
var ErrClosed = errors.New("connection: manager closed while connecting")

// DialFunc opens and verifies a connection to uri.
type DialFunc[T any] func(ctx context.Context, uri string) (T, error)

type closer interface {
	Close(ctx context.Context) error
}

type Manager[T any] struct {
	uri     string
	dial    DialFunc[T]
	timeout time.Duration
	log     zerolog.Logger

	mu    sync.RWMutex
	conn  T
	ready bool
	// gen is bumped by Close; a dial started under an older gen is discarded
	gen uint64

	group singleflight.Group
}

type Option func(*options)

type options struct {
	timeout time.Duration
	log     zerolog.Logger
}

// WithConnectTimeout bounds every dial attempt.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New returns a Manager for uri. An empty uri is a configuration error.
func New[T any](uri string, dial DialFunc[T], opts ...Option) (*Manager[T], error) {
	if uri == "" {
		return nil, &config.ConfigurationError{Key: "DATABASE_URI"}
	}
	if dial == nil {
		return nil, fmt.Errorf("connection: nil dial func")
	}

	o := options{timeout: defaultConnectTimeout, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Manager[T]{
		uri:     uri,
		dial:    dial,
		timeout: o.timeout,
		log:     o.log,
	}, nil
}

// Get returns the shared handle, dialing if no handle is cached yet.
func (m *Manager[T]) Get(ctx context.Context) (T, error) {
	if conn, ok := m.cached(); ok {
		return conn, nil
	}

	ch := m.group.DoChan("connect", func() (interface{}, error) {
		m.mu.RLock()
		conn, ok, gen := m.conn, m.ready, m.gen
		m.mu.RUnlock()
		if ok {
			return conn, nil
		}

		// the dial outlives the caller that happened to start it
		dialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()

		start := time.Now()
		m.log.Info().Msg("connecting to database")
		conn, err := m.dial(dialCtx, m.uri)
		if err != nil {
			m.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("database connection failed")
			return nil, fmt.Errorf("connect to database: %w", err)
		}

		m.mu.Lock()
		if m.gen != gen {
			m.mu.Unlock()
			m.log.Warn().Msg("manager closed during dial; discarding connection")
			if err := closeConn(context.WithoutCancel(ctx), conn); err != nil {
				m.log.Error().Err(err).Msg("failed to close discarded connection")
			}
			return nil, ErrClosed
		}
		m.conn = conn
		m.ready = true
		m.mu.Unlock()

		m.log.Info().Dur("elapsed", time.Since(start)).Msg("database connection established")
		return conn, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Close releases the cached handle, if any, and forgets it. A dial still in
// flight is discarded when it completes. A later Get dials a fresh
// connection.
func (m *Manager[T]) Close(ctx context.Context) error {
	m.mu.Lock()
	conn, ready := m.conn, m.ready
	var zero T
	m.conn = zero
	m.ready = false
	m.gen++
	m.mu.Unlock()
	m.group.Forget("connect")

	if !ready {
		return nil
	}
	return closeConn(ctx, conn)
}

func closeConn[T any](ctx context.Context, conn T) error {
	if c, ok := any(conn).(closer); ok {
		return c.Close(ctx)
	}
	return nil
}

func (m *Manager[T]) cached() (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conn, m.ready
}
