// Package push manages the event-stream connection that delivers remote task
// changes.
package push

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// State is the lifecycle state of the push channel.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// Conn is one live connection to the event stream.
type Conn interface {
	// ReadEvent blocks for the next event. A *DecodeError means the frame
	// was skipped and the connection is still good; any other error ends
	// the connection.
	ReadEvent() (Event, error)
	Close() error
}

// Dialer opens connections authenticated with a bearer token.
type Dialer interface {
	Dial(ctx context.Context, token string) (Conn, error)
}

// Options tunes a Manager.
type Options struct {
	// BackoffInitial is the first reconnect delay; it doubles up to
	// BackoffMax after each failed attempt.
	BackoffInitial time.Duration
	BackoffMax     time.Duration

	// Buffer is the capacity of the event channel.
	Buffer int

	Logger *slog.Logger
}

// Manager owns at most one connection at a time. Open starts a connect loop
// that reconnects with exponential backoff after transport failures; Close
// stops it, releases the connection and cancels any pending reconnect.
//
// All events are delivered on a single channel that lives as long as the
// Manager. Each Open and each Close bumps the generation, so a consumer can
// discard events that were buffered before the channel was closed.
type Manager struct {
	dialer Dialer
	opts   Options
	logger *slog.Logger
	events chan Event

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
	conn   Conn
	done   chan struct{}
}

// NewManager creates a closed Manager.
func NewManager(dialer Dialer, opts Options) *Manager {
	if opts.BackoffInitial <= 0 {
		opts.BackoffInitial = 500 * time.Millisecond
	}
	if opts.BackoffMax < opts.BackoffInitial {
		opts.BackoffMax = 30 * time.Second
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		dialer: dialer,
		opts:   opts,
		logger: logger.With("component", "push"),
		events: make(chan Event, opts.Buffer),
	}
}

// Events returns the inbound event stream.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Generation returns the generation of the current (or last) connection
// loop. Events carrying another generation are stale.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// Open starts connecting with token. An already running loop is closed
// first, so there is never more than one connection.
func (m *Manager) Open(token string) {
	m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.cancel = cancel
	m.done = done
	m.state = StateConnecting
	m.mu.Unlock()

	m.logger.Debug("opening push channel", "generation", gen)
	go m.run(ctx, token, gen, done)
}

// Close stops the connect loop, releases the connection and waits until
// the loop has exited. Closing a closed Manager is a no-op.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.cancel == nil {
		m.mu.Unlock()
		return
	}
	m.cancel()
	m.cancel = nil
	m.gen++
	conn := m.conn
	done := m.done
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	<-done

	m.mu.Lock()
	m.conn = nil
	m.done = nil
	m.state = StateClosed
	m.mu.Unlock()

	m.logger.Debug("push channel closed")
}

// run is the connect loop for one generation.
func (m *Manager) run(ctx context.Context, token string, gen uint64, done chan struct{}) {
	defer close(done)

	delay := m.opts.BackoffInitial

	for {
		m.setState(gen, StateConnecting)

		conn, err := m.dialer.Dial(ctx, token)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.setState(gen, StateClosed)

			if IsRejected(err) {
				m.logger.Warn("push handshake rejected", "error", err)
				m.deliver(ctx, Event{Kind: EventAuthRejected, Generation: gen})
				return
			}

			m.logger.Warn("push connect failed", "error", err, "retry_in", delay)
			if !sleep(ctx, delay) {
				return
			}
			delay = nextBackoff(delay, m.opts.BackoffMax)
			continue
		}

		if !m.attach(ctx, gen, conn) {
			_ = conn.Close()
			return
		}
		m.logger.Info("push channel open", "generation", gen)
		delay = m.opts.BackoffInitial

		err = m.pump(ctx, gen, conn)
		m.release(gen, conn)

		if ctx.Err() != nil {
			return
		}

		m.logger.Warn("push channel dropped", "error", err, "retry_in", delay)
		if !sleep(ctx, delay) {
			return
		}
		delay = nextBackoff(delay, m.opts.BackoffMax)
	}
}

// attach records conn as the live connection unless Close has already
// started, in which case the caller must close conn itself.
func (m *Manager) attach(ctx context.Context, gen uint64, conn Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ctx.Err() != nil || m.gen != gen {
		return false
	}
	m.conn = conn
	m.state = StateOpen
	return true
}

// release closes conn and moves to Closed before any reconnect attempt.
func (m *Manager) release(gen uint64, conn Conn) {
	_ = conn.Close()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.gen != gen {
		return
	}
	if m.conn == conn {
		m.conn = nil
	}
	m.state = StateClosed
}

// pump reads events until the connection fails or ctx is cancelled.
func (m *Manager) pump(ctx context.Context, gen uint64, conn Conn) error {
	for {
		ev, err := conn.ReadEvent()
		if err != nil {
			var decErr *DecodeError
			if errors.As(err, &decErr) {
				m.logger.Warn("skipping push frame", "error", err)
				continue
			}
			return err
		}

		ev.Generation = gen
		if !m.deliver(ctx, ev) {
			return ctx.Err()
		}
	}
}

func (m *Manager) deliver(ctx context.Context, ev Event) bool {
	select {
	case m.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (m *Manager) setState(gen uint64, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen == gen {
		m.state = s
	}
}

// sleep waits for d or until ctx is cancelled. It reports whether the full
// delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// nextBackoff doubles d, capped at max.
func nextBackoff(d, max time.Duration) time.Duration {
	d *= 2
	if d > max {
		return max
	}
	return d
}
