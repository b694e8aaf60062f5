// Package livy drives interactive interpreter sessions on a livy gateway:
// it opens a session, submits statements, waits for them to complete and
// reads remote values back with their dynamic type preserved.
package livy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AltairaLabs/livy-mcp/internal/livy/config"
	"github.com/AltairaLabs/livy-mcp/internal/livy/marshal"
	"github.com/AltairaLabs/livy-mcp/internal/livy/poll"
	"github.com/AltairaLabs/livy-mcp/internal/livy/transport"
)

// DefaultBootstrap is run once the session becomes idle
const DefaultBootstrap = "import pyspark; import json"

// Session is a handle to one remote interpreter session.
// Statement submissions must be serialized by the caller.
type Session struct {
	ID   int
	Host string
	Kind string
	Jars []string

	client       Transport
	schedule     poll.Schedule
	registry     *marshal.Registry
	logger       *slog.Logger
	bootstrap    string
	release      bool
	closeTimeout time.Duration

	// lifecycle serializes open/close transitions
	lifecycle sync.Mutex

	mu       sync.Mutex
	state    SessionState
	closed   bool
	instance string
	seq      uint64
	bindings map[string]struct{}
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithTransport replaces the default HTTP transport
func WithTransport(t Transport) Option {
	return func(s *Session) {
		s.client = t
	}
}

// WithSchedule overrides the polling schedule from the configuration
func WithSchedule(schedule poll.Schedule) Option {
	return func(s *Session) {
		s.schedule = schedule
	}
}

// WithRegistry replaces the type tag registry used by Read
func WithRegistry(r *marshal.Registry) Option {
	return func(s *Session) {
		s.registry = r
	}
}

// WithBootstrap replaces the statement run after the session becomes idle.
// An empty string disables it.
func WithBootstrap(code string) Option {
	return func(s *Session) {
		s.bootstrap = code
	}
}

// NormalizeHost strips any scheme from url, applies http:// and appends the
// port when one is given.
func NormalizeHost(url, port string) string {
	url = strings.TrimSpace(url)
	if idx := strings.Index(url, "://"); idx >= 0 {
		url = url[idx+3:]
	}
	url = strings.TrimRight(url, "/")
	if port != "" {
		url = url + ":" + port
	}
	return "http://" + url
}

// Open creates a remote session and blocks until the gateway reports it idle.
// Configuration errors are returned before any network call; transport
// errors are returned unchanged.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := marshal.NewRegistry()
	registry.SetAllowGeneric(cfg.Read.AllowGenericJSON)

	s := &Session{
		Host:         NormalizeHost(cfg.URL, cfg.Port),
		Kind:         cfg.Kind,
		Jars:         append([]string(nil), cfg.Jars...),
		schedule:     cfg.Schedule(),
		registry:     registry,
		logger:       slog.Default(),
		bootstrap:    DefaultBootstrap,
		release:      cfg.Read.ReleaseBindings,
		closeTimeout: config.DefaultCloseTimeout,
		state:        SessionNotStarted,
		instance:     strings.ReplaceAll(uuid.NewString(), "-", ""),
		bindings:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = transport.New(s.Host,
			transport.WithLogger(s.logger),
			transport.WithTimeout(config.DefaultRequestTimeout),
		)
	}

	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	conf := map[string]string{"spark.jars.ivy": cfg.IvyDir}
	if len(s.Jars) > 0 {
		conf["spark.jars.packages"] = strings.Join(s.Jars, ",")
	}

	var created sessionResponse
	if err := s.client.Post(ctx, "/sessions", createSessionRequest{Kind: s.Kind, Conf: conf}, &created); err != nil {
		_ = s.client.Close()
		return nil, err
	}
	s.ID = created.ID
	s.setState(created.State)

	s.logger.InfoContext(ctx, "session_created",
		"session_id", s.ID,
		"host", s.Host,
		"kind", s.Kind,
		"jars", len(s.Jars),
	)

	if err := s.waitIdle(ctx); err != nil {
		s.teardown(ctx)
		return nil, err
	}
	s.logger.InfoContext(ctx, "session_ready",
		"session_id", s.ID,
		"host", s.Host,
	)

	if s.bootstrap != "" {
		if _, err := s.Run(ctx, s.bootstrap); err != nil {
			s.teardown(ctx)
			return nil, fmt.Errorf("session bootstrap failed: %w", err)
		}
	}
	return s, nil
}

// With opens a session, passes it to fn and closes it on every exit path
func With(ctx context.Context, cfg config.Config, fn func(*Session) error, opts ...Option) error {
	s, err := Open(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer s.Close(ctx)
	return fn(s)
}

// Close deletes the remote session and releases the connection pool.
// Deletion is best effort: failures are logged, never returned. Calling
// Close more than once is a no-op.
func (s *Session) Close(ctx context.Context) {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.teardown(ctx)
}

// teardown must be called with the lifecycle lock held
func (s *Session) teardown(ctx context.Context) {
	s.mu.Lock()
	s.closed = true
	s.state = SessionClosed
	live := len(s.bindings)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.closeTimeout)
	defer cancel()

	if err := s.client.Delete(ctx, s.path(), nil); err != nil {
		s.logger.WarnContext(ctx, "session_delete_failed",
			"session_id", s.ID,
			"error", err,
		)
	} else {
		s.logger.InfoContext(ctx, "session_closed",
			"session_id", s.ID,
			"bindings", live,
		)
	}
	_ = s.client.Close()
}

// State returns the last state observed for the session
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Closed reports whether Close has run
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Snapshot is a point-in-time description of a session
type Snapshot struct {
	ID       int
	Host     string
	Kind     string
	State    SessionState
	Bindings int
}

// Snapshot describes the session as last observed
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:       s.ID,
		Host:     s.Host,
		Kind:     s.Kind,
		State:    s.state,
		Bindings: len(s.bindings),
	}
}

// Bindings returns the temporary remote names currently alive in the session
// namespace. They accumulate with every Read unless release is enabled.
func (s *Session) Bindings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.bindings))
	for name := range s.bindings {
		out = append(out, name)
	}
	return out
}

func (s *Session) waitIdle(ctx context.Context) error {
	return poll.Wait(ctx, s.schedule, func(ctx context.Context) (bool, error) {
		var r sessionResponse
		if err := s.client.Get(ctx, s.path(), &r); err != nil {
			return false, err
		}
		s.setState(r.State)

		if r.State == SessionIdle {
			return true, nil
		}
		if r.State.Failed() {
			return false, &StateError{Resource: "session", ID: s.ID, State: string(r.State)}
		}
		return false, nil
	})
}

func (s *Session) setState(state SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.state = state
	}
}

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

func (s *Session) path() string {
	return fmt.Sprintf("/sessions/%d", s.ID)
}
