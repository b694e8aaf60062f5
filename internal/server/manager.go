package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/AltairaLabs/livy-mcp/internal/livy"
	"github.com/AltairaLabs/livy-mcp/internal/livy/config"
	"github.com/AltairaLabs/livy-mcp/internal/storage/memory"
	"github.com/AltairaLabs/livy-mcp/internal/types"
)

// OpenFunc opens a remote session for cfg
type OpenFunc func(ctx context.Context, cfg config.Config) (types.Session, error)

// SessionManager implements types.SessionManager: it opens livy sessions by
// name, keeps them in the registry and reports default session readiness on
// the gRPC health service.
type SessionManager struct {
	*memory.InMemorySessionRegistry

	cfg    config.Config
	open   OpenFunc
	health *health.Server
	logger *slog.Logger
}

// NewSessionManager creates a manager that opens sessions from cfg
func NewSessionManager(cfg config.Config, registry *memory.InMemorySessionRegistry, logger *slog.Logger) *SessionManager {
	m := &SessionManager{
		InMemorySessionRegistry: registry,
		cfg:                     cfg,
		health:                  health.NewServer(),
		logger:                  logger,
	}
	m.open = func(ctx context.Context, cfg config.Config) (types.Session, error) {
		return livy.Open(ctx, cfg, livy.WithLogger(logger))
	}
	m.health.SetServingStatus(config.HealthService, healthpb.HealthCheckResponse_NOT_SERVING)
	return m
}

// Health returns the health service reporting default session readiness
func (m *SessionManager) Health() *health.Server {
	return m.health
}

// Open opens a session with the configured connection and any extra jars,
// blocks until it is idle and registers it under name.
func (m *SessionManager) Open(ctx context.Context, name string, jars []string) (*types.SessionInfo, error) {
	if name == "" {
		name = config.DefaultSessionName
	}
	if _, err := m.Info(ctx, name); err == nil {
		return nil, fmt.Errorf("session with name %s already exists", name)
	}

	cfg := m.cfg
	cfg.Jars = append(append([]string(nil), m.cfg.Jars...), jars...)

	s, err := m.open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := m.Put(ctx, name, s); err != nil {
		s.Close(ctx)
		return nil, err
	}

	m.logger.InfoContext(ctx, "session_registered",
		"name", name,
		"session_id", s.Snapshot().ID,
		"jars", len(cfg.Jars),
	)
	m.refreshHealth(ctx)
	return m.Info(ctx, name)
}

// Close unregisters and deletes the named session
func (m *SessionManager) Close(ctx context.Context, name string) error {
	s, err := m.Remove(ctx, name)
	if err != nil {
		return err
	}
	s.Close(ctx)
	m.refreshHealth(ctx)
	return nil
}

// CloseIdle closes sessions inactive for longer than maxIdle and returns how
// many were closed.
func (m *SessionManager) CloseIdle(ctx context.Context, maxIdle time.Duration) int {
	idle := m.TakeIdle(maxIdle)
	for _, s := range idle {
		s.Close(ctx)
	}
	if len(idle) > 0 {
		m.refreshHealth(ctx)
	}
	return len(idle)
}

// Shutdown closes every session and marks the health service not serving
func (m *SessionManager) Shutdown(ctx context.Context) {
	for _, s := range m.Drain(ctx) {
		s.Close(ctx)
	}
	m.health.Shutdown()
}

func (m *SessionManager) refreshHealth(ctx context.Context) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if info, err := m.Info(ctx, config.DefaultSessionName); err == nil && info.State == string(livy.SessionIdle) {
		status = healthpb.HealthCheckResponse_SERVING
	}
	m.health.SetServingStatus(config.HealthService, status)
}
