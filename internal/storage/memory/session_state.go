package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/AltairaLabs/livy-mcp/internal/types"
)

var (
	errSessionNil       = errors.New("session cannot be nil")
	errSessionNameEmpty = errors.New("session name cannot be empty")
)

// InMemorySessionRegistry implements types.SessionRegistry over open livy
// sessions keyed by name. Each session is handed out to one caller at a time.
type InMemorySessionRegistry struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
	now     func() time.Time
}

type sessionEntry struct {
	name    string
	session types.Session
	// sem holds a token while the session is acquired
	sem chan struct{}
	// gone is closed once the entry leaves the registry
	gone       chan struct{}
	createdAt  time.Time
	lastActive time.Time
	statements uint64
}

// NewInMemorySessionRegistry creates an empty registry
func NewInMemorySessionRegistry() *InMemorySessionRegistry {
	return &InMemorySessionRegistry{
		entries: make(map[string]*sessionEntry),
		now:     time.Now,
	}
}

// Put registers an open session under name
func (r *InMemorySessionRegistry) Put(ctx context.Context, name string, session types.Session) error {
	if session == nil {
		return errSessionNil
	}
	if name == "" {
		return errSessionNameEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("session with name %s already exists", name)
	}

	now := r.now()
	r.entries[name] = &sessionEntry{
		name:       name,
		session:    session,
		sem:        make(chan struct{}, 1),
		gone:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
	}
	return nil
}

// Acquire waits until the named session is free and returns it. The caller
// must invoke release exactly once; extra calls are ignored.
func (r *InMemorySessionRegistry) Acquire(ctx context.Context, name string) (types.Executor, func(), error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", types.ErrSessionNotFound, name)
	}

	select {
	case e.sem <- struct{}{}:
	case <-e.gone:
		return nil, nil, fmt.Errorf("%w: %s", types.ErrSessionNotFound, name)
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	r.mu.Lock()
	if r.entries[name] != e {
		r.mu.Unlock()
		<-e.sem
		return nil, nil, fmt.Errorf("%w: %s", types.ErrSessionNotFound, name)
	}
	e.statements++
	e.lastActive = r.now()
	r.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			r.mu.Lock()
			e.lastActive = r.now()
			r.mu.Unlock()
			<-e.sem
		})
	}
	return e.session, release, nil
}

// Info describes the named session
func (r *InMemorySessionRegistry) Info(ctx context.Context, name string) (*types.SessionInfo, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	if !ok {
		r.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", types.ErrSessionNotFound, name)
	}
	info := r.describe(e)
	r.mu.RUnlock()

	return info, nil
}

// List describes every registered session, ordered by name
func (r *InMemorySessionRegistry) List(ctx context.Context) []*types.SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*types.SessionInfo, 0, len(r.entries))
	for _, e := range r.entries {
		result = append(result, r.describe(e))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Remove waits for the named session to be free, unregisters it and returns
// it so the caller can close it.
func (r *InMemorySessionRegistry) Remove(ctx context.Context, name string) (types.Session, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrSessionNotFound, name)
	}

	select {
	case e.sem <- struct{}{}:
	case <-e.gone:
		return nil, fmt.Errorf("%w: %s", types.ErrSessionNotFound, name)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[name] != e {
		<-e.sem
		return nil, fmt.Errorf("%w: %s", types.ErrSessionNotFound, name)
	}
	r.drop(e)
	return e.session, nil
}

// TakeIdle unregisters and returns the sessions that are not in use and have
// been inactive for longer than maxIdle.
func (r *InMemorySessionRegistry) TakeIdle(maxIdle time.Duration) []types.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	var taken []types.Session
	for _, e := range r.entries {
		if !e.lastActive.Before(cutoff) {
			continue
		}
		select {
		case e.sem <- struct{}{}:
			r.drop(e)
			taken = append(taken, e.session)
		default:
		}
	}
	return taken
}

// Drain unregisters and returns every session, waiting for each to be free
// until ctx is done.
func (r *InMemorySessionRegistry) Drain(ctx context.Context) []types.Session {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()

	var drained []types.Session
	for _, name := range names {
		if s, err := r.Remove(ctx, name); err == nil {
			drained = append(drained, s)
		}
	}
	return drained
}

// Len returns the number of registered sessions
func (r *InMemorySessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// drop must be called with the write lock held
func (r *InMemorySessionRegistry) drop(e *sessionEntry) {
	delete(r.entries, e.name)
	close(e.gone)
}

// describe must be called with at least the read lock held
func (r *InMemorySessionRegistry) describe(e *sessionEntry) *types.SessionInfo {
	snap := e.session.Snapshot()
	return &types.SessionInfo{
		Name:       e.name,
		ID:         snap.ID,
		Host:       snap.Host,
		Kind:       snap.Kind,
		State:      string(snap.State),
		Bindings:   snap.Bindings,
		Statements: e.statements,
		CreatedAt:  e.createdAt,
		LastActive: e.lastActive,
	}
}
