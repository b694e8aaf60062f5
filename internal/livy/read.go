package livy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AltairaLabs/livy-mcp/internal/livy/marshal"
)

// Read evaluates expr remotely and reconstructs its value locally.
//
// The value is bound to a fresh name in the remote namespace and its type
// tag queried in the same statement; the tag then selects how the payload is
// fetched and decoded. The binding stays alive for the life of the session
// unless release is enabled in the configuration.
func (s *Session) Read(ctx context.Context, expr string) (marshal.Value, error) {
	name := s.nextBinding()

	out, err := s.Run(ctx, fmt.Sprintf("%s = %s; type(%s).__name__", name, expr, name))
	if err != nil {
		return nil, err
	}
	s.track(name)
	if s.release {
		defer s.unbind(ctx, name)
	}

	tag, err := marshal.Unquote(strings.TrimSpace(out))
	if err != nil {
		return nil, fmt.Errorf("malformed type tag for %q: %w", expr, err)
	}

	entry := s.registry.Resolve(tag)
	raw, err := s.Run(ctx, fetchCode(entry.Strategy, name))
	if err != nil {
		var execErr *ExecutionError
		if entry.Strategy != marshal.FetchJSON || !errors.As(err, &execErr) {
			return nil, err
		}
		// json.dumps raises for values it cannot serialize
		if _, known := s.registry.Lookup(tag); !known && !s.registry.AllowsGeneric() {
			err = errors.Join(marshal.ErrUnknownTag, err)
		}
		return nil, &marshal.MarshallingError{Tag: tag, Raw: raw, Err: err}
	}

	v, err := entry.Decode(tag, raw)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "value_read",
		"session_id", s.ID,
		"binding", name,
		"tag", tag,
		"strategy", entry.Strategy.String(),
	)
	return v, nil
}

func fetchCode(strategy marshal.Strategy, name string) string {
	switch strategy {
	case marshal.FetchRows:
		return fmt.Sprintf("for _livyc_row in %s.toJSON().collect():\n    print(_livyc_row)", name)
	case marshal.FetchJSON:
		return fmt.Sprintf("import json; print(json.dumps(%s))", name)
	default:
		return name
	}
}

func (s *Session) nextBinding() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("_livyc_%s_%d", s.instance, s.seq)
}

func (s *Session) track(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[name] = struct{}{}
}

// unbind deletes a temporary name from the remote namespace. Failures leave
// the binding tracked and are only logged.
func (s *Session) unbind(ctx context.Context, name string) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.Run(ctx, "del "+name); err != nil {
		s.logger.WarnContext(ctx, "binding_release_failed",
			"session_id", s.ID,
			"binding", name,
			"error", err,
		)
		return
	}

	s.mu.Lock()
	delete(s.bindings, name)
	s.mu.Unlock()
}
