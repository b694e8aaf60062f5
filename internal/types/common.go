// Package types provides shared types used across the livy-mcp codebase
package types

import (
	"context"
	"errors"
	"time"

	"github.com/AltairaLabs/livy-mcp/internal/livy"
	"github.com/AltairaLabs/livy-mcp/internal/livy/marshal"
)

// ErrSessionNotFound is returned for names with no registered session
var ErrSessionNotFound = errors.New("session not found")

// Executor runs code on one remote session
type Executor interface {
	Run(ctx context.Context, code string) (string, error)
	RunFile(ctx context.Context, path string) (string, error)
	Read(ctx context.Context, expr string) (marshal.Value, error)
	Call(ctx context.Context, fname string, args []any, kwargs map[string]any) (marshal.Value, error)
}

// Session is an executor with a lifecycle; *livy.Session implements it
type Session interface {
	Executor
	Snapshot() livy.Snapshot
	Close(ctx context.Context)
}

// SessionInfo describes a registered session
type SessionInfo struct {
	Name       string    `json:"name"`
	ID         int       `json:"id"`
	Host       string    `json:"host"`
	Kind       string    `json:"kind"`
	State      string    `json:"state"`
	Bindings   int       `json:"bindings"`
	Statements uint64    `json:"statements"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// SessionRegistry hands out registered sessions to tool handlers
type SessionRegistry interface {
	// Acquire returns the named session for exclusive use until release is called
	Acquire(ctx context.Context, name string) (exec Executor, release func(), err error)
	Info(ctx context.Context, name string) (*SessionInfo, error)
	List(ctx context.Context) []*SessionInfo
}

// SessionManager extends SessionRegistry with session lifecycle operations
type SessionManager interface {
	SessionRegistry
	Open(ctx context.Context, name string, jars []string) (*SessionInfo, error)
	Close(ctx context.Context, name string) error
}

// AuditEntry represents an audit log entry for tool calls and results
type AuditEntry struct {
	Session   string
	ToolName  string
	Arguments map[string]any
	Result    string
	ErrorMsg  string
	Duration  time.Duration
}

// AuditLogger provides audit logging operations
type AuditLogger interface {
	LogToolCall(ctx context.Context, entry *AuditEntry)
	LogToolResult(ctx context.Context, entry *AuditEntry)
}

// ValueResponse is the tool payload for a value read back from a session
type ValueResponse struct {
	Session string `json:"session"`
	Tag     string `json:"tag"`
	Value   any    `json:"value"`
}
