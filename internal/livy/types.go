package livy

import (
	"context"
)

// SessionState is the lifecycle state the gateway reports for a session
type SessionState string

const (
	SessionNotStarted   SessionState = "not_started"
	SessionStarting     SessionState = "starting"
	SessionIdle         SessionState = "idle"
	SessionBusy         SessionState = "busy"
	SessionShuttingDown SessionState = "shutting_down"
	SessionError        SessionState = "error"
	SessionDead         SessionState = "dead"
	SessionKilled       SessionState = "killed"
	SessionSuccess      SessionState = "success"
	// SessionClosed is never reported by the gateway; it marks a session torn down locally
	SessionClosed SessionState = "closed"
)

// Failed reports whether the session can no longer become idle
func (s SessionState) Failed() bool {
	return s == SessionError || s == SessionDead || s == SessionKilled
}

// StatementState is the lifecycle state the gateway reports for a statement
type StatementState string

const (
	StatementWaiting    StatementState = "waiting"
	StatementRunning    StatementState = "running"
	StatementAvailable  StatementState = "available"
	StatementError      StatementState = "error"
	StatementCancelling StatementState = "cancelling"
	StatementCancelled  StatementState = "cancelled"
)

// statementRank orders states so observed transitions only move forward
var statementRank = map[StatementState]int{
	StatementWaiting:    0,
	StatementRunning:    1,
	StatementAvailable:  2,
	StatementError:      2,
	StatementCancelling: 2,
	StatementCancelled:  3,
}

// Output status values
const (
	OutputOK    = "ok"
	OutputError = "error"
)

// MIMETextPlain is the output slot holding the textual result
const MIMETextPlain = "text/plain"

// Output is the result payload of an available statement
type Output struct {
	Status         string         `json:"status"`
	ExecutionCount int            `json:"execution_count"`
	Data           map[string]any `json:"data,omitempty"`
	EName          string         `json:"ename,omitempty"`
	EValue         string         `json:"evalue,omitempty"`
	Traceback      []string       `json:"traceback,omitempty"`
}

// Text returns the text/plain slot of a successful output
func (o *Output) Text() string {
	if o == nil || o.Data == nil {
		return ""
	}
	s, _ := o.Data[MIMETextPlain].(string)
	return s
}

// Statement is one submitted code fragment and its execution record
type Statement struct {
	ID        int
	SessionID int
	Code      string
	State     StatementState
	Output    *Output
}

// advance moves the statement forward; regressions reported by the gateway are ignored
func (st *Statement) advance(state StatementState) {
	next, ok := statementRank[state]
	if !ok {
		return
	}
	if cur, ok := statementRank[st.State]; ok && next < cur {
		return
	}
	st.State = state
}

// Transport is the JSON REST client a session talks through
type Transport interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	Close() error
}

type createSessionRequest struct {
	Kind string            `json:"kind"`
	Conf map[string]string `json:"conf,omitempty"`
}

type sessionResponse struct {
	ID    int          `json:"id"`
	State SessionState `json:"state"`
	Kind  string       `json:"kind,omitempty"`
}

type statementRequest struct {
	Code string `json:"code"`
}

type statementResponse struct {
	ID     int            `json:"id"`
	State  StatementState `json:"state"`
	Output *Output        `json:"output,omitempty"`
}
