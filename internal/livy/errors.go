package livy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSessionClosed is returned by any operation on a torn-down session
	ErrSessionClosed = errors.New("livy session is closed")
	// ErrUnexpectedStatus means the gateway returned an output status other than ok or error
	ErrUnexpectedStatus = errors.New("unexpected statement output status")
	// ErrRelativePath is returned by RunFile for paths that are not absolute
	ErrRelativePath = errors.New("file path must be absolute")
	// ErrInvalidCall is returned by Call for names or arguments that cannot be rendered
	ErrInvalidCall = errors.New("invalid function call")
)

// ExecutionError carries the diagnostics of code that failed remotely
type ExecutionError struct {
	Name      string
	Message   string
	Traceback []string
	Kind      string
}

// KindLabel is the human-readable interpreter label used in messages
func (e *ExecutionError) KindLabel() string {
	if e.Kind == "spark" {
		return "Spark"
	}
	return "PySpark"
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s error while processing submitted code.\nname: %s\nvalue: %s\ntraceback:\n%s",
		e.KindLabel(), e.Name, e.Message, strings.Join(e.Traceback, ""))
}

// StateError is returned when a session or statement reaches a state it can
// never leave without reaching the awaited one.
type StateError struct {
	Resource string
	ID       int
	State    string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %d entered state %q", e.Resource, e.ID, e.State)
}

// FromOutput translates a statement output into its text or an error
func FromOutput(out *Output, kind string) (string, error) {
	if out == nil {
		return "", fmt.Errorf("%w: missing output", ErrUnexpectedStatus)
	}
	switch out.Status {
	case OutputOK:
		return out.Text(), nil
	case OutputError:
		return "", &ExecutionError{
			Name:      out.EName,
			Message:   out.EValue,
			Traceback: out.Traceback,
			Kind:      kind,
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnexpectedStatus, out.Status)
	}
}
