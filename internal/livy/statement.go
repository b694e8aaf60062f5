package livy

import (
	"context"
	"fmt"
	"strings"

	"github.com/AltairaLabs/livy-mcp/internal/livy/poll"
)

// Run submits code as a new statement, waits until it is available and
// returns its text/plain output. A remote failure is returned as *ExecutionError.
func (s *Session) Run(ctx context.Context, code string) (string, error) {
	st, err := s.RunStatement(ctx, code)
	if err != nil {
		return "", err
	}
	return FromOutput(st.Output, s.Kind)
}

// RunStatement submits code and returns the full statement record once the
// gateway reports it available. The output is not interpreted.
func (s *Session) RunStatement(ctx context.Context, code string) (*Statement, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	code = Dedent(code)
	base := s.path() + "/statements"

	var created statementResponse
	if err := s.client.Post(ctx, base, statementRequest{Code: code}, &created); err != nil {
		return nil, err
	}

	st := &Statement{
		ID:        created.ID,
		SessionID: s.ID,
		Code:      code,
		State:     StatementWaiting,
	}
	st.advance(created.State)

	s.logger.DebugContext(ctx, "statement_submitted",
		"session_id", s.ID,
		"statement_id", st.ID,
		"code_bytes", len(code),
	)

	path := fmt.Sprintf("%s/%d", base, st.ID)
	err := poll.Wait(ctx, s.schedule, func(ctx context.Context) (bool, error) {
		var r statementResponse
		if err := s.client.Get(ctx, path, &r); err != nil {
			return false, err
		}
		st.advance(r.State)
		st.Output = r.Output

		switch r.State {
		case StatementAvailable:
			return true, nil
		case StatementError, StatementCancelled:
			return false, &StateError{Resource: "statement", ID: st.ID, State: string(r.State)}
		}
		return false, nil
	})
	if err != nil {
		return st, err
	}

	s.logger.DebugContext(ctx, "statement_available",
		"session_id", s.ID,
		"statement_id", st.ID,
		"status", st.Output.statusOrEmpty(),
	)
	return st, nil
}

func (o *Output) statusOrEmpty() string {
	if o == nil {
		return ""
	}
	return o.Status
}

// Dedent removes the whitespace prefix common to every non-blank line, so
// fragments cut from indented source run at top level. Whitespace-only
// lines become empty.
func Dedent(code string) string {
	lines := strings.Split(code, "\n")

	margin := ""
	found := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if !found {
			margin = indent
			found = true
			continue
		}
		margin = commonPrefix(margin, indent)
		if margin == "" {
			break
		}
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.TrimPrefix(line, margin)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
