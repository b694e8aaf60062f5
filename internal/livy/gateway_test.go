package livy

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AltairaLabs/livy-mcp/internal/livy/config"
	"github.com/AltairaLabs/livy-mcp/internal/livy/poll"
)

// fakeGateway is an in-process stand-in for the livy REST API
type fakeGateway struct {
	t      *testing.T
	server *httptest.Server

	mu            sync.Mutex
	sessionStates []SessionState // successive GET /sessions/{id} answers; the last one repeats
	createStatus  int
	deleteStatus  int
	createBody    createSessionRequest
	creates       int
	sessionGets   int
	deletes       int
	statements    []string
	pending       int // "running" answers before a statement becomes final
	polls         map[int]int
	respond       func(code string) (StatementState, *Output)
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()
	g := &fakeGateway{
		t:             t,
		sessionStates: []SessionState{SessionStarting, SessionIdle},
		polls:         make(map[int]int),
		respond: func(code string) (StatementState, *Output) {
			return StatementAvailable, textOutput("")
		},
	}
	g.server = httptest.NewServer(http.HandlerFunc(g.handle))
	t.Cleanup(g.server.Close)
	return g
}

func textOutput(text string) *Output {
	return &Output{Status: OutputOK, Data: map[string]any{MIMETextPlain: text}}
}

func (g *fakeGateway) config() config.Config {
	cfg := config.Default()
	cfg.URL = g.server.URL
	return cfg
}

func fastSchedule() poll.Schedule {
	return poll.Schedule{Fallback: time.Millisecond}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (g *fakeGateway) open(ctx context.Context, opts ...Option) (*Session, error) {
	base := []Option{
		WithSchedule(fastSchedule()),
		WithLogger(discardLogger()),
		WithBootstrap(""),
	}
	return Open(ctx, g.config(), append(base, opts...)...)
}

func (g *fakeGateway) codes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.statements...)
}

func (g *fakeGateway) counts() (creates, gets, deletes int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.creates, g.sessionGets, g.deletes
}

func (g *fakeGateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (g *fakeGateway) handle(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodPost && len(parts) == 1:
		g.creates++
		if err := json.NewDecoder(r.Body).Decode(&g.createBody); err != nil {
			g.t.Errorf("bad create body: %v", err)
		}
		if g.createStatus != 0 {
			g.writeJSON(w, g.createStatus, map[string]string{"msg": "rejected"})
			return
		}
		g.writeJSON(w, http.StatusCreated, sessionResponse{ID: 1, State: SessionNotStarted, Kind: g.createBody.Kind})

	case r.Method == http.MethodGet && len(parts) == 2:
		idx := min(g.sessionGets, len(g.sessionStates)-1)
		g.sessionGets++
		g.writeJSON(w, http.StatusOK, sessionResponse{ID: 1, State: g.sessionStates[idx]})

	case r.Method == http.MethodDelete && len(parts) == 2:
		g.deletes++
		if g.deleteStatus != 0 {
			g.writeJSON(w, g.deleteStatus, map[string]string{"msg": "boom"})
			return
		}
		g.writeJSON(w, http.StatusOK, map[string]string{"msg": "deleted"})

	case r.Method == http.MethodPost && len(parts) == 3:
		var req statementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			g.t.Errorf("bad statement body: %v", err)
		}
		g.statements = append(g.statements, req.Code)
		g.writeJSON(w, http.StatusCreated, statementResponse{ID: len(g.statements) - 1, State: StatementWaiting})

	case r.Method == http.MethodGet && len(parts) == 4:
		id, _ := strconv.Atoi(parts[3])
		g.polls[id]++
		if g.polls[id] <= g.pending {
			g.writeJSON(w, http.StatusOK, statementResponse{ID: id, State: StatementRunning})
			return
		}
		state, out := g.respond(g.statements[id])
		g.writeJSON(w, http.StatusOK, statementResponse{ID: id, State: state, Output: out})

	default:
		http.NotFound(w, r)
	}
}
