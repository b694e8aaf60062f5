package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/livy-mcp/internal/livy/config"
	"github.com/AltairaLabs/livy-mcp/internal/types"
)

// Invocation is one tool call routed to a named session
type Invocation struct {
	Tool      string
	Session   string
	Arguments map[string]any
}

// Invoke acquires the session named by inv, audits the call and runs fn
// against it. Session and execution failures become tool errors, never Go
// errors, so the client sees them as results.
func Invoke(
	ctx context.Context,
	registry types.SessionRegistry,
	audit types.AuditLogger,
	inv Invocation,
	fn func(ctx context.Context, exec types.Executor) (string, error),
) *mcp.CallToolResult {
	if inv.Session == "" {
		inv.Session = config.DefaultSessionName
	}

	exec, release, err := registry.Acquire(ctx, inv.Session)
	if err != nil {
		if errors.Is(err, types.ErrSessionNotFound) && inv.Session == config.DefaultSessionName {
			return mcp.NewToolResultError(config.ErrNoSession)
		}
		return mcp.NewToolResultError(fmt.Sprintf(config.ErrSessionError, err))
	}
	defer release()

	audit.LogToolCall(ctx, &types.AuditEntry{
		Session:   inv.Session,
		ToolName:  inv.Tool,
		Arguments: inv.Arguments,
	})

	start := time.Now()
	out, err := fn(ctx, exec)
	elapsed := time.Since(start)

	if err != nil {
		audit.LogToolResult(ctx, &types.AuditEntry{
			Session:  inv.Session,
			ToolName: inv.Tool,
			ErrorMsg: err.Error(),
			Duration: elapsed,
		})
		return mcp.NewToolResultError(err.Error())
	}

	audit.LogToolResult(ctx, &types.AuditEntry{
		Session:  inv.Session,
		ToolName: inv.Tool,
		Result:   out,
		Duration: elapsed,
	})
	return mcp.NewToolResultText(out)
}
