// Package value provides the handlers that read remote values back from a
// session with their type preserved.
package value

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/livy-mcp/internal/livy/config"
	"github.com/AltairaLabs/livy-mcp/internal/tools"
	"github.com/AltairaLabs/livy-mcp/internal/types"
)

// ReadHandler handles the livy.read tool
type ReadHandler struct {
	registry    types.SessionRegistry
	auditLogger types.AuditLogger
}

// NewReadHandler creates a new livy.read handler
func NewReadHandler(registry types.SessionRegistry, auditLogger types.AuditLogger) *ReadHandler {
	return &ReadHandler{
		registry:    registry,
		auditLogger: auditLogger,
	}
}

// Handle implements the livy.read tool
func (h *ReadHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expr, err := request.RequireString("expr")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	inv := tools.Invocation{
		Tool:      config.ToolRead,
		Session:   request.GetString("session", config.DefaultSessionName),
		Arguments: map[string]any{"expr": expr},
	}
	return tools.Invoke(ctx, h.registry, h.auditLogger, inv, func(ctx context.Context, exec types.Executor) (string, error) {
		v, err := exec.Read(ctx, expr)
		if err != nil {
			return "", err
		}
		return tools.FormatValue(inv.Session, v)
	}), nil
}
