// Package python provides the handlers that submit pyspark code to a session
package python

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/livy-mcp/internal/livy/config"
	"github.com/AltairaLabs/livy-mcp/internal/tools"
	"github.com/AltairaLabs/livy-mcp/internal/types"
)

// RunHandler handles the livy.run tool
type RunHandler struct {
	registry    types.SessionRegistry
	auditLogger types.AuditLogger
}

// NewRunHandler creates a new livy.run handler
func NewRunHandler(registry types.SessionRegistry, auditLogger types.AuditLogger) *RunHandler {
	return &RunHandler{
		registry:    registry,
		auditLogger: auditLogger,
	}
}

// Handle implements the livy.run tool
func (h *RunHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := request.GetString("code", "")
	if code == "" {
		return mcp.NewToolResultError(fmt.Sprintf(config.ErrMissingParam, "code")), nil
	}

	inv := tools.Invocation{
		Tool:      config.ToolRun,
		Session:   request.GetString("session", config.DefaultSessionName),
		Arguments: map[string]any{"code": code},
	}
	return tools.Invoke(ctx, h.registry, h.auditLogger, inv, func(ctx context.Context, exec types.Executor) (string, error) {
		return exec.Run(ctx, code)
	}), nil
}
