package python

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/livy-mcp/internal/livy/config"
	"github.com/AltairaLabs/livy-mcp/internal/tools"
	"github.com/AltairaLabs/livy-mcp/internal/types"
)

// FileHandler handles the livy.run_file tool
type FileHandler struct {
	registry    types.SessionRegistry
	auditLogger types.AuditLogger
}

// NewFileHandler creates a new livy.run_file handler
func NewFileHandler(registry types.SessionRegistry, auditLogger types.AuditLogger) *FileHandler {
	return &FileHandler{
		registry:    registry,
		auditLogger: auditLogger,
	}
}

// Handle implements the livy.run_file tool
func (h *FileHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !filepath.IsAbs(path) {
		return mcp.NewToolResultError(fmt.Sprintf("path must be absolute, got: %s", path)), nil
	}

	inv := tools.Invocation{
		Tool:      config.ToolRunFile,
		Session:   request.GetString("session", config.DefaultSessionName),
		Arguments: map[string]any{"path": path},
	}
	return tools.Invoke(ctx, h.registry, h.auditLogger, inv, func(ctx context.Context, exec types.Executor) (string, error) {
		return exec.RunFile(ctx, filepath.Clean(path))
	}), nil
}
