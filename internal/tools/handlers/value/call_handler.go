package value

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/livy-mcp/internal/livy/config"
	"github.com/AltairaLabs/livy-mcp/internal/tools"
	"github.com/AltairaLabs/livy-mcp/internal/types"
)

// CallHandler handles the livy.call tool
type CallHandler struct {
	registry    types.SessionRegistry
	auditLogger types.AuditLogger
}

// NewCallHandler creates a new livy.call handler
func NewCallHandler(registry types.SessionRegistry, auditLogger types.AuditLogger) *CallHandler {
	return &CallHandler{
		registry:    registry,
		auditLogger: auditLogger,
	}
}

// Handle implements the livy.call tool
func (h *CallHandler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fname, err := request.RequireString("function")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	raw := request.GetArguments()
	args, kwargs, err := callArguments(raw["args"], raw["kwargs"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	inv := tools.Invocation{
		Tool:    config.ToolCall,
		Session: request.GetString("session", config.DefaultSessionName),
		Arguments: map[string]any{
			"function": fname,
			"args":     args,
			"kwargs":   kwargs,
		},
	}
	return tools.Invoke(ctx, h.registry, h.auditLogger, inv, func(ctx context.Context, exec types.Executor) (string, error) {
		v, err := exec.Call(ctx, fname, args, kwargs)
		if err != nil {
			return "", err
		}
		return tools.FormatValue(inv.Session, v)
	}), nil
}

func callArguments(rawArgs, rawKwargs any) ([]any, map[string]any, error) {
	decoded, err := tools.DecodeArgs(rawArgs)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid 'args' parameter: %w", err)
	}
	var args []any
	if decoded != nil {
		list, ok := decoded.([]any)
		if !ok {
			return nil, nil, fmt.Errorf("'args' must be an array, got %T", rawArgs)
		}
		args = list
	}

	decoded, err = tools.DecodeArgs(rawKwargs)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid 'kwargs' parameter: %w", err)
	}
	var kwargs map[string]any
	if decoded != nil {
		obj, ok := decoded.(map[string]any)
		if !ok {
			return nil, nil, fmt.Errorf("'kwargs' must be an object, got %T", rawKwargs)
		}
		kwargs = obj
	}
	return args, kwargs, nil
}
