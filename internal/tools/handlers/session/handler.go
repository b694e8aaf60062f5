// Package session provides the livy.session tool handler
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/AltairaLabs/livy-mcp/internal/livy/config"
	"github.com/AltairaLabs/livy-mcp/internal/tools"
	"github.com/AltairaLabs/livy-mcp/internal/types"
)

// Handler handles livy.session requests
type Handler struct {
	manager     types.SessionManager
	auditLogger types.AuditLogger
}

// NewHandler creates a new livy.session handler
func NewHandler(manager types.SessionManager, auditLogger types.AuditLogger) *Handler {
	return &Handler{
		manager:     manager,
		auditLogger: auditLogger,
	}
}

// Response is the payload of every livy.session action
type Response struct {
	Action   string               `json:"action"`
	Message  string               `json:"message,omitempty"`
	Sessions []*types.SessionInfo `json:"sessions"`
}

// Handle processes livy.session requests
func (h *Handler) Handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action := request.GetString("action", config.ActionStatus)
	name := request.GetString("name", config.DefaultSessionName)

	resp := Response{Action: action, Sessions: []*types.SessionInfo{}}

	switch action {
	case config.ActionStatus:
		info, err := h.manager.Info(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf(config.ErrSessionError, err)), nil
		}
		resp.Sessions = append(resp.Sessions, info)

	case config.ActionList:
		resp.Sessions = append(resp.Sessions, h.manager.List(ctx)...)

	case config.ActionOpen:
		jars := tools.ParseJars(request.GetString("jars", ""))
		h.audit(ctx, action, name, map[string]any{"name": name, "jars": jars})

		info, err := h.manager.Open(ctx, name, jars)
		if err != nil {
			h.auditError(ctx, name, err)
			return mcp.NewToolResultError(fmt.Sprintf(config.ErrSessionError, err)), nil
		}
		resp.Sessions = append(resp.Sessions, info)
		resp.Message = fmt.Sprintf(config.MsgSessionReady, info.ID, info.Host)

	case config.ActionClose:
		h.audit(ctx, action, name, map[string]any{"name": name})

		if err := h.manager.Close(ctx, name); err != nil {
			h.auditError(ctx, name, err)
			return mcp.NewToolResultError(fmt.Sprintf(config.ErrSessionError, err)), nil
		}
		resp.Message = fmt.Sprintf("Session %s closed", name)

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}

	respJSON, _ := json.Marshal(resp)
	return mcp.NewToolResultText(string(respJSON)), nil
}

func (h *Handler) audit(ctx context.Context, action, name string, args map[string]any) {
	args["action"] = action
	h.auditLogger.LogToolCall(ctx, &types.AuditEntry{
		Session:   name,
		ToolName:  config.ToolSession,
		Arguments: args,
	})
}

func (h *Handler) auditError(ctx context.Context, name string, err error) {
	h.auditLogger.LogToolResult(ctx, &types.AuditEntry{
		Session:  name,
		ToolName: config.ToolSession,
		ErrorMsg: err.Error(),
	})
}
