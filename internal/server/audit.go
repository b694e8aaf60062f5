package server

import (
	"context"
	"log/slog"

	"github.com/AltairaLabs/livy-mcp/internal/types"
)

// maxAuditResult bounds the result text copied into an audit record
const maxAuditResult = 512

// AuditLogger handles audit logging for MCP tool calls
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogToolCall logs a tool invocation with all relevant context
func (al *AuditLogger) LogToolCall(ctx context.Context, entry *types.AuditEntry) {
	al.logger.InfoContext(ctx, "tool_call",
		"session", entry.Session,
		"tool_name", entry.ToolName,
		"arguments", entry.Arguments,
	)
}

// LogToolResult logs a tool execution result
func (al *AuditLogger) LogToolResult(ctx context.Context, entry *types.AuditEntry) {
	if entry.ErrorMsg != "" {
		al.logger.ErrorContext(ctx, "tool_error",
			"session", entry.Session,
			"tool_name", entry.ToolName,
			"error", entry.ErrorMsg,
			"duration_ms", entry.Duration.Milliseconds(),
		)
		return
	}

	result := entry.Result
	truncated := len(result) > maxAuditResult
	if truncated {
		result = result[:maxAuditResult]
	}
	al.logger.InfoContext(ctx, "tool_result",
		"session", entry.Session,
		"tool_name", entry.ToolName,
		"result", result,
		"result_bytes", len(entry.Result),
		"truncated", truncated,
		"duration_ms", entry.Duration.Milliseconds(),
	)
}
