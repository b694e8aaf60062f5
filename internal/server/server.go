// Package server exposes livy sessions as MCP tools and reports session
// readiness over gRPC health checking.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/AltairaLabs/livy-mcp/internal/livy/config"
	"github.com/AltairaLabs/livy-mcp/internal/tools"
	"github.com/AltairaLabs/livy-mcp/internal/tools/handlers/python"
	"github.com/AltairaLabs/livy-mcp/internal/tools/handlers/session"
	"github.com/AltairaLabs/livy-mcp/internal/tools/handlers/value"
	"github.com/AltairaLabs/livy-mcp/internal/types"
)

// Config holds configuration for the MCP server
type Config struct {
	Name    string
	Version string
}

// MCPServer wraps the mcp-go server with the livy tool handlers
type MCPServer struct {
	server       *server.MCPServer
	manager      types.SessionManager
	auditLogger  types.AuditLogger
	toolRegistry *tools.ToolHandlerRegistry
}

// NewMCPServer creates and configures a new MCP server
func NewMCPServer(cfg Config, manager types.SessionManager, audit types.AuditLogger) *MCPServer {
	mcpServer := server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	ms := &MCPServer{
		server:      mcpServer,
		manager:     manager,
		auditLogger: audit,
	}

	ms.toolRegistry = tools.NewToolHandlerRegistry(map[string]tools.ToolHandlerFunc{
		config.ToolRun:     python.NewRunHandler(manager, audit).Handle,
		config.ToolRunFile: python.NewFileHandler(manager, audit).Handle,
		config.ToolRead:    value.NewReadHandler(manager, audit).Handle,
		config.ToolCall:    value.NewCallHandler(manager, audit).Handle,
		config.ToolSession: session.NewHandler(manager, audit).Handle,
	})

	ms.registerTools()
	return ms
}

// registerTools registers all MCP tools with handlers via the tool registry
func (ms *MCPServer) registerTools() {
	add := func(tool mcp.Tool) {
		h, err := ms.toolRegistry.GetHandler(tool.Name)
		if err != nil {
			panic(fmt.Sprintf("Tool %s not found in registry", tool.Name))
		}
		ms.server.AddTool(tool, server.ToolHandlerFunc(h))
	}

	sessionParam := mcp.WithString("session",
		mcp.Description("Session name (defaults to \""+config.DefaultSessionName+"\")"),
	)

	add(mcp.NewTool(config.ToolRun,
		mcp.WithDescription("Run a pyspark code fragment in a session and return its text output"),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("Code to run; common indentation is removed"),
		),
		sessionParam,
	))

	add(mcp.NewTool(config.ToolRunFile,
		mcp.WithDescription("Run the contents of a local file in a session"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the file to submit"),
		),
		sessionParam,
	))

	add(mcp.NewTool(config.ToolRead,
		mcp.WithDescription("Evaluate an expression in a session and return its value with its type tag"),
		mcp.WithString("expr",
			mcp.Required(),
			mcp.Description("Expression to evaluate"),
		),
		sessionParam,
	))

	add(mcp.NewTool(config.ToolCall,
		mcp.WithDescription("Call a function defined in a session and return its value"),
		mcp.WithString("function",
			mcp.Required(),
			mcp.Description("Dotted name of the callable"),
		),
		mcp.WithArray("args",
			mcp.Description("Positional arguments"),
		),
		mcp.WithObject("kwargs",
			mcp.Description("Keyword arguments"),
		),
		sessionParam,
	))

	add(mcp.NewTool(config.ToolSession,
		mcp.WithDescription("Open, close, list or describe sessions"),
		mcp.WithString("action",
			mcp.Description("One of status, list, open, close (defaults to status)"),
			mcp.Enum(config.ActionStatus, config.ActionList, config.ActionOpen, config.ActionClose),
		),
		mcp.WithString("name",
			mcp.Description("Session name (defaults to \""+config.DefaultSessionName+"\")"),
		),
		mcp.WithString("jars",
			mcp.Description("Comma separated extra packages for open"),
		),
	))
}

// Server returns the underlying mcp-go server
func (ms *MCPServer) Server() *server.MCPServer {
	return ms.server
}

// ToolNames returns the names of the registered tools
func (ms *MCPServer) ToolNames() []string {
	return ms.toolRegistry.Names()
}

// CallTool dispatches a tool request through the registry
func (ms *MCPServer) CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h, err := ms.toolRegistry.GetHandler(request.Params.Name)
	if err != nil {
		return nil, err
	}
	return h(ctx, request)
}

// Serve starts the MCP server with stdio transport
func (ms *MCPServer) Serve() error {
	return server.ServeStdio(ms.server)
}

// ServeHTTP starts the MCP server with HTTP/SSE transport on the specified address
func (ms *MCPServer) ServeHTTP(addr string) error {
	sseServer := server.NewSSEServer(ms.server,
		server.WithBaseURL("http://"+addr),
		server.WithStaticBasePath("/mcp"),
	)
	return sseServer.Start(addr)
}

// ServeHTTPWithLogger starts the MCP server with HTTP/SSE transport and custom logger
func (ms *MCPServer) ServeHTTPWithLogger(addr string, logger *slog.Logger) error {
	logger.Info("Starting MCP server with HTTP/SSE transport", "address", addr, "base_path", "/mcp")
	return ms.ServeHTTP(addr)
}

// RegisterHealth registers the health service on a gRPC server
func RegisterHealth(grpcServer *grpc.Server, m *SessionManager) {
	healthpb.RegisterHealthServer(grpcServer, m.Health())
}
