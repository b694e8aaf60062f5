package config

import "time"

// Tool defines the tools exposed by the MCP server
const (
	// ToolRun submits a code fragment to a session
	ToolRun = "livy.run"
	// ToolRunFile submits the contents of a local file to a session
	ToolRunFile = "livy.run_file"
	// ToolRead reads a remote value back with its type preserved
	ToolRead = "livy.read"
	// ToolCall invokes a remote callable and reads its return value
	ToolCall = "livy.call"
	// ToolSession opens, closes and describes sessions
	ToolSession = "livy.session"
)

// Session tool actions
const (
	ActionStatus = "status"
	ActionList   = "list"
	ActionOpen   = "open"
	ActionClose  = "close"
)

// DefaultSessionName is used when a tool call names no session
const DefaultSessionName = "default"

// HealthService is the gRPC health service name reporting session readiness
const HealthService = "livy"

// Server defaults
const (
	DefaultGRPCPort        = "50051"
	DefaultHTTPPort        = "8080"
	DefaultSessionMaxIdle  = 30 * time.Minute
	DefaultCleanupInterval = 5 * time.Minute
	DefaultShutdownTimeout = 2 * time.Second
)

// AllTools returns a slice of all available tool names
func AllTools() []string {
	return []string{
		ToolRun,
		ToolRunFile,
		ToolRead,
		ToolCall,
		ToolSession,
	}
}
