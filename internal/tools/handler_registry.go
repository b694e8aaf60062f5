// Package tools maps MCP tool names to handlers and renders session results
// as tool payloads.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToolHandlerFunc is a function that handles a tool call
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ToolHandlerRegistry maps tool names to handler functions
type ToolHandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]ToolHandlerFunc
}

// NewToolHandlerRegistry creates a registry seeded with initial
func NewToolHandlerRegistry(initial map[string]ToolHandlerFunc) *ToolHandlerRegistry {
	r := &ToolHandlerRegistry{
		handlers: make(map[string]ToolHandlerFunc, len(initial)),
	}
	for name, h := range initial {
		r.handlers[name] = h
	}
	return r
}

// Register adds or replaces the handler for a tool name
func (r *ToolHandlerRegistry) Register(toolName string, handler ToolHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[toolName] = handler
}

// GetHandler returns the handler for a tool name
func (r *ToolHandlerRegistry) GetHandler(toolName string) (ToolHandlerFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[toolName]
	if !ok {
		return nil, fmt.Errorf("no handler registered for tool: %s", toolName)
	}
	return h, nil
}

// Names returns the registered tool names in sorted order
func (r *ToolHandlerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
