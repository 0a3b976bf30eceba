// Package agent defines the tool surface the voice runtime calls into.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownTool is returned when a call names a tool that is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidInput wraps tool input that cannot be decoded or lacks a
	// required field.
	ErrInvalidInput = errors.New("invalid tool input")
)

// Tool is a capability the runtime can invoke during a conversation.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string

	// Description returns a human-readable description for the LLM.
	Description() string

	// InputSchema returns the JSON Schema for the tool's input.
	InputSchema() string

	// Execute runs the tool with the given JSON input and returns the
	// instruction text for the runtime.
	Execute(ctx context.Context, input string) (string, error)
}

// FuncTool is a Tool backed by a function.
type FuncTool struct {
	ToolName  string
	Desc      string
	Schema    string
	ExecuteFn func(ctx context.Context, input string) (string, error)
}

func (t *FuncTool) Name() string        { return t.ToolName }
func (t *FuncTool) Description() string { return t.Desc }

// InputSchema returns the schema, defaulting to an empty object.
func (t *FuncTool) InputSchema() string {
	if t.Schema == "" {
		return `{"type":"object","properties":{}}`
	}
	return t.Schema
}

func (t *FuncTool) Execute(ctx context.Context, input string) (string, error) {
	return t.ExecuteFn(ctx, input)
}

// ToolRegistry holds available tools.
type ToolRegistry struct {
	tools map[string]Tool
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds a tool, replacing any tool with the same name.
func (r *ToolRegistry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Get returns a tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *ToolRegistry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the named tool.
func (r *ToolRegistry) Execute(ctx context.Context, name, input string) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if input == "" {
		input = "{}"
	}
	return t.Execute(ctx, input)
}

// Definitions returns LLM-ready tool definitions for all registered tools,
// sorted by name.
func (r *ToolRegistry) Definitions() []ToolDef {
	defs := make([]ToolDef, 0, len(r.tools))
	for _, name := range r.Names() {
		t := r.tools[name]
		defs = append(defs, ToolDef{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return defs
}

// ToolDef is a serializable tool definition for passing to the LLM.
type ToolDef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema string `json:"inputSchema"`
}
