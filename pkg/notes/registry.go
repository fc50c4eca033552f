package notes

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// Tool is a single invocable capability
type Tool interface {
	Definition() mcp.Tool
	Execute(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error)
}

// Registry holds tools by name. It is filled before serving and only read afterwards,
// so it carries no lock.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// NewToolRegistry builds the registry for store. The write tool is only
// registered when the server is not read-only.
func NewToolRegistry(store NoteStore, readOnly bool) *Registry {
	r := NewRegistry()

	r.Register(NewListNotesTool(store))
	r.Register(NewReadNoteTool(store))
	r.Register(NewSearchNotesTool(store))
	r.Register(NewGetMetadataTool(store))

	if !readOnly {
		r.Register(NewWriteNoteTool(store))
	}

	return r
}

// Register adds tool, replacing any tool with the same name in place
func (r *Registry) Register(tool Tool) {
	name := tool.Definition().Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns the tool descriptors in registration order
func (r *Registry) List() []mcp.Tool {
	tools := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name].Definition())
	}
	return tools
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
