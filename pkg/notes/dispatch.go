package notes

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Dispatcher routes invocations to registered tools. Invoke always returns a
// result; lookup failures, tool errors and panics become error results.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// ListCapabilities returns the registered tool descriptors
func (d *Dispatcher) ListCapabilities() []mcp.Tool {
	return d.registry.List()
}

// Invoke runs the named tool with args
func (d *Dispatcher) Invoke(ctx context.Context, name string, args map[string]any) (result *mcp.CallToolResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("tool panicked", "tool", name, "panic", r, "stack", string(debug.Stack()))
			result = errorResult(fmt.Sprintf("tool %s failed: %v", name, r))
		}
	}()

	tool, ok := d.registry.Get(name)
	if !ok {
		slog.Warn("unknown tool requested", "tool", name)
		return errorResult(fmt.Sprintf("unknown tool: %s", name))
	}

	if args == nil {
		args = map[string]any{}
	}

	res, err := tool.Execute(ctx, args)
	if err != nil {
		slog.Error("tool execution failed", "tool", name, "duration", time.Since(start), "error", err)
		return errorResult(err.Error())
	}

	if res == nil {
		slog.Error("tool returned no result", "tool", name)
		return errorResult(fmt.Sprintf("tool %s returned no result", name))
	}

	slog.Info("tool executed", "tool", name, "duration", time.Since(start))

	return res
}
