// Package notes contains the MCP tools that expose an Obsidian vault's notes
package notes

import (
	"context"
	"log/slog"

	"github.com/KyleBrandon/obsidian-mcp/pkg/config"
	"github.com/KyleBrandon/obsidian-mcp/pkg/dto"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NoteStore is the note API the tools delegate to. Paths are passed raw,
// the store is responsible for encoding them.
type NoteStore interface {
	ListNotes(ctx context.Context, folder string) ([]string, error)
	ReadNote(ctx context.Context, path string) (*dto.Note, error)
	WriteNote(ctx context.Context, path, content string) error
	SearchNotes(ctx context.Context, query string, contextLength int) ([]dto.Note, error)
	GetMetadata(ctx context.Context, path string) (map[string]any, error)
}

type NotesServer struct {
	McpServer  *server.MCPServer
	config     config.ServerConfig
	registry   *Registry
	dispatcher *Dispatcher
}

func NewNotesServer(cfg config.ServerConfig, store NoteStore) *NotesServer {
	ns := &NotesServer{config: cfg}

	ns.registry = NewToolRegistry(store, cfg.ReadOnly)
	ns.dispatcher = NewDispatcher(ns.registry)
	ns.McpServer = server.NewMCPServer(cfg.Name, cfg.Version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)
	ns.addTools()
	ns.addResources()

	slog.Info("notes server created",
		"name", cfg.Name,
		"version", cfg.Version,
		"readOnly", cfg.ReadOnly,
		"tools", ns.registry.Names())

	return ns
}

// Dispatcher returns the dispatcher shared by every transport
func (ns *NotesServer) Dispatcher() *Dispatcher {
	return ns.dispatcher
}

// addTools adds every registered tool to the MCP server, routed through the dispatcher
func (ns *NotesServer) addTools() {
	for _, tool := range ns.registry.List() {
		ns.McpServer.AddTool(tool, ns.handleToolCall)
	}
}

// handleToolCall never returns an error, failures are reported in the result
func (ns *NotesServer) handleToolCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return ns.dispatcher.Invoke(ctx, req.Params.Name, req.GetArguments()), nil
}
