package notes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
)

type WriteNoteRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// WriteNoteTool is only registered when the server allows writes
type WriteNoteTool struct {
	definition
	store NoteStore
}

func NewWriteNoteTool(store NoteStore) *WriteNoteTool {
	return &WriteNoteTool{
		store:      store,
		definition: newDefinition(mcp.NewTool(
			"writeNote",
			mcp.WithDescription("Create or update a note"),
			mcp.WithString("path", mcp.Description("Path where to create/update the note"), mcp.Required(), mcp.MinLength(1)),
			mcp.WithString("content", mcp.Description("Content of the note"), mcp.Required()),
		)),
	}
}

// Execute writes content to a note, replacing what was there
func (t *WriteNoteTool) Execute(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	var params WriteNoteRequest
	if err := t.bind(args, &params); err != nil {
		return nil, err
	}

	if err := t.store.WriteNote(ctx, params.Path, params.Content); err != nil {
		slog.Error("failed to write note", "path", params.Path, "error", err)
		return nil, err
	}

	slog.Info("note written", "path", params.Path, "bytes", len(params.Content))

	return textResult(fmt.Sprintf("Note %s written successfully", params.Path)), nil
}
