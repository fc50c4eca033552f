package notes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
)

type ReadNoteRequest struct {
	Path string `json:"path"`
}

type ReadNoteTool struct {
	definition
	store NoteStore
}

func NewReadNoteTool(store NoteStore) *ReadNoteTool {
	return &ReadNoteTool{
		store:      store,
		definition: newDefinition(mcp.NewTool(
			"readNote",
			mcp.WithDescription("Read the contents of a specific note"),
			mcp.WithString("path", mcp.Description("Path to the note to read"), mcp.Required(), mcp.MinLength(1)),
		)),
	}
}

// Execute reads the contents of a note
func (t *ReadNoteTool) Execute(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	var params ReadNoteRequest
	if err := t.bind(args, &params); err != nil {
		return nil, err
	}

	note, err := t.store.ReadNote(ctx, params.Path)
	if err != nil {
		slog.Error("failed to read note", "path", params.Path, "error", err)
		return nil, err
	}

	if note == nil {
		return nil, fmt.Errorf("note not found: %s", params.Path)
	}

	return textResult(note.Content), nil
}
