package notes

import (
	"context"

	"github.com/KyleBrandon/obsidian-mcp/pkg/obsidian"
	"github.com/mark3labs/mcp-go/mcp"
)

type ListNotesRequest struct {
	Folder string `json:"folder,omitempty"`
}

type ListNotesTool struct {
	definition
	store NoteStore
}

func NewListNotesTool(store NoteStore) *ListNotesTool {
	return &ListNotesTool{
		store:      store,
		definition: newDefinition(mcp.NewTool(
			"listNotes",
			mcp.WithDescription("List all notes in the vault or a specific folder"),
			mcp.WithString("folder", mcp.Description("Optional folder path to list notes from")),
		)),
	}
}

// Execute lists the markdown notes whose path starts with the folder argument
func (t *ListNotesTool) Execute(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	var params ListNotesRequest
	if err := t.bind(args, &params); err != nil {
		return nil, err
	}

	notes, err := t.store.ListNotes(ctx, params.Folder)
	if err != nil {
		return nil, err
	}

	return jsonResult(obsidian.FilterNotes(notes, params.Folder))
}
