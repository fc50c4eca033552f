package notes

import (
	"context"

	"github.com/KyleBrandon/obsidian-mcp/pkg/dto"
	"github.com/mark3labs/mcp-go/mcp"
)

type SearchNotesRequest struct {
	Query         string `json:"query"`
	ContextLength int    `json:"contextLength,omitempty"`
}

type SearchNotesTool struct {
	definition
	store NoteStore
}

func NewSearchNotesTool(store NoteStore) *SearchNotesTool {
	return &SearchNotesTool{
		store:      store,
		definition: newDefinition(mcp.NewTool(
			"searchNotes",
			mcp.WithDescription("Search for notes using a query string"),
			mcp.WithString("query", mcp.Description("Search query string"), mcp.Required()),
			mcp.WithNumber("contextLength",
				mcp.Description("Characters of context to return around each match (optional)"),
				mcp.Min(0),
				integer(),
			),
		)),
	}
}

// Execute searches notes and returns path, content and metadata for each hit
func (t *SearchNotesTool) Execute(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	var params SearchNotesRequest
	if err := t.bind(args, &params); err != nil {
		return nil, err
	}

	results, err := t.store.SearchNotes(ctx, params.Query, params.ContextLength)
	if err != nil {
		return nil, err
	}

	if results == nil {
		results = []dto.Note{}
	}

	return jsonResult(results)
}
