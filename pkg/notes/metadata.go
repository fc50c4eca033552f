package notes

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

type GetMetadataRequest struct {
	Path string `json:"path"`
}

type GetMetadataTool struct {
	definition
	store NoteStore
}

func NewGetMetadataTool(store NoteStore) *GetMetadataTool {
	return &GetMetadataTool{
		store:      store,
		definition: newDefinition(mcp.NewTool(
			"getMetadata",
			mcp.WithDescription("Get metadata for a specific note"),
			mcp.WithString("path", mcp.Description("Path to the note"), mcp.Required(), mcp.MinLength(1)),
		)),
	}
}

func (t *GetMetadataTool) Execute(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	var params GetMetadataRequest
	if err := t.bind(args, &params); err != nil {
		return nil, err
	}

	metadata, err := t.store.GetMetadata(ctx, params.Path)
	if err != nil {
		return nil, err
	}

	if metadata == nil {
		metadata = map[string]any{}
	}

	return jsonResult(metadata)
}
