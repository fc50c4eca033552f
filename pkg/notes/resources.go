package notes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

const ConfigResourceURI = "config://mcp"

func (ns *NotesServer) addResources() {
	configResource := mcp.NewResource(
		ConfigResourceURI,
		"config",
		mcp.WithResourceDescription("Server configuration, secrets masked"),
		mcp.WithMIMEType("application/json"),
	)
	ns.McpServer.AddResource(configResource, ns.ReadConfig)
}

// ReadConfig serves the server configuration as indented JSON
func (ns *NotesServer) ReadConfig(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(ns.config.Document(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ConfigResourceURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
