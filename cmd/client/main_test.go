package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]any
		wantErr bool
	}{
		{name: "Empty", raw: "", want: map[string]any{}},
		{name: "Empty object", raw: "{}", want: map[string]any{}},
		{name: "Null", raw: "null", want: map[string]any{}},
		{name: "Object", raw: `{"path":"a/b.md","contextLength":10}`, want: map[string]any{"path": "a/b.md", "contextLength": float64(10)}},
		{name: "Array", raw: `["a"]`, wantErr: true},
		{name: "Malformed", raw: `{"path":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintToolResult(t *testing.T) {
	var out bytes.Buffer

	printToolResult(&out, &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent("first"),
			mcp.NewTextContent("second"),
		},
	})

	assert.Equal(t, "first\nsecond\n", out.String())
}

func TestPrintTools(t *testing.T) {
	var out bytes.Buffer

	printTools(&out, []mcp.Tool{
		mcp.NewTool("readNote", mcp.WithDescription("Read the contents of a specific note")),
		mcp.NewTool("listNotes", mcp.WithDescription("List all notes in the vault or a specific folder")),
	})

	assert.Equal(t,
		"- readNote: Read the contents of a specific note\n- listNotes: List all notes in the vault or a specific folder\n\n",
		out.String())
}

func TestRun_RequiresServer(t *testing.T) {
	err := run(context.Background(), options{args: "{}"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--server")
}

func TestRun_InvalidArgs(t *testing.T) {
	var out bytes.Buffer

	err := run(context.Background(), options{server: "obsidian-mcp", args: "not json"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--args")
	assert.Empty(t, out.String(), "nothing should start before the arguments are valid")
}

func TestNewRootCmd_RequiresServerFlag(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server")
}
