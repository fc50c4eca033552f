package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

type options struct {
	server     string
	serverArgs []string
	tool       string
	args       string
	timeout    time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Diagnostic MCP client for the Obsidian MCP server",
		Long: `Starts an MCP server over stdio, lists its tools and optionally calls one.

Examples:
  client --server ./bin/obsidian-mcp --server-arg=-c --server-arg=vault.yaml
  client --server ./bin/obsidian-mcp --tool listNotes --args '{"folder":"daily"}'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "", "Server command to execute")
	cmd.Flags().StringArrayVar(&opts.serverArgs, "server-arg", nil, "Argument passed to the server command (repeatable)")
	cmd.Flags().StringVar(&opts.tool, "tool", "", "Tool to call after listing")
	cmd.Flags().StringVar(&opts.args, "args", "{}", "Tool arguments as a JSON object")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Overall timeout")
	_ = cmd.MarkFlagRequired("server")

	return cmd
}

func run(ctx context.Context, opts options, out io.Writer) error {
	if opts.server == "" {
		return errors.New("you must specify --server <server command>")
	}

	toolArgs, err := parseArgs(opts.args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	fmt.Fprintln(out, "Initializing stdio client...")

	c, err := client.NewStdioMCPClient(opts.server, nil, opts.serverArgs...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer c.Close()

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "obsidian-mcp-client",
		Version: "1.0.0",
	}

	initResult, err := c.Initialize(ctx, initRequest)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	fmt.Fprintf(out,
		"Initialized with server: %s %s\n\n",
		initResult.ServerInfo.Name,
		initResult.ServerInfo.Version,
	)

	fmt.Fprintln(out, "Listing available tools...")
	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}
	printTools(out, tools.Tools)

	if opts.tool == "" {
		return nil
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = opts.tool
	req.Params.Arguments = toolArgs

	fmt.Fprintf(out, "Calling %s...\n", opts.tool)
	result, err := c.CallTool(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", opts.tool, err)
	}

	printToolResult(out, result)
	if result.IsError {
		return fmt.Errorf("tool %s reported an error", opts.tool)
	}

	return nil
}

// parseArgs decodes the --args value, which must be a JSON object
func parseArgs(raw string) (map[string]any, error) {
	args := map[string]any{}
	if raw == "" {
		return args, nil
	}

	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("invalid --args, expected a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}

	return args, nil
}

func printTools(out io.Writer, tools []mcp.Tool) {
	for _, tool := range tools {
		fmt.Fprintf(out, "- %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Fprintln(out)
}

// Helper function to print tool results
func printToolResult(out io.Writer, result *mcp.CallToolResult) {
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			fmt.Fprintln(out, textContent.Text)
		} else {
			jsonBytes, _ := json.MarshalIndent(content, "", "  ")
			fmt.Fprintln(out, string(jsonBytes))
		}
	}
}
