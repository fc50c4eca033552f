package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KyleBrandon/obsidian-mcp/pkg/config"
	"github.com/KyleBrandon/obsidian-mcp/pkg/httpapi"
	"github.com/KyleBrandon/obsidian-mcp/pkg/notes"
	"github.com/KyleBrandon/obsidian-mcp/pkg/obsidian"
	"github.com/KyleBrandon/obsidian-mcp/pkg/utils"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

const statusTimeout = 5 * time.Second

type options struct {
	configPath string
	logLevel   string
	logFile    string
	httpAddr   string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "obsidian-mcp",
		Short: "MCP server for the Obsidian Local REST API",
		Long: `Serves the notes of an Obsidian vault as MCP tools over stdio.

The vault is reached through the Local REST API plugin. Connection settings
come from the config file and may be overridden with API_KEY, HOST and PORT.

Examples:
  obsidian-mcp                              # uses config.secured.yaml
  obsidian-mcp -c vault.yaml --log-file server.log
  obsidian-mcp --http :8080                 # also serve the HTTP bridge`,
		Version:       config.DefaultVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, opts, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", config.DefaultConfigFile, "Path to the config file")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR), overrides the config file")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "Log file path, overrides the config file (stderr when neither is set)")
	cmd.Flags().StringVar(&opts.httpAddr, "http", "", "Address for the HTTP bridge, overrides the config file")

	return cmd
}

// loadConfig reads the config file and applies the command line overrides
func loadConfig(opts options) (config.ServerConfig, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.ServerConfig{}, err
	}

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}
	if opts.httpAddr != "" {
		cfg.HTTP.Addr = opts.httpAddr
	}

	if err := cfg.Validate(); err != nil {
		return config.ServerConfig{}, err
	}

	return cfg, nil
}

// run serves MCP on in/out until ctx is cancelled or in is closed
func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logWriter, err := utils.OpenLogWriter(cfg.Log.File)
	if err != nil {
		return err
	}
	defer logWriter.Close()

	logger, err := utils.ConfigureLogging(cfg.Log.Level, logWriter)
	if err != nil {
		return err
	}

	client := obsidian.NewClient(cfg.Obsidian, nil)
	logServerStatus(ctx, client)

	ns := notes.NewNotesServer(cfg, client)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.HTTP.Addr != "" {
		bridge := httpapi.New(ns, cfg.HTTP.Token)
		go func() {
			if err := bridge.ListenAndServe(ctx, cfg.HTTP.Addr); err != nil {
				slog.Error("HTTP bridge failed", "addr", cfg.HTTP.Addr, "error", err)
				cancel()
			}
		}()
	}

	stdio := server.NewStdioServer(ns.McpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

	slog.Info("Starting Obsidian MCP server",
		"name", cfg.Name,
		"version", cfg.Version,
		"obsidian", client.BaseURL(),
		"readOnly", cfg.ReadOnly,
		"http", cfg.HTTP.Addr)

	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server failed: %w", err)
	}

	slog.Info("Obsidian MCP server stopped")
	return nil
}

// logServerStatus logs the Local REST API status. A failure never stops the server.
func logServerStatus(ctx context.Context, client *obsidian.Client) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	info, err := client.ServerInfo(ctx)
	if err != nil {
		slog.Warn("Obsidian Local REST API is not reachable", "url", client.BaseURL(), "error", err)
		return
	}

	slog.Info("Connected to Obsidian Local REST API",
		"service", info.Service,
		"authenticated", info.Authenticated,
		"obsidian", info.Versions.Obsidian,
		"plugin", info.Versions.Self)
}
