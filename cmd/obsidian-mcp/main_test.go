package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KyleBrandon/obsidian-mcp/pkg/config"
	"github.com/KyleBrandon/obsidian-mcp/pkg/obsidian/obsidiantest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"API_KEY", "HOST", "PORT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeConfig(t *testing.T, host string, port int) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`name: test-vault
version: 0.0.1
obsidian:
  apiKey: %s
  host: %s
  port: %d
  timeout: 2s
log:
  file: %s
`, obsidiantest.APIKey, host, port, filepath.Join(dir, "server.log"))

	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()

	assert.Equal(t, "obsidian-mcp", cmd.Use)

	configFlag := cmd.Flags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, config.DefaultConfigFile, configFlag.DefValue)

	for _, name := range []string{"log-level", "log-file", "http"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestNewRootCmd_RejectsArguments(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"unexpected"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	assert.Error(t, cmd.Execute())
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "127.0.0.1", 27124)

	cfg, err := loadConfig(options{
		configPath: path,
		logLevel:   "DEBUG",
		logFile:    "/tmp/override.log",
		httpAddr:   ":9090",
	})
	require.NoError(t, err)

	assert.Equal(t, "test-vault", cfg.Name)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, "/tmp/override.log", cfg.Log.File)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestLoadConfig_InvalidLogLevel(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "127.0.0.1", 27124)

	_, err := loadConfig(options{configPath: path, logLevel: "LOUD"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRun_MissingConfig(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	err := run(context.Background(), options{configPath: "missing.yaml"}, nil, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.DefaultConfigFile)
}

func TestRun_ServesStdio(t *testing.T) {
	clearEnv(t)

	vault := obsidiantest.NewVault(t, map[string]string{"a.md": "x", "b.txt": "y"})
	vaultCfg := vault.Config()

	path := writeConfig(t, vaultCfg.Host, vaultCfg.Port)

	stdinReader, stdinWriter := io.Pipe()
	stdoutReader, stdoutWriter := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, options{configPath: path}, stdinReader, stdoutWriter)
	}()

	responses := bufio.NewScanner(stdoutReader)
	send := func(message string) map[string]any {
		t.Helper()

		_, err := io.WriteString(stdinWriter, message+"\n")
		require.NoError(t, err)
		require.True(t, responses.Scan(), "no response for %s", message)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(responses.Bytes(), &resp))
		return resp
	}

	resp := send(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`)
	result, ok := resp["result"].(map[string]any)
	require.True(t, ok, "initialize failed: %v", resp)
	serverInfo, _ := result["serverInfo"].(map[string]any)
	assert.Equal(t, "test-vault", serverInfo["name"])

	resp = send(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"listNotes","arguments":{}}}`)
	result, ok = resp["result"].(map[string]any)
	require.True(t, ok, "tools/call failed: %v", resp)
	content, _ := result["content"].([]any)
	require.Len(t, content, 1)
	first, _ := content[0].(map[string]any)
	assert.JSONEq(t, `["a.md"]`, first["text"].(string))

	cancel()
	_ = stdinWriter.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
