// Package config loads the server configuration from a YAML file, a .env file and the environment
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/KyleBrandon/obsidian-mcp/pkg/obsidian"
	"github.com/KyleBrandon/obsidian-mcp/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when the requested file does not exist
const DefaultConfigFile = "config.secured.yaml"

// LegacyConfigFile is the JSON-with-comments config older installs keep.
// It is read only when DefaultConfigFile is also missing.
const LegacyConfigFile = "config.secured.jsonc"

const (
	DefaultName    = "obsidian-mcp"
	DefaultVersion = "1.0.0"
	DefaultHost    = "127.0.0.1"
	DefaultPort    = 27124
)

const redacted = "********"

// The Local REST API plugin generates 64 character keys
var apiKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`)

// ServerConfig is read once at startup and never changed afterwards
type ServerConfig struct {
	Name     string          `yaml:"name"`
	Version  string          `yaml:"version"`
	ReadOnly bool            `yaml:"readOnly"`
	Obsidian obsidian.Config `yaml:"obsidian"`
	Log      LogConfig       `yaml:"log"`
	HTTP     HTTPConfig      `yaml:"http"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// HTTPConfig enables the HTTP bridge when Addr is set. Token, when set, is
// required as a bearer token on the /mcp routes.
type HTTPConfig struct {
	Addr  string `yaml:"addr"`
	Token string `yaml:"token"`
}

func Default() ServerConfig {
	return ServerConfig{
		Name:    DefaultName,
		Version: DefaultVersion,
		Obsidian: obsidian.Config{
			Host:    DefaultHost,
			Port:    DefaultPort,
			Timeout: obsidian.DefaultTimeout,
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// Load reads the config file at path, falling back to DefaultConfigFile when
// path does not exist, then applies .env and environment overrides and validates.
func Load(path string) (ServerConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	file := ResolvePath(path)
	slog.Debug("loading config", "file", file)

	data, err := os.ReadFile(file)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("failed to read config %s: %w", file, err)
	}

	if ext := filepath.Ext(file); ext == ".jsonc" || ext == ".json" {
		if data, err = StandardizeJSONC(data); err != nil {
			return ServerConfig{}, fmt.Errorf("failed to parse config %s: %w", file, err)
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("failed to parse config %s: %w", file, err)
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return ServerConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}

	if !apiKeyPattern.MatchString(cfg.Obsidian.APIKey) {
		slog.Warn("API key looks invalid, expected at least 32 alphanumeric characters")
	}

	return cfg, nil
}

// ResolvePath returns the first of path, DefaultConfigFile and LegacyConfigFile
// that exists. DefaultConfigFile is returned when none do.
func ResolvePath(path string) string {
	for _, candidate := range []string{path, DefaultConfigFile, LegacyConfigFile} {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return DefaultConfigFile
}

// StandardizeJSONC strips comments and trailing commas so the result is plain JSON
func StandardizeJSONC(data []byte) ([]byte, error) {
	value, err := hujson.Parse(data)
	if err != nil {
		return nil, err
	}
	value.Standardize()
	return value.Pack(), nil
}

// Parse decodes YAML (or JSON) on top of the defaults
func Parse(data []byte) (ServerConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides the connection settings from API_KEY, HOST and PORT when they are set
func ApplyEnv(cfg *ServerConfig, lookup func(string) (string, bool)) error {
	if v, ok := lookup("API_KEY"); ok {
		cfg.Obsidian.APIKey = v
	}
	if v, ok := lookup("HOST"); ok {
		cfg.Obsidian.Host = v
	}
	if v, ok := lookup("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Obsidian.Port = port
	}
	return nil
}

// Validate reports every problem with the configuration
func (c ServerConfig) Validate() error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if c.Version == "" {
		errs = append(errs, errors.New("version is required"))
	}
	if c.Obsidian.APIKey == "" {
		errs = append(errs, errors.New("obsidian.apiKey is required"))
	}
	if c.Obsidian.Host == "" {
		errs = append(errs, errors.New("obsidian.host is required"))
	}
	if c.Obsidian.Port < 1 || c.Obsidian.Port > 65535 {
		errs = append(errs, fmt.Errorf("obsidian.port %d is out of range", c.Obsidian.Port))
	}
	if c.Obsidian.Timeout < 0 {
		errs = append(errs, errors.New("obsidian.timeout must not be negative"))
	}
	if _, err := utils.ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Document renders the config as served to MCP clients, with the API key and HTTP token masked
func (c ServerConfig) Document() map[string]any {
	return map[string]any{
		"name":     c.Name,
		"version":  c.Version,
		"readOnly": c.ReadOnly,
		"obsidian": map[string]any{
			"apiKey":  redact(c.Obsidian.APIKey),
			"host":    c.Obsidian.Host,
			"port":    c.Obsidian.Port,
			"timeout": c.Obsidian.Timeout.String(),
		},
		"log": map[string]any{
			"level": c.Log.Level,
			"file":  c.Log.File,
		},
		"http": map[string]any{
			"addr":  c.HTTP.Addr,
			"token": redact(c.HTTP.Token),
		},
	}
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return redacted
}
