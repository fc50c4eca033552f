// Package obsidian is a client for the Obsidian Local REST API
package obsidian

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/KyleBrandon/obsidian-mcp/pkg/dto"
)

const DefaultTimeout = 10 * time.Second

// Config holds the connection parameters for the REST API
type Config struct {
	APIKey  string        `yaml:"apiKey"`
	Host    string        `yaml:"host"`
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client talks to the Local REST API. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// APIError is returned for any non-2xx response
type APIError struct {
	StatusCode int
	ErrorCode  int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("obsidian api status %d", e.StatusCode)
	}
	return fmt.Sprintf("obsidian api status %d: %s", e.StatusCode, e.Message)
}

// NewClient builds a client for cfg. If httpClient is nil, one is created that
// accepts the plugin's self-signed certificate and ignores proxy settings.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}

		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: nil,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true, //nolint:gosec // the plugin serves a self-signed certificate
				},
			},
		}
	}

	return &Client{
		baseURL: BaseURL(cfg.Host, cfg.Port),
		apiKey:  cfg.APIKey,
		http:    httpClient,
	}
}

// BaseURL joins host and port. A host without a scheme is treated as http.
func BaseURL(host string, port int) string {
	host = strings.TrimRight(host, "/")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return host + ":" + strconv.Itoa(port)
}

// BaseURL returns the root URL requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListNotes returns the markdown files in the vault, prefix filtered by folder when set
func (c *Client) ListNotes(ctx context.Context, folder string) ([]string, error) {
	var body struct {
		Files []string `json:"files"`
	}
	if err := c.do(ctx, http.MethodGet, "/vault/", nil, nil, &body); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return FilterNotes(body.Files, folder), nil
}

// ReadNote fetches a single note by its vault relative path
func (c *Client) ReadNote(ctx context.Context, path string) (*dto.Note, error) {
	var body struct {
		Content     string         `json:"content"`
		Metadata    map[string]any `json:"metadata"`
		Frontmatter map[string]any `json:"frontmatter"`
	}

	header := http.Header{"Accept": []string{"application/vnd.olrapi.note+json"}}
	if err := c.do(ctx, http.MethodGet, "/vault/"+url.PathEscape(path), header, nil, &body); err != nil {
		return nil, fmt.Errorf("failed to read note %s: %w", path, err)
	}

	metadata := body.Metadata
	if metadata == nil {
		metadata = body.Frontmatter
	}

	return &dto.Note{
		Path:     path,
		Content:  body.Content,
		Metadata: metadata,
	}, nil
}

// WriteNote creates or replaces the note at path
func (c *Client) WriteNote(ctx context.Context, path, content string) error {
	payload := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPut, "/vault/"+url.PathEscape(path), nil, payload, nil); err != nil {
		return fmt.Errorf("failed to write note %s: %w", path, err)
	}

	return nil
}

// SearchNotes runs a search query. contextLength is only sent when positive.
func (c *Client) SearchNotes(ctx context.Context, query string, contextLength int) ([]dto.Note, error) {
	q := url.Values{}
	q.Set("query", query)
	if contextLength > 0 {
		q.Set("contextLength", strconv.Itoa(contextLength))
	}

	var body struct {
		Results []dto.Note `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, "/search?"+q.Encode(), nil, nil, &body); err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}

	if body.Results == nil {
		return []dto.Note{}, nil
	}

	return body.Results, nil
}

// GetMetadata returns the metadata document for a note
func (c *Client) GetMetadata(ctx context.Context, path string) (map[string]any, error) {
	var body map[string]any
	if err := c.do(ctx, http.MethodGet, "/metadata/"+url.PathEscape(path), nil, nil, &body); err != nil {
		return nil, fmt.Errorf("failed to get metadata for %s: %w", path, err)
	}

	if body == nil {
		body = map[string]any{}
	}

	return body, nil
}

// ServerInfo queries the API root. Only used for diagnostics.
func (c *Client) ServerInfo(ctx context.Context) (*dto.ServerInfo, error) {
	var info dto.ServerInfo
	if err := c.do(ctx, http.MethodGet, "/", nil, nil, &info); err != nil {
		return nil, fmt.Errorf("failed to get server info: %w", err)
	}

	return &info, nil
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("obsidian request failed", "method", method, "path", req.URL.EscapedPath(), "error", err)
		return err
	}
	defer resp.Body.Close()

	slog.Debug("obsidian request",
		"method", method,
		"path", req.URL.EscapedPath(),
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}

	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}

	var body struct {
		ErrorCode int    `json:"errorCode"`
		Message   string `json:"message"`
	}
	if json.Unmarshal(data, &body) == nil && body.Message != "" {
		apiErr.ErrorCode = body.ErrorCode
		apiErr.Message = body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}

	return apiErr
}
