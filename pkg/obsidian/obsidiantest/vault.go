// Package obsidiantest serves an in-memory vault over the Local REST API routes the client uses
package obsidiantest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/KyleBrandon/obsidian-mcp/pkg/obsidian"
	"github.com/go-chi/chi/v5"
)

const APIKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// Vault is a fake Local REST API. Files maps vault relative paths to content,
// Frontmatter maps paths to the metadata served for them.
type Vault struct {
	mu          sync.Mutex
	Files       map[string]string
	Frontmatter map[string]map[string]any

	server *httptest.Server
}

// NewVault starts a fake API serving files. It is closed when the test ends.
func NewVault(t testing.TB, files map[string]string) *Vault {
	t.Helper()

	v := &Vault{
		Files:       make(map[string]string),
		Frontmatter: make(map[string]map[string]any),
	}
	for path, content := range files {
		v.Files[path] = content
	}

	v.server = httptest.NewServer(v.routes())
	t.Cleanup(v.server.Close)

	return v
}

// Config returns a client config pointing at the vault
func (v *Vault) Config() obsidian.Config {
	u, _ := url.Parse(v.server.URL)
	port, _ := strconv.Atoi(u.Port())

	return obsidian.Config{
		APIKey: APIKey,
		Host:   u.Hostname(),
		Port:   port,
	}
}

// Content returns the stored content of path
func (v *Vault) Content(path string) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	content, ok := v.Files[path]
	return content, ok
}

func (v *Vault) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(v.auth)

	r.Get("/", v.handleServerInfo)
	r.Get("/vault/", v.handleList)
	r.Get("/vault/*", v.handleRead)
	r.Put("/vault/*", v.handleWrite)
	r.Get("/search", v.handleSearch)
	r.Get("/metadata/*", v.handleMetadata)

	return r
}

func (v *Vault) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+APIKey {
			writeError(w, http.StatusUnauthorized, 40101, "Authorization required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (v *Vault) handleServerInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"ok":            "OK",
		"service":       "Obsidian Local REST API",
		"versions":      map[string]string{"obsidian": "1.5.3", "self": "3.0.1"},
	})
}

func (v *Vault) handleList(w http.ResponseWriter, _ *http.Request) {
	v.mu.Lock()
	files := make([]string, 0, len(v.Files))
	for path := range v.Files {
		files = append(files, path)
	}
	v.mu.Unlock()

	sort.Strings(files)
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (v *Vault) handleRead(w http.ResponseWriter, r *http.Request) {
	path, ok := notePath(w, r)
	if !ok {
		return
	}

	v.mu.Lock()
	content, exists := v.Files[path]
	frontmatter := v.Frontmatter[path]
	v.mu.Unlock()

	if !exists {
		writeError(w, http.StatusNotFound, 40400, "Not Found")
		return
	}
	if frontmatter == nil {
		frontmatter = map[string]any{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"path":        path,
		"content":     content,
		"frontmatter": frontmatter,
	})
}

func (v *Vault) handleWrite(w http.ResponseWriter, r *http.Request) {
	path, ok := notePath(w, r)
	if !ok {
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, 40000, "invalid body")
		return
	}

	v.mu.Lock()
	v.Files[path] = body.Content
	v.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (v *Vault) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("query"))

	v.mu.Lock()
	results := []map[string]any{}
	for path, content := range v.Files {
		if query == "" || !strings.Contains(strings.ToLower(content), query) {
			continue
		}
		metadata := v.Frontmatter[path]
		if metadata == nil {
			metadata = map[string]any{}
		}
		results = append(results, map[string]any{
			"path":     path,
			"content":  content,
			"metadata": metadata,
		})
	}
	v.mu.Unlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i]["path"].(string) < results[j]["path"].(string)
	})
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (v *Vault) handleMetadata(w http.ResponseWriter, r *http.Request) {
	path, ok := notePath(w, r)
	if !ok {
		return
	}

	v.mu.Lock()
	_, exists := v.Files[path]
	metadata := v.Frontmatter[path]
	v.mu.Unlock()

	if !exists {
		writeError(w, http.StatusNotFound, 40400, "Not Found")
		return
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	writeJSON(w, http.StatusOK, metadata)
}

// notePath decodes the wildcard segment, which arrives escaped as a single segment
func notePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	path, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || path == "" {
		writeError(w, http.StatusBadRequest, 40000, "invalid path")
		return "", false
	}
	return path, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status, code int, message string) {
	writeJSON(w, status, map[string]any{"errorCode": code, "message": message})
}
