// Package httpapi exposes the note tools over plain HTTP next to the stdio MCP transport.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/KyleBrandon/obsidian-mcp/pkg/notes"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultRequestTimeout bounds /mcp/tools and /mcp/call. The stream endpoint is not bounded.
const DefaultRequestTimeout = 60 * time.Second

// CallRequest is the body of POST /mcp/call
type CallRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type Server struct {
	token      string
	router     *chi.Mux
	dispatcher *notes.Dispatcher
}

// New builds the router for ns. When token is set every /mcp route requires it as a bearer token.
func New(ns *notes.NotesServer, token string) *Server {
	s := &Server{
		token:      token,
		router:     chi.NewRouter(),
		dispatcher: ns.Dispatcher(),
	}

	// stdout may be the MCP channel, request logs go through slog
	requestLog := slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo)

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: requestLog, NoColor: true}))
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/mcp", func(r chi.Router) {
		r.Use(s.auth)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(DefaultRequestTimeout))
			r.Get("/tools", s.handleListTools)
			r.Post("/call", s.handleCall)
		})

		r.Handle("/stream", server.NewStreamableHTTPServer(ns.McpServer,
			server.WithEndpointPath("/mcp/stream"),
		))
	})

	return s
}

func (s *Server) Router() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP bridge listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		slog.Info("HTTP bridge stopped")
		return nil
	}
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]mcp.Tool{"tools": s.dispatcher.ListCapabilities()})
}

// handleCall answers 200 with the result envelope for any well-formed request,
// including unknown tools and tool failures.
func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	var req CallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	result := s.dispatcher.Invoke(r.Context(), req.Name, req.Arguments)
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
