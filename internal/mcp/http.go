package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"

	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/observability"
	"github.com/matzehuels/mindmap/pkg/pipeline"
	"github.com/matzehuels/mindmap/pkg/render"
)

// requestIDHeader carries the per-request correlation ID.
const requestIDHeader = "X-Request-ID"

// shutdownTimeout bounds graceful shutdown of the network transports.
const shutdownTimeout = 10 * time.Second

// Router returns the HTTP API: the MCP endpoint plus a plain REST surface
// for clients that don't speak the protocol.
//
//	POST /mcp       MCP streamable HTTP transport
//	POST /generate  {"markdown_content": ..., "layout": ...} -> image/png
//	GET  /healthz   liveness probe
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	streamable := server.NewStreamableHTTPServer(s.mcpServer)
	r.Handle("/mcp", streamable)
	r.Handle("/mcp/*", streamable)

	r.Post("/generate", s.handleGenerate)
	r.Get("/healthz", s.handleHealthz)
	return r
}

// requestLogger tags each request with an ID and reports it to the logger
// and the registered HTTP hooks.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)

		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), duration)
		s.logger.Info("http request",
			"id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration)
	})
}

// generateRequest is the REST rendering request body.
type generateRequest struct {
	Markdown string `json:"markdown_content"`
	Layout   string `json:"layout,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Markdown:      req.Markdown,
		Layout:        req.Layout,
		LayoutConfig:  layoutConfigFrom(s.cfg),
		RenderOptions: renderOptionsFrom(s.cfg),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.IsInputError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, errors.UserMessage(err))
		return
	}

	w.Header().Set("Content-Type", render.MIMEType)
	w.Header().Set("X-Mindmap-Layout", result.Mode.String())
	w.Header().Set("X-Mindmap-Nodes", fmt.Sprintf("%d", result.Stats.NodeCount))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.PNG)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ServeHTTP runs the combined MCP and REST API on addr until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving MCP over streamable HTTP", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	}
}

// ServeSSE runs the MCP server over the SSE transport on addr until ctx is
// cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sse := server.NewSSEServer(s.mcpServer)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving MCP over SSE", "addr", addr)
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("sse server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("sse shutdown: %w", err)
		}
		return nil
	}
}
