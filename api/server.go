// Package api exposes the engine over HTTP.
//
// Endpoints:
//
//	POST /chat             ask a question, optionally within a conversation
//	POST /documents        add one document to the knowledge store
//	GET  /documents/count  number of stored chunks
//	GET  /health           liveness probe
//	GET  /ready            readiness probe (database ping)
//
// File structure:
//   - server.go: server setup and lifecycle
//   - middleware.go: logging and panic recovery
//   - chat.go: question answering endpoint
//   - documents.go: document ingestion endpoints
//   - health.go: probes
//   - response.go: JSON response helpers
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/siftlabs/sift/internal/knowledge"
	"github.com/siftlabs/sift/internal/log"
	"github.com/siftlabs/sift/internal/rag"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout guards against Slowloris-style slow header writes.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is generous because generation can take a while.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout = 120 * time.Second
)

// Server is the HTTP front of the engine.
type Server struct {
	mux *http.ServeMux

	chat      *ChatHandler
	documents *DocumentsHandler
	health    *HealthHandler
}

// NewServer creates a server with all routes registered.
func NewServer(engine *rag.Engine, store *knowledge.Store, logger log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:       mux,
		chat:      NewChatHandler(engine, logger.With("handler", "chat")),
		documents: NewDocumentsHandler(store, logger.With("handler", "documents")),
		health:    NewHealthHandler(store),
	}

	s.chat.RegisterRoutes(mux)
	s.documents.RegisterRoutes(mux)
	s.health.RegisterRoutes(mux)

	return s
}

// Mount registers additional routes, such as the browser UI, on the
// server's mux.
func (s *Server) Mount(register func(*http.ServeMux)) {
	register(s.mux)
}

// Handler returns the mux with middleware applied.
// Order: recovery → logging → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware, loggingMiddleware)
}

// Run starts the server and blocks until the context is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
