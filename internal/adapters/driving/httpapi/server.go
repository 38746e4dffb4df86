// Package httpapi serves the query, fetch, upload and ingestion endpoints
// over HTTP with permissive CORS, so a browser front end can call them
// directly.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/semsearch/internal/core/ports/driving"
	"github.com/custodia-labs/semsearch/internal/logger"
)

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("httpapi: query service is required")

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second

	// maxBodyBytes bounds uploads and ingest payloads.
	maxBodyBytes = 10 << 20
)

// Ports aggregates the driving ports the API calls.
type Ports struct {
	Query     driving.QueryService
	Documents driving.DocumentService
	Ingestion driving.IngestionService
}

// Server is the HTTP API.
type Server struct {
	ports *Ports
}

// NewServer creates a server. Only Query is required; routes whose port is
// missing answer 503.
func NewServer(ports *Ports) (*Server, error) {
	if ports == nil || ports.Query == nil {
		return nil, ErrMissingQueryService
	}
	return &Server{ports: ports}, nil
}

// Handler returns the routed handler with CORS and request ids applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	route(mux, http.MethodGet, "/health", s.handleHealth)
	route(mux, http.MethodGet, "/query", s.handleQuery)
	route(mux, http.MethodGet, "/documents", s.handleDocument)
	route(mux, http.MethodGet, "/documents/{id}", s.handleDocument)
	route(mux, http.MethodPut, "/upload", s.handleUpload)
	route(mux, http.MethodPost, "/ingest", s.handleIngest)
	route(mux, http.MethodPost, "/events", s.handleEvents)
	mux.Handle("/", cors(allowAnyMethod, http.HandlerFunc(notFound)))

	return requestID(allowOrigin(mux))
}

// route registers method and its OPTIONS preflight on path, both wrapped
// in CORS headers that advertise only that method. Any other method on
// path gets a JSON 405.
func route(mux *http.ServeMux, method, path string, h http.HandlerFunc) {
	allow := method + ",OPTIONS"
	mux.Handle(method+" "+path, cors(allow, h))
	mux.Handle(http.MethodOptions+" "+path, cors(allow, http.HandlerFunc(preflight)))
	mux.Handle(path, cors(allow, methodNotAllowed(allow)))
}

// Run listens on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()
	logger.Info("HTTP API listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
