package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-hubspot/pkg/logging"
)

const (
	// DefaultReadHeaderTimeout is the default timeout for reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultWriteTimeout bounds the health and authorization handlers. The
	// MCP transports hold long-lived streams and are not bounded.
	DefaultWriteTimeout = 120 * time.Second
	// DefaultIdleTimeout is the default idle timeout for keepalive connections.
	DefaultIdleTimeout = 120 * time.Second
	// DefaultShutdownTimeout bounds how long Serve waits for in-flight
	// requests once its context is cancelled.
	DefaultShutdownTimeout = 5 * time.Second

	// Runtime is reported by the health endpoint.
	Runtime = "Go + mcp-go + PKCE"

	// SSEEndpoint and MessageEndpoint form the SSE transport.
	SSEEndpoint     = "/sse"
	MessageEndpoint = "/message"
	// StreamableEndpoint serves the streamable HTTP transport.
	StreamableEndpoint = "/mcp"
)

// AuthHandler serves the install and callback pages of the authorization flow.
type AuthHandler interface {
	HandleInstall(w http.ResponseWriter, r *http.Request)
	HandleCallback(w http.ResponseWriter, r *http.Request)
}

// AuthorizationState reports whether an access token is currently held.
type AuthorizationState interface {
	Authorized() bool
}

// Options configures an HTTPServer.
type Options struct {
	// Addr is the listen address, e.g. ":3000".
	Addr string

	// BaseURL is the externally visible origin used when advertising the
	// SSE message endpoint to clients.
	BaseURL string

	// WriteTimeout bounds /health, /install and /callback. Zero selects
	// DefaultWriteTimeout.
	WriteTimeout time.Duration

	MCPServer *mcpserver.MCPServer
	Auth      AuthHandler
	Tokens    AuthorizationState
}

// HealthResponse is the body returned by /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Authorized bool   `json:"authorized"`
	Runtime    string `json:"runtime"`
}

// HTTPServer exposes the authorization flow, the health check and the MCP
// transports on a single listener.
type HTTPServer struct {
	opts Options

	sseServer        *mcpserver.SSEServer
	streamableServer *mcpserver.StreamableHTTPServer

	mu         sync.Mutex
	httpServer *http.Server
	cancelBase context.CancelFunc
}

// NewHTTPServer creates the HTTP surface. It does not start listening.
func NewHTTPServer(opts Options) (*HTTPServer, error) {
	if opts.MCPServer == nil {
		return nil, fmt.Errorf("MCP server is required")
	}
	if opts.Auth == nil {
		return nil, fmt.Errorf("authorization handler is required")
	}
	if opts.Tokens == nil {
		return nil, fmt.Errorf("token state is required")
	}

	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}

	s := &HTTPServer{opts: opts}

	sseOpts := []mcpserver.SSEOption{
		mcpserver.WithSSEEndpoint(SSEEndpoint),
		mcpserver.WithMessageEndpoint(MessageEndpoint),
		mcpserver.WithKeepAlive(true),
		mcpserver.WithKeepAliveInterval(30 * time.Second),
	}
	if opts.BaseURL != "" {
		sseOpts = append(sseOpts, mcpserver.WithBaseURL(opts.BaseURL))
	}
	s.sseServer = mcpserver.NewSSEServer(opts.MCPServer, sseOpts...)
	s.streamableServer = mcpserver.NewStreamableHTTPServer(
		opts.MCPServer,
		mcpserver.WithEndpointPath(StreamableEndpoint),
	)

	return s, nil
}

// CreateMux creates the HTTP mux routing to the auth flow, health check and
// MCP transports.
func (s *HTTPServer) CreateMux() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /health", s.bounded(s.handleHealth))
	mux.Handle("GET /install", s.bounded(s.opts.Auth.HandleInstall))
	mux.Handle("GET /callback", s.bounded(s.opts.Auth.HandleCallback))

	mux.Handle(SSEEndpoint, s.sseServer.SSEHandler())
	mux.Handle(MessageEndpoint, s.sseServer.MessageHandler())
	mux.Handle(StreamableEndpoint, s.streamableServer)

	return mux
}

// bounded applies the write timeout to a short-lived handler. It is not
// used for the MCP transports, whose streams outlive any fixed deadline.
func (s *HTTPServer) bounded(h http.HandlerFunc) http.Handler {
	return http.TimeoutHandler(h, s.opts.WriteTimeout, "request timed out")
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:     "ok",
		Authorized: s.opts.Tokens.Authorized(),
		Runtime:    Runtime,
	})
}

// Serve listens on the configured address and serves until ctx is cancelled
// or the server fails. ready, when non-nil, is called with the bound address
// once the listener is open.
func (s *HTTPServer) Serve(ctx context.Context, ready func(addr string)) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.serveListener(ctx, ln, ready)
}

func (s *HTTPServer) serveListener(ctx context.Context, ln net.Listener, ready func(addr string)) error {
	// Streaming handlers only return when their request context ends, so
	// request contexts derive from a base that Shutdown cancels.
	baseCtx, cancelBase := context.WithCancel(context.Background())

	httpServer := &http.Server{
		Handler:           s.CreateMux(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	s.mu.Lock()
	s.httpServer = httpServer
	s.cancelBase = cancelBase
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	addr := ln.Addr().String()
	logging.Info("Server", "Listening on %s (install: /install, health: /health, MCP: %s, %s)", addr, StreamableEndpoint, SSEEndpoint)
	if ready != nil {
		ready(addr)
	}

	select {
	case err := <-errCh:
		cancelBase()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

// Shutdown gracefully shuts down the server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	cancelBase := s.cancelBase
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}

	logging.Info("Server", "Shutting down HTTP server")
	if cancelBase != nil {
		cancelBase()
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}
