package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/polyhedral/d20mcp/internal/platform/config"
)

var listenTCP = net.Listen

// mcpHTTPEnv holds env-parsed configuration for MCP HTTP transport.
type mcpHTTPEnv struct {
	AllowedHosts []string `env:"POLYHEDRAL_MCP_ALLOWED_HOSTS" envSeparator:","`
	AuthToken    string   `env:"POLYHEDRAL_MCP_AUTH_TOKEN"`
}

const (
	// defaultChannelBufferSize is the buffer size for request, response, and
	// notification channels, allowing some slack before writers block.
	defaultChannelBufferSize = 10

	// defaultRequestTimeout is the maximum time to wait for a JSON-RPC response.
	defaultRequestTimeout = 30 * time.Second

	// defaultShutdownTimeout is the maximum time to wait for graceful HTTP
	// server shutdown. It exceeds defaultRequestTimeout so in-flight requests
	// can complete.
	defaultShutdownTimeout = 35 * time.Second

	// sessionCleanupInterval is how often expired sessions are swept.
	sessionCleanupInterval = 5 * time.Minute

	// sessionExpirationTime is how long a session can sit idle before cleanup.
	sessionExpirationTime = 1 * time.Hour

	// sseHeartbeatInterval is how often lastUsed is refreshed for active SSE
	// connections.
	sseHeartbeatInterval = 30 * time.Second

	// defaultSessionReadyTimeout bounds how long we wait for a session
	// connection to become ready before request handling continues.
	defaultSessionReadyTimeout = 100 * time.Millisecond
)

// HTTPTransport implements mcp.Transport for HTTP-based MCP communication.
// It provides an HTTP server that handles JSON-RPC messages over POST requests
// and supports Server-Sent Events (SSE) for streaming notifications.
// The implementation is explicit about session lifecycle and cleanup so
// long-lived local MCP clients cannot leak resources.
type HTTPTransport struct {
	addr         string
	allowedHosts map[string]struct{}
	authToken    string
	server       *mcp.Server
	sessions     map[string]*httpSession
	sessionsMu   sync.RWMutex
	httpServer   *http.Server
	serverCtx    context.Context
	serverCancel context.CancelFunc
	serverOnceMu sync.Mutex
	serverOnce   map[string]*sync.Once

	serverReadyTimeout time.Duration
	randomReader       func([]byte) (int, error)
	readyAfter         func(time.Duration) <-chan time.Time
}

func (t *HTTPTransport) applyConfig(cfg Config) {
	if t == nil {
		return
	}
	if token := strings.TrimSpace(cfg.AuthToken); token != "" {
		t.authToken = token
	}
}

// httpSession maintains state for a single MCP session in memory.
// It tracks liveness and the active connection so cleanup and SSE delivery
// can be scoped to one client session.
type httpSession struct {
	id        string
	conn      *httpConnection
	createdAt time.Time
	lastUsed  time.Time
}

// NewHTTPTransport creates a new HTTP transport that will serve MCP over HTTP.
// It defaults to localhost-only binding so the default footprint stays
// constrained to local development unless explicit host configuration
// broadens access.
func NewHTTPTransport(addr string) *HTTPTransport {
	// Default to localhost-only binding for security
	if addr == "" {
		addr = "localhost:8081"
	}
	var raw mcpHTTPEnv
	_ = config.ParseEnv(&raw)
	ctx, cancel := context.WithCancel(context.Background())
	return &HTTPTransport{
		addr:               addr,
		allowedHosts:       parseAllowedHosts(raw.AllowedHosts),
		authToken:          strings.TrimSpace(raw.AuthToken),
		sessions:           make(map[string]*httpSession),
		serverCtx:          ctx,
		serverCancel:       cancel,
		serverOnce:         make(map[string]*sync.Once),
		serverReadyTimeout: defaultSessionReadyTimeout,
		randomReader:       rand.Read,
		readyAfter:         time.After,
	}
}

// NewHTTPTransportWithServer creates a new HTTP transport with a reference to
// the MCP server. Callers use this when they need to inject a preconfigured
// MCP runtime, which keeps tests and process lifecycle simpler.
func NewHTTPTransportWithServer(addr string, server *mcp.Server) *HTTPTransport {
	transport := NewHTTPTransport(addr)
	transport.server = server
	return transport
}

// Start starts the HTTP server and begins handling requests, blocking until
// the context ends or the server fails. The same server instance multiplexes
// POST requests and SSE streams while sharing host validation, auth, and
// session lifecycle enforcement.
func (t *HTTPTransport) Start(ctx context.Context) error {
	t.serverCtx, t.serverCancel = context.WithCancel(ctx)

	go t.cleanupSessions(ctx)

	mux := http.NewServeMux()

	// /mcp handles both GET (SSE) and POST (messages) based on HTTP method
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			t.handleSSE(w, r)
		case http.MethodPost:
			t.handleMessages(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// GET /mcp/health - health check endpoint
	mux.HandleFunc("/mcp/health", t.handleHealth)

	t.httpServer = &http.Server{
		Addr:    t.addr,
		Handler: mux,
	}

	log.Printf("Starting MCP HTTP server on %s", t.addr)

	errChan := make(chan error, 1)
	go func() {
		listener, err := listenTCP("tcp", t.addr)
		if err != nil {
			errChan <- err
			return
		}
		if err := t.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("Shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		// Cancel server context to stop all per-session server goroutines
		if t.serverCancel != nil {
			t.serverCancel()
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}
