package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-hubspot/internal/hubspot"
	"github.com/giantswarm/mcp-hubspot/internal/oauth"
	"github.com/giantswarm/mcp-hubspot/internal/tools"
)

type fakeAuth struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeAuth) HandleInstall(w http.ResponseWriter, r *http.Request) {
	f.record(r.URL.Path)
	http.Redirect(w, r, "https://app.hubspot.com/oauth/authorize", http.StatusFound)
}

func (f *fakeAuth) HandleCallback(w http.ResponseWriter, r *http.Request) {
	f.record(r.URL.Path)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("callback " + r.URL.Query().Get("code")))
}

func (f *fakeAuth) record(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
}

// slowAuth blocks until its delay passes or the request is abandoned.
type slowAuth struct {
	delay time.Duration
}

func (s slowAuth) HandleInstall(w http.ResponseWriter, r *http.Request) {
	select {
	case <-time.After(s.delay):
		w.WriteHeader(http.StatusFound)
	case <-r.Context().Done():
	}
}

func (s slowAuth) HandleCallback(w http.ResponseWriter, r *http.Request) {
	s.HandleInstall(w, r)
}

func newTestServer(t *testing.T, tokens *oauth.TokenHolder, apiURL string) *HTTPServer {
	t.Helper()

	registry, err := tools.NewRegistry(tools.Options{
		Catalog:   hubspot.DefaultCatalog(),
		Tokens:    tokens,
		NewClient: tools.HubSpotClientFactory(hubspot.WithBaseURL(apiURL)),
	})
	require.NoError(t, err)

	mcpServer := mcpserver.NewMCPServer("hubspot-mcp", "test", mcpserver.WithToolCapabilities(false))
	registry.Register(mcpServer)

	srv, err := NewHTTPServer(Options{
		Addr:      "127.0.0.1:0",
		MCPServer: mcpServer,
		Auth:      &fakeAuth{},
		Tokens:    tokens,
	})
	require.NoError(t, err)
	return srv
}

func TestNewHTTPServer_RequiresDependencies(t *testing.T) {
	mcpServer := mcpserver.NewMCPServer("hubspot-mcp", "test")
	tokens := oauth.NewTokenHolder("")

	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{name: "missing MCP server", opts: Options{Auth: &fakeAuth{}, Tokens: tokens}, wantErr: "MCP server"},
		{name: "missing auth", opts: Options{MCPServer: mcpServer, Tokens: tokens}, wantErr: "authorization handler"},
		{name: "missing tokens", opts: Options{MCPServer: mcpServer, Auth: &fakeAuth{}}, wantErr: "token state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHTTPServer(tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHealth_ReportsAuthorization(t *testing.T) {
	tokens := oauth.NewTokenHolder("")
	srv := newTestServer(t, tokens, "http://127.0.0.1:1")
	mux := srv.CreateMux()

	check := func(want bool) {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var body HealthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, want, body.Authorized)
		assert.Equal(t, Runtime, body.Runtime)
	}

	check(false)
	tokens.Set("pat-na1-token")
	check(true)
	tokens.Set("")
	check(false)
}

func TestCreateMux_Routes(t *testing.T) {
	auth := &fakeAuth{}
	tokens := oauth.NewTokenHolder("")
	mcpServer := mcpserver.NewMCPServer("hubspot-mcp", "test")
	srv, err := NewHTTPServer(Options{MCPServer: mcpServer, Auth: auth, Tokens: tokens})
	require.NoError(t, err)
	mux := srv.CreateMux()

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/install", nil))
	assert.Equal(t, http.StatusFound, rr.Code)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/callback?code=abc", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "callback abc", rr.Body.String())

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/install", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.Equal(t, []string{"/install", "/callback"}, auth.paths)
}

func initializeClient(t *testing.T, ctx context.Context, c *client.Client) {
	t.Helper()

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: "2024-11-05",
			ClientInfo: mcp.Implementation{
				Name:    "hubspot-mcp-test",
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	})
	require.NoError(t, err)
}

func TestStreamableTransport_ListAndCallTools(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []string
		auth     []string
	)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		auth = append(auth, r.Header.Get("Authorization"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"51","properties":{"email":"a@b.com"}}`))
	}))
	defer api.Close()

	tokens := oauth.NewTokenHolder("")
	srv := newTestServer(t, tokens, api.URL)
	ts := httptest.NewServer(srv.CreateMux())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := client.NewStreamableHttpClient(ts.URL + StreamableEndpoint)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	require.NoError(t, c.Start(ctx))
	initializeClient(t, ctx, c)

	listed, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	names := make([]string, 0, len(listed.Tools))
	for _, tool := range listed.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "get_contact")
	assert.Contains(t, names, "search_contacts")
	assert.Contains(t, names, "associate_objects")

	var req mcp.CallToolRequest
	req.Params.Name = "get_contact"
	req.Params.Arguments = map[string]any{"id": "51"}

	// Not authorized yet: the call fails as a tool result, not a protocol error.
	result, err := c.CallTool(ctx, req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	assert.Contains(t, text.Text, "not authorized")
	mu.Lock()
	assert.Empty(t, requests)
	mu.Unlock()

	tokens.Set("pat-na1-token")
	result, err = c.CallTool(ctx, req)
	require.NoError(t, err)
	require.False(t, result.IsError)
	text, ok = mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	assert.Contains(t, text.Text, `"id": "51"`)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"GET /crm/v3/objects/contacts/51"}, requests)
	assert.Equal(t, []string{"Bearer pat-na1-token"}, auth)
}

func TestSSETransport_AdvertisesMessageEndpoint(t *testing.T) {
	tokens := oauth.NewTokenHolder("")
	srv := newTestServer(t, tokens, "http://127.0.0.1:1")
	ts := httptest.NewServer(srv.CreateMux())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+SSEEndpoint, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	buf := make([]byte, 512)
	n, err := resp.Body.Read(buf)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	first := string(buf[:n])
	assert.Contains(t, first, "event: endpoint")
	assert.Contains(t, first, MessageEndpoint+"?sessionId=")
}

func TestServe_ReadyAndGracefulShutdown(t *testing.T) {
	tokens := oauth.NewTokenHolder("seeded")
	srv := newTestServer(t, tokens, "http://127.0.0.1:1")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	readyCh := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- srv.serveListener(ctx, ln, func(addr string) { readyCh <- addr })
	}()

	var addr string
	select {
	case addr = <-readyCh:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `"authorized":true`))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_ListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	tokens := oauth.NewTokenHolder("")
	srv := newTestServer(t, tokens, "http://127.0.0.1:1")
	srv.opts.Addr = ln.Addr().String()

	err = srv.Serve(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestShutdown_NotStarted(t *testing.T) {
	srv := newTestServer(t, oauth.NewTokenHolder(""), "http://127.0.0.1:1")
	assert.NoError(t, srv.Shutdown(context.Background()))
}

// startServer serves srv on a loopback listener and stops it when the test
// ends. It returns the bound address.
func startServer(t *testing.T, srv *HTTPServer) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	readyCh := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- srv.serveListener(ctx, ln, func(addr string) { readyCh <- addr })
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Error("server did not shut down")
		}
	})

	select {
	case addr := <-readyCh:
		return addr
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
		return ""
	}
}

// nextLine returns the next stream line containing substr.
func nextLine(t *testing.T, lines <-chan string, substr string) string {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed before a line containing %q", substr)
			}
			if strings.Contains(line, substr) {
				return line
			}
		case <-timeout:
			t.Fatalf("no line containing %q", substr)
		}
	}
}

func TestSSETransport_OutlivesWriteTimeout(t *testing.T) {
	const writeTimeout = 100 * time.Millisecond

	srv := newTestServer(t, oauth.NewTokenHolder(""), "http://127.0.0.1:1")
	srv.opts.WriteTimeout = writeTimeout
	addr := startServer(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+SSEEndpoint, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	endpoint := strings.TrimSpace(strings.TrimPrefix(nextLine(t, lines, MessageEndpoint+"?sessionId="), "data:"))
	if !strings.HasPrefix(endpoint, "http") {
		endpoint = "http://" + addr + endpoint
	}

	time.Sleep(3 * writeTimeout)

	ping := strings.NewReader(`{"jsonrpc":"2.0","id":7,"method":"ping"}`)
	pingResp, err := http.Post(endpoint, "application/json", ping)
	require.NoError(t, err)
	_ = pingResp.Body.Close()
	assert.Equal(t, http.StatusAccepted, pingResp.StatusCode)

	assert.Contains(t, nextLine(t, lines, `"id":7`), `"result"`)
}

func TestCreateMux_BoundsAuthHandlers(t *testing.T) {
	srv, err := NewHTTPServer(Options{
		MCPServer:    mcpserver.NewMCPServer("hubspot-mcp", "test"),
		Auth:         slowAuth{delay: 5 * time.Second},
		Tokens:       oauth.NewTokenHolder(""),
		WriteTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	mux := srv.CreateMux()

	for _, path := range []string{"/install", "/callback"} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
			assert.Contains(t, rr.Body.String(), "request timed out")
		})
	}
}

func TestNewHTTPServer_DefaultWriteTimeout(t *testing.T) {
	srv := newTestServer(t, oauth.NewTokenHolder(""), "http://127.0.0.1:1")
	assert.Equal(t, DefaultWriteTimeout, srv.opts.WriteTimeout)
}
