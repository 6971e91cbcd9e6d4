package app

import (
	"fmt"
	"net/url"
	"strconv"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-hubspot/internal/config"
	"github.com/giantswarm/mcp-hubspot/internal/hubspot"
	"github.com/giantswarm/mcp-hubspot/internal/oauth"
	"github.com/giantswarm/mcp-hubspot/internal/server"
	"github.com/giantswarm/mcp-hubspot/internal/tools"
	"github.com/giantswarm/mcp-hubspot/pkg/logging"
)

// ServerName is the MCP server name reported to clients.
const ServerName = "hubspot-mcp"

// Services holds all initialized components of a running server.
//
// The token holder is shared: the OAuth flow writes it, the tool registry
// reads it for every call, and the HTTP server reports it on /health.
type Services struct {
	Config *config.Config

	Tokens   *oauth.TokenHolder
	Sessions *oauth.SessionStore
	Flow     *oauth.Flow

	Registry   *tools.Registry
	MCPServer  *mcpserver.MCPServer
	HTTPServer *server.HTTPServer
}

// NewRegistry builds the tool registry for cfg. It needs no credentials, so
// it also backs commands that only describe the tools.
func NewRegistry(cfg *config.Config, tokens tools.TokenSource) (*tools.Registry, error) {
	return tools.NewRegistry(tools.Options{
		Catalog:        cfg.Catalog,
		SearchOperator: cfg.SearchOperator,
		Tokens:         tokens,
		NewClient:      tools.HubSpotClientFactory(hubspot.WithBaseURL(cfg.APIBaseURL)),
	})
}

// InitializeServices wires the OAuth flow, tool registry, MCP server and
// HTTP surface for a validated configuration.
func InitializeServices(cfg *config.Config, version string) (*Services, error) {
	tokens := oauth.NewTokenHolder(cfg.AccessToken)
	if tokens.Authorized() {
		logging.Info("Bootstrap", "Using access token from the environment: %s", tokens.Token())
	}

	registry, err := NewRegistry(cfg, tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}

	mcpServer := mcpserver.NewMCPServer(
		ServerName,
		version,
		mcpserver.WithToolCapabilities(false),
	)
	registry.Register(mcpServer)
	logging.Info("Bootstrap", "Registered %d tools", len(registry.Names()))

	sessions := oauth.NewSessionStore(oauth.DefaultSessionTTL)
	flow := oauth.NewFlow(oauth.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
		PortalID:     cfg.PortalID,
		Scopes:       cfg.Scopes,
	}, sessions, tokens)
	cookies := oauth.NewCookieSigner(cfg.SessionSecret, sessions.TTL(), cfg.SecureCookies())

	httpServer, err := server.NewHTTPServer(server.Options{
		Addr:      ":" + strconv.Itoa(cfg.Port),
		BaseURL:   publicBaseURL(cfg.RedirectURI),
		MCPServer: mcpServer,
		Auth:      oauth.NewHandler(flow, cookies),
		Tokens:    tokens,
	})
	if err != nil {
		sessions.Stop()
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return &Services{
		Config:     cfg,
		Tokens:     tokens,
		Sessions:   sessions,
		Flow:       flow,
		Registry:   registry,
		MCPServer:  mcpServer,
		HTTPServer: httpServer,
	}, nil
}

// Close releases background resources.
func (s *Services) Close() {
	s.Sessions.Stop()
}

// publicBaseURL returns the origin of the redirect URI, which is where
// clients reach this server.
func publicBaseURL(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
