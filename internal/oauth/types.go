package oauth

import (
	"fmt"
	"time"
)

const (
	// DefaultAuthURL is HubSpot's standard app authorization page.
	DefaultAuthURL = "https://app.hubspot.com/oauth/authorize"

	// DefaultTokenURL is HubSpot's token endpoint.
	DefaultTokenURL = "https://api.hubapi.com/oauth/v1/token"

	// portalAuthURLFormat is the MCP authorization page of a single portal.
	portalAuthURLFormat = "https://mcp.hubspot.com/oauth/%s/authorize/user"

	// DefaultSessionTTL is how long an install session stays valid.
	DefaultSessionTTL = 10 * time.Minute

	// SessionCookieName is the cookie carrying the signed session ID.
	SessionCookieName = "hubspot_mcp_session"
)

// Config holds the OAuth client settings for the install flow.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// PortalID selects the portal specific MCP authorization page when set.
	PortalID string

	// Scopes requested during install. Omitted from the URL when empty.
	Scopes []string

	// AuthURL and TokenURL override the HubSpot endpoints.
	AuthURL  string
	TokenURL string
}

// AuthorizationEndpoint returns the authorization page for the config.
func (c Config) AuthorizationEndpoint() string {
	if c.AuthURL != "" {
		return c.AuthURL
	}
	if c.PortalID != "" {
		return fmt.Sprintf(portalAuthURLFormat, c.PortalID)
	}
	return DefaultAuthURL
}

// TokenEndpoint returns the token endpoint for the config.
func (c Config) TokenEndpoint() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return DefaultTokenURL
}

// InstallRequest is the result of starting an install.
type InstallRequest struct {
	// SessionID identifies the server-side session holding the verifier.
	SessionID string

	// AuthURL is where the browser must be redirected.
	AuthURL string

	// CreatedAt and ExpiresAt bound the session's lifetime.
	CreatedAt time.Time
	ExpiresAt time.Time
}
