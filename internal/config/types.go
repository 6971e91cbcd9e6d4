package config

import (
	"fmt"
	"net/url"

	"github.com/giantswarm/mcp-hubspot/internal/hubspot"
)

// Transport selects how MCP is served in addition to the HTTP surface.
type Transport string

const (
	// TransportHTTP serves MCP over SSE and streamable HTTP.
	TransportHTTP Transport = "http"
	// TransportStdio additionally serves MCP on stdin/stdout.
	TransportStdio Transport = "stdio"
)

// ParseTransport validates a transport name.
func ParseTransport(s string) (Transport, error) {
	switch t := Transport(s); t {
	case "":
		return DefaultTransport, nil
	case TransportHTTP, TransportStdio:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported transport %q (expected %s or %s)", s, TransportHTTP, TransportStdio)
	}
}

// Config is the complete server configuration.
type Config struct {
	Port int

	ClientID      string
	ClientSecret  string
	SessionSecret string
	RedirectURI   string

	// AccessToken pre-authorizes the server when set.
	AccessToken string

	PortalID string
	Scopes   []string

	SearchOperator hubspot.SearchOperator
	CatalogFile    string
	Catalog        hubspot.Catalog
	APIBaseURL     string

	Transport Transport
	Debug     bool
}

// Validate reports every missing required value in one ConfigurationError.
func (c *Config) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, EnvClientID)
	}
	if c.ClientSecret == "" {
		missing = append(missing, EnvClientSecret)
	}
	if c.SessionSecret == "" {
		missing = append(missing, EnvSessionSecret)
	}
	if len(missing) > 0 {
		return &ConfigurationError{
			Missing: missing,
			Message: "missing required environment variables",
			Suggestions: []string{
				"set the variables in the environment or in a .env file",
				"create a HubSpot app to obtain the client ID and secret",
			},
		}
	}

	if _, err := url.ParseRequestURI(c.RedirectURI); err != nil {
		return &ConfigurationError{
			Message: fmt.Sprintf("invalid %s %q", EnvRedirectURI, c.RedirectURI),
			Details: err.Error(),
		}
	}
	return nil
}

// SecureCookies reports whether the redirect URI is served over HTTPS.
func (c *Config) SecureCookies() bool {
	u, err := url.Parse(c.RedirectURI)
	return err == nil && u.Scheme == "https"
}
