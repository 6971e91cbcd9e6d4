package config

import "github.com/giantswarm/mcp-hubspot/internal/hubspot"

const (
	// DefaultPort is the HTTP port when PORT is not set.
	DefaultPort = 3000

	// DefaultEnvFile is read when present and no other file is named.
	DefaultEnvFile = ".env"

	// DefaultTransport serves MCP over HTTP only.
	DefaultTransport = TransportHTTP
)

// Environment variable names.
const (
	EnvClientID         = "HUBSPOT_CLIENT_ID"
	EnvClientSecret     = "HUBSPOT_CLIENT_SECRET"
	EnvSessionSecret    = "SESSION_SECRET"
	EnvRedirectURI      = "REDIRECT_URI"
	EnvAccessToken      = "HUBSPOT_ACCESS_TOKEN"
	EnvPort             = "PORT"
	EnvPortalID         = "HUBSPOT_PORTAL_ID"
	EnvScopes           = "HUBSPOT_SCOPES"
	EnvSearchOperator   = "HUBSPOT_SEARCH_OPERATOR"
	EnvCatalogFile      = "HUBSPOT_CATALOG_FILE"
	EnvAPIBaseURL       = "HUBSPOT_API_BASE_URL"
	EnvExternalHostname = "RENDER_EXTERNAL_HOSTNAME"
)

// DefaultScopes are requested from the standard authorization page when
// HUBSPOT_SCOPES is not set. They cover every object of the default catalog.
var DefaultScopes = []string{
	"crm.objects.contacts.read",
	"crm.objects.contacts.write",
	"crm.objects.companies.read",
	"crm.objects.companies.write",
	"crm.objects.deals.read",
	"crm.objects.deals.write",
	"crm.objects.quotes.read",
	"crm.objects.quotes.write",
	"crm.objects.line_items.read",
	"crm.objects.line_items.write",
	"e-commerce",
	"tickets",
}

// GetDefaultConfig returns a configuration with every optional value set to
// its default.
func GetDefaultConfig() Config {
	return Config{
		Port:           DefaultPort,
		SearchOperator: hubspot.OperatorContainsToken,
		Catalog:        hubspot.DefaultCatalog(),
		APIBaseURL:     hubspot.DefaultBaseURL,
		Transport:      DefaultTransport,
	}
}
