package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/giantswarm/mcp-hubspot/internal/hubspot"
	"github.com/giantswarm/mcp-hubspot/pkg/logging"
)

// Overrides are command line values that replace environment settings.
// Zero values leave the environment setting in place.
type Overrides struct {
	Port           int
	CatalogFile    string
	SearchOperator string
	Transport      string
	Debug          bool
}

// LoadOptions control where configuration is read from.
type LoadOptions struct {
	// EnvFile names a .env file. When empty DefaultEnvFile is read if it
	// exists; a named file must exist.
	EnvFile string

	Overrides Overrides

	// LookupEnv replaces os.LookupEnv, for tests.
	LookupEnv func(key string) (string, bool)
}

// Load reads the configuration. It does not check required values; call
// Validate before serving.
func Load(opts LoadOptions) (*Config, error) {
	lookup, err := newLookup(opts)
	if err != nil {
		return nil, err
	}

	cfg := GetDefaultConfig()

	cfg.ClientID = lookup.get(EnvClientID)
	cfg.ClientSecret = lookup.get(EnvClientSecret)
	cfg.SessionSecret = lookup.get(EnvSessionSecret)
	cfg.AccessToken = lookup.get(EnvAccessToken)
	cfg.PortalID = lookup.get(EnvPortalID)
	cfg.CatalogFile = lookup.get(EnvCatalogFile)

	if v := lookup.get(EnvAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}

	if v := lookup.get(EnvPort); v != "" {
		port, err := parsePort(v)
		if err != nil {
			return nil, &ConfigurationError{Message: fmt.Sprintf("invalid %s %q", EnvPort, v), Details: err.Error()}
		}
		cfg.Port = port
	}

	operator := lookup.get(EnvSearchOperator)

	// Flags win over the environment.
	o := opts.Overrides
	if o.Port != 0 {
		if _, err := parsePort(strconv.Itoa(o.Port)); err != nil {
			return nil, &ConfigurationError{Message: fmt.Sprintf("invalid port %d", o.Port), Details: err.Error()}
		}
		cfg.Port = o.Port
	}
	if o.CatalogFile != "" {
		cfg.CatalogFile = o.CatalogFile
	}
	if o.SearchOperator != "" {
		operator = o.SearchOperator
	}
	cfg.Debug = o.Debug

	cfg.Transport, err = ParseTransport(o.Transport)
	if err != nil {
		return nil, &ConfigurationError{Message: err.Error()}
	}

	cfg.SearchOperator, err = hubspot.ParseSearchOperator(operator)
	if err != nil {
		return nil, &ConfigurationError{Message: err.Error()}
	}

	if scopes, ok := lookup.lookup(EnvScopes); ok {
		cfg.Scopes = strings.Fields(scopes)
	} else if cfg.PortalID == "" {
		cfg.Scopes = append([]string(nil), DefaultScopes...)
	}

	cfg.RedirectURI = lookup.get(EnvRedirectURI)
	if cfg.RedirectURI == "" {
		cfg.RedirectURI = defaultRedirectURI(lookup.get(EnvExternalHostname), cfg.Port)
	}

	if cfg.CatalogFile != "" {
		catalog, err := LoadCatalog(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		cfg.Catalog = catalog
	}

	return &cfg, nil
}

// defaultRedirectURI derives the callback URL from the public hostname, or
// from localhost and the port for local runs.
func defaultRedirectURI(externalHostname string, port int) string {
	if externalHostname != "" {
		return fmt.Sprintf("https://%s/callback", externalHostname)
	}
	return fmt.Sprintf("http://localhost:%d/callback", port)
}

func parsePort(v string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, err
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port must be between 1 and 65535")
	}
	return port, nil
}

// envLookup resolves variables from the environment first and the .env
// file second.
type envLookup struct {
	env  func(string) (string, bool)
	file map[string]string
}

func newLookup(opts LoadOptions) (*envLookup, error) {
	l := &envLookup{env: opts.LookupEnv, file: map[string]string{}}
	if l.env == nil {
		l.env = os.LookupEnv
	}

	path := opts.EnvFile
	required := path != ""
	if path == "" {
		path = DefaultEnvFile
	}

	vars, err := godotenv.Read(path)
	switch {
	case err == nil:
		l.file = vars
		logging.Debug("Bootstrap", "Loaded %d variables from %s", len(vars), path)
	case errors.Is(err, os.ErrNotExist) && !required:
		// optional
	default:
		return nil, &ConfigurationError{
			Message: fmt.Sprintf("failed to read env file %s", path),
			Details: err.Error(),
		}
	}
	return l, nil
}

func (l *envLookup) lookup(key string) (string, bool) {
	if v, ok := l.env(key); ok {
		return v, true
	}
	v, ok := l.file[key]
	return v, ok
}

func (l *envLookup) get(key string) string {
	v, _ := l.lookup(key)
	return strings.TrimSpace(v)
}

// LoadCatalog reads and validates a YAML catalog file.
func LoadCatalog(path string) (hubspot.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{
			Message: fmt.Sprintf("failed to read catalog file %s", path),
			Details: err.Error(),
		}
	}

	var catalog hubspot.Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, &ConfigurationError{
			Message: fmt.Sprintf("failed to parse catalog file %s", path),
			Details: err.Error(),
		}
	}

	if err := catalog.Validate(); err != nil {
		return nil, &ConfigurationError{
			Message:     fmt.Sprintf("invalid catalog file %s", path),
			Details:     err.Error(),
			Suggestions: []string{"every entry needs a unique type and name and a searchProperty"},
		}
	}

	logging.Info("Bootstrap", "Loaded catalog with %d object types from %s", len(catalog), path)
	return catalog, nil
}
