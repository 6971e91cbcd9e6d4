package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/giantswarm/mcp-hubspot/internal/config"
	"github.com/giantswarm/mcp-hubspot/pkg/logging"
)

// Application bootstraps and runs the HubSpot MCP server.
//
// Initialization happens in two phases:
//  1. Bootstrap: initialize logging, load and validate configuration, wire services
//  2. Execution: serve HTTP (and optionally stdio) until the context ends
//
// Example usage:
//
//	cfg := app.NewConfig(version, debug, "", config.Overrides{Port: 3000})
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
type Application struct {
	config   *Config
	services *Services
}

// NewApplication creates and initializes a new application instance.
//
// Configuration problems are reported as a *config.ConfigurationError,
// possibly wrapped.
func NewApplication(cfg *Config) (*Application, error) {
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}

	var logOutput io.Writer = os.Stderr
	if cfg.LogOutput != nil {
		logOutput = cfg.LogOutput
	}
	logging.InitForCLI(appLogLevel, logOutput)

	serverCfg := cfg.ServerConfig
	if serverCfg == nil {
		loaded, err := config.Load(config.LoadOptions{
			EnvFile:   cfg.EnvFile,
			Overrides: cfg.Overrides,
		})
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration")
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		serverCfg = loaded
	}

	if err := serverCfg.Validate(); err != nil {
		logging.Error("Bootstrap", err, "Invalid configuration")
		return nil, err
	}
	logging.Info("Bootstrap", "Loaded configuration (port %d, transport %s, %d object types, search operator %s)",
		serverCfg.Port, serverCfg.Transport, len(serverCfg.Catalog), serverCfg.SearchOperator)

	services, err := InitializeServices(serverCfg, cfg.Version)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Services returns the wired components.
func (a *Application) Services() *Services {
	return a.services
}

// Run serves until ctx is cancelled, a termination signal arrives or a
// transport fails. Background resources are released on return.
func (a *Application) Run(ctx context.Context) error {
	defer a.services.Close()

	stdin := io.Reader(os.Stdin)
	if a.config.Stdin != nil {
		stdin = a.config.Stdin
	}
	stdout := io.Writer(os.Stdout)
	if a.config.Stdout != nil {
		stdout = a.config.Stdout
	}

	return runServers(ctx, a.services, stdin, stdout)
}
