package app

import (
	"io"

	"github.com/giantswarm/mcp-hubspot/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Version is reported to MCP clients.
	Version string

	// Debug enables debug logging.
	Debug bool

	// EnvFile names the .env file to read. Empty reads ./.env when present.
	EnvFile string

	// Command line overrides of environment settings.
	Overrides config.Overrides

	// ServerConfig, when set, is used instead of loading the environment.
	ServerConfig *config.Config

	// LogOutput receives log output. Defaults to stderr so the stdio
	// transport keeps stdout for protocol messages.
	LogOutput io.Writer

	// Stdin and Stdout carry the stdio transport. Default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
}

// NewConfig creates a new application configuration
func NewConfig(version string, debug bool, envFile string, overrides config.Overrides) *Config {
	overrides.Debug = debug
	return &Config{
		Version:   version,
		Debug:     debug,
		EnvFile:   envFile,
		Overrides: overrides,
	}
}
