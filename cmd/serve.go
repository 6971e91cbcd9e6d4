package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-hubspot/internal/app"
	"github.com/giantswarm/mcp-hubspot/internal/config"
)

// servePort overrides PORT.
var servePort int

// serveCatalog overrides HUBSPOT_CATALOG_FILE.
var serveCatalog string

// serveSearchOperator overrides HUBSPOT_SEARCH_OPERATOR.
var serveSearchOperator string

// serveTransport selects whether MCP is also served on stdin/stdout.
var serveTransport string

// serveDebug enables verbose logging.
var serveDebug bool

// serveEnvFile names the .env file to read.
var serveEnvFile string

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HubSpot MCP server",
		Long: `Starts the HTTP server with the OAuth install flow (/install, /callback),
the health check (/health) and the MCP transports (/sse, /message, /mcp).

Configuration is read from the environment and an optional .env file:
  HUBSPOT_CLIENT_ID, HUBSPOT_CLIENT_SECRET, SESSION_SECRET   required
  REDIRECT_URI, HUBSPOT_ACCESS_TOKEN, HUBSPOT_PORTAL_ID,
  HUBSPOT_SCOPES, HUBSPOT_SEARCH_OPERATOR, HUBSPOT_CATALOG_FILE,
  HUBSPOT_API_BASE_URL, PORT                                  optional

Flags override the corresponding environment variables.

With --transport stdio the server additionally speaks MCP on stdin/stdout
and exits when stdin is closed. Logs always go to stderr.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	addServeFlags(serveCmd)
	return serveCmd
}

// addServeFlags registers the serve flags on c. The root command shares them
// so the binary serves without a subcommand.
func addServeFlags(c *cobra.Command) {
	c.Flags().IntVar(&servePort, "port", 0, fmt.Sprintf("Port to listen on (default %d, env PORT)", config.DefaultPort))
	c.Flags().StringVar(&serveCatalog, "catalog", "", "YAML file describing the CRM object types to expose")
	c.Flags().StringVar(&serveSearchOperator, "search-operator", "", "Search filter operator: CONTAINS_TOKEN or EQ")
	c.Flags().StringVar(&serveTransport, "transport", "", "MCP transport in addition to HTTP: http or stdio")
	c.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	c.Flags().StringVar(&serveEnvFile, "env-file", "", "Path to a .env file (default ./.env when present)")
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(rootCmd.Version, serveDebug, serveEnvFile, config.Overrides{
		Port:           servePort,
		CatalogFile:    serveCatalog,
		SearchOperator: serveSearchOperator,
		Transport:      serveTransport,
	})

	application, err := app.NewApplication(cfg)
	if err != nil {
		if cfgErr, ok := config.IsConfigurationError(err); ok {
			fmt.Fprintln(cmd.ErrOrStderr(), cfgErr.DetailedError())
			cmd.SilenceErrors = true
			return err
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return application.Run(cmd.Context())
}
