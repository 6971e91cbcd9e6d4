package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-hubspot/internal/config"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfiguration indicates missing or invalid configuration.
	ExitCodeConfiguration = 2
)

// rootCmd represents the base command. Without a subcommand it serves, so
// the binary can be started directly by a process manager.
var rootCmd = &cobra.Command{
	Use:   "mcp-hubspot",
	Short: "MCP server exposing HubSpot CRM tools",
	Long: `mcp-hubspot serves HubSpot CRM operations (get, search, create, update and
associate objects) as MCP tools over SSE, streamable HTTP or stdio.

Connect the server to a HubSpot account by opening /install in a browser,
or provide an access token in HUBSPOT_ACCESS_TOKEN.`,
	Args: cobra.NoArgs,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-hubspot version %s\n" .Version}}`)

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	if _, ok := config.IsConfigurationError(err); ok {
		return ExitCodeConfiguration
	}
	return ExitCodeError
}

func init() {
	// Assigned here rather than in the literal: runServe reads rootCmd, which
	// would otherwise form an initialization cycle.
	rootCmd.RunE = runServe
	addServeFlags(rootCmd)

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newToolsCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
