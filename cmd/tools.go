package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/giantswarm/mcp-hubspot/internal/app"
	"github.com/giantswarm/mcp-hubspot/internal/config"
	"github.com/giantswarm/mcp-hubspot/internal/oauth"
	pkgstrings "github.com/giantswarm/mcp-hubspot/pkg/strings"
)

var (
	toolsCatalog        string
	toolsSearchOperator string
	toolsEnvFile        string
)

func newToolsCmd() *cobra.Command {
	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools the server exposes",
		Long: `Prints every tool generated from the object catalog with its arguments.
Required arguments are marked with *. No HubSpot credentials are needed.`,
		Args: cobra.NoArgs,
		RunE: runTools,
	}
	toolsCmd.Flags().StringVar(&toolsCatalog, "catalog", "", "YAML file describing the CRM object types to expose")
	toolsCmd.Flags().StringVar(&toolsSearchOperator, "search-operator", "", "Search filter operator: CONTAINS_TOKEN or EQ")
	toolsCmd.Flags().StringVar(&toolsEnvFile, "env-file", "", "Path to a .env file (default ./.env when present)")
	return toolsCmd
}

func runTools(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoadOptions{
		EnvFile: toolsEnvFile,
		Overrides: config.Overrides{
			CatalogFile:    toolsCatalog,
			SearchOperator: toolsSearchOperator,
		},
	})
	if err != nil {
		return err
	}

	registry, err := app.NewRegistry(cfg, oauth.NewTokenHolder(""))
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("TOOL"),
		text.FgHiCyan.Sprint("DESCRIPTION"),
		text.FgHiCyan.Sprint("ARGUMENTS"),
	})

	for _, name := range registry.Names() {
		tool, _ := registry.Lookup(name)
		t.AppendRow(table.Row{
			name,
			pkgstrings.Truncate(tool.Tool.Description, pkgstrings.DefaultDescriptionMaxLen),
			formatArguments(tool.Tool.InputSchema.Properties, tool.Tool.InputSchema.Required),
		})
	}
	t.AppendFooter(table.Row{"", "Total", len(registry.Names())})
	t.Render()

	fmt.Fprintf(cmd.OutOrStdout(), "\nSearch operator: %s\n", cfg.SearchOperator)
	return nil
}

// formatArguments lists argument names, required ones first and marked with *.
func formatArguments(properties map[string]any, required []string) string {
	isRequired := make(map[string]bool, len(required))
	for _, name := range required {
		isRequired[name] = true
	}

	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if isRequired[names[i]] != isRequired[names[j]] {
			return isRequired[names[i]]
		}
		return names[i] < names[j]
	})

	for i, name := range names {
		if isRequired[name] {
			names[i] = name + "*"
		}
	}
	return strings.Join(names, ", ")
}
