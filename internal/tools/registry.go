package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-hubspot/internal/hubspot"
	"github.com/giantswarm/mcp-hubspot/pkg/logging"
)

// TokenSource supplies the current access token. An empty token means the
// server is not authorized.
type TokenSource interface {
	Get() string
}

// ClientFactory builds a CRM client for an access token.
type ClientFactory func(token string) CRMClient

// HubSpotClientFactory returns a factory for real HubSpot clients.
func HubSpotClientFactory(opts ...hubspot.ClientOption) ClientFactory {
	return func(token string) CRMClient {
		return hubspot.NewClient(token, opts...)
	}
}

// Options configures a Registry.
type Options struct {
	Catalog        hubspot.Catalog
	SearchOperator hubspot.SearchOperator
	Tokens         TokenSource
	NewClient      ClientFactory
}

// Registry holds the tool descriptors built from the catalog. It is
// immutable after construction.
type Registry struct {
	tools     []server.ServerTool
	byName    map[string]server.ServerTool
	tokens    TokenSource
	newClient ClientFactory
}

// NewRegistry builds one tool per catalog entry and operation plus
// associate_objects.
func NewRegistry(opts Options) (*Registry, error) {
	if opts.Tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	if err := opts.Catalog.Validate(); err != nil {
		return nil, err
	}

	operator := opts.SearchOperator
	if operator == "" {
		operator = hubspot.OperatorContainsToken
	}
	if _, err := hubspot.ParseSearchOperator(string(operator)); err != nil {
		return nil, err
	}

	newClient := opts.NewClient
	if newClient == nil {
		newClient = HubSpotClientFactory()
	}

	r := &Registry{
		byName:    make(map[string]server.ServerTool),
		tokens:    opts.Tokens,
		newClient: newClient,
	}

	for _, d := range opts.Catalog {
		for _, op := range objectOperations {
			if op.enabled != nil && !op.enabled(d) {
				continue
			}
			if err := r.add(op.name(d), op.description(d), op.args(d), op.invoke(d, operator)); err != nil {
				return nil, err
			}
		}
	}

	if err := r.add(associateToolName, "Associate two HubSpot objects", associateArgs, invokeAssociate); err != nil {
		return nil, err
	}

	logging.Debug("Tools", "Registered %d tools for %d object types (search operator %s)",
		len(r.tools), len(opts.Catalog), operator)

	return r, nil
}

func (r *Registry) add(name, description string, specs []argSpec, invoke invokeFunc) error {
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("duplicate tool name %q", name)
	}

	tool := server.ServerTool{
		Tool:    mcp.NewTool(name, toolOptions(description, specs)...),
		Handler: r.newHandler(name, specs, invoke),
	}
	r.tools = append(r.tools, tool)
	r.byName[name] = tool
	return nil
}

// newHandler wraps invoke with argument validation, the authorization
// check and result formatting. Per-call failures become error results.
func (r *Registry) newHandler(name string, specs []argSpec, invoke invokeFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		if err := validateArgs(name, specs, args); err != nil {
			logging.Debug("Tools", "Rejected %s call: %v", name, err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		token := r.tokens.Get()
		if token == "" {
			return mcp.NewToolResultError((&NotAuthorizedError{}).Error()), nil
		}

		result, err := invoke(ctx, r.newClient(token), args)
		if err != nil {
			logging.Debug("Tools", "%s failed: %v", name, err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		text, err := prettyJSON(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to format result: %v", err)), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

// prettyJSON indents raw JSON by two spaces.
func prettyJSON(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "null", nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Register adds every tool to an MCP server.
func (r *Registry) Register(s *server.MCPServer) {
	s.AddTools(r.tools...)
}

// Tools returns the tool descriptors in registration order.
func (r *Registry) Tools() []server.ServerTool {
	out := make([]server.ServerTool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Names returns the sorted tool names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the tool with the given name.
func (r *Registry) Lookup(name string) (server.ServerTool, bool) {
	tool, ok := r.byName[name]
	return tool, ok
}

// Call invokes a tool directly, bypassing the MCP transport.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	tool, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}

	var request mcp.CallToolRequest
	request.Params.Name = name
	request.Params.Arguments = args
	return tool.Handler(ctx, request)
}
