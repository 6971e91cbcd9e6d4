// Package app wires and runs the HubSpot MCP server.
//
// NewApplication initializes logging, loads the configuration (environment,
// optional .env file and command line overrides), validates it and builds
// the services:
//
//   - oauth.TokenHolder: the single access token, optionally seeded from
//     HUBSPOT_ACCESS_TOKEN
//   - oauth.SessionStore, oauth.Flow and oauth.Handler: the /install and
//     /callback flow
//   - tools.Registry registered on an mcp-go MCPServer
//   - server.HTTPServer: auth pages, /health and the MCP HTTP transports
//
// Run serves until the context is cancelled or SIGINT/SIGTERM arrives. The
// HTTP server and, with the stdio transport, a stdin/stdout MCP session run
// in one errgroup so either failing stops both. Readiness and shutdown are
// reported to systemd when NOTIFY_SOCKET is set.
package app
