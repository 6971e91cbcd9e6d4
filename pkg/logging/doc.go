// Package logging provides the structured logging used across the HubSpot
// MCP server.
//
// It is a thin layer over Go's slog package: callers log through package
// level functions that tag every entry with a subsystem name.
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Server", "Listening on %s", addr)
//	logging.Debug("HubSpot", "GET %s", path)
//	logging.Warn("OAuth", "Callback without session cookie")
//	logging.Error("OAuth", err, "Token exchange failed")
//
// # Subsystems
//
//   - Bootstrap: application start and configuration loading
//   - Server: HTTP surface and MCP transports
//   - OAuth: install and callback flow
//   - HubSpot: outbound CRM API calls
//   - Tools: tool registration and invocation
//
// # Security
//
// Access tokens, client secrets and authorization codes are never logged.
// Session identifiers are shortened with TruncateSessionID. Install and
// callback outcomes are recorded through Audit so they can be filtered by
// the [AUDIT] prefix.
package logging
