// Package server exposes the HubSpot MCP server over HTTP.
//
// A single listener serves both the browser-facing authorization flow and
// the MCP transports:
//
//	GET  /install   start the OAuth install (redirect to HubSpot)
//	GET  /callback  complete the OAuth install
//	GET  /health    {"status":"ok","authorized":bool,"runtime":string}
//	     /sse       MCP SSE stream
//	     /message   MCP SSE message endpoint
//	     /mcp       MCP streamable HTTP transport
//
// The MCP endpoints are not protected: tool calls are authorized with the
// single HubSpot access token held by the process, and fail with a tool
// error until /install has been completed.
//
// Serve shuts the server down gracefully when its context is cancelled.
// Long-lived SSE and streamable GET streams are ended first so shutdown
// does not wait for idle clients.
package server
