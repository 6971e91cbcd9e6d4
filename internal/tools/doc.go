// Package tools builds the MCP tools that expose the HubSpot CRM.
//
// For every object type in the catalog the registry publishes get, search
// and create tools, plus update when the type is updatable, and a single
// associate_objects tool. All tools share one handler: arguments are
// validated against the tool's declared arguments, the current access token
// is read, and one HubSpot call is made. Results are returned as indented
// JSON text; failures are returned as MCP error results.
package tools
