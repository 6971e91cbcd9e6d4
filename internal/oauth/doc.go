// Package oauth implements the HubSpot app install flow.
//
// A browser visiting /install is sent to HubSpot's authorization page with
// a PKCE (RFC 7636) S256 challenge. The matching verifier stays on the
// server in a SessionStore; the browser only carries a signed cookie naming
// its session. When HubSpot redirects back to /callback the code is
// exchanged for an access token, which is kept in a TokenHolder for the
// tool handlers.
//
// # Components
//
//   - Flow: BeginInstall and CompleteCallback, the transport-independent core
//   - Handler: the /install and /callback HTTP endpoints and result pages
//   - SessionStore: single-use PKCE sessions with a 10 minute lifetime
//   - CookieSigner: HS256 signed session cookies
//   - TokenHolder: the process-wide access token slot
//
// # Security
//
// Verifiers never leave the server. Sessions are consumed by the first
// callback that names them, whether or not the exchange succeeds. Access
// tokens are wrapped in RedactedToken and never logged.
package oauth
