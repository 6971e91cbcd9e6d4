// Package config loads the server configuration.
//
// Configuration is read once at startup. Command line flags take precedence
// over the process environment, which takes precedence over an optional .env
// file. The CRM object catalog is built in and can be replaced by a YAML
// file.
//
// # Environment
//
//	HUBSPOT_CLIENT_ID        required
//	HUBSPOT_CLIENT_SECRET    required
//	SESSION_SECRET           required, signs the install session cookie
//	REDIRECT_URI             default https://{RENDER_EXTERNAL_HOSTNAME}/callback
//	                         or http://localhost:{PORT}/callback
//	HUBSPOT_ACCESS_TOKEN     pre-authorizes the server
//	PORT                     default 3000
//	HUBSPOT_PORTAL_ID        use the portal specific MCP authorization page
//	HUBSPOT_SCOPES           space separated scopes requested on install
//	HUBSPOT_SEARCH_OPERATOR  CONTAINS_TOKEN (default) or EQ
//	HUBSPOT_CATALOG_FILE     YAML catalog replacing the built-in one
//	HUBSPOT_API_BASE_URL     default https://api.hubapi.com
//
// # Catalog File
//
//	- type: contacts
//	  name: contact
//	  searchProperty: email
//	- type: quotes
//	  name: quote
//	  searchProperty: hs_title
//	  updatable: false
package config
