// Package hubspot is a thin client for the HubSpot CRM v3 REST API.
//
// A Client is bound to a single bearer token and performs exactly one HTTP
// call per operation. Responses are returned as raw JSON so callers can pass
// them through unchanged. Failures of any kind surface as *RemoteAPIError.
//
// The package also defines the Catalog of CRM object types the server
// exposes and the PropertyValue and Properties types used for object
// properties.
package hubspot
