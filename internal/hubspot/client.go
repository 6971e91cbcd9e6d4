package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-hubspot/pkg/logging"
)

// DefaultBaseURL is the production HubSpot API.
const DefaultBaseURL = "https://api.hubapi.com"

// Client issues authenticated calls against the HubSpot CRM API.
// A Client is bound to one access token and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	baseURL string
	base    http.RoundTripper
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithTransport sets the round tripper underneath the bearer transport.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) {
		o.base = rt
	}
}

// NewClient creates a client that authenticates every call with token.
func NewClient(token string, opts ...ClientOption) *Client {
	o := &clientOptions{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(o)
	}

	base := o.base
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		baseURL: strings.TrimRight(o.baseURL, "/"),
		httpClient: &http.Client{
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
				Base:   base,
			},
		},
	}
}

// Request performs one HTTP call with an optional JSON body and returns the
// response body unchanged. An empty body is returned as JSON null.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, newTransportError(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Debug("HubSpot", "%s %s failed: %v", method, path, err)
		return nil, newTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(fmt.Errorf("failed to read response body: %w", err))
	}

	logging.Debug("HubSpot", "%s %s -> %d", method, path, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newResponseError(resp.StatusCode, data)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(data) {
		quoted, err := json.Marshal(string(data))
		if err != nil {
			return nil, err
		}
		return quoted, nil
	}
	return json.RawMessage(data), nil
}

func objectsPath(objectType string, segments ...string) string {
	var b strings.Builder
	b.WriteString("/crm/v3/objects/")
	b.WriteString(url.PathEscape(objectType))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// GetObject fetches one object by ID.
func (c *Client) GetObject(ctx context.Context, objectType, id string, opts GetOptions) (json.RawMessage, error) {
	path := objectsPath(objectType, id)

	query := url.Values{}
	if len(opts.Properties) > 0 {
		query.Set("properties", strings.Join(opts.Properties, ","))
	}
	if opts.IDProperty != "" {
		query.Set("idProperty", opts.IDProperty)
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	return c.Request(ctx, http.MethodGet, path, nil)
}

// SearchObjects runs a search with a single filter group.
func (c *Client) SearchObjects(ctx context.Context, objectType string, filters []Filter, properties []string) (json.RawMessage, error) {
	if filters == nil {
		filters = []Filter{}
	}
	body := SearchRequest{
		FilterGroups: []FilterGroup{{Filters: filters}},
		Properties:   properties,
	}
	return c.Request(ctx, http.MethodPost, objectsPath(objectType, "search"), body)
}

// CreateObject creates an object with the given properties.
func (c *Client) CreateObject(ctx context.Context, objectType string, properties *Properties) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPost, objectsPath(objectType), newPropertiesEnvelope(properties))
}

// UpdateObject patches the given properties of an existing object.
func (c *Client) UpdateObject(ctx context.Context, objectType, id string, properties *Properties) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodPatch, objectsPath(objectType, id), newPropertiesEnvelope(properties))
}

// AssociateObjects links two objects. An empty category is sent as
// DefaultAssociationCategory.
func (c *Client) AssociateObjects(ctx context.Context, a Association) (json.RawMessage, error) {
	category := a.Category
	if category == "" {
		category = DefaultAssociationCategory
	}

	body := associationBatchRequest{
		Inputs: []associationInput{{
			From: objectRef{ID: a.FromObjectID},
			To:   objectRef{ID: a.ToObjectID},
			Types: []associationSpec{{
				AssociationCategory: category,
				AssociationTypeID:   a.TypeID,
			}},
		}},
	}

	path := fmt.Sprintf("/crm/v3/associations/%s/%s/batch/create",
		url.PathEscape(a.FromObjectType), url.PathEscape(a.ToObjectType))
	return c.Request(ctx, http.MethodPost, path, body)
}
