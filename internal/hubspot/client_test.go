package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
	Body          string
}

// newFakeAPI starts a server that records every request and answers with
// the given status and body.
func newFakeAPI(t *testing.T, status int, body string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{
			Method:        r.Method,
			Path:          r.URL.EscapedPath(),
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          string(data),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestClient_GetObject(t *testing.T) {
	payload := `{"id":"42","properties":{"email":"a@b.com"}}`
	srv, requests := newFakeAPI(t, http.StatusOK, payload)

	client := NewClient("test-token", WithBaseURL(srv.URL))
	result, err := client.GetObject(context.Background(), "contacts", "42", GetOptions{})
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/crm/v3/objects/contacts/42", req.Path)
	assert.Empty(t, req.RawQuery)
	assert.Equal(t, "Bearer test-token", req.Authorization)
	assert.Equal(t, payload, string(result))
}

func TestClient_GetObject_QueryParameters(t *testing.T) {
	srv, requests := newFakeAPI(t, http.StatusOK, `{}`)

	client := NewClient("tok", WithBaseURL(srv.URL))
	_, err := client.GetObject(context.Background(), "contacts", "a@b.com", GetOptions{
		Properties: []string{"email", "firstname"},
		IDProperty: "email",
	})
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/crm/v3/objects/contacts/a@b.com", req.Path)
	assert.Equal(t, "idProperty=email&properties=email%2Cfirstname", req.RawQuery)
}

func TestClient_GetObject_EscapesPathSegments(t *testing.T) {
	srv, requests := newFakeAPI(t, http.StatusOK, `{}`)

	client := NewClient("tok", WithBaseURL(srv.URL))
	_, err := client.GetObject(context.Background(), "contacts", "a/b c", GetOptions{})
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	assert.Equal(t, "/crm/v3/objects/contacts/a%2Fb%20c", (*requests)[0].Path)
}

func TestClient_SearchObjects(t *testing.T) {
	tests := []struct {
		name       string
		filters    []Filter
		properties []string
		wantBody   string
	}{
		{
			name:     "single filter",
			filters:  []Filter{{PropertyName: "email", Operator: OperatorContainsToken, Value: "jane"}},
			wantBody: `{"filterGroups":[{"filters":[{"propertyName":"email","operator":"CONTAINS_TOKEN","value":"jane"}]}]}`,
		},
		{
			name:       "with properties",
			filters:    []Filter{{PropertyName: "name", Operator: OperatorEQ, Value: "Acme"}},
			properties: []string{"name", "domain"},
			wantBody:   `{"filterGroups":[{"filters":[{"propertyName":"name","operator":"EQ","value":"Acme"}]}],"properties":["name","domain"]}`,
		},
		{
			name:     "no filters",
			wantBody: `{"filterGroups":[{"filters":[]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, requests := newFakeAPI(t, http.StatusOK, `{"total":0,"results":[]}`)

			client := NewClient("tok", WithBaseURL(srv.URL))
			result, err := client.SearchObjects(context.Background(), "contacts", tt.filters, tt.properties)
			require.NoError(t, err)
			assert.JSONEq(t, `{"total":0,"results":[]}`, string(result))

			require.Len(t, *requests, 1)
			req := (*requests)[0]
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "/crm/v3/objects/contacts/search", req.Path)
			assert.Equal(t, "application/json", req.ContentType)
			assert.JSONEq(t, tt.wantBody, req.Body)
		})
	}
}

func TestClient_CreateObject(t *testing.T) {
	srv, requests := newFakeAPI(t, http.StatusCreated, `{"id":"1"}`)

	client := NewClient("tok", WithBaseURL(srv.URL))
	props := NewProperties().Set("email", StringValue("a@b.com"))
	_, err := client.CreateObject(context.Background(), "contacts", props)
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/crm/v3/objects/contacts", req.Path)
	assert.Equal(t, `{"properties":{"email":"a@b.com"}}`, req.Body)
}

func TestClient_UpdateObject(t *testing.T) {
	srv, requests := newFakeAPI(t, http.StatusOK, `{"id":"7"}`)

	client := NewClient("tok", WithBaseURL(srv.URL))
	props := NewProperties().
		Set("dealname", StringValue("Renewal")).
		Set("amount", NumberValue(1500)).
		Set("closed", BoolValue(false))
	_, err := client.UpdateObject(context.Background(), "deals", "7", props)
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/crm/v3/objects/deals/7", req.Path)
	assert.Equal(t, `{"properties":{"dealname":"Renewal","amount":1500,"closed":false}}`, req.Body)
}

func TestClient_AssociateObjects(t *testing.T) {
	tests := []struct {
		name         string
		category     string
		wantCategory string
	}{
		{name: "default category", category: "", wantCategory: DefaultAssociationCategory},
		{name: "explicit category", category: "USER_DEFINED", wantCategory: "USER_DEFINED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, requests := newFakeAPI(t, http.StatusOK, `{"status":"COMPLETE"}`)

			client := NewClient("tok", WithBaseURL(srv.URL))
			_, err := client.AssociateObjects(context.Background(), Association{
				FromObjectType: "contacts",
				FromObjectID:   "1",
				ToObjectType:   "companies",
				ToObjectID:     "2",
				Category:       tt.category,
				TypeID:         279,
			})
			require.NoError(t, err)

			require.Len(t, *requests, 1)
			req := (*requests)[0]
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "/crm/v3/associations/contacts/companies/batch/create", req.Path)
			assert.JSONEq(t, `{"inputs":[{"from":{"id":"1"},"to":{"id":"2"},"types":[{"associationCategory":"`+tt.wantCategory+`","associationTypeId":279}]}]}`, req.Body)
		})
	}
}

func TestClient_Request_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "not found with message",
			status:      http.StatusNotFound,
			body:        `{"message":"not found"}`,
			wantStatus:  http.StatusNotFound,
			wantMessage: "not found",
		},
		{
			name:        "unauthorized with hubspot payload",
			status:      http.StatusUnauthorized,
			body:        `{"status":"error","message":"Authentication credentials not found","category":"INVALID_AUTHENTICATION","correlationId":"abc"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Authentication credentials not found",
		},
		{
			name:        "no message falls back to status",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantStatus:  http.StatusBadGateway,
			wantMessage: "request failed with status code 502 (Bad Gateway)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newFakeAPI(t, tt.status, tt.body)

			client := NewClient("tok", WithBaseURL(srv.URL))
			_, err := client.GetObject(context.Background(), "contacts", "1", GetOptions{})
			require.Error(t, err)

			remoteErr, ok := IsRemoteAPIError(err)
			require.True(t, ok, "expected RemoteAPIError, got %T", err)
			assert.Equal(t, tt.wantStatus, remoteErr.StatusCode)
			assert.Equal(t, tt.wantMessage, remoteErr.Message)
		})
	}
}

func TestClient_Request_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client := NewClient("tok", WithBaseURL(baseURL))
	_, err := client.GetObject(context.Background(), "contacts", "1", GetOptions{})
	require.Error(t, err)

	remoteErr, ok := IsRemoteAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, remoteErr.StatusCode)
	assert.NotEmpty(t, remoteErr.Message)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestClient_WithTransport(t *testing.T) {
	var seen *http.Request
	client := NewClient("tok", WithBaseURL("https://api.example.test"), WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"id":"1"}`)),
			Request:    r,
		}, nil
	})))

	result, err := client.GetObject(context.Background(), "contacts", "1", GetOptions{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(result))

	require.NotNil(t, seen)
	assert.Equal(t, "Bearer tok", seen.Header.Get("Authorization"))
	assert.Equal(t, "https://api.example.test/crm/v3/objects/contacts/1", seen.URL.String())
}

func TestClient_WithTransport_Failure(t *testing.T) {
	client := NewClient("tok", WithTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("dial refused")
	})))

	_, err := client.GetObject(context.Background(), "contacts", "1", GetOptions{})
	remoteErr, ok := IsRemoteAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, remoteErr.StatusCode)
	assert.Contains(t, remoteErr.Message, "dial refused")
}

func TestClient_Request_EmptyBody(t *testing.T) {
	srv, _ := newFakeAPI(t, http.StatusNoContent, "")

	client := NewClient("tok", WithBaseURL(srv.URL))
	result, err := client.Request(context.Background(), http.MethodDelete, "/crm/v3/objects/contacts/1", nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(result))
}

func TestClient_Request_SingleCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient("tok", WithBaseURL(srv.URL))
	_, err := client.GetObject(context.Background(), "contacts", "1", GetOptions{})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "failed calls must not be retried")
}

func TestClient_Request_ResultIsValidJSON(t *testing.T) {
	srv, _ := newFakeAPI(t, http.StatusOK, "plain text")

	client := NewClient("tok", WithBaseURL(srv.URL))
	result, err := client.Request(context.Background(), http.MethodGet, "/x", nil)
	require.NoError(t, err)

	var s string
	require.NoError(t, json.Unmarshal(result, &s))
	assert.Equal(t, "plain text", s)
}

func TestClient_CreateObject_NilProperties(t *testing.T) {
	srv, requests := newFakeAPI(t, http.StatusCreated, `{"id":"1"}`)

	client := NewClient("tok", WithBaseURL(srv.URL))
	_, err := client.CreateObject(context.Background(), "companies", nil)
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	assert.Equal(t, `{"properties":{}}`, (*requests)[0].Body)
}
