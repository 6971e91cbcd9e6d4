package hubspot

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// RemoteAPIError is returned for any transport failure or non-2xx response
// from the HubSpot API.
type RemoteAPIError struct {
	// StatusCode is the HTTP status of the response, or 500 when no
	// response was received.
	StatusCode int

	// Message is taken from the remote payload when present.
	Message string

	// Category and CorrelationID are copied from HubSpot's error payload.
	Category      string
	CorrelationID string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("HubSpot API error (%d): %s", e.StatusCode, e.Message)
}

// IsRemoteAPIError reports whether err wraps a RemoteAPIError and returns it.
func IsRemoteAPIError(err error) (*RemoteAPIError, bool) {
	var remoteErr *RemoteAPIError
	if errors.As(err, &remoteErr) {
		return remoteErr, true
	}
	return nil, false
}

type errorPayload struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	Category      string `json:"category"`
	CorrelationID string `json:"correlationId"`
}

// newResponseError builds a RemoteAPIError from a non-2xx response body.
func newResponseError(statusCode int, body []byte) *RemoteAPIError {
	remoteErr := &RemoteAPIError{StatusCode: statusCode}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		remoteErr.Message = payload.Message
		remoteErr.Category = payload.Category
		remoteErr.CorrelationID = payload.CorrelationID
	}

	if remoteErr.Message == "" {
		remoteErr.Message = fmt.Sprintf("request failed with status code %d (%s)", statusCode, http.StatusText(statusCode))
	}
	return remoteErr
}

// newTransportError builds a RemoteAPIError for a call that got no response.
func newTransportError(err error) *RemoteAPIError {
	return &RemoteAPIError{
		StatusCode: http.StatusInternalServerError,
		Message:    err.Error(),
	}
}
