package oauth

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	pkgstrings "github.com/giantswarm/mcp-hubspot/pkg/strings"
)

// MissingCodeError is returned when a callback carries no authorization code.
type MissingCodeError struct{}

func (e *MissingCodeError) Error() string {
	return "no authorization code provided"
}

// SessionExpiredError is returned when a callback cannot be paired with a
// pending install session.
type SessionExpiredError struct {
	Reason string
}

func (e *SessionExpiredError) Error() string {
	if e.Reason == "" {
		return "session expired or invalid"
	}
	return fmt.Sprintf("session expired or invalid: %s", e.Reason)
}

// AuthorizationFailedError is returned when HubSpot rejects the install,
// either at the authorization page or at the token exchange.
type AuthorizationFailedError struct {
	// StatusCode is the token endpoint's HTTP status. Zero when no
	// response was received or the authorization page reported the error.
	StatusCode int

	// ErrorCode is the OAuth error code, e.g. "access_denied".
	ErrorCode string

	// Payload is the upstream response body or error description.
	Payload string

	Err error
}

func (e *AuthorizationFailedError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("authorization failed with status %d: %s", e.StatusCode, pkgstrings.Truncate(e.Payload, pkgstrings.MaxPayloadLen))
	case e.ErrorCode != "":
		return fmt.Sprintf("authorization failed: %s", pkgstrings.SingleLine(e.ErrorCode))
	case e.Err != nil:
		return fmt.Sprintf("authorization failed: %v", e.Err)
	default:
		return "authorization failed"
	}
}

func (e *AuthorizationFailedError) Unwrap() error {
	return e.Err
}

// newExchangeError converts a token exchange error from x/oauth2.
func newExchangeError(err error) *AuthorizationFailedError {
	failed := &AuthorizationFailedError{Err: err}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil {
			failed.StatusCode = retrieveErr.Response.StatusCode
		}
		failed.ErrorCode = retrieveErr.ErrorCode
		failed.Payload = string(retrieveErr.Body)
		return failed
	}

	failed.Payload = err.Error()
	return failed
}

// IsMissingCode reports whether err is a MissingCodeError.
func IsMissingCode(err error) bool {
	var target *MissingCodeError
	return errors.As(err, &target)
}

// IsSessionExpired reports whether err is a SessionExpiredError.
func IsSessionExpired(err error) bool {
	var target *SessionExpiredError
	return errors.As(err, &target)
}

// IsAuthorizationFailed reports whether err is an AuthorizationFailedError
// and returns it.
func IsAuthorizationFailed(err error) (*AuthorizationFailedError, bool) {
	var target *AuthorizationFailedError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
