package oauth

import (
	"sync"
	"time"

	"github.com/giantswarm/mcp-hubspot/pkg/logging"
)

// RedactedToken wraps a token string so that it prints as "[REDACTED]"
// through fmt, encoding/json and encoding.TextMarshaler.
type RedactedToken struct {
	value string
}

// NewRedactedToken wraps value.
func NewRedactedToken(value string) RedactedToken {
	return RedactedToken{value: value}
}

// Value returns the raw token. Never log the result.
func (t RedactedToken) Value() string {
	return t.value
}

func (t RedactedToken) String() string {
	return "[REDACTED]"
}

func (t RedactedToken) GoString() string {
	return "oauth.RedactedToken{[REDACTED]}"
}

// IsEmpty reports whether no token is held.
func (t RedactedToken) IsEmpty() bool {
	return t.value == ""
}

func (t RedactedToken) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

func (t RedactedToken) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}

// TokenHolder is the single access token slot of the process.
// The zero value holds no token.
type TokenHolder struct {
	mu        sync.RWMutex
	token     RedactedToken
	updatedAt time.Time
}

// NewTokenHolder returns a holder seeded with initial, which may be empty.
func NewTokenHolder(initial string) *TokenHolder {
	h := &TokenHolder{}
	if initial != "" {
		h.token = NewRedactedToken(initial)
		h.updatedAt = time.Now()
	}
	return h
}

// Get returns the current access token, or "" when not authorized.
func (h *TokenHolder) Get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token.Value()
}

// Token returns the current token in its redacted wrapper.
func (h *TokenHolder) Token() RedactedToken {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Set replaces the access token.
func (h *TokenHolder) Set(token string) {
	h.mu.Lock()
	h.token = NewRedactedToken(token)
	h.updatedAt = time.Now()
	h.mu.Unlock()

	logging.Debug("OAuth", "Access token updated (empty=%t)", token == "")
}

// Authorized reports whether a non-empty token is held.
func (h *TokenHolder) Authorized() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return !h.token.IsEmpty()
}

// UpdatedAt returns when the token was last set.
func (h *TokenHolder) UpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.updatedAt
}
