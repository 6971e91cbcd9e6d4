package oauth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionCookieIssuer is the "iss" claim of session cookies.
const sessionCookieIssuer = "mcp-hubspot"

// CookieSigner issues and reads the signed cookie that binds a browser to
// its install session. The cookie value is an HS256 JWT whose subject is
// the session ID.
type CookieSigner struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewCookieSigner creates a signer using secret as the HMAC key. Secure
// controls the cookie's Secure attribute.
func NewCookieSigner(secret string, ttl time.Duration, secure bool) *CookieSigner {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &CookieSigner{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
	}
}

// Sign returns the signed cookie value for a session created at issuedAt.
func (c *CookieSigner) Sign(sessionID string, issuedAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    sessionCookieIssuer,
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session cookie: %w", err)
	}
	return signed, nil
}

// Verify checks a cookie value and returns the session ID it names.
func (c *CookieSigner) Verify(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionCookieIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("invalid session cookie: %w", err)
	}

	if claims.Subject == "" {
		return "", errors.New("invalid session cookie: missing subject")
	}
	return claims.Subject, nil
}

// Issue sets the session cookie on the response.
func (c *CookieSigner) Issue(w http.ResponseWriter, sessionID string, issuedAt time.Time) error {
	value, err := c.Sign(sessionID, issuedAt)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		// Lax so the cookie survives the top-level redirect back from HubSpot.
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// SessionID returns the session ID named by the request's session cookie.
func (c *CookieSigner) SessionID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", err
	}
	return c.Verify(cookie.Value)
}

// Clear removes the session cookie from the browser.
func (c *CookieSigner) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
