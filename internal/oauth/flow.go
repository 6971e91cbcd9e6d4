package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"github.com/giantswarm/mcp-hubspot/pkg/logging"
	pkgstrings "github.com/giantswarm/mcp-hubspot/pkg/strings"
)

// Flow runs the PKCE install flow against HubSpot.
type Flow struct {
	config     Config
	oauth2     *oauth2.Config
	sessions   *SessionStore
	tokens     *TokenHolder
	httpClient *http.Client
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithHTTPClient sets the HTTP client used for the token exchange.
func WithHTTPClient(client *http.Client) FlowOption {
	return func(f *Flow) {
		f.httpClient = client
	}
}

// NewFlow creates an install flow that stores sessions in sessions and the
// obtained access token in tokens.
func NewFlow(cfg Config, sessions *SessionStore, tokens *TokenHolder, opts ...FlowOption) *Flow {
	f := &Flow{
		config: cfg,
		oauth2: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizationEndpoint(),
				TokenURL:  cfg.TokenEndpoint(),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		sessions: sessions,
		tokens:   tokens,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Sessions returns the flow's session store.
func (f *Flow) Sessions() *SessionStore {
	return f.sessions
}

// BeginInstall creates a new session holding a fresh PKCE verifier and
// returns the authorization URL the browser must visit.
func (f *Flow) BeginInstall(ctx context.Context) (*InstallRequest, error) {
	pkce, err := GeneratePKCE()
	if err != nil {
		return nil, err
	}

	authURL := f.oauth2.AuthCodeURL("",
		oauth2.SetAuthURLParam("code_challenge", pkce.CodeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", pkce.CodeChallengeMethod),
	)

	// The session keeps the challenge exactly as sent.
	sent, err := sentChallenge(authURL)
	if err != nil {
		return nil, err
	}
	session := f.sessions.Create(pkce.CodeVerifier, sent)

	logging.Audit(logging.AuditEvent{
		Action:    "oauth_install",
		Outcome:   "started",
		SessionID: logging.TruncateSessionID(session.ID),
		Target:    f.oauth2.Endpoint.AuthURL,
	})

	return &InstallRequest{
		SessionID: session.ID,
		AuthURL:   authURL,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.CreatedAt.Add(f.sessions.TTL()),
	}, nil
}

// sentChallenge returns the code_challenge carried by an authorization URL.
func sentChallenge(authURL string) (string, error) {
	u, err := url.Parse(authURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse authorization URL: %w", err)
	}
	challenge := u.Query().Get("code_challenge")
	if challenge == "" {
		return "", fmt.Errorf("authorization URL carries no code_challenge")
	}
	return challenge, nil
}

// CompleteCallback exchanges code for an access token using the verifier of
// the named session. The session is consumed whether or not the exchange
// succeeds. On success the token replaces the one in the TokenHolder.
func (f *Flow) CompleteCallback(ctx context.Context, code, sessionID string) error {
	if code == "" {
		return &MissingCodeError{}
	}

	session, ok := f.sessions.Consume(sessionID)
	if !ok {
		f.auditCallback(sessionID, "rejected", "no pending session")
		return &SessionExpiredError{}
	}

	if !VerifyChallenge(session.Verifier, session.Challenge) {
		f.auditCallback(sessionID, "rejected", "challenge mismatch")
		return &SessionExpiredError{Reason: "challenge mismatch"}
	}

	if f.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
	}

	token, err := f.oauth2.Exchange(ctx, code, oauth2.VerifierOption(session.Verifier))
	if err != nil {
		failed := newExchangeError(err)
		logging.Error("OAuth", err, "Token exchange failed for session=%s", logging.TruncateSessionID(sessionID))
		f.auditCallback(sessionID, "failure", fmt.Sprintf("status=%d", failed.StatusCode))
		return failed
	}

	f.tokens.Set(token.AccessToken)
	f.auditCallback(sessionID, "success", "")
	return nil
}

// AbortCallback handles a callback in which HubSpot reported an error
// instead of a code. The named session, if any, is discarded.
func (f *Flow) AbortCallback(sessionID, errorCode, description string) error {
	f.sessions.Consume(sessionID)
	f.auditCallback(sessionID, "denied", pkgstrings.Truncate(errorCode, pkgstrings.DefaultDescriptionMaxLen))
	return &AuthorizationFailedError{
		ErrorCode: errorCode,
		Payload:   description,
	}
}

func (f *Flow) auditCallback(sessionID, outcome, details string) {
	logging.Audit(logging.AuditEvent{
		Action:    "oauth_callback",
		Outcome:   outcome,
		SessionID: logging.TruncateSessionID(sessionID),
		Target:    f.oauth2.Endpoint.TokenURL,
		Details:   details,
	})
}
