package oauth

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/giantswarm/mcp-hubspot/pkg/logging"
	pkgstrings "github.com/giantswarm/mcp-hubspot/pkg/strings"
)

// Handler serves the /install and /callback endpoints.
type Handler struct {
	flow    *Flow
	cookies *CookieSigner
	portal  string
}

// NewHandler creates the HTTP handler for the install flow.
func NewHandler(flow *Flow, cookies *CookieSigner) *Handler {
	return &Handler{
		flow:    flow,
		cookies: cookies,
		portal:  flow.config.PortalID,
	}
}

// HandleInstall starts an install: it creates a session, sets the signed
// session cookie and redirects the browser to HubSpot.
func (h *Handler) HandleInstall(w http.ResponseWriter, r *http.Request) {
	install, err := h.flow.BeginInstall(r.Context())
	if err != nil {
		logging.Error("OAuth", err, "Failed to start install")
		h.renderPage(w, http.StatusInternalServerError, pageData{
			Title:   "Install Failed",
			Message: "Could not start the HubSpot authorization. Please try again.",
		})
		return
	}

	if err := h.cookies.Issue(w, install.SessionID, install.CreatedAt); err != nil {
		logging.Error("OAuth", err, "Failed to issue session cookie")
		h.flow.sessions.Consume(install.SessionID)
		h.renderPage(w, http.StatusInternalServerError, pageData{
			Title:   "Install Failed",
			Message: "Could not start the HubSpot authorization. Please try again.",
		})
		return
	}

	http.Redirect(w, r, install.AuthURL, http.StatusFound)
}

// HandleCallback completes an install with the code HubSpot sent back.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	sessionID, cookieErr := h.cookies.SessionID(r)
	if cookieErr != nil {
		logging.Debug("OAuth", "Callback without valid session cookie: %v", cookieErr)
	}

	var err error
	if errorCode := query.Get("error"); errorCode != "" {
		err = h.flow.AbortCallback(sessionID, errorCode, query.Get("error_description"))
	} else {
		err = h.flow.CompleteCallback(r.Context(), query.Get("code"), sessionID)
	}

	// A missing code leaves the session pending, every other outcome
	// consumed it.
	if !IsMissingCode(err) && cookieErr == nil {
		h.cookies.Clear(w)
	}

	if err == nil {
		h.renderPage(w, http.StatusOK, pageData{
			Success: true,
			Title:   "Authorization Successful",
			Message: "The HubSpot MCP server is now authorized. You can close this window.",
		})
		return
	}

	h.renderError(w, err)
}

// renderError maps flow errors to status codes and messages. Upstream
// payloads are not echoed to the browser.
func (h *Handler) renderError(w http.ResponseWriter, err error) {
	switch {
	case IsMissingCode(err):
		h.renderPage(w, http.StatusBadRequest, pageData{
			Title:   "Authorization Failed",
			Message: "No authorization code provided.",
		})
	case IsSessionExpired(err):
		h.renderPage(w, http.StatusBadRequest, pageData{
			Title:   "Authorization Failed",
			Message: "Session expired or invalid. Please start again at /install.",
		})
	default:
		failed, ok := IsAuthorizationFailed(err)
		if ok && failed.StatusCode == 0 && failed.ErrorCode != "" && failed.Err == nil {
			h.renderPage(w, http.StatusBadRequest, pageData{
				Title:   "Authorization Failed",
				Message: "Authorization was denied or failed. Please start again at /install.",
				Detail:  pkgstrings.Truncate(failed.ErrorCode, pkgstrings.DefaultDescriptionMaxLen),
			})
			return
		}

		detail := ""
		if ok && failed.StatusCode != 0 {
			detail = fmt.Sprintf("HubSpot responded with status %d", failed.StatusCode)
		}
		h.renderPage(w, http.StatusInternalServerError, pageData{
			Title:   "Authorization Failed",
			Message: "Failed to exchange the authorization code for an access token.",
			Detail:  detail,
		})
	}
}

// setSecurityHeaders sets recommended security headers for HTML responses.
func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
}

func (h *Handler) renderPage(w http.ResponseWriter, status int, data pageData) {
	data.Portal = h.portal
	data.Timestamp = time.Now()

	var buf bytes.Buffer
	if err := resultPage.Execute(&buf, data); err != nil {
		logging.Error("OAuth", err, "Failed to render result page")
		http.Error(w, data.Message, status)
		return
	}

	setSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
