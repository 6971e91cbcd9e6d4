package oauth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/mcp-hubspot/pkg/logging"
)

// Session is a pending install: the PKCE verifier issued to one browser.
type Session struct {
	ID        string
	Verifier  string
	Challenge string
	CreatedAt time.Time
}

// SessionStore provides thread-safe storage for install sessions.
// Sessions expire after a fixed TTL and can be consumed only once.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ttl         time.Duration
	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewSessionStore creates a session store and starts its background cleanup.
// A non-positive ttl selects DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	ss := &SessionStore{
		sessions:    make(map[string]*Session),
		ttl:         ttl,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	go ss.cleanupLoop()

	return ss
}

// TTL returns the session lifetime.
func (ss *SessionStore) TTL() time.Duration {
	return ss.ttl
}

// Create stores a new session for the given verifier and challenge.
func (ss *SessionStore) Create(verifier, challenge string) *Session {
	session := &Session{
		ID:        uuid.NewString(),
		Verifier:  verifier,
		Challenge: challenge,
		CreatedAt: ss.now(),
	}

	ss.mu.Lock()
	ss.sessions[session.ID] = session
	ss.mu.Unlock()

	logging.Debug("OAuth", "Created install session=%s", logging.TruncateSessionID(session.ID))
	return session
}

// Consume removes the session and returns it if it existed and had not
// expired.
func (ss *SessionStore) Consume(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}

	ss.mu.Lock()
	session, exists := ss.sessions[id]
	delete(ss.sessions, id)
	ss.mu.Unlock()

	if !exists {
		logging.Debug("OAuth", "Session not found: session=%s", logging.TruncateSessionID(id))
		return nil, false
	}

	if ss.expired(session) {
		logging.Debug("OAuth", "Session expired: session=%s age=%v",
			logging.TruncateSessionID(id), ss.now().Sub(session.CreatedAt))
		return nil, false
	}

	return session, true
}

// Len returns the number of stored sessions, expired ones included.
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// Stop stops the background cleanup goroutine. It is safe to call more
// than once.
func (ss *SessionStore) Stop() {
	ss.stopOnce.Do(func() {
		close(ss.stopCleanup)
	})
}

func (ss *SessionStore) expired(session *Session) bool {
	return ss.now().Sub(session.CreatedAt) > ss.ttl
}

// cleanupLoop periodically removes expired sessions from the store.
func (ss *SessionStore) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ss.cleanup()
		case <-ss.stopCleanup:
			return
		}
	}
}

// cleanup removes all expired sessions from the store.
func (ss *SessionStore) cleanup() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	count := 0
	for id, session := range ss.sessions {
		if ss.expired(session) {
			delete(ss.sessions, id)
			count++
		}
	}

	if count > 0 {
		logging.Debug("OAuth", "Cleaned up %d expired sessions", count)
	}
}
