package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Session represents a logged-in browser session on the HTTP surface
type Session struct {
	ID        string
	UserID    string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionManager tracks active sessions and their cookies
type SessionManager struct {
	sessions      map[string]*Session
	mutex         sync.RWMutex
	duration      time.Duration
	cookieName    string
	secureCookies bool
}

// NewSessionManager creates a session manager with the given session
// lifetime and starts the expiry sweeper.
func NewSessionManager(duration time.Duration, secureCookies bool) *SessionManager {
	sm := &SessionManager{
		sessions:      make(map[string]*Session),
		duration:      duration,
		cookieName:    "vibrato_session",
		secureCookies: secureCookies,
	}

	go sm.sweepExpired()

	return sm
}

// Create starts a new session for the user
func (sm *SessionManager) Create(userID, email string) (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &Session{
		ID:        id,
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(sm.duration),
	}

	sm.mutex.Lock()
	sm.sessions[id] = session
	sm.mutex.Unlock()

	return session, nil
}

// Get retrieves a session by ID, dropping it if expired
func (sm *SessionManager) Get(id string) (*Session, bool) {
	sm.mutex.RLock()
	session, exists := sm.sessions[id]
	sm.mutex.RUnlock()

	if !exists {
		return nil, false
	}
	if time.Now().After(session.ExpiresAt) {
		sm.Delete(id)
		return nil, false
	}
	return session, true
}

// Delete removes a session
func (sm *SessionManager) Delete(id string) {
	sm.mutex.Lock()
	delete(sm.sessions, id)
	sm.mutex.Unlock()
}

// Refresh extends a session's expiration, reporting whether it was still
// valid
func (sm *SessionManager) Refresh(id string) bool {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	session, exists := sm.sessions[id]
	if !exists {
		return false
	}
	if time.Now().After(session.ExpiresAt) {
		delete(sm.sessions, id)
		return false
	}

	session.ExpiresAt = time.Now().Add(sm.duration)
	return true
}

// SetCookie writes the session cookie on the response
func (sm *SessionManager) SetCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    session.ID,
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   sm.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

// ClearCookie removes the session cookie
func (sm *SessionManager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   sm.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

// FromRequest extracts the session referenced by the request cookie
func (sm *SessionManager) FromRequest(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		return nil, false
	}
	return sm.Get(cookie.Value)
}

// sweepExpired periodically removes expired sessions
func (sm *SessionManager) sweepExpired() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		sm.mutex.Lock()
		for id, session := range sm.sessions {
			if now.After(session.ExpiresAt) {
				delete(sm.sessions, id)
			}
		}
		sm.mutex.Unlock()
	}
}

// newSessionID generates a cryptographically random session ID
func newSessionID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
