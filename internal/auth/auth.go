package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"sync"
	"time"
)

const (
	CookieName    = "excovote_session"
	SessionExpiry = 24 * time.Hour
)

// Admin is one committee login. Super admins additionally see the
// cross-position ranking and can export or manage the roster.
type Admin struct {
	Username     string
	PasswordHash string // hex sha256 of the password
	Super        bool
}

// Session is an authenticated admin session
type Session struct {
	Username string
	Super    bool
	Expiry   time.Time
}

// Auth handles admin authentication
type Auth struct {
	admins   map[string]Admin
	sessions map[string]Session
	mu       sync.RWMutex
}

// New creates a new Auth instance with the given admin accounts
func New(admins []Admin) *Auth {
	byName := make(map[string]Admin, len(admins))
	for _, a := range admins {
		byName[a.Username] = a
	}
	return &Auth{
		admins:   byName,
		sessions: make(map[string]Session),
	}
}

// HashPassword returns the hex sha256 digest used in admin config
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Login validates the credentials and returns a session token if valid
func (a *Auth) Login(username, password string) (string, bool) {
	admin, ok := a.admins[username]
	if !ok {
		// Burn a hash anyway so unknown usernames take as long as
		// wrong passwords
		HashPassword(password)
		return "", false
	}

	hash := HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(admin.PasswordHash)) != 1 {
		return "", false
	}

	token := generateToken()
	a.mu.Lock()
	a.sessions[token] = Session{
		Username: admin.Username,
		Super:    admin.Super,
		Expiry:   time.Now().Add(SessionExpiry),
	}
	a.mu.Unlock()

	return token, true
}

// Logout invalidates a session token
func (a *Auth) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// ValidateSession returns the session for a token if it is still live
func (a *Auth) ValidateSession(token string) (Session, bool) {
	a.mu.RLock()
	session, exists := a.sessions[token]
	a.mu.RUnlock()

	if !exists {
		return Session{}, false
	}

	if time.Now().After(session.Expiry) {
		a.mu.Lock()
		delete(a.sessions, token)
		a.mu.Unlock()
		return Session{}, false
	}

	return session, true
}

// SessionFromRequest extracts and validates the session from a request
func (a *Auth) SessionFromRequest(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Session{}, false
	}
	return a.ValidateSession(cookie.Value)
}

// RequireAuthAPI middleware for admin API endpoints (returns 401)
func (a *Auth) RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := a.SessionFromRequest(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - please log in"}`))
	})
}

// RequireSuperAPI middleware for super-admin API endpoints. Logged-in
// admins without the super flag get 403, everyone else 401.
func (a *Auth) RequireSuperAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := a.SessionFromRequest(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - please log in"}`))
			return
		}
		if !session.Super {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"code":"ACCESS_DENIED","error":"Super admin access required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetSessionCookie sets the session cookie on the response
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionExpiry.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// generateToken creates a random session token
func generateToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
