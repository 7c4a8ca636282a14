package auth

import (
	"context"
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

const SessionName = "notekeeper-session"

const (
	keyUser   = "user"
	keyUserID = "user_id"
)

// Identity is what the session cookie remembers about the logged-in user.
type Identity struct {
	UserID int64
	Name   string
}

// Manager issues signed and encrypted cookie sessions.
type Manager struct {
	Store *sessions.CookieStore
}

func NewManager(sessionKey string, secure bool) *Manager {
	// Derive two 32-byte keys from the session key
	// Auth key for signing (HMAC)
	authKey := sha256.Sum256([]byte(sessionKey + "auth"))
	// Encryption key for content encryption (AES)
	encKey := sha256.Sum256([]byte(sessionKey + "encryption"))

	store := sessions.NewCookieStore(authKey[:], encKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{Store: store}
}

// Session is the per-request view of the client's cookie.
type Session struct {
	w   http.ResponseWriter
	r   *http.Request
	raw *sessions.Session
}

// Session loads the request's cookie. A missing or tampered cookie yields an
// empty session.
func (m *Manager) Session(w http.ResponseWriter, r *http.Request) *Session {
	raw, _ := m.Store.Get(r, SessionName)
	return &Session{w: w, r: r, raw: raw}
}

func (s *Session) Get() (Identity, bool) {
	id, ok := s.raw.Values[keyUserID].(int64)
	if !ok {
		return Identity{}, false
	}
	name, _ := s.raw.Values[keyUser].(string)
	return Identity{UserID: id, Name: name}, true
}

func (s *Session) Set(id Identity) error {
	s.raw.Values[keyUser] = id.Name
	s.raw.Values[keyUserID] = id.UserID
	return s.raw.Save(s.r, s.w)
}

func (s *Session) Clear() error {
	delete(s.raw.Values, keyUser)
	delete(s.raw.Values, keyUserID)
	s.raw.Options.MaxAge = -1
	return s.raw.Save(s.r, s.w)
}

type contextKey struct{}

// Middleware puts the request's Session on its context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.Session(w, r)
		ctx := context.WithValue(r.Context(), contextKey{}, sess)
		sess.r = r.WithContext(ctx)
		next.ServeHTTP(w, sess.r)
	})
}

// FromContext returns the Session placed by Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(contextKey{}).(*Session)
	return sess
}

// CurrentUser is a shortcut for FromContext(ctx).Get().
func CurrentUser(ctx context.Context) (Identity, bool) {
	sess := FromContext(ctx)
	if sess == nil {
		return Identity{}, false
	}
	return sess.Get()
}
