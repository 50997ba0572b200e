package auth

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "storefront_session"

// Identity is the request-scoped caller identity resolved by the auth
// middleware. Handlers scope every write to Identity.UserID; they never
// trust a client-supplied user id.
type Identity struct {
	UserID int64
	Role   string
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == "admin"
}

// SessionManager wraps the cookie session store. The cookie only carries
// the user id; the role is re-read from the database on every request so
// that out-of-band role changes take effect without a new login.
type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager builds a cookie-backed session store from the signing
// secret.
func NewSessionManager(secret string) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   60 * 60 * 24, // 1 day
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// SignIn stores the user id in a fresh session cookie.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID int64) error {
	session, _ := m.store.Get(r, sessionName)
	session.Values["userID"] = userID
	return session.Save(r, w)
}

// SignOut expires the session cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, sessionName)
	delete(session.Values, "userID")
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// UserID extracts the authenticated user id from the request's session
// cookie. The second return value is false when there is no valid session.
func (m *SessionManager) UserID(r *http.Request) (int64, bool) {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return 0, false
	}
	userID, ok := session.Values["userID"].(int64)
	return userID, ok
}
