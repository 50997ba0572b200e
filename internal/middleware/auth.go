package middleware

import (
	"database/sql"
	"net/http"

	"github.com/amirulhm/storefront-golang/internal/auth"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// RequireAuth resolves the session cookie into an auth.Identity and stores
// it in the request context. The role is looked up in the users table on
// every request rather than cached in the cookie, so an admin promotion
// applied directly in the database is honored on the user's next request.
func RequireAuth(db *sql.DB, sessions *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessions.UserID(c.Request)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		var role string
		err := db.QueryRow("SELECT role FROM users WHERE id = ?", userID).Scan(&role)
		if err != nil {
			if err == sql.ErrNoRows {
				// Session refers to a deleted user; treat as unauthenticated.
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
				c.Abort()
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking session"})
			c.Abort()
			return
		}

		SetIdentity(c, auth.Identity{UserID: userID, Role: role})
		c.Next()
	}
}

// SetIdentity stores the resolved identity in the request context.
func SetIdentity(c *gin.Context, identity auth.Identity) {
	c.Set(identityKey, identity)
}

// RequireAdmin rejects callers whose resolved identity is not an admin.
// It must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}
		if !identity.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: Admins only"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity placed in the context by RequireAuth.
func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	raw, exists := c.Get(identityKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := raw.(auth.Identity)
	return identity, ok
}
