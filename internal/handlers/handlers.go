package handlers

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/amirulhm/storefront-golang/internal/auth"
	"github.com/gin-gonic/gin"
)

// Handlers holds the dependencies shared by every HTTP handler.
type Handlers struct {
	DB       *sql.DB
	Sessions *auth.SessionManager
}

// serverError logs the full storage error server-side and returns a generic
// message to the caller. Storage detail never reaches the response body.
func serverError(c *gin.Context, action string, err error) {
	log.Printf("%s: %v", action, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
}
