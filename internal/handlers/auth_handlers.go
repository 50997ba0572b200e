package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/amirulhm/storefront-golang/internal/middleware"
	"github.com/amirulhm/storefront-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register is the handler for POST /api/auth/register.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingID int64
	err := h.DB.QueryRow("SELECT id FROM users WHERE email = ?", input.Email).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}
	if err != sql.ErrNoRows {
		serverError(c, "register: email lookup failed", err)
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		serverError(c, "register: password hashing failed", err)
		return
	}

	user := models.User{
		Email:     input.Email,
		Role:      "user",
		CreatedAt: time.Now(),
	}

	result, err := h.DB.Exec(
		"INSERT INTO users (email, password_hash, role, created_at) VALUES (?, ?, ?, ?)",
		user.Email, password.Hash, user.Role, user.CreatedAt,
	)
	if err != nil {
		// The unique index is the source of truth; the pre-check above can
		// still lose a race to a concurrent registration.
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
			return
		}
		serverError(c, "register: insert failed", err)
		return
	}
	user.ID, err = result.LastInsertId()
	if err != nil {
		serverError(c, "register: last insert id failed", err)
		return
	}

	if err := h.Sessions.SignIn(c.Writer, c.Request, user.ID); err != nil {
		serverError(c, "register: session save failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"user":    user,
	})
}

// Login is the handler for POST /api/auth/login. Unknown email and wrong
// password are indistinguishable to the caller.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.QueryRow(
		"SELECT id, email, password_hash, role, created_at FROM users WHERE email = ?",
		input.Email,
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
			return
		}
		serverError(c, "login: user lookup failed", err)
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	matches, err := password.Matches(input.Password)
	if err != nil {
		serverError(c, "login: password check failed", err)
		return
	}
	if !matches {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := h.Sessions.SignIn(c.Writer, c.Request, user.ID); err != nil {
		serverError(c, "login: session save failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
	})
}

// Logout is the handler for POST /api/auth/logout.
func (h *Handlers) Logout(c *gin.Context) {
	if err := h.Sessions.SignOut(c.Writer, c.Request); err != nil {
		serverError(c, "logout: session clear failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me is the handler for GET /api/auth/me.
func (h *Handlers) Me(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var user models.User
	err := h.DB.QueryRow(
		"SELECT id, email, role, created_at FROM users WHERE id = ?",
		identity.UserID,
	).Scan(&user.ID, &user.Email, &user.Role, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		serverError(c, "me: user lookup failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
