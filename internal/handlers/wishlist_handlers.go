package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/amirulhm/storefront-golang/internal/middleware"
	"github.com/amirulhm/storefront-golang/internal/models"
	"github.com/gin-gonic/gin"
)

type AddToWishlistInput struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

// AddToWishlist is the handler for POST /api/wishlist. The insert is
// idempotent on the (user, product) unique index: adding an item that is
// already saved is a no-op success, not a conflict.
func (h *Handlers) AddToWishlist(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var input AddToWishlistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var productID int64
	err := h.DB.QueryRow("SELECT id FROM products WHERE id = ?", input.ProductID).Scan(&productID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		serverError(c, "wishlist: product check failed", err)
		return
	}

	entry := models.WishlistEntry{
		UserID:    identity.UserID,
		ProductID: input.ProductID,
		CreatedAt: time.Now(),
	}

	result, err := h.DB.Exec(`
		INSERT IGNORE INTO wishlist (user_id, product_id, created_at)
		VALUES (?, ?, ?)`,
		entry.UserID, entry.ProductID, entry.CreatedAt,
	)
	if err != nil {
		serverError(c, "wishlist: insert failed", err)
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		serverError(c, "wishlist: affected rows check failed", err)
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Item already in wishlist"})
		return
	}

	entry.ID, err = result.LastInsertId()
	if err != nil {
		serverError(c, "wishlist: last insert id failed", err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// GetWishlist is the handler for GET /api/wishlist.
func (h *Handlers) GetWishlist(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT w.id, w.user_id, w.product_id, w.created_at, p.name, p.price, p.image_url
		FROM wishlist w
		JOIN products p ON w.product_id = p.id
		WHERE w.user_id = ?
		ORDER BY w.created_at DESC`,
		identity.UserID,
	)
	if err != nil {
		serverError(c, "wishlist: listing query failed", err)
		return
	}
	defer rows.Close()

	entries := []models.WishlistEntry{}
	for rows.Next() {
		var e models.WishlistEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ProductID, &e.CreatedAt, &e.ProductName, &e.ProductPrice, &e.ProductImage); err != nil {
			serverError(c, "wishlist: row scan failed", err)
			return
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		serverError(c, "wishlist: row iteration failed", err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// RemoveFromWishlist is the handler for DELETE /api/wishlist/:productId.
// Removing an item that is not saved is not an error.
func (h *Handlers) RemoveFromWishlist(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	if _, err := h.DB.Exec(
		"DELETE FROM wishlist WHERE user_id = ? AND product_id = ?",
		identity.UserID, c.Param("productId"),
	); err != nil {
		serverError(c, "wishlist: delete failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist"})
}
