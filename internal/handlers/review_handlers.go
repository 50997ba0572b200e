package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amirulhm/storefront-golang/internal/middleware"
	"github.com/amirulhm/storefront-golang/internal/models"
	"github.com/gin-gonic/gin"
)

type AddReviewInput struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

// AddReview is the handler for POST /api/reviews. The rating bound (1..5)
// is enforced before any write.
func (h *Handlers) AddReview(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var input AddReviewInput
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
		serverError(c, "reviews: product check failed", err)
		return
	}

	review := models.Review{
		UserID:    identity.UserID,
		ProductID: input.ProductID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now(),
	}

	result, err := h.DB.Exec(`
		INSERT INTO reviews (user_id, product_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		review.UserID, review.ProductID, review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		serverError(c, "reviews: insert failed", err)
		return
	}
	review.ID, err = result.LastInsertId()
	if err != nil {
		serverError(c, "reviews: last insert id failed", err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetProductReviews is the handler for GET /api/reviews/:productId.
// Reviews come back newest first with the reviewer's display handle.
func (h *Handlers) GetProductReviews(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT r.id, r.user_id, r.product_id, r.rating, r.comment, r.created_at, u.email
		FROM reviews r
		JOIN users u ON r.user_id = u.id
		WHERE r.product_id = ?
		ORDER BY r.created_at DESC`,
		productID,
	)
	if err != nil {
		serverError(c, "reviews: listing query failed", err)
		return
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var r models.Review
		var email string
		if err := rows.Scan(&r.ID, &r.UserID, &r.ProductID, &r.Rating, &r.Comment, &r.CreatedAt, &email); err != nil {
			serverError(c, "reviews: row scan failed", err)
			return
		}
		// Public display handle: the email's local part.
		r.Reviewer, _, _ = strings.Cut(email, "@")
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		serverError(c, "reviews: row iteration failed", err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}
