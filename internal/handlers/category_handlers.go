package handlers

import (
	"errors"
	"net/http"

	"github.com/amirulhm/storefront-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
)

// GetAllCategories is the handler for GET /api/categories.
func (h *Handlers) GetAllCategories(c *gin.Context) {
	rows, err := h.DB.Query("SELECT id, name FROM categories ORDER BY name")
	if err != nil {
		serverError(c, "categories: listing query failed", err)
		return
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			serverError(c, "categories: row scan failed", err)
			return
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		serverError(c, "categories: row iteration failed", err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

type CreateCategoryInput struct {
	Name string `json:"name" binding:"required"`
}

// CreateCategory is the handler for POST /api/categories (admin only).
func (h *Handlers) CreateCategory(c *gin.Context) {
	var input CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Exec("INSERT INTO categories (name) VALUES (?)", input.Name)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
			return
		}
		serverError(c, "categories: insert failed", err)
		return
	}

	category := models.Category{Name: input.Name}
	category.ID, err = result.LastInsertId()
	if err != nil {
		serverError(c, "categories: last insert id failed", err)
		return
	}

	c.JSON(http.StatusCreated, category)
}
