package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amirulhm/storefront-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

// productListColumns is the SELECT list shared by the listing and detail
// queries: product row + category name + per-product review aggregate.
const productListColumns = `
	SELECT
		p.id, p.name, p.slug, p.description, p.price, p.stock, p.image_url,
		p.category_id, c.name AS category_name,
		COALESCE(AVG(r.rating), 0) AS avg_rating,
		COUNT(r.id) AS review_count,
		p.created_at
	FROM products p
	LEFT JOIN categories c ON p.category_id = c.id
	LEFT JOIN reviews r ON r.product_id = p.id`

// productSortColumns is the allow-list for the sort_by parameter. Anything
// not in this map falls back to the default sort; user input is never
// interpolated into the query text.
var productSortColumns = map[string]string{
	"price":      "p.price",
	"created_at": "p.created_at",
	"name":       "p.name",
	"avg_rating": "avg_rating",
}

// ProductListFilters holds the parsed, validated listing parameters.
type ProductListFilters struct {
	CategoryID *int64
	MaxPrice   *decimal.Decimal
	Search     string
	SortBy     string
	Order      string
	Limit      int
	Offset     int
}

// buildProductListQuery composes the catalog listing query. All filter
// values are bound as parameters; only allow-listed column identifiers
// reach the query text.
func buildProductListQuery(f ProductListFilters) (string, []interface{}) {
	var b strings.Builder
	var args []interface{}

	b.WriteString(productListColumns)

	var conds []string
	if f.CategoryID != nil {
		conds = append(conds, "p.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.MaxPrice != nil {
		conds = append(conds, "p.price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.Search != "" {
		conds = append(conds, "(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)")
		term := "%" + strings.ToLower(f.Search) + "%"
		args = append(args, term, term)
	}
	if len(conds) > 0 {
		b.WriteString("\n\tWHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	b.WriteString("\n\tGROUP BY p.id, c.name")

	sortCol, ok := productSortColumns[f.SortBy]
	if !ok {
		sortCol = "p.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.Order, "asc") {
		dir = "ASC"
	}
	b.WriteString("\n\tORDER BY " + sortCol + " " + dir)

	b.WriteString("\n\tLIMIT ? OFFSET ?")
	args = append(args, f.Limit, f.Offset)

	return b.String(), args
}

// parseProductListFilters reads the listing parameters off the query
// string. Malformed numeric values are reported as an error; unknown sort
// keys are silently normalized by the builder instead.
func parseProductListFilters(c *gin.Context) (ProductListFilters, error) {
	f := ProductListFilters{
		Search: c.Query("search"),
		SortBy: c.Query("sort_by"),
		Order:  c.Query("order"),
		Limit:  20,
	}

	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, errors.New("invalid category_id")
		}
		f.CategoryID = &id
	}
	if raw := c.Query("max_price"); raw != "" {
		maxPrice, err := decimal.NewFromString(raw)
		if err != nil {
			return f, errors.New("invalid max_price")
		}
		f.MaxPrice = &maxPrice
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return f, errors.New("invalid limit")
		}
		if limit > 100 {
			limit = 100
		}
		f.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return f, errors.New("invalid offset")
		}
		f.Offset = offset
	}

	return f, nil
}

func scanProduct(scanner interface{ Scan(...interface{}) error }) (models.Product, error) {
	var p models.Product
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock,
		&p.ImageURL, &p.CategoryID, &p.CategoryName,
		&p.AvgRating, &p.ReviewCount, &p.CreatedAt,
	)
	return p, err
}

// ListProducts is the handler for GET /api/products.
//
// Pagination is plain limit/offset: concurrent inserts can make a page skip
// or repeat a row. Accepted for a single-node catalog of this size.
func (h *Handlers) ListProducts(c *gin.Context) {
	filters, err := parseProductListFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query, args := buildProductListQuery(filters)
	rows, err := h.DB.Query(query, args...)
	if err != nil {
		serverError(c, "products: listing query failed", err)
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			serverError(c, "products: row scan failed", err)
			return
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		serverError(c, "products: row iteration failed", err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct is the handler for GET /api/products/:id.
func (h *Handlers) GetProduct(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	query := productListColumns + "\n\tWHERE p.id = ?\n\tGROUP BY p.id, c.name"
	p, err := scanProduct(h.DB.QueryRow(query, productID))
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		serverError(c, "products: detail query failed", err)
		return
	}

	c.JSON(http.StatusOK, p)
}

type CreateProductInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" binding:"gte=0"`
	ImageURL    *string         `json:"image_url"`
	CategoryID  *int64          `json:"category_id"`
}

// CreateProduct is the handler for POST /api/products (admin only).
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
		return
	}

	product := models.Product{
		Name:        input.Name,
		Slug:        slug.Make(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		ImageURL:    input.ImageURL,
		CategoryID:  input.CategoryID,
		CreatedAt:   time.Now(),
	}

	result, err := h.DB.Exec(`
		INSERT INTO products (name, slug, description, price, stock, image_url, category_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.Name, product.Slug, product.Description, product.Price,
		product.Stock, product.ImageURL, product.CategoryID, product.CreatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1452 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
			return
		}
		serverError(c, "products: insert failed", err)
		return
	}
	product.ID, err = result.LastInsertId()
	if err != nil {
		serverError(c, "products: last insert id failed", err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

type UpdateProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock" binding:"omitempty,gte=0"`
	ImageURL    *string          `json:"image_url"`
	CategoryID  *int64           `json:"category_id"`
}

// UpdateProduct is the handler for PUT /api/products/:id (admin only).
// Absent fields keep their current values.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Price != nil && input.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
		return
	}

	var sets []string
	var args []interface{}
	if input.Name != nil {
		sets = append(sets, "name = ?", "slug = ?")
		args = append(args, *input.Name, slug.Make(*input.Name))
	}
	if input.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *input.Description)
	}
	if input.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *input.Price)
	}
	if input.Stock != nil {
		sets = append(sets, "stock = ?")
		args = append(args, *input.Stock)
	}
	if input.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *input.ImageURL)
	}
	if input.CategoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *input.CategoryID)
	}
	if len(sets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	var existingID int64
	err := h.DB.QueryRow("SELECT id FROM products WHERE id = ?", productID).Scan(&existingID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		serverError(c, "products: existence check failed", err)
		return
	}

	args = append(args, productID)
	query := "UPDATE products SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := h.DB.Exec(query, args...); err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1452 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
			return
		}
		serverError(c, "products: update failed", err)
		return
	}

	detailQuery := productListColumns + "\n\tWHERE p.id = ?\n\tGROUP BY p.id, c.name"
	p, err := scanProduct(h.DB.QueryRow(detailQuery, productID))
	if err != nil {
		serverError(c, "products: reload after update failed", err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// DeleteProduct is the handler for DELETE /api/products/:id (admin only).
func (h *Handlers) DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	result, err := h.DB.Exec("DELETE FROM products WHERE id = ?", productID)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1451 {
			c.JSON(http.StatusConflict, gin.H{"error": "Product is referenced by existing orders"})
			return
		}
		serverError(c, "products: delete failed", err)
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		serverError(c, "products: affected rows check failed", err)
		return
	}
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
