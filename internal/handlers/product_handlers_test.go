package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirulhm/storefront-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productListRows = []string{
	"id", "name", "slug", "description", "price", "stock", "image_url",
	"category_id", "category_name", "avg_rating", "review_count", "created_at",
}

func TestBuildProductListQueryDefaults(t *testing.T) {
	query, args := buildProductListQuery(ProductListFilters{Limit: 20})

	assert.Contains(t, query, "ORDER BY p.created_at DESC")
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "COALESCE(AVG(r.rating), 0)")
	assert.Contains(t, query, "LIMIT ? OFFSET ?")
	assert.Equal(t, []interface{}{20, 0}, args)
}

func TestBuildProductListQueryUnknownSortFallsBack(t *testing.T) {
	// An attacker-controlled sort key must never reach the query text.
	query, _ := buildProductListQuery(ProductListFilters{
		SortBy: "price; DROP TABLE products",
		Order:  "asc",
		Limit:  20,
	})

	assert.Contains(t, query, "ORDER BY p.created_at ASC")
	assert.NotContains(t, query, "DROP TABLE")
}

func TestBuildProductListQuerySortAllowList(t *testing.T) {
	for sortBy, column := range map[string]string{
		"price":      "p.price",
		"created_at": "p.created_at",
		"name":       "p.name",
		"avg_rating": "avg_rating",
	} {
		query, _ := buildProductListQuery(ProductListFilters{SortBy: sortBy, Order: "asc", Limit: 20})
		assert.Contains(t, query, "ORDER BY "+column+" ASC", "sort_by=%s", sortBy)
	}
}

func TestBuildProductListQueryConjunctiveFilters(t *testing.T) {
	categoryID := int64(3)
	maxPrice := decimal.RequireFromString("100")

	query, args := buildProductListQuery(ProductListFilters{
		CategoryID: &categoryID,
		MaxPrice:   &maxPrice,
		Search:     "Lamp",
		Limit:      10,
		Offset:     5,
	})

	assert.Contains(t, query, "p.category_id = ? AND p.price <= ? AND (LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)")
	require.Len(t, args, 6)
	assert.Equal(t, int64(3), args[0])
	assert.Equal(t, maxPrice, args[1])
	assert.Equal(t, "%lamp%", args[2])
	assert.Equal(t, "%lamp%", args[3])
	assert.Equal(t, 10, args[4])
	assert.Equal(t, 5, args[5])
}

func newProductTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := &Handlers{DB: db}
	router := gin.New()
	router.GET("/api/products", h.ListProducts)
	router.GET("/api/products/:id", h.GetProduct)
	return router, mock
}

func TestListProductsReturnsAggregatedRows(t *testing.T) {
	router, mock := newProductTestRouter(t)

	now := time.Now()
	mock.ExpectQuery("FROM products p").
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows(productListRows).
			AddRow(1, "Lamp", "lamp", "A lamp", "19.99", 4, nil, nil, nil, 4.5, 2, now).
			AddRow(2, "Desk", "desk", "A desk", "120.00", 1, nil, nil, nil, 0.0, 0, now))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var products []models.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 2)
	assert.Equal(t, 4.5, products[0].AvgRating)
	assert.Equal(t, 2, products[0].ReviewCount)
	assert.Equal(t, 0.0, products[1].AvgRating)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("19.99")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProductsBindsFilterArguments(t *testing.T) {
	router, mock := newProductTestRouter(t)

	mock.ExpectQuery("FROM products p").
		WithArgs(int64(2), sqlmock.AnyArg(), "%lamp%", "%lamp%", 5, 10).
		WillReturnRows(sqlmock.NewRows(productListRows))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/products?category_id=2&max_price=100&search=Lamp&sort_by=price&order=asc&limit=5&offset=10", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProductsRejectsMalformedNumbers(t *testing.T) {
	router, _ := newProductTestRouter(t)

	for _, target := range []string{
		"/api/products?category_id=abc",
		"/api/products?max_price=cheap",
		"/api/products?limit=0",
		"/api/products?offset=-1",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestGetProductNotFound(t *testing.T) {
	router, mock := newProductTestRouter(t)

	mock.ExpectQuery("FROM products p").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(productListRows))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products/99", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
