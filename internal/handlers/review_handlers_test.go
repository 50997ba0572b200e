package handlers

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirulhm/storefront-golang/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReviewRejectsOutOfRangeRating(t *testing.T) {
	router, mock := newAuthedTestRouter(t, auth.Identity{UserID: 5, Role: "user"})

	for _, body := range []string{
		`{"product_id": 1, "rating": 6, "comment": "too good"}`,
		`{"product_id": 1, "rating": 0, "comment": "missing"}`,
		`{"product_id": 1, "rating": -1, "comment": "bad"}`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	// Rejected before any write.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddReviewAcceptsBoundaryRating(t *testing.T) {
	router, mock := newAuthedTestRouter(t, auth.Identity{UserID: 5, Role: "user"})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM products WHERE id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(int64(5), int64(1), 5, "excellent", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reviews",
		strings.NewReader(`{"product_id": 1, "rating": 5, "comment": "excellent"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductReviewsNewestFirstWithReviewerHandle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := &Handlers{DB: db}
	router := gin.New()
	router.GET("/api/reviews/:productId", h.GetProductReviews)

	mock.ExpectQuery("FROM reviews r").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "product_id", "rating", "comment", "created_at", "email",
		}).
			AddRow(2, 5, 1, 5, "great", time.Now(), "alice@example.com").
			AddRow(1, 6, 1, 4, "fine", time.Now().Add(-time.Hour), "bob@example.com"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reviews/1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Contains(t, body, `"reviewer":"alice"`)
	assert.Contains(t, body, `"reviewer":"bob"`)
	assert.NotContains(t, body, "example.com")
	assert.Less(t, strings.Index(body, "alice"), strings.Index(body, "bob"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
