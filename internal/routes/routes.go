package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/amirulhm/storefront-golang/internal/handlers"
	"github.com/amirulhm/storefront-golang/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// corsConfig builds the CORS policy. Cookie-based auth requires
// AllowCredentials, which in turn requires explicit origins.
func corsConfig() cors.Config {
	origins := []string{"http://localhost:5173", "http://localhost:5174"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(corsConfig()))

	api := router.Group("/api")
	{
		api.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Storefront API"})
		})

		// --- Public Routes ---
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)

		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/categories", h.GetAllCategories)
		api.GET("/reviews/:productId", h.GetProductReviews)

		// --- Protected Routes (Login Required) ---
		authed := api.Group("/")
		authed.Use(middleware.RequireAuth(h.DB, h.Sessions))
		{
			authed.GET("/auth/me", h.Me)

			authed.POST("/orders", h.CreateOrder)
			authed.GET("/orders/my-orders", h.GetMyOrders)

			authed.POST("/reviews", h.AddReview)

			authed.GET("/wishlist", h.GetWishlist)
			authed.POST("/wishlist", h.AddToWishlist)
			authed.DELETE("/wishlist/:productId", h.RemoveFromWishlist)
		}

		// --- Admin-Only Routes ---
		admin := api.Group("/")
		admin.Use(middleware.RequireAuth(h.DB, h.Sessions))
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)

			admin.POST("/categories", h.CreateCategory)

			admin.GET("/orders", h.GetAllOrders)
		}
	}

	return router
}
