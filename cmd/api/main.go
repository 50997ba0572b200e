package main

import (
	"log"
	"os"

	"github.com/amirulhm/storefront-golang/internal/auth"
	"github.com/amirulhm/storefront-golang/internal/database"
	"github.com/amirulhm/storefront-golang/internal/handlers"
	"github.com/amirulhm/storefront-golang/internal/routes"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not load .env file. Relying on system environment variables.")
	}

	db, err := database.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Println("WARNING: SESSION_SECRET not set, using development default")
		secret = "dev-only-session-secret"
	}

	app := &handlers.Handlers{
		DB:       db,
		Sessions: auth.NewSessionManager(secret),
	}

	router := routes.SetupRouter(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting Storefront API server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
