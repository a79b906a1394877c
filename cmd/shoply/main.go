package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shoply-dev/shoply/db"
	"github.com/shoply-dev/shoply/internal/auth"
	"github.com/shoply-dev/shoply/internal/router"
	"github.com/shoply-dev/shoply/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	if err := db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if os.Getenv("SEED_DB") == "true" {
		if err := db.SeedDatabase(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	}

	if err := storage.EnsureDirs(); err != nil {
		log.Fatalf("Failed to prepare upload directories: %v", err)
	}

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
