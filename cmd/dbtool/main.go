package main

import (
	"context"
	"database/sql"
	"log"
	"route-planner-service/internal/adapters/repositories"
	"route-planner-service/internal/config"
	"route-planner-service/internal/platform/db"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	config.LoadEnv()

	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := db.Open(context.Background(), databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/seed.json")
	if err := initAndSeed(context.Background(), db, seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, db *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, db); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding database...")
	if err := repositories.SeedFromJSON(ctx, db, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")

	return nil
}
