package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"codeberg.org/parley/server/internal/auth"
	"codeberg.org/parley/server/internal/credits"
)

const testGrant = 100

func main() {
	// load environment
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	dbConnString := os.Getenv("DATABASE_URL")
	if dbConnString == "" {
		log.Fatal("DATABASE_URL not set")
	}

	dbPool, err := pgxpool.New(context.Background(), dbConnString)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	ctx := context.Background()

	// create or find test user
	testEmail := "test@parley.chat"
	var userID string

	err = dbPool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", testEmail).Scan(&userID)
	if err != nil {
		userID = uuid.New().String()
		_, err = dbPool.Exec(ctx, `
			INSERT INTO users (id, email, name, tier, created_at, updated_at)
			VALUES ($1, $2, $3, $4, NOW(), NOW())
		`, userID, testEmail, "Test User", "pro")

		if err != nil {
			log.Fatalf("Failed to create test user: %v", err)
		}
		fmt.Printf("Created test user: %s (ID: %s)\n", testEmail, userID)
	} else {
		fmt.Printf("Using existing test user (ID: %s)\n", userID)
	}

	// top up the credit balance so turns don't get rejected
	ledger := credits.NewLedger(credits.NewPostgresStore(dbPool))
	if err := ledger.Grant(ctx, userID, testGrant); err != nil {
		log.Fatalf("Failed to grant credits: %v", err)
	}
	fmt.Printf("Granted %d credits\n", testGrant)

	token, err := auth.GenerateJWT(userID, testEmail, "pro")
	if err != nil {
		log.Fatalf("Failed to generate JWT: %v", err)
	}

	fmt.Printf("\nTest JWT Token:\n%s\n\n", token)
	fmt.Printf("Export this token for testing:\nexport TEST_TOKEN=\"%s\"\n", token)
}
