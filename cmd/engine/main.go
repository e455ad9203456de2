package main

import (
	"context"
	"log"
	"os"

	"github.com/teamforge/reputation-engine/internal/api"
	"github.com/teamforge/reputation-engine/internal/db"
	"github.com/teamforge/reputation-engine/internal/mailer"
	"github.com/teamforge/reputation-engine/internal/trust"
)

func main() {
	log.Println("Starting TeamForge Reputation Engine...")

	// ─── Required Environment Variables ─────────────────────────────────
	// All credentials MUST come from environment variables. No fallback
	// defaults for security-sensitive values. Use a .env file for local
	// development: cp .env.example .env && edit .env
	// ────────────────────────────────────────────────────────────────────

	dbUrl := requireEnv("DATABASE_URL")

	store, err := db.Connect(dbUrl)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer store.Close()
	if err := store.InitSchema(); err != nil {
		log.Fatalf("DB schema init failed: %v", err)
	}

	if os.Getenv("SEED_DEMO") == "true" {
		if err := store.SeedDemo(context.Background()); err != nil {
			log.Printf("Warning: demo seed failed: %v", err)
		}
	}

	mail := mailer.New(mailer.Config{
		Host: os.Getenv("SMTP_HOST"),
		Port: os.Getenv("SMTP_PORT"),
		User: os.Getenv("SMTP_USER"),
		Pass: os.Getenv("SMTP_PASS"),
		From: os.Getenv("MAIL_FROM"),
	})

	engine := trust.NewEngine(store)

	// Setup WebSocket Hub
	wsHub := api.NewHub()
	go wsHub.Run()

	port := getEnvOrDefault("PORT", "5340")
	baseURL := getEnvOrDefault("BASE_URL", "http://localhost:"+port)

	// Setup the Gin Router
	r := api.SetupRouter(store, engine, wsHub, mail, baseURL)

	// Start the server
	log.Printf("Engine running on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// requireEnv reads a required environment variable and exits if it is not set.
// This prevents the binary from starting with missing critical configuration.
func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("FATAL: Required environment variable %s is not set. "+
			"Copy .env.example to .env and fill in your values: cp .env.example .env", key)
	}
	return val
}

// getEnvOrDefault returns the env var value or a safe default for non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
