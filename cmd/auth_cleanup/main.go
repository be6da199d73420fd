package main

import (
	"context"
	"flag"
	"log"
	"time"

	"suryawash/internal/config"
	"suryawash/internal/database"
	"suryawash/internal/repository"

	"github.com/joho/godotenv"
)

func main() {
	retain := flag.Duration("retain", 30*24*time.Hour, "keep expired or revoked sessions this long")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	cutoff := time.Now().UTC().Add(-*retain)
	n, err := repository.NewSessionRepository(db).DeleteStale(context.Background(), cutoff)
	if err != nil {
		log.Fatalf("cleanup sessions failed: %v", err)
	}

	log.Printf("auth cleanup completed: sessions=%d cutoff=%s", n, cutoff.Format(time.RFC3339))
}
