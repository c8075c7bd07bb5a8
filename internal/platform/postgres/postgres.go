package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"theatreops/internal/platform/config"
)

// Open connects to the console's Postgres and verifies the connection.
// Returns nil if no URL is configured; callers fall back to in-memory
// stores.
func Open(cfg config.PostgresConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return db, nil
}
