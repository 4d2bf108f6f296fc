package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/Vodeneev/betlinkbot/internal/pkg/config"
)

// NewPostgresSessionStore connects to PostgreSQL and applies migrations.
func NewPostgresSessionStore(ctx context.Context, cfg *config.PostgresConfig) (*SQLSessionStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	store, err := newSQLSessionStore(ctx, db, postgresDialect)
	if err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("PostgreSQL session storage initialized successfully")
	return store, nil
}
