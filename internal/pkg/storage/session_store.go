package storage

import (
	"context"
	"fmt"

	"github.com/Vodeneev/betlinkbot/internal/pkg/config"
	"github.com/Vodeneev/betlinkbot/internal/pkg/models"
)

// SessionStore keeps one conversation record per user.
type SessionStore interface {
	// Get returns the user's session, or the default session when none is
	// stored. Read failures are logged and also yield the default session.
	Get(ctx context.Context, userID string) models.Session

	// Save overwrites the user's session.
	Save(ctx context.Context, userID string, session models.Session) error

	// Reset replaces the user's session with the default one.
	Reset(ctx context.Context, userID string) error

	// Close releases the backing connection or file.
	Close() error
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg *config.StorageConfig) (SessionStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemorySessionStore(), nil
	case config.DriverFile:
		return NewFileSessionStore(cfg.FilePath), nil
	case config.DriverSQLite:
		store, err := NewSQLiteSessionStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverPostgres:
		store, err := NewPostgresSessionStore(ctx, &cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverRedis:
		store, err := NewRedisSessionStore(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
