package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/Vodeneev/betlinkbot/internal/pkg/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its base FS and dialect in package globals.
var migrateMu sync.Mutex

var _ SessionStore = (*SQLSessionStore)(nil)

// sqlDialect holds the statements that differ between drivers.
type sqlDialect struct {
	name   string // goose dialect
	get    string
	upsert string
}

var (
	sqliteDialect = sqlDialect{
		name: "sqlite3",
		get:  `SELECT state, site_id, aff_id, ad_id, campaign FROM sessions WHERE user_id = ?`,
		upsert: `
		INSERT INTO sessions (user_id, state, site_id, aff_id, ad_id, campaign, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			state = excluded.state,
			site_id = excluded.site_id,
			aff_id = excluded.aff_id,
			ad_id = excluded.ad_id,
			campaign = excluded.campaign,
			updated_at = excluded.updated_at`,
	}

	postgresDialect = sqlDialect{
		name: "postgres",
		get:  `SELECT state, site_id, aff_id, ad_id, campaign FROM sessions WHERE user_id = $1`,
		upsert: `
		INSERT INTO sessions (user_id, state, site_id, aff_id, ad_id, campaign, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			state = EXCLUDED.state,
			site_id = EXCLUDED.site_id,
			aff_id = EXCLUDED.aff_id,
			ad_id = EXCLUDED.ad_id,
			campaign = EXCLUDED.campaign,
			updated_at = EXCLUDED.updated_at`,
	}
)

// SQLSessionStore stores one row per user in the sessions table. It backs
// both the SQLite and the PostgreSQL drivers.
type SQLSessionStore struct {
	db      *sql.DB
	dialect sqlDialect
}

func newSQLSessionStore(ctx context.Context, db *sql.DB, dialect sqlDialect) (*SQLSessionStore, error) {
	if err := migrate(ctx, db, dialect.name); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLSessionStore{db: db, dialect: dialect}, nil
}

func migrate(ctx context.Context, db *sql.DB, dialect string) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (s *SQLSessionStore) Get(ctx context.Context, userID string) models.Session {
	session, err := s.get(ctx, userID)
	if err != nil {
		slog.Error("Failed to load session, using default", "driver", s.dialect.name, "user_id", userID, "error", err)
		return models.NewSession()
	}
	return session
}

func (s *SQLSessionStore) get(ctx context.Context, userID string) (models.Session, error) {
	var (
		state                         string
		siteID, affID, adID, campaign sql.NullString
	)
	err := s.db.QueryRowContext(ctx, s.dialect.get, userID).Scan(&state, &siteID, &affID, &adID, &campaign)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewSession(), nil
	}
	if err != nil {
		return models.Session{}, err
	}

	session := models.NewSession()
	if parsed, ok := models.ParseState(state); ok {
		session.State = parsed
	} else {
		slog.Warn("Unknown session state in database, treating as idle", "user_id", userID, "state", state)
	}
	if siteID.Valid && affID.Valid && adID.Valid && campaign.Valid {
		session.Affiliate = &models.AffiliateParams{
			SiteID: siteID.String,
			AffID:  affID.String,
			AdID:   adID.String,
			C:      campaign.String,
		}
	}
	return session, nil
}

func (s *SQLSessionStore) Save(ctx context.Context, userID string, session models.Session) error {
	var siteID, affID, adID, campaign sql.NullString
	if a := session.Affiliate; a != nil {
		siteID = sql.NullString{String: a.SiteID, Valid: true}
		affID = sql.NullString{String: a.AffID, Valid: true}
		adID = sql.NullString{String: a.AdID, Valid: true}
		campaign = sql.NullString{String: a.C, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, s.dialect.upsert,
		userID, session.State.String(), siteID, affID, adID, campaign, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SQLSessionStore) Reset(ctx context.Context, userID string) error {
	return s.Save(ctx, userID, models.NewSession())
}

func (s *SQLSessionStore) Close() error {
	return s.db.Close()
}
