// Package postgres implements the game and player stores on PostgreSQL
// using database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lib/pq"
	"github.com/lox/blackjack/internal/store"
)

// Config holds connection settings
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
}

// DSN renders the lib/pq connection string
func (c Config) DSN() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Database, c.User, c.Password, sslmode)
}

// readyAttempts and readyInterval bound how long Open waits for the server
const (
	readyAttempts = 30
	readyInterval = 2 * time.Second
)

// DB wraps the connection pool
type DB struct {
	pool   *sql.DB
	logger *log.Logger
}

// Open connects, waits for the server to accept connections and runs
// migrations.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (*DB, error) {
	pool, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pool.SetMaxOpenConns(10)
	pool.SetMaxIdleConns(5)
	pool.SetConnMaxLifetime(5 * time.Minute)

	db := NewFromDB(pool, logger)
	if err := db.waitReady(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// NewFromDB wraps an existing pool without pinging or migrating it
func NewFromDB(pool *sql.DB, logger *log.Logger) *DB {
	return &DB{pool: pool, logger: logger.WithPrefix("postgres")}
}

func (d *DB) waitReady(ctx context.Context) error {
	for i := 1; i <= readyAttempts; i++ {
		err := d.pool.PingContext(ctx)
		if err == nil {
			d.logger.Info("Connected")
			return nil
		}
		d.logger.Warn("Database not ready", "attempt", i, "of", readyAttempts, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readyInterval):
		}
	}
	return fmt.Errorf("postgres unavailable after %s", readyAttempts*readyInterval)
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id           VARCHAR(64)  PRIMARY KEY,
		name         VARCHAR(255) NOT NULL UNIQUE,
		games_played INT          NOT NULL DEFAULT 0,
		games_won    INT          NOT NULL DEFAULT 0,
		total_score  INT          NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ  NOT NULL,
		version      BIGINT       NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		id                VARCHAR(64) PRIMARY KEY,
		player_id         VARCHAR(64) NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL,
		status            VARCHAR(50) NOT NULL,
		turn              VARCHAR(50) NOT NULL,
		player_score      INT         NOT NULL,
		dealer_score      INT         NOT NULL,
		deck_json         TEXT        NOT NULL,
		player_cards_json TEXT        NOT NULL,
		dealer_cards_json TEXT        NOT NULL,
		stats_applied     BOOLEAN     NOT NULL DEFAULT FALSE,
		version           BIGINT      NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_games_created ON games(created_at, id)`,
}

// Migrate creates the schema. It is idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	tx, err := d.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range migrations {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	d.logger.Info("Schema ready")
	return nil
}

// Close closes the pool
func (d *DB) Close() error {
	return d.pool.Close()
}

// Games returns the game store backed by d
func (d *DB) Games() *GameStore {
	return &GameStore{db: d}
}

// Players returns the player store backed by d
func (d *DB) Players() *PlayerStore {
	return &PlayerStore{db: d}
}

// uniqueViolation is the SQLSTATE for a unique constraint failure
const uniqueViolation = pq.ErrorCode("23505")

func mapError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", what, store.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// missedUpdate explains an UPDATE that matched no rows: either the row is
// gone or its version moved on.
func (d *DB) missedUpdate(ctx context.Context, table, id string, want int64) error {
	var current int64
	err := d.pool.QueryRowContext(ctx, `SELECT version FROM `+table+` WHERE id = $1`, id).Scan(&current)
	if err != nil {
		return mapError(err, table+" "+id)
	}
	return fmt.Errorf("%s %s at version %d, have %d: %w", table, id, current, want, store.ErrConflict)
}
