// Package redisstore implements the game and player stores on Redis.
// Records are JSON documents; conditional writes use WATCH and MULTI so a
// concurrent writer aborts the transaction instead of being overwritten.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/store"
	"github.com/redis/go-redis/v9"
)

// Config holds connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// DefaultPrefix namespaces keys when Config.Prefix is empty
const DefaultPrefix = "blackjack"

// DB wraps a Redis client and the key prefix
type DB struct {
	client *redis.Client
	prefix string
	logger *log.Logger
}

// Open connects to Redis and checks the connection
func Open(ctx context.Context, cfg Config, logger *log.Logger) (*DB, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	db := New(client, cfg.Prefix, logger)
	db.logger.Info("Connected", "addr", cfg.Addr, "prefix", db.prefix)
	return db, nil
}

// New wraps an existing client
func New(client *redis.Client, prefix string, logger *log.Logger) *DB {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &DB{client: client, prefix: prefix, logger: logger.WithPrefix("redis")}
}

// Close closes the client
func (d *DB) Close() error {
	return d.client.Close()
}

// Games returns the game store backed by d
func (d *DB) Games() *GameStore {
	return &GameStore{db: d}
}

// Players returns the player store backed by d
func (d *DB) Players() *PlayerStore {
	return &PlayerStore{db: d}
}

func (d *DB) key(parts ...string) string {
	k := d.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

// watch runs fn in an optimistic transaction over keys
func (d *DB) watch(ctx context.Context, what string, fn func(tx *redis.Tx) error, keys ...string) error {
	err := d.client.Watch(ctx, fn, keys...)
	if errors.Is(err, redis.TxFailedErr) {
		d.logger.Debug("Transaction aborted by concurrent write", "record", what)
		return fmt.Errorf("%s: %w", what, store.ErrConflict)
	}
	return err
}

// versionCheck maps the stored version against the one the caller holds
func versionCheck(what string, exists bool, stored, have int64) error {
	switch {
	case have == 0 && exists:
		return fmt.Errorf("%s: %w", what, store.ErrDuplicate)
	case have != 0 && !exists:
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	case have != 0 && stored != have:
		return fmt.Errorf("%s at version %d, have %d: %w", what, stored, have, store.ErrConflict)
	}
	return nil
}
