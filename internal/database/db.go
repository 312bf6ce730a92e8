// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Store wraps the pgx pool. The server runs without one: a nil *Store
// disables accounts and game history but leaves guest rooms fully working.
type Store struct {
	Pool *pgxpool.Pool
}

// Connect builds a pool from the POSTGRES_*/PG_* environment variables and
// verifies it with a ping.
func Connect(ctx context.Context) (*Store, error) {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		os.Getenv("PG_DATABASE"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"host": os.Getenv("PG_HOST"),
		"db":   os.Getenv("PG_DATABASE"),
	}).Info("connected to postgres")
	return &Store{Pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s != nil && s.Pool != nil {
		s.Pool.Close()
	}
}

// EnsureSchema creates the tables this service owns if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			username TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS game_results (
			game_id UUID NOT NULL,
			player_id UUID NOT NULL,
			did_win BOOLEAN NOT NULL,
			hand_size INT NOT NULL DEFAULT 0,
			eliminated BOOLEAN NOT NULL DEFAULT FALSE,
			finished_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (game_id, player_id)
		)`,
		`CREATE TABLE IF NOT EXISTS game_actions (
			game_id UUID NOT NULL,
			seq INT NOT NULL,
			actor_id UUID NOT NULL,
			action_type TEXT NOT NULL,
			card_id UUID,
			color TEXT,
			swap_with UUID,
			message TEXT,
			ts BIGINT NOT NULL,
			PRIMARY KEY (game_id, seq)
		)`,
	}
	for _, q := range stmts {
		if _, err := s.Pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
