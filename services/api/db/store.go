package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotConfigured is returned when no database URL was provided.
	ErrNotConfigured = errors.New("db: backend credentials not configured")
	// ErrNotFound is returned when a row addressed by id does not exist.
	ErrNotFound = errors.New("db: not found")
)

// Store wraps database access helpers.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by a pgx pool. An empty URL yields a Store whose
// queries fail with ErrNotConfigured.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return &Store{}, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Configured reports whether the store has a backend to talk to.
func (s *Store) Configured() bool {
	return s != nil && s.pool != nil
}

// Ping checks connectivity with the backend.
func (s *Store) Ping(ctx context.Context) error {
	pool, err := s.conn()
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Close releases the pool resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PoolStats reports acquired and total connections of the pool.
func (s *Store) PoolStats() (acquired, total int32) {
	if !s.Configured() {
		return 0, 0
	}
	stat := s.pool.Stat()
	return stat.AcquiredConns(), stat.TotalConns()
}

func (s *Store) conn() (*pgxpool.Pool, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// textValue turns a nullable text column into a loosely typed row value.
func textValue(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
