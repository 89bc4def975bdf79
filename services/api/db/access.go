package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/trivia-trens/trivia-monitora/services/api/levels"
)

const accessLogControl = "logAcesso"

// AccessEntry is one visit to the levels dashboard.
type AccessEntry struct {
	LoggedIn bool
	Email    string
	Name     string
}

// AccessLogEnabled reports whether dashboard visits are being recorded.
func (s *Store) AccessLogEnabled(ctx context.Context) (bool, error) {
	pool, err := s.conn()
	if err != nil {
		return false, err
	}

	var value *string
	err = pool.QueryRow(ctx, `SELECT valor::text FROM controle WHERE controle = $1 LIMIT 1`, accessLogControl).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query access log control: %w", err)
	}
	return value != nil && levels.CoerceBool(*value), nil
}

// SetAccessLogEnabled turns visit recording on or off, creating the control
// row when missing.
func (s *Store) SetAccessLogEnabled(ctx context.Context, enabled bool) error {
	pool, err := s.conn()
	if err != nil {
		return err
	}

	tag, err := pool.Exec(ctx, `UPDATE controle SET valor = $2 WHERE controle = $1`, accessLogControl, enabled)
	if err != nil {
		return fmt.Errorf("update access log control: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := pool.Exec(ctx, `INSERT INTO controle (controle, valor) VALUES ($1, $2)`, accessLogControl, enabled); err != nil {
		return fmt.Errorf("insert access log control: %w", err)
	}
	return nil
}

// RecordAccess stores one dashboard visit.
func (s *Store) RecordAccess(ctx context.Context, e AccessEntry) error {
	pool, err := s.conn()
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO "logAcessos" (logado, email, nome) VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))`,
		e.LoggedIn, e.Email, e.Name)
	if err != nil {
		return fmt.Errorf("insert access log: %w", err)
	}
	return nil
}

// UserAreas returns the area of every user (empty when unset).
func (s *Store) UserAreas(ctx context.Context) ([]string, error) {
	pool, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `SELECT COALESCE(area, '') FROM usuarios ORDER BY id ASC LIMIT 5000`)
	if err != nil {
		return nil, fmt.Errorf("query user areas: %w", err)
	}
	defer rows.Close()

	areas := make([]string, 0)
	for rows.Next() {
		var area string
		if err := rows.Scan(&area); err != nil {
			return nil, err
		}
		areas = append(areas, area)
	}
	return areas, rows.Err()
}

// AccessTimestamps returns the raw creation time of recorded visits.
func (s *Store) AccessTimestamps(ctx context.Context) ([]string, error) {
	pool, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `SELECT created_at::text FROM "logAcessos" ORDER BY created_at ASC LIMIT 10000`)
	if err != nil {
		return nil, fmt.Errorf("query access logs: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var ts *string
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		if ts != nil {
			out = append(out, *ts)
		}
	}
	return out, rows.Err()
}
