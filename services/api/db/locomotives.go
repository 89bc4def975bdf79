package db

import (
	"context"
	"fmt"

	"github.com/trivia-trens/trivia-monitora/services/api/fleet"
	"github.com/trivia-trens/trivia-monitora/services/api/levels"
)

const locomotiveColumns = `
    id::text, COALESCE(tag, ''), COALESCE(modelo, ''), COALESCE(base, ''), COALESCE(combustivel, ''),
    volume_tanque::text, nivel_atual::text, exibe_nivel::text, updated_at::text, created_at::text,
    COALESCE(foto_path, '')
`

const locomotiveLevelRowsSQL = `SELECT ` + locomotiveColumns + `
    FROM locomotivas
    WHERE exibe_nivel = true
    ORDER BY tag ASC
    LIMIT 500
`

const locomotiveRowsSQL = `SELECT ` + locomotiveColumns + `
    FROM locomotivas
    ORDER BY tag ASC
    LIMIT 500
`

// LocomotiveLevelRows returns locomotives flagged for the levels panel.
func (s *Store) LocomotiveLevelRows(ctx context.Context) ([]levels.LocomotiveRow, error) {
	return s.queryLocomotives(ctx, locomotiveLevelRowsSQL)
}

// LocomotiveRows returns locomotives for administration.
func (s *Store) LocomotiveRows(ctx context.Context) ([]levels.LocomotiveRow, error) {
	return s.queryLocomotives(ctx, locomotiveRowsSQL)
}

func (s *Store) queryLocomotives(ctx context.Context, sql string) ([]levels.LocomotiveRow, error) {
	pool, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query locomotives: %w", err)
	}
	defer rows.Close()

	out := make([]levels.LocomotiveRow, 0)
	for rows.Next() {
		var row levels.LocomotiveRow
		var tank, level, display, updated, created *string
		if err := rows.Scan(
			&row.ID,
			&row.Tag,
			&row.Model,
			&row.Base,
			&row.Fuel,
			&tank,
			&level,
			&display,
			&updated,
			&created,
			&row.PhotoURL,
		); err != nil {
			return nil, err
		}
		row.TankVolume = textValue(tank)
		row.Level = textValue(level)
		row.DisplayEnabled = textValue(display)
		row.UpdatedAt = textValue(updated)
		row.CreatedAt = textValue(created)
		out = append(out, row)
	}
	return out, rows.Err()
}

const createLocomotiveSQL = `
    INSERT INTO locomotivas (tag, modelo, base, combustivel, volume_tanque, nivel_atual, exibe_nivel)
    VALUES ($1, $2, $3, $4, $5, $6, true)
    RETURNING id::text
`

// CreateLocomotive inserts a locomotive and returns its id.
func (s *Store) CreateLocomotive(ctx context.Context, in fleet.LocomotiveInput) (string, error) {
	pool, err := s.conn()
	if err != nil {
		return "", err
	}

	var id string
	if err := pool.QueryRow(ctx, createLocomotiveSQL,
		in.Tag, in.Model, in.Base, in.Fuel, in.TankVolume, in.Level,
	).Scan(&id); err != nil {
		return "", fmt.Errorf("insert locomotive: %w", err)
	}
	return id, nil
}

const updateLocomotiveSQL = `
    UPDATE locomotivas
    SET tag = $2, modelo = $3, base = $4, combustivel = $5, volume_tanque = $6, nivel_atual = $7,
        updated_at = NOW()
    WHERE id::text = $1
`

// UpdateLocomotive overwrites the editable fields of a locomotive.
func (s *Store) UpdateLocomotive(ctx context.Context, id string, in fleet.LocomotiveInput) error {
	pool, err := s.conn()
	if err != nil {
		return err
	}

	tag, err := pool.Exec(ctx, updateLocomotiveSQL,
		id, in.Tag, in.Model, in.Base, in.Fuel, in.TankVolume, in.Level)
	if err != nil {
		return fmt.Errorf("update locomotive %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLocomotivePhoto stores the public URL of a locomotive's photo.
func (s *Store) SetLocomotivePhoto(ctx context.Context, id, photoURL string) error {
	pool, err := s.conn()
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `UPDATE locomotivas SET foto_path = $2 WHERE id::text = $1`, id, photoURL); err != nil {
		return fmt.Errorf("update locomotive photo %s: %w", id, err)
	}
	return nil
}

// DeleteLocomotive removes a locomotive.
func (s *Store) DeleteLocomotive(ctx context.Context, id string) error {
	pool, err := s.conn()
	if err != nil {
		return err
	}

	tag, err := pool.Exec(ctx, `DELETE FROM locomotivas WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("delete locomotive %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
