package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/trivia-trens/trivia-monitora/services/api/levels"
)

const generatorRowsSQL = `
    SELECT id::text, nome, tipo, "exibeNivel"::text, "nivelAtual"::text,
           "ultimaAtualizacao"::text, dados::text, estacao::text, local::text
    FROM equipamentos
    WHERE tipo = 'Gerador' AND "exibeNivel" = true
    ORDER BY nome ASC
`

// GeneratorRows returns display-enabled generators as raw asset records.
func (s *Store) GeneratorRows(ctx context.Context) ([]levels.RawAssetRecord, error) {
	pool, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, generatorRowsSQL)
	if err != nil {
		return nil, fmt.Errorf("query generators: %w", err)
	}
	defer rows.Close()

	out := make([]levels.RawAssetRecord, 0)
	for rows.Next() {
		var id, name, kind, display, level, updated, data, station, local *string
		if err := rows.Scan(&id, &name, &kind, &display, &level, &updated, &data, &station, &local); err != nil {
			return nil, err
		}
		out = append(out, levels.RawAssetRecord{
			ID:             textValue(id),
			Name:           textValue(name),
			Type:           textValue(kind),
			DisplayEnabled: textValue(display),
			Level:          textValue(level),
			UpdatedAt:      textValue(updated),
			Data:           textValue(data),
			Station:        textValue(station),
			Location:       textValue(local),
		})
	}
	return out, rows.Err()
}

const elevatorRowsSQL = `
    SELECT id::text, COALESCE(nome, ''), local::text, estacao::text,
           "ultimaAtualizacao"::text, estado::text
    FROM equipamentos
    WHERE tipo = 'Elevador'
    ORDER BY nome ASC
`

// ElevatorRows returns every elevator.
func (s *Store) ElevatorRows(ctx context.Context) ([]levels.ElevatorRow, error) {
	pool, err := s.conn()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, elevatorRowsSQL)
	if err != nil {
		return nil, fmt.Errorf("query elevators: %w", err)
	}
	defer rows.Close()

	out := make([]levels.ElevatorRow, 0)
	for rows.Next() {
		var row levels.ElevatorRow
		var local, station, updated, state *string
		if err := rows.Scan(&row.ID, &row.Name, &local, &station, &updated, &state); err != nil {
			return nil, err
		}
		row.Location = textValue(local)
		row.Station = textValue(station)
		row.UpdatedAt = textValue(updated)
		row.State = textValue(state)
		out = append(out, row)
	}
	return out, rows.Err()
}

// EquipmentState is the switchable state of one piece of equipment.
type EquipmentState struct {
	ID        string
	State     any
	UpdatedAt any
}

const equipmentStateSQL = `
    SELECT id::text, estado::text, "ultimaAtualizacao"::text
    FROM equipamentos
    WHERE id::text = $1
`

// Equipment loads the state of one piece of equipment.
func (s *Store) Equipment(ctx context.Context, id string) (*EquipmentState, error) {
	pool, err := s.conn()
	if err != nil {
		return nil, err
	}

	var eq EquipmentState
	var state, updated *string
	if err := pool.QueryRow(ctx, equipmentStateSQL, id).Scan(&eq.ID, &state, &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query equipment %s: %w", id, err)
	}
	eq.State = textValue(state)
	eq.UpdatedAt = textValue(updated)
	return &eq, nil
}

// SetEquipmentState switches a piece of equipment on or off.
func (s *Store) SetEquipmentState(ctx context.Context, id string, on bool) error {
	pool, err := s.conn()
	if err != nil {
		return err
	}

	tag, err := pool.Exec(ctx, `UPDATE equipamentos SET estado = $2 WHERE id::text = $1`, id, on)
	if err != nil {
		return fmt.Errorf("update equipment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
