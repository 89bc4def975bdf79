package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// UserProfile is a row of the usuarios table.
type UserProfile struct {
	ID         string     `json:"id"`
	Name       string     `json:"nome"`
	Email      string     `json:"email"`
	Company    string     `json:"empresa"`
	Area       string     `json:"area"`
	Role       string     `json:"role"`
	Authorized bool       `json:"autorizado"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// UserFilter narrows a user listing. Empty fields do not filter.
type UserFilter struct {
	Company string
	Area    string
}

// UserUpdate lists the profile fields to change. Nil fields are left alone.
type UserUpdate struct {
	Name    string
	Company *string
	Area    *string
	Role    *string
}

const userColumns = `
    id::text, COALESCE(nome, ''), COALESCE(email, ''), COALESCE(empresa, ''), COALESCE(area, ''),
    COALESCE(role, ''), COALESCE(autorizado, false), created_at
`

func scanUser(row pgx.Row) (UserProfile, error) {
	var u UserProfile
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Company, &u.Area, &u.Role, &u.Authorized, &u.CreatedAt)
	return u, err
}

// UserProfile loads one user's profile.
func (s *Store) UserProfile(ctx context.Context, id string) (*UserProfile, error) {
	pool, err := s.conn()
	if err != nil {
		return nil, err
	}

	u, err := scanUser(pool.QueryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id::text = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user %s: %w", id, err)
	}
	return &u, nil
}

// ListUsers returns up to 300 users ordered by name.
func (s *Store) ListUsers(ctx context.Context, f UserFilter) ([]UserProfile, error) {
	pool, err := s.conn()
	if err != nil {
		return nil, err
	}

	conditions := []string{}
	args := []any{}
	if f.Company != "" {
		args = append(args, f.Company)
		conditions = append(conditions, "empresa = $"+strconv.Itoa(len(args)))
	}
	if f.Area != "" {
		args = append(args, f.Area)
		conditions = append(conditions, "area = $"+strconv.Itoa(len(args)))
	}

	query := strings.Builder{}
	query.WriteString("SELECT " + userColumns + " FROM usuarios ")
	if len(conditions) > 0 {
		query.WriteString("WHERE " + strings.Join(conditions, " AND ") + " ")
	}
	query.WriteString("ORDER BY nome ASC LIMIT 300")

	rows, err := pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]UserProfile, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetUserAuthorized grants or revokes a user's access.
func (s *Store) SetUserAuthorized(ctx context.Context, id string, authorized bool) error {
	pool, err := s.conn()
	if err != nil {
		return err
	}

	tag, err := pool.Exec(ctx, `UPDATE usuarios SET autorizado = $2 WHERE id::text = $1`, id, authorized)
	if err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateUser applies a profile update.
func (s *Store) UpdateUser(ctx context.Context, id string, u UserUpdate) error {
	pool, err := s.conn()
	if err != nil {
		return err
	}

	args := []any{id, u.Name}
	sets := []string{"nome = $2"}
	for _, field := range []struct {
		column string
		value  *string
	}{
		{"empresa", u.Company},
		{"area", u.Area},
		{"role", u.Role},
	} {
		if field.value == nil {
			continue
		}
		args = append(args, *field.value)
		sets = append(sets, field.column+" = $"+strconv.Itoa(len(args)))
	}

	sql := "UPDATE usuarios SET " + strings.Join(sets, ", ") + " WHERE id::text = $1"
	tag, err := pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user's profile.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	pool, err := s.conn()
	if err != nil {
		return err
	}

	if _, err := pool.Exec(ctx, `DELETE FROM usuarios WHERE id::text = $1`, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}
