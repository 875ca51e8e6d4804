package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"devstreak/internal/apperr"
	"devstreak/internal/models"
)

// UpsertUser mirrors an identity-provider account locally, refreshing
// email and name on every sign-in.
func (s *Store) UpsertUser(ctx context.Context, user models.User) (models.User, error) {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users(id, email, name) VALUES(?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET email = excluded.email, name = excluded.name, updated_at = CURRENT_TIMESTAMP`,
		user.ID, user.Email, user.Name)
	if err != nil {
		return models.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return s.GetUser(ctx, user.ID)
}

// GetUser fetches a locally mirrored account.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `SELECT id, email, name, created_at, updated_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
