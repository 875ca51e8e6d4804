package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"devstreak/internal/apperr"
	"devstreak/internal/models"
)

// MaxExamplePostsPerKey caps style references per (type, platform).
const MaxExamplePostsPerKey = 2

const examplePostColumns = `id, user_id, type, platform, content, created_at, updated_at`

// ExamplePostFilter narrows ListExamplePosts results.
type ExamplePostFilter struct {
	Type     models.GoalType
	Platform models.Platform
}

// CreateExamplePost stores a style reference, enforcing the per-key cap.
func (s *Store) CreateExamplePost(ctx context.Context, userID string, goalType models.GoalType, platform models.Platform, content string) (models.ExamplePost, error) {
	var post models.ExamplePost
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var existing int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM example_posts WHERE user_id = ? AND type = ? AND platform = ?`,
			userID, string(goalType), string(platform)).Scan(&existing)
		if err != nil {
			return fmt.Errorf("count example posts: %w", err)
		}
		if existing >= MaxExamplePostsPerKey {
			return apperr.Newf(apperr.Precondition,
				"maximum %d example posts allowed per type per platform, delete an existing %s post for %s first",
				MaxExamplePostsPerKey, goalType, platform)
		}

		id := uuid.NewString()
		_, err = tx.ExecContext(ctx, `INSERT INTO example_posts(id, user_id, type, platform, content) VALUES(?, ?, ?, ?, ?)`,
			id, userID, string(goalType), string(platform), content)
		if err != nil {
			return fmt.Errorf("insert example post: %w", err)
		}

		return tx.QueryRowContext(ctx, `SELECT `+examplePostColumns+` FROM example_posts WHERE id = ?`, id).
			Scan(&post.ID, &post.UserID, &post.Type, &post.Platform, &post.Content, &post.CreatedAt, &post.UpdatedAt)
	})
	if err != nil {
		return models.ExamplePost{}, err
	}
	return post, nil
}

// ListExamplePosts returns the user's style references newest first.
func (s *Store) ListExamplePosts(ctx context.Context, userID string, filter ExamplePostFilter) ([]models.ExamplePost, error) {
	query := `SELECT ` + examplePostColumns + ` FROM example_posts WHERE user_id = ?`
	args := []any{userID}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	if filter.Platform != "" {
		query += ` AND platform = ?`
		args = append(args, string(filter.Platform))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list example posts: %w", err)
	}
	defer rows.Close()

	var posts []models.ExamplePost
	for rows.Next() {
		var p models.ExamplePost
		if err := rows.Scan(&p.ID, &p.UserID, &p.Type, &p.Platform, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan example post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// DeleteExamplePost removes one of the user's style references.
func (s *Store) DeleteExamplePost(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM example_posts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete example post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.New(apperr.NotFound, "example post not found")
	}
	return nil
}
