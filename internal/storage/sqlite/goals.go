package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"devstreak/internal/apperr"
	"devstreak/internal/gating"
	"devstreak/internal/models"
)

const goalColumns = `id, user_id, title, type, status, started_at, completed_at, created_at, updated_at`

// GoalSummary is a goal enriched with live task completion counts.
type GoalSummary struct {
	models.WeeklyGoal
	TaskStats models.TaskStats `json:"task_stats"`
}

// GoalFilter narrows ListGoals results.
type GoalFilter struct {
	Status models.GoalStatus
	Type   models.GoalType
}

// BlockedGoal summarizes the active goal that prevents creating a new
// week.
type BlockedGoal struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	CompletedTasks int    `json:"completed_tasks"`
	TotalTasks     int    `json:"total_tasks"`
}

// CreateGoal starts a new weekly goal for the user. Creation is blocked
// while an active goal has fewer than seven completed tasks; an active
// goal that already has all seven done but was never flipped is
// auto-completed first.
func (s *Store) CreateGoal(ctx context.Context, userID, title string, goalType models.GoalType) (models.WeeklyGoal, error) {
	var goal models.WeeklyGoal
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var (
			activeID    string
			activeTitle string
		)
		hasActive := true
		err := tx.QueryRowContext(ctx, `SELECT id, title FROM goals WHERE user_id = ? AND status = 'active'`, userID).
			Scan(&activeID, &activeTitle)
		if errors.Is(err, sql.ErrNoRows) {
			hasActive = false
		} else if err != nil {
			return fmt.Errorf("find active goal: %w", err)
		}

		completed := 0
		if hasActive {
			err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE goal_id = ? AND status = 'complete'`, activeID).
				Scan(&completed)
			if err != nil {
				return fmt.Errorf("count completed tasks: %w", err)
			}
		}

		decision := gating.EvaluateGoalCreate(hasActive, completed)
		if !decision.Allowed {
			return apperr.New(apperr.Precondition, decision.Reason).WithDetails(BlockedGoal{
				ID:             activeID,
				Title:          activeTitle,
				CompletedTasks: decision.Completed,
				TotalTasks:     gating.WeekLength,
			})
		}
		if decision.AutoComplete {
			if _, err := tx.ExecContext(ctx, `UPDATE goals SET status = 'complete', completed_at = CURRENT_TIMESTAMP WHERE id = ?`, activeID); err != nil {
				return fmt.Errorf("auto-complete goal: %w", err)
			}
			s.logger.Info("auto-completed finished goal", slog.String("goal_id", activeID))
		}

		id := uuid.NewString()
		_, err = tx.ExecContext(ctx, `INSERT INTO goals(id, user_id, title, type, status) VALUES(?, ?, ?, ?, 'active')`,
			id, userID, title, string(goalType))
		if err != nil {
			return fmt.Errorf("insert goal: %w", err)
		}

		goal, err = scanGoal(tx.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return models.WeeklyGoal{}, err
	}
	return goal, nil
}

// GetGoal fetches a goal owned by the user. A goal owned by someone
// else reports not found, never its existence.
func (s *Store) GetGoal(ctx context.Context, userID, id string) (models.WeeklyGoal, error) {
	goal, err := scanGoal(s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.WeeklyGoal{}, apperr.New(apperr.NotFound, "weekly goal not found")
	}
	if err != nil {
		return models.WeeklyGoal{}, fmt.Errorf("get goal: %w", err)
	}
	return goal, nil
}

// ListGoals returns the user's goals newest first, optionally filtered
// by status and type, each enriched with live task counts.
func (s *Store) ListGoals(ctx context.Context, userID string, filter GoalFilter) ([]GoalSummary, error) {
	query := `SELECT g.id, g.user_id, g.title, g.type, g.status, g.started_at, g.completed_at, g.created_at, g.updated_at,
            COUNT(t.id),
            COALESCE(SUM(t.status = 'complete'), 0),
            COALESCE(SUM(t.status = 'active'), 0),
            COALESCE(SUM(t.status = 'locked'), 0)
        FROM goals g
        LEFT JOIN tasks t ON t.goal_id = g.id
        WHERE g.user_id = ?`
	args := []any{userID}

	if filter.Status != "" {
		query += ` AND g.status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Type != "" {
		query += ` AND g.type = ?`
		args = append(args, string(filter.Type))
	}
	query += ` GROUP BY g.id ORDER BY g.started_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []GoalSummary
	for rows.Next() {
		var (
			g           GoalSummary
			completedAt sql.NullTime
		)
		err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Type, &g.Status, &g.StartedAt, &completedAt, &g.CreatedAt, &g.UpdatedAt,
			&g.TaskStats.Total, &g.TaskStats.Completed, &g.TaskStats.Active, &g.TaskStats.Locked)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if completedAt.Valid {
			t := completedAt.Time
			g.CompletedAt = &t
		}
		g.TaskStats.Progress = gating.Progress(g.TaskStats.Completed, g.TaskStats.Total)
		g.TaskStats.Complete = g.TaskStats.Total == gating.WeekLength && g.TaskStats.Completed == gating.WeekLength
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpdateGoal changes the title and/or type of a goal. Status is managed
// by the completion cascade and cannot be set here.
func (s *Store) UpdateGoal(ctx context.Context, userID, id string, title *string, goalType *models.GoalType) (models.WeeklyGoal, error) {
	goal, err := s.GetGoal(ctx, userID, id)
	if err != nil {
		return models.WeeklyGoal{}, err
	}

	newTitle := goal.Title
	newType := goal.Type
	if title != nil && *title != "" {
		newTitle = *title
	}
	if goalType != nil {
		newType = *goalType
	}

	_, err = s.db.ExecContext(ctx, `UPDATE goals SET title = ?, type = ? WHERE id = ?`, newTitle, string(newType), id)
	if err != nil {
		return models.WeeklyGoal{}, fmt.Errorf("update goal: %w", err)
	}
	return s.GetGoal(ctx, userID, id)
}

func scanGoal(row *sql.Row) (models.WeeklyGoal, error) {
	var (
		g           models.WeeklyGoal
		completedAt sql.NullTime
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Title, &g.Type, &g.Status, &g.StartedAt, &completedAt, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return models.WeeklyGoal{}, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		g.CompletedAt = &t
	}
	return g, nil
}
