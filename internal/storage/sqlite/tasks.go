package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"devstreak/internal/apperr"
	"devstreak/internal/gating"
	"devstreak/internal/models"
)

const taskColumns = `id, goal_id, day_number, description, resources, status, scheduled_date,
    completion_code, completion_notes, completed_at, created_at, updated_at`

// CompleteResult reports what a completion triggered beyond the task
// itself.
type CompleteResult struct {
	AlreadyCompleted bool   `json:"already_completed"`
	NextTaskUnlocked bool   `json:"next_task_unlocked"`
	WeekCompleted    bool   `json:"week_completed"`
	Message          string `json:"message"`
}

// CreateTask adds the next sequential task to a goal, subject to the
// gating rules: day 1 starts active, later days start locked, at most
// seven per week, none after the week completes.
func (s *Store) CreateTask(ctx context.Context, userID, goalID, description string, resources []models.Resource) (models.Task, error) {
	rawResources, err := marshalResources(resources)
	if err != nil {
		return models.Task{}, err
	}

	var task models.Task
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var goalStatus models.GoalStatus
		err := tx.QueryRowContext(ctx, `SELECT status FROM goals WHERE id = ? AND user_id = ?`, goalID, userID).
			Scan(&goalStatus)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.New(apperr.NotFound, "weekly goal not found")
		}
		if err != nil {
			return fmt.Errorf("get goal: %w", err)
		}

		existing, err := listTasksTx(ctx, tx, goalID)
		if err != nil {
			return err
		}

		decision := gating.EvaluateCreate(goalStatus, existing)
		if !decision.Allowed {
			return apperr.New(apperr.Precondition, decision.Reason)
		}

		id := uuid.NewString()
		_, err = tx.ExecContext(ctx, `INSERT INTO tasks(id, goal_id, day_number, description, resources, status)
            VALUES(?, ?, ?, ?, ?, ?)`,
			id, goalID, decision.Day, description, rawResources, string(decision.Status))
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}

		task, err = scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// GetTask fetches a task whose parent goal is owned by the user.
// Tasks under another user's goal report not found.
func (s *Store) GetTask(ctx context.Context, userID, taskID string) (models.Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx, `SELECT t.id, t.goal_id, t.day_number, t.description, t.resources, t.status, t.scheduled_date,
            t.completion_code, t.completion_notes, t.completed_at, t.created_at, t.updated_at
        FROM tasks t
        JOIN goals g ON g.id = t.goal_id
        WHERE t.id = ? AND g.user_id = ?`, taskID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, apperr.New(apperr.NotFound, "task not found")
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// ListTasks returns a goal's tasks ordered by day number.
func (s *Store) ListTasks(ctx context.Context, userID, goalID string) ([]models.Task, error) {
	if _, err := s.GetGoal(ctx, userID, goalID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE goal_id = ? ORDER BY day_number`, goalID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// UpdateTask changes a task's description and/or resources. Completed
// tasks are immutable.
func (s *Store) UpdateTask(ctx context.Context, userID, taskID string, description *string, resources []models.Resource) (models.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return models.Task{}, err
	}
	if task.Status == models.TaskComplete {
		return models.Task{}, apperr.New(apperr.Precondition, "cannot update a completed task")
	}

	newDescription := task.Description
	if description != nil && *description != "" {
		newDescription = *description
	}
	rawResources, err := marshalResources(task.Resources)
	if err != nil {
		return models.Task{}, err
	}
	if resources != nil {
		if rawResources, err = marshalResources(resources); err != nil {
			return models.Task{}, err
		}
	}

	_, err = s.db.ExecContext(ctx, `UPDATE tasks SET description = ?, resources = ? WHERE id = ?`,
		newDescription, rawResources, taskID)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	return s.GetTask(ctx, userID, taskID)
}

// CompleteTask marks a task complete and runs the cascade in a single
// transaction: attach the submission, unlock the next locked day, then
// recount live state and flip the goal once all seven are done. The
// status write is a compare-and-swap so two racing completions cannot
// both mutate; the loser observes the winner's write and reports
// already-completed.
func (s *Store) CompleteTask(ctx context.Context, userID, taskID, code, notes string) (models.Task, CompleteResult, error) {
	var (
		task   models.Task
		result CompleteResult
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getTaskTx(ctx, tx, userID, taskID)
		if err != nil {
			return err
		}

		decision := gating.EvaluateComplete(current)
		if decision.AlreadyComplete {
			task = current
			result = CompleteResult{AlreadyCompleted: true, Message: "Task already completed."}
			return nil
		}
		if !decision.Allowed {
			return apperr.New(apperr.Precondition, decision.Reason)
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx, `UPDATE tasks
            SET status = 'complete', completion_code = ?, completion_notes = ?, completed_at = ?
            WHERE id = ? AND status = 'active'`,
			code, notes, now, taskID)
		if err != nil {
			return fmt.Errorf("complete task: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			// Lost a race: someone else completed or the task regressed.
			current, err = getTaskTx(ctx, tx, userID, taskID)
			if err != nil {
				return err
			}
			if current.Status == models.TaskComplete {
				task = current
				result = CompleteResult{AlreadyCompleted: true, Message: "Task already completed."}
				return nil
			}
			return apperr.New(apperr.Precondition, "task is not active")
		}

		if current.DayNumber < gating.WeekLength {
			res, err := tx.ExecContext(ctx, `UPDATE tasks SET status = 'active'
                WHERE goal_id = ? AND day_number = ? AND status = 'locked'`,
				current.GoalID, current.DayNumber+1)
			if err != nil {
				return fmt.Errorf("unlock next task: %w", err)
			}
			if unlocked, err := res.RowsAffected(); err != nil {
				return err
			} else if unlocked > 0 {
				result.NextTaskUnlocked = true
				s.logger.Info("next day unlocked",
					slog.String("goal_id", current.GoalID),
					slog.Int("day", current.DayNumber+1))
			}
		}

		// Recount against live rows, not a cached counter, so a stale
		// count can never complete or hold back the week.
		var total, completed int
		err = tx.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(status = 'complete'), 0) FROM tasks WHERE goal_id = ?`, current.GoalID).
			Scan(&total, &completed)
		if err != nil {
			return fmt.Errorf("recount tasks: %w", err)
		}
		if total == gating.WeekLength && completed == gating.WeekLength {
			if _, err := tx.ExecContext(ctx, `UPDATE goals SET status = 'complete', completed_at = ? WHERE id = ? AND status = 'active'`,
				now, current.GoalID); err != nil {
				return fmt.Errorf("complete goal: %w", err)
			}
			result.WeekCompleted = true
			s.logger.Info("weekly goal completed", slog.String("goal_id", current.GoalID))
		}

		result.Message = gating.CompletionMessage(current.DayNumber, result.NextTaskUnlocked, result.WeekCompleted)

		task, err = getTaskTx(ctx, tx, userID, taskID)
		return err
	})
	if err != nil {
		return models.Task{}, CompleteResult{}, err
	}
	return task, result, nil
}

func getTaskTx(ctx context.Context, tx *sql.Tx, userID, taskID string) (models.Task, error) {
	task, err := scanTask(tx.QueryRowContext(ctx, `SELECT t.id, t.goal_id, t.day_number, t.description, t.resources, t.status, t.scheduled_date,
            t.completion_code, t.completion_notes, t.completed_at, t.created_at, t.updated_at
        FROM tasks t
        JOIN goals g ON g.id = t.goal_id
        WHERE t.id = ? AND g.user_id = ?`, taskID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, apperr.New(apperr.NotFound, "task not found")
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func listTasksTx(ctx context.Context, tx *sql.Tx, goalID string) ([]models.Task, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE goal_id = ? ORDER BY day_number`, goalID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t           models.Task
		rawRes      string
		code, notes sql.NullString
		completedAt sql.NullTime
	)
	err := row.Scan(&t.ID, &t.GoalID, &t.DayNumber, &t.Description, &rawRes, &t.Status, &t.ScheduledDate,
		&code, &notes, &completedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	if t.Resources, err = unmarshalResources(rawRes); err != nil {
		return models.Task{}, err
	}
	if completedAt.Valid {
		t.Completion = &models.Completion{
			Code:          code.String,
			LearningNotes: notes.String,
			CompletedAt:   completedAt.Time,
		}
	}
	return t, nil
}

func collectTasks(rows *sql.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
