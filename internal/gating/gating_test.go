package gating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devstreak/internal/models"
)

func tasksWithStatuses(statuses ...models.TaskStatus) []models.Task {
	tasks := make([]models.Task, 0, len(statuses))
	for i, status := range statuses {
		tasks = append(tasks, models.Task{DayNumber: i + 1, Status: status})
	}
	return tasks
}

func TestEvaluateCreate_FirstDayStartsActive(t *testing.T) {
	decision := EvaluateCreate(models.GoalActive, nil)

	require.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Day)
	assert.Equal(t, models.TaskActive, decision.Status)
}

func TestEvaluateCreate_LaterDaysStartLocked(t *testing.T) {
	tasks := tasksWithStatuses(models.TaskComplete, models.TaskActive)

	decision := EvaluateCreate(models.GoalActive, tasks)

	require.True(t, decision.Allowed)
	assert.Equal(t, 3, decision.Day)
	assert.Equal(t, models.TaskLocked, decision.Status)
}

func TestEvaluateCreate_AllowsNextDayBeforePriorIsComplete(t *testing.T) {
	// Planning ahead is fine: day 2 can exist while day 1 is still active.
	tasks := tasksWithStatuses(models.TaskActive)

	decision := EvaluateCreate(models.GoalActive, tasks)

	require.True(t, decision.Allowed)
	assert.Equal(t, 2, decision.Day)
	assert.Equal(t, models.TaskLocked, decision.Status)
}

func TestEvaluateCreate_RejectsEighthTask(t *testing.T) {
	tasks := tasksWithStatuses(
		models.TaskComplete, models.TaskComplete, models.TaskComplete,
		models.TaskComplete, models.TaskComplete, models.TaskComplete,
		models.TaskComplete,
	)

	decision := EvaluateCreate(models.GoalActive, tasks)

	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "maximum 7 tasks")
}

func TestEvaluateCreate_RejectsCompletedGoal(t *testing.T) {
	decision := EvaluateCreate(models.GoalComplete, nil)

	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "completed weekly goal")
}

func TestEvaluateComplete(t *testing.T) {
	tests := []struct {
		name            string
		task            models.Task
		allowed         bool
		alreadyComplete bool
	}{
		{name: "active task completes", task: models.Task{DayNumber: 1, Status: models.TaskActive}, allowed: true},
		{name: "locked task is rejected", task: models.Task{DayNumber: 3, Status: models.TaskLocked}},
		{name: "re-completion is a no-op", task: models.Task{DayNumber: 2, Status: models.TaskComplete}, alreadyComplete: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := EvaluateComplete(tt.task)
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.Equal(t, tt.alreadyComplete, decision.AlreadyComplete)
			if !tt.allowed && !tt.alreadyComplete {
				assert.Contains(t, decision.Reason, "locked")
			}
		})
	}
}

func TestEvaluateGoalCreate(t *testing.T) {
	tests := []struct {
		name         string
		hasActive    bool
		completed    int
		allowed      bool
		autoComplete bool
	}{
		{name: "no active goal", allowed: true},
		{name: "active goal with no progress", hasActive: true, completed: 0},
		{name: "active goal mid-week", hasActive: true, completed: 4},
		{name: "active goal fully done heals and allows", hasActive: true, completed: 7, allowed: true, autoComplete: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := EvaluateGoalCreate(tt.hasActive, tt.completed)
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.Equal(t, tt.autoComplete, decision.AutoComplete)
			if !tt.allowed {
				assert.Contains(t, decision.Reason, "incomplete weekly goal")
			}
		})
	}
}

func TestCompletionMessage(t *testing.T) {
	assert.Equal(t, "Task completed!", CompletionMessage(4, false, false))
	assert.Equal(t, "Task completed! Day 5 is now unlocked.", CompletionMessage(4, true, false))
	assert.Equal(t, "Task completed! This was the final task of the week.", CompletionMessage(7, false, true))
}

func TestStats(t *testing.T) {
	tasks := tasksWithStatuses(
		models.TaskComplete, models.TaskComplete, models.TaskActive,
		models.TaskLocked, models.TaskLocked,
	)

	stats := Stats(tasks)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 2, stats.Locked)
	assert.Equal(t, 40, stats.Progress)
	assert.False(t, stats.Complete)
}

func TestStats_FullWeekComplete(t *testing.T) {
	tasks := tasksWithStatuses(
		models.TaskComplete, models.TaskComplete, models.TaskComplete,
		models.TaskComplete, models.TaskComplete, models.TaskComplete,
		models.TaskComplete,
	)

	stats := Stats(tasks)

	assert.True(t, stats.Complete)
	assert.Equal(t, 100, stats.Progress)
}

func TestProgress_Rounding(t *testing.T) {
	assert.Equal(t, 0, Progress(0, 0))
	assert.Equal(t, 14, Progress(1, 7))
	assert.Equal(t, 29, Progress(2, 7))
	assert.Equal(t, 43, Progress(3, 7))
	assert.Equal(t, 57, Progress(4, 7))
	assert.Equal(t, 71, Progress(5, 7))
	assert.Equal(t, 86, Progress(6, 7))
	assert.Equal(t, 100, Progress(7, 7))
}
