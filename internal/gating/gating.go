// Package gating holds the pure sequencing rules for weekly goals and
// their day-gated tasks. It never touches storage: callers load state,
// ask for a decision, then apply the mutations it prescribes.
package gating

import (
	"fmt"
	"math"

	"devstreak/internal/models"
)

// WeekLength is the number of tasks that make up a full week.
const WeekLength = 7

// CreateDecision reports whether a new task may be added to a goal and,
// when allowed, which day it occupies and which status it starts in.
type CreateDecision struct {
	Allowed bool
	Day     int
	Status  models.TaskStatus
	Reason  string
}

// EvaluateCreate decides whether a task can be created under the given
// goal. Days are assigned sequentially: the next task always occupies
// position len(tasks)+1, the first day starts active and later days
// start locked until the cascade unlocks them.
func EvaluateCreate(goalStatus models.GoalStatus, tasks []models.Task) CreateDecision {
	if goalStatus == models.GoalComplete {
		return CreateDecision{Reason: "cannot add tasks to a completed weekly goal"}
	}
	if len(tasks) >= WeekLength {
		return CreateDecision{Reason: fmt.Sprintf("maximum %d tasks per week, this week is full", WeekLength)}
	}

	day := len(tasks) + 1
	if day > 1 && !hasDay(tasks, day-1) {
		// Guards against gaps if a prior create only partially applied.
		return CreateDecision{Reason: fmt.Sprintf("day %d must exist before day %d can be created", day-1, day)}
	}

	return CreateDecision{Allowed: true, Day: day, Status: InitialStatus(day)}
}

// InitialStatus returns the status a freshly created task starts in.
func InitialStatus(day int) models.TaskStatus {
	if day == 1 {
		return models.TaskActive
	}
	return models.TaskLocked
}

// CompleteDecision reports whether a task may transition to complete.
type CompleteDecision struct {
	Allowed         bool
	AlreadyComplete bool
	Reason          string
}

// EvaluateComplete decides whether the given task may be completed.
// Re-completing is not an error: the caller returns the prior record
// unchanged when AlreadyComplete is set.
func EvaluateComplete(task models.Task) CompleteDecision {
	switch task.Status {
	case models.TaskComplete:
		return CompleteDecision{AlreadyComplete: true}
	case models.TaskLocked:
		return CompleteDecision{Reason: fmt.Sprintf("this task is locked, complete day %d first", task.DayNumber-1)}
	default:
		return CompleteDecision{Allowed: true}
	}
}

// GoalCreateDecision reports whether a new weekly goal may be started.
// AutoComplete is set when the current active goal already has all
// seven tasks done but was never flipped, so the caller heals it first.
type GoalCreateDecision struct {
	Allowed      bool
	AutoComplete bool
	Completed    int
	Reason       string
}

// EvaluateGoalCreate decides whether the user may start a new week,
// given whether an active goal exists and how many of its tasks are
// complete.
func EvaluateGoalCreate(hasActive bool, completed int) GoalCreateDecision {
	if !hasActive {
		return GoalCreateDecision{Allowed: true}
	}
	if completed < WeekLength {
		return GoalCreateDecision{
			Completed: completed,
			Reason:    fmt.Sprintf("you have an incomplete weekly goal, complete all %d tasks before starting a new week", WeekLength),
		}
	}
	return GoalCreateDecision{Allowed: true, AutoComplete: true, Completed: completed}
}

// CompletionMessage phrases the completion outcome for the user,
// distinguishing the final task of the week, a mid-week completion that
// unlocked the next day, and a plain completion.
func CompletionMessage(day int, nextUnlocked, weekCompleted bool) string {
	switch {
	case weekCompleted:
		return "Task completed! This was the final task of the week."
	case nextUnlocked:
		return fmt.Sprintf("Task completed! Day %d is now unlocked.", day+1)
	default:
		return "Task completed!"
	}
}

// Stats aggregates task statuses for a goal. The week counts as
// complete only when all seven tasks exist and all seven are done.
func Stats(tasks []models.Task) models.TaskStats {
	stats := models.TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case models.TaskComplete:
			stats.Completed++
		case models.TaskActive:
			stats.Active++
		case models.TaskLocked:
			stats.Locked++
		}
	}
	stats.Progress = Progress(stats.Completed, stats.Total)
	stats.Complete = stats.Total == WeekLength && stats.Completed == WeekLength
	return stats
}

// Progress reports completion as a rounded integer percentage.
func Progress(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func hasDay(tasks []models.Task, day int) bool {
	for _, t := range tasks {
		if t.DayNumber == day {
			return true
		}
	}
	return false
}
