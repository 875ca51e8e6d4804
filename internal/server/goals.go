package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devstreak/internal/apperr"
	"devstreak/internal/content"
	"devstreak/internal/gating"
	"devstreak/internal/models"
	"devstreak/internal/storage/sqlite"
)

type createGoalRequest struct {
	Title string `json:"title" binding:"required"`
	Type  string `json:"type" binding:"required,oneof=learning product"`
}

type updateGoalRequest struct {
	Title *string `json:"title"`
	Type  *string `json:"type" binding:"omitempty,oneof=learning product"`
}

// handleCreateGoal starts a new weekly goal, blocked while an
// incomplete active week exists.
func (s *Server) handleCreateGoal(c *gin.Context) {
	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondValidation(c, err)
		return
	}

	ident := currentIdentity(c)
	goal, err := s.store.CreateGoal(c.Request.Context(), ident.UserID, req.Title, models.GoalType(req.Type))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// handleListGoals returns the user's goals with live task counts,
// optionally filtered by status and type. Unknown filter values are
// ignored rather than rejected.
func (s *Server) handleListGoals(c *gin.Context) {
	filter := sqlite.GoalFilter{}
	if status := models.GoalStatus(c.Query("status")); status == models.GoalActive || status == models.GoalComplete {
		filter.Status = status
	}
	if goalType := models.GoalType(c.Query("type")); isValidGoalType(goalType) {
		filter.Type = goalType
	}

	ident := currentIdentity(c)
	goals, err := s.store.ListGoals(c.Request.Context(), ident.UserID, filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals, "count": len(goals)})
}

// handleGetGoal returns one goal with its tasks and aggregate stats.
func (s *Server) handleGetGoal(c *gin.Context) {
	ident := currentIdentity(c)
	goal, err := s.store.GetGoal(c.Request.Context(), ident.UserID, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	tasks, err := s.store.ListTasks(c.Request.Context(), ident.UserID, goal.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"goal":       goal,
		"tasks":      tasks,
		"task_stats": gating.Stats(tasks),
	})
}

// handleUpdateGoal renames or retypes a goal. Status stays under the
// completion cascade's control.
func (s *Server) handleUpdateGoal(c *gin.Context) {
	var req updateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondValidation(c, err)
		return
	}

	var goalType *models.GoalType
	if req.Type != nil {
		t := models.GoalType(*req.Type)
		goalType = &t
	}

	ident := currentIdentity(c)
	goal, err := s.store.UpdateGoal(c.Request.Context(), ident.UserID, c.Param("id"), req.Title, goalType)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// handleGoalWrapup generates the weekly wrap-up variants for a
// finished week from all seven completion payloads.
func (s *Server) handleGoalWrapup(c *gin.Context) {
	ident := currentIdentity(c)
	ctx := c.Request.Context()

	goal, err := s.store.GetGoal(ctx, ident.UserID, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	tasks, err := s.store.ListTasks(ctx, ident.UserID, goal.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	stats := gating.Stats(tasks)
	if !stats.Complete {
		s.respondError(c, apperr.Newf(apperr.Precondition,
			"wrap-up needs a finished week, %d/%d tasks completed", stats.Completed, gating.WeekLength))
		return
	}

	days := make([]content.DayRecap, 0, len(tasks))
	for _, task := range tasks {
		if task.Completion == nil {
			s.respondError(c, apperr.Newf(apperr.Precondition, "day %d has no completion data", task.DayNumber))
			return
		}
		days = append(days, content.DayRecap{
			DayNumber:     task.DayNumber,
			Description:   task.Description,
			Code:          task.Completion.Code,
			LearningNotes: task.Completion.LearningNotes,
		})
	}

	examples, err := s.styleExamples(c, ident.UserID, goal.Type)
	if err != nil {
		s.respondError(c, err)
		return
	}

	variants, err := s.generator.GenerateWrapup(ctx, content.WrapupInput{
		WeekTitle: goal.Title,
		GoalType:  goal.Type,
		Days:      days,
		Examples:  examples,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"goal_id":   goal.ID,
		"title":     goal.Title,
		"goal_type": goal.Type,
		"generated": variants,
	})
}

func isValidGoalType(t models.GoalType) bool {
	_, ok := models.ValidGoalTypes[t]
	return ok
}
