package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"devstreak/internal/apperr"
	"devstreak/internal/models"
	"devstreak/internal/validate"
)

type resourceRequest struct {
	URL   string `json:"url" binding:"required,url"`
	Title string `json:"title"`
}

type createTaskRequest struct {
	GoalID      string            `json:"goal_id" binding:"required"`
	Description string            `json:"description" binding:"required"`
	Resources   []resourceRequest `json:"resources" binding:"omitempty,dive"`
}

type updateTaskRequest struct {
	Description *string           `json:"description"`
	Resources   []resourceRequest `json:"resources" binding:"omitempty,dive"`
}

type completeTaskRequest struct {
	Code          string `json:"code"`
	LearningNotes string `json:"learning_notes"`
	RepoURL       string `json:"repo_url"`
}

// handleCreateTask adds the next sequential task to a goal, subject to
// the gating rules.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondValidation(c, err)
		return
	}

	ident := currentIdentity(c)
	task, err := s.store.CreateTask(c.Request.Context(), ident.UserID, req.GoalID, req.Description, toResources(req.Resources))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// handleListTasks fetches a goal's tasks in day order.
func (s *Server) handleListTasks(c *gin.Context) {
	goalID := c.Query("goal_id")
	if goalID == "" {
		s.respondError(c, apperr.New(apperr.Validation, "goal_id query parameter is required"))
		return
	}

	ident := currentIdentity(c)
	tasks, err := s.store.ListTasks(c.Request.Context(), ident.UserID, goalID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

// handleGetTask fetches a single task owned by the requester.
func (s *Server) handleGetTask(c *gin.Context) {
	ident := currentIdentity(c)
	task, err := s.store.GetTask(c.Request.Context(), ident.UserID, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// handleUpdateTask changes a task's description or resources.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondValidation(c, err)
		return
	}

	var resources []models.Resource
	if req.Resources != nil {
		resources = toResources(req.Resources)
	}

	ident := currentIdentity(c)
	task, err := s.store.UpdateTask(c.Request.Context(), ident.UserID, c.Param("id"), req.Description, resources)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// handleCompleteTask validates and sanitizes the submission, then runs
// the completion cascade. Completing an already-complete task returns
// the prior record unchanged.
func (s *Server) handleCompleteTask(c *gin.Context) {
	var req completeTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondValidation(c, err)
		return
	}

	code := validate.SanitizeCode(req.Code)
	notes := validate.SanitizeNotes(req.LearningNotes)
	repoURL := strings.TrimSpace(req.RepoURL)

	var reasons []string
	if err := validate.Code(code); err != nil {
		reasons = append(reasons, err.Error())
	}
	if err := validate.LearningNotes(notes); err != nil {
		reasons = append(reasons, err.Error())
	}
	if repoURL != "" {
		if err := validate.RepoURL(repoURL); err != nil {
			reasons = append(reasons, err.Error())
		}
	}
	if len(reasons) > 0 {
		s.respondError(c, apperr.New(apperr.Validation, strings.Join(reasons, "; ")))
		return
	}

	ident := currentIdentity(c)
	ctx := c.Request.Context()

	if repoURL != "" {
		if err := s.attachRepoResource(c, ident.UserID, repoURL); err != nil {
			s.respondError(c, err)
			return
		}
	}

	task, result, err := s.store.CompleteTask(ctx, ident.UserID, c.Param("id"), code, notes)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task, "result": result})
}

// handleGetCompletion returns what the user submitted for a completed
// task.
func (s *Server) handleGetCompletion(c *gin.Context) {
	ident := currentIdentity(c)
	task, err := s.store.GetTask(c.Request.Context(), ident.UserID, c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if task.Status != models.TaskComplete || task.Completion == nil {
		s.respondError(c, apperr.New(apperr.Precondition, "task is not completed yet"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task_id":     task.ID,
		"day_number":  task.DayNumber,
		"description": task.Description,
		"completion":  task.Completion,
	})
}

// attachRepoResource links the submitted repository to the task unless
// it is already listed.
func (s *Server) attachRepoResource(c *gin.Context, userID, repoURL string) error {
	taskID := c.Param("id")
	task, err := s.store.GetTask(c.Request.Context(), userID, taskID)
	if err != nil {
		return err
	}
	// Locked and completed tasks are left alone; the completion call
	// reports their state.
	if task.Status != models.TaskActive {
		return nil
	}
	for _, r := range task.Resources {
		if r.URL == repoURL {
			return nil
		}
	}
	resources := append(task.Resources, models.Resource{URL: repoURL, Title: "Repository"})
	_, err = s.store.UpdateTask(c.Request.Context(), userID, taskID, nil, resources)
	return err
}

func toResources(reqs []resourceRequest) []models.Resource {
	resources := make([]models.Resource, 0, len(reqs))
	for _, r := range reqs {
		resources = append(resources, models.Resource{URL: r.URL, Title: r.Title})
	}
	return resources
}
