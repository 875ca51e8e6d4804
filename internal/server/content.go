package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devstreak/internal/apperr"
	"devstreak/internal/content"
	"devstreak/internal/models"
	"devstreak/internal/storage/sqlite"
)

type generateContentRequest struct {
	TaskID string `json:"task_id" binding:"required"`
}

type previewContentRequest struct {
	Code          string `json:"code" binding:"required"`
	LearningNotes string `json:"learning_notes" binding:"required"`
	GoalType      string `json:"goal_type" binding:"required,oneof=learning product"`
	Examples      struct {
		X        string `json:"x"`
		LinkedIn string `json:"linkedin"`
		Blog     string `json:"blog"`
	} `json:"examples"`
}

// handleGenerateContent renders a completed task's submission into the
// three platform variants, styled by the user's example posts.
func (s *Server) handleGenerateContent(c *gin.Context) {
	var req generateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondValidation(c, err)
		return
	}

	ident := currentIdentity(c)
	ctx := c.Request.Context()

	task, err := s.store.GetTask(ctx, ident.UserID, req.TaskID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if task.Status != models.TaskComplete || task.Completion == nil {
		s.respondError(c, apperr.New(apperr.Precondition, "content can only be generated for completed tasks"))
		return
	}

	goal, err := s.store.GetGoal(ctx, ident.UserID, task.GoalID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	examples, err := s.styleExamples(c, ident.UserID, goal.Type)
	if err != nil {
		s.respondError(c, err)
		return
	}

	variants, err := s.generator.GeneratePost(ctx, content.Input{
		Code:          task.Completion.Code,
		LearningNotes: task.Completion.LearningNotes,
		GoalType:      goal.Type,
		Examples:      examples,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task_id":          task.ID,
		"day_number":       task.DayNumber,
		"goal_type":        goal.Type,
		"generated":        variants,
		"character_counts": variants.CharacterCounts(),
	})
}

// handlePreviewContent generates variants from raw material without a
// completed task behind it.
func (s *Server) handlePreviewContent(c *gin.Context) {
	var req previewContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondValidation(c, err)
		return
	}

	variants, err := s.generator.GeneratePost(c.Request.Context(), content.Input{
		Code:          req.Code,
		LearningNotes: req.LearningNotes,
		GoalType:      models.GoalType(req.GoalType),
		Examples: content.Examples{
			X:        req.Examples.X,
			LinkedIn: req.Examples.LinkedIn,
			Blog:     req.Examples.Blog,
		},
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"generated":        variants,
		"character_counts": variants.CharacterCounts(),
	})
}

// styleExamples collects the user's first style reference per platform
// for the given goal type.
func (s *Server) styleExamples(c *gin.Context, userID string, goalType models.GoalType) (content.Examples, error) {
	posts, err := s.store.ListExamplePosts(c.Request.Context(), userID, sqlite.ExamplePostFilter{Type: goalType})
	if err != nil {
		return content.Examples{}, err
	}

	var examples content.Examples
	for _, post := range posts {
		switch post.Platform {
		case models.PlatformX:
			if examples.X == "" {
				examples.X = post.Content
			}
		case models.PlatformLinkedIn:
			if examples.LinkedIn == "" {
				examples.LinkedIn = post.Content
			}
		case models.PlatformBlog:
			if examples.Blog == "" {
				examples.Blog = post.Content
			}
		}
	}
	return examples, nil
}
