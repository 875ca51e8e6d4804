package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devstreak/internal/models"
	"devstreak/internal/storage/sqlite"
)

type createExamplePostRequest struct {
	Type     string `json:"type" binding:"required,oneof=learning product"`
	Platform string `json:"platform" binding:"required,oneof=x linkedin blog"`
	Content  string `json:"content" binding:"required"`
}

// handleCreateExamplePost stores a style reference, capped at two per
// type and platform.
func (s *Server) handleCreateExamplePost(c *gin.Context) {
	var req createExamplePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondValidation(c, err)
		return
	}

	ident := currentIdentity(c)
	post, err := s.store.CreateExamplePost(c.Request.Context(), ident.UserID,
		models.GoalType(req.Type), models.Platform(req.Platform), req.Content)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"example_post": post})
}

// handleListExamplePosts returns the user's style references,
// optionally filtered by type and platform. Unknown filter values are
// ignored.
func (s *Server) handleListExamplePosts(c *gin.Context) {
	filter := sqlite.ExamplePostFilter{}
	if goalType := models.GoalType(c.Query("type")); isValidGoalType(goalType) {
		filter.Type = goalType
	}
	if platform := models.Platform(c.Query("platform")); isValidPlatform(platform) {
		filter.Platform = platform
	}

	ident := currentIdentity(c)
	posts, err := s.store.ListExamplePosts(c.Request.Context(), ident.UserID, filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"example_posts": posts, "count": len(posts)})
}

// handleDeleteExamplePost removes one of the user's style references.
func (s *Server) handleDeleteExamplePost(c *gin.Context) {
	ident := currentIdentity(c)
	if err := s.store.DeleteExamplePost(c.Request.Context(), ident.UserID, c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func isValidPlatform(p models.Platform) bool {
	_, ok := models.ValidPlatforms[p]
	return ok
}
