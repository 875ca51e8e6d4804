package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"devstreak/internal/apperr"
	"devstreak/internal/content"
	"devstreak/internal/identity"
	"devstreak/internal/payments"
	"devstreak/internal/storage/sqlite"
)

// Server provides the HTTP surface over the stores and the external
// collaborators.
type Server struct {
	engine      *gin.Engine
	store       *sqlite.Store
	verifier    identity.Verifier
	generator   content.Generator
	payments    payments.Provider
	catalog     *payments.Catalog
	logger      *slog.Logger
	staticDir   string
	siteBaseURL string
}

// Options wires the server's dependencies.
type Options struct {
	Store       *sqlite.Store
	Verifier    identity.Verifier
	Generator   content.Generator
	Payments    payments.Provider
	Catalog     *payments.Catalog
	Logger      *slog.Logger
	StaticDir   string
	SiteBaseURL string
}

// New constructs the HTTP server with routes and middleware configured.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api"))

	srv := &Server{
		engine:      router,
		store:       opts.Store,
		verifier:    opts.Verifier,
		generator:   opts.Generator,
		payments:    opts.Payments,
		catalog:     opts.Catalog,
		logger:      logger,
		staticDir:   opts.StaticDir,
		siteBaseURL: opts.SiteBaseURL,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	api.GET("/healthz", s.handleHealth)

	auth := api.Group("", s.authRequired())
	{
		goals := auth.Group("/goals")
		{
			goals.POST("", s.handleCreateGoal)
			goals.GET("", s.handleListGoals)
			goals.GET(":id", s.handleGetGoal)
			goals.PUT(":id", s.handleUpdateGoal)
			goals.GET(":id/wrapup", s.handleGoalWrapup)
		}

		tasks := auth.Group("/tasks")
		{
			tasks.POST("", s.handleCreateTask)
			tasks.GET("", s.handleListTasks)
			tasks.GET(":id", s.handleGetTask)
			tasks.PUT(":id", s.handleUpdateTask)
			tasks.POST(":id/complete", s.handleCompleteTask)
			tasks.GET(":id/completion", s.handleGetCompletion)
		}

		generated := auth.Group("/content")
		{
			generated.POST("/generate", s.handleGenerateContent)
			generated.POST("/preview", s.handlePreviewContent)
		}

		examples := auth.Group("/examples")
		{
			examples.POST("", s.handleCreateExamplePost)
			examples.GET("", s.handleListExamplePosts)
			examples.DELETE(":id", s.handleDeleteExamplePost)
		}

		auth.POST("/checkout", s.handleCheckout)
		auth.POST("/payments/verify", s.handleVerifyPayment)
		auth.GET("/payments", s.handleListPayments)
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError logs the failure and writes the taxonomy-mapped JSON
// payload: a stable machine-readable code plus a human message, and
// structured details when the error carries them.
func (s *Server) respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	message := err.Error()
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if kind == apperr.Internal {
		message = "internal server error"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	} else {
		s.logger.Warn("request rejected", slog.String("path", c.FullPath()), slog.String("code", string(kind)), slog.String("error", message))
	}

	body := gin.H{"error": message, "code": string(kind)}
	if details := apperr.DetailsOf(err); details != nil {
		body["details"] = details
	}
	c.JSON(status, body)
}

// respondValidation reports a malformed request body.
func (s *Server) respondValidation(c *gin.Context, err error) {
	s.respondError(c, apperr.Wrap(apperr.Validation, err.Error(), err))
}
