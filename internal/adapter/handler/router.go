package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/johnquangdev/opportunity-notes/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg         *config.Config
	notes       *Notes
	transcripts *Transcripts
	modelName   string
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, notes *Notes, transcripts *Transcripts, modelName string) *Router {
	return &Router{
		cfg:         cfg,
		notes:       notes,
		transcripts: transcripts,
		modelName:   modelName,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupTranscriptRoutes(v1)
	rt.setupRunRoutes(v1)
}

// setupTranscriptRoutes configures transcript cleanup and transcription routes
func (rt *Router) setupTranscriptRoutes(g *echo.Group) {
	if rt.transcripts == nil {
		g.POST("/transcripts/normalize", rt.notImplemented)
		g.POST("/transcriptions", rt.notImplemented)
		return
	}
	g.POST("/transcripts/normalize", rt.transcripts.Normalize)
	g.POST("/transcriptions", rt.transcripts.Transcribe)
}

// setupRunRoutes configures note generation, history, export and push routes
func (rt *Router) setupRunRoutes(g *echo.Group) {
	runs := g.Group("/runs")

	if rt.notes == nil {
		runs.Any("", rt.notImplemented)
		runs.Any("/*", rt.notImplemented)
		return
	}

	runs.POST("", rt.notes.CreateRun)
	runs.GET("", rt.notes.ListRuns)
	runs.GET("/:id", rt.notes.GetRun)
	runs.POST("/:id/notes/:index/regenerate", rt.notes.Regenerate)
	runs.GET("/:id/export", rt.notes.Export)
	runs.POST("/:id/push", rt.notes.Push)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":   "This endpoint is not yet implemented",
		"path":    c.Request().URL.Path,
		"method":  c.Request().Method,
		"message": "Please initialize the required handler in main.go",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := ""
	if rt.cfg != nil {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": env,
		"model":       rt.modelName,
	})
}
