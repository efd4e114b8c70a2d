// Package api exposes the generation pipeline over HTTP.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"soulthread/internal/generator"
	"soulthread/internal/mailer"
	"soulthread/internal/usecase"
)

// Server bundles the HTTP handlers and their collaborators.
type Server struct {
	newsletter *usecase.Newsletter
	dispatcher *usecase.Dispatcher
	enhancer   *generator.OpenAIClient
	mail       *mailer.ResendClient
	cronSecret string
	logger     *slog.Logger
}

// ServerDeps lists the handler collaborators. Enhancer and mail may be nil;
// their endpoints report the feature as unavailable.
type ServerDeps struct {
	Newsletter *usecase.Newsletter
	Dispatcher *usecase.Dispatcher
	Enhancer   *generator.OpenAIClient
	Mail       *mailer.ResendClient
	CronSecret string
	Logger     *slog.Logger
}

// NewServer wires the handler set.
func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		newsletter: deps.Newsletter,
		dispatcher: deps.Dispatcher,
		enhancer:   deps.Enhancer,
		mail:       deps.Mail,
		cronSecret: deps.CronSecret,
		logger:     logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestID())

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", s.handleHealth)
		apiGroup.POST("/generate", s.handleGenerate)
		apiGroup.POST("/enhance", s.handleEnhance)
		apiGroup.POST("/email/test", s.handleEmailTest)
		apiGroup.GET("/cron/send-newsletters", s.handleCronInfo)
		apiGroup.POST("/cron/send-newsletters", s.handleCronDispatch)
	}
	return router
}

// requestID tags every request for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
