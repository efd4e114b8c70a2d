package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"soulthread/internal/analysis"
	"soulthread/internal/domain"
	"soulthread/internal/generator"
	"soulthread/internal/usecase"
)

type generateRequest struct {
	UserID          string `json:"userId"`
	Topic           string `json:"topic"`
	UseRealTimeData *bool  `json:"useRealTimeData"`
	UseTemplate     bool   `json:"useTemplate"`
	Stream          bool   `json:"stream"`
}

type enhanceRequest struct {
	Content string `json:"content" binding:"required"`
	Kind    string `json:"enhancementType"`
	Tone    string `json:"tone"`
}

type emailTestRequest struct {
	To string `json:"to" binding:"required,email"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// handleGenerate runs one generation pass. Real-time data is the default;
// callers opt out explicitly.
func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	useRealTime := true
	if req.UseRealTimeData != nil {
		useRealTime = *req.UseRealTimeData
	}

	result, stream, err := s.newsletter.Generate(c.Request.Context(), domain.GenerationRequest{
		UserID:          req.UserID,
		Topic:           req.Topic,
		UseRealTimeData: useRealTime,
		UseTemplate:     req.UseTemplate,
		Stream:          req.Stream,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrMissingUserID) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		s.logger.Error("generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "generation failed"})
		return
	}

	if stream != nil {
		defer stream.Close()
		s.writeStream(c, result, stream)
		return
	}
	c.JSON(http.StatusOK, result)
}

// writeStream copies model tokens to the client as they arrive. Metadata
// rides in headers set up front. A provider failure mid-stream must not look
// like a complete draft, so the connection is torn down without the
// terminating chunk and the client's read fails.
func (s *Server) writeStream(c *gin.Context, result *domain.GenerationResult, stream io.Reader) {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("X-Data-Source", result.DataSource)
	c.Header("X-News-Item-Count", strconv.Itoa(result.NewsItemCount))
	c.Status(http.StatusOK)

	flusher, canFlush := c.Writer.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, err := stream.Read(buf)
		if n > 0 {
			if _, werr := c.Writer.Write(buf[:n]); werr != nil {
				return
			}
			if canFlush {
				flusher.Flush()
			}
		}
		if err != nil {
			if err != io.EOF {
				s.logger.Warn("stream interrupted", "error", err)
				s.abortStream(c)
			}
			return
		}
	}
}

// abortStream closes the underlying connection mid-response so the client
// sees an abnormal end of body instead of a clean EOF after partial content.
func (s *Server) abortStream(c *gin.Context) {
	hijacker, ok := c.Writer.(http.Hijacker)
	if !ok {
		panic(http.ErrAbortHandler)
	}
	conn, _, err := hijacker.Hijack()
	if err != nil {
		panic(http.ErrAbortHandler)
	}
	conn.Close()
}

// handleEnhance runs a rewrite pass over submitted content and returns the
// result with a quality report.
func (s *Server) handleEnhance(c *gin.Context) {
	var req enhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "content is required"})
		return
	}
	if s.enhancer == nil || !s.enhancer.Configured() {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "enhancement is not configured"})
		return
	}

	kind := generator.EnhanceKind(req.Kind)
	if kind == "" {
		kind = generator.EnhanceSummarize
	}
	enhanced := s.enhancer.Enhance(c.Request.Context(), req.Content, kind, req.Tone)

	c.JSON(http.StatusOK, gin.H{
		"content":  enhanced,
		"enhanced": enhanced != req.Content,
		"analysis": analysis.Validate(enhanced),
	})
}

// handleEmailTest sends a fixed test newsletter to one address.
func (s *Server) handleEmailTest(c *gin.Context) {
	var req emailTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "a valid 'to' address is required"})
		return
	}
	if s.mail == nil || !s.mail.Configured() {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "email delivery is not configured"})
		return
	}

	messageID, err := s.mail.SendTest(c.Request.Context(), req.To)
	if err != nil {
		s.logger.Error("test email failed", "error", err)
		c.JSON(http.StatusBadGateway, errorResponse{Error: "test email failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true, "messageId": messageID})
}

// handleCronInfo describes the endpoint for operators poking at it.
func (s *Server) handleCronInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"endpoint": "/api/cron/send-newsletters",
		"method":   http.MethodPost,
		"auth":     "Bearer token via Authorization header",
	})
}

// handleCronDispatch triggers the scheduled delivery run. External callers
// must present the shared cron secret.
func (s *Server) handleCronDispatch(c *gin.Context) {
	if s.cronSecret == "" || c.GetHeader("Authorization") != "Bearer "+s.cronSecret {
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	summary, err := s.dispatcher.Run(c.Request.Context(), time.Now())
	if err != nil {
		s.logger.Error("dispatch run failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "dispatch failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
