package server

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/abhisek/pytutor/internal/tutor"
)

const internalErrorMessage = "Internal server error"

func (s *Server) registerRoutes(limiter *rate.Limiter) {
	s.router.GET("/healthz", handleHealth())

	api := s.router.Group("/api")
	api.GET("/topics", s.handleTopics())
	api.POST("/chat", rateLimit(limiter), s.handleChat())
}

func handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func (s *Server) handleTopics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"sections": s.opts.Catalog.Sections()})
	}
}

// handleChat streams the tutor's reply as plain text, flushing after every
// chunk. Failures before the first byte produce a JSON 500; later failures
// end the body early.
func (s *Server) handleChat() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tutor.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.opts.Logger.Warn("malformed chat request", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
			return
		}

		ctx := c.Request.Context()
		if s.opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
			defer cancel()
		}

		emit := func(chunk string) error {
			if !c.Writer.Written() {
				c.Header("Content-Type", "text/plain; charset=utf-8")
				c.Header("Cache-Control", "no-cache")
				c.Header("X-Accel-Buffering", "no")
				c.Status(http.StatusOK)
			}
			if _, err := io.WriteString(c.Writer, chunk); err != nil {
				return err
			}
			c.Writer.Flush()
			return nil
		}

		if err := s.opts.Chat.Stream(ctx, req, emit); err != nil {
			s.opts.Logger.Error("chat stream failed", "error", err, "started", c.Writer.Written())
			if !c.Writer.Written() {
				c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
			}
			return
		}

		if !c.Writer.Written() {
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Status(http.StatusOK)
			c.Writer.WriteHeaderNow()
		}
	}
}
