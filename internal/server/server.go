// Package server exposes the tutor chat service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/abhisek/pytutor/internal/curriculum"
	"github.com/abhisek/pytutor/internal/tutor"
)

// Chatter streams a tutor reply for one chat request.
type Chatter interface {
	Stream(ctx context.Context, req tutor.ChatRequest, emit func(string) error) error
}

// Options holds configuration for the chat server.
type Options struct {
	Chat    Chatter
	Catalog *curriculum.Catalog
	Logger  *slog.Logger

	// RateLimit is the sustained chat requests per second. Zero disables
	// limiting.
	RateLimit float64
	Burst     int

	// Timeout bounds a whole chat exchange. Zero means no bound.
	Timeout time.Duration
}

// Server is the HTTP front of the tutor.
type Server struct {
	opts   Options
	router *gin.Engine
}

// New builds a Server and registers its routes.
func New(opts Options) (*Server, error) {
	if opts.Chat == nil {
		return nil, fmt.Errorf("server: chat service is required")
	}
	if opts.Catalog == nil {
		opts.Catalog = curriculum.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(opts.Logger))

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst)
	}

	s := &Server{opts: opts, router: router}
	s.registerRoutes(limiter)
	return s, nil
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.opts.Logger.Info("server listening", "addr", ln.Addr().String())

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}
