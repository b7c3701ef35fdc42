// Package server is the HTTP request boundary: it validates the request,
// runs the pipeline and maps failures to a uniform {error} body.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/JoseCortezz25/craft-canvas/internal/logger"
	"github.com/JoseCortezz25/craft-canvas/internal/orchestrator"
)

// Options configures the server.
type Options struct {
	// Generator runs the pipeline. It may be nil when ConfigErr is set.
	Generator orchestrator.Generator
	// ConfigErr is a startup configuration failure, typically a missing
	// credential. Every generate request answers with it without running
	// anything.
	ConfigErr   error
	Logger      *logger.Logger
	CORSOrigins []string
	ServiceName string
}

// Server serves the generate endpoints.
type Server struct {
	gen       orchestrator.Generator
	configErr error
	log       *logger.Logger
	engine    *gin.Engine
}

// New builds the gin engine and routes.
func New(opts Options) (*Server, error) {
	if opts.Generator == nil && opts.ConfigErr == nil {
		return nil, errors.New("server: a generator or a configuration error is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	service := opts.ServiceName
	if service == "" {
		service = "craftcanvas"
	}

	s := &Server{gen: opts.Generator, configErr: opts.ConfigErr, log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(service))
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	if len(opts.CORSOrigins) > 0 {
		r.Use(CORS(opts.CORSOrigins))
	}

	r.GET("/healthz", s.handleHealth)
	r.GET("/generate", s.handleStatus)
	r.POST("/generate", s.handleGenerate)
	s.engine = r
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// CORS allows the configured origins to call the API from a browser.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", headerRequestID},
		ExposeHeaders: []string{headerRequestID},
	})
}
