package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devs-assistent/server/internal/assistant"
	logx "github.com/devs-assistent/server/pkg/logger"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Session *assistant.Session
	Port    int
	// Timeout bounds each completion request; zero means no deadline.
	Timeout time.Duration
	Out     io.Writer
}

// Start launches the JSON API. It blocks until ctx is cancelled, then shuts
// down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Session == nil {
		return fmt.Errorf("server: session is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := NewRouter(opts.Session, opts.Timeout)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Devs-Assistent API running at http://localhost:%d\n", opts.Port)
	}
	logx.Info().Int("port", opts.Port).Str("session_id", opts.Session.ID).Msg("api server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// NewRouter builds the gin engine serving sess.
func NewRouter(sess *assistant.Session, timeout time.Duration) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	h := &handlers{sess: sess, timeout: timeout}
	api := router.Group("/api")
	api.GET("/status", h.status)
	api.POST("/chat", h.chat)
	api.GET("/turns", h.turns)
	api.GET("/turns/:index/export", h.exportTurn)
	api.GET("/history", h.history)
	api.DELETE("/history", h.clearHistory)
	api.POST("/history/:index", h.resubmitHistory)
	api.GET("/examples", h.examples)
	api.POST("/examples/:index", h.submitExample)
	api.GET("/theme", h.theme)
	api.PUT("/theme", h.setTheme)
	return router
}

func requestLogger() gin.HandlerFunc {
	log := logx.With("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
