// Package server exposes the extraction pipeline over HTTP: documents are
// uploaded into a per-client session and downloaded as one spreadsheet.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fjacquet/invoice-extract/internal/batch"
	"fjacquet/invoice-extract/internal/export"
	"fjacquet/invoice-extract/internal/logging"
	"fjacquet/invoice-extract/internal/models"
	"fjacquet/invoice-extract/internal/session"
)

// Deps are the components the handlers use.
type Deps struct {
	Processor *batch.Processor
	Sessions  *session.Manager
	Templates []models.Template
	// Encoder resolves an export format; "" selects the default.
	Encoder  func(format string) (export.Encoder, error)
	FileName string
	// MaxUploadBytes bounds one upload request.
	MaxUploadBytes int64
	Logger         logging.Logger
}

// Server is the HTTP upload surface.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	deps       Deps
	logger     logging.Logger
}

// New creates a Server with its routes registered.
func New(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.NewLogrusAdapter("info", "text")
	}
	if deps.FileName == "" {
		deps.FileName = export.DefaultFileName
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(deps.Logger))

	s := &Server{
		router: router,
		deps:   deps,
		logger: deps.Logger,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.setupRoutes()
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/v1")
	v1.GET("/templates", s.listTemplates)

	invoices := v1.Group("/invoices", s.withSession)
	invoices.POST("", s.upload)
	invoices.GET("", s.listInvoices)
	invoices.DELETE("", s.clearInvoices)
	invoices.GET("/export", s.exportInvoices)
	invoices.GET("/debug", s.debugReport)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
// Idle sessions are swept once a minute while serving.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", logging.F("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ticker.C:
			if n := s.deps.Sessions.Sweep(); n > 0 {
				s.logger.Debug("Swept idle sessions", logging.F(logging.FieldCount, n))
			}
		case <-ctx.Done():
			s.logger.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			s.logger.Info("Server exited gracefully")
			return nil
		}
	}
}
