// Package httpapi exposes the form pipeline over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/orchestrator"
	"github.com/goliatone/go-offerform/pkg/render"
	"github.com/goliatone/go-offerform/pkg/renderers/htmlform"
	"github.com/goliatone/go-offerform/pkg/state"
	"github.com/goliatone/go-offerform/pkg/summary"
)

// Pipeline is the part of the orchestrator the API serves.
type Pipeline interface {
	Form(count int, order []string) (model.FormModel, error)
	Render(ctx context.Context, name string, form model.FormModel, options render.RenderOptions) ([]byte, string, error)
	State(req orchestrator.Request) (*state.FormState, map[string][]string, error)
	Values(s *state.FormState) map[string]any
	Submit(ctx context.Context, req orchestrator.Request) (render.Outcome, error)
	Lookup(ctx context.Context, email string) (model.FormSubmission, bool, error)
	SaveDraft(ctx context.Context, s *state.FormState) error
	LoadDraft(ctx context.Context, email string) (*state.FormState, bool, error)
}

// Summarizer generates text from stored submissions.
type Summarizer interface {
	Summarize(ctx context.Context, email string) (string, error)
	Analyze(ctx context.Context, email, topic, extra string) (summary.Analysis, error)
}

var _ Pipeline = (*orchestrator.Orchestrator)(nil)
var _ Summarizer = (*summary.Service)(nil)

// Option configures a Server.
type Option func(*Server)

// WithSummarizer enables the summary and analysis endpoints.
func WithSummarizer(summarizer Summarizer) Option {
	return func(s *Server) {
		s.summaries = summarizer
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMode sets the gin mode ("debug", "release" or "test").
func WithMode(mode string) Option {
	return func(s *Server) {
		s.mode = mode
	}
}

// Server routes API requests to a pipeline.
type Server struct {
	pipeline  Pipeline
	summaries Summarizer
	logger    *slog.Logger
	mode      string
	engine    *gin.Engine
}

// New builds the router.
func New(pipeline Pipeline, opts ...Option) (*Server, error) {
	if pipeline == nil {
		return nil, errors.New("httpapi: pipeline is required")
	}
	s := &Server{pipeline: pipeline, mode: gin.ReleaseMode}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	gin.SetMode(s.mode)
	engine := gin.New()
	engine.Use(recovery(s.logger), requestLogger(s.logger))
	s.engine = engine
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("httpapi: serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("httpapi: shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	s.engine.StaticFS("/assets", http.FS(htmlform.AssetsFS()))

	api := s.engine.Group("/api")
	api.GET("/form", s.getForm)
	api.POST("/submissions", s.postSubmission)
	api.GET("/submissions/:email", s.getSubmission)
	api.POST("/submissions/:email/summary", s.postSummary)
	api.POST("/submissions/:email/analysis", s.postAnalysis)
	api.PUT("/drafts", s.putDraft)
	api.GET("/drafts/:email", s.getDraft)
}
