// Package summary turns stored submissions into generated business summaries
// and topic analyses, and keeps every generated text next to the record it
// came from.
package summary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/goliatone/go-offerform/pkg/model"
	rendertemplate "github.com/goliatone/go-offerform/pkg/render/template"
	"github.com/goliatone/go-offerform/pkg/render/template/pongo"
	"github.com/goliatone/go-offerform/pkg/store"
)

const (
	templateProfile  = "templates/profile.tpl"
	templateSummary  = "templates/summary.tpl"
	templateAnalysis = "templates/analysis.tpl"
)

var (
	// ErrNoRecord is returned when no submission exists for the email.
	ErrNoRecord = errors.New("summary: no submission for email")
	// ErrNoTopic is returned by Analyze when the topic is blank.
	ErrNoTopic = errors.New("summary: topic is required")
	// ErrEmptyOutput is returned when the generator produced no text.
	ErrEmptyOutput = errors.New("summary: generator returned no text")
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function into a Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate delegates to the underlying function.
func (fn GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return fn(ctx, prompt)
}

// Analysis is one generated topic analysis.
type Analysis struct {
	Email    string `json:"email"`
	Topic    string `json:"topic"`
	Context  string `json:"context"`
	Analysis string `json:"analysis"`
}

// Option configures a Service.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	logger           *slog.Logger
}

// WithTemplatesFS replaces the embedded prompt templates. The bundle must
// provide the same template paths.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// Service reads submissions through the gateway, prompts the generator and
// appends the results to the business_summaries and llm_outputs tables.
type Service struct {
	gateway   *store.Gateway
	generator Generator
	templates rendertemplate.TemplateRenderer
	logger    *slog.Logger
}

// New constructs a Service.
func New(gateway *store.Gateway, generator Generator, options ...Option) (*Service, error) {
	if gateway == nil {
		return nil, errors.New("summary: gateway is required")
	}
	if generator == nil {
		return nil, errors.New("summary: generator is required")
	}

	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithName("offerform-summary"),
			pongo.WithFS(cfg.templateFS),
		)
		if err != nil {
			return nil, fmt.Errorf("summary: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Service{
		gateway:   gateway,
		generator: generator,
		templates: renderer,
		logger:    cfg.logger,
	}, nil
}

// Profile renders the "Business Information" block for a record: the scalar
// answers followed by every ticket item in order.
func (s *Service) Profile(record model.FormSubmission) (string, error) {
	items := make([]map[string]any, 0, len(record.TicketItems))
	for idx, item := range record.TicketItems {
		section := ""
		if idx < len(record.TicketOrder) {
			section = record.TicketOrder[idx]
		}
		items = append(items, map[string]any{"section": section, "item": item})
	}
	out, err := s.templates.RenderTemplate(templateProfile, map[string]any{
		"record": record,
		"items":  items,
	})
	if err != nil {
		return "", fmt.Errorf("summary: render profile: %w", err)
	}
	return out, nil
}

// Summarize generates a business summary for the submission stored under
// email and records it in business_summaries.
func (s *Service) Summarize(ctx context.Context, email string) (string, error) {
	record, err := s.lookup(ctx, email)
	if err != nil {
		return "", err
	}
	profile, err := s.Profile(record)
	if err != nil {
		return "", err
	}
	prompt, err := s.templates.RenderTemplate(templateSummary, map[string]any{"profile": profile})
	if err != nil {
		return "", fmt.Errorf("summary: render prompt: %w", err)
	}

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := s.gateway.Append(ctx, store.TableSummaries, store.Document{
		"email":   record.Email,
		"summary": text,
	}); err != nil {
		return "", err
	}
	s.logger.Info("summary stored", "email", record.Email, "chars", len(text))
	return text, nil
}

// Analyze generates an analysis of topic for the submission stored under
// email, optionally steered by extra notes, and records it in llm_outputs.
func (s *Service) Analyze(ctx context.Context, email, topic, extra string) (Analysis, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Analysis{}, ErrNoTopic
	}
	record, err := s.lookup(ctx, email)
	if err != nil {
		return Analysis{}, err
	}
	profile, err := s.Profile(record)
	if err != nil {
		return Analysis{}, err
	}

	background := profile
	if extra = strings.TrimSpace(extra); extra != "" {
		background += "\nAdditional notes:\n" + extra + "\n"
	}
	prompt, err := s.templates.RenderTemplate(templateAnalysis, map[string]any{
		"topic":   topic,
		"extra":   extra,
		"context": background,
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("summary: render prompt: %w", err)
	}

	text, err := s.generate(ctx, prompt)
	if err != nil {
		return Analysis{}, err
	}
	out := Analysis{Email: record.Email, Topic: topic, Context: background, Analysis: text}
	if err := s.gateway.Append(ctx, store.TableOutputs, store.Document{
		"email":    out.Email,
		"context":  out.Context,
		"topic":    out.Topic,
		"analysis": out.Analysis,
	}); err != nil {
		return Analysis{}, err
	}
	s.logger.Info("analysis stored", "email", out.Email, "topic", topic)
	return out, nil
}

func (s *Service) lookup(ctx context.Context, email string) (model.FormSubmission, error) {
	record, found, err := s.gateway.FindByIdentifier(ctx, strings.TrimSpace(email))
	if err != nil {
		return model.FormSubmission{}, err
	}
	if !found {
		return model.FormSubmission{}, fmt.Errorf("%w: %s", ErrNoRecord, email)
	}
	return record, nil
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summary: generate: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyOutput
	}
	return text, nil
}
