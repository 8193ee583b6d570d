// Package text renders a form model as a plain-text guide suitable for
// terminals and email bodies.
package text

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/render"
	rendertemplate "github.com/goliatone/go-offerform/pkg/render/template"
	"github.com/goliatone/go-offerform/pkg/render/template/pongo"
)

// Name is the registry name of the text renderer.
const Name = "text"

const templateName = "templates/form.tpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
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

type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the text renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithName("offerform-text"),
			pongo.WithFS(cfg.templateFS),
		)
		if err != nil {
			return nil, fmt.Errorf("text renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("text renderer: template renderer is nil")
	}

	groups := []map[string]any{{"title": "", "fields": fieldViews(form.Fields, options)}}
	for _, section := range form.Sections {
		groups = append(groups, map[string]any{
			"title":  section.ID,
			"fields": fieldViews(section.Fields, options),
		})
	}

	result, err := r.templates.RenderTemplate(templateName, map[string]any{
		"form":        form,
		"groups":      groups,
		"form_errors": options.FormErrors,
	})
	if err != nil {
		return nil, fmt.Errorf("text renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func fieldViews(fields []model.FieldSpec, options render.RenderOptions) []map[string]any {
	out := make([]map[string]any, 0, len(fields))
	for _, field := range fields {
		label := field.Label
		if label == "" {
			label = field.Key
		}
		value, hasValue := options.Values[field.Key]
		if hasValue && value == nil {
			hasValue = false
		}
		out = append(out, map[string]any{
			"key":        field.Key,
			"label":      label,
			"help":       field.Help,
			"options":    field.Enum,
			"depends_on": field.DependsOn,
			"has_value":  hasValue,
			"value":      value,
			"money":      field.Type == model.FieldTypeInteger,
			"errors":     options.Errors[field.Key],
		})
	}
	return out
}
