// Package htmlform renders a form model as an HTML form fragment. Each field
// is drawn by the component registered for its widget hint.
package htmlform

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/render"
	rendertemplate "github.com/goliatone/go-offerform/pkg/render/template"
	"github.com/goliatone/go-offerform/pkg/render/template/pongo"
	"github.com/goliatone/go-offerform/pkg/widgets"
)

// Name is the registry name of the HTML renderer.
const Name = "html"

const templateName = "templates/form.tpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *Components
	overrides        map[string]string
	action           string
	assetsURL        string
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

// WithComponents replaces the component registry.
func WithComponents(components *Components) Option {
	return func(cfg *config) {
		if components != nil {
			cfg.components = components
		}
	}
}

// WithComponentOverrides forces a component per field key, ignoring the
// field's widget hint.
func WithComponentOverrides(overrides map[string]string) Option {
	return func(cfg *config) {
		if len(overrides) == 0 {
			return
		}
		if cfg.overrides == nil {
			cfg.overrides = make(map[string]string, len(overrides))
		}
		for key, name := range overrides {
			cfg.overrides[key] = name
		}
	}
}

// WithAction sets the form action URL.
func WithAction(action string) Option {
	return func(cfg *config) {
		cfg.action = strings.TrimSpace(action)
	}
}

// WithAssetsURL links the stylesheet and runtime script from prefix instead
// of inlining them.
func WithAssetsURL(prefix string) Option {
	return func(cfg *config) {
		cfg.assetsURL = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	components *Components
	overrides  map[string]string
	action     string
	assetsURL  string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
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
	if cfg.components == nil {
		cfg.components = DefaultComponents()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithName("offerform-html"),
			pongo.WithFS(cfg.templateFS),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:  renderer,
		components: cfg.components,
		overrides:  cfg.overrides,
		action:     cfg.action,
		assetsURL:  cfg.assetsURL,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	scalars, err := r.renderFields(form.Fields, options)
	if err != nil {
		return nil, err
	}
	groups := []map[string]any{{"title": "", "fields": scalars}}
	for _, section := range form.Sections {
		fields, err := r.renderFields(section.Fields, options)
		if err != nil {
			return nil, err
		}
		groups = append(groups, map[string]any{"title": section.ID, "fields": fields})
	}

	data := map[string]any{
		"form":        form,
		"groups":      groups,
		"form_errors": options.FormErrors,
		"action":      r.action,
	}
	if r.assetsURL != "" {
		data["stylesheet_url"] = r.assetsURL + "/" + StylesheetName
		data["script_url"] = r.assetsURL + "/" + RuntimeScriptName
	} else {
		data["stylesheet"] = readAsset(StylesheetName)
		data["script"] = readAsset(RuntimeScriptName)
	}

	result, err := r.templates.RenderTemplate(templateName, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) renderFields(fields []model.FieldSpec, options render.RenderOptions) ([]string, error) {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		markup, err := r.renderField(field, options)
		if err != nil {
			return nil, err
		}
		out = append(out, markup)
	}
	return out, nil
}

func (r *Renderer) renderField(field model.FieldSpec, options render.RenderOptions) (string, error) {
	componentName := r.overrides[field.Key]
	if componentName == "" {
		componentName = field.Widget
	}
	if componentName == "" {
		componentName = widgets.WidgetInput
	}

	descriptor, ok := r.components.Descriptor(componentName)
	if !ok {
		return "", fmt.Errorf("html renderer: component %q not registered for field %q", componentName, field.Key)
	}

	view := newFieldView(field, options)
	var control bytes.Buffer
	if err := descriptor.Renderer(&control, view, r.templates); err != nil {
		return "", fmt.Errorf("html renderer: render component %q for field %q: %w", componentName, field.Key, err)
	}
	return buildFieldMarkup(view, componentName, descriptor, control.String()), nil
}
