// Package pongo implements template.TemplateRenderer on pongo2.
package pongo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-offerform/pkg/render/template"
)

// Extension is appended to template names that lack it.
const Extension = ".tpl"

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	name  string
	files fs.FS
}

// WithFS loads templates from files.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.files = files
	}
}

// WithName labels the template set in pongo2 error messages.
func WithName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.name = trimmed
		}
	}
}

// Engine renders the templates of one fs.FS. Parsed templates are cached by
// the underlying pongo2 set.
type Engine struct {
	set *pongo2.TemplateSet
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine over the files given with WithFS.
func New(options ...Option) (*Engine, error) {
	cfg := &config{name: "offerform"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.files == nil {
		return nil, errors.New("pongo: template files are required")
	}
	registerFilters()
	return &Engine{set: pongo2.NewSet(cfg.name, pongo2.NewFSLoader(cfg.files))}, nil
}

// RenderTemplate executes the named template.
func (e *Engine) RenderTemplate(name string, data any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("pongo: engine is nil")
	}
	if !strings.HasSuffix(name, Extension) {
		name += Extension
	}
	tmpl, err := e.set.FromCache(name)
	if err != nil {
		return "", fmt.Errorf("pongo: load template %q: %w", name, err)
	}
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("pongo: convert data for %q: %w", name, err)
	}
	out, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("pongo: execute %q: %w", name, err)
	}
	return out, nil
}

// toContext round-trips data through JSON so templates see records by their
// stored field names ("ticket_items", "product_name").
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return nil, err
	}
	m, ok := wholeNumbers(decoded).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("template data must be an object, got %T", data)
	}
	return pongo2.Context(m), nil
}

// wholeNumbers turns integral float64 values back into ints so templates
// print "100" rather than "100.000000".
func wholeNumbers(v any) any {
	switch typed := v.(type) {
	case float64:
		if typed == math.Trunc(typed) && math.Abs(typed) < 1<<53 {
			return int(typed)
		}
	case map[string]any:
		for key, item := range typed {
			typed[key] = wholeNumbers(item)
		}
	case []any:
		for idx, item := range typed {
			typed[idx] = wholeNumbers(item)
		}
	}
	return v
}

func registerFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			return pongo2.AsValue(strings.TrimSpace(in.String())), nil
		})
	}
	if !pongo2.FilterExists("money") {
		_ = pongo2.RegisterFilter("money", filterMoney)
	}
}

// filterMoney formats a whole-dollar amount ("1500" -> "$1,500").
func filterMoney(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	n := in.Integer()
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	digits := fmt.Sprint(n)
	var b strings.Builder
	for idx, r := range digits {
		if idx > 0 && (len(digits)-idx)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return pongo2.AsValue(sign + "$" + b.String()), nil
}
