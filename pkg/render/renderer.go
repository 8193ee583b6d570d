package render

import (
	"context"

	"github.com/goliatone/go-offerform/pkg/model"
)

// Renderer converts a dynamic FormModel into a printable or wire
// representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.FormModel, options RenderOptions) ([]byte, error)
}

// RenderOptions carries per-request data renderers may show alongside the
// form without mutating it.
type RenderOptions struct {
	// Values holds current field values keyed by form field key.
	Values map[string]any
	// Errors holds messages keyed by form field key, as produced by
	// MapIssues.
	Errors map[string][]string
	// FormErrors holds messages that could not be tied to a field.
	FormErrors []string
}
