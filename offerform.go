// Package offerform is the top-level entry point: it re-exports the pipeline
// types and offers one-call helpers for the common cases.
package offerform

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/orchestrator"
	"github.com/goliatone/go-offerform/pkg/render"
	"github.com/goliatone/go-offerform/pkg/renderers/text"
)

// Request carries one submission: email, section count and order, and the
// raw field values.
type Request = orchestrator.Request

// Outcome is the user-facing result of a submit.
type Outcome = render.Outcome

// RenderOptions carries values and errors renderers show next to fields.
type RenderOptions = render.RenderOptions

// Option configures the orchestrator.
type Option = orchestrator.Option

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...Option) (*orchestrator.Orchestrator, error) {
	return orchestrator.New(options...)
}

// Submit builds an orchestrator from options and runs one submission
// through it.
func Submit(ctx context.Context, req Request, options ...Option) (Outcome, error) {
	o, err := orchestrator.New(options...)
	if err != nil {
		return Outcome{}, err
	}
	return o.Submit(ctx, req)
}

// RenderForm renders the form for count sections in order with the named
// renderer ("text" when empty). It returns the output and its content type.
func RenderForm(ctx context.Context, count int, order []string, rendererName string, options ...Option) ([]byte, string, error) {
	o, err := orchestrator.New(options...)
	if err != nil {
		return nil, "", err
	}
	form, err := o.Form(count, order)
	if err != nil {
		return nil, "", err
	}
	return o.Render(ctx, rendererName, form, RenderOptions{Values: o.Values(o.NewState())})
}

// EmbeddedTemplates exposes the built-in text renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return text.TemplatesFS()
}

// EmbeddedProfiles exposes the bundled field profiles.
func EmbeddedProfiles() fs.FS {
	return fieldspec.EmbeddedFS()
}
