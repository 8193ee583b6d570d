package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/render"
	"github.com/goliatone/go-offerform/pkg/sections"
	"github.com/goliatone/go-offerform/pkg/state"
)

// Metadata keys attached to every generated form model.
const (
	MetadataProfile         = "profile"
	MetadataPlaceholderMode = "placeholder_mode"
	MetadataSentinel        = "sentinel"
	MetadataPriceStep       = "price_step"
)

// Form returns the dynamic form model for count sections in the given order.
// A zero count selects the profile default and a nil order selects every
// section.
func (o *Orchestrator) Form(count int, order []string) (model.FormModel, error) {
	available, resolved, err := o.Resolve(count, order)
	if err != nil {
		return model.FormModel{}, err
	}
	form := o.formModel(len(available), resolved)
	for _, decorator := range o.decorators {
		if err := decorator.Decorate(&form); err != nil {
			return model.FormModel{}, fmt.Errorf("orchestrator: decorate form: %w", err)
		}
	}
	return form, nil
}

// FormFor returns the form model matching the count and order held by s.
func (o *Orchestrator) FormFor(s *state.FormState) (model.FormModel, error) {
	return o.Form(s.Count(), s.Order())
}

func (o *Orchestrator) formModel(count int, order []string) model.FormModel {
	profile := o.fields.Profile()
	rng := o.fields.Range()

	form := model.FormModel{
		ID:        profile.ID,
		Title:     profile.Title,
		Fields:    o.fields.Fields(),
		Count:     count,
		CountMin:  rng.Min,
		CountMax:  rng.Max,
		Available: sections.Build(count, o.fields.Base()),
		Order:     append([]string(nil), order...),
		Sections:  make([]model.SectionModel, 0, len(order)),
		Metadata: map[string]string{
			MetadataProfile:         profile.ID,
			MetadataPlaceholderMode: o.validator.Mode(),
			MetadataSentinel:        profile.Sentinel,
			MetadataPriceStep:       strconv.Itoa(o.fields.Price().Step),
		},
	}
	for _, id := range order {
		form.Sections = append(form.Sections, model.SectionModel{ID: id, Fields: o.fields.SectionFields(id)})
	}
	_ = o.widgets.Decorate(&form)
	return form
}

// Values flattens s into the per-key values renderers show next to fields.
func (o *Orchestrator) Values(s *state.FormState) map[string]any {
	form, err := o.FormFor(s)
	if err != nil {
		return s.Fields(nil)
	}
	return s.Fields(form.Order)
}

// Render renders form with the named renderer, or the default renderer when
// name is empty.
func (o *Orchestrator) Render(ctx context.Context, name string, form model.FormModel, options render.RenderOptions) ([]byte, string, error) {
	renderer, err := o.rendererFor(name)
	if err != nil {
		return nil, "", err
	}
	output, err := renderer.Render(ctx, form, options)
	if err != nil {
		return nil, "", fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, renderer.ContentType(), nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.renderers == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.renderers.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.renderers.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.renderers.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}
