package htmlform

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"

	rendertemplate "github.com/goliatone/go-offerform/pkg/render/template"
	"github.com/goliatone/go-offerform/pkg/widgets"
)

const templatePrefix = "templates/components/"

// ComponentRenderer writes the control markup for one field into buf.
type ComponentRenderer func(buf *bytes.Buffer, field FieldView, templates rendertemplate.TemplateRenderer) error

// Descriptor bundles a component renderer with its presentation flags.
type Descriptor struct {
	Renderer ComponentRenderer
	// Grouped controls render several inputs and are labelled without a
	// for attribute.
	Grouped bool
}

// Components maps widget names to component descriptors.
type Components struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// NewComponents creates an empty component registry.
func NewComponents() *Components {
	return &Components{components: make(map[string]Descriptor)}
}

// DefaultComponents returns a registry with a component for every built-in
// widget.
func DefaultComponents() *Components {
	c := NewComponents()
	c.MustRegister(widgets.WidgetInput, Descriptor{Renderer: templateComponent("input", map[string]any{"type": "text"})})
	c.MustRegister(widgets.WidgetEmail, Descriptor{Renderer: templateComponent("input", map[string]any{"type": "email"})})
	c.MustRegister(widgets.WidgetNumber, Descriptor{Renderer: templateComponent("number", nil)})
	c.MustRegister(widgets.WidgetCurrency, Descriptor{Renderer: templateComponent("currency", map[string]any{"symbol": "$"})})
	c.MustRegister(widgets.WidgetTextArea, Descriptor{Renderer: templateComponent("textarea", map[string]any{"rows": 4})})
	c.MustRegister(widgets.WidgetSelect, Descriptor{Renderer: templateComponent("select", nil)})
	c.MustRegister(widgets.WidgetChips, Descriptor{Renderer: templateComponent("chips", nil), Grouped: true})
	return c
}

// Clone returns a copy that can be changed without affecting c.
func (c *Components) Clone() *Components {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cloned := NewComponents()
	for name, descriptor := range c.components {
		cloned.components[name] = descriptor
	}
	return cloned
}

// Register associates a descriptor with name, replacing any existing entry.
func (c *Components) Register(name string, descriptor Descriptor) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("htmlform: component name is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("htmlform: renderer for %q is nil", name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.components[name] = descriptor
	return nil
}

// MustRegister is Register that panics on error.
func (c *Components) MustRegister(name string, descriptor Descriptor) {
	if err := c.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor looks up a component by name.
func (c *Components) Descriptor(name string) (Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	descriptor, ok := c.components[normalize(name)]
	return descriptor, ok
}

// Names lists registered component names in lexical order.
func (c *Components) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.components))
	for name := range c.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func templateComponent(name string, config map[string]any) ComponentRenderer {
	templateName := templatePrefix + name + ".tpl"
	return func(buf *bytes.Buffer, field FieldView, templates rendertemplate.TemplateRenderer) error {
		if templates == nil {
			return fmt.Errorf("htmlform: template renderer not configured for %q", templateName)
		}
		rendered, err := templates.RenderTemplate(templateName, map[string]any{
			"field":  field,
			"config": config,
		})
		if err != nil {
			return fmt.Errorf("htmlform: render template %q: %w", templateName, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
