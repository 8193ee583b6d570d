package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetInput    = "input"
	WidgetEmail    = "email"
	WidgetTextArea = "textarea"
	WidgetSelect   = "select"
	WidgetChips    = "chips"
	WidgetCurrency = "currency"
	WidgetNumber   = "number"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.FieldSpec) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on explicit hints or registered
// matchers. Higher priority wins; ties fall back to registration order. An
// empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

var _ model.Decorator = (*Registry)(nil)

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Names lists the registered widget names in registration order, without
// duplicates.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.rules))
	out := make([]string, 0, len(r.rules))
	for _, entry := range r.rules {
		if _, ok := seen[entry.name]; ok {
			continue
		}
		seen[entry.name] = struct{}{}
		out = append(out, entry.name)
	}
	return out
}

// Resolve returns the widget name for a field. A widget set on the field
// itself is honoured before matcher evaluation.
func (r *Registry) Resolve(field model.FieldSpec) (string, bool) {
	if explicit := strings.TrimSpace(field.Widget); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Decorate sets Widget on every scalar and section field of form that does
// not already carry one.
func (r *Registry) Decorate(form *model.FormModel) error {
	if r == nil || form == nil {
		return nil
	}
	form.Fields = r.decorateFields(form.Fields)
	for idx := range form.Sections {
		form.Sections[idx].Fields = r.decorateFields(form.Sections[idx].Fields)
	}
	return nil
}

func (r *Registry) decorateFields(fields []model.FieldSpec) []model.FieldSpec {
	if len(fields) == 0 {
		return fields
	}
	decorated := make([]model.FieldSpec, len(fields))
	for idx, field := range fields {
		if widget, ok := r.Resolve(field); ok {
			field.Widget = widget
		}
		decorated[idx] = field
	}
	return decorated
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetEmail, 90, func(field model.FieldSpec) bool {
		return field.Key == fieldspec.KeyEmail
	})

	r.Register(WidgetCurrency, 80, func(field model.FieldSpec) bool {
		return field.Type == model.FieldTypeInteger && strings.HasPrefix(field.Key, fieldspec.SubPrice+"_")
	})

	r.Register(WidgetChips, 70, func(field model.FieldSpec) bool {
		return field.Type == model.FieldTypeMultiEnum
	})

	r.Register(WidgetSelect, 60, func(field model.FieldSpec) bool {
		return len(field.Enum) > 0
	})

	r.Register(WidgetNumber, 50, func(field model.FieldSpec) bool {
		return field.Type == model.FieldTypeInteger
	})

	r.Register(WidgetTextArea, 40, func(field model.FieldSpec) bool {
		return field.Type == model.FieldTypeText
	})

	r.Register(WidgetInput, 0, func(model.FieldSpec) bool {
		return true
	})
}
