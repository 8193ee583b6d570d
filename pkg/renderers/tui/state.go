package tui

import (
	"github.com/goliatone/go-offerform/pkg/state"
)

// answerStore is where prompts read their defaults from and write results
// to. Keys are form field keys.
type answerStore interface {
	value(key string) (any, bool)
	set(key string, value any) error
	errorsFor(key string) []string
}

// answers is a detached value map used by Render.
type answers struct {
	values map[string]any
	errors map[string][]string
}

func newAnswers(prefill map[string]any, errs map[string][]string) *answers {
	values := make(map[string]any, len(prefill))
	for k, v := range prefill {
		values[k] = v
	}
	return &answers{values: values, errors: errs}
}

func (a *answers) value(key string) (any, bool) {
	v, ok := a.values[key]
	return v, ok
}

func (a *answers) set(key string, value any) error {
	a.values[key] = value
	return nil
}

func (a *answers) errorsFor(key string) []string {
	return a.errors[key]
}

// formAnswers writes prompt results straight into a form state so
// provenance tracking applies.
type formAnswers struct {
	state  *state.FormState
	errors map[string][]string
}

func (f *formAnswers) value(key string) (any, bool) {
	v, ok := f.state.Get(key)
	if !ok || v.Status == state.StatusUnset {
		return nil, false
	}
	return v.Raw, true
}

func (f *formAnswers) set(key string, value any) error {
	return f.state.Set(key, value)
}

func (f *formAnswers) errorsFor(key string) []string {
	return f.errors[key]
}
