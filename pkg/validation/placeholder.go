package validation

import (
	"errors"
	"strings"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/state"
)

// PlaceholderMessage is the single user-facing failure shown when any tracked
// field still holds seeded example content.
const PlaceholderMessage = "Please update all fields with your own information before submitting."

// ErrPlaceholderPresent reports that at least one tracked field was not
// replaced. Affected fields are not named.
var ErrPlaceholderPresent = errors.New(PlaceholderMessage)

// Validator recognises unedited placeholder content.
type Validator struct {
	registry *fieldspec.Registry
	mode     string
	sentinel string
}

// Option customises a Validator.
type Option func(*Validator)

// WithMode selects prefix or exact placeholder matching.
func WithMode(mode string) Option {
	return func(v *Validator) {
		switch mode {
		case fieldspec.ModePrefix, fieldspec.ModeExact:
			v.mode = mode
		}
	}
}

// WithSentinel overrides the prefix used in prefix mode.
func WithSentinel(sentinel string) Option {
	return func(v *Validator) {
		if strings.TrimSpace(sentinel) != "" {
			v.sentinel = sentinel
		}
	}
}

// NewValidator builds a validator using the registry's placeholders and the
// mode and sentinel its profile declares.
func NewValidator(registry *fieldspec.Registry, opts ...Option) *Validator {
	profile := registry.Profile()
	v := &Validator{
		registry: registry,
		mode:     profile.PlaceholderMode,
		sentinel: profile.Sentinel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Mode returns the active matching mode.
func (v *Validator) Mode() string {
	return v.mode
}

// IsValid reports whether no value in the field-state mapping is placeholder
// content. Non-string values never match.
func (v *Validator) IsValid(fields map[string]any) bool {
	for key, raw := range fields {
		text, ok := raw.(string)
		if !ok {
			continue
		}
		if v.matches(key, text) {
			return false
		}
	}
	return true
}

// CheckState applies the placeholder rule to the typed form state restricted
// to the given sections. A tracked field that was never supplied by the user
// fails even when its value would not match the sentinel.
func (v *Validator) CheckState(s *state.FormState, order []string) error {
	for _, entry := range s.Entries(order) {
		if entry.Spec.Tracked() && entry.Value.Status != state.StatusUserProvided {
			return ErrPlaceholderPresent
		}
	}
	if !v.IsValid(s.Fields(order)) {
		return ErrPlaceholderPresent
	}
	return nil
}

func (v *Validator) matches(key, text string) bool {
	switch v.mode {
	case fieldspec.ModeExact:
		placeholder := v.registry.Placeholder(key)
		return placeholder != "" && text == placeholder
	default:
		return strings.HasPrefix(strings.TrimSpace(text), v.sentinel)
	}
}
