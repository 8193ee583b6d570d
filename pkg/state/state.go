package state

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/model"
)

// ErrUnknownField is returned when a key is neither a registered scalar
// field nor a per-section key.
var ErrUnknownField = errors.New("state: unknown field")

// Status tracks whether a value was seeded or supplied by the user.
type Status int

const (
	StatusUnset Status = iota
	StatusDefault
	StatusUserProvided
)

func (s Status) String() string {
	switch s {
	case StatusDefault:
		return "default"
	case StatusUserProvided:
		return "user"
	default:
		return "unset"
	}
}

// Value is one tracked field value and its provenance.
type Value struct {
	Raw    any
	Status Status
}

// SectionState holds the sub-field values of one section, keyed by sub-field
// name (product_name, price, ...).
type SectionState struct {
	values map[string]Value
}

// FormState is the explicit form-state object passed through the pipeline.
// Section state is stored per identifier so changing the section count or
// order never drops or duplicates already-entered sections.
type FormState struct {
	registry *fieldspec.Registry
	scalars  map[string]Value
	sections map[string]*SectionState
	count    int
	order    []string
}

// New seeds a state for every scalar field declared by the registry. The
// count starts at the registry's default.
func New(registry *fieldspec.Registry) *FormState {
	s := &FormState{
		registry: registry,
		scalars:  make(map[string]Value),
		sections: make(map[string]*SectionState),
		count:    registry.Range().Default,
	}
	for _, spec := range registry.Fields() {
		s.scalars[spec.Key] = seedValue(spec)
	}
	return s
}

// Registry returns the registry the state was seeded from.
func (s *FormState) Registry() *fieldspec.Registry {
	return s.registry
}

// Seed creates default section state for each identifier that has none yet.
// Existing section state is left untouched.
func (s *FormState) Seed(ids []string) {
	for _, id := range ids {
		if _, ok := s.sections[id]; ok {
			continue
		}
		section := &SectionState{values: make(map[string]Value, len(fieldspec.SubFields))}
		for _, spec := range s.registry.SectionFields(id) {
			sub, _, _ := fieldspec.SplitSectionKey(spec.Key)
			section.values[sub] = seedValue(spec)
		}
		s.sections[id] = section
	}
}

// SetCount records the requested section count.
func (s *FormState) SetCount(n int) {
	s.count = n
}

// Count returns the requested section count.
func (s *FormState) Count() int {
	return s.count
}

// SetOrder records the chosen order. Nil selects the identity order.
func (s *FormState) SetOrder(order []string) {
	if order == nil {
		s.order = nil
		return
	}
	s.order = append([]string{}, order...)
}

// Order returns the chosen order, or nil for the identity order.
func (s *FormState) Order() []string {
	if s.order == nil {
		return nil
	}
	return append([]string{}, s.order...)
}

// Set writes a value for a scalar or per-section key. The value is coerced
// to the field type. A value equal to the registered placeholder keeps the
// field in StatusDefault; anything else marks it StatusUserProvided.
func (s *FormState) Set(key string, raw any) error {
	spec, ok := s.registry.Field(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	value, err := coerce(spec, raw)
	if err != nil {
		return fmt.Errorf("state: field %q: %w", key, err)
	}
	status := StatusUserProvided
	if spec.Placeholder != "" {
		if text, ok := value.(string); ok && text == spec.Placeholder {
			status = StatusDefault
		}
	}
	s.put(spec, Value{Raw: value, Status: status})
	return nil
}

// Get returns the value stored under a scalar or per-section key.
func (s *FormState) Get(key string) (Value, bool) {
	if v, ok := s.scalars[key]; ok {
		return v, true
	}
	sub, section, ok := fieldspec.SplitSectionKey(key)
	if !ok {
		return Value{}, false
	}
	sec, ok := s.sections[section]
	if !ok {
		return Value{}, false
	}
	v, ok := sec.values[sub]
	return v, ok
}

// String returns the string form of a value, or "" when absent.
func (s *FormState) String(key string) string {
	v, ok := s.Get(key)
	if !ok || v.Raw == nil {
		return ""
	}
	if text, ok := v.Raw.(string); ok {
		return text
	}
	return fmt.Sprint(v.Raw)
}

// Int returns the integer form of a value.
func (s *FormState) Int(key string) (int, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := v.Raw.(int)
	return n, ok
}

// HasSection reports whether state exists for the identifier.
func (s *FormState) HasSection(id string) bool {
	_, ok := s.sections[id]
	return ok
}

// Sections returns the identifiers that currently hold state, sorted.
func (s *FormState) Sections() []string {
	out := make([]string, 0, len(s.sections))
	for id := range s.sections {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Entry pairs a tracked key with its spec and current value.
type Entry struct {
	Key   string
	Spec  model.FieldSpec
	Value Value
}

// Entries returns every scalar entry plus the entries of the given sections,
// in registry then section order.
func (s *FormState) Entries(order []string) []Entry {
	var out []Entry
	for _, spec := range s.registry.Fields() {
		out = append(out, Entry{Key: spec.Key, Spec: spec, Value: s.scalars[spec.Key]})
	}
	for _, id := range order {
		sec := s.sections[id]
		for _, spec := range s.registry.SectionFields(id) {
			sub, _, _ := fieldspec.SplitSectionKey(spec.Key)
			var v Value
			if sec != nil {
				v = sec.values[sub]
			}
			out = append(out, Entry{Key: spec.Key, Spec: spec, Value: v})
		}
	}
	return out
}

// Fields flattens the state into the key/value mapping consumed by the
// placeholder predicate. Only the sections in order are included; state kept
// for deselected sections does not block submission.
func (s *FormState) Fields(order []string) map[string]any {
	out := make(map[string]any)
	for _, entry := range s.Entries(order) {
		if entry.Value.Status == StatusUnset && entry.Value.Raw == nil {
			continue
		}
		out[entry.Key] = entry.Value.Raw
	}
	return out
}

func (s *FormState) put(spec model.FieldSpec, v Value) {
	if spec.Section == "" {
		s.scalars[spec.Key] = v
		return
	}
	s.Seed([]string{spec.Section})
	sub, _, _ := fieldspec.SplitSectionKey(spec.Key)
	s.sections[spec.Section].values[sub] = v
}

func seedValue(spec model.FieldSpec) Value {
	if spec.Placeholder != "" {
		return Value{Raw: spec.Placeholder, Status: StatusDefault}
	}
	if spec.Default != nil {
		if v, err := coerce(spec, spec.Default); err == nil {
			return Value{Raw: v, Status: StatusDefault}
		}
	}
	return Value{Status: StatusUnset}
}

func coerce(spec model.FieldSpec, raw any) (any, error) {
	if spec.Type != model.FieldTypeInteger {
		switch v := raw.(type) {
		case nil:
			return "", nil
		case string:
			return v, nil
		default:
			return fmt.Sprint(v), nil
		}
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		if v < math.MinInt || v > math.MaxInt {
			return nil, fmt.Errorf("integer %d is out of range", v)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("expected an integer, got %v", v)
		}
		// float64(math.MaxInt) rounds up, so the upper bound is exclusive.
		if v < float64(math.MinInt) || v >= float64(math.MaxInt) {
			return nil, fmt.Errorf("integer %v is out of range", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("expected an integer, got %T", raw)
	}
}
