package model

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString    FieldType = "string"
	FieldTypeText      FieldType = "text"
	FieldTypeInteger   FieldType = "integer"
	FieldTypeEnum      FieldType = "enum"
	FieldTypeMultiEnum FieldType = "multi-enum"
)

const (
	ValidationRuleMin      = "min"
	ValidationRuleMax      = "max"
	ValidationRuleStep     = "step"
	ValidationRuleRequired = "required"
)

// ValidationRule represents a single validation constraint applied to a field.
// Numeric bounds encode their threshold in Params["value"]. Values are kept as
// strings so JSON snapshots of a form model stay stable.
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// FieldSpec declares a single tracked form field: its key, the seeded
// placeholder value and the hints renderers need to prompt for it. Specs are
// built once per registry and never mutated afterwards. DependsOn names a
// "key=value" pair that must hold before the field is shown (for example
// "uvp_type=Other"). Widget is a presentation hint for HTML and JSON
// consumers; profiles may set it, otherwise the widget registry fills it.
type FieldSpec struct {
	Key         string           `json:"key" yaml:"key"`
	Label       string           `json:"label,omitempty" yaml:"label"`
	Type        FieldType        `json:"type" yaml:"type"`
	Placeholder string           `json:"placeholder,omitempty" yaml:"placeholder"`
	Help        string           `json:"help,omitempty" yaml:"help"`
	Default     any              `json:"default,omitempty" yaml:"default"`
	Enum        []string         `json:"enum,omitempty" yaml:"enum"`
	Validations []ValidationRule `json:"validations,omitempty" yaml:"-"`
	Section     string           `json:"section,omitempty" yaml:"-"`
	DependsOn   string           `json:"dependsOn,omitempty" yaml:"depends_on"`
	Widget      string           `json:"widget,omitempty" yaml:"widget"`
}

// Tracked reports whether the field carries a placeholder the user is
// expected to replace.
func (f FieldSpec) Tracked() bool {
	return f.Placeholder != ""
}

// Rule returns the first validation rule of the given kind.
func (f FieldSpec) Rule(kind string) (ValidationRule, bool) {
	for _, rule := range f.Validations {
		if rule.Kind == kind {
			return rule, true
		}
	}
	return ValidationRule{}, false
}

// SectionModel groups the per-section field specs generated for one section
// identifier.
type SectionModel struct {
	ID     string      `json:"id"`
	Fields []FieldSpec `json:"fields"`
}

// FormModel is the dynamic schema renderers consume: the static scalar fields
// followed by one SectionModel per identifier in the current order.
type FormModel struct {
	ID        string            `json:"id"`
	Title     string            `json:"title,omitempty"`
	Fields    []FieldSpec       `json:"fields"`
	Count     int               `json:"count"`
	CountMin  int               `json:"countMin"`
	CountMax  int               `json:"countMax"`
	Available []string          `json:"available"`
	Order     []string          `json:"order"`
	Sections  []SectionModel    `json:"sections"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
