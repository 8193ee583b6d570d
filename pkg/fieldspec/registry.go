package fieldspec

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/sections"
)

var defaultLabels = map[string]string{
	SubProductName:  "{section} Offer Name",
	SubProductType:  "{section} Offer Type",
	SubPrice:        "{section} Offer Price",
	SubFeaturesDesc: "{section} Offer Inclusions",
	SubBenefits:     "{section} Offer Benefits",
}

// Registry declares every field a profile tracks: the static scalar fields
// and, for any section identifier, the five generated sub-fields.
type Registry struct {
	profile Profile
	fields  []model.FieldSpec
	index   map[string]int
}

// New builds a registry from a profile. The profile is normalised and
// validated first.
func New(profile Profile) (*Registry, error) {
	source := profile.Source
	if source == "" {
		source = "inline"
	}
	profile.Fields = append([]model.FieldSpec(nil), profile.Fields...)
	profile.Sections.Base = append([]string(nil), profile.Sections.Base...)
	if err := profile.normalise(source); err != nil {
		return nil, err
	}

	reg := &Registry{
		profile: profile,
		fields:  make([]model.FieldSpec, len(profile.Fields)),
		index:   make(map[string]int, len(profile.Fields)),
	}
	for idx, field := range profile.Fields {
		reg.fields[idx] = cloneSpec(field)
		reg.index[field.Key] = idx
	}
	return reg, nil
}

// Profile returns the normalised profile backing the registry.
func (r *Registry) Profile() Profile {
	return r.profile
}

// Range returns the permitted section count range.
func (r *Registry) Range() sections.Range {
	return r.profile.Sections.Count
}

// Base returns a copy of the base section names.
func (r *Registry) Base() []string {
	return append([]string(nil), r.profile.Sections.Base...)
}

// ProductTypes returns a copy of the product type enumeration.
func (r *Registry) ProductTypes() []string {
	return append([]string(nil), r.profile.Sections.ProductTypes...)
}

// Price returns the price prompt configuration.
func (r *Registry) Price() PriceConfig {
	return r.profile.Sections.Price
}

// Fields returns the scalar field specs in declaration order.
func (r *Registry) Fields() []model.FieldSpec {
	out := make([]model.FieldSpec, len(r.fields))
	for idx, field := range r.fields {
		out[idx] = cloneSpec(field)
	}
	return out
}

// Field resolves a scalar key or a per-section key ("price_Low Ticket").
func (r *Registry) Field(key string) (model.FieldSpec, bool) {
	if idx, ok := r.index[key]; ok {
		return cloneSpec(r.fields[idx]), true
	}
	sub, section, ok := SplitSectionKey(key)
	if !ok {
		return model.FieldSpec{}, false
	}
	return r.sectionField(sub, section), true
}

// SectionFields returns the generated sub-field specs for one section in
// prompt order.
func (r *Registry) SectionFields(section string) []model.FieldSpec {
	out := make([]model.FieldSpec, 0, len(SubFields))
	for _, sub := range SubFields {
		out = append(out, r.sectionField(sub, section))
	}
	return out
}

// Placeholder returns the seeded placeholder for any tracked key.
func (r *Registry) Placeholder(key string) string {
	field, ok := r.Field(key)
	if !ok {
		return ""
	}
	return field.Placeholder
}

func (r *Registry) sectionField(sub, section string) model.FieldSpec {
	cfg := r.profile.Sections
	label := cfg.Labels[sub]
	if label == "" {
		label = defaultLabels[sub]
	}
	spec := model.FieldSpec{
		Key:         SectionKey(sub, section),
		Label:       expand(label, section),
		Help:        expand(cfg.Help[sub], section),
		Placeholder: expand(cfg.Placeholders[sub], section),
		Section:     section,
	}

	switch sub {
	case SubProductName:
		spec.Type = model.FieldTypeString
		spec.Validations = []model.ValidationRule{{Kind: model.ValidationRuleRequired}}
	case SubProductType:
		spec.Type = model.FieldTypeEnum
		spec.Enum = append([]string(nil), cfg.ProductTypes...)
		spec.Default = cfg.DefaultProductType
		spec.Placeholder = ""
	case SubPrice:
		spec.Type = model.FieldTypeInteger
		spec.Default = cfg.Price.Default
		spec.Placeholder = ""
		spec.Validations = []model.ValidationRule{
			{Kind: model.ValidationRuleMin, Params: map[string]string{"value": strconv.Itoa(cfg.Price.Min)}},
			{Kind: model.ValidationRuleStep, Params: map[string]string{"value": strconv.Itoa(cfg.Price.Step)}},
		}
	default:
		spec.Type = model.FieldTypeText
	}
	return spec
}

// SectionKey formats the state key of a section sub-field.
func SectionKey(sub, section string) string {
	return sub + "_" + section
}

// SplitSectionKey reverses SectionKey for the known sub-fields.
func SplitSectionKey(key string) (sub, section string, ok bool) {
	for _, candidate := range SubFields {
		prefix := candidate + "_"
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			return candidate, key[len(prefix):], true
		}
	}
	return "", "", false
}

func expand(template, section string) string {
	if template == "" {
		return ""
	}
	replacer := strings.NewReplacer(
		"{section_lower}", strings.ToLower(section),
		"{section}", section,
	)
	return replacer.Replace(template)
}

func cloneSpec(field model.FieldSpec) model.FieldSpec {
	out := field
	if len(field.Enum) > 0 {
		out.Enum = append([]string(nil), field.Enum...)
	}
	if len(field.Validations) > 0 {
		out.Validations = make([]model.ValidationRule, len(field.Validations))
		for idx, rule := range field.Validations {
			out.Validations[idx] = model.ValidationRule{Kind: rule.Kind}
			if len(rule.Params) > 0 {
				out.Validations[idx].Params = make(map[string]string, len(rule.Params))
				for k, v := range rule.Params {
					out.Validations[idx].Params[k] = v
				}
			}
		}
	}
	return out
}
