package fieldspec

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/sections"
)

// Scalar field keys every profile must declare.
const (
	KeyEmail           = "email"
	KeyAvatarDesc      = "avatar_desc"
	KeyAvatarPainList  = "avatar_pain_list"
	KeyUniqueValueProp = "unique_value_prop"
	KeyUVPType         = "uvp_type"
	KeyOtherUVPDesc    = "other_uvp_desc"
	KeyLeadMagnetDesc  = "lead_magnet_desc"
)

// Per-section sub-field names. Section field keys are "<sub>_<section>".
const (
	SubProductName  = "product_name"
	SubProductType  = "product_type"
	SubPrice        = "price"
	SubFeaturesDesc = "features_desc"
	SubBenefits     = "benefits"
)

// Placeholder modes decide how the validator recognises an unedited value.
const (
	ModePrefix = "prefix"
	ModeExact  = "exact"
)

// DefaultSentinel is the conventional prefix of seeded example text.
const DefaultSentinel = "Example:"

var requiredKeys = []string{
	KeyEmail,
	KeyAvatarDesc,
	KeyAvatarPainList,
	KeyUniqueValueProp,
	KeyUVPType,
	KeyOtherUVPDesc,
	KeyLeadMagnetDesc,
}

// SubFields lists the per-section sub-fields in prompt order.
var SubFields = []string{SubProductName, SubProductType, SubPrice, SubFeaturesDesc, SubBenefits}

// Profile describes one form variant: its scalar fields, the base section
// names, and the per-section field templates. Templates may reference
// {section} and {section_lower}.
type Profile struct {
	ID              string            `json:"id" yaml:"id"`
	Title           string            `json:"title" yaml:"title"`
	Sentinel        string            `json:"sentinel" yaml:"sentinel"`
	PlaceholderMode string            `json:"placeholderMode" yaml:"placeholder_mode"`
	Fields          []model.FieldSpec `json:"fields" yaml:"fields"`
	Sections        SectionConfig     `json:"sections" yaml:"sections"`
	Source          string            `json:"-" yaml:"-"`
}

// SectionConfig configures the dynamic per-section sub-form.
type SectionConfig struct {
	Base               []string          `json:"base" yaml:"base"`
	Count              sections.Range    `json:"count" yaml:"count"`
	ProductTypes       []string          `json:"productTypes" yaml:"product_types"`
	DefaultProductType string            `json:"defaultProductType" yaml:"default_product_type"`
	Price              PriceConfig       `json:"price" yaml:"price"`
	Labels             map[string]string `json:"labels,omitempty" yaml:"labels"`
	Help               map[string]string `json:"help,omitempty" yaml:"help"`
	Placeholders       map[string]string `json:"placeholders,omitempty" yaml:"placeholders"`
}

// PriceConfig bounds the integer price prompt.
type PriceConfig struct {
	Min     int `json:"min" yaml:"min"`
	Step    int `json:"step" yaml:"step"`
	Default int `json:"default" yaml:"default"`
}

// UVPOptions returns the enumeration declared for the uvp_type field.
func (p Profile) UVPOptions() []string {
	for _, field := range p.Fields {
		if field.Key == KeyUVPType {
			return append([]string(nil), field.Enum...)
		}
	}
	return nil
}

func (p *Profile) normalise(source string) error {
	p.Source = source
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return fmt.Errorf("fieldspec: profile %s has an empty id", source)
	}
	if strings.TrimSpace(p.Sentinel) == "" {
		p.Sentinel = DefaultSentinel
	}
	switch strings.ToLower(strings.TrimSpace(p.PlaceholderMode)) {
	case "", ModePrefix:
		p.PlaceholderMode = ModePrefix
	case ModeExact:
		p.PlaceholderMode = ModeExact
	default:
		return fmt.Errorf("fieldspec: profile %q has unknown placeholder mode %q", p.ID, p.PlaceholderMode)
	}

	seen := make(map[string]struct{}, len(p.Fields))
	for idx := range p.Fields {
		field := &p.Fields[idx]
		field.Key = strings.TrimSpace(field.Key)
		if field.Key == "" {
			return fmt.Errorf("fieldspec: profile %q field %d has an empty key", p.ID, idx)
		}
		if _, dup := seen[field.Key]; dup {
			return fmt.Errorf("fieldspec: profile %q defines duplicate field %q", p.ID, field.Key)
		}
		seen[field.Key] = struct{}{}
		if field.Type == "" {
			field.Type = model.FieldTypeString
		}
		if field.Type == model.FieldTypeEnum && len(field.Enum) == 0 {
			return fmt.Errorf("fieldspec: profile %q enum field %q has no options", p.ID, field.Key)
		}
	}
	for _, key := range requiredKeys {
		if _, ok := seen[key]; !ok {
			return fmt.Errorf("fieldspec: profile %q missing field %q", p.ID, key)
		}
	}

	cfg := &p.Sections
	if len(cfg.Base) == 0 {
		return fmt.Errorf("fieldspec: profile %q declares no base sections", p.ID)
	}
	names := make(map[string]struct{}, len(cfg.Base))
	for idx, name := range cfg.Base {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return fmt.Errorf("fieldspec: profile %q base section %d is empty", p.ID, idx)
		}
		if strings.HasPrefix(trimmed, sections.AdditionalPrefix) {
			return fmt.Errorf("fieldspec: profile %q base section %q collides with synthesized names", p.ID, trimmed)
		}
		if _, dup := names[trimmed]; dup {
			return fmt.Errorf("fieldspec: profile %q defines duplicate base section %q", p.ID, trimmed)
		}
		names[trimmed] = struct{}{}
		cfg.Base[idx] = trimmed
	}
	if err := cfg.Count.Validate(); err != nil {
		return fmt.Errorf("fieldspec: profile %q: %w", p.ID, err)
	}
	if len(cfg.ProductTypes) == 0 {
		return fmt.Errorf("fieldspec: profile %q declares no product types", p.ID)
	}
	if cfg.DefaultProductType == "" {
		cfg.DefaultProductType = cfg.ProductTypes[0]
	}
	if !contains(cfg.ProductTypes, cfg.DefaultProductType) {
		return fmt.Errorf("fieldspec: profile %q default product type %q is not an option", p.ID, cfg.DefaultProductType)
	}
	if cfg.Price.Min < 0 {
		return fmt.Errorf("fieldspec: profile %q price min must not be negative", p.ID)
	}
	if cfg.Price.Step <= 0 {
		cfg.Price.Step = 1
	}
	if cfg.Price.Default < cfg.Price.Min {
		return fmt.Errorf("fieldspec: profile %q price default %d below min %d", p.ID, cfg.Price.Default, cfg.Price.Min)
	}
	return nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
