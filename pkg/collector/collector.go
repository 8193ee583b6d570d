// Package collector reads ticket items and scalar values out of a typed form
// state. It has no side effects.
package collector

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/state"
)

var (
	// ErrInvalidProductType reports a product type outside the profile options.
	ErrInvalidProductType = errors.New("collector: invalid product type")
	// ErrInvalidPrice reports a missing or below-minimum price.
	ErrInvalidPrice = errors.New("collector: invalid price")
)

// Collect produces one TicketItem per identifier in order, in that order.
// Sections without state yield their seeded defaults.
func Collect(s *state.FormState, order []string) ([]model.TicketItem, error) {
	registry := s.Registry()
	types := registry.ProductTypes()
	minPrice := registry.Price().Min

	items := make([]model.TicketItem, 0, len(order))
	for _, id := range order {
		values := sectionValues(s, registry, id)

		item := model.TicketItem{
			ProductName:  values.text(fieldspec.SubProductName),
			ProductType:  values.text(fieldspec.SubProductType),
			FeaturesDesc: values.text(fieldspec.SubFeaturesDesc),
			Benefits:     values.text(fieldspec.SubBenefits),
		}
		if !contains(types, item.ProductType) {
			return nil, fmt.Errorf("%w: section %q has %q", ErrInvalidProductType, id, item.ProductType)
		}
		price, ok := values[fieldspec.SubPrice].(int)
		if !ok {
			return nil, fmt.Errorf("%w: section %q has no integer price", ErrInvalidPrice, id)
		}
		if price < minPrice {
			return nil, fmt.Errorf("%w: section %q price %d is below %d", ErrInvalidPrice, id, price, minPrice)
		}
		item.Price = price
		items = append(items, item)
	}
	return items, nil
}

// Scalars reads the non-section values from the state.
func Scalars(s *state.FormState) model.Scalars {
	return model.Scalars{
		AvatarDesc:      s.String(fieldspec.KeyAvatarDesc),
		AvatarPainList:  s.String(fieldspec.KeyAvatarPainList),
		UniqueValueProp: s.String(fieldspec.KeyUniqueValueProp),
		UVPType:         s.String(fieldspec.KeyUVPType),
		OtherUVPDesc:    s.String(fieldspec.KeyOtherUVPDesc),
		LeadMagnetDesc:  s.String(fieldspec.KeyLeadMagnetDesc),
	}
}

type section map[string]any

func (v section) text(sub string) string {
	text, _ := v[sub].(string)
	return text
}

func sectionValues(s *state.FormState, registry *fieldspec.Registry, id string) section {
	out := make(section, len(fieldspec.SubFields))
	for _, spec := range registry.SectionFields(id) {
		sub, _, _ := fieldspec.SplitSectionKey(spec.Key)
		if value, ok := s.Get(spec.Key); ok && value.Status != state.StatusUnset {
			out[sub] = value.Raw
			continue
		}
		switch {
		case spec.Placeholder != "":
			out[sub] = spec.Placeholder
		case spec.Default != nil:
			out[sub] = spec.Default
		}
	}
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
