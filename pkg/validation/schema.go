package validation

import (
	"errors"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/model"
)

// RecordSchema describes the persisted flat JSON shape of a FormSubmission
// for the registry's profile.
func RecordSchema(registry *fieldspec.Registry) *openapi3.Schema {
	price := registry.Price()

	item := openapi3.NewObjectSchema().
		WithProperty("product_name", openapi3.NewStringSchema().WithMinLength(1)).
		WithProperty("product_type", openapi3.NewStringSchema().WithEnum(anySlice(registry.ProductTypes())...)).
		WithProperty("price", openapi3.NewIntegerSchema().WithMin(float64(price.Min))).
		WithProperty("features_desc", openapi3.NewStringSchema()).
		WithProperty("benefits", openapi3.NewStringSchema())
	item.Required = []string{"product_name", "product_type", "price", "features_desc", "benefits"}

	order := openapi3.NewArraySchema().
		WithItems(openapi3.NewStringSchema().WithMinLength(1)).
		WithMinItems(1).
		WithUniqueItems(true)

	rng := registry.Range()
	items := openapi3.NewArraySchema().
		WithItems(item).
		WithMinItems(1).
		WithMaxItems(int64(rng.Max))

	record := openapi3.NewObjectSchema().
		WithProperty(fieldspec.KeyEmail, openapi3.NewStringSchema().WithMinLength(3)).
		WithProperty(fieldspec.KeyAvatarDesc, openapi3.NewStringSchema()).
		WithProperty(fieldspec.KeyAvatarPainList, openapi3.NewStringSchema()).
		WithProperty(fieldspec.KeyUniqueValueProp, openapi3.NewStringSchema()).
		WithProperty(fieldspec.KeyUVPType, openapi3.NewStringSchema().WithEnum(anySlice(registry.Profile().UVPOptions())...)).
		WithProperty(fieldspec.KeyOtherUVPDesc, openapi3.NewStringSchema().WithNullable()).
		WithProperty(fieldspec.KeyLeadMagnetDesc, openapi3.NewStringSchema()).
		WithProperty("num_ticket_items", openapi3.NewIntegerSchema().WithMin(1).WithMax(float64(rng.Max))).
		WithProperty("ticket_order", order.WithMaxItems(int64(rng.Max))).
		WithProperty("ticket_items", items)
	record.Required = []string{
		fieldspec.KeyEmail,
		fieldspec.KeyUVPType,
		fieldspec.KeyOtherUVPDesc,
		"num_ticket_items",
		"ticket_order",
		"ticket_items",
	}
	return record
}

func checkSchema(registry *fieldspec.Registry, sub model.FormSubmission) ([]Issue, error) {
	doc, err := toDocument(sub)
	if err != nil {
		return nil, err
	}
	err = RecordSchema(registry).VisitJSON(doc, openapi3.MultiErrors())
	if err == nil {
		return nil, nil
	}
	return schemaIssues(err), nil
}

func schemaIssues(err error) []Issue {
	var errs []error
	if multi, ok := err.(openapi3.MultiError); ok {
		errs = multi
	} else {
		errs = []error{err}
	}
	out := make([]Issue, 0, len(errs))
	for _, item := range errs {
		var schemaErr *openapi3.SchemaError
		if errors.As(item, &schemaErr) {
			out = append(out, Issue{
				Field:   fieldPath(schemaErr.JSONPointer()),
				Message: strings.TrimSpace(schemaErr.Reason),
			})
			continue
		}
		out = append(out, Issue{Message: strings.TrimSpace(item.Error())})
	}
	return out
}

// fieldPath renders a JSON pointer as a dotted path, folding array indexes
// into brackets ("ticket_items[1].price").
func fieldPath(pointer []string) string {
	var b strings.Builder
	for _, segment := range pointer {
		if segment == "" {
			continue
		}
		if isNumeric(segment) {
			b.WriteString("[" + segment + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(segment)
	}
	return b.String()
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for idx, v := range values {
		out[idx] = v
	}
	return out
}
