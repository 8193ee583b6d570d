package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/model"
)

var structValidator *validator.Validate

func init() {
	structValidator = validator.New(validator.WithRequiredStructEnabled())
	structValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Issue is one structural problem found in an assembled record.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// RecordError lists every structural problem found in a record.
type RecordError struct {
	Issues []Issue
}

func (e *RecordError) Error() string {
	parts := make([]string, len(e.Issues))
	for idx, issue := range e.Issues {
		if issue.Field != "" {
			parts[idx] = issue.Field + ": " + issue.Message
			continue
		}
		parts[idx] = issue.Message
	}
	return "validation: invalid record: " + strings.Join(parts, "; ")
}

// CheckRecord validates an assembled submission against its struct rules,
// the record invariants and the profile enumerations. The JSON schema check
// runs last and only when everything else passed.
func CheckRecord(registry *fieldspec.Registry, sub model.FormSubmission) error {
	var issues []Issue
	issues = append(issues, structIssues(sub)...)
	issues = append(issues, invariantIssues(registry, sub)...)
	if len(issues) == 0 {
		schemaIssues, err := checkSchema(registry, sub)
		if err != nil {
			return err
		}
		issues = append(issues, schemaIssues...)
	}
	if len(issues) == 0 {
		return nil
	}
	return &RecordError{Issues: issues}
}

func structIssues(sub model.FormSubmission) []Issue {
	err := structValidator.Struct(sub)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []Issue{{Message: err.Error()}}
	}
	out := make([]Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Issue{Field: namespace(fe), Message: fieldErrorMessage(fe)})
	}
	return out
}

func invariantIssues(registry *fieldspec.Registry, sub model.FormSubmission) []Issue {
	var out []Issue
	if len(sub.TicketOrder) != len(sub.TicketItems) {
		out = append(out, Issue{
			Field:   "ticket_items",
			Message: fmt.Sprintf("has %d entries but ticket_order has %d", len(sub.TicketItems), len(sub.TicketOrder)),
		})
	}
	if sub.NumTicketItems != len(sub.TicketOrder) {
		out = append(out, Issue{
			Field:   "num_ticket_items",
			Message: fmt.Sprintf("is %d but ticket_order has %d entries", sub.NumTicketItems, len(sub.TicketOrder)),
		})
	}
	if sub.OtherUVPDesc != nil && sub.UVPType != model.UVPTypeOther {
		out = append(out, Issue{Field: "other_uvp_desc", Message: "must be null unless uvp_type is Other"})
	}

	profile := registry.Profile()
	if sub.UVPType != "" && !oneOf(profile.UVPOptions(), sub.UVPType) {
		out = append(out, Issue{Field: "uvp_type", Message: fmt.Sprintf("%q is not an option", sub.UVPType)})
	}
	types := registry.ProductTypes()
	minPrice := registry.Price().Min
	for idx, item := range sub.TicketItems {
		field := fmt.Sprintf("ticket_items[%d]", idx)
		if item.ProductType != "" && !oneOf(types, item.ProductType) {
			out = append(out, Issue{Field: field + ".product_type", Message: fmt.Sprintf("%q is not an option", item.ProductType)})
		}
		if item.Price < minPrice {
			out = append(out, Issue{Field: field + ".price", Message: fmt.Sprintf("must be at least %d", minPrice)})
		}
	}
	return out
}

func namespace(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "unique":
		return "must not contain duplicates"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed validation for '%s'", fe.Tag())
	}
}

func oneOf(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func toDocument(sub model.FormSubmission) (map[string]any, error) {
	data, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("validation: encode record: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("validation: decode record: %w", err)
	}
	return doc, nil
}
