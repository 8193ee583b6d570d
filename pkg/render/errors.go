package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/validation"
)

// ErrorMapping splits record issues into messages keyed by form field key
// and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapIssues translates record paths ("ticket_items[1].price") into the form
// keys the user edited ("price_Medium Ticket") using the form's order.
// Issues that do not resolve to a rendered field become form-level messages.
func MapIssues(form model.FormModel, issues []validation.Issue) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	known := collectFieldKeys(form)

	for _, issue := range issues {
		message := strings.TrimSpace(issue.Message)
		if message == "" {
			continue
		}
		key, ok := formKey(form, issue.Field)
		if !ok {
			mapping.Form = append(mapping.Form, qualify(issue.Field, message))
			continue
		}
		if _, exists := known[key]; !exists {
			mapping.Form = append(mapping.Form, qualify(issue.Field, message))
			continue
		}
		mapping.Fields[key] = append(mapping.Fields[key], message)
	}

	for key, messages := range mapping.Fields {
		mapping.Fields[key] = normalizeMessages(messages)
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func formKey(form model.FormModel, path string) (string, bool) {
	segments := parsePathSegments(path)
	if len(segments) == 0 {
		return "", false
	}
	if segments[0] != "ticket_items" {
		return segments[0], true
	}
	if len(segments) < 3 {
		return "", false
	}
	idx, err := strconv.Atoi(segments[1])
	if err != nil || idx < 0 || idx >= len(form.Order) {
		return "", false
	}
	return fieldspec.SectionKey(segments[2], form.Order[idx]), true
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil
	}
	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = strings.Trim(replacer.Replace(clean), ".")
	if clean == "" {
		return nil
	}
	parts := strings.Split(clean, ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if segment := strings.TrimSpace(part); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func collectFieldKeys(form model.FormModel) map[string]struct{} {
	dest := make(map[string]struct{}, len(form.Fields)+len(form.Sections)*len(fieldspec.SubFields))
	for _, field := range form.Fields {
		dest[field.Key] = struct{}{}
	}
	for _, section := range form.Sections {
		for _, field := range section.Fields {
			dest[field.Key] = struct{}{}
		}
	}
	return dest
}

func qualify(field, message string) string {
	if strings.TrimSpace(field) == "" {
		return message
	}
	return field + " " + message
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
