package htmlform

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/render"
)

// FieldView is the data a component template receives for one field.
type FieldView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Help        string   `json:"help,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Value       string   `json:"value"`
	Selected    []string `json:"selected,omitempty"`
	Options     []string `json:"options,omitempty"`
	Required    bool     `json:"required"`
	Min         string   `json:"min,omitempty"`
	Step        string   `json:"step,omitempty"`
	DependsOn   string   `json:"dependsOn,omitempty"`
	Hidden      bool     `json:"hidden"`
	Errors      []string `json:"errors,omitempty"`
}

func newFieldView(field model.FieldSpec, options render.RenderOptions) FieldView {
	label := field.Label
	if label == "" {
		label = field.Key
	}
	view := FieldView{
		ID:          controlID(field.Key),
		Name:        field.Key,
		Label:       label,
		Help:        field.Help,
		Placeholder: field.Placeholder,
		Options:     field.Enum,
		DependsOn:   field.DependsOn,
		Errors:      options.Errors[field.Key],
	}

	value, ok := options.Values[field.Key]
	if !ok || value == nil {
		value = field.Default
	}
	switch v := value.(type) {
	case nil:
	case []string:
		view.Selected = v
	case []any:
		for _, item := range v {
			view.Selected = append(view.Selected, fmt.Sprint(item))
		}
	default:
		view.Value = fmt.Sprint(v)
	}

	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRuleRequired:
			view.Required = true
		case model.ValidationRuleMin:
			view.Min = rule.Params["value"]
		case model.ValidationRuleStep:
			view.Step = rule.Params["value"]
		}
	}

	if key, want, found := strings.Cut(field.DependsOn, "="); found {
		got := options.Values[strings.TrimSpace(key)]
		view.Hidden = fmt.Sprint(got) != strings.TrimSpace(want)
	}
	return view
}

func buildFieldMarkup(view FieldView, componentName string, descriptor Descriptor, control string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`  <div class="grid gap-2" data-field="`)
	builder.WriteString(html.EscapeString(view.Name))
	builder.WriteString(`" data-component="`)
	builder.WriteString(html.EscapeString(componentName))
	builder.WriteString(`"`)
	if view.DependsOn != "" {
		builder.WriteString(` data-depends-on="`)
		builder.WriteString(html.EscapeString(view.DependsOn))
		builder.WriteString(`"`)
	}
	if view.Hidden {
		builder.WriteString(` hidden`)
	}
	builder.WriteString(">\n")

	if descriptor.Grouped {
		builder.WriteString(`    <span id="`)
		builder.WriteString(view.ID)
		builder.WriteString(`-label" class="text-sm font-medium text-gray-900">`)
	} else {
		builder.WriteString(`    <label for="`)
		builder.WriteString(view.ID)
		builder.WriteString(`" class="text-sm font-medium text-gray-900">`)
	}
	builder.WriteString(html.EscapeString(view.Label))
	if view.Required {
		builder.WriteString(` *`)
	}
	if descriptor.Grouped {
		builder.WriteString("</span>\n")
	} else {
		builder.WriteString("</label>\n")
	}

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("    ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	if help := strings.TrimSpace(view.Help); help != "" {
		builder.WriteString(`    <small class="text-sm text-gray-500">`)
		builder.WriteString(html.EscapeString(help))
		builder.WriteString("</small>\n")
	}
	for _, message := range view.Errors {
		builder.WriteString(`    <p class="text-sm text-red-600" role="alert">`)
		builder.WriteString(html.EscapeString(message))
		builder.WriteString("</p>\n")
	}

	builder.WriteString("  </div>\n")
	return builder.String()
}

// controlID derives an element id from a field key. Section keys contain
// spaces, which ids may not.
func controlID(key string) string {
	var builder strings.Builder
	builder.WriteString("fg-")
	for _, r := range strings.ToLower(strings.TrimSpace(key)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			builder.WriteRune(r)
		default:
			builder.WriteByte('-')
		}
	}
	return builder.String()
}
