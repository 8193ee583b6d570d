package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/render"
)

// Name is the registry name of the terminal renderer.
const Name = "tui"

// Renderer implements render.Renderer for terminal-driven sessions: it
// prompts for every visible field of a form model and serializes the
// answers.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for the scalar fields and then each section of form,
// starting from opts.Values, and returns the collected values.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	store := newAnswers(opts.Values, opts.Errors)
	for _, message := range opts.FormErrors {
		r.errorf(ctx, "%s", message)
	}
	if err := r.promptFields(ctx, form.Fields, store); err != nil {
		return nil, err
	}
	for _, section := range form.Sections {
		if err := r.promptSection(ctx, section, store); err != nil {
			return nil, err
		}
	}

	values := store.values
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	return r.serialize(values)
}

func (r *Renderer) promptSection(ctx context.Context, section model.SectionModel, store answerStore) error {
	if err := r.driver.Info(ctx, r.theme.SectionPrefix+section.ID); err != nil {
		return err
	}
	return r.promptFields(ctx, section.Fields, store)
}

func (r *Renderer) promptFields(ctx context.Context, fields []model.FieldSpec, store answerStore) error {
	for _, field := range fields {
		if !visible(field, store) {
			continue
		}
		if err := r.promptField(ctx, field, store); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, field model.FieldSpec, store answerStore) error {
	for _, message := range store.errorsFor(field.Key) {
		r.errorf(ctx, "%s: %s", displayLabel(field), message)
	}
	switch {
	case len(field.Enum) > 0:
		return r.promptEnum(ctx, field, store)
	case field.Type == model.FieldTypeInteger:
		return r.promptNumber(ctx, field, store)
	case field.Type == model.FieldTypeText:
		return r.promptText(ctx, field, store)
	default:
		return r.promptString(ctx, field, store)
	}
}

func (r *Renderer) promptString(ctx context.Context, field model.FieldSpec, store answerStore) error {
	rules := collectValidationRules(field)
	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message:   displayLabel(field),
			Default:   defaultStringValue(store, field),
			Help:      displayHelp(field),
			Validator: rules.validateString,
		})
		if err != nil {
			return err
		}
		if err := rules.validateString(response); err != nil {
			r.errorf(ctx, "Invalid %s: %v", displayLabel(field), err)
			continue
		}
		return r.store(ctx, store, field, response)
	}
}

func (r *Renderer) promptText(ctx context.Context, field model.FieldSpec, store answerStore) error {
	rules := collectValidationRules(field)
	for {
		response, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: displayLabel(field),
			Default: defaultStringValue(store, field),
			Help:    displayHelp(field),
		})
		if err != nil {
			return err
		}
		if err := rules.validateString(response); err != nil {
			r.errorf(ctx, "Invalid %s: %v", displayLabel(field), err)
			continue
		}
		return r.store(ctx, store, field, response)
	}
}

func (r *Renderer) promptNumber(ctx context.Context, field model.FieldSpec, store answerStore) error {
	rules := collectValidationRules(field)
	defaultVal, hasDefault := defaultIntValue(store, field)
	defaultStr := ""
	if hasDefault {
		defaultStr = strconv.Itoa(defaultVal)
	}

	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message:   displayLabel(field),
			Default:   defaultStr,
			Help:      displayHelp(field),
			Validator: rules.validateIntText,
		})
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" && hasDefault {
			input = defaultStr
		}
		if err := rules.validateIntText(input); err != nil {
			r.errorf(ctx, "Invalid %s: %v", displayLabel(field), err)
			continue
		}
		parsed, _ := strconv.Atoi(input)
		return r.store(ctx, store, field, parsed)
	}
}

func (r *Renderer) promptEnum(ctx context.Context, field model.FieldSpec, store answerStore) error {
	options := field.Enum
	defaultIdx := indexOf(options, defaultStringValue(store, field))

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(field),
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         displayHelp(field),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			r.errorf(ctx, "Invalid %s selection", displayLabel(field))
			continue
		}
		return r.store(ctx, store, field, options[idx])
	}
}

func (r *Renderer) store(ctx context.Context, store answerStore, field model.FieldSpec, value any) error {
	if err := store.set(field.Key, value); err != nil {
		return fmt.Errorf("tui: store %s: %w", field.Key, err)
	}
	return ctx.Err()
}

func (r *Renderer) infof(ctx context.Context, format string, args ...any) {
	_ = r.driver.Info(ctx, r.theme.InfoPrefix+fmt.Sprintf(format, args...))
}

func (r *Renderer) errorf(ctx context.Context, format string, args ...any) {
	_ = r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf(format, args...))
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

// visible evaluates a "key=value" dependency against the current answers.
func visible(field model.FieldSpec, store answerStore) bool {
	if field.DependsOn == "" {
		return true
	}
	key, want, ok := strings.Cut(field.DependsOn, "=")
	if !ok {
		return true
	}
	got, _ := store.value(strings.TrimSpace(key))
	return fmt.Sprint(got) == strings.TrimSpace(want)
}

func displayLabel(field model.FieldSpec) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Key
}

func displayHelp(field model.FieldSpec) string {
	help := field.Help
	if rule, ok := field.Rule(model.ValidationRuleStep); ok && rule.Params["value"] != "" && help == "" {
		help = "Suggested step: " + rule.Params["value"]
	}
	return help
}

func defaultStringValue(store answerStore, field model.FieldSpec) string {
	if v, ok := store.value(field.Key); ok && v != nil {
		return fmt.Sprint(v)
	}
	if field.Placeholder != "" {
		return field.Placeholder
	}
	if field.Default != nil {
		return fmt.Sprint(field.Default)
	}
	return ""
}

func defaultIntValue(store answerStore, field model.FieldSpec) (int, bool) {
	candidates := []any{field.Default}
	if v, ok := store.value(field.Key); ok {
		candidates = append([]any{v}, candidates...)
	}
	for _, candidate := range candidates {
		switch n := candidate.(type) {
		case int:
			return n, true
		case int64:
			return int(n), true
		case float64:
			if n == float64(int(n)) {
				return int(n), true
			}
		case string:
			if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

type validationRules struct {
	required bool
	min      *int
	max      *int
}

func collectValidationRules(field model.FieldSpec) validationRules {
	var rules validationRules
	for _, v := range field.Validations {
		switch v.Kind {
		case model.ValidationRuleRequired:
			rules.required = true
		case model.ValidationRuleMin:
			if val, err := strconv.Atoi(v.Params["value"]); err == nil {
				rules.min = &val
			}
		case model.ValidationRuleMax:
			if val, err := strconv.Atoi(v.Params["value"]); err == nil {
				rules.max = &val
			}
		}
	}
	return rules
}

func (r validationRules) validateString(value string) error {
	if r.required && strings.TrimSpace(value) == "" {
		return errors.New("required")
	}
	return nil
}

func (r validationRules) validateIntText(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("required")
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%q is not a whole number", value)
	}
	if r.min != nil && n < *r.min {
		return fmt.Errorf("must be at least %d", *r.min)
	}
	if r.max != nil && n > *r.max {
		return fmt.Errorf("must be at most %d", *r.max)
	}
	return nil
}

func flattenForm(values map[string]any) string {
	out := url.Values{}
	for key, value := range values {
		switch v := value.(type) {
		case []string:
			for _, item := range v {
				out.Add(key+"[]", item)
			}
		case nil:
			out.Set(key, "")
		default:
			out.Set(key, fmt.Sprint(v))
		}
	}
	return out.Encode()
}

func prettyPrint(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%v\n", key, values[key])
	}
	return b.String()
}
