package tui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/render"
	"github.com/goliatone/go-offerform/pkg/state"
)

// MessageDraftKept is reported when the user leaves without submitting.
const MessageDraftKept = "Your answers were saved as a draft. Run the session again with the same email to continue."

// Pipeline is the subset of the orchestrator a session drives.
type Pipeline interface {
	NewState() *state.FormState
	Form(count int, order []string) (model.FormModel, error)
	SubmitState(ctx context.Context, s *state.FormState) (render.Outcome, error)
	SaveDraft(ctx context.Context, s *state.FormState) error
	LoadDraft(ctx context.Context, email string) (*state.FormState, bool, error)
}

var emailCheck = validator.New()

// Session walks a user through the whole form: email, scalar fields,
// section count and order, then every selected section, and submits the
// result. Answers are saved as a draft before submitting.
type Session struct {
	renderer *Renderer
	pipeline Pipeline
}

// NewSession binds a renderer to a pipeline. A nil renderer selects the
// survey driver.
func NewSession(pipeline Pipeline, renderer *Renderer) *Session {
	if renderer == nil {
		renderer, _ = New()
	}
	return &Session{renderer: renderer, pipeline: pipeline}
}

// Run executes one guided session and returns the final submit outcome.
func (s *Session) Run(ctx context.Context) (render.Outcome, error) {
	if s.pipeline == nil {
		return render.Outcome{}, ErrNoPipeline
	}
	r := s.renderer

	intro, err := s.pipeline.Form(0, nil)
	if err != nil {
		return render.Outcome{}, err
	}
	if intro.Title != "" {
		r.infof(ctx, "%s", intro.Title)
	}

	email, err := s.promptEmail(ctx, intro)
	if err != nil {
		return render.Outcome{}, err
	}
	fs, err := s.startState(ctx, email)
	if err != nil {
		return render.Outcome{}, err
	}

	var flagged map[string][]string
	for {
		if err := s.collect(ctx, fs, flagged); err != nil {
			return render.Outcome{}, err
		}
		if err := s.pipeline.SaveDraft(ctx, fs); err != nil {
			r.errorf(ctx, "Could not save a draft: %v", err)
		}

		submit, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Submit your answers now?", Default: true})
		if err != nil {
			return render.Outcome{}, err
		}
		if !submit {
			r.infof(ctx, "%s", MessageDraftKept)
			return render.Failure(MessageDraftKept), nil
		}

		out, err := s.pipeline.SubmitState(ctx, fs)
		s.report(ctx, out)
		if err != nil || out.OK {
			return out, err
		}

		retry, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Review your answers and try again?", Default: true})
		if err != nil {
			return out, err
		}
		if !retry {
			return out, nil
		}
		flagged = out.Errors
	}
}

func (s *Session) promptEmail(ctx context.Context, form model.FormModel) (string, error) {
	field := model.FieldSpec{Key: fieldspec.KeyEmail, Label: "Email Address"}
	for _, candidate := range form.Fields {
		if candidate.Key == fieldspec.KeyEmail {
			field = candidate
		}
	}
	check := func(value string) error {
		if err := emailCheck.Var(strings.TrimSpace(value), "required,email"); err != nil {
			return fmt.Errorf("enter a valid email address")
		}
		return nil
	}
	for {
		email, err := s.renderer.driver.Input(ctx, InputConfig{
			Message:   displayLabel(field),
			Help:      displayHelp(field),
			Validator: check,
		})
		if err != nil {
			return "", err
		}
		if err := check(email); err != nil {
			s.renderer.errorf(ctx, "%v", err)
			continue
		}
		return strings.TrimSpace(email), nil
	}
}

func (s *Session) startState(ctx context.Context, email string) (*state.FormState, error) {
	fs, found, err := s.pipeline.LoadDraft(ctx, email)
	if err != nil {
		s.renderer.errorf(ctx, "Could not load your draft: %v", err)
	}
	if found {
		resume, err := s.renderer.driver.Confirm(ctx, ConfirmConfig{Message: "Resume your saved answers?", Default: true})
		if err != nil {
			return nil, err
		}
		if !resume {
			found = false
		}
	}
	if !found {
		fs = s.pipeline.NewState()
	}
	if err := fs.Set(fieldspec.KeyEmail, email); err != nil {
		return nil, err
	}
	return fs, nil
}

// collect prompts every field when flagged is empty, or only the flagged
// keys of a previous attempt otherwise.
func (s *Session) collect(ctx context.Context, fs *state.FormState, flagged map[string][]string) error {
	r := s.renderer
	store := &formAnswers{state: fs, errors: flagged}

	form, err := s.pipeline.Form(fs.Count(), fs.Order())
	if err != nil {
		form, err = s.pipeline.Form(0, nil)
		if err != nil {
			return err
		}
	}

	if len(flagged) > 0 {
		return r.promptFields(ctx, onlyFlagged(form, flagged), store)
	}

	scalars := make([]model.FieldSpec, 0, len(form.Fields))
	for _, field := range form.Fields {
		if field.Key != fieldspec.KeyEmail {
			scalars = append(scalars, field)
		}
	}
	if err := r.promptFields(ctx, scalars, store); err != nil {
		return err
	}

	count, err := s.promptCount(ctx, form)
	if err != nil {
		return err
	}
	available, err := s.pipeline.Form(count, nil)
	if err != nil {
		return err
	}
	order, err := s.promptOrder(ctx, available.Available, fs.Order())
	if err != nil {
		return err
	}

	fs.SetCount(count)
	fs.SetOrder(order)
	fs.Seed(available.Available)

	form, err = s.pipeline.Form(count, order)
	if err != nil {
		return err
	}
	for _, section := range form.Sections {
		if err := r.promptSection(ctx, section, store); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) promptCount(ctx context.Context, form model.FormModel) (int, error) {
	r := s.renderer
	check := func(value string) error {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < form.CountMin || n > form.CountMax {
			return fmt.Errorf("enter a number between %d and %d", form.CountMin, form.CountMax)
		}
		return nil
	}
	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message:   "How many offers do you want to describe?",
			Default:   strconv.Itoa(form.Count),
			Help:      fmt.Sprintf("Between %d and %d.", form.CountMin, form.CountMax),
			Validator: check,
		})
		if err != nil {
			return 0, err
		}
		if strings.TrimSpace(input) == "" {
			input = strconv.Itoa(form.Count)
		}
		if err := check(input); err != nil {
			r.errorf(ctx, "%v", err)
			continue
		}
		n, _ := strconv.Atoi(strings.TrimSpace(input))
		return n, nil
	}
}

// promptOrder asks which sections to include and, when more than one is
// picked, whether to reorder them.
func (s *Session) promptOrder(ctx context.Context, available, current []string) ([]string, error) {
	r := s.renderer

	defaults := indicesOfOrdered(available, current)
	if len(defaults) == 0 {
		for idx := range available {
			defaults = append(defaults, idx)
		}
	}

	for {
		picked, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  "Which offers do you want to include?",
			Options:  available,
			Defaults: defaults,
		})
		if err != nil {
			return nil, err
		}
		chosen := valuesFromIndices(available, picked)
		if len(chosen) == 0 {
			r.errorf(ctx, "Select at least one offer.")
			continue
		}
		if len(chosen) == 1 {
			return chosen, nil
		}

		keep, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: "Keep this order: " + strings.Join(chosen, " > ") + "?",
			Default: true,
		})
		if err != nil {
			return nil, err
		}
		if keep {
			return chosen, nil
		}
		return s.pickOrder(ctx, chosen)
	}
}

func (s *Session) pickOrder(ctx context.Context, chosen []string) ([]string, error) {
	remaining := append([]string(nil), chosen...)
	order := make([]string, 0, len(chosen))
	for len(remaining) > 1 {
		idx, err := s.renderer.driver.Select(ctx, SelectConfig{
			Message: fmt.Sprintf("Offer #%d", len(order)+1),
			Options: remaining,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(remaining) {
			s.renderer.errorf(ctx, "Invalid selection")
			continue
		}
		order = append(order, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return append(order, remaining...), nil
}

func (s *Session) report(ctx context.Context, out render.Outcome) {
	r := s.renderer
	if out.OK {
		r.infof(ctx, "%s", out.Message)
		return
	}
	r.errorf(ctx, "%s", out.Message)
	for _, message := range out.FormErrors {
		r.errorf(ctx, "%s", message)
	}
	keys := make([]string, 0, len(out.Errors))
	for key := range out.Errors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		r.errorf(ctx, "%s: %s", key, strings.Join(out.Errors[key], "; "))
	}
}

func onlyFlagged(form model.FormModel, flagged map[string][]string) []model.FieldSpec {
	var out []model.FieldSpec
	add := func(fields []model.FieldSpec) {
		for _, field := range fields {
			if _, ok := flagged[field.Key]; ok {
				out = append(out, field)
			}
		}
	}
	add(form.Fields)
	for _, section := range form.Sections {
		add(section.Fields)
	}
	return out
}

// indicesOfOrdered maps values to their indices in options, keeping the
// order of values.
func indicesOfOrdered(options, values []string) []int {
	var out []int
	for _, value := range values {
		if idx := indexOf(options, value); idx >= 0 {
			out = append(out, idx)
		}
	}
	return out
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}

// valuesFromIndices maps selected indices back to options, in selection
// order. Out-of-range indices are dropped.
func valuesFromIndices(options []string, indices []int) []string {
	var out []string
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			out = append(out, options[idx])
		}
	}
	return out
}
