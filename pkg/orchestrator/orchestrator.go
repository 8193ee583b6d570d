package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/goliatone/go-offerform/pkg/assembler"
	"github.com/goliatone/go-offerform/pkg/collector"
	"github.com/goliatone/go-offerform/pkg/drafts"
	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/render"
	"github.com/goliatone/go-offerform/pkg/renderers/htmlform"
	"github.com/goliatone/go-offerform/pkg/renderers/jsonform"
	"github.com/goliatone/go-offerform/pkg/renderers/text"
	"github.com/goliatone/go-offerform/pkg/sections"
	"github.com/goliatone/go-offerform/pkg/state"
	"github.com/goliatone/go-offerform/pkg/store"
	"github.com/goliatone/go-offerform/pkg/store/memstore"
	"github.com/goliatone/go-offerform/pkg/validation"
	"github.com/goliatone/go-offerform/pkg/widgets"
)

const defaultRendererName = text.Name

// ErrPrecondition wraps count and order errors detected before any section
// is collected.
var ErrPrecondition = errors.New("orchestrator: precondition failed")

// Messages shown for failures that are not tied to a single field.
const (
	MessageInvalidInput  = "Some values could not be read. Please check the highlighted fields."
	MessageInvalidRecord = "Please correct the highlighted fields before submitting."
	MessageStoreFailure  = "We could not save your submission. Please try again."
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithFieldRegistry selects the form profile.
func WithFieldRegistry(registry *fieldspec.Registry) Option {
	return func(o *Orchestrator) {
		o.fields = registry
	}
}

// WithGateway injects the persistence gateway.
func WithGateway(gateway *store.Gateway) Option {
	return func(o *Orchestrator) {
		o.gateway = gateway
	}
}

// WithValidator injects a placeholder validator. It must be built from the
// same registry.
func WithValidator(validator *validation.Validator) Option {
	return func(o *Orchestrator) {
		o.validator = validator
	}
}

// WithDrafts enables draft persistence. Drafts are deleted after a
// successful submit.
func WithDrafts(store drafts.Store) Option {
	return func(o *Orchestrator) {
		o.drafts = store
	}
}

// WithRenderers injects a renderer registry.
func WithRenderers(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.renderers = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a call names none.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithSanitizer replaces the free-text sanitizer.
func WithSanitizer(sanitizer render.Sanitizer) Option {
	return func(o *Orchestrator) {
		o.sanitizer = sanitizer
	}
}

// WithWidgets replaces the registry that assigns widget hints to form
// fields.
func WithWidgets(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		o.widgets = registry
	}
}

// WithDecorators adds decorators that run, in order, on every form model
// after widget hints are assigned.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		for _, decorator := range decorators {
			if decorator != nil {
				o.decorators = append(o.decorators, decorator)
			}
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator runs the submit pipeline: resolve sections, check
// placeholders, collect, assemble, validate, upsert.
type Orchestrator struct {
	fields          *fieldspec.Registry
	gateway         *store.Gateway
	validator       *validation.Validator
	drafts          drafts.Store
	renderers       *render.Registry
	defaultRenderer string
	sanitizer       render.Sanitizer
	widgets         *widgets.Registry
	decorators      []model.Decorator
	logger          *slog.Logger
}

// New constructs an Orchestrator. Missing collaborators fall back to the
// default profile, an in-memory store and the built-in renderers.
func New(options ...Option) (*Orchestrator, error) {
	o := &Orchestrator{defaultRenderer: defaultRendererName}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if err := o.applyDefaults(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Orchestrator) applyDefaults() error {
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.fields == nil {
		o.fields = fieldspec.MustDefault()
	}
	if o.gateway == nil {
		o.gateway = store.NewGateway(memstore.New(), store.WithLogger(o.logger))
	}
	if o.validator == nil {
		o.validator = validation.NewValidator(o.fields)
	}
	if o.sanitizer == nil {
		o.sanitizer = render.TextSanitizer()
	}
	if o.widgets == nil {
		o.widgets = widgets.NewRegistry()
	}
	if o.renderers == nil {
		textRenderer, err := text.New()
		if err != nil {
			return fmt.Errorf("orchestrator: default renderer: %w", err)
		}
		htmlRenderer, err := htmlform.New()
		if err != nil {
			return fmt.Errorf("orchestrator: default renderer: %w", err)
		}
		o.renderers = render.NewRegistry(textRenderer, jsonform.New(), htmlRenderer)
	}
	return nil
}

// Fields returns the active field registry.
func (o *Orchestrator) Fields() *fieldspec.Registry {
	return o.fields
}

// Gateway returns the persistence gateway.
func (o *Orchestrator) Gateway() *store.Gateway {
	return o.gateway
}

// Renderers returns the renderer registry.
func (o *Orchestrator) Renderers() *render.Registry {
	return o.renderers
}

// Request carries one submission as the rendering layer sees it.
type Request struct {
	// Email identifies the record. When empty the "email" entry of Fields
	// is used.
	Email string `json:"email"`
	// Count is the requested number of sections. Zero selects the profile
	// default.
	Count int `json:"count"`
	// Order is the chosen section order. Nil selects every available
	// section in build order.
	Order []string `json:"order"`
	// Fields holds raw values keyed by scalar or per-section field key.
	Fields map[string]any `json:"fields"`
}

// NewState returns a seeded state for the active profile.
func (o *Orchestrator) NewState() *state.FormState {
	s := state.New(o.fields)
	s.Seed(sections.Build(s.Count(), o.fields.Base()))
	return s
}

// Resolve checks count against the profile range and applies order to the
// identifiers it yields.
func (o *Orchestrator) Resolve(count int, order []string) (available, resolved []string, err error) {
	if count == 0 {
		count = o.fields.Range().Default
	}
	available, resolved, err = sections.Resolve(o.fields.Range(), count, o.fields.Base(), order)
	if err != nil {
		return available, nil, fmt.Errorf("%w: %w", ErrPrecondition, err)
	}
	return available, resolved, nil
}

// State builds a form state from a request. Unknown keys and keys of
// sections outside the requested count are ignored. Values that cannot be
// coerced are reported per key; the remaining values are still applied.
func (o *Orchestrator) State(req Request) (*state.FormState, map[string][]string, error) {
	available, order, err := o.Resolve(req.Count, req.Order)
	if err != nil {
		return nil, nil, err
	}

	s := state.New(o.fields)
	s.SetCount(len(available))
	if req.Order != nil {
		s.SetOrder(order)
	}
	s.Seed(available)

	inSection := make(map[string]struct{}, len(available))
	for _, id := range available {
		inSection[id] = struct{}{}
	}

	fields := make(map[string]any, len(req.Fields)+1)
	for key, value := range req.Fields {
		fields[key] = value
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		fields[fieldspec.KeyEmail] = email
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var invalid map[string][]string
	for _, key := range keys {
		if _, section, ok := fieldspec.SplitSectionKey(key); ok {
			if _, known := inSection[section]; !known {
				o.logger.Debug("ignoring value for unavailable section", "key", key)
				continue
			}
		}
		value := fields[key]
		if raw, ok := value.(string); ok {
			value = o.sanitizer.Sanitize(raw)
		}
		if err := s.Set(key, value); err != nil {
			if errors.Is(err, state.ErrUnknownField) {
				o.logger.Debug("ignoring unknown field", "key", key)
				continue
			}
			if invalid == nil {
				invalid = make(map[string][]string)
			}
			invalid[key] = append(invalid[key], err.Error())
		}
	}
	return s, invalid, nil
}

// Submit turns a request into a persisted record. Placeholder and record
// validation failures are reported through a not-OK Outcome with a nil
// error. Precondition and store failures are returned as errors.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (render.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return render.Outcome{}, err
	}
	s, invalid, err := o.State(req)
	if err != nil {
		return render.Outcome{}, err
	}
	if len(invalid) > 0 {
		out := render.Failure(MessageInvalidInput)
		out.Errors = invalid
		return out, nil
	}
	return o.SubmitState(ctx, s)
}

// SubmitState runs the pipeline over an existing form state.
func (o *Orchestrator) SubmitState(ctx context.Context, s *state.FormState) (render.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return render.Outcome{}, err
	}
	_, order, err := o.Resolve(s.Count(), s.Order())
	if err != nil {
		return render.Outcome{}, err
	}
	email := strings.TrimSpace(s.String(fieldspec.KeyEmail))
	logger := o.logger.With("email", email, "sections", len(order))

	if err := o.validator.CheckState(s, order); err != nil {
		logger.Info("submission still holds placeholder content")
		return render.Failure(validation.PlaceholderMessage), nil
	}

	items, err := collector.Collect(s, order)
	if err != nil {
		logger.Info("submission rejected while collecting sections", "error", err)
		return render.Failure(err.Error()), nil
	}
	record := assembler.Assemble(email, collector.Scalars(s), order, items)

	if err := validation.CheckRecord(o.fields, record); err != nil {
		var recordErr *validation.RecordError
		if !errors.As(err, &recordErr) {
			return render.Outcome{}, fmt.Errorf("orchestrator: validate record: %w", err)
		}
		logger.Info("submission failed record validation", "issues", len(recordErr.Issues))
		mapping := render.MapIssues(o.formModel(s.Count(), order), recordErr.Issues)
		out := render.Failure(MessageInvalidRecord)
		out.Issues = recordErr.Issues
		out.Errors = mapping.Fields
		out.FormErrors = mapping.Form
		return out, nil
	}

	op, err := o.gateway.Upsert(ctx, email, record)
	if err != nil {
		logger.Error("submission could not be stored", "error", err)
		return render.Failure(MessageStoreFailure), fmt.Errorf("orchestrator: persist submission: %w", err)
	}

	if o.drafts != nil {
		if err := o.drafts.Delete(ctx, email); err != nil {
			logger.Warn("draft could not be removed", "error", err)
		}
	}

	logger.Info("submission stored", "operation", string(op))
	return render.Success(op, record), nil
}

// Lookup returns the stored record for email.
func (o *Orchestrator) Lookup(ctx context.Context, email string) (model.FormSubmission, bool, error) {
	return o.gateway.FindByIdentifier(ctx, email)
}

// SaveDraft stores a snapshot of s under its email. It is a no-op when no
// draft store is configured.
func (o *Orchestrator) SaveDraft(ctx context.Context, s *state.FormState) error {
	if o.drafts == nil {
		return nil
	}
	snapshot, err := s.Snapshot()
	if err != nil {
		return fmt.Errorf("orchestrator: snapshot draft: %w", err)
	}
	if err := o.drafts.Save(ctx, s.String(fieldspec.KeyEmail), snapshot); err != nil {
		return fmt.Errorf("orchestrator: save draft: %w", err)
	}
	return nil
}

// LoadDraft restores the draft saved for email. found is false when no draft
// store is configured or no draft exists.
func (o *Orchestrator) LoadDraft(ctx context.Context, email string) (*state.FormState, bool, error) {
	if o.drafts == nil {
		return nil, false, nil
	}
	data, found, err := o.drafts.Load(ctx, email)
	if err != nil || !found {
		return nil, false, err
	}
	s, err := state.Restore(o.fields, data)
	if err != nil {
		return nil, false, fmt.Errorf("orchestrator: restore draft: %w", err)
	}
	return s, true, nil
}
