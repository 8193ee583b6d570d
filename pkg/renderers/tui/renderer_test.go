package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-offerform/pkg/drafts"
	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/orchestrator"
	"github.com/goliatone/go-offerform/pkg/render"
	"github.com/goliatone/go-offerform/pkg/store"
	"github.com/goliatone/go-offerform/pkg/store/memstore"
	"github.com/goliatone/go-offerform/pkg/validation"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) sawMessage(fragment string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func TestRender_FieldsAndSections(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Starter", "abc", "250"},
		selectIdx: []int{0},
		textAreas: []string{"Founders"},
	}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	form := model.FormModel{
		Fields: []model.FieldSpec{
			{Key: "avatar_desc", Type: model.FieldTypeText, Label: "Avatar"},
			{Key: "uvp_type", Type: model.FieldTypeEnum, Enum: []string{"Bespoke", "Other"}},
			{Key: "other_uvp_desc", Type: model.FieldTypeText, DependsOn: "uvp_type=Other"},
		},
		Sections: []model.SectionModel{{
			ID: "Low Ticket",
			Fields: []model.FieldSpec{
				{Key: "product_name_Low Ticket", Type: model.FieldTypeString},
				{Key: "price_Low Ticket", Type: model.FieldTypeInteger, Validations: []model.ValidationRule{
					{Kind: model.ValidationRuleMin, Params: map[string]string{"value": "0"}},
				}},
			},
		}},
	}

	out, err := r.Render(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := "avatar_desc=Founders\nprice_Low Ticket=250\nproduct_name_Low Ticket=Starter\nuvp_type=Bespoke\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if driver.textPos != 1 {
		t.Fatalf("dependent field should be skipped, got %d textarea prompts", driver.textPos)
	}
	if !driver.sawMessage("== Low Ticket") {
		t.Fatalf("expected section heading, got %v", driver.infoMessages)
	}
	if !driver.sawMessage("is not a whole number") {
		t.Fatalf("expected validation message for invalid price, got %v", driver.infoMessages)
	}
}

func TestRender_PrefillAndErrors(t *testing.T) {
	driver := &stubDriver{inputs: []string{""}}
	r, _ := New(WithPromptDriver(driver))

	form := model.FormModel{Fields: []model.FieldSpec{
		{Key: "price_High Ticket", Type: model.FieldTypeInteger, Label: "Price", Default: 100},
	}}
	out, err := r.Render(context.Background(), form, render.RenderOptions{
		Values:     map[string]any{"price_High Ticket": 900},
		Errors:     map[string][]string{"price_High Ticket": {"too low"}},
		FormErrors: []string{"check your prices"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff(`{"price_High Ticket":900}`, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if !driver.sawMessage("! check your prices") || !driver.sawMessage("! Price: too low") {
		t.Fatalf("expected errors to be shown, got %v", driver.infoMessages)
	}
	if r.ContentType() != "application/json" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func newPipeline(t *testing.T) (*orchestrator.Orchestrator, *drafts.MemoryStore) {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	draftStore := drafts.NewMemoryStore(0)
	o, err := orchestrator.New(
		orchestrator.WithLogger(quiet),
		orchestrator.WithGateway(store.NewGateway(memstore.New(), store.WithLogger(quiet))),
		orchestrator.WithDrafts(draftStore),
	)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return o, draftStore
}

// scriptedSession answers every prompt of a three-section session.
func scriptedSession(avatar string, confirms ...bool) *stubDriver {
	return &stubDriver{
		inputs: []string{
			"not-an-email", "coach@example.com",
			"3",
			"Starter", "-5", "150",
			"Cohort", "450",
			"Mastermind", "2000",
		},
		selectIdx: []int{1, 0, 2, 3},
		multiIdx:  [][]int{{0, 1, 2}},
		textAreas: []string{
			avatar, "Burnout", "Weekly calls", "Free checklist",
			"Six modules", "Less stress",
			"Cohort calls", "Accountability",
			"Retreat", "Clarity",
		},
		confirm: confirms,
	}
}

func TestSession_SubmitsRecord(t *testing.T) {
	pipeline, _ := newPipeline(t)
	driver := scriptedSession("Founders of remote teams", true, true)
	r, _ := New(WithPromptDriver(driver))

	out, err := NewSession(pipeline, r).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !out.OK || out.Operation != store.OutcomeInserted {
		t.Fatalf("unexpected outcome: %#v (messages %v)", out, driver.infoMessages)
	}
	if !driver.sawMessage("enter a valid email address") || !driver.sawMessage("must be at least 0") {
		t.Fatalf("expected validation messages, got %v", driver.infoMessages)
	}

	record, found, err := pipeline.Lookup(context.Background(), "coach@example.com")
	if err != nil || !found {
		t.Fatalf("lookup: found=%v err=%v", found, err)
	}
	gotTypes := []string{record.TicketItems[0].ProductType, record.TicketItems[1].ProductType, record.TicketItems[2].ProductType}
	if diff := cmp.Diff([]string{"Online Course", "Virtual Coaching", "In-Person Coaching"}, gotTypes); diff != "" {
		t.Fatalf("product types mismatch (-want +got):\n%s", diff)
	}
	if record.TicketItems[0].Price != 150 || record.UVPType != "Bespoke" || record.OtherUVPDesc != nil {
		t.Fatalf("unexpected record: %#v", record)
	}
}

func TestSession_PlaceholderKeptIsRejected(t *testing.T) {
	pipeline, draftStore := newPipeline(t)
	driver := scriptedSession("Example: A busy working mom seeking inner peace and balance.", true, true, false)
	r, _ := New(WithPromptDriver(driver))

	out, err := NewSession(pipeline, r).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.OK || out.Message != validation.PlaceholderMessage {
		t.Fatalf("unexpected outcome: %#v", out)
	}
	if _, found, _ := pipeline.Lookup(context.Background(), "coach@example.com"); found {
		t.Fatalf("record should not be stored")
	}
	if _, found, _ := draftStore.Load(context.Background(), "coach@example.com"); !found {
		t.Fatalf("draft should be kept after a rejected submit")
	}
}

func TestSession_LeaveWithoutSubmitting(t *testing.T) {
	pipeline, draftStore := newPipeline(t)
	driver := scriptedSession("Founders of remote teams", true, false)
	r, _ := New(WithPromptDriver(driver))

	out, err := NewSession(pipeline, r).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.OK || out.Message != MessageDraftKept {
		t.Fatalf("unexpected outcome: %#v", out)
	}
	if _, found, _ := draftStore.Load(context.Background(), "coach@example.com"); !found {
		t.Fatalf("expected a saved draft")
	}
}

func TestSession_PickOrder(t *testing.T) {
	driver := &stubDriver{
		multiIdx:  [][]int{{}, {0, 1, 2}},
		confirm:   []bool{false},
		selectIdx: []int{2, 0},
	}
	r, _ := New(WithPromptDriver(driver))
	session := NewSession(nil, r)

	order, err := session.promptOrder(context.Background(), []string{"Low Ticket", "Medium Ticket", "High Ticket"}, nil)
	if err != nil {
		t.Fatalf("prompt order: %v", err)
	}
	if diff := cmp.Diff([]string{"High Ticket", "Low Ticket", "Medium Ticket"}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if !driver.sawMessage("Select at least one offer.") {
		t.Fatalf("expected empty selection message, got %v", driver.infoMessages)
	}
}

func TestSession_RequiresPipeline(t *testing.T) {
	r, _ := New(WithPromptDriver(&stubDriver{}))
	if _, err := NewSession(nil, r).Run(context.Background()); !errors.Is(err, ErrNoPipeline) {
		t.Fatalf("expected ErrNoPipeline, got %v", err)
	}
}
