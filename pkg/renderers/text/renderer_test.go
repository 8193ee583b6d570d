package text_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/render"
	"github.com/goliatone/go-offerform/pkg/renderers/text"
)

func sampleForm() model.FormModel {
	return model.FormModel{
		ID:       "ascension",
		Title:    "Build Your Ascension Model",
		Count:    3,
		CountMin: 3,
		CountMax: 5,
		Order:    []string{"High Ticket", "Low Ticket"},
		Fields: []model.FieldSpec{
			{Key: "email", Label: "Email Address", Type: model.FieldTypeString},
			{Key: "uvp_type", Label: "Unique Value Proposition Type", Type: model.FieldTypeEnum, Enum: []string{"Bespoke", "Other"}},
			{Key: "other_uvp_desc", Type: model.FieldTypeText, DependsOn: "uvp_type=Other"},
		},
		Sections: []model.SectionModel{
			{ID: "High Ticket", Fields: []model.FieldSpec{
				{Key: "price_High Ticket", Label: "High Ticket Offer Price", Type: model.FieldTypeInteger, Help: "Prices move in steps of $50."},
			}},
			{ID: "Low Ticket", Fields: []model.FieldSpec{
				{Key: "product_name_Low Ticket", Label: "Low Ticket Offer Name", Type: model.FieldTypeString},
			}},
		},
	}
}

func TestRenderer_Render(t *testing.T) {
	renderer, err := text.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.Name() != "text" || !strings.HasPrefix(renderer.ContentType(), "text/plain") {
		t.Fatalf("unexpected identity %q %q", renderer.Name(), renderer.ContentType())
	}

	out, err := renderer.Render(context.Background(), sampleForm(), render.RenderOptions{
		Values: map[string]any{
			"email":                   "coach@example.com",
			"price_High Ticket":       1500,
			"product_name_Low Ticket": "Q&A Starter",
		},
		Errors:     map[string][]string{"price_High Ticket": {"must be at least 0"}},
		FormErrors: []string{"num_ticket_items is 3 but ticket_order has 2 entries"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(out)

	for _, want := range []string{
		"Build Your Ascension Model",
		"Sections: 3 (allowed 3-5)",
		"Order: High Ticket, Low Ticket",
		"! num_ticket_items is 3 but ticket_order has 2 entries",
		"- Email Address [email]",
		"value: coach@example.com",
		"(Bespoke | Other)",
		"[other_uvp_desc] when uvp_type=Other",
		"## High Ticket",
		"value: $1,500",
		"Prices move in steps of $50.",
		"! must be at least 0",
		"value: Q&A Starter",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "## High Ticket") > strings.Index(got, "## Low Ticket") {
		t.Fatalf("sections not rendered in order:\n%s", got)
	}
}

func TestRenderer_CustomTemplates(t *testing.T) {
	files := fstest.MapFS{
		"templates/form.tpl": {Data: []byte(`{{ form.id }}:{% for group in groups %}{{ group.fields|length }};{% endfor %}`)},
	}
	renderer, err := text.New(text.WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), sampleForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got, want := string(out), "ascension:3;1;1;"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}
