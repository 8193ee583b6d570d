package jsonform_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/render"
	"github.com/goliatone/go-offerform/pkg/renderers/jsonform"
)

func TestRenderer_Render(t *testing.T) {
	form := model.FormModel{
		ID:    "ascension",
		Order: []string{"Low Ticket"},
		Sections: []model.SectionModel{
			{ID: "Low Ticket", Fields: []model.FieldSpec{{Key: "price_Low Ticket", Type: model.FieldTypeInteger}}},
		},
	}
	options := render.RenderOptions{
		Values: map[string]any{"price_Low Ticket": float64(100)},
		Errors: map[string][]string{"price_Low Ticket": {"must be at least 0"}},
	}

	out, err := jsonform.New().Render(context.Background(), form, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got jsonform.Payload
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := jsonform.Payload{Form: form, Values: options.Values, Errors: options.Errors}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_Indent(t *testing.T) {
	out, err := jsonform.New(jsonform.WithIndent("  ")).Render(context.Background(), model.FormModel{ID: "x"}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), "\n  \"form\"") {
		t.Fatalf("expected indented output, got %s", out)
	}
}
