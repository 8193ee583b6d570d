package validation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/state"
	"github.com/goliatone/go-offerform/pkg/validation"
)

func TestIsValid_PrefixMode(t *testing.T) {
	v := validation.NewValidator(fieldspec.MustDefault())

	cases := []struct {
		name   string
		fields map[string]any
		want   bool
	}{
		{
			name:   "sentinel present",
			fields: map[string]any{"avatar_desc": "Example: busy moms", "lead_magnet_desc": "Free guide"},
			want:   false,
		},
		{
			name:   "all replaced",
			fields: map[string]any{"avatar_desc": "Founders", "lead_magnet_desc": "Free guide", "price_Low Ticket": 100},
			want:   true,
		},
		{
			name:   "leading whitespace still matches",
			fields: map[string]any{"avatar_desc": "  Example: x"},
			want:   false,
		},
		{
			name:   "sentinel later in the text",
			fields: map[string]any{"benefits_Low Ticket": "For Example: calm"},
			want:   true,
		},
		{
			name:   "empty mapping",
			fields: map[string]any{},
			want:   true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := v.IsValid(tc.fields); got != tc.want {
				t.Fatalf("IsValid = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsValid_ExactMode(t *testing.T) {
	reg := fieldspec.MustDefault()
	v := validation.NewValidator(reg, validation.WithMode(fieldspec.ModeExact))
	if v.Mode() != fieldspec.ModeExact {
		t.Fatalf("expected exact mode, got %s", v.Mode())
	}

	placeholder := reg.Placeholder(fieldspec.KeyAvatarDesc)
	if v.IsValid(map[string]any{fieldspec.KeyAvatarDesc: placeholder}) {
		t.Fatalf("exact placeholder must be rejected")
	}
	if !v.IsValid(map[string]any{fieldspec.KeyAvatarDesc: placeholder + " edited"}) {
		t.Fatalf("edited placeholder must pass in exact mode")
	}
	if !v.IsValid(map[string]any{fieldspec.KeyEmail: "Example: not tracked"}) {
		t.Fatalf("fields without a placeholder never match in exact mode")
	}
}

func TestCheckState(t *testing.T) {
	reg := fieldspec.MustDefault()
	v := validation.NewValidator(reg)
	order := []string{"Low Ticket"}

	s := state.New(reg)
	s.Seed(order)
	if err := v.CheckState(s, order); !errors.Is(err, validation.ErrPlaceholderPresent) {
		t.Fatalf("seeded state must fail, got %v", err)
	}
	if err := v.CheckState(s, order); err.Error() != validation.PlaceholderMessage {
		t.Fatalf("unexpected message %q", err.Error())
	}

	fill(t, s, order)
	if err := v.CheckState(s, order); err != nil {
		t.Fatalf("filled state should pass, got %v", err)
	}

	if err := s.Set(fieldspec.KeyLeadMagnetDesc, "Example: still a sample"); err != nil {
		t.Fatal(err)
	}
	if err := v.CheckState(s, order); !errors.Is(err, validation.ErrPlaceholderPresent) {
		t.Fatalf("sentinel text typed by the user must fail, got %v", err)
	}
}

func TestCheckState_IgnoresDeselectedSections(t *testing.T) {
	reg := fieldspec.MustDefault()
	v := validation.NewValidator(reg)
	s := state.New(reg)
	s.Seed([]string{"Low Ticket", "Medium Ticket"})

	order := []string{"Medium Ticket"}
	fill(t, s, order)
	if err := v.CheckState(s, order); err != nil {
		t.Fatalf("untouched deselected section should not block, got %v", err)
	}
}

func TestCheckRecord_Valid(t *testing.T) {
	if err := validation.CheckRecord(fieldspec.MustDefault(), validRecord()); err != nil {
		t.Fatalf("expected valid record, got %v", err)
	}
}

func TestCheckRecord_Violations(t *testing.T) {
	reg := fieldspec.MustDefault()
	desc := "bespoke detail"

	cases := []struct {
		name   string
		mutate func(*model.FormSubmission)
		fields []string
	}{
		{
			name:   "bad email",
			mutate: func(sub *model.FormSubmission) { sub.Email = "not-an-email" },
			fields: []string{"email"},
		},
		{
			name:   "count mismatch",
			mutate: func(sub *model.FormSubmission) { sub.NumTicketItems = len(sub.TicketOrder) + 1 },
			fields: []string{"num_ticket_items"},
		},
		{
			name: "length mismatch",
			mutate: func(sub *model.FormSubmission) {
				sub.TicketItems = sub.TicketItems[:1]
			},
			fields: []string{"ticket_items"},
		},
		{
			name: "duplicate order",
			mutate: func(sub *model.FormSubmission) {
				sub.TicketOrder = []string{"Low Ticket", "Low Ticket"}
			},
			fields: []string{"ticket_order"},
		},
		{
			name: "other description without other",
			mutate: func(sub *model.FormSubmission) {
				sub.OtherUVPDesc = &desc
			},
			fields: []string{"other_uvp_desc"},
		},
		{
			name: "unknown product type and negative price",
			mutate: func(sub *model.FormSubmission) {
				sub.TicketItems[1].ProductType = "Webinar"
				sub.TicketItems[1].Price = -50
			},
			fields: []string{"ticket_items[1].price", "ticket_items[1].product_type"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validRecord()
			tc.mutate(&sub)
			err := validation.CheckRecord(reg, sub)
			var recErr *validation.RecordError
			if !errors.As(err, &recErr) {
				t.Fatalf("expected RecordError, got %v", err)
			}
			got := map[string]bool{}
			for _, issue := range recErr.Issues {
				got[issue.Field] = true
			}
			for _, field := range tc.fields {
				if !got[field] {
					t.Fatalf("expected issue for %s, got %v", field, recErr.Issues)
				}
			}
		})
	}
}

func TestRecordSchema_Shape(t *testing.T) {
	schema := validation.RecordSchema(fieldspec.MustDefault())
	for _, key := range []string{"email", "other_uvp_desc", "ticket_order", "ticket_items", "num_ticket_items"} {
		if _, ok := schema.Properties[key]; !ok {
			t.Fatalf("schema missing property %s", key)
		}
	}
	if !schema.Properties["other_uvp_desc"].Value.Nullable {
		t.Fatalf("other_uvp_desc must be nullable")
	}
	items := schema.Properties["ticket_items"].Value.Items.Value
	want := []string{"product_name", "product_type", "price", "features_desc", "benefits"}
	if diff := cmp.Diff(want, items.Required); diff != "" {
		t.Fatalf("item required mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(strings.Join(toStrings(items.Properties["product_type"].Value.Enum), ","), "Virtual Retreat") {
		t.Fatalf("product_type enum should come from the profile")
	}
}

func validRecord() model.FormSubmission {
	return model.FormSubmission{
		Email:           "coach@example.com",
		AvatarDesc:      "Founders",
		AvatarPainList:  "Burnout",
		UniqueValueProp: "Weekly calls",
		UVPType:         "Bespoke",
		LeadMagnetDesc:  "Free checklist",
		NumTicketItems:  2,
		TicketOrder:     []string{"Low Ticket", "Medium Ticket"},
		TicketItems: []model.TicketItem{
			{ProductName: "Starter", ProductType: "Online Course", Price: 100},
			{ProductName: "Cohort", ProductType: "Virtual Coaching", Price: 450},
		},
	}
}

func fill(t *testing.T, s *state.FormState, order []string) {
	t.Helper()
	set := func(key string, v any) {
		if err := s.Set(key, v); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
	set(fieldspec.KeyEmail, "coach@example.com")
	set(fieldspec.KeyAvatarDesc, "Founders of remote teams")
	set(fieldspec.KeyAvatarPainList, "Burnout")
	set(fieldspec.KeyUniqueValueProp, "Weekly calls")
	set(fieldspec.KeyLeadMagnetDesc, "Free checklist")
	for _, id := range order {
		set(fieldspec.SectionKey(fieldspec.SubProductName, id), id+" Program")
		set(fieldspec.SectionKey(fieldspec.SubFeaturesDesc, id), "Six modules")
		set(fieldspec.SectionKey(fieldspec.SubBenefits, id), "Less stress")
	}
}

func toStrings(values []any) []string {
	out := make([]string, len(values))
	for idx, v := range values {
		out[idx], _ = v.(string)
	}
	return out
}
