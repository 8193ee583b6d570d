package collector_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-offerform/pkg/collector"
	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/state"
)

func TestCollect_FollowsOrder(t *testing.T) {
	s := state.New(fieldspec.MustDefault())
	s.Seed([]string{"Low Ticket", "Medium Ticket", "High Ticket"})
	mustSet(t, s, fieldspec.SectionKey(fieldspec.SubProductName, "High Ticket"), "Inner Circle")
	mustSet(t, s, fieldspec.SectionKey(fieldspec.SubProductType, "High Ticket"), "In-Person Retreat")
	mustSet(t, s, fieldspec.SectionKey(fieldspec.SubPrice, "High Ticket"), 5000)
	mustSet(t, s, fieldspec.SectionKey(fieldspec.SubProductName, "Low Ticket"), "Starter")

	items, err := collector.Collect(s, []string{"High Ticket", "Low Ticket"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	want := []model.TicketItem{
		{
			ProductName:  "Inner Circle",
			ProductType:  "In-Person Retreat",
			Price:        5000,
			FeaturesDesc: "Example: - 6 video modules\n- Workbook and guided meditations\n- Private community access",
			Benefits:     "Example: - Achieve inner peace and balance\n- Reduce stress and anxiety\n- Cultivate mindfulness and presence",
		},
		{
			ProductName:  "Starter",
			ProductType:  "Online Course",
			Price:        100,
			FeaturesDesc: "Example: - 6 video modules\n- Workbook and guided meditations\n- Private community access",
			Benefits:     "Example: - Achieve inner peace and balance\n- Reduce stress and anxiety\n- Cultivate mindfulness and presence",
		},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_MissingSectionUsesDefaults(t *testing.T) {
	s := state.New(fieldspec.MustDefault())
	items, err := collector.Collect(s, []string{"Additional Offer 1"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	got := items[0]
	if got.ProductName != "Example: Additional Offer 1 Awakening Journey" || got.ProductType != "Online Course" || got.Price != 100 {
		t.Fatalf("unexpected defaults: %#v", got)
	}
}

func TestCollect_Rejections(t *testing.T) {
	s := state.New(fieldspec.MustDefault())
	mustSet(t, s, fieldspec.SectionKey(fieldspec.SubProductType, "Low Ticket"), "Webinar")
	if _, err := collector.Collect(s, []string{"Low Ticket"}); !errors.Is(err, collector.ErrInvalidProductType) {
		t.Fatalf("expected ErrInvalidProductType, got %v", err)
	}

	s = state.New(fieldspec.MustDefault())
	mustSet(t, s, fieldspec.SectionKey(fieldspec.SubPrice, "Low Ticket"), -1)
	if _, err := collector.Collect(s, []string{"Low Ticket"}); !errors.Is(err, collector.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestCollect_EmptyOrder(t *testing.T) {
	items, err := collector.Collect(state.New(fieldspec.MustDefault()), nil)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected no items, got %v %v", items, err)
	}
}

func TestScalars(t *testing.T) {
	s := state.New(fieldspec.MustDefault())
	mustSet(t, s, fieldspec.KeyUVPType, "Other")
	mustSet(t, s, fieldspec.KeyOtherUVPDesc, "Sound baths")

	got := collector.Scalars(s)
	if got.UVPType != "Other" || got.OtherUVPDesc != "Sound baths" {
		t.Fatalf("unexpected scalars: %#v", got)
	}
	if got.AvatarDesc == "" {
		t.Fatalf("avatar should carry its seeded placeholder")
	}
}

func mustSet(t *testing.T, s *state.FormState, key string, v any) {
	t.Helper()
	if err := s.Set(key, v); err != nil {
		t.Fatalf("set %s: %v", key, err)
	}
}
