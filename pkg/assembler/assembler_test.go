package assembler_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-offerform/pkg/assembler"
	"github.com/goliatone/go-offerform/pkg/model"
)

func TestAssemble_BespokeDropsOtherDescription(t *testing.T) {
	order := []string{"Low Ticket", "Medium Ticket", "High Ticket"}
	items := []model.TicketItem{
		{ProductName: "Starter", ProductType: "Online Course", Price: 100},
		{ProductName: "Group", ProductType: "Virtual Coaching", Price: 500},
		{ProductName: "Retreat", ProductType: "In-Person Retreat", Price: 3000},
	}
	scalars := model.Scalars{
		AvatarDesc:      "Founders",
		UVPType:         "Bespoke",
		OtherUVPDesc:    "left over from an earlier choice",
		UniqueValueProp: "Tailored plans",
	}

	got := assembler.Assemble("a@b.co", scalars, order, items)

	want := model.FormSubmission{
		Email:           "a@b.co",
		AvatarDesc:      "Founders",
		UniqueValueProp: "Tailored plans",
		UVPType:         "Bespoke",
		NumTicketItems:  3,
		TicketOrder:     order,
		TicketItems:     items,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_OtherDescription(t *testing.T) {
	cases := []struct {
		name string
		desc string
		want *string
	}{
		{name: "text supplied", desc: "Sound healing", want: ptr("Sound healing")},
		{name: "empty text", desc: "", want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := assembler.Assemble("a@b.co", model.Scalars{UVPType: model.UVPTypeOther, OtherUVPDesc: tc.desc}, nil, nil)
			if diff := cmp.Diff(tc.want, sub.OtherUVPDesc); diff != "" {
				t.Fatalf("other_uvp_desc mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAssemble_CountFollowsOrderAndCopies(t *testing.T) {
	order := []string{"High Ticket", "Low Ticket"}
	items := []model.TicketItem{{ProductName: "A"}, {ProductName: "B"}}

	sub := assembler.Assemble("a@b.co", model.Scalars{}, order, items)
	if sub.NumTicketItems != 2 || len(sub.TicketItems) != 2 || len(sub.TicketOrder) != 2 {
		t.Fatalf("lengths must agree: %#v", sub)
	}

	order[0] = "mutated"
	items[0].ProductName = "mutated"
	if sub.TicketOrder[0] != "High Ticket" || sub.TicketItems[0].ProductName != "A" {
		t.Fatalf("assembled record must not alias its inputs")
	}
}

func ptr(s string) *string { return &s }
