package fieldspec_test

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/sections"
)

func TestBuiltinProfiles(t *testing.T) {
	profiles, err := fieldspec.LoadFS(fieldspec.EmbeddedFS())
	if err != nil {
		t.Fatalf("load embedded profiles: %v", err)
	}

	ascension, ok := profiles["ascension"]
	if !ok {
		t.Fatalf("ascension profile missing")
	}
	if diff := cmp.Diff([]string{"Low Ticket", "Medium Ticket", "High Ticket"}, ascension.Sections.Base); diff != "" {
		t.Fatalf("base sections mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(sections.Range{Min: 3, Max: 5, Default: 3}, ascension.Sections.Count); diff != "" {
		t.Fatalf("count range mismatch (-want +got):\n%s", diff)
	}

	wellness, ok := profiles["wellness"]
	if !ok {
		t.Fatalf("wellness profile missing")
	}
	if got := len(wellness.Sections.Base); got != 11 {
		t.Fatalf("expected 11 wellness base sections, got %d", got)
	}
	if wellness.Sections.Count.Default != 4 {
		t.Fatalf("expected default count 4, got %d", wellness.Sections.Count.Default)
	}
}

func TestRegistry_SectionFields(t *testing.T) {
	reg := fieldspec.MustDefault()
	fields := reg.SectionFields("Low Ticket")
	if len(fields) != 5 {
		t.Fatalf("expected 5 section fields, got %d", len(fields))
	}

	keys := make([]string, len(fields))
	for idx, field := range fields {
		keys[idx] = field.Key
		if field.Section != "Low Ticket" {
			t.Fatalf("field %s: section mismatch %q", field.Key, field.Section)
		}
	}
	wantKeys := []string{
		"product_name_Low Ticket",
		"product_type_Low Ticket",
		"price_Low Ticket",
		"features_desc_Low Ticket",
		"benefits_Low Ticket",
	}
	if diff := cmp.Diff(wantKeys, keys); diff != "" {
		t.Fatalf("section keys mismatch (-want +got):\n%s", diff)
	}

	name := fields[0]
	if name.Placeholder != "Example: Low Ticket Awakening Journey" {
		t.Fatalf("product name placeholder should embed the section: %q", name.Placeholder)
	}
	if !strings.Contains(name.Help, "low ticket") {
		t.Fatalf("help should embed the lower-cased section: %q", name.Help)
	}

	price := fields[2]
	if price.Type != model.FieldTypeInteger || price.Default != 100 {
		t.Fatalf("unexpected price spec: %#v", price)
	}
	if rule, ok := price.Rule(model.ValidationRuleStep); !ok || rule.Params["value"] != "50" {
		t.Fatalf("expected step 50 rule, got %#v", rule)
	}

	productType := fields[1]
	if productType.Default != "Online Course" || len(productType.Enum) != 7 {
		t.Fatalf("unexpected product type spec: %#v", productType)
	}
}

func TestRegistry_FieldLookup(t *testing.T) {
	reg := fieldspec.MustDefault()

	avatar, ok := reg.Field(fieldspec.KeyAvatarDesc)
	if !ok || !strings.HasPrefix(avatar.Placeholder, "Example:") {
		t.Fatalf("avatar field lookup failed: %#v", avatar)
	}

	spec, ok := reg.Field("benefits_Additional Offer 2")
	if !ok {
		t.Fatalf("expected section key to resolve")
	}
	if spec.Section != "Additional Offer 2" || spec.Type != model.FieldTypeText {
		t.Fatalf("unexpected section spec: %#v", spec)
	}

	if _, ok := reg.Field("unknown"); ok {
		t.Fatalf("expected unknown key to miss")
	}
	if got := reg.Placeholder(fieldspec.KeyEmail); got != "" {
		t.Fatalf("email carries no placeholder, got %q", got)
	}
}

func TestRegistry_FieldsAreCopies(t *testing.T) {
	reg := fieldspec.MustDefault()
	fields := reg.Fields()
	for idx := range fields {
		if fields[idx].Key == fieldspec.KeyUVPType {
			fields[idx].Enum[0] = "mutated"
		}
	}
	uvp, _ := reg.Field(fieldspec.KeyUVPType)
	if uvp.Enum[0] != "Cheaper" {
		t.Fatalf("registry specs must be immutable, got %q", uvp.Enum[0])
	}
}

func TestSplitSectionKey(t *testing.T) {
	sub, section, ok := fieldspec.SplitSectionKey("product_type_High Ticket")
	if !ok || sub != fieldspec.SubProductType || section != "High Ticket" {
		t.Fatalf("split mismatch: %q %q %v", sub, section, ok)
	}
	if _, _, ok := fieldspec.SplitSectionKey("price_"); ok {
		t.Fatalf("expected empty section to miss")
	}
}

func TestParse_Rejections(t *testing.T) {
	cases := map[string]string{
		"empty id": `
id: ""
sections: {base: [A], count: {min: 1, max: 1, default: 1}, product_types: [X]}
`,
		"missing fields": `
id: broken
sections: {base: [A], count: {min: 1, max: 1, default: 1}, product_types: [X]}
`,
		"bad mode": `
id: broken
placeholder_mode: fuzzy
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := fieldspec.Parse([]byte(doc), name+".yaml"); err == nil {
				t.Fatalf("expected parse error")
			}
		})
	}
}

func TestLoadFS_DuplicateProfile(t *testing.T) {
	data, err := fs.ReadFile(fieldspec.EmbeddedFS(), "ascension.yaml")
	if err != nil {
		t.Fatalf("read embedded profile: %v", err)
	}
	fsys := fstest.MapFS{
		"a.yaml": {Data: data},
		"b.yaml": {Data: data},
	}
	if _, err := fieldspec.LoadFS(fsys); err == nil || !strings.Contains(err.Error(), "duplicate profile") {
		t.Fatalf("expected duplicate profile error, got %v", err)
	}
}
