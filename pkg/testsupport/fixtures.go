package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
	pkgmodel "github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/state"
)

// SampleEmail is the identifier used by the shared fixtures.
const SampleEmail = "coach@example.com"

// FilledFields returns request values that replace every placeholder of the
// scalar fields and of each section in order. Section product types keep
// their seeded default unless overridden by the caller.
func FilledFields(order []string) map[string]any {
	out := map[string]any{
		fieldspec.KeyEmail:           SampleEmail,
		fieldspec.KeyAvatarDesc:      "Founders of remote teams",
		fieldspec.KeyAvatarPainList:  "Burnout, no time for deep work",
		fieldspec.KeyUniqueValueProp: "Weekly live calls with a former founder",
		fieldspec.KeyUVPType:         "Bespoke",
		fieldspec.KeyLeadMagnetDesc:  "Free burnout checklist",
	}
	for idx, id := range order {
		out[fieldspec.SectionKey(fieldspec.SubProductName, id)] = id + " Program"
		out[fieldspec.SectionKey(fieldspec.SubPrice, id)] = 100 * (idx + 1)
		out[fieldspec.SectionKey(fieldspec.SubFeaturesDesc, id)] = "Six modules"
		out[fieldspec.SectionKey(fieldspec.SubBenefits, id)] = "Less stress"
	}
	return out
}

// FillState writes FilledFields into s, failing the test on any rejected key.
func FillState(t *testing.T, s *state.FormState, order []string) {
	t.Helper()

	for key, value := range FilledFields(order) {
		if err := s.Set(key, value); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}
}

// SampleRecord returns a valid two-item record for the ascension profile.
func SampleRecord(email string) pkgmodel.FormSubmission {
	return pkgmodel.FormSubmission{
		Email:           email,
		AvatarDesc:      "Founders of remote teams",
		AvatarPainList:  "Burnout, no time for deep work",
		UniqueValueProp: "Weekly live calls with a former founder",
		UVPType:         "Bespoke",
		LeadMagnetDesc:  "Free burnout checklist",
		NumTicketItems:  2,
		TicketOrder:     []string{"Low Ticket", "Medium Ticket"},
		TicketItems: []pkgmodel.TicketItem{
			{ProductName: "Starter", ProductType: "Online Course", Price: 100, FeaturesDesc: "Six modules", Benefits: "Less stress"},
			{ProductName: "Cohort", ProductType: "Virtual Coaching", Price: 450, FeaturesDesc: "Weekly calls", Benefits: "Accountability"},
		},
	}
}

// MustLoadFormModel loads a JSON golden file into a FormModel structure.
func MustLoadFormModel(t *testing.T, path string) pkgmodel.FormModel {
	t.Helper()

	form, err := LoadFormModel(path)
	if err != nil {
		t.Fatalf("load form model: %v", err)
	}
	return form
}

// LoadFormModel reads a JSON fixture into a FormModel, returning an error for
// callers managing setup outside of *testing.T.
func LoadFormModel(path string) (pkgmodel.FormModel, error) {
	if path == "" {
		return pkgmodel.FormModel{}, errors.New("testsupport: form model path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pkgmodel.FormModel{}, fmt.Errorf("testsupport: read form model: %w", err)
	}
	var out pkgmodel.FormModel
	if err := json.Unmarshal(data, &out); err != nil {
		return pkgmodel.FormModel{}, fmt.Errorf("testsupport: unmarshal form model: %w", err)
	}
	return out, nil
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
