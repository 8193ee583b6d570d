package sections

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var base = []string{"Low", "Medium", "High"}

func TestBuild_Scenarios(t *testing.T) {
	cases := []struct {
		name string
		n    int
		want []string
	}{
		{name: "fewer than base", n: 2, want: []string{"Low", "Medium"}},
		{name: "exactly base", n: 3, want: []string{"Low", "Medium", "High"}},
		{
			name: "beyond base",
			n:    5,
			want: []string{"Low", "Medium", "High", "Additional Offer 1", "Additional Offer 2"},
		},
		{name: "zero", n: 0, want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Build(tc.n, base)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("build mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild_UniqueAndSized(t *testing.T) {
	for n := 1; n <= 11; n++ {
		got := Build(n, base)
		if len(got) != n {
			t.Fatalf("n=%d: expected %d identifiers, got %d", n, n, len(got))
		}
		seen := map[string]bool{}
		for i, id := range got {
			if seen[id] {
				t.Fatalf("n=%d: duplicate identifier %q", n, id)
			}
			seen[id] = true
			if i >= len(base) {
				want := fmt.Sprintf("Additional Offer %d", i-len(base)+1)
				if id != want {
					t.Fatalf("n=%d index %d: expected %q, got %q", n, i, want, id)
				}
			}
		}
	}
}

func TestBuild_DoesNotAliasBase(t *testing.T) {
	names := []string{"A", "B"}
	got := Build(2, names)
	got[0] = "changed"
	if names[0] != "A" {
		t.Fatalf("build must not alias the base slice")
	}
}

func TestSelectOrder_Identity(t *testing.T) {
	available := Build(3, base)
	got, err := SelectOrder(available, nil)
	if err != nil {
		t.Fatalf("select order: %v", err)
	}
	if diff := cmp.Diff(available, got); diff != "" {
		t.Fatalf("identity order mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectOrder_Permutations(t *testing.T) {
	available := Build(4, base)
	perms := permutations(available)
	for _, perm := range perms {
		got, err := SelectOrder(available, perm)
		if err != nil {
			t.Fatalf("select %v: %v", perm, err)
		}
		if len(got) != len(available) {
			t.Fatalf("expected len %d, got %d", len(available), len(got))
		}
		if diff := cmp.Diff(toSet(available), toSet(got)); diff != "" {
			t.Fatalf("set mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestSelectOrder_PartialSelection(t *testing.T) {
	available := Build(5, base)
	got, err := SelectOrder(available, []string{"High", "Additional Offer 2"})
	if err != nil {
		t.Fatalf("select order: %v", err)
	}
	want := []string{"High", "Additional Offer 2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("partial order mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectOrder_Rejections(t *testing.T) {
	available := Build(3, base)
	cases := []struct {
		name   string
		chosen []string
		want   error
	}{
		{name: "empty", chosen: []string{}, want: ErrEmptyOrder},
		{name: "unknown", chosen: []string{"Low", "Premium"}, want: ErrUnknownSection},
		{name: "duplicate", chosen: []string{"Low", "Low"}, want: ErrDuplicateSection},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SelectOrder(available, tc.chosen)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestResolve_ChecksRange(t *testing.T) {
	r := Range{Min: 3, Max: 5, Default: 3}
	if _, _, err := Resolve(r, 6, base, nil); !errors.Is(err, ErrCountOutOfRange) {
		t.Fatalf("expected out of range error, got %v", err)
	}
	available, order, err := Resolve(r, 4, base, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff(available, order); diff != "" {
		t.Fatalf("identity order mismatch (-want +got):\n%s", diff)
	}
}

func TestRange_Validate(t *testing.T) {
	if err := (Range{Min: 1, Max: 11, Default: 4}).Validate(); err != nil {
		t.Fatalf("expected valid range, got %v", err)
	}
	if err := (Range{Min: 3, Max: 2, Default: 3}).Validate(); err == nil {
		t.Fatalf("expected inverted range to fail")
	}
	if err := (Range{Min: 1, Max: 5, Default: 9}).Validate(); err == nil {
		t.Fatalf("expected default outside range to fail")
	}
}

func permutations(in []string) [][]string {
	if len(in) <= 1 {
		return [][]string{append([]string(nil), in...)}
	}
	var out [][]string
	for i := range in {
		rest := make([]string, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{in[i]}, p...))
		}
	}
	return out
}

func toSet(in []string) map[string]bool {
	out := make(map[string]bool, len(in))
	for _, v := range in {
		out[v] = true
	}
	return out
}
