package sections

import (
	"errors"
	"fmt"
	"strings"
)

// AdditionalPrefix names the identifiers synthesized beyond the base list.
const AdditionalPrefix = "Additional Offer"

var (
	// ErrCountOutOfRange is returned when a requested section count falls
	// outside the configured range.
	ErrCountOutOfRange = errors.New("sections: count out of range")
	// ErrEmptyOrder is returned when an order selects no sections.
	ErrEmptyOrder = errors.New("sections: order selects no sections")
	// ErrUnknownSection is returned when an order references an identifier
	// absent from the available set.
	ErrUnknownSection = errors.New("sections: unknown section")
	// ErrDuplicateSection is returned when an order lists an identifier twice.
	ErrDuplicateSection = errors.New("sections: duplicate section")
)

// Range bounds the number of sections a form may request.
type Range struct {
	Min     int `json:"min" yaml:"min"`
	Max     int `json:"max" yaml:"max"`
	Default int `json:"default" yaml:"default"`
}

// Check validates n against the range.
func (r Range) Check(n int) error {
	if n < r.Min || n > r.Max {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrCountOutOfRange, n, r.Min, r.Max)
	}
	return nil
}

// Validate reports whether the range itself is usable.
func (r Range) Validate() error {
	if r.Min < 1 {
		return fmt.Errorf("sections: range min must be at least 1, got %d", r.Min)
	}
	if r.Max < r.Min {
		return fmt.Errorf("sections: range max %d below min %d", r.Max, r.Min)
	}
	if r.Default < r.Min || r.Default > r.Max {
		return fmt.Errorf("sections: range default %d not in [%d, %d]", r.Default, r.Min, r.Max)
	}
	return nil
}

// Build returns n section identifiers. The first min(n, len(base)) come from
// base in order; every index i past the base list yields
// "Additional Offer {i-len(base)+1}". Build is deterministic and returns nil
// for n <= 0.
func Build(n int, base []string) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i < len(base) {
			out = append(out, base[i])
			continue
		}
		out = append(out, Additional(i-len(base)+1))
	}
	return out
}

// Additional formats the k-th synthesized identifier (k starts at 1).
func Additional(k int) string {
	return fmt.Sprintf("%s %d", AdditionalPrefix, k)
}

// SelectOrder applies a user-chosen permutation to the available identifiers.
// A nil chosen slice selects the identity order. A non-nil selection must be
// non-empty, unique and drawn from available; when it is shorter than
// available only the selected sections are collected, in the chosen order.
func SelectOrder(available, chosen []string) ([]string, error) {
	if chosen == nil {
		if len(available) == 0 {
			return nil, ErrEmptyOrder
		}
		return append([]string(nil), available...), nil
	}
	if len(chosen) == 0 {
		return nil, ErrEmptyOrder
	}

	known := make(map[string]struct{}, len(available))
	for _, id := range available {
		known[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(chosen))
	out := make([]string, 0, len(chosen))
	for _, raw := range chosen {
		id := strings.TrimSpace(raw)
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSection, raw)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSection, id)
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// Resolve builds the identifiers for n after checking the range, then applies
// the chosen order.
func Resolve(r Range, n int, base, chosen []string) (available, order []string, err error) {
	if err := r.Check(n); err != nil {
		return nil, nil, err
	}
	available = Build(n, base)
	order, err = SelectOrder(available, chosen)
	if err != nil {
		return available, nil, err
	}
	return available, order, nil
}
