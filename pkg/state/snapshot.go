package state

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
)

type snapshotValue struct {
	Value  any    `json:"value"`
	Status string `json:"status"`
}

type snapshot struct {
	Profile  string                              `json:"profile"`
	Count    int                                 `json:"count"`
	Order    []string                            `json:"order,omitempty"`
	Scalars  map[string]snapshotValue            `json:"scalars"`
	Sections map[string]map[string]snapshotValue `json:"sections"`
}

// Snapshot serialises the state, including section state kept for
// identifiers outside the current order.
func (s *FormState) Snapshot() ([]byte, error) {
	out := snapshot{
		Profile:  s.registry.Profile().ID,
		Count:    s.count,
		Order:    s.Order(),
		Scalars:  make(map[string]snapshotValue, len(s.scalars)),
		Sections: make(map[string]map[string]snapshotValue, len(s.sections)),
	}
	for key, v := range s.scalars {
		out.Scalars[key] = snapshotValue{Value: v.Raw, Status: v.Status.String()}
	}
	for id, sec := range s.sections {
		values := make(map[string]snapshotValue, len(sec.values))
		for sub, v := range sec.values {
			values[sub] = snapshotValue{Value: v.Raw, Status: v.Status.String()}
		}
		out.Sections[id] = values
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("state: encode snapshot: %w", err)
	}
	return data, nil
}

// Restore rebuilds a state from a snapshot taken against the same profile.
// Keys the registry no longer knows are dropped.
func Restore(registry *fieldspec.Registry, data []byte) (*FormState, error) {
	var in snapshot
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("state: decode snapshot: %w", err)
	}
	if in.Profile != "" && in.Profile != registry.Profile().ID {
		return nil, fmt.Errorf("state: snapshot belongs to profile %q, not %q", in.Profile, registry.Profile().ID)
	}

	s := New(registry)
	s.count = in.Count
	if in.Order != nil {
		s.SetOrder(in.Order)
	}
	for key, v := range in.Scalars {
		spec, ok := registry.Field(key)
		if !ok || spec.Section != "" {
			continue
		}
		if err := s.restore(key, v); err != nil {
			return nil, err
		}
	}
	for id, values := range in.Sections {
		s.Seed([]string{id})
		for sub, v := range values {
			if err := s.restore(fieldspec.SectionKey(sub, id), v); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (s *FormState) restore(key string, v snapshotValue) error {
	spec, ok := s.registry.Field(key)
	if !ok {
		return nil
	}
	status := parseStatus(v.Status)
	if status == StatusUnset {
		s.put(spec, Value{Status: StatusUnset})
		return nil
	}
	raw, err := coerce(spec, v.Value)
	if err != nil {
		return fmt.Errorf("state: restore %q: %w", key, err)
	}
	s.put(spec, Value{Raw: raw, Status: status})
	return nil
}

func parseStatus(text string) Status {
	switch text {
	case "default":
		return StatusDefault
	case "user":
		return StatusUserProvided
	default:
		return StatusUnset
	}
}
