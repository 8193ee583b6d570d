package fieldspec

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultProfile names the embedded profile used when none is configured.
const DefaultProfile = "ascension"

//go:embed profiles/*.yaml
var embeddedProfiles embed.FS

// EmbeddedFS returns the bundled profile definitions.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedProfiles, "profiles")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// Parse decodes a JSON or YAML profile document.
func Parse(data []byte, source string) (Profile, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Profile{}, fmt.Errorf("fieldspec: file %s is empty", source)
	}
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("fieldspec: parse %s: %w", source, err)
	}
	if err := profile.normalise(source); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// LoadFS walks fsys and parses every JSON/YAML profile, keyed by profile id.
func LoadFS(fsys fs.FS) (map[string]Profile, error) {
	profiles := make(map[string]Profile)
	if fsys == nil {
		return profiles, nil
	}
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isProfileFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("fieldspec: read %s: %w", path, err)
		}
		profile, err := Parse(data, path)
		if err != nil {
			return err
		}
		if existing, dup := profiles[profile.ID]; dup {
			return fmt.Errorf("fieldspec: duplicate profile %q (files %s and %s)", profile.ID, existing.Source, path)
		}
		profiles[profile.ID] = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// LoadFile parses a single profile from disk.
func LoadFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("fieldspec: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Builtin returns an embedded profile by id.
func Builtin(id string) (Profile, error) {
	profiles, err := LoadFS(EmbeddedFS())
	if err != nil {
		return Profile{}, err
	}
	profile, ok := profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("fieldspec: unknown profile %q (available: %s)", id, strings.Join(names(profiles), ", "))
	}
	return profile, nil
}

// Resolve loads a profile from a builtin id or, when ref looks like a file
// path, from disk.
func Resolve(ref string) (*Registry, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = DefaultProfile
	}
	var (
		profile Profile
		err     error
	)
	if isProfileFile(ref) {
		profile, err = LoadFile(ref)
	} else {
		profile, err = Builtin(ref)
	}
	if err != nil {
		return nil, err
	}
	return New(profile)
}

// MustDefault returns the registry for the default embedded profile.
func MustDefault() *Registry {
	reg, err := Resolve(DefaultProfile)
	if err != nil {
		panic(err)
	}
	return reg
}

func isProfileFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func names(profiles map[string]Profile) []string {
	out := make([]string, 0, len(profiles))
	for id := range profiles {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
