package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-offerform/pkg/fieldspec"
	"github.com/goliatone/go-offerform/pkg/model"
	"github.com/goliatone/go-offerform/pkg/widgets"
)

type violation struct {
	file     string
	location string
	message  string
}

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Check profile files for problems the loader accepts",
		Long: "Lint profile YAML files. Without arguments the embedded profiles are checked.\n" +
			"Load errors and warnings are both reported; the command fails when any are found.",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var profiles []fieldspec.Profile
			var violations []violation
			if len(args) == 0 {
				embedded, err := embeddedProfiles()
				if err != nil {
					return err
				}
				profiles = embedded
			}
			for _, file := range args {
				profile, err := fieldspec.LoadFile(file)
				if err != nil {
					violations = append(violations, violation{file: file, location: "profile", message: err.Error()})
					continue
				}
				profiles = append(profiles, profile)
			}
			known := widgets.NewRegistry().Names()
			for _, profile := range profiles {
				violations = append(violations, lintProfile(profile, known)...)
			}
			return report(cmd.ErrOrStderr(), violations)
		},
	}
}

func embeddedProfiles() ([]fieldspec.Profile, error) {
	loaded, err := fieldspec.LoadFS(fieldspec.EmbeddedFS())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(loaded))
	for id := range loaded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]fieldspec.Profile, 0, len(ids))
	for _, id := range ids {
		out = append(out, loaded[id])
	}
	return out, nil
}

func lintProfile(p fieldspec.Profile, knownWidgets []string) []violation {
	var result []violation
	add := func(location, format string, args ...any) {
		result = append(result, violation{file: p.Source, location: location, message: fmt.Sprintf(format, args...)})
	}

	keys := make(map[string]struct{}, len(p.Fields))
	for _, field := range p.Fields {
		keys[field.Key] = struct{}{}
	}

	for _, field := range p.Fields {
		loc := "fields." + field.Key
		if field.Placeholder != "" && p.PlaceholderMode == fieldspec.ModePrefix && !strings.HasPrefix(field.Placeholder, p.Sentinel) {
			add(loc, "placeholder does not start with %q and will not be detected when left unedited", p.Sentinel)
		}
		if field.Widget != "" && !contains(knownWidgets, field.Widget) {
			add(loc, "unknown widget %q", field.Widget)
		}
		if field.DependsOn != "" {
			key, _, ok := strings.Cut(field.DependsOn, "=")
			if !ok {
				add(loc, "depends_on %q must have the form key=value", field.DependsOn)
			} else if _, found := keys[strings.TrimSpace(key)]; !found {
				add(loc, "depends_on references unknown field %q", strings.TrimSpace(key))
			}
		}
		if field.Type == model.FieldTypeEnum && field.Default != nil && !contains(field.Enum, fmt.Sprint(field.Default)) {
			add(loc, "default %v is not one of the options", field.Default)
		}
	}

	if p.PlaceholderMode == fieldspec.ModePrefix {
		subs := make([]string, 0, len(p.Sections.Placeholders))
		for sub := range p.Sections.Placeholders {
			subs = append(subs, sub)
		}
		sort.Strings(subs)
		for _, sub := range subs {
			if text := p.Sections.Placeholders[sub]; text != "" && !strings.HasPrefix(text, p.Sentinel) {
				add("sections.placeholders."+sub, "placeholder does not start with %q and will not be detected when left unedited", p.Sentinel)
			}
		}
	}

	price := p.Sections.Price
	if price.Step > 1 && (price.Default-price.Min)%price.Step != 0 {
		add("sections.price", "default %d is not reachable from min %d in steps of %d", price.Default, price.Min, price.Step)
	}
	return result
}

func report(w io.Writer, violations []violation) error {
	if len(violations) == 0 {
		return nil
	}
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].location == violations[j].location {
				return violations[i].message < violations[j].message
			}
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		fmt.Fprintf(w, "%s: %s -> %s\n", v.file, v.location, v.message)
	}
	return fmt.Errorf("lint: %d problem(s) found", len(violations))
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
