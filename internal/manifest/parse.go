package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fbkclanna/grit/internal/format"
)

// ErrConfig marks configuration errors: malformed files, undefined or
// cyclic profile references and conflicting options. They are reported
// before any repository operation runs.
var ErrConfig = errors.New("configuration error")

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConfig}, args...)...)
}

// LoadFragment reads and validates one fragment file.
func LoadFragment(path string) (*Fragment, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the workspace configuration
	if err != nil {
		return nil, fmt.Errorf("reading fragment: %w", err)
	}
	f, err := ParseFragment(path, data)
	if err != nil {
		return nil, err
	}
	f.Source = path
	return f, nil
}

// ParseFragment parses and validates fragment content. The name selects
// JSON or YAML syntax and is used in error messages.
func ParseFragment(name string, data []byte) (*Fragment, error) {
	var f Fragment
	if err := format.Unmarshal(name, data, &f); err != nil {
		return nil, configErrorf("%v", err)
	}
	if err := validateFragment(&f); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &f, nil
}

// Load reads and validates an active manifest or snapshot file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the workspace manifest
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(path, data)
}

// Parse parses and validates active manifest content.
func Parse(name string, data []byte) (*Manifest, error) {
	m := New()
	if err := format.Unmarshal(name, data, m); err != nil {
		return nil, configErrorf("%v", err)
	}
	if m.Profiles == nil {
		m.Profiles = map[string]Profile{}
	}
	if m.Extensions == nil {
		m.Extensions = map[string]any{}
	}
	if err := Validate(m); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}

// Save validates and writes a manifest to disk.
func Save(path string, m *Manifest) error {
	if err := Validate(m); err != nil {
		return err
	}
	return format.WriteFile(path, m)
}

func validateFragment(f *Fragment) error {
	if err := CheckExtensions("fragment", f.Extensions); err != nil {
		return err
	}
	if err := validateProfiles(f.Profiles); err != nil {
		return err
	}
	for i, name := range f.RemoveProfiles {
		if name == "" {
			return configErrorf("remove-profiles[%d] is empty", i)
		}
	}
	for i, k := range f.RemoveRepositories {
		if k.ID == "" {
			return configErrorf("remove-repositories[%d].repository is required", i)
		}
	}
	seen := make(map[string]string, len(f.Repositories))
	for i, r := range f.Repositories {
		if err := validateRepo(i, r); err != nil {
			return err
		}
		dir := r.LocalDir()
		if other, ok := seen[dir]; ok {
			return configErrorf("repositories[%d] (%s): directory %q is already used by %s", i, r.ID, dir, other)
		}
		seen[dir] = r.ID
	}
	return nil
}

func validateProfiles(profiles map[string]Profile) error {
	for _, name := range sortedNames(profiles) {
		p := profiles[name]
		if name == "" {
			return configErrorf("profile name is empty")
		}
		if err := CheckExtensions(fmt.Sprintf("profiles.%s", name), p.Extensions); err != nil {
			return err
		}
		if err := validateSettings(fmt.Sprintf("profiles.%s", name), p.Settings); err != nil {
			return err
		}
	}
	return nil
}

func validateRepo(i int, r Repository) error {
	if r.ID == "" {
		return configErrorf("repositories[%d].repository is required", i)
	}
	label := fmt.Sprintf("repositories[%d] (%s)", i, r.ID)
	if err := CheckExtensions(label, r.Extensions); err != nil {
		return err
	}
	if err := CheckPath(r.LocalDir(), label+".directory"); err != nil {
		return err
	}
	for j, line := range r.PostClone {
		if strings.TrimSpace(line) == "" {
			return configErrorf("%s.post-clone[%d] is empty", label, j)
		}
	}
	return validateSettings(label, r.Settings)
}

func validateSettings(label string, s Settings) error {
	if s.Depth != nil && *s.Depth < 0 {
		return configErrorf("%s.depth must be >= 0 (got %d)", label, *s.Depth)
	}
	if s.SingleBranch != nil && *s.SingleBranch != Yes && *s.SingleBranch != No {
		return configErrorf("%s.single-branch must be yes or no (got %q)", label, *s.SingleBranch)
	}
	return nil
}

// CheckExtensions rejects keys the schema does not know unless they carry
// the extension prefix.
func CheckExtensions(label string, ext map[string]any) error {
	for _, k := range sortedNames(ext) {
		if !strings.HasPrefix(k, ExtensionPrefix) {
			return configErrorf("%s: invalid settings key %q", label, k)
		}
	}
	return nil
}

// CheckPath ensures a path is relative and does not escape the workspace.
func CheckPath(p, label string) error {
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return configErrorf("%s: absolute path is not allowed: %s", label, p)
	}
	cleaned := filepath.Clean(filepath.FromSlash(p))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return configErrorf("%s: path must stay inside the workspace: %s", label, p)
	}
	return nil
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
