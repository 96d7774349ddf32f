package manifest

import (
	"fmt"
	"maps"
	"slices"
)

// Merge layers f on top of lower and returns the result as a new manifest.
// lower is not modified.
//
// Profiles in f replace same-named profiles wholesale. Repositories that
// match an existing identity are merged field by field with f winning;
// others are appended in encounter order. Profile removals apply before
// f's profiles, so a fragment can redefine a profile from scratch.
// Repository removals apply after f's additions, so a later fragment may
// add them back.
func Merge(lower *Manifest, f *Fragment) (*Manifest, error) {
	if err := validateFragment(f); err != nil {
		return nil, err
	}
	out := lower.Clone()

	for _, name := range f.RemoveProfiles {
		delete(out.Profiles, name)
	}
	for name, p := range f.Profiles {
		out.Profiles[name] = p.clone()
	}
	if f.DefaultProfile != "" {
		out.DefaultProfile = f.DefaultProfile
	}
	if f.PostClone != nil {
		out.PostClone = slices.Clone(f.PostClone)
	}
	maps.Copy(out.Extensions, f.Extensions)

	// Only entries from lower layers are match candidates. Entries added by
	// the same fragment are distinct checkouts.
	existing := len(out.Repositories)
	for _, in := range f.Repositories {
		if i := match(out.Repositories[:existing], in); i >= 0 {
			out.Repositories[i] = out.Repositories[i].overlay(in)
			continue
		}
		out.Repositories = append(out.Repositories, in.clone())
	}
	for _, key := range f.RemoveRepositories {
		out.Repositories = remove(out.Repositories, key)
	}
	return out, nil
}

// Fold merges fragments in order, lowest priority first, onto an empty
// manifest and validates the result.
func Fold(fragments []*Fragment) (*Manifest, error) {
	m := New()
	for i, f := range fragments {
		next, err := Merge(m, f)
		if err != nil {
			src := f.Source
			if src == "" {
				src = fmt.Sprintf("layer %d", i)
			}
			return nil, fmt.Errorf("%s: %w", src, err)
		}
		m = next
	}
	if err := Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

// match returns the index of the repository in repos that in overlays,
// or -1. Without an explicit directory, in matches the first entry with
// the same id. With one, an entry with the same id and local directory
// wins; failing that, the only entry with the same id matches and in's
// directory overrides it.
func match(repos []Repository, in Repository) int {
	if in.Directory == "" {
		return slices.IndexFunc(repos, func(r Repository) bool { return r.ID == in.ID })
	}
	dir := in.Directory
	candidate, count := -1, 0
	for i := range repos {
		if repos[i].ID != in.ID {
			continue
		}
		if repos[i].LocalDir() == dir {
			return i
		}
		if count == 0 {
			candidate = i
		}
		count++
	}
	if count == 1 {
		return candidate
	}
	return -1
}

func remove(repos []Repository, key RepoKey) []Repository {
	return slices.DeleteFunc(repos, func(r Repository) bool {
		if r.ID != key.ID {
			return false
		}
		return key.Directory == "" || r.LocalDir() == key.Directory
	})
}

// overlay returns r with every field set in in replacing its own.
func (r Repository) overlay(in Repository) Repository {
	out := r.clone()
	if in.Directory != "" {
		out.Directory = in.Directory
	}
	if in.Groups != nil {
		out.Groups = slices.Clone(in.Groups)
	}
	if in.Tag != "" {
		out.Tag = in.Tag
	}
	if in.UseProfile != "" {
		out.UseProfile = in.UseProfile
	}
	if in.PostClone != nil {
		out.PostClone = slices.Clone(in.PostClone)
	}
	out.Settings = out.Settings.overlay(in.Settings)
	if len(in.Extensions) > 0 {
		if out.Extensions == nil {
			out.Extensions = map[string]any{}
		}
		maps.Copy(out.Extensions, in.Extensions)
	}
	return out
}
