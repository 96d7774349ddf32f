package manifest

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// ExtensionPrefix marks keys that are carried through verbatim and never
// interpreted.
const ExtensionPrefix = "x-"

// Manifest is the merged, active manifest that drives every command.
type Manifest struct {
	DefaultProfile string             `yaml:"default-profile,omitempty"`
	Profiles       map[string]Profile `yaml:"profiles,omitempty"`
	PostClone      []string           `yaml:"post-clone,omitempty"`
	Repositories   []Repository       `yaml:"repositories"`
	Extensions     map[string]any     `yaml:",inline"`
}

// Fragment is one partial manifest file, layered on top of lower ones.
type Fragment struct {
	DefaultProfile     string             `yaml:"default-profile,omitempty"`
	Profiles           map[string]Profile `yaml:"profiles,omitempty"`
	RemoveProfiles     []string           `yaml:"remove-profiles,omitempty"`
	PostClone          []string           `yaml:"post-clone,omitempty"`
	Repositories       []Repository       `yaml:"repositories,omitempty"`
	RemoveRepositories []RepoKey          `yaml:"remove-repositories,omitempty"`
	Extensions         map[string]any     `yaml:",inline"`

	// Source is the file the fragment was read from, if any.
	Source string `yaml:"-"`
}

// Settings are the remote and checkout settings shared by profiles and
// repositories. A nil field is unset and falls through to the next level.
type Settings struct {
	RemoteName    *string `yaml:"remote-name,omitempty"`
	RemoteURL     *string `yaml:"remote-url,omitempty"`
	RemotePushURL *string `yaml:"remote-push-url,omitempty"`
	Branch        *string `yaml:"branch,omitempty"`
	RemoteBranch  *string `yaml:"remote-branch,omitempty"`
	SingleBranch  *YesNo  `yaml:"single-branch,omitempty"`
	Depth         *int    `yaml:"depth,omitempty"`

	// Cleared lists the keys a fragment set to null. Overlaying clears
	// them in the lower entry. Merged manifests never carry it.
	Cleared []string `yaml:"-"`
}

// settingKeys are the keys of Settings as they appear in files.
var settingKeys = []string{
	"remote-name", "remote-url", "remote-push-url",
	"branch", "remote-branch", "single-branch", "depth",
}

// clear unsets the field stored under key.
func (s *Settings) clear(key string) {
	switch key {
	case "remote-name":
		s.RemoteName = nil
	case "remote-url":
		s.RemoteURL = nil
	case "remote-push-url":
		s.RemotePushURL = nil
	case "branch":
		s.Branch = nil
	case "remote-branch":
		s.RemoteBranch = nil
	case "single-branch":
		s.SingleBranch = nil
	case "depth":
		s.Depth = nil
	}
}

// nullSettings returns the setting keys of mapping n whose value is null.
func nullSettings(n *yaml.Node) []string {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	var keys []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind == yaml.ScalarNode && v.ShortTag() == "!!null" && slices.Contains(settingKeys, k.Value) {
			keys = append(keys, k.Value)
		}
	}
	return keys
}

// Profile is a named, inheritable bundle of settings.
type Profile struct {
	Inherit    string `yaml:"inherit,omitempty"`
	Settings   `yaml:",inline"`
	Extensions map[string]any `yaml:",inline"`
}

// Repository is a single repository entry.
type Repository struct {
	ID         string   `yaml:"repository"`
	Directory  string   `yaml:"directory,omitempty"`
	Groups     Groups   `yaml:"groups,omitempty"`
	Tag        string   `yaml:"tag,omitempty"`
	UseProfile string   `yaml:"use-profile,omitempty"`
	PostClone  []string `yaml:"post-clone,omitempty"`
	Settings   `yaml:",inline"`
	Extensions map[string]any `yaml:",inline"`
}

// UnmarshalYAML decodes a repository entry and records settings that are
// explicitly null.
func (r *Repository) UnmarshalYAML(n *yaml.Node) error {
	type plain Repository
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*r = Repository(p)
	r.Cleared = nullSettings(n)
	return nil
}

// RepoKey identifies repository entries for removal and snapshots.
// An empty Directory matches every entry with the ID.
type RepoKey struct {
	ID        string `yaml:"repository"`
	Directory string `yaml:"directory,omitempty"`
}

// UnmarshalYAML accepts either a plain repository id or a mapping.
func (k *RepoKey) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		return n.Decode(&k.ID)
	}
	type plain RepoKey
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*k = RepoKey(p)
	return nil
}

func (k RepoKey) String() string {
	if k.Directory == "" || k.Directory == k.ID {
		return k.ID
	}
	return k.ID + " (" + k.Directory + ")"
}

// Groups is a set of group tags. A single string is accepted in files.
type Groups []string

// UnmarshalYAML accepts a scalar for a single group.
func (g *Groups) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		var s string
		if err := n.Decode(&s); err != nil {
			return err
		}
		*g = Groups{s}
		return nil
	}
	var list []string
	if err := n.Decode(&list); err != nil {
		return err
	}
	*g = list
	return nil
}

// YesNo is a tri-state flag: yes, no, or unset (nil pointer).
type YesNo string

const (
	Yes YesNo = "yes"
	No  YesNo = "no"
)

// UnmarshalYAML accepts yes/no and booleans.
func (y *YesNo) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "yes", "true":
		*y = Yes
	case "no", "false":
		*y = No
	default:
		return fmt.Errorf("invalid yes/no value %q", s)
	}
	return nil
}

// Bool reports whether y is Yes.
func (y YesNo) Bool() bool { return y == Yes }

// LocalDir returns the repository's workspace-relative directory using
// "/" separators. It defaults to the repository id.
func (r *Repository) LocalDir() string {
	if r.Directory != "" {
		return r.Directory
	}
	return r.ID
}

// LocalPath returns LocalDir normalized for the current OS.
func (r *Repository) LocalPath() string {
	return filepath.Clean(filepath.FromSlash(r.LocalDir()))
}

// Key returns the identity key of the repository.
func (r *Repository) Key() RepoKey {
	return RepoKey{ID: r.ID, Directory: r.LocalDir()}
}

// DisplayName returns the label used when printing per-repository output.
func (r *Repository) DisplayName() string {
	dir := r.LocalDir()
	if dir == r.ID {
		return dir
	}
	return dir + " (remote: " + r.ID + ")"
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{
		Profiles:   map[string]Profile{},
		Extensions: map[string]any{},
	}
}

// Clone returns a deep copy of m. Extension values are shared; they are
// never modified.
func (m *Manifest) Clone() *Manifest {
	out := New()
	if m == nil {
		return out
	}
	out.DefaultProfile = m.DefaultProfile
	out.PostClone = slices.Clone(m.PostClone)
	for name, p := range m.Profiles {
		out.Profiles[name] = p.clone()
	}
	maps.Copy(out.Extensions, m.Extensions)
	out.Repositories = make([]Repository, len(m.Repositories))
	for i, r := range m.Repositories {
		out.Repositories[i] = r.clone()
	}
	return out
}

// Profile returns the named profile.
func (m *Manifest) Profile(name string) (Profile, bool) {
	p, ok := m.Profiles[name]
	return p, ok
}

func (p Profile) clone() Profile {
	p.Settings = p.Settings.clone()
	p.Extensions = maps.Clone(p.Extensions)
	return p
}

func (r Repository) clone() Repository {
	r.Groups = slices.Clone(r.Groups)
	r.PostClone = slices.Clone(r.PostClone)
	r.Settings = r.Settings.clone()
	r.Extensions = maps.Clone(r.Extensions)
	return r
}

func (s Settings) clone() Settings {
	return Settings{
		RemoteName:    clonePtr(s.RemoteName),
		RemoteURL:     clonePtr(s.RemoteURL),
		RemotePushURL: clonePtr(s.RemotePushURL),
		Branch:        clonePtr(s.Branch),
		RemoteBranch:  clonePtr(s.RemoteBranch),
		SingleBranch:  clonePtr(s.SingleBranch),
		Depth:         clonePtr(s.Depth),
	}
}

// overlay returns s with every field set in in replacing its own and
// every field in.Cleared names unset.
func (s Settings) overlay(in Settings) Settings {
	out := s.clone()
	overlayPtr(&out.RemoteName, in.RemoteName)
	overlayPtr(&out.RemoteURL, in.RemoteURL)
	overlayPtr(&out.RemotePushURL, in.RemotePushURL)
	overlayPtr(&out.Branch, in.Branch)
	overlayPtr(&out.RemoteBranch, in.RemoteBranch)
	overlayPtr(&out.SingleBranch, in.SingleBranch)
	overlayPtr(&out.Depth, in.Depth)
	for _, key := range in.Cleared {
		out.clear(key)
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func overlayPtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = clonePtr(src)
	}
}

// Ptr returns a pointer to v. It keeps literal settings in code and tests short.
func Ptr[T any](v T) *T { return &v }
