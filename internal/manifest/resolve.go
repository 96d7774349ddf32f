package manifest

import (
	"strings"
)

// DefaultRemoteName is the remote name used when no level sets one.
const DefaultRemoteName = "origin"

// Resolved holds the effective settings of one repository. It is computed
// per invocation from the active manifest and never stored.
type Resolved struct {
	Repository    string
	LocalDir      string
	LocalPath     string
	Groups        []string
	Tag           string
	RemoteName    string
	RemoteURL     string
	RemotePushURL string
	Branch        string
	RemoteBranch  string
	// SingleBranch is empty when no level sets it; callers pick the fallback.
	SingleBranch YesNo
	// Depth is nil when no level sets it; 0 means full history.
	Depth     *int
	PostClone []string
}

// Resolve computes the effective settings for repo. Each field comes from
// the repository itself, else the first profile defining it along the
// chain starting at use-profile (or the manifest default) and following
// inherit, else its built-in default.
func Resolve(repo Repository, m *Manifest) (Resolved, error) {
	start := repo.UseProfile
	if start == "" {
		start = m.DefaultProfile
	}
	chain, err := profileChain(m, start)
	if err != nil {
		return Resolved{}, err
	}

	res := Resolved{
		Repository: repo.ID,
		LocalDir:   repo.LocalDir(),
		LocalPath:  repo.LocalPath(),
		Groups:     append([]string(nil), repo.Groups...),
		Tag:        repo.Tag,
		PostClone:  append(append([]string(nil), m.PostClone...), repo.PostClone...),
	}
	res.RemoteName = lookup(repo, chain, func(s Settings) *string { return s.RemoteName }, DefaultRemoteName)
	res.RemoteURL = lookup(repo, chain, func(s Settings) *string { return s.RemoteURL }, "")
	res.RemotePushURL = lookup(repo, chain, func(s Settings) *string { return s.RemotePushURL }, "")
	res.Branch = lookup(repo, chain, func(s Settings) *string { return s.Branch }, "")
	res.RemoteBranch = lookup(repo, chain, func(s Settings) *string { return s.RemoteBranch }, res.Branch)
	res.SingleBranch = lookup(repo, chain, func(s Settings) *YesNo { return s.SingleBranch }, "")
	res.Depth = clonePtr(lookupPtr(repo, chain, func(s Settings) *int { return s.Depth }))
	return res, nil
}

// ResolveAll resolves every repository in repos. The first error aborts.
func ResolveAll(repos []Repository, m *Manifest) ([]Resolved, error) {
	out := make([]Resolved, 0, len(repos))
	for _, r := range repos {
		res, err := Resolve(r, m)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func lookup[T any](repo Repository, chain []Profile, get func(Settings) *T, def T) T {
	if v := lookupPtr(repo, chain, get); v != nil {
		return *v
	}
	return def
}

func lookupPtr[T any](repo Repository, chain []Profile, get func(Settings) *T) *T {
	if v := get(repo.Settings); v != nil {
		return v
	}
	for _, p := range chain {
		if v := get(p.Settings); v != nil {
			return v
		}
	}
	return nil
}

// profileChain returns the profile named start followed by its inherit
// ancestors. Undefined names and cycles are configuration errors.
func profileChain(m *Manifest, start string) ([]Profile, error) {
	var chain []Profile
	var path []string
	visited := map[string]bool{}
	for name := start; name != ""; {
		path = append(path, name)
		if visited[name] {
			return nil, configErrorf("profile inherit cycle: %s", strings.Join(path, " -> "))
		}
		visited[name] = true
		p, ok := m.Profiles[name]
		if !ok {
			if len(path) == 1 {
				return nil, configErrorf("profile %q is referenced, but is undefined", name)
			}
			return nil, configErrorf("profile %q inherits undefined profile %q", path[len(path)-2], name)
		}
		chain = append(chain, p)
		name = p.Inherit
	}
	return chain, nil
}

// CheckoutTarget returns the ref to check out after cloning. A tag
// replaces the branch entirely and is checked out detached.
func (r Resolved) CheckoutTarget() (ref string, detached bool) {
	if r.Tag != "" {
		return r.Tag, true
	}
	return r.Branch, false
}

// SingleBranchOr returns the resolved single-branch flag, or def when no
// level set it.
func (r Resolved) SingleBranchOr(def bool) bool {
	if r.SingleBranch == "" {
		return def
	}
	return r.SingleBranch.Bool()
}

// DepthOr returns the resolved depth, or def when no level set one. An
// explicit 0 keeps full history regardless of def.
func (r Resolved) DepthOr(def int) int {
	if r.Depth != nil {
		return *r.Depth
	}
	return def
}

// CloneURL is the remote URL joined with the repository id.
func (r Resolved) CloneURL() string {
	return joinURL(r.RemoteURL, r.Repository)
}

// PushURL is the push URL joined with the repository id, or "" when no
// distinct push URL resolved.
func (r Resolved) PushURL() string {
	if r.RemotePushURL == "" {
		return ""
	}
	return joinURL(r.RemotePushURL, r.Repository)
}

func joinURL(base, id string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(id, "/")
}

// Key returns the identity key of the resolved repository.
func (r Resolved) Key() RepoKey {
	return RepoKey{ID: r.Repository, Directory: r.LocalDir}
}

// DisplayName returns the label used when printing per-repository output.
func (r Resolved) DisplayName() string {
	if r.LocalDir == r.Repository {
		return r.LocalDir
	}
	return r.LocalDir + " (remote: " + r.Repository + ")"
}
