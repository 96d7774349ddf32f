package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fbkclanna/grit/internal/manifest"
	"github.com/fbkclanna/grit/internal/testutil"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestResolver_FromManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "single.yaml"), `
repositories:
  - repository: org/a
`)
	r := &Resolver{Dir: dir}

	res, err := r.FromManifest("single")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "single.yaml"), res.Source)
	require.Equal(t, []string{res.Source}, res.Layers)
	require.Len(t, res.Manifest.Repositories, 1)
}

func TestResolver_FromManifest_missing(t *testing.T) {
	r := &Resolver{Dir: t.TempDir()}
	_, err := r.FromManifest("nope")
	require.ErrorIs(t, err, manifest.ErrConfig)
}

func TestResolver_FromConfig_layerPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shared", "base.json"), `{
	"profiles": {"p": {"remote-url": "https://git.example.com", "branch": "main"}},
	"default-profile": "p",
	"repositories": [{"repository": "org/a"}, {"repository": "org/b"}]
}`)
	writeFile(t, filepath.Join(dir, "configs", "dev", "override.yaml"), `
repositories:
  - repository: org/b
    branch: dev
remove-repositories: [org/a]
`)
	writeFile(t, filepath.Join(dir, "configs", "dev", "grit.yaml"), `
manifest-layers:
  - /shared/base
  - override
`)
	r := &Resolver{Dir: dir, Methods: DefaultRegistry()}

	res, err := r.FromConfig(context.Background(), "configs/dev/grit", false)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "shared", "base.json"),
		filepath.Join(dir, "configs", "dev", "override.yaml"),
	}, res.Layers)

	require.Len(t, res.Manifest.Repositories, 1)
	resolved, err := manifest.Resolve(res.Manifest.Repositories[0], res.Manifest)
	require.NoError(t, err)
	require.Equal(t, "dev", resolved.Branch)
	require.Equal(t, "https://git.example.com/org/b", resolved.CloneURL())
}

func TestResolver_FromConfig_missingLayer(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "grit.yaml"), "manifest-layers: [absent]\n")
	r := &Resolver{Dir: dir}

	_, err := r.FromConfig(context.Background(), "grit", false)
	require.ErrorIs(t, err, manifest.ErrConfig)
}

func TestResolver_Fetch(t *testing.T) {
	dir := t.TempDir()
	var fetched []string
	fake := FetchFunc(func(_ context.Context, spec FetchSpec, dest string) error {
		fetched = append(fetched, spec.Repository)
		writeFile(t, filepath.Join(dest, "base.yaml"), "repositories:\n  - repository: "+spec.Repository+"\n")
		return nil
	})
	r := &Resolver{Dir: dir, Methods: Registry{"fake": fake}}
	cfg := &Config{
		Source: filepath.Join(dir, "grit.yaml"),
		FetchManifests: []FetchSpec{
			{Method: "fake", RemoteURL: "https://x", Repository: "org/one"},
			{Method: "fake", RemoteURL: "https://x", Repository: "org/two", Directory: "nested/two"},
		},
	}

	require.NoError(t, r.Fetch(context.Background(), cfg, false))
	require.Equal(t, []string{"org/one", "org/two"}, fetched)
	require.FileExists(t, filepath.Join(dir, "one", "base.yaml"))
	require.FileExists(t, filepath.Join(dir, "nested", "two", "base.yaml"))

	// Present sources are skipped.
	require.NoError(t, r.Fetch(context.Background(), cfg, false))
	require.Len(t, fetched, 2)
}

func TestResolver_Fetch_unknownMethod(t *testing.T) {
	called := false
	fake := FetchFunc(func(context.Context, FetchSpec, string) error {
		called = true
		return nil
	})
	r := &Resolver{Dir: t.TempDir(), Methods: Registry{"fake": fake}}
	cfg := &Config{FetchManifests: []FetchSpec{
		{Method: "fake", RemoteURL: "https://x", Repository: "a"},
		{Method: "ftp", RemoteURL: "https://x", Repository: "b"},
	}}

	err := r.Fetch(context.Background(), cfg, false)
	require.ErrorIs(t, err, manifest.ErrConfig)
	require.False(t, called, "nothing should be fetched when a method is unknown")
}

func TestGitFetch(t *testing.T) {
	remotes := t.TempDir()
	testutil.CreateBareRepoWithFiles(t, remotes, "manifests.git", map[string]string{
		"base.yaml": "repositories:\n  - repository: org/a\n",
	})

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "grit.yaml"), `
fetch-manifests:
  - method: git
    remote-url: `+remotes+`
    repository: manifests
manifest-layers: [/manifests/base]
`)
	r := &Resolver{Dir: dir, Methods: DefaultRegistry()}

	res, err := r.FromConfig(context.Background(), "grit", false)
	require.NoError(t, err)
	require.Equal(t, "org/a", res.Manifest.Repositories[0].ID)

	// Refreshing an up to date source succeeds.
	_, err = r.FromConfig(context.Background(), "grit", true)
	require.NoError(t, err)
}

func TestGitFetch_Clone_tag(t *testing.T) {
	bare := testutil.CreateBareRepoWithTag(t, "v1.0")
	dest := filepath.Join(t.TempDir(), "clone")

	require.NoError(t, GitFetch{}.Clone(context.Background(), bare, "v1.0", dest))
	require.NoFileExists(t, filepath.Join(dest, "after-tag.txt"))
	require.FileExists(t, filepath.Join(dest, "README.md"))
}

func TestGitFetch_Clone_branch(t *testing.T) {
	bare := testutil.CreateBareRepoWithBranch(t, "feature/x")
	dest := filepath.Join(t.TempDir(), "clone")

	require.NoError(t, GitFetch{}.Clone(context.Background(), bare, "feature/x", dest))
	require.FileExists(t, filepath.Join(dest, "feature.txt"))
}
