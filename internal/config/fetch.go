package config

import (
	"context"
	"errors"
	"fmt"
	"io"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// FetchMethod retrieves a manifest source into dest.
type FetchMethod interface {
	Fetch(ctx context.Context, spec FetchSpec, dest string) error
}

// Updater is implemented by fetch methods that can refresh a source that
// was already fetched.
type Updater interface {
	Update(ctx context.Context, spec FetchSpec, dest string) error
}

// FetchFunc adapts a function to FetchMethod.
type FetchFunc func(ctx context.Context, spec FetchSpec, dest string) error

// Fetch calls f.
func (f FetchFunc) Fetch(ctx context.Context, spec FetchSpec, dest string) error {
	return f(ctx, spec, dest)
}

// Registry maps method names to implementations.
type Registry map[string]FetchMethod

// DefaultRegistry returns the built-in fetch methods.
func DefaultRegistry() Registry {
	return Registry{"git": GitFetch{}}
}

// GitFetch clones manifest repositories in-process with go-git.
type GitFetch struct {
	// Progress receives the remote's sideband output, if set.
	Progress io.Writer
}

// Fetch clones spec.URL() into dest.
func (g GitFetch) Fetch(ctx context.Context, spec FetchSpec, dest string) error {
	return g.Clone(ctx, spec.URL(), spec.Branch, dest)
}

// Clone clones url into dest. ref may name a branch or a tag; empty
// clones the remote HEAD.
func (g GitFetch) Clone(ctx context.Context, url, ref, dest string) error {
	opts := &gogit.CloneOptions{URL: url, Progress: g.Progress}
	if ref == "" {
		if _, err := gogit.PlainCloneContext(ctx, dest, false, opts); err != nil {
			return fmt.Errorf("cloning %s: %w", url, err)
		}
		return nil
	}

	name, err := remoteRef(ctx, url, ref)
	if err != nil {
		return err
	}
	opts.SingleBranch = true
	opts.ReferenceName = name
	if _, err := gogit.PlainCloneContext(ctx, dest, false, opts); err != nil {
		return fmt.Errorf("cloning %s (%s): %w", url, ref, err)
	}
	return nil
}

// remoteRef finds ref among the remote's branches, then its tags.
func remoteRef(ctx context.Context, url, ref string) (plumbing.ReferenceName, error) {
	remote := gogit.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: gogit.DefaultRemoteName,
		URLs: []string{url},
	})
	refs, err := remote.ListContext(ctx, &gogit.ListOptions{})
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", url, err)
	}
	for _, want := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(ref),
		plumbing.NewTagReferenceName(ref),
	} {
		for _, r := range refs {
			if r.Name() == want {
				return want, nil
			}
		}
	}
	return "", fmt.Errorf("%s: %w: %s", url, plumbing.ErrReferenceNotFound, ref)
}

// Update pulls the checked out branch of dest. Detached checkouts of a tag
// are left alone.
func (g GitFetch) Update(ctx context.Context, _ FetchSpec, dest string) error {
	repo, err := gogit.PlainOpen(dest)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dest, err)
	}
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("reading HEAD of %s: %w", dest, err)
	}
	if !head.Name().IsBranch() {
		return nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree of %s: %w", dest, err)
	}
	err = wt.PullContext(ctx, &gogit.PullOptions{
		ReferenceName: head.Name(),
		SingleBranch:  true,
		Progress:      g.Progress,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("updating %s: %w", dest, err)
	}
	return nil
}
