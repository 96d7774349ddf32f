package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fbkclanna/grit/internal/executor"
	"github.com/fbkclanna/grit/internal/git"
	"github.com/fbkclanna/grit/internal/manifest"
	"github.com/spf13/cobra"
)

func newCloneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Clone the target repositories that are not present yet",
		Args:  cobra.NoArgs,
		RunE:  runClone,
	}
	cmd.Flags().Int("depth", 0, "Shallow clone depth when the manifest sets none (a manifest depth of 0 keeps full history)")
	cmd.Flags().String("single-branch", "", "Clone a single branch when the manifest does not say (yes|no)")
	cmd.Flags().Bool("no-post-run", false, "Do not run post-clone hooks")
	cmd.Flags().Bool("mirror", false, "Forwarded to git clone")
	cmd.Flags().Bool("bare", false, "Forwarded to git clone")
	cmd.Flags().String("reference", "", "Forwarded to git clone")
	cmd.Flags().Bool("dissociate", false, "Forwarded to git clone")
	return cmd
}

// cloneOptions are the clone flags.
type cloneOptions struct {
	depth        int
	singleBranch bool
	noPostRun    bool
	mirror       bool
	bare         bool
	reference    string
	dissociate   bool
}

func readCloneOptions(cmd *cobra.Command) (cloneOptions, error) {
	var o cloneOptions
	o.depth, _ = cmd.Flags().GetInt("depth")
	sb, _ := cmd.Flags().GetString("single-branch")
	o.noPostRun, _ = cmd.Flags().GetBool("no-post-run")
	o.mirror, _ = cmd.Flags().GetBool("mirror")
	o.bare, _ = cmd.Flags().GetBool("bare")
	o.reference, _ = cmd.Flags().GetString("reference")
	o.dissociate, _ = cmd.Flags().GetBool("dissociate")

	if o.depth < 0 {
		return o, fmt.Errorf("%w: --depth must be >= 0 (got %d)", manifest.ErrConfig, o.depth)
	}
	switch manifest.YesNo(sb) {
	case "", manifest.No:
	case manifest.Yes:
		o.singleBranch = true
	default:
		return o, fmt.Errorf("%w: --single-branch must be yes or no (got %q)", manifest.ErrConfig, sb)
	}
	return o, nil
}

func runClone(cmd *cobra.Command, _ []string) error {
	o, err := readCloneOptions(cmd)
	if err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	var tasks []executor.Task
	for _, r := range s.targets {
		dir := s.ws.RepoDir(r)
		if _, err := os.Stat(dir); err == nil {
			s.log.Info(fmt.Sprintf("Skipping %s, %s already exists.", r.DisplayName(), r.LocalDir))
			continue
		}
		if r.RemoteURL == "" {
			return fmt.Errorf("%w: %s: remote-url is not set", manifest.ErrConfig, r.DisplayName())
		}
		tasks = append(tasks, cloneTask(r, s.ws.Root, dir, o))
	}
	if len(tasks) == 0 {
		s.log.Info("Nothing to clone.")
		return nil
	}
	if _, err := s.run(cmd, tasks); err != nil {
		return err
	}
	s.log.Info(fmt.Sprintf("Cloned %d repositories.", len(tasks)))
	return nil
}

// cloneTask builds the steps for one repository: clone, push URL, branch
// or tag checkout, then hooks.
func cloneTask(r manifest.Resolved, root, dir string, o cloneOptions) executor.Task {
	ref, detached := r.CheckoutTarget()
	branch := r.RemoteBranch
	if detached {
		branch = ref
	}

	steps := []executor.Step{{
		Dir: root,
		Argv: git.CloneArgs(r.CloneURL(), dir, git.CloneOpts{
			Origin:       r.RemoteName,
			Branch:       branch,
			Depth:        r.DepthOr(o.depth),
			SingleBranch: r.SingleBranchOr(o.singleBranch),
			Reference:    o.reference,
			Dissociate:   o.dissociate,
			Bare:         o.bare,
			Mirror:       o.mirror,
		}),
	}}

	if !o.bare && !o.mirror {
		if push := r.PushURL(); push != "" {
			steps = append(steps, executor.Step{Dir: dir, Argv: git.AddPushURLArgs(r.RemoteName, push)})
		}
		switch {
		case detached:
			steps = append(steps, executor.Step{Dir: dir, Argv: git.CheckoutDetachedArgs(ref)})
		case ref != "":
			steps = append(steps, executor.Step{Dir: dir, Argv: git.CheckoutTrackingArgs(r.Branch, r.RemoteName, r.RemoteBranch)})
		}
	}

	if !o.noPostRun {
		env := repoEnv(r, dir)
		for _, line := range r.PostClone {
			steps = append(steps, executor.Step{Dir: dir, Argv: shellArgv(line), Env: env})
		}
	}

	return executor.Task{
		Label: r.DisplayName(),
		Prepare: func() error {
			if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil { //nolint:gosec // repository directories need to be accessible
				return fmt.Errorf("creating %s: %w", filepath.Dir(dir), err)
			}
			return nil
		},
		Steps: steps,
		Quiet: true,
	}
}
