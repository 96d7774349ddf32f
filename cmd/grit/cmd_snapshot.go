package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fbkclanna/grit/internal/executor"
	"github.com/fbkclanna/grit/internal/format"
	"github.com/fbkclanna/grit/internal/git"
	"github.com/fbkclanna/grit/internal/manifest"
	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot [name]",
		Short: "Write a manifest pinning every target repository to its current HEAD",
		Long: `Write a copy of the active manifest in which every target repository's
tag is set to its current HEAD commit. The file is written to the workspace
directory as <name>.yaml and can be activated later with 'grit init -m'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSnapshot,
	}
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	name := manifest.SnapshotName(time.Now())
	if len(args) == 1 {
		name = args[0]
	}
	path, err := snapshotPath(s.ws.Dir, name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("snapshot %s already exists", path)
	}

	tasks := make([]executor.Task, 0, len(s.targets))
	for _, r := range s.targets {
		dir := s.ws.RepoDir(r)
		tasks = append(tasks, executor.Task{
			Label:   r.DisplayName(),
			Prepare: requireDir(dir),
			Steps:   []executor.Step{{Dir: dir, Argv: git.HeadArgs()}},
			Quiet:   true,
		})
	}
	rep, err := s.run(cmd, tasks)
	if err != nil {
		return fmt.Errorf("snapshot not written: %w", err)
	}

	heads := make(map[manifest.RepoKey]string, len(s.targets))
	for i, r := range s.targets {
		sha, err := git.ParseHead(rep.Results[i].Stdout)
		if err != nil {
			return fmt.Errorf("snapshot not written: %s: %w", r.DisplayName(), err)
		}
		heads[r.Key()] = sha
		s.log.Debug(fmt.Sprintf("%s @ %s", r.DisplayName(), sha[:7]))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil { //nolint:gosec // workspace directories need to be accessible
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := manifest.Save(path, manifest.Snapshot(s.ws.Manifest, heads)); err != nil {
		return err
	}
	s.log.Info(fmt.Sprintf("Snapshot written to %s", path))
	return nil
}

// snapshotPath returns the file a snapshot called name is written to.
// Snapshots are always YAML.
func snapshotPath(dir, name string) (string, error) {
	if err := manifest.CheckPath(name, "snapshot name"); err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
	default:
		if format.IsJSON(name) {
			return "", fmt.Errorf("%w: snapshots are written as YAML, not %s", manifest.ErrConfig, name)
		}
		name += ".yaml"
	}
	return filepath.Join(dir, filepath.FromSlash(name)), nil
}
