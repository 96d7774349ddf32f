package main

import (
	"fmt"

	"github.com/fbkclanna/grit/internal/executor"
	"github.com/fbkclanna/grit/internal/git"
	"github.com/spf13/cobra"
)

// runGeneric passes any command that is not built in to git, verbatim, in
// every target repository.
func runGeneric(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	tasks := make([]executor.Task, 0, len(s.targets))
	for _, r := range s.targets {
		dir := s.ws.RepoDir(r)
		tasks = append(tasks, executor.Task{
			Label:   r.DisplayName(),
			Prepare: requireDir(dir),
			Steps:   []executor.Step{{Dir: dir, Argv: git.Command(args...)}},
		})
	}
	if len(tasks) == 0 {
		return fmt.Errorf("no repositories match the selected groups")
	}
	_, err = s.run(cmd, tasks)
	return err
}
