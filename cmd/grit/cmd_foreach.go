package main

import (
	"fmt"
	"strings"

	"github.com/fbkclanna/grit/internal/executor"
	"github.com/spf13/cobra"
)

func newForeachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "foreach <shell command line>",
		Short: "Run a shell command line in every target repository",
		Long: `Run a shell command line with sh -c in every target repository.

The command sees GRIT_LOCAL_PATH, GRIT_REPOSITORY, GRIT_REMOTE_NAME,
GRIT_REMOTE_URL, GRIT_BRANCH and GRIT_TAG for the repository it runs in.
Multiple arguments are joined with spaces.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runForeach,
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func runForeach(cmd *cobra.Command, args []string) error {
	line := strings.Join(args, " ")
	if strings.TrimSpace(line) == "" {
		return fmt.Errorf("empty command line")
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
			Steps:   []executor.Step{{Dir: dir, Argv: shellArgv(line), Env: repoEnv(r, dir)}},
		})
	}
	_, err = s.run(cmd, tasks)
	return err
}
