package main

import (
	"fmt"
	"strings"

	"github.com/fbkclanna/grit/internal/executor"
	"github.com/fbkclanna/grit/internal/git"
	"github.com/fbkclanna/grit/internal/logging"
	"github.com/fbkclanna/grit/internal/manifest"
	"github.com/fbkclanna/grit/internal/ui"
	"github.com/fbkclanna/grit/internal/workspace"
	"github.com/spf13/cobra"
)

// globalOptions are the root flags shared by every command.
type globalOptions struct {
	root    string
	groups  []string
	jobs    int
	force   bool
	noLog   bool
	verbose bool
}

func readGlobalOptions(cmd *cobra.Command) (globalOptions, error) {
	var o globalOptions
	o.root, _ = cmd.Flags().GetString("root")
	groups, _ := cmd.Flags().GetString("groups")
	o.jobs, _ = cmd.Flags().GetInt("jobs")
	o.force, _ = cmd.Flags().GetBool("force")
	o.noLog, _ = cmd.Flags().GetBool("no-log")
	o.verbose, _ = cmd.Flags().GetBool("verbose")

	if o.jobs < 1 {
		return o, fmt.Errorf("%w: --jobs must be >= 1 (got %d)", manifest.ErrConfig, o.jobs)
	}
	o.groups = parseGroups(groups)
	return o, nil
}

// parseGroups splits the --groups value. "all" selects every repository.
func parseGroups(s string) []string {
	var out []string
	for _, g := range strings.Split(s, ",") {
		g = strings.TrimSpace(g)
		if g == "all" {
			return nil
		}
		if g != "" {
			out = append(out, g)
		}
	}
	return out
}

func newLogger(cmd *cobra.Command, ws *workspace.Context, o globalOptions) (*logging.Logger, error) {
	opts := logging.Options{Out: cmd.OutOrStdout(), Verbose: o.verbose}
	if !o.noLog {
		opts.AuditPath = ws.LogPath
	}
	return logging.New(opts)
}

// session is the state shared by commands operating on target repositories.
type session struct {
	ws      *workspace.Context
	log     *logging.Logger
	targets []manifest.Resolved
	exec    *executor.Executor
}

// newSession loads the workspace and resolves the target repositories.
// Configuration errors surface here, before anything runs.
func newSession(cmd *cobra.Command) (*session, error) {
	o, err := readGlobalOptions(cmd)
	if err != nil {
		return nil, err
	}
	if !git.IsGitInstalled() {
		return nil, fmt.Errorf("%s not found in PATH", git.Binary)
	}
	ws, err := workspace.Load(o.root)
	if err != nil {
		return nil, err
	}
	repos := manifest.Filter(ws.Manifest, o.groups)
	targets, err := manifest.ResolveAll(repos, ws.Manifest)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cmd, ws, o)
	if err != nil {
		return nil, err
	}
	log.Debug(fmt.Sprintf("%d of %d repositories selected", len(targets), len(ws.Manifest.Repositories)))

	return &session{
		ws:      ws,
		log:     log,
		targets: targets,
		exec: &executor.Executor{
			Runner:  executor.ExecRunner{},
			Jobs:    o.jobs,
			Force:   o.force,
			Verbose: o.verbose,
			Out:     cmd.OutOrStdout(),
			Audit:   log.Audit,
		},
	}, nil
}

func (s *session) close() {
	_ = s.log.Close()
}

// run executes tasks. Failed or skipped repositories are summarized on
// stderr and turned into an error.
func (s *session) run(cmd *cobra.Command, tasks []executor.Task) (*executor.Report, error) {
	rep := s.exec.Run(cmd.Context(), tasks)
	if rep.OK() {
		return rep, nil
	}
	printSummary(cmd, rep)
	return rep, reportError(rep)
}

func printSummary(cmd *cobra.Command, rep *executor.Report) {
	out := cmd.ErrOrStderr()
	_, _ = fmt.Fprintln(out)
	tbl := ui.NewTable(out, "REPO", "EXIT", "RESULT")
	for _, r := range rep.Results {
		switch r.Status {
		case executor.StatusFailed:
			tbl.StyledRow(ui.Failure, r.Label, r.ExitCode, r.Status)
		case executor.StatusSkipped:
			tbl.StyledRow(ui.Muted, r.Label, "-", r.Status)
		}
	}
	_ = tbl.Flush()
}

func reportError(rep *executor.Report) error {
	failed, skipped := len(rep.Failed()), len(rep.Skipped())
	if skipped == 0 {
		return fmt.Errorf("%d of %d repositories failed", failed, len(rep.Results))
	}
	return fmt.Errorf("%d of %d repositories failed, %d not run", failed, len(rep.Results), skipped)
}

// requireDir fails when a target repository has not been cloned yet.
func requireDir(dir string) func() error {
	return func() error {
		if !isDir(dir) {
			return fmt.Errorf("%s does not exist (not cloned?)", dir)
		}
		return nil
	}
}
