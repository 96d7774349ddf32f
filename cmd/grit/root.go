package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grit [flags] <command> [params...]",
		Short: "Manage many git repositories in a project",
		Long: `grit manages the repositories listed in a layered manifest.

Besides init, clone, foreach and snapshot, any other command is passed to
git verbatim and run in every target repository, for example:

  grit -j 4 fetch --prune
  grit -g backend status --short`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGeneric,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	// Everything after the command name belongs to git.
	cmd.Flags().SetInterspersed(false)

	pf := cmd.PersistentFlags()
	pf.String("root", ".", "Directory inside the project (the workspace is found by walking up)")
	pf.StringP("groups", "g", "all", "Comma separated groups; a repository must belong to at least one")
	pf.IntP("jobs", "j", 1, "Number of parallel jobs")
	pf.BoolP("force", "f", false, "Continue even if an error occurred")
	pf.Bool("no-log", false, "Do not append command details to the log file")
	pf.BoolP("verbose", "v", false, "Print executed commands and debug messages")

	cmd.AddCommand(
		newInitCmd(),
		newCloneCmd(),
		newForeachCmd(),
		newSnapshotCmd(),
	)

	return cmd
}
