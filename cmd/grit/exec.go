package main

import (
	"os"

	"github.com/fbkclanna/grit/internal/manifest"
)

// shellArgv returns argv running line through the shell.
func shellArgv(line string) []string {
	return []string{"sh", "-c", line}
}

// repoEnv returns the environment exposed to hooks and foreach commands
// for one repository.
func repoEnv(r manifest.Resolved, dir string) []string {
	return []string{
		"GRIT_LOCAL_PATH=" + dir,
		"GRIT_REPOSITORY=" + r.Repository,
		"GRIT_REMOTE_NAME=" + r.RemoteName,
		"GRIT_REMOTE_URL=" + r.RemoteURL,
		"GRIT_BRANCH=" + r.Branch,
		"GRIT_TAG=" + r.Tag,
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
