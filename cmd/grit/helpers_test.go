package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fbkclanna/grit/internal/testutil"
	"github.com/fbkclanna/grit/internal/workspace"
)

// runGrit executes the root command with --root set to root.
func runGrit(t *testing.T, root string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--root", root}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// mustGrit is runGrit failing the test on error.
func mustGrit(t *testing.T, root string, args ...string) string {
	t.Helper()
	stdout, stderr, err := runGrit(t, root, args...)
	if err != nil {
		t.Fatalf("grit %v failed: %v\nstdout:\n%s\nstderr:\n%s", args, err, stdout, stderr)
	}
	return stdout
}

// setupRemotes creates one bare repository per name inside a directory
// that serves as the remote URL.
func setupRemotes(t *testing.T, names ...string) string {
	t.Helper()
	remotes := t.TempDir()
	for _, n := range names {
		testutil.CreateBareRepoAt(t, remotes, n)
	}
	return remotes
}

// writeFile writes content to path, creating parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
}

// setupWorkspace activates fragment as the only manifest layer of a new
// workspace and returns the project root.
func setupWorkspace(t *testing.T, fragment string) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, workspace.DirName, "base.yaml"), fragment)
	mustGrit(t, root, "init", "-m", "base")
	return root
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test file
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
