// Package testutil provides git repository fixtures for tests.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// CreateBareRepo creates a bare git repository with an initial commit in a temp directory.
// Returns the path to the bare repo.
func CreateBareRepo(t *testing.T) string {
	t.Helper()
	return CreateBareRepoAt(t, t.TempDir(), "repo.git")
}

// CreateBareRepoAt creates a bare repository named name inside parent, so
// several fixtures can share one remote base URL.
func CreateBareRepoAt(t *testing.T, parent, name string) string {
	t.Helper()
	bare := filepath.Join(parent, name)
	work := initWorkRepo(t)

	// Clone as bare.
	run(t, parent, "git", "clone", "--bare", work, bare)
	return bare
}

// CreateBareRepoWithFiles creates a bare repository named name inside
// parent whose main branch holds files on top of the initial commit.
func CreateBareRepoWithFiles(t *testing.T, parent, name string, files map[string]string) string {
	t.Helper()
	bare := filepath.Join(parent, name)
	work := initWorkRepo(t)
	for rel, content := range files {
		p := filepath.Join(work, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil { //nolint:gosec // test directory
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil { //nolint:gosec // test file
			t.Fatal(err)
		}
	}
	run(t, work, "git", "add", ".")
	run(t, work, "git", "commit", "-m", "add files")

	run(t, parent, "git", "clone", "--bare", work, bare)
	return bare
}

// CreateBareRepoWithBranch creates a bare repo with a given branch.
func CreateBareRepoWithBranch(t *testing.T, branch string) string {
	t.Helper()
	dir := t.TempDir()
	bare := filepath.Join(dir, "repo.git")

	work := initWorkRepo(t)
	run(t, work, "git", "checkout", "-b", branch)
	commitFile(t, work, "feature.txt", "feature\n", "feature commit")

	// Switch back to main so the bare repo's HEAD points to main.
	run(t, work, "git", "checkout", "main")

	run(t, dir, "git", "clone", "--bare", work, bare)
	return bare
}

// CreateBareRepoWithTag creates a bare repo where tag points at the first
// commit and main has moved one commit past it.
func CreateBareRepoWithTag(t *testing.T, tag string) string {
	t.Helper()
	dir := t.TempDir()
	bare := filepath.Join(dir, "repo.git")

	work := initWorkRepo(t)
	run(t, work, "git", "tag", tag)
	commitFile(t, work, "after-tag.txt", "later\n", "commit after tag")

	run(t, dir, "git", "clone", "--bare", work, bare)
	return bare
}

// Git runs git with args in dir and fails the test on error.
func Git(t *testing.T, dir string, args ...string) {
	t.Helper()
	run(t, dir, "git", args...)
}

// Argv runs a full argv in dir and fails the test on error.
func Argv(t *testing.T, dir string, argv []string) {
	t.Helper()
	run(t, dir, argv[0], argv[1:]...)
}

// CurrentBranch returns the checked out branch in dir, or "" for a
// detached HEAD.
func CurrentBranch(t *testing.T, dir string) string {
	t.Helper()
	out, err := output(dir, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		return ""
	}
	return out
}

// HeadCommit returns the full commit id of HEAD in dir.
func HeadCommit(t *testing.T, dir string) string {
	t.Helper()
	out, err := output(dir, "rev-parse", "HEAD")
	if err != nil {
		t.Fatal(err)
	}
	return out
}

// GitConfig returns the value of key in dir, or "" if unset.
func GitConfig(t *testing.T, dir, key string) string {
	t.Helper()
	out, _ := output(dir, "config", "--get-all", key)
	return out
}

// IsCloned reports whether dir holds a git working tree.
func IsCloned(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}

func output(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

func initWorkRepo(t *testing.T) string {
	t.Helper()
	work := filepath.Join(t.TempDir(), "work")
	run(t, filepath.Dir(work), "git", "init", "-b", "main", work)
	run(t, work, "git", "config", "user.email", "test@example.com")
	run(t, work, "git", "config", "user.name", "Test")
	commitFile(t, work, "README.md", "# test\n", "initial commit")
	return work
}

func commitFile(t *testing.T, work, name, content, msg string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(work, name), []byte(content), 0644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
	run(t, work, "git", "add", ".")
	run(t, work, "git", "commit", "-m", msg)
}

func run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("command %s %v failed: %v", name, args, err)
	}
}
