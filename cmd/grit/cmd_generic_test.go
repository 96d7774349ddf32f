package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fbkclanna/grit/internal/workspace"
)

func TestRunGeneric_passthrough(t *testing.T) {
	root := setupCloned(t, "alpha", "beta")

	// Flags after the command name belong to git.
	out := mustGrit(t, root, "rev-parse", "--abbrev-ref", "HEAD")
	if strings.Count(out, "main\n") != 2 {
		t.Errorf("expected the current branch of both repositories:\n%s", out)
	}
	if !strings.Contains(out, "- alpha\n") || !strings.Contains(out, "- beta\n") {
		t.Errorf("output should be labelled per repository:\n%s", out)
	}
}

func TestRunGeneric_fromSubdirectory(t *testing.T) {
	root := setupCloned(t, "alpha")

	out := mustGrit(t, filepath.Join(root, "alpha"), "status", "--short", "--branch")
	if !strings.Contains(out, "## main...origin/main") {
		t.Errorf("unexpected status output:\n%s", out)
	}
}

func TestRunGeneric_gitFailure(t *testing.T) {
	root := setupCloned(t, "alpha")

	_, stderr, err := runGrit(t, root, "no-such-git-command")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(stderr, "alpha") {
		t.Errorf("summary should list alpha:\n%s", stderr)
	}
}

func TestRunGeneric_notCloned(t *testing.T) {
	root := setupWorkspace(t, "repositories: [{repository: alpha}]\n")

	_, _, err := runGrit(t, root, "status")
	if err == nil {
		t.Fatal("expected an error for a repository that is not cloned")
	}
}

func TestRunGeneric_noWorkspace(t *testing.T) {
	_, _, err := runGrit(t, t.TempDir(), "status")
	if !errors.Is(err, workspace.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRunGeneric_gitNotInstalled(t *testing.T) {
	root := setupCloned(t, "alpha")
	t.Setenv("PATH", t.TempDir())

	_, _, err := runGrit(t, root, "status")
	if err == nil || !strings.Contains(err.Error(), "git not found") {
		t.Fatalf("expected a missing git error, got %v", err)
	}
}

func TestRunGeneric_noArgsShowsHelp(t *testing.T) {
	out := mustGrit(t, t.TempDir())
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected help output, got:\n%s", out)
	}
}

func TestParseGroups(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"all", nil},
		{"", nil},
		{"backend", []string{"backend"}},
		{"backend, ui,", []string{"backend", "ui"}},
		{"backend,all", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseGroups(tt.in)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") || (got == nil) != (tt.want == nil) {
				t.Errorf("parseGroups(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
