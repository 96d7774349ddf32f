package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fbkclanna/grit/internal/manifest"
)

// Workspace file layout, relative to the project root.
const (
	DirName            = ".grit"
	ActiveManifestFile = "_active_manifest.yaml"
	StateFile          = "_state.yaml"
	LogFile            = "_commands.log"
)

// ErrNotFound is returned when no workspace directory exists at or above
// the start directory.
var ErrNotFound = errors.New("not a grit workspace (or any of the parent directories)")

// Context holds the resolved paths and loaded manifest for a workspace.
type Context struct {
	Root         string // project root, the parent of Dir
	Dir          string
	ManifestPath string
	StatePath    string
	LogPath      string
	Manifest     *manifest.Manifest
	State        *State // may be nil
}

// Find walks up from start to the first directory containing DirName and
// returns that directory.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving workspace root: %w", err)
	}
	for {
		info, err := os.Stat(filepath.Join(dir, DirName))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// New resolves the workspace paths for root without loading anything.
func New(root string) (*Context, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	dir := filepath.Join(root, DirName)
	return &Context{
		Root:         root,
		Dir:          dir,
		ManifestPath: filepath.Join(dir, ActiveManifestFile),
		StatePath:    filepath.Join(dir, StateFile),
		LogPath:      filepath.Join(dir, LogFile),
	}, nil
}

// Open finds the workspace at or above start, or prepares a new one rooted
// at start when none exists.
func Open(start string) (*Context, error) {
	root, err := Find(start)
	if errors.Is(err, ErrNotFound) {
		return New(start)
	}
	if err != nil {
		return nil, err
	}
	return New(root)
}

// Load finds the workspace at or above start and loads the active manifest
// (and init state if present).
func Load(start string) (*Context, error) {
	root, err := Find(start)
	if err != nil {
		return nil, err
	}
	ctx, err := New(root)
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(ctx.ManifestPath); errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("no active manifest in %s, run 'grit init' first", ctx.Dir)
	}
	m, err := manifest.Load(ctx.ManifestPath)
	if err != nil {
		return nil, err
	}
	ctx.Manifest = m

	st, err := ctx.LoadState()
	if err != nil {
		return nil, err
	}
	ctx.State = st
	return ctx, nil
}

// EnsureDir creates the workspace directory if needed.
func (c *Context) EnsureDir() error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil { //nolint:gosec // workspace directory needs to be accessible
		return fmt.Errorf("creating %s: %w", c.Dir, err)
	}
	return nil
}

// HasManifest reports whether an active manifest has been written.
func (c *Context) HasManifest() bool {
	_, err := os.Stat(c.ManifestPath)
	return err == nil
}

// SaveManifest validates and writes the active manifest.
func (c *Context) SaveManifest(m *manifest.Manifest) error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	if err := manifest.Save(c.ManifestPath, m); err != nil {
		return err
	}
	c.Manifest = m
	return nil
}

// RepoDir returns the absolute path for a repository within the workspace.
func (c *Context) RepoDir(r manifest.Resolved) string {
	return filepath.Join(c.Root, r.LocalPath)
}

// Rel returns path relative to the workspace directory when it lies
// inside it, and the absolute path otherwise.
func (c *Context) Rel(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(c.Dir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return abs
	}
	return filepath.ToSlash(rel)
}
