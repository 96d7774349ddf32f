package workspace

import (
	"errors"
	"fmt"
	"os"

	"github.com/fbkclanna/grit/internal/format"
)

// StateVersion is the current init state format.
const StateVersion = 1

// Source modes recorded by init.
const (
	ModeConfig   = "config"
	ModeManifest = "manifest"
)

// State records how the active manifest was produced, so it can be
// regenerated with 'grit init --update'.
type State struct {
	Version     int      `yaml:"version"`
	Mode        string   `yaml:"mode"`
	Source      string   `yaml:"source"`
	Layers      []string `yaml:"layers,omitempty"`
	GeneratedAt string   `yaml:"generated_at"`
	ToolVersion string   `yaml:"tool_version"`
}

// LoadState reads the init state. It returns nil when none was written.
func (c *Context) LoadState() (*State, error) {
	data, err := os.ReadFile(c.StatePath) //nolint:gosec // path is the workspace state file
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}
	return ParseState(data)
}

// ParseState parses init state content.
func ParseState(data []byte) (*State, error) {
	var s State
	if err := format.Unmarshal(StateFile, data, &s); err != nil {
		return nil, fmt.Errorf("parsing state file: %w", err)
	}
	if s.Mode != ModeConfig && s.Mode != ModeManifest {
		return nil, fmt.Errorf("parsing state file: unknown mode %q", s.Mode)
	}
	return &s, nil
}

// SaveState writes the init state to disk.
func (c *Context) SaveState(s *State) error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	if s.Version == 0 {
		s.Version = StateVersion
	}
	if err := format.WriteFile(c.StatePath, s); err != nil {
		return err
	}
	c.State = s
	return nil
}
