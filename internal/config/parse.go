package config

import (
	"fmt"
	"os"

	"github.com/fbkclanna/grit/internal/format"
	"github.com/fbkclanna/grit/internal/manifest"
)

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line or init state
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	c, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	c.Source = path
	return c, nil
}

// Parse parses and validates configuration content.
func Parse(name string, data []byte) (*Config, error) {
	var c Config
	if err := format.Unmarshal(name, data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", manifest.ErrConfig, err)
	}
	if err := validate(&c); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &c, nil
}

func validate(c *Config) error {
	if err := manifest.CheckExtensions("config", c.Extensions); err != nil {
		return err
	}
	if len(c.ManifestLayers) == 0 {
		return fmt.Errorf("%w: manifest-layers must list at least one fragment", manifest.ErrConfig)
	}
	for i, l := range c.ManifestLayers {
		if l == "" {
			return fmt.Errorf("%w: manifest-layers[%d] is empty", manifest.ErrConfig, i)
		}
	}
	seen := map[string]int{}
	for i, s := range c.FetchManifests {
		label := fmt.Sprintf("fetch-manifests[%d]", i)
		if s.Method == "" {
			return fmt.Errorf("%w: %s.method is required", manifest.ErrConfig, label)
		}
		if s.Repository == "" {
			return fmt.Errorf("%w: %s.repository is required", manifest.ErrConfig, label)
		}
		if s.RemoteURL == "" {
			return fmt.Errorf("%w: %s.remote-url is required", manifest.ErrConfig, label)
		}
		if err := manifest.CheckExtensions(label, s.Extensions); err != nil {
			return err
		}
		if err := manifest.CheckPath(s.LocalDir(), label+".directory"); err != nil {
			return err
		}
		if j, ok := seen[s.LocalDir()]; ok {
			return fmt.Errorf("%w: %s fetches into %q, already used by fetch-manifests[%d]", manifest.ErrConfig, label, s.LocalDir(), j)
		}
		seen[s.LocalDir()] = i
	}
	return nil
}
