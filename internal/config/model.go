package config

import (
	"path"
	"strings"
)

// Config is a workspace configuration file.
type Config struct {
	FetchManifests []FetchSpec    `yaml:"fetch-manifests,omitempty"`
	ManifestLayers []string       `yaml:"manifest-layers"`
	Extensions     map[string]any `yaml:",inline"`

	// Source is the file the configuration was read from, if any.
	Source string `yaml:"-"`
}

// FetchSpec describes one manifest source to fetch into the workspace.
type FetchSpec struct {
	Method     string         `yaml:"method"`
	RemoteURL  string         `yaml:"remote-url,omitempty"`
	Repository string         `yaml:"repository,omitempty"`
	Branch     string         `yaml:"branch,omitempty"`
	Directory  string         `yaml:"directory,omitempty"`
	Extensions map[string]any `yaml:",inline"`
}

// LocalDir returns the directory inside the workspace the source is
// fetched into. It defaults to the last element of the repository name.
func (s FetchSpec) LocalDir() string {
	if s.Directory != "" {
		return s.Directory
	}
	return path.Base(strings.TrimSuffix(s.Repository, ".git"))
}

// URL returns the clone URL: the remote URL joined with the repository.
func (s FetchSpec) URL() string {
	u := strings.TrimSuffix(s.RemoteURL, "/") + "/" + strings.TrimPrefix(s.Repository, "/")
	if !strings.HasSuffix(u, ".git") {
		u += ".git"
	}
	return u
}
