package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fbkclanna/grit/internal/format"
	"github.com/fbkclanna/grit/internal/manifest"
)

// Resolver turns a configuration or a single fragment into the active
// manifest.
type Resolver struct {
	// Dir is the workspace directory (".grit"). Fetched sources land here
	// and layer paths starting with "/" are resolved from it.
	Dir     string
	Methods Registry
	Log     *slog.Logger
}

// Result is the outcome of a resolution.
type Result struct {
	Manifest *manifest.Manifest
	// Source is the configuration or fragment file that was resolved.
	Source string
	// Layers are the fragment files folded, lowest priority first.
	Layers []string
}

func (r *Resolver) log() *slog.Logger {
	if r.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Log
}

// Locate finds a configuration or fragment file by name. Relative names
// are looked up in the workspace directory first and then relative to the
// current directory. The extension may be omitted.
func (r *Resolver) Locate(name string) (string, error) {
	if filepath.IsAbs(name) {
		return format.Find(name)
	}
	p, err := format.Find(filepath.Join(r.Dir, filepath.FromSlash(name)))
	if err == nil {
		return p, nil
	}
	if p, err2 := format.Find(filepath.FromSlash(name)); err2 == nil {
		return p, nil
	}
	return "", err
}

// FromManifest makes a single fragment the only layer.
func (r *Resolver) FromManifest(name string) (*Result, error) {
	path, err := r.Locate(name)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest %s", manifest.ErrConfig, err)
	}
	f, err := manifest.LoadFragment(path)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Fold([]*manifest.Fragment{f})
	if err != nil {
		return nil, err
	}
	return &Result{Manifest: m, Source: path, Layers: []string{path}}, nil
}

// FromConfig loads a configuration, fetches its manifest sources and folds
// its layers. With update set, sources already present are refreshed.
func (r *Resolver) FromConfig(ctx context.Context, name string, update bool) (*Result, error) {
	path, err := r.Locate(name)
	if err != nil {
		return nil, fmt.Errorf("%w: config %s", manifest.ErrConfig, err)
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := r.Fetch(ctx, cfg, update); err != nil {
		return nil, err
	}

	layers := make([]string, 0, len(cfg.ManifestLayers))
	fragments := make([]*manifest.Fragment, 0, len(cfg.ManifestLayers))
	for _, l := range cfg.ManifestLayers {
		p, err := r.LayerPath(cfg, l)
		if err != nil {
			return nil, err
		}
		f, err := manifest.LoadFragment(p)
		if err != nil {
			return nil, err
		}
		layers = append(layers, p)
		fragments = append(fragments, f)
	}
	m, err := manifest.Fold(fragments)
	if err != nil {
		return nil, err
	}
	return &Result{Manifest: m, Source: path, Layers: layers}, nil
}

// LayerPath resolves a manifest-layers entry. Paths starting with "/" are
// relative to the workspace directory, others to the directory holding
// the configuration file.
func (r *Resolver) LayerPath(cfg *Config, layer string) (string, error) {
	var p string
	if rest, ok := strings.CutPrefix(layer, "/"); ok {
		p = filepath.Join(r.Dir, filepath.FromSlash(rest))
	} else {
		p = filepath.Join(filepath.Dir(cfg.Source), filepath.FromSlash(layer))
	}
	found, err := format.Find(p)
	if err != nil {
		return "", fmt.Errorf("%w: manifest layer %q: %v", manifest.ErrConfig, layer, err)
	}
	return found, nil
}

// Fetch retrieves every fetch-manifests source that is not present yet.
// Unknown methods are rejected before anything is fetched.
func (r *Resolver) Fetch(ctx context.Context, cfg *Config, update bool) error {
	for i, s := range cfg.FetchManifests {
		if _, ok := r.Methods[s.Method]; !ok {
			return fmt.Errorf("%w: fetch-manifests[%d]: method %q is not supported", manifest.ErrConfig, i, s.Method)
		}
	}
	for _, s := range cfg.FetchManifests {
		method := r.Methods[s.Method]
		dest := filepath.Join(r.Dir, filepath.FromSlash(s.LocalDir()))

		_, err := os.Stat(dest)
		switch {
		case err == nil:
			u, ok := method.(Updater)
			if !update || !ok {
				r.log().Debug("manifest source already fetched", "directory", s.LocalDir())
				continue
			}
			r.log().Info(fmt.Sprintf("Updating manifest source %s...", s.Repository))
			if err := u.Update(ctx, s, dest); err != nil {
				return err
			}
		case errors.Is(err, fs.ErrNotExist):
			r.log().Info(fmt.Sprintf("Fetching manifest source %s...", s.Repository))
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil { //nolint:gosec // workspace directories need to be accessible
				return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
			}
			if err := method.Fetch(ctx, s, dest); err != nil {
				return fmt.Errorf("fetching %s: %w", s.Repository, err)
			}
		default:
			return fmt.Errorf("checking %s: %w", dest, err)
		}
	}
	return nil
}
