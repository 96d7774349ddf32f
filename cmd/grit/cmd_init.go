package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fbkclanna/grit/internal/config"
	"github.com/fbkclanna/grit/internal/manifest"
	"github.com/fbkclanna/grit/internal/workspace"
	"github.com/spf13/cobra"
)

// errAborted is returned when the user declines to replace the active
// manifest.
var errAborted = errors.New("init aborted")

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [url]",
		Short: "Fetch manifests and generate the active manifest",
		Long: `Fetch manifests and generate the active manifest.

With a url, the manifest repository is cloned into the workspace directory
(` + workspace.DirName + `/<directory>). With --manifest, a single manifest
fragment becomes the active manifest. With --config, the configuration's
fetch-manifests are fetched and its manifest-layers are folded in order.
Names are looked up in the workspace directory first and may omit the
extension. --update regenerates the active manifest from the source used
last time, refreshing fetched manifest repositories.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
	cmd.Flags().StringP("directory", "d", "", "Directory to clone the manifest repository into")
	cmd.Flags().StringP("branch", "b", "", "Branch or tag of the manifest repository")
	cmd.Flags().StringP("manifest", "m", "", "Manifest fragment to activate")
	cmd.Flags().StringP("config", "c", "", "Configuration to activate")
	cmd.Flags().BoolP("update", "u", false, "Refresh fetched manifests and regenerate the active manifest")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	o, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	directory, _ := cmd.Flags().GetString("directory")
	branch, _ := cmd.Flags().GetString("branch")
	manifestName, _ := cmd.Flags().GetString("manifest")
	configName, _ := cmd.Flags().GetString("config")
	update, _ := cmd.Flags().GetBool("update")

	if manifestName != "" && configName != "" {
		return fmt.Errorf("%w: --manifest and --config cannot be used together", manifest.ErrConfig)
	}
	if directory != "" {
		if err := manifest.CheckPath(directory, "--directory"); err != nil {
			return err
		}
	}

	ws, err := workspace.Open(o.root)
	if err != nil {
		return err
	}
	state, err := ws.LoadState()
	if err != nil {
		return err
	}

	mode, name := workspace.ModeManifest, manifestName
	if configName != "" {
		mode, name = workspace.ModeConfig, configName
	}
	if name == "" && update {
		if state == nil {
			return fmt.Errorf("nothing to update: %s has no init state, run 'grit init -c <config>' first", ws.Dir)
		}
		mode, name = state.Mode, state.Source
	}

	if err := ws.EnsureDir(); err != nil {
		return err
	}
	log, err := newLogger(cmd, ws, o)
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()

	resolver := &config.Resolver{Dir: ws.Dir, Methods: config.DefaultRegistry(), Log: log.Logger}

	if len(args) == 1 {
		url := args[0]
		if directory == "" {
			directory = dirFromURL(url)
		}
		dest := filepath.Join(ws.Dir, filepath.FromSlash(directory))
		if _, err := os.Stat(dest); err == nil {
			log.Info(fmt.Sprintf("%s already exists, not fetching %s.", dest, url))
		} else {
			log.Info("Fetching specified manifest and config file(s)...")
			if err := (config.GitFetch{}).Clone(cmd.Context(), url, branch, dest); err != nil {
				return err
			}
		}
	}

	if name == "" {
		if len(args) == 1 {
			return nil
		}
		if !isInteractive() {
			return fmt.Errorf("%w: specify --manifest or --config (or run interactively)", manifest.ErrConfig)
		}
		if name, err = promptSource(resolver.Locate); err != nil {
			return err
		}
		mode = workspace.ModeConfig
		if ws.HasManifest() {
			ok, err := promptConfirm("Replace the existing active manifest?")
			if err != nil {
				return err
			}
			if !ok {
				return errAborted
			}
		}
	}

	log.Info(fmt.Sprintf("Loading %s.", name))
	var res *config.Result
	switch mode {
	case workspace.ModeConfig:
		res, err = resolver.FromConfig(cmd.Context(), name, update)
	default:
		res, err = resolver.FromManifest(name)
	}
	if err != nil {
		return err
	}

	if err := ws.SaveManifest(res.Manifest); err != nil {
		return err
	}
	layers := make([]string, len(res.Layers))
	for i, l := range res.Layers {
		layers[i] = ws.Rel(l)
	}
	if err := ws.SaveState(&workspace.State{
		Mode:        mode,
		Source:      ws.Rel(res.Source),
		Layers:      layers,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		ToolVersion: version,
	}); err != nil {
		return err
	}

	log.Info(fmt.Sprintf("Generated active manifest with %d repositories.", len(res.Manifest.Repositories)))
	return nil
}
