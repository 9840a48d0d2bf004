package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cohere/internal/driver"
	"cohere/internal/project"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove the cohere result cache",
	Long:  "Remove every cached check result of the project containing [path] (default: current directory).",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	base := "."
	if len(args) > 0 && args[0] != "" {
		base = args[0]
	}
	info, err := os.Stat(base)
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", base, err)
	}
	if !info.IsDir() {
		base = filepath.Dir(base)
	}
	manifest, _, err := project.LoadManifest(base)
	if err != nil {
		return err
	}
	cacheDir := cacheDirFor(manifest)

	out := cmd.OutOrStdout()
	if _, err := os.Stat(cacheDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(out, "cache directory not found")
			return nil
		}
		return fmt.Errorf("failed to stat %q: %w", cacheDir, err)
	}
	cache, err := driver.OpenDiskCache(cacheDir)
	if err != nil {
		return err
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clean %q: %w", cacheDir, err)
	}
	fmt.Fprintf(out, "removed %s\n", formatPathForOutput(cacheDir))
	return nil
}

// cacheDirFor returns the project cache directory, or the per-user one
// when no manifest was found.
func cacheDirFor(manifest *project.Manifest) string {
	if manifest != nil {
		return manifest.CacheDir()
	}
	if dir, err := driver.UserCacheDir("cohere"); err == nil {
		return dir
	}
	return manifest.CacheDir()
}
