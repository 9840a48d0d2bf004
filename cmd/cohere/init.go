package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cohere/internal/driver"
	"cohere/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a cohere project",
	Long: `Initialize a project by writing a cohere.toml manifest and a sample
lib.decl. If [path|name] is omitted, initializes the current directory.
A non-existing directory is created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const sampleDecl = `// Every impl of an unsafe trait must be declared unsafe.
unsafe trait Zeroable {}

struct Buffer;

unsafe impl Zeroable for Buffer {}
impl Buffer {}
`

// runInit writes cohere.toml (never overwriting an existing one) and a sample
// lib.decl when the directory has none.
func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := os.Stat(target); err == nil && !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "cohere-project"
	}

	manifestPath, err := project.WriteSkeleton(target, name)
	if err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	samplePath := filepath.Join(target, "lib"+driver.SourceExt)
	createdSample := false
	if _, err := os.Stat(samplePath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(samplePath, []byte(sampleDecl), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", samplePath, err)
		}
		createdSample = true
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized cohere project in %s\n", formatPathForOutput(target))
	fmt.Fprintf(out, "  - %s\n", filepath.Base(manifestPath))
	if createdSample {
		fmt.Fprintf(out, "  - %s\n", filepath.Base(samplePath))
	} else {
		fmt.Fprintf(out, "  - %s (existing)\n", filepath.Base(samplePath))
	}
	return nil
}

// formatPathForOutput prefers a path relative to the working directory.
func formatPathForOutput(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
