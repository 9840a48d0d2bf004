package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cohere/internal/catalog"
	"cohere/internal/diag"
	"cohere/internal/driver"
	"cohere/internal/fix"
	"cohere/internal/project"
	"cohere/internal/source"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file.decl|directory>",
	Short: "Apply suggested fixes for unsafe qualifiers",
	Long: `Fix re-checks the input and rewrites the files with the suggested edits:
adding or removing the unsafe keyword on impl headers. Without --all or --id
only the first fix is applied.`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

func init() {
	registerFixFlags(fixCmd)
}

func registerFixFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("all", false, "apply every fix")
	cmd.Flags().String("id", "", "apply only the fix with this id (see --list)")
	cmd.Flags().Bool("list", false, "list available fixes and their ids without applying")
	cmd.Flags().Bool("dry-run", false, "print the resulting files instead of writing them")
	cmd.Flags().String("catalog", "", "YAML catalog of extern traits layered on the built-in one")
}

func runFix(cmd *cobra.Command, args []string) (err error) {
	defer finishOnError(&err)

	target := args[0]
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("failed to get all flag: %w", err)
	}
	id, err := cmd.Flags().GetString("id")
	if err != nil {
		return fmt.Errorf("failed to get id flag: %w", err)
	}
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return fmt.Errorf("failed to get list flag: %w", err)
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	catalogPath, err := cmd.Flags().GetString("catalog")
	if err != nil {
		return fmt.Errorf("failed to get catalog flag: %w", err)
	}
	if all && id != "" {
		return fmt.Errorf("--all and --id cannot be used together")
	}

	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	if catalogPath == "" {
		startDir := target
		if !st.IsDir() {
			startDir = filepath.Dir(target)
		}
		manifest, _, err := project.LoadManifest(startDir)
		if err != nil {
			return err
		}
		catalogPath = manifest.CatalogPath()
	}
	cat, err := catalog.LoadWithDefault(catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	// без лимита: правки нужны для каждой диагностики
	opts := driver.Options{MaxDiagnostics: 0xFFFF, Catalog: cat}
	var (
		fileSet *source.FileSet
		results []driver.UnitResult
	)
	if st.IsDir() {
		fileSet, results, err = driver.CheckDir(cmd.Context(), target, opts)
	} else {
		var res *driver.UnitResult
		fileSet, res, err = driver.CheckFile(cmd.Context(), target, opts)
		if res != nil {
			results = []driver.UnitResult{*res}
		}
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	diagnostics := mergeBags(results).Items()
	out := cmd.OutOrStdout()
	if list {
		return listFixes(out, fileSet, diagnostics)
	}

	applyOpts := fix.ApplyOptions{Mode: fix.ApplyModeOnce, DryRun: dryRun}
	switch {
	case all:
		applyOpts.Mode = fix.ApplyModeAll
	case id != "":
		applyOpts.Mode = fix.ApplyModeID
		applyOpts.TargetID = id
	}

	res, err := fix.Apply(fileSet, diagnostics, applyOpts)
	for _, s := range res.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s (%s): %s\n", s.ID, s.Title, s.Reason)
	}
	if errors.Is(err, fix.ErrNoFixes) {
		fmt.Fprintln(out, "no applicable fixes")
		return nil
	}
	if err != nil {
		return err
	}

	for _, a := range res.Applied {
		fmt.Fprintf(out, "applied %s: %s (%s)\n", a.ID, a.Title, a.PrimaryPath)
	}
	for _, change := range res.FileChanges {
		if dryRun {
			fmt.Fprintf(out, "== %s ==\n%s", change.Path, change.Content)
			continue
		}
		fmt.Fprintf(out, "updated %s (%d edits)\n", change.Path, change.EditCount)
	}
	return nil
}

func listFixes(out io.Writer, fileSet *source.FileSet, diagnostics []*diag.Diagnostic) error {
	found := 0
	for _, d := range diagnostics {
		for idx, f := range d.Fixes {
			loc := "?"
			if int(d.Primary.File) < fileSet.Len() {
				start, _ := fileSet.Resolve(d.Primary)
				loc = fmt.Sprintf("%s:%d:%d", fileSet.DisplayPath(d.Primary.File, source.PathAuto), start.Line, start.Col)
			}
			fmt.Fprintf(out, "%s  %s  %s  %s\n", fix.FixID(d, idx), loc, d.Code.ID(), f.Title)
			found++
		}
	}
	if found == 0 {
		fmt.Fprintln(out, "no applicable fixes")
	}
	return nil
}
