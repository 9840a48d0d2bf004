package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cohere/internal/catalog"
	"cohere/internal/diag"
	"cohere/internal/diagfmt"
	"cohere/internal/driver"
	"cohere/internal/observ"
	"cohere/internal/project"
	"cohere/internal/source"
	"cohere/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.decl|directory>",
	Short: "Check impl unsafety of a file or every *.decl file in a directory",
	Long: `Check parses the declarations, resolves trait paths and reports every impl
whose unsafe qualifier disagrees with the trait (COH0197-COH0200).
The exit status is 1 when any error diagnostic was produced.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	registerCheckFlags(checkCmd)
}

func registerCheckFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	cmd.Flags().String("catalog", "", "YAML catalog of extern traits layered on the built-in one")
	cmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	cmd.Flags().Bool("preview", false, "preview suggested edits (implies --suggest)")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	cmd.Flags().Bool("disk-cache", false, "reuse per-file results from the on-disk cache")
	cmd.Flags().String("ui", "auto", "progress view for directories (auto|on|off)")
}

// checkSettings — итоговые настройки после слияния cohere.toml и флагов.
type checkSettings struct {
	format           string
	maxDiagnostics   int
	jobs             int
	catalogPath      string
	diskCache        bool
	cacheDir         string
	warningsAsErrors bool
	withNotes        bool
	suggest          bool
	preview          bool
	fullPath         bool
	ui               uiMode
	timings          bool
}

// resolveCheckSettings applies the manifest first, then every flag the user set explicitly.
func resolveCheckSettings(cmd *cobra.Command, manifest *project.Manifest) (checkSettings, error) {
	cfg := project.DefaultConfig()
	if manifest != nil {
		cfg = manifest.Config
	}
	s := checkSettings{
		format:           cfg.Check.Format,
		maxDiagnostics:   cfg.Check.MaxDiagnostics,
		jobs:             cfg.Check.Jobs,
		catalogPath:      manifest.CatalogPath(),
		diskCache:        cfg.Cache.Enabled,
		cacheDir:         cacheDirFor(manifest),
		warningsAsErrors: cfg.Check.WarningsAsErrors,
	}
	if s.format == "" {
		s.format = "pretty"
	}

	flags := cmd.Flags()
	var err error
	if flags.Changed("format") {
		if s.format, err = flags.GetString("format"); err != nil {
			return s, fmt.Errorf("failed to get format flag: %w", err)
		}
	}
	if flags.Changed("max-diagnostics") {
		if s.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return s, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	if flags.Changed("jobs") {
		if s.jobs, err = flags.GetInt("jobs"); err != nil {
			return s, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if flags.Changed("catalog") {
		if s.catalogPath, err = flags.GetString("catalog"); err != nil {
			return s, fmt.Errorf("failed to get catalog flag: %w", err)
		}
	}
	if flags.Changed("disk-cache") {
		if s.diskCache, err = flags.GetBool("disk-cache"); err != nil {
			return s, fmt.Errorf("failed to get disk-cache flag: %w", err)
		}
	}
	if s.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return s, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if s.suggest, err = flags.GetBool("suggest"); err != nil {
		return s, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if s.preview, err = flags.GetBool("preview"); err != nil {
		return s, fmt.Errorf("failed to get preview flag: %w", err)
	}
	if s.fullPath, err = flags.GetBool("fullpath"); err != nil {
		return s, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return s, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if s.ui, err = readUIMode(uiStr); err != nil {
		return s, err
	}

	switch s.format {
	case "pretty", "short", "json", "sarif":
	default:
		return s, fmt.Errorf("unknown format: %s", s.format)
	}
	if s.maxDiagnostics < 0 {
		return s, fmt.Errorf("--max-diagnostics must not be negative")
	}
	if s.jobs < 0 {
		return s, fmt.Errorf("--jobs must not be negative")
	}
	return s, nil
}

// runCheck executes the "check" command and returns exitCodeError{1}
// when any error diagnostic was produced.
func runCheck(cmd *cobra.Command, args []string) (err error) {
	defer dumpTraceOnPanic(cmd)
	// PersistentPostRun не вызывается при ошибке
	defer finishOnError(&err)

	target := args[0]
	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	startDir := target
	if !st.IsDir() {
		startDir = filepath.Dir(target)
	}
	manifest, _, err := project.LoadManifest(startDir)
	if err != nil {
		return err
	}

	settings, err := resolveCheckSettings(cmd, manifest)
	if err != nil {
		return err
	}

	cat, err := catalog.LoadWithDefault(settings.catalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	opts := driver.Options{
		MaxDiagnostics: settings.maxDiagnostics,
		Jobs:           settings.jobs,
		Catalog:        cat,
	}
	if settings.timings {
		opts.Timer = observ.NewTimer()
	}
	if settings.diskCache {
		cache, cacheErr := driver.OpenDiskCache(settings.cacheDir)
		if cacheErr != nil {
			return fmt.Errorf("failed to open disk cache: %w", cacheErr)
		}
		opts.Cache = cache
	}

	var (
		fileSet *source.FileSet
		results []driver.UnitResult
	)
	if st.IsDir() {
		fileSet, results, err = checkDir(cmd, target, settings, opts)
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

	if err := renderResults(cmd, cmd.OutOrStdout(), fileSet, results, settings); err != nil {
		return err
	}
	if settings.timings {
		printTimings(cmd.ErrOrStderr(), opts.Timer)
	}

	for _, r := range results {
		if r.HasErrors() || (settings.warningsAsErrors && r.Bag.HasWarnings()) {
			return exitCodeError{code: 1}
		}
	}
	return nil
}

func checkDir(cmd *cobra.Command, dir string, settings checkSettings, opts driver.Options) (*source.FileSet, []driver.UnitResult, error) {
	// прогресс не смешиваем с машиночитаемым выводом
	if settings.format != "pretty" || !shouldUseTUI(settings.ui) {
		return driver.CheckDir(cmd.Context(), dir, opts)
	}
	files, err := driver.ListFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return driver.CheckDir(cmd.Context(), dir, opts)
	}
	return runCheckDirWithUI(cmd.Context(), "cohere check "+dir, dir, files, opts)
}

func renderResults(cmd *cobra.Command, out io.Writer, fileSet *source.FileSet, results []driver.UnitResult, s checkSettings) error {
	pathMode := diagfmt.PathModeAuto
	if s.fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	showFixes := s.suggest || s.preview

	switch s.format {
	case "pretty":
		color, err := useColor(cmd, out)
		if err != nil {
			return err
		}
		opts := diagfmt.PrettyOpts{
			Color:       color,
			Context:     2,
			PathMode:    pathMode,
			ShowNotes:   s.withNotes,
			ShowFixes:   showFixes,
			ShowPreview: s.preview,
		}
		printed := 0
		for _, r := range results {
			if r.Bag.Len() == 0 {
				continue
			}
			if len(results) > 1 {
				if printed > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "== %s ==\n", displayPath(fileSet, r, s.fullPath))
			}
			diagfmt.Pretty(out, r.Bag, fileSet, opts)
			printed++
		}
		return nil

	case "short":
		return diagfmt.Short(out, mergeBags(results), fileSet, s.withNotes)

	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     s.withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  s.preview,
		}
		if len(results) == 1 {
			if err := diagfmt.JSON(out, results[0].Bag, fileSet, jsonOpts); err != nil {
				return fmt.Errorf("failed to format diagnostics: %w", err)
			}
			return nil
		}
		output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		for _, r := range results {
			data, err := diagfmt.BuildDiagnosticsOutput(r.Bag, fileSet, jsonOpts)
			if err != nil {
				return fmt.Errorf("failed to build diagnostics output: %w", err)
			}
			output[displayPath(fileSet, r, s.fullPath)] = data
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
		return nil

	case "sarif":
		meta := diagfmt.SarifRunMeta{
			ToolName:       "cohere",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args,
		}
		if err := diagfmt.Sarif(out, mergeBags(results), fileSet, meta); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", s.format)
}

// mergeBags собирает диагностики всех единиц в один отсортированный Bag.
func mergeBags(results []driver.UnitResult) *diag.Bag {
	merged := diag.NewBag(1)
	for _, r := range results {
		merged.Merge(r.Bag)
	}
	merged.Sort()
	return merged
}

func displayPath(fileSet *source.FileSet, r driver.UnitResult, fullPath bool) string {
	if fileSet == nil || int(r.FileID) >= fileSet.Len() {
		return r.Path
	}
	if fullPath {
		return fileSet.DisplayPath(r.FileID, source.PathAbsolute)
	}
	return fileSet.DisplayPath(r.FileID, source.PathAuto)
}
