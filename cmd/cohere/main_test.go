package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// newTestRoot собирает свежее дерево команд: флаги cobra хранят состояние между запусками.
func newTestRoot() *cobra.Command {
	root := &cobra.Command{
		Use:                "cohere",
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  beforeRun,
		PersistentPostRunE: afterRun,
	}
	registerRootFlags(root)

	check := &cobra.Command{Use: "check", Args: cobra.ExactArgs(1), RunE: runCheck}
	registerCheckFlags(check)
	tokenize := &cobra.Command{Use: "tokenize", Args: cobra.ExactArgs(1), RunE: runTokenize}
	tokenize.Flags().String("format", "pretty", "")
	initC := &cobra.Command{Use: "init", Args: cobra.MaximumNArgs(1), RunE: runInit}
	clean := &cobra.Command{Use: "clean", Args: cobra.MaximumNArgs(1), RunE: runClean}
	fixC := &cobra.Command{Use: "fix", Args: cobra.ExactArgs(1), RunE: runFix}
	registerFixFlags(fixC)

	root.AddCommand(check, tokenize, initC, clean, fixC)
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newTestRoot()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr exitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return -1
}

func TestCheckCleanFileExitsZero(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"ok.decl": "unsafe trait Zeroable {}\nstruct Buf;\nunsafe impl Zeroable for Buf {}\nimpl Buf {}\n",
	})
	stdout, _, err := execute(t, "check", "--color=off", filepath.Join(dir, "ok.decl"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if stdout != "" {
		t.Fatalf("expected no output, got:\n%s", stdout)
	}
}

func TestCheckReportsViolationsShort(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.decl": "unsafe trait Send {}\nimpl Send for Foo {}\n",
		"b.decl": "struct Foo;\nunsafe impl Foo {}\n",
	})
	stdout, _, err := execute(t, "check", "--format=short", "--ui=off", dir)
	if code := exitCode(err); code != 1 {
		t.Fatalf("exit code = %d (err=%v), want 1", code, err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 diagnostics, got:\n%s", stdout)
	}
	if !strings.HasPrefix(lines[0], "error COH0200 ") || !strings.Contains(lines[0], "a.decl:2:1") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "error COH0197 ") || !strings.Contains(lines[1], "b.decl:2:1") {
		t.Fatalf("unexpected second line %q", lines[1])
	}
}

func TestCheckJSONForDirectoryIsKeyedByFile(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.decl":  "unsafe trait Send {}\nimpl Send for Foo {}\n",
		"ok.decl": "trait Show {}\nimpl Show for Foo {}\n",
	})
	stdout, _, err := execute(t, "check", "--format=json", dir)
	if exitCode(err) != 1 {
		t.Fatalf("expected exit 1, got %v", err)
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 files, got %d: %s", len(out), stdout)
	}
	if !strings.Contains(stdout, "COH0200") {
		t.Fatalf("COH0200 missing:\n%s", stdout)
	}
}

func TestCheckSarifSingleRun(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.decl": "trait Show {}\nunsafe impl Show for Foo {}\n",
		"b.decl": "trait Marker {}\nunsafe impl !Marker for Foo {}\n",
	})
	stdout, _, err := execute(t, "check", "--format=sarif", dir)
	if exitCode(err) != 1 {
		t.Fatalf("expected exit 1, got %v", err)
	}
	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Results []struct {
				RuleID string `json:"ruleId"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal([]byte(stdout), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("version=%q runs=%d", log.Version, len(log.Runs))
	}
	rules := map[string]bool{}
	for _, r := range log.Runs[0].Results {
		rules[r.RuleID] = true
	}
	if !rules["COH0199"] || !rules["COH0198"] {
		t.Fatalf("COH0198/COH0199 missing from %v", rules)
	}
}

func TestCheckPrettyWithSuggest(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"unit.decl": "unsafe trait Send {}\nimpl Send for Foo {}\n",
	})
	stdout, _, err := execute(t, "check", "--color=off", "--suggest", "--with-notes", filepath.Join(dir, "unit.decl"))
	if exitCode(err) != 1 {
		t.Fatalf("expected exit 1, got %v", err)
	}
	for _, want := range []string{"unit.decl:2:1: error COH0200: the trait `Send`", "note:", "fix:"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("output lacks %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "ERROR") {
		t.Fatalf("pretty header must use the lower-case label:\n%s", stdout)
	}
}

func TestCheckPreviewShowsWholeFix(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"unit.decl": "struct Foo;\nunsafe \timpl Foo {}\n",
	})
	stdout, _, err := execute(t, "check", "--color=off", "--preview", filepath.Join(dir, "unit.decl"))
	if exitCode(err) != 1 {
		t.Fatalf("expected exit 1, got %v", err)
	}
	for _, want := range []string{"error COH0197", "- unsafe \timpl Foo {}", "+ impl Foo {}"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("output lacks %q:\n%s", want, stdout)
		}
	}
}

func TestCheckManifestSettingsAndFlagOverride(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"cohere.toml": "[package]\nname = \"demo\"\n\n[check]\nformat = \"short\"\ncatalog = \"traits.yaml\"\n",
		"traits.yaml": "crates:\n  - name: mem\n    traits:\n      - path: Zeroize\n        unsafe: true\n",
		"src/a.decl":  "impl mem::Zeroize for Foo {}\n",
	})
	stdout, _, err := execute(t, "check", filepath.Join(dir, "src"))
	if exitCode(err) != 1 {
		t.Fatalf("expected exit 1, got %v (stdout=%q)", err, stdout)
	}
	if !strings.HasPrefix(stdout, "error COH0200 ") {
		t.Fatalf("manifest format/catalog not applied:\n%s", stdout)
	}

	stdout, _, err = execute(t, "check", "--format=json", filepath.Join(dir, "src", "a.decl"))
	if exitCode(err) != 1 {
		t.Fatalf("expected exit 1, got %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(stdout), "{") {
		t.Fatalf("--format must override the manifest:\n%s", stdout)
	}
}

func TestCheckRejectsUnknownFormat(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.decl": "trait A {}\n"})
	_, _, err := execute(t, "check", "--format=xml", dir)
	if err == nil || exitCode(err) != -1 || !strings.Contains(err.Error(), "unknown format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestCheckDiskCacheAndClean(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"cohere.toml": "[package]\nname = \"demo\"\n",
		"a.decl":      "struct Foo;\nunsafe impl Foo {}\n",
	})
	first, _, err := execute(t, "check", "--format=short", "--disk-cache", dir)
	if exitCode(err) != 1 {
		t.Fatalf("first run: %v", err)
	}
	second, _, err := execute(t, "check", "--format=short", "--disk-cache", dir)
	if exitCode(err) != 1 {
		t.Fatalf("second run: %v", err)
	}
	if first != second {
		t.Fatalf("cached run differs:\n%s\nvs\n%s", first, second)
	}
	entries, err := os.ReadDir(filepath.Join(dir, ".cohere", "cache"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("cache dir empty: %v", err)
	}

	stdout, _, err := execute(t, "clean", dir)
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if !strings.HasPrefix(stdout, "removed ") {
		t.Fatalf("clean output %q", stdout)
	}
	entries, err = os.ReadDir(filepath.Join(dir, ".cohere", "cache"))
	if err != nil || len(entries) != 0 {
		t.Fatalf("cache not emptied: %d entries, err=%v", len(entries), err)
	}
}

func TestTokenizeJSON(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.decl": "unsafe impl Send for Foo {}\n"})
	stdout, _, err := execute(t, "tokenize", "--format=json", filepath.Join(dir, "a.decl"))
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	for _, want := range []string{"unsafe", "impl", "Send", `"keyword": true`, `"line": 1`} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("tokens lack %q:\n%s", want, stdout)
		}
	}
}

func TestInitWritesManifestOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	stdout, _, err := execute(t, "init", dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(stdout, "cohere.toml") || !strings.Contains(stdout, "lib.decl") {
		t.Fatalf("init output:\n%s", stdout)
	}
	data, err := os.ReadFile(filepath.Join(dir, "cohere.toml"))
	if err != nil || !strings.Contains(string(data), `name = "demo"`) {
		t.Fatalf("manifest: %q, %v", data, err)
	}

	// пример должен проходить проверку
	if _, _, err := execute(t, "check", "--color=off", dir); err != nil {
		t.Fatalf("sample does not check cleanly: %v", err)
	}
	if _, _, err := execute(t, "init", dir); err == nil {
		t.Fatal("second init must fail")
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{" on ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if shouldUseTUI(uiModeOff) || !shouldUseTUI(uiModeOn) {
		t.Fatal("explicit modes must win")
	}
}

func TestTraceToFile(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.decl": "trait A {}\nimpl A for Foo {}\n"})
	tracePath := filepath.Join(t.TempDir(), "trace.ndjson")
	if _, _, err := execute(t, "check", "--trace", tracePath, "--trace-level=detail", dir); err != nil {
		t.Fatalf("check: %v", err)
	}
	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	passes := map[string]bool{}
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var ev struct {
			Kind  string `json:"kind"`
			Scope string `json:"scope"`
			Unit  string `json:"unit"`
			Pass  string `json:"pass"`
		}
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", line, err)
		}
		if ev.Scope == "pass" && ev.Kind == "end" {
			if filepath.Base(ev.Unit) != "a.decl" {
				t.Fatalf("pass event without unit: %s", line)
			}
			passes[ev.Pass] = true
		}
	}
	for _, want := range []string{"parse", "resolve", "coherence"} {
		if !passes[want] {
			t.Fatalf("trace lacks %s pass:\n%s", want, data)
		}
	}
}

func TestFixAllRewritesFiles(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.decl": "unsafe trait Send {}\nimpl Send for Foo {}\n",
		"b.decl": "struct Foo;\nunsafe impl Foo {}\n",
	})
	stdout, _, err := execute(t, "fix", "--all", dir)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if strings.Count(stdout, "applied ") != 2 {
		t.Fatalf("fix output:\n%s", stdout)
	}
	a, _ := os.ReadFile(filepath.Join(dir, "a.decl"))
	if string(a) != "unsafe trait Send {}\nunsafe impl Send for Foo {}\n" {
		t.Fatalf("a.decl = %q", a)
	}
	b, _ := os.ReadFile(filepath.Join(dir, "b.decl"))
	if string(b) != "struct Foo;\nimpl Foo {}\n" {
		t.Fatalf("b.decl = %q", b)
	}

	if _, _, err := execute(t, "check", "--color=off", dir); err != nil {
		t.Fatalf("fixed tree must check cleanly: %v", err)
	}
	stdout, _, err = execute(t, "fix", dir)
	if err != nil || !strings.Contains(stdout, "no applicable fixes") {
		t.Fatalf("second fix: %v\n%s", err, stdout)
	}
}

func TestFixListAndDryRun(t *testing.T) {
	src := "trait Show {}\nunsafe impl Show for Foo {}\n"
	dir := writeTree(t, map[string]string{"a.decl": src})
	path := filepath.Join(dir, "a.decl")

	stdout, _, err := execute(t, "fix", "--list", path)
	if err != nil {
		t.Fatalf("fix --list: %v", err)
	}
	if !strings.HasPrefix(stdout, "COH0199-") || !strings.Contains(stdout, "remove `unsafe`") {
		t.Fatalf("list output:\n%s", stdout)
	}
	id := strings.Fields(stdout)[0]

	stdout, _, err = execute(t, "fix", "--dry-run", "--id", id, path)
	if err != nil {
		t.Fatalf("fix --dry-run: %v", err)
	}
	if !strings.Contains(stdout, "trait Show {}\n impl Show for Foo {}") {
		t.Fatalf("dry-run output:\n%s", stdout)
	}
	got, _ := os.ReadFile(path)
	if string(got) != src {
		t.Fatal("dry run must not modify the file")
	}
}
