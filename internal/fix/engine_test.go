package fix

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cohere/internal/diag"
	"cohere/internal/source"
)

func loadTemp(t *testing.T, content string) (*source.FileSet, source.FileID, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "unit.decl")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := source.NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return fs, id, path
}

func insertUnsafe(file source.FileID, at uint32) *diag.Diagnostic {
	sp := source.Span{File: file, Start: at, End: at}
	return diag.NewError(diag.CohSafeImplOfUnsafeTrait, sp, "needs unsafe").
		WithFix("add `unsafe`", diag.FixEdit{Span: sp, NewText: "unsafe "})
}

func removeUnsafe(file source.FileID, at uint32) *diag.Diagnostic {
	sp := source.Span{File: file, Start: at, End: at + 7}
	return diag.NewError(diag.CohUnsafeInherentImpl, sp, "inherent unsafe").
		WithFix("remove `unsafe`", diag.FixEdit{Span: sp, OldText: "unsafe "})
}

func TestApplyAllWritesFile(t *testing.T) {
	src := "impl Send for A {}\nunsafe impl B {}\n"
	fs, id, path := loadTemp(t, src)

	res, err := Apply(fs, []*diag.Diagnostic{removeUnsafe(id, 19), insertUnsafe(id, 0)}, ApplyOptions{Mode: ApplyModeAll})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 2 || len(res.Skipped) != 0 {
		t.Fatalf("applied=%d skipped=%v", len(res.Applied), res.Skipped)
	}
	// порядок по позиции в файле
	if res.Applied[0].Code != diag.CohSafeImplOfUnsafeTrait {
		t.Fatalf("first applied = %v", res.Applied[0].Code)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if want := "unsafe impl Send for A {}\nimpl B {}\n"; string(got) != want {
		t.Fatalf("content = %q, want %q", got, want)
	}
	if len(res.FileChanges) != 1 || res.FileChanges[0].Path != "unit.decl" || res.FileChanges[0].EditCount != 2 {
		t.Fatalf("changes = %+v", res.FileChanges)
	}
}

func TestApplyOnceAndDryRun(t *testing.T) {
	src := "unsafe impl A {}\nunsafe impl B {}\n"
	fs, id, path := loadTemp(t, src)

	diags := []*diag.Diagnostic{removeUnsafe(id, 17), removeUnsafe(id, 0)}
	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeOnce, DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 || res.Applied[0].ID != FixID(diags[1], 0) {
		t.Fatalf("applied = %+v", res.Applied)
	}
	if string(res.FileChanges[0].Content) != "impl A {}\nunsafe impl B {}\n" {
		t.Fatalf("dry-run content = %q", res.FileChanges[0].Content)
	}
	got, _ := os.ReadFile(path)
	if string(got) != src {
		t.Fatal("dry run must not touch the file")
	}
}

func TestApplyByID(t *testing.T) {
	fs, id, _ := loadTemp(t, "unsafe impl A {}\nunsafe impl B {}\n")
	diags := []*diag.Diagnostic{removeUnsafe(id, 0), removeUnsafe(id, 17)}

	res, err := Apply(fs, diags, ApplyOptions{Mode: ApplyModeID, TargetID: FixID(diags[1], 0), DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if string(res.FileChanges[0].Content) != "unsafe impl A {}\nimpl B {}\n" {
		t.Fatalf("content = %q", res.FileChanges[0].Content)
	}

	res, err = Apply(fs, diags, ApplyOptions{Mode: ApplyModeID, TargetID: "COH0197-9-9-9"})
	if !errors.Is(err, ErrNoFixes) || len(res.Skipped) != 1 || res.Skipped[0].Reason != "fix id not found" {
		t.Fatalf("err=%v skipped=%+v", err, res.Skipped)
	}
}

func TestApplySkipsMismatchAndConflicts(t *testing.T) {
	fs, id, _ := loadTemp(t, "unsafe impl A {}\n")

	stale := diag.NewError(diag.CohUnsafeInherentImpl, source.Span{File: id, Start: 7, End: 11}, "stale").
		WithFix("remove", diag.FixEdit{Span: source.Span{File: id, Start: 7, End: 11}, OldText: "unsafe"})
	res, err := Apply(fs, []*diag.Diagnostic{stale}, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("err = %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Reason != "existing text does not match expected content" {
		t.Fatalf("skipped = %+v", res.Skipped)
	}

	twice := []*diag.Diagnostic{removeUnsafe(id, 0), removeUnsafe(id, 0)}
	res, err = Apply(fs, twice, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Applied) != 1 || len(res.Skipped) != 1 {
		t.Fatalf("applied=%d skipped=%+v", len(res.Applied), res.Skipped)
	}
}

func TestApplySkipsVirtualAndNormalizedFiles(t *testing.T) {
	fs := source.NewFileSet()
	virt := fs.AddVirtual("mem.decl", []byte("unsafe impl A {}\n"))
	res, err := Apply(fs, []*diag.Diagnostic{removeUnsafe(virt, 0)}, ApplyOptions{Mode: ApplyModeAll})
	if !errors.Is(err, ErrNoFixes) || res.Skipped[0].Reason != "target file is virtual" {
		t.Fatalf("err=%v skipped=%+v", err, res.Skipped)
	}

	crlf := fs.Add("crlf.decl", []byte("unsafe impl A {}\n"), source.FileNormalizedCRLF)
	res, err = Apply(fs, []*diag.Diagnostic{removeUnsafe(crlf, 0)}, ApplyOptions{Mode: ApplyModeAll})
	if !errors.Is(err, ErrNoFixes) || res.Skipped[0].Reason != "file was normalized on load (BOM or CRLF)" {
		t.Fatalf("err=%v skipped=%+v", err, res.Skipped)
	}
}

func TestSpansConflict(t *testing.T) {
	mk := func(s, e uint32) diag.FixEdit { return diag.FixEdit{Span: source.Span{Start: s, End: e}} }
	tests := []struct {
		a, b diag.FixEdit
		want bool
	}{
		{mk(0, 0), mk(0, 0), false},
		{mk(0, 6), mk(3, 3), true},
		{mk(0, 6), mk(6, 6), false},
		{mk(0, 6), mk(5, 9), true},
		{mk(0, 6), mk(6, 9), false},
	}
	for _, tt := range tests {
		if got := spansConflict(tt.a, tt.b); got != tt.want {
			t.Errorf("spansConflict(%v, %v) = %v", tt.a.Span, tt.b.Span, got)
		}
	}
}

func TestApplyWithoutFixes(t *testing.T) {
	fs := source.NewFileSet()
	d := diag.NewError(diag.CohUnsafeInherentImpl, source.Span{}, "no fix")
	if _, err := Apply(fs, []*diag.Diagnostic{d}, ApplyOptions{Mode: ApplyModeAll}); !errors.Is(err, ErrNoFixes) {
		t.Fatalf("err = %v", err)
	}
	if _, err := Apply(nil, nil, ApplyOptions{}); err == nil {
		t.Fatal("nil FileSet must fail")
	}
}

func TestApplyRejectsSelfOverlappingFix(t *testing.T) {
	fs, id, _ := loadTemp(t, "unsafe impl A {}\n")
	sp := source.Span{File: id, Start: 0, End: 7}
	d := diag.NewError(diag.CohUnsafeInherentImpl, sp, "overlap").
		WithFix("broken", diag.FixEdit{Span: sp, OldText: "unsafe "}, diag.FixEdit{Span: source.Span{File: id, Start: 3, End: 9}})

	res, err := Apply(fs, []*diag.Diagnostic{d}, ApplyOptions{Mode: ApplyModeAll, DryRun: true})
	if !errors.Is(err, ErrNoFixes) || len(res.Skipped) != 1 || res.Skipped[0].Reason != "fix edits overlap each other" {
		t.Fatalf("err=%v skipped=%+v", err, res.Skipped)
	}
}

func TestRender(t *testing.T) {
	at := func(s, e uint32, text string) diag.FixEdit {
		return diag.FixEdit{Span: source.Span{Start: s, End: e}, NewText: text}
	}
	tests := []struct {
		name  string
		src   string
		edits []diag.FixEdit
		want  string
	}{
		{"none", "impl A {}", nil, "impl A {}"},
		{"insert at start", "impl A {}", []diag.FixEdit{at(0, 0, "unsafe ")}, "unsafe impl A {}"},
		{"delete keyword", "unsafe impl A {}", []diag.FixEdit{at(0, 7, "")}, "impl A {}"},
		{"unordered", "impl A {}\nunsafe impl B {}", []diag.FixEdit{at(10, 17, ""), at(0, 0, "unsafe ")}, "unsafe impl A {}\nimpl B {}"},
		{"same offset keeps order", "impl A {}", []diag.FixEdit{at(0, 0, "unsafe"), at(0, 0, " ")}, "unsafe impl A {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(render([]byte(tt.src), tt.edits)); got != tt.want {
				t.Fatalf("render = %q, want %q", got, tt.want)
			}
		})
	}
}
