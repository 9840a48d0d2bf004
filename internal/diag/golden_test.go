package diag

import (
	"testing"

	"cohere/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSetWithBase(".")
	id := fs.AddVirtual("unit.decl", []byte("unsafe trait Send;\nimpl Send for T {}\n"))

	diags := []*Diagnostic{
		NewError(CohSafeImplOfUnsafeTrait, source.Span{File: id, Start: 19, End: 37},
			"the trait `Send` requires an `unsafe impl` declaration").
			WithNote(source.Span{File: id, Start: 0, End: 18}, "trait `Send` declared here"),
	}

	got := FormatShortDiagnostics(diags, fs, false)
	want := "error COH0200 unit.decl:2:1 the trait `Send` requires an `unsafe impl` declaration"
	if got != want {
		t.Fatalf("short output mismatch:\n got: %s\nwant: %s", got, want)
	}

	withNotes := FormatShortDiagnostics(diags, fs, true)
	wantNotes := "note COH0200 unit.decl:1:1 trait `Send` declared here\n" + want
	if withNotes != wantNotes {
		t.Fatalf("short output with notes mismatch:\n got: %s\nwant: %s", withNotes, wantNotes)
	}
}

func TestFormatShortDiagnosticsSkipsUnknownFiles(t *testing.T) {
	fs := source.NewFileSet()
	diags := []*Diagnostic{NewError(IOLoadFileError, source.Span{File: 7}, "missing")}
	if got := FormatShortDiagnostics(diags, fs, false); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
