package testkit

import (
	"strings"
	"testing"

	"cohere/internal/ast"
	"cohere/internal/diag"
	"cohere/internal/lexer"
	"cohere/internal/parser"
	"cohere/internal/source"
)

func parse(t *testing.T, src string) (*ast.Builder, ast.FileID, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("unit.decl", []byte(src)))
	bag := diag.NewBag(32)
	lx := lexer.New(file, lexer.Options{Reporter: &diag.BagReporter{Bag: bag}})
	b := ast.NewBuilder(ast.Hints{}, nil)
	res := parser.ParseFile(lx, b, parser.Options{Reporter: &diag.BagReporter{Bag: bag}, MaxErrors: 32})
	return b, res.File, file
}

func TestSpanInvariantsHoldForParsedFile(t *testing.T) {
	src := `mod a {
    unsafe trait T {}
    unsafe impl T for X {}
    impl !T for Y {}
}
unsafe impl Send for .. {}
impl Foo {}
`
	b, fileID, sf := parse(t, src)
	if err := CheckSpanInvariants(b, fileID, sf); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestSpanInvariantsDetectBrokenUnsafeSpan(t *testing.T) {
	b, fileID, sf := parse(t, "unsafe impl Foo {}\n")
	f := b.Files.Get(fileID)
	im, ok := b.Items.Impl(f.Items[0])
	if !ok {
		t.Fatal("expected impl item")
	}
	im.UnsafeSpan.Start++ // "nsafe"
	err := CheckSpanInvariants(b, fileID, sf)
	if err == nil || !strings.Contains(err.Error(), "reads") {
		t.Fatalf("expected unsafe-text violation, got %v", err)
	}
}

func TestSpanInvariantsDetectItemOutsideFile(t *testing.T) {
	b, fileID, sf := parse(t, "impl Foo {}\n")
	f := b.Files.Get(fileID)
	item := b.Items.Get(f.Items[0])
	item.Span.End = f.Span.End + 10
	if err := CheckSpanInvariants(b, fileID, sf); err == nil {
		t.Fatal("expected violation for item outside file span")
	}
	if err := CheckSpanInvariants(nil, fileID, sf); err == nil {
		t.Fatal("nil builder must fail")
	}
}
