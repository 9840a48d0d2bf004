package parser

import (
	"fmt"
	"strings"
	"testing"

	"cohere/internal/ast"
	"cohere/internal/diag"
	"cohere/internal/lexer"
	"cohere/internal/source"
)

func parseSource(t *testing.T, input string) (*ast.Builder, ast.FileID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.decl", []byte(input)))
	bag := diag.NewBag(100)
	reporter := &diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	builder := ast.NewBuilder(ast.Hints{}, nil)
	res := ParseFile(lx, builder, Options{Reporter: reporter, MaxErrors: 100})
	return builder, res.File, bag
}

func parseClean(t *testing.T, input string) (*ast.Builder, *ast.File) {
	t.Helper()
	b, fileID, bag := parseSource(t, input)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics for %q: %s", input, diagnosticsSummary(bag))
	}
	return b, b.Files.Get(fileID)
}

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func singleItem(t *testing.T, b *ast.Builder, file *ast.File) ast.ItemID {
	t.Helper()
	if len(file.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(file.Items))
	}
	return file.Items[0]
}
