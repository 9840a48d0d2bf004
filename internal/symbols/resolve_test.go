package symbols

import (
	"testing"

	"cohere/internal/ast"
	"cohere/internal/catalog"
	"cohere/internal/diag"
	"cohere/internal/lexer"
	"cohere/internal/parser"
	"cohere/internal/source"
)

type resolved struct {
	builder *ast.Builder
	file    *ast.File
	table   *Table
	bag     *diag.Bag
}

func resolveSource(t *testing.T, input string) resolved {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.decl", []byte(input)))
	bag := diag.NewBag(100)
	reporter := &diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	builder := ast.NewBuilder(ast.Hints{}, nil)
	res := parser.ParseFile(lx, builder, parser.Options{Reporter: reporter})
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}
	table := ResolveFile(builder, res.File, ResolveOptions{Reporter: reporter, Catalog: catalog.Default()})
	return resolved{builder: builder, file: builder.Files.Get(res.File), table: table, bag: bag}
}

// implTraits возвращает путь разрешённого trait-а для каждого impl-а в pre-order.
func (r resolved) implTraits() []string {
	var out []string
	ast.NewWalker(r.builder.Items).WalkFile(r.file, func(id ast.ItemID, item *ast.Item) bool {
		if item.Kind != ast.ItemImpl && item.Kind != ast.ItemDefaultImpl {
			return true
		}
		tid, ok := r.table.ImplTraitRef(id)
		if !ok {
			out = append(out, "")
			return true
		}
		out = append(out, r.table.Trait(tid).Path)
		return true
	})
	return out
}

func assertTraits(t *testing.T, r resolved, want ...string) {
	t.Helper()
	got := r.implTraits()
	if len(got) != len(want) {
		t.Fatalf("impl traits = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("impl %d trait = %q, want %q (all %q)", i, got[i], want[i], got)
		}
	}
}

func TestResolveLocalAndOutward(t *testing.T) {
	r := resolveSource(t, `
unsafe trait Marker {}
mod a {
    trait Local {}
    impl Local for X {}
    impl Marker for X {}
    mod b {
        impl Local for Y {}
    }
}
impl Foo {}
`)
	if r.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", r.bag.Items())
	}
	assertTraits(t, r, "crate::a::Local", "crate::Marker", "crate::a::Local", "")
	def := r.table.Trait(mustRef(t, r, 1))
	if def.Unsafety != ast.Unsafe || def.Extern || def.Name != "Marker" {
		t.Fatalf("Marker def = %+v", def)
	}
}

func mustRef(t *testing.T, r resolved, n int) TraitID {
	t.Helper()
	var ids []ast.ItemID
	ast.NewWalker(r.builder.Items).WalkFile(r.file, func(id ast.ItemID, item *ast.Item) bool {
		if item.Kind == ast.ItemImpl {
			ids = append(ids, id)
		}
		return true
	})
	tid, ok := r.table.ImplTraitRef(ids[n])
	if !ok {
		t.Fatalf("impl %d unresolved", n)
	}
	return tid
}

func TestResolveAnchoredPaths(t *testing.T) {
	r := resolveSource(t, `
trait Root {}
mod a {
    trait A {}
    mod b {
        impl crate::Root for X {}
        impl super::A for X {}
        impl self::c::C for X {}
        impl super::super::Root for X {}
        mod c { trait C {} }
    }
}
`)
	if r.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", r.bag.Items())
	}
	assertTraits(t, r, "crate::Root", "crate::a::A", "crate::a::b::c::C", "crate::Root")
}

func TestResolveCatalogTraits(t *testing.T) {
	r := resolveSource(t, `
unsafe impl Send for A {}
impl core::fmt::Display for A {}
unsafe impl Sync for A {}
unsafe impl Send for B {}
impl Default for .. {}
`)
	if r.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", r.bag.Items())
	}
	assertTraits(t, r, "core::marker::Send", "core::fmt::Display", "core::marker::Sync", "core::marker::Send", "core::default::Default")
	if mustRef(t, r, 0) != mustRef(t, r, 3) {
		t.Fatal("the same extern trait must get one TraitID")
	}
	send := r.table.Trait(mustRef(t, r, 0))
	if !send.Extern || send.Unsafety != ast.Unsafe || send.Name != "Send" {
		t.Fatalf("Send def = %+v", send)
	}
}

func TestLocalTraitShadowsPrelude(t *testing.T) {
	r := resolveSource(t, `
trait Send {}
impl Send for A {}
`)
	assertTraits(t, r, "crate::Send")
	if r.table.Trait(mustRef(t, r, 0)).Unsafety != ast.Safe {
		t.Fatal("local Send must win over the catalog one")
	}
}

func TestTraitsInsideFunctionBodies(t *testing.T) {
	r := resolveSource(t, `
mod m {
    fn f() {
        unsafe trait Inner {}
        unsafe impl Inner for X {}
        impl self::Outer for X {}
    }
    trait Outer {}
}
`)
	if r.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", r.bag.Items())
	}
	assertTraits(t, r, "crate::m::Inner", "crate::m::Outer")
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diag.Code
	}{
		{"unknown bare", "impl Nope for A {}", diag.ResUnresolvedTrait},
		{"unknown crate", "impl nope::T for A {}", diag.ResUnresolvedTrait},
		{"unknown in catalog crate", "impl core::marker::Nope for A {}", diag.ResUnresolvedTrait},
		{"unknown in module", "mod m {} impl m::T for A {}", diag.ResUnresolvedTrait},
		{"struct as trait", "struct S; impl S for A {}", diag.ResNotATrait},
		{"trait as module", "trait T {} impl T::U for A {}", diag.ResNotATrait},
		{"module as trait", "mod m {} impl m for A {}", diag.ResNotATrait},
		{"super at root", "impl super::T for A {}", diag.ResSuperAtRoot},
		{"duplicate trait", "trait T {} trait T {}", diag.ResDuplicateItem},
		{"duplicate mixed", "struct T; trait T {}", diag.ResDuplicateItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resolveSource(t, tt.input)
			if r.bag.CountCode(tt.code) != 1 || r.bag.Len() != 1 {
				t.Fatalf("want exactly one %s, got %v", tt.code.ID(), r.bag.Items())
			}
		})
	}
}

func TestFunctionAndTypeNamespacesAreSeparate(t *testing.T) {
	r := resolveSource(t, "fn T() {} trait T {} impl T for A {}")
	if r.bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", r.bag.Items())
	}
	assertTraits(t, r, "crate::T")
}

func TestDuplicateKeepsFirstDefinition(t *testing.T) {
	r := resolveSource(t, "unsafe trait T {} trait T {} unsafe impl T for A {}")
	if r.table.Trait(mustRef(t, r, 0)).Unsafety != ast.Unsafe {
		t.Fatal("first definition must win")
	}
	d := r.bag.Items()[0]
	if len(d.Notes) != 1 {
		t.Fatalf("duplicate diagnostic must point at the previous definition, notes=%v", d.Notes)
	}
}
