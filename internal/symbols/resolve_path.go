package symbols

import (
	"fmt"
	"strings"

	"cohere/internal/ast"
	"cohere/internal/catalog"
	"cohere/internal/diag"
)

// moduleOf поднимается из тел функций до ближайшего модуля.
func (r *Resolver) moduleOf(scope ScopeID) ScopeID {
	for {
		sc := r.table.Scopes.Get(scope)
		if sc == nil || sc.Kind != ScopeFunction {
			return scope
		}
		scope = sc.Parent
	}
}

func (r *Resolver) lookupOutward(scope ScopeID, seg ast.PathSegment) (SymbolID, bool) {
	for s := scope; s.IsValid(); s = r.table.Scopes.Get(s).Parent {
		if id, ok := r.table.Scopes.Get(s).Lookup(seg.Name, NSType); ok {
			return id, true
		}
	}
	return NoSymbolID, false
}

// resolveTraitPath разрешает путь trait-а относительно scope:
// `crate::`, `self::`, `super::` якорят путь; иначе первый сегмент ищется
// от текущей области наружу до корня, затем в каталоге внешних trait-ов.
func (r *Resolver) resolveTraitPath(path ast.Path, scope ScopeID) (TraitID, bool) {
	segs := path.Segments
	cur := scope
	anchored := false
	i := 0
	for ; i < len(segs) && segs[i].Kind != ast.SegIdent; i++ {
		seg := segs[i]
		switch seg.Kind {
		case ast.SegCrate:
			if i != 0 {
				r.report(diag.ResUnresolvedTrait, seg.Span, "`crate` in paths can only be used in start position")
				return NoTraitID, false
			}
			cur = r.table.Root
		case ast.SegSelf:
			if i != 0 {
				r.report(diag.ResUnresolvedTrait, seg.Span, "`self` in paths can only be used in start position")
				return NoTraitID, false
			}
			cur = r.moduleOf(cur)
		case ast.SegSuper:
			if i != 0 && segs[i-1].Kind == ast.SegCrate {
				r.report(diag.ResUnresolvedTrait, seg.Span, "`super` cannot follow `crate`")
				return NoTraitID, false
			}
			mod := r.moduleOf(cur)
			if mod == r.table.Root {
				r.report(diag.ResSuperAtRoot, seg.Span, "there are too many leading `super` keywords")
				return NoTraitID, false
			}
			cur = r.moduleOf(r.table.Scopes.Get(mod).Parent)
		case ast.SegIdent:
		}
		anchored = true
	}
	rest := segs[i:]
	if len(rest) == 0 {
		r.report(diag.ResNotATrait, path.Span, "expected trait, found module `"+path.Render(r.table.Strings)+"`")
		return NoTraitID, false
	}

	if !anchored {
		first := rest[0]
		symID, found := r.lookupOutward(cur, first)
		if !found {
			return r.resolveExtern(path, rest)
		}
		if len(rest) == 1 {
			return r.expectTrait(symID, first)
		}
		sym := r.table.Symbols.Get(symID)
		if sym.Kind != SymbolModule {
			r.report(diag.ResNotATrait, first.Span,
				fmt.Sprintf("expected module, found %s `%s`", sym.Kind, r.name(first.Name)))
			return NoTraitID, false
		}
		cur = sym.Inner
		rest = rest[1:]
	}

	for _, seg := range rest[:len(rest)-1] {
		sc := r.table.Scopes.Get(cur)
		symID, ok := sc.Lookup(seg.Name, NSType)
		if !ok {
			r.report(diag.ResUnresolvedTrait, seg.Span,
				fmt.Sprintf("could not find `%s` in `%s`", r.name(seg.Name), sc.Path))
			return NoTraitID, false
		}
		sym := r.table.Symbols.Get(symID)
		if sym.Kind != SymbolModule {
			r.report(diag.ResNotATrait, seg.Span,
				fmt.Sprintf("expected module, found %s `%s`", sym.Kind, r.name(seg.Name)))
			return NoTraitID, false
		}
		cur = sym.Inner
	}

	last := rest[len(rest)-1]
	sc := r.table.Scopes.Get(cur)
	symID, ok := sc.Lookup(last.Name, NSType)
	if !ok {
		r.report(diag.ResUnresolvedTrait, last.Span,
			fmt.Sprintf("cannot find trait `%s` in `%s`", r.name(last.Name), sc.Path))
		return NoTraitID, false
	}
	return r.expectTrait(symID, last)
}

func (r *Resolver) expectTrait(symID SymbolID, seg ast.PathSegment) (TraitID, bool) {
	sym := r.table.Symbols.Get(symID)
	if sym.Kind != SymbolTrait {
		r.report(diag.ResNotATrait, seg.Span,
			fmt.Sprintf("expected trait, found %s `%s`", sym.Kind, r.name(seg.Name)),
			diag.Note{Span: sym.Span, Msg: fmt.Sprintf("`%s` defined here", r.name(seg.Name))})
		return NoTraitID, false
	}
	return sym.Trait, sym.Trait.IsValid()
}

// resolveExtern ищет путь, не найденный локально, в каталоге:
// одиночное имя ищется в прелюдии, `crate::path::Name` по полному пути.
func (r *Resolver) resolveExtern(path ast.Path, rest []ast.PathSegment) (TraitID, bool) {
	cat := r.opts.Catalog
	first := rest[0]
	firstName := r.name(first.Name)
	if len(rest) == 1 {
		if cat != nil {
			if tr, ok := cat.Prelude(firstName); ok {
				return r.externTrait(tr), true
			}
		}
		r.report(diag.ResUnresolvedTrait, first.Span, fmt.Sprintf("cannot find trait `%s` in this scope", firstName))
		return NoTraitID, false
	}
	if cat == nil || !cat.HasCrate(firstName) {
		r.report(diag.ResUnresolvedTrait, first.Span,
			fmt.Sprintf("failed to resolve: use of undeclared crate or module `%s`", firstName))
		return NoTraitID, false
	}
	names := make([]string, 0, len(rest))
	for _, seg := range rest {
		names = append(names, r.name(seg.Name))
	}
	full := strings.Join(names, "::")
	tr, ok := cat.Lookup(full)
	if !ok {
		r.report(diag.ResUnresolvedTrait, path.Span,
			fmt.Sprintf("cannot find trait `%s` in crate `%s`", strings.Join(names[1:], "::"), firstName))
		return NoTraitID, false
	}
	return r.externTrait(tr), true
}

// externTrait возвращает один TraitID на каждый trait каталога.
func (r *Resolver) externTrait(tr catalog.Trait) TraitID {
	full := tr.FullPath()
	if id, ok := r.table.externIndex[full]; ok {
		return id
	}
	unsafety := ast.Safe
	if tr.Unsafe {
		unsafety = ast.Unsafe
	}
	id := r.table.newTrait(TraitDef{
		Name:     tr.Name(),
		Path:     full,
		Unsafety: unsafety,
		Extern:   true,
	})
	r.table.externIndex[full] = id
	return id
}
