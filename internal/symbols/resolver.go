package symbols

import (
	"fmt"

	"cohere/internal/ast"
	"cohere/internal/catalog"
	"cohere/internal/diag"
	"cohere/internal/source"
)

// ResolveOptions configure trait resolution for one compilation unit.
type ResolveOptions struct {
	Reporter diag.Reporter
	// Catalog supplies traits defined outside the unit; nil disables extern lookups.
	Catalog *catalog.Catalog
	Hints   Hints
}

type pendingImpl struct {
	item  ast.ItemID
	scope ScopeID
	path  ast.Path
}

// Resolver builds the symbol table of one file and resolves impl trait paths.
type Resolver struct {
	builder *ast.Builder
	table   *Table
	opts    ResolveOptions
	pending []pendingImpl
}

// ResolveFile объявляет все элементы файла, затем разрешает пути trait-ов у impl-ов.
// Ошибки разрешения уходят в Reporter; нерешённые impl-ы просто не попадают в ImplTraitRef.
func ResolveFile(builder *ast.Builder, fileID ast.FileID, opts ResolveOptions) *Table {
	r := &Resolver{
		builder: builder,
		table:   NewTable(opts.Hints, builder.StringsInterner),
		opts:    opts,
	}
	r.table.Root = r.table.Scopes.New(ScopeCrate, NoScopeID, ast.NoItemID, "crate")
	if file := builder.Files.Get(fileID); file != nil {
		r.declare(file.Items, r.table.Root)
	}
	for _, p := range r.pending {
		if id, ok := r.resolveTraitPath(p.path, p.scope); ok {
			r.table.implTrait[p.item] = id
		}
	}
	return r.table
}

func (r *Resolver) name(id source.StringID) string {
	return r.table.Strings.MustLookup(id)
}

func (r *Resolver) report(code diag.Code, sp source.Span, msg string, notes ...diag.Note) {
	diag.Emit(r.opts.Reporter, diag.NewError(code, sp, msg).WithNotes(notes...))
}

// declare регистрирует именованные элементы в scope и спускается во вложенные области.
func (r *Resolver) declare(ids []ast.ItemID, scope ScopeID) {
	items := r.builder.Items
	for _, id := range ids {
		item := items.Get(id)
		if item == nil {
			continue
		}
		switch item.Kind {
		case ast.ItemMod:
			mod, _ := items.Mod(id)
			sc := r.table.Scopes.Get(scope)
			inner := r.table.Scopes.New(ScopeModule, scope, id, sc.Path+"::"+r.name(mod.Name))
			r.register(scope, Symbol{Name: mod.Name, Kind: SymbolModule, Item: id, Span: mod.NameSpan, Inner: inner})
			r.declare(mod.Items, inner)
		case ast.ItemTrait:
			trait, _ := items.Trait(id)
			name := r.name(trait.Name)
			sc := r.table.Scopes.Get(scope)
			sym := Symbol{Name: trait.Name, Kind: SymbolTrait, Item: id, Span: trait.NameSpan}
			if symID := r.register(scope, sym); symID.IsValid() {
				r.table.Symbols.Get(symID).Trait = r.table.newTrait(TraitDef{
					Name:     name,
					Path:     sc.Path + "::" + name,
					Unsafety: trait.Unsafety,
					Span:     trait.NameSpan,
					Item:     id,
				})
			}
			r.declareAssoc(trait.Items, scope)
		case ast.ItemStruct:
			st, _ := items.Struct(id)
			r.register(scope, Symbol{Name: st.Name, Kind: SymbolType, Item: id, Span: st.NameSpan})
		case ast.ItemFn:
			fn, _ := items.Fn(id)
			r.register(scope, Symbol{Name: fn.Name, Kind: SymbolFunction, Item: id, Span: fn.NameSpan})
			r.declareFnBody(id, fn, scope)
		case ast.ItemImpl:
			im, _ := items.Impl(id)
			r.table.implScope[id] = scope
			if im.Trait.IsValid() {
				r.pending = append(r.pending, pendingImpl{item: id, scope: scope, path: im.Trait})
			}
			r.declareAssoc(im.Items, scope)
		case ast.ItemDefaultImpl:
			d, _ := items.DefaultImpl(id)
			r.table.implScope[id] = scope
			r.pending = append(r.pending, pendingImpl{item: id, scope: scope, path: d.Trait})
			r.declareAssoc(d.Items, scope)
		case ast.ItemUse:
			// импорты не участвуют в разрешении trait-ов
		}
	}
}

// declareAssoc обходит тела trait-ов и impl-ов: их члены не видны по путям,
// но в телах методов могут быть объявлены элементы.
func (r *Resolver) declareAssoc(ids []ast.ItemID, scope ScopeID) {
	items := r.builder.Items
	for _, id := range ids {
		item := items.Get(id)
		if item == nil {
			continue
		}
		switch item.Kind {
		case ast.ItemFn:
			fn, _ := items.Fn(id)
			r.declareFnBody(id, fn, scope)
		case ast.ItemImpl, ast.ItemDefaultImpl, ast.ItemMod, ast.ItemTrait:
			// недопустимо в Rust, но синтаксически разрешено: объявляем как обычно
			r.declare([]ast.ItemID{id}, scope)
		case ast.ItemStruct, ast.ItemUse:
		}
	}
}

func (r *Resolver) declareFnBody(id ast.ItemID, fn *ast.FnItem, scope ScopeID) {
	if len(fn.Items) == 0 {
		return
	}
	sc := r.table.Scopes.Get(scope)
	body := r.table.Scopes.New(ScopeFunction, scope, id, sc.Path)
	r.declare(fn.Items, body)
}

// register добавляет символ; повтор имени в том же пространстве имён даёт RES3003.
func (r *Resolver) register(scope ScopeID, sym Symbol) SymbolID {
	sc := r.table.Scopes.Get(scope)
	key := nameKey{name: sym.Name, ns: sym.Kind.Namespace()}
	if prev, dup := sc.names[key]; dup {
		prevSym := r.table.Symbols.Get(prev)
		name := r.name(sym.Name)
		r.report(diag.ResDuplicateItem, sym.Span,
			fmt.Sprintf("the name `%s` is defined multiple times", name),
			diag.Note{Span: prevSym.Span, Msg: fmt.Sprintf("previous definition of the %s `%s` here", prevSym.Kind, name)})
		return NoSymbolID
	}
	sym.Scope = scope
	id := r.table.Symbols.New(sym)
	sc.names[key] = id
	sc.Symbols = append(sc.Symbols, id)
	return id
}
