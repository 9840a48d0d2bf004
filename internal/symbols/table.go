package symbols

import (
	"cohere/internal/ast"
	"cohere/internal/source"
)

// TraitDef — разрешённое определение trait-а, которое потребляет проверка когерентности.
type TraitDef struct {
	ID       TraitID
	Name     string // отображаемое имя: последний сегмент пути
	Path     string // `crate::a::Send` для локальных, `core::marker::Send` для внешних
	Unsafety ast.Unsafety
	Span     source.Span // span имени; пустой у внешних
	Item     ast.ItemID  // NoItemID у внешних
	Extern   bool
}

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table aggregates symbol-related arenas and shared resources.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Strings *source.Interner
	Root    ScopeID

	traits      []TraitDef
	externIndex map[string]TraitID
	implScope   map[ast.ItemID]ScopeID
	implTrait   map[ast.ItemID]TraitID
}

// NewTable builds a fresh table with optional capacity hints.
// If strings is nil, a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner) *Table {
	if h.Scopes == 0 {
		h.Scopes = 1 << 4
	}
	if h.Symbols == 0 {
		h.Symbols = 1 << 6
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Table{
		Scopes:      NewScopes(h.Scopes),
		Symbols:     NewSymbols(h.Symbols),
		Strings:     strings,
		externIndex: make(map[string]TraitID),
		implScope:   make(map[ast.ItemID]ScopeID),
		implTrait:   make(map[ast.ItemID]TraitID),
	}
}

func (t *Table) newTrait(def TraitDef) TraitID {
	t.traits = append(t.traits, def)
	id := TraitID(len(t.traits)) // #nosec G115 -- bounded by item count
	t.traits[id-1].ID = id
	return id
}

// Trait returns the definition for id, or nil.
func (t *Table) Trait(id TraitID) *TraitDef {
	if !id.IsValid() || int(id) > len(t.traits) {
		return nil
	}
	return &t.traits[id-1]
}

// Traits returns every known trait definition. READONLY.
func (t *Table) Traits() []TraitDef { return t.traits }

// ImplTraitRef returns the trait an impl (or default impl) implements.
// false means the impl is inherent or its trait path did not resolve.
func (t *Table) ImplTraitRef(item ast.ItemID) (TraitID, bool) {
	id, ok := t.implTrait[item]
	return id, ok
}

// ImplScope returns the scope an impl was declared in.
func (t *Table) ImplScope(item ast.ItemID) ScopeID {
	return t.implScope[item]
}
