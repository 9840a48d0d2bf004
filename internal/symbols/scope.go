package symbols

import (
	"cohere/internal/ast"
	"cohere/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeCrate              // корень единицы компиляции
	ScopeModule             // `mod name { ... }`
	ScopeFunction           // тело функции
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeCrate:
		return "crate"
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	default:
		return "invalid"
	}
}

type nameKey struct {
	name source.StringID
	ns   Namespace
}

// Scope models a lexical scope with a parent-child hierarchy.
type Scope struct {
	Kind   ScopeKind
	Parent ScopeID
	Item   ast.ItemID // владелец; NoItemID у корня
	// Path — путь модуля от корня, например "crate::a::b".
	Path     string
	names    map[nameKey]SymbolID
	Symbols  []SymbolID
	Children []ScopeID
}

type Scopes struct {
	Arena *ast.Arena[Scope]
}

func NewScopes(capHint uint) *Scopes {
	return &Scopes{Arena: ast.NewArena[Scope](capHint)}
}

func (s *Scopes) New(kind ScopeKind, parent ScopeID, item ast.ItemID, path string) ScopeID {
	id := ScopeID(s.Arena.Allocate(Scope{
		Kind:   kind,
		Parent: parent,
		Item:   item,
		Path:   path,
		names:  make(map[nameKey]SymbolID),
	}))
	if p := s.Get(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

func (s *Scopes) Get(id ScopeID) *Scope {
	return s.Arena.Get(uint32(id))
}

// Lookup ищет имя только в этой области.
func (sc *Scope) Lookup(name source.StringID, ns Namespace) (SymbolID, bool) {
	id, ok := sc.names[nameKey{name: name, ns: ns}]
	return id, ok
}
