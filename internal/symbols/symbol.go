package symbols

import (
	"cohere/internal/ast"
	"cohere/internal/source"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolModule
	SymbolTrait
	SymbolType
	SymbolFunction
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolModule:
		return "module"
	case SymbolTrait:
		return "trait"
	case SymbolType:
		return "type"
	case SymbolFunction:
		return "function"
	default:
		return "invalid"
	}
}

// Namespace: функции живут отдельно от типов, как в Rust.
type Namespace uint8

const (
	NSType Namespace = iota
	NSValue
)

func (k SymbolKind) Namespace() Namespace {
	if k == SymbolFunction {
		return NSValue
	}
	return NSType
}

type Symbol struct {
	Name  source.StringID
	Kind  SymbolKind
	Item  ast.ItemID
	Span  source.Span // span имени
	Scope ScopeID     // где объявлен
	Inner ScopeID     // собственная область модуля
	Trait TraitID     // для SymbolTrait
}

type Symbols struct {
	Arena *ast.Arena[Symbol]
}

func NewSymbols(capHint uint) *Symbols {
	return &Symbols{Arena: ast.NewArena[Symbol](capHint)}
}

func (s *Symbols) New(sym Symbol) SymbolID {
	return SymbolID(s.Arena.Allocate(sym))
}

func (s *Symbols) Get(id SymbolID) *Symbol {
	return s.Arena.Get(uint32(id))
}
