package ast

import (
	"cohere/internal/source"
)

type ItemKind uint8

const (
	ItemMod ItemKind = iota
	ItemTrait
	ItemImpl
	ItemDefaultImpl
	ItemStruct
	ItemFn
	ItemUse
)

var itemKindNames = [...]string{
	ItemMod:         "mod",
	ItemTrait:       "trait",
	ItemImpl:        "impl",
	ItemDefaultImpl: "default impl",
	ItemStruct:      "struct",
	ItemFn:          "fn",
	ItemUse:         "use",
}

func (k ItemKind) String() string {
	if int(k) < len(itemKindNames) {
		return itemKindNames[k]
	}
	return "item(?)"
}

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Vis     Visibility
	Attrs   []Attr
	Payload PayloadID
}

// ModItem — `mod name { ... }` или `mod name;` (внешний файл не подгружается).
type ModItem struct {
	Name     source.StringID
	NameSpan source.Span
	Inline   bool
	Items    []ItemID
}

type TraitItem struct {
	Name     source.StringID
	NameSpan source.Span
	Unsafety Unsafety
	// Header покрывает `unsafe trait Name<...>` без тела.
	Header source.Span
	Items  []ItemID
}

// ImplItem — явный impl: inherent (Trait невалиден) или trait impl любой полярности.
type ImplItem struct {
	Unsafety Unsafety
	Polarity Polarity
	Trait    Path
	SelfType string
	SelfSpan source.Span
	// UnsafeSpan указывает на ключевое слово `unsafe`, если оно есть.
	UnsafeSpan source.Span
	// UnsafeTrail — пробелы и табы между `unsafe` и `impl`.
	UnsafeTrail string
	// Header покрывает всё от `unsafe`/`impl` до `{`.
	Header source.Span
	Items  []ItemID
}

// DefaultImplItem — `impl Trait for .. {}`.
type DefaultImplItem struct {
	Unsafety    Unsafety
	Trait       Path
	UnsafeSpan  source.Span
	UnsafeTrail string
	Header      source.Span
	Items       []ItemID
}

// StructItem покрывает struct, enum и type: для разрешения имён они одинаковы.
type StructItem struct {
	Name     source.StringID
	NameSpan source.Span
	Keyword  string
}

type FnItem struct {
	Name     source.StringID
	NameSpan source.Span
	Unsafety Unsafety
	Items    []ItemID
}

type UseItem struct {
	Path Path
}

type Items struct {
	Arena        *Arena[Item]
	Mods         *Arena[ModItem]
	Traits       *Arena[TraitItem]
	Impls        *Arena[ImplItem]
	DefaultImpls *Arena[DefaultImplItem]
	Structs      *Arena[StructItem]
	Fns          *Arena[FnItem]
	Uses         *Arena[UseItem]
}

// NewItems creates and returns an *Items with per-kind arenas initialized to capHint.
// If capHint is 0, NewItems uses a default initial capacity of 1<<7.
func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Items{
		Arena:        NewArena[Item](capHint),
		Mods:         NewArena[ModItem](capHint),
		Traits:       NewArena[TraitItem](capHint),
		Impls:        NewArena[ImplItem](capHint),
		DefaultImpls: NewArena[DefaultImplItem](capHint),
		Structs:      NewArena[StructItem](capHint),
		Fns:          NewArena[FnItem](capHint),
		Uses:         NewArena[UseItem](capHint),
	}
}

func (i *Items) New(kind ItemKind, span source.Span, payloadID PayloadID) ItemID {
	return ItemID(i.Arena.Allocate(Item{
		Kind:    kind,
		Span:    span,
		Payload: payloadID,
	}))
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

func (i *Items) Mod(id ItemID) (*ModItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemMod || !item.Payload.IsValid() {
		return nil, false
	}
	return i.Mods.Get(uint32(item.Payload)), true
}

func (i *Items) Trait(id ItemID) (*TraitItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemTrait || !item.Payload.IsValid() {
		return nil, false
	}
	return i.Traits.Get(uint32(item.Payload)), true
}

func (i *Items) Impl(id ItemID) (*ImplItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemImpl || !item.Payload.IsValid() {
		return nil, false
	}
	return i.Impls.Get(uint32(item.Payload)), true
}

func (i *Items) DefaultImpl(id ItemID) (*DefaultImplItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemDefaultImpl || !item.Payload.IsValid() {
		return nil, false
	}
	return i.DefaultImpls.Get(uint32(item.Payload)), true
}

func (i *Items) Struct(id ItemID) (*StructItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemStruct || !item.Payload.IsValid() {
		return nil, false
	}
	return i.Structs.Get(uint32(item.Payload)), true
}

func (i *Items) Fn(id ItemID) (*FnItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemFn || !item.Payload.IsValid() {
		return nil, false
	}
	return i.Fns.Get(uint32(item.Payload)), true
}

func (i *Items) Use(id ItemID) (*UseItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemUse || !item.Payload.IsValid() {
		return nil, false
	}
	return i.Uses.Get(uint32(item.Payload)), true
}

// Children возвращает вложенные элементы; у struct и use их нет.
func (i *Items) Children(id ItemID) []ItemID {
	item := i.Get(id)
	if item == nil {
		return nil
	}
	switch item.Kind {
	case ItemMod:
		if m, ok := i.Mod(id); ok {
			return m.Items
		}
	case ItemTrait:
		if t, ok := i.Trait(id); ok {
			return t.Items
		}
	case ItemImpl:
		if im, ok := i.Impl(id); ok {
			return im.Items
		}
	case ItemDefaultImpl:
		if d, ok := i.DefaultImpl(id); ok {
			return d.Items
		}
	case ItemFn:
		if fn, ok := i.Fn(id); ok {
			return fn.Items
		}
	case ItemStruct, ItemUse:
	}
	return nil
}

// Name returns the declared name of a named item; impls and uses have none.
func (i *Items) Name(id ItemID) (source.StringID, bool) {
	item := i.Get(id)
	if item == nil {
		return source.NoStringID, false
	}
	switch item.Kind {
	case ItemMod:
		m, _ := i.Mod(id)
		return m.Name, true
	case ItemTrait:
		t, _ := i.Trait(id)
		return t.Name, true
	case ItemStruct:
		s, _ := i.Struct(id)
		return s.Name, true
	case ItemFn:
		fn, _ := i.Fn(id)
		return fn.Name, true
	case ItemImpl, ItemDefaultImpl, ItemUse:
	}
	return source.NoStringID, false
}
