package ast

import (
	"cohere/internal/source"
)

type Hints struct{ Files, Items uint }

type Builder struct {
	Files           *Files
	Items           *Items
	StringsInterner *source.Interner
}

// NewBuilder creates a Builder; a nil interner gets a fresh one.
func NewBuilder(hints Hints, stringsInterner *source.Interner) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 4
	}
	if hints.Items == 0 {
		hints.Items = 1 << 7
	}
	if stringsInterner == nil {
		stringsInterner = source.NewInterner()
	}
	return &Builder{
		Files:           NewFiles(hints.Files),
		Items:           NewItems(hints.Items),
		StringsInterner: stringsInterner,
	}
}

func (b *Builder) NewFile(sp source.Span) FileID {
	return b.Files.New(sp)
}

func (b *Builder) PushItem(file FileID, item ItemID) {
	f := b.Files.Get(file)
	f.Items = append(f.Items, item)
}

func (b *Builder) NewMod(span source.Span, m ModItem) ItemID {
	payload := PayloadID(b.Items.Mods.Allocate(m))
	return b.Items.New(ItemMod, span, payload)
}

func (b *Builder) NewTrait(span source.Span, t TraitItem) ItemID {
	payload := PayloadID(b.Items.Traits.Allocate(t))
	return b.Items.New(ItemTrait, span, payload)
}

func (b *Builder) NewImpl(span source.Span, im ImplItem) ItemID {
	payload := PayloadID(b.Items.Impls.Allocate(im))
	return b.Items.New(ItemImpl, span, payload)
}

func (b *Builder) NewDefaultImpl(span source.Span, d DefaultImplItem) ItemID {
	payload := PayloadID(b.Items.DefaultImpls.Allocate(d))
	return b.Items.New(ItemDefaultImpl, span, payload)
}

func (b *Builder) NewStruct(span source.Span, s StructItem) ItemID {
	payload := PayloadID(b.Items.Structs.Allocate(s))
	return b.Items.New(ItemStruct, span, payload)
}

func (b *Builder) NewFn(span source.Span, fn FnItem) ItemID {
	payload := PayloadID(b.Items.Fns.Allocate(fn))
	return b.Items.New(ItemFn, span, payload)
}

func (b *Builder) NewUse(span source.Span, u UseItem) ItemID {
	payload := PayloadID(b.Items.Uses.Allocate(u))
	return b.Items.New(ItemUse, span, payload)
}

// SetMeta записывает видимость и атрибуты, разобранные до ключевого слова.
func (b *Builder) SetMeta(id ItemID, vis Visibility, attrs []Attr) {
	if item := b.Items.Get(id); item != nil {
		item.Vis = vis
		item.Attrs = attrs
	}
}
