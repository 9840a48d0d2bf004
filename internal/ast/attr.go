package ast

import "cohere/internal/source"

// Attr описывает атрибут вида `#[name(...)]`. Аргументы не разбираются.
type Attr struct {
	Name source.StringID
	Span source.Span
}
