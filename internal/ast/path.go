package ast

import (
	"strings"

	"cohere/internal/source"
)

type SegmentKind uint8

const (
	SegIdent SegmentKind = iota
	SegCrate             // crate
	SegSelf              // self
	SegSuper             // super
)

type PathSegment struct {
	Kind SegmentKind
	Name source.StringID // только для SegIdent
	Span source.Span
}

// Path — `a::b::C`; generic-аргументы парсер пропускает.
type Path struct {
	Segments []PathSegment
	Span     source.Span
}

func (p Path) IsValid() bool { return len(p.Segments) > 0 }

// Last returns the final segment; the path must be valid.
func (p Path) Last() PathSegment { return p.Segments[len(p.Segments)-1] }

// Render formats the path the way it was written, e.g. `crate::sync::Send`.
func (p Path) Render(strs *source.Interner) string {
	var sb strings.Builder
	for i, seg := range p.Segments {
		if i > 0 {
			sb.WriteString("::")
		}
		switch seg.Kind {
		case SegCrate:
			sb.WriteString("crate")
		case SegSelf:
			sb.WriteString("self")
		case SegSuper:
			sb.WriteString("super")
		default:
			name, _ := strs.Lookup(seg.Name)
			sb.WriteString(name)
		}
	}
	return sb.String()
}
