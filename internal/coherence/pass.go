package coherence

import (
	"context"

	"cohere/internal/ast"
	"cohere/internal/diag"
	"cohere/internal/symbols"
	"cohere/internal/trace"
)

// Input — всё, что проверка читает: дерево файла и таблица символов.
// Ни то, ни другое не изменяется.
type Input struct {
	Builder *ast.Builder
	File    ast.FileID
	Table   *symbols.Table
}

// Stats summarises one run.
type Stats struct {
	Impls      int // проверено impl-ов, включая default
	Skipped    int // impl-ы с неразрешённым trait-ом
	Violations int
}

// Check visits every item of the file in pre-order and evaluates each impl.
// Items other than impls are not evaluated but their children are visited.
func Check(ctx context.Context, in Input, rep diag.Reporter) Stats {
	var stats Stats
	record := func(id ast.ItemID, site Site, o outcome) {
		stats.record(o)
		if o == outcomeViolation {
			trace.Point(ctx, trace.ScopeNode, "violation",
				trace.Int("item", int(id)), trace.Str("header", site.Header.String()))
		}
	}
	items := in.Builder.Items
	walker := ast.NewWalker(items)
	walker.WalkFile(in.Builder.Files.Get(in.File), func(id ast.ItemID, item *ast.Item) bool {
		switch item.Kind {
		case ast.ItemDefaultImpl:
			d, _ := items.DefaultImpl(id)
			site := Site{Header: d.Header, Unsafe: d.UnsafeSpan, UnsafeTrail: d.UnsafeTrail}
			// default impl всегда положительный
			record(id, site, checkTraitImpl(in.Table, rep, id, d.Trait, site, d.Unsafety, ast.Positive))
		case ast.ItemImpl:
			im, _ := items.Impl(id)
			site := Site{Header: im.Header, Unsafe: im.UnsafeSpan, UnsafeTrail: im.UnsafeTrail}
			record(id, site, checkTraitImpl(in.Table, rep, id, im.Trait, site, im.Unsafety, im.Polarity))
		case ast.ItemMod, ast.ItemTrait, ast.ItemStruct, ast.ItemFn, ast.ItemUse:
		}
		return true
	})
	return stats
}

// Attrs renders the counters for a trace span.
func (s Stats) Attrs() []trace.Attr {
	return []trace.Attr{
		trace.Int("impls", s.Impls),
		trace.Int("skipped", s.Skipped),
		trace.Int("violations", s.Violations),
	}
}

type outcome uint8

const (
	outcomeOK outcome = iota
	outcomeViolation
	outcomeSkipped
)

func (s *Stats) record(o outcome) {
	switch o {
	case outcomeOK:
		s.Impls++
	case outcomeViolation:
		s.Impls++
		s.Violations++
	case outcomeSkipped:
		s.Skipped++
	}
}

// checkTraitImpl достаёт разрешённый trait и передаёт impl в CheckImpl.
// Impl с путём trait-а, который не разрешился, уже получил RES-диагностику и пропускается.
func checkTraitImpl(table *symbols.Table, rep diag.Reporter, id ast.ItemID, path ast.Path, site Site, unsafety ast.Unsafety, polarity ast.Polarity) outcome {
	var trait *symbols.TraitDef
	if path.IsValid() {
		tid, ok := table.ImplTraitRef(id)
		if !ok {
			return outcomeSkipped
		}
		trait = table.Trait(tid)
	}
	if CheckImpl(rep, site, trait, unsafety, polarity) {
		return outcomeViolation
	}
	return outcomeOK
}
