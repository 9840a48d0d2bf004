// Package testkit holds structural checks shared by parser tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"cohere/internal/ast"
	"cohere/internal/source"
)

// CheckSpanInvariants runs span invariants on a parsed file:
//  1. the file span lies within the content bounds of sf;
//  2. every item span is non-empty and inside its parent (the file for top-level items);
//  3. impl headers lie inside their item and an `unsafe` span, when present,
//     lies inside the header and reads "unsafe".
func CheckSpanInvariants(b *ast.Builder, fileID ast.FileID, sf *source.File) error {
	if b == nil || sf == nil {
		return fmt.Errorf("nil builder or file")
	}
	f := b.Files.Get(fileID)
	if f == nil {
		return fmt.Errorf("file node not found")
	}

	if f.Span.End < f.Span.Start {
		return fmt.Errorf("file span is inverted: %v", f.Span)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent {
		return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, lenContent)
	}

	for _, id := range f.Items {
		if err := checkItem(b, id, f.Span, sf); err != nil {
			return err
		}
	}
	return nil
}

func checkItem(b *ast.Builder, id ast.ItemID, parent source.Span, sf *source.File) error {
	item := b.Items.Get(id)
	if item == nil {
		return fmt.Errorf("nil item for id=%d", id)
	}
	sp := item.Span
	if sp.End <= sp.Start {
		return fmt.Errorf("empty %s span: %v", item.Kind, sp)
	}
	if sp.File != sf.ID {
		return fmt.Errorf("item span file mismatch: got=%d want=%d", sp.File, sf.ID)
	}
	if !parent.Contains(sp) {
		return fmt.Errorf("%s span %v is outside parent span %v", item.Kind, sp, parent)
	}

	var header, unsafeSpan source.Span
	switch item.Kind {
	case ast.ItemImpl:
		im, _ := b.Items.Impl(id)
		header, unsafeSpan = im.Header, im.UnsafeSpan
	case ast.ItemDefaultImpl:
		d, _ := b.Items.DefaultImpl(id)
		header, unsafeSpan = d.Header, d.UnsafeSpan
	case ast.ItemTrait:
		tr, _ := b.Items.Trait(id)
		header = tr.Header
	}
	if !header.Empty() && !sp.Contains(header) {
		return fmt.Errorf("%s header %v is outside item span %v", item.Kind, header, sp)
	}
	if !unsafeSpan.Empty() {
		if !header.Contains(unsafeSpan) {
			return fmt.Errorf("unsafe span %v is outside header %v", unsafeSpan, header)
		}
		if got := sf.Slice(unsafeSpan); got != "unsafe" {
			return fmt.Errorf("unsafe span %v reads %q", unsafeSpan, got)
		}
	}

	for _, child := range b.Items.Children(id) {
		if err := checkItem(b, child, sp, sf); err != nil {
			return err
		}
	}
	return nil
}
