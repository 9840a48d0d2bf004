package diagfmt

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"cohere/internal/diag"
	"cohere/internal/source"
)

// fixPreview is the block of whole lines a fix touches, before and after.
type fixPreview struct {
	firstLine uint32
	before    []string
	after     []string
}

// previewFix applies all edits of fix to the lines they touch without
// writing anything. The edits must target one file, match their OldText
// and not overlap; a stale or broken fix yields an error and no preview.
func previewFix(fs *source.FileSet, fix diag.Fix) (fixPreview, error) {
	if len(fix.Edits) == 0 {
		return fixPreview{}, errors.New("fix has no edits")
	}
	edits := slices.Clone(fix.Edits)
	slices.SortStableFunc(edits, func(a, b diag.FixEdit) int {
		return cmp.Compare(a.Span.Start, b.Span.Start)
	})
	id := edits[0].Span.File
	if !known(fs, edits[0].Span) {
		return fixPreview{}, errors.New("edit span outside FileSet")
	}
	f := fs.Get(id)

	var end uint32
	for i, e := range edits {
		switch {
		case e.Span.File != id:
			return fixPreview{}, errors.New("fix edits span several files")
		case e.Span.End < e.Span.Start || int(e.Span.End) > len(f.Content):
			return fixPreview{}, fmt.Errorf("edit span %s out of range", e.Span)
		case i > 0 && e.Span.Start < end:
			return fixPreview{}, fmt.Errorf("edit span %s overlaps the previous edit", e.Span)
		case e.OldText != "" && f.Slice(e.Span) != e.OldText:
			return fixPreview{}, fmt.Errorf("fix expects %q under span, found %q", e.OldText, f.Slice(e.Span))
		}
		end = e.Span.End
	}

	first := f.Position(edits[0].Span.Start)
	last := f.Position(end)
	top, _ := f.LineSpan(first.Line)
	bottom, _ := f.LineSpan(last.Line)
	block := top.Cover(bottom)

	var after strings.Builder
	at := block.Start
	for _, e := range edits {
		after.Write(f.Content[at:e.Span.Start])
		after.WriteString(e.NewText)
		at = e.Span.End
	}
	after.Write(f.Content[at:block.End])

	return fixPreview{
		firstLine: first.Line,
		before:    strings.Split(f.Slice(block), "\n"),
		after:     strings.Split(after.String(), "\n"),
	}, nil
}
