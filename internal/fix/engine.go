// Package fix applies the edits attached to diagnostics back to the source
// files they came from.
//
// Every edit is expressed in offsets of the file as it was loaded. Accepted
// edits are collected per file and rendered once, so a later fix never has
// to shift its offsets over an earlier one.
package fix

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	"cohere/internal/diag"
	"cohere/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// ApplyMode selects which of the offered fixes are applied.
type ApplyMode uint8

const (
	ApplyModeOnce ApplyMode = iota // первая по позиции
	ApplyModeAll
	ApplyModeID
)

type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// DryRun renders the new contents without writing them.
	DryRun bool
}

// AppliedFix records one fix that made it into the output.
type AppliedFix struct {
	ID          string
	Title       string
	Code        diag.Code
	Message     string
	PrimaryPath string
	EditCount   int
}

// SkippedFix names a fix that was left out and why.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange is the rendered result for one touched file.
type FileChange struct {
	Path      string
	EditCount int
	// Content — новое содержимое файла (заполнено и при DryRun).
	Content []byte
}

type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

// FixID names the idx-th fix of d: "<code>-<file>-<start>-<idx>".
func FixID(d *diag.Diagnostic, idx int) string {
	return fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, idx)
}

// offer is one fix of one diagnostic, in the order fixes are considered.
type offer struct {
	diag *diag.Diagnostic
	fix  diag.Fix
	id   string
	seq  int
}

// pending collects the accepted edits of one file.
type pending struct {
	file  *source.File
	edits []diag.FixEdit
}

// Apply selects fixes from diagnostics according to opts and rewrites the
// files they touch. A fix is applied whole or not at all.
func Apply(fs *source.FileSet, diagnostics []*diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{}
	if fs == nil {
		return result, errors.New("fix: FileSet is nil")
	}

	offers, skipped := collectOffers(diagnostics)
	result.Skipped = append(result.Skipped, skipped...)
	offers, skipped = choose(offers, opts)
	result.Skipped = append(result.Skipped, skipped...)
	if len(offers) == 0 {
		return result, ErrNoFixes
	}

	files := make(map[source.FileID]*pending)
	for _, o := range offers {
		if reason := accept(fs, files, o.fix.Edits); reason != "" {
			result.Skipped = append(result.Skipped, SkippedFix{ID: o.id, Title: o.fix.Title, Reason: reason})
			continue
		}
		result.Applied = append(result.Applied, AppliedFix{
			ID:          o.id,
			Title:       o.fix.Title,
			Code:        o.diag.Code,
			Message:     o.diag.Message,
			PrimaryPath: displayPath(fs, o.diag.Primary.File),
			EditCount:   len(o.fix.Edits),
		})
	}
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}

	ids := make([]source.FileID, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		p := files[id]
		content := render(p.file.Content, p.edits)
		if !opts.DryRun {
			if err := writeFile(p.file.Path, content); err != nil {
				return result, err
			}
		}
		result.FileChanges = append(result.FileChanges, FileChange{
			Path:      fs.DisplayPath(id, source.PathRelative),
			EditCount: len(p.edits),
			Content:   content,
		})
	}
	sort.SliceStable(result.FileChanges, func(i, j int) bool {
		return result.FileChanges[i].Path < result.FileChanges[j].Path
	})
	return result, nil
}

// collectOffers flattens the fixes of diagnostics in source order.
func collectOffers(diagnostics []*diag.Diagnostic) ([]offer, []SkippedFix) {
	var (
		offers  []offer
		skipped []SkippedFix
	)
	for _, d := range diagnostics {
		if d == nil {
			continue
		}
		for idx, f := range d.Fixes {
			id := FixID(d, idx)
			if len(f.Edits) == 0 {
				skipped = append(skipped, SkippedFix{ID: id, Title: f.Title, Reason: "fix has no edits"})
				continue
			}
			offers = append(offers, offer{diag: d, fix: f, id: id, seq: len(offers)})
		}
	}
	sort.SliceStable(offers, func(i, j int) bool {
		a, b := offers[i].diag.Primary, offers[j].diag.Primary
		switch {
		case a.File != b.File:
			return a.File < b.File
		case a.Start != b.Start:
			return a.Start < b.Start
		case a.End != b.End:
			return a.End < b.End
		}
		return offers[i].seq < offers[j].seq
	})
	return offers, skipped
}

func choose(offers []offer, opts ApplyOptions) ([]offer, []SkippedFix) {
	if len(offers) == 0 {
		return nil, nil
	}
	switch opts.Mode {
	case ApplyModeAll:
		return offers, nil
	case ApplyModeOnce:
		return offers[:1], nil
	case ApplyModeID:
		for _, o := range offers {
			if o.id == opts.TargetID {
				return []offer{o}, nil
			}
		}
		return nil, []SkippedFix{{ID: opts.TargetID, Reason: "fix id not found"}}
	}
	return nil, nil
}

// accept checks every edit of one fix against the loaded text and the edits
// already accepted, then records them. On failure nothing is recorded and
// the reason is returned.
func accept(fs *source.FileSet, files map[source.FileID]*pending, edits []diag.FixEdit) string {
	staged := make(map[source.FileID][]diag.FixEdit)
	for _, e := range edits {
		if int(e.Span.File) >= fs.Len() {
			return "edit refers to an unknown file"
		}
		f := fs.Get(e.Span.File)
		switch {
		case f.Flags&source.FileVirtual != 0:
			return "target file is virtual"
		case f.Flags&(source.FileHadBOM|source.FileNormalizedCRLF) != 0:
			return "file was normalized on load (BOM or CRLF)"
		case e.Span.End < e.Span.Start || int(e.Span.End) > len(f.Content):
			return "edit span out of range"
		case e.OldText != "" && f.Slice(e.Span) != e.OldText:
			return "existing text does not match expected content"
		}
		if p := files[e.Span.File]; p != nil && overlapsAny(p.edits, e) {
			return "conflicts with previously applied edits in " + fs.DisplayPath(e.Span.File, source.PathAuto)
		}
		if overlapsAny(staged[e.Span.File], e) {
			return "fix edits overlap each other"
		}
		staged[e.Span.File] = append(staged[e.Span.File], e)
	}
	for id, es := range staged {
		p := files[id]
		if p == nil {
			p = &pending{file: fs.Get(id)}
			files[id] = p
		}
		p.edits = append(p.edits, es...)
	}
	return ""
}

func overlapsAny(accepted []diag.FixEdit, e diag.FixEdit) bool {
	for _, prev := range accepted {
		if spansConflict(prev, e) {
			return true
		}
	}
	return false
}

// spansConflict reports whether two edits overlap as half-open intervals.
// Two insertions never conflict; an insertion conflicts with a span that
// strictly contains its position.
func spansConflict(a, b diag.FixEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End

	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart <= aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart <= bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}

// render builds the new content from the loaded text and non-overlapping
// edits. Insertions at one offset keep their acceptance order.
func render(content []byte, edits []diag.FixEdit) []byte {
	sorted := slices.Clone(edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start < sorted[j].Span.Start
	})
	var buf bytes.Buffer
	buf.Grow(len(content))
	at := uint32(0)
	for _, e := range sorted {
		buf.Write(content[at:e.Span.Start])
		buf.WriteString(e.NewText)
		at = e.Span.End
	}
	buf.Write(content[at:])
	return buf.Bytes()
}

// writeFile пишет через временный файл и rename, сохраняя права исходного.
func writeFile(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp := path + ".cohere-fix.tmp"
	if err := os.WriteFile(tmp, content, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func displayPath(fs *source.FileSet, id source.FileID) string {
	if int(id) >= fs.Len() {
		return ""
	}
	return fs.DisplayPath(id, source.PathAuto)
}
