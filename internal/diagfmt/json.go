package diagfmt

import (
	"encoding/json"
	"io"
	"slices"
	"strings"

	"cohere/internal/diag"
	"cohere/internal/source"
)

// LocationJSON — байтовый диапазон и, по желанию, line/col.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type FixEditJSON struct {
	Location LocationJSON `json:"location"`
	NewText  string       `json:"new_text"`
	OldText  string       `json:"old_text,omitempty"`
}

// FixPreviewJSON is the line block a fix rewrites, starting at StartLine.
type FixPreviewJSON struct {
	StartLine uint32   `json:"start_line"`
	Before    []string `json:"before"`
	After     []string `json:"after"`
}

type FixJSON struct {
	Title   string          `json:"title"`
	Edits   []FixEditJSON   `json:"edits,omitempty"`
	Preview *FixPreviewJSON `json:"preview,omitempty"`
}

// DiagnosticJSON is one diagnostic; Severity uses the lower-case label.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the document written by JSON.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

type jsonBuilder struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (b jsonBuilder) location(span source.Span) LocationJSON {
	loc := LocationJSON{StartByte: span.Start, EndByte: span.End}
	if !known(b.fs, span) {
		return loc
	}
	loc.File = b.fs.DisplayPath(span.File, b.opts.PathMode)
	if b.opts.IncludePositions {
		start, end := b.fs.Resolve(span)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

func (b jsonBuilder) diagnostic(d *diag.Diagnostic) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.Label(),
		Code:     d.Code.ID(),
		Message:  d.Message,
		Location: b.location(d.Primary),
	}
	if b.opts.IncludeNotes {
		for _, n := range d.Notes {
			out.Notes = append(out.Notes, NoteJSON{Message: n.Msg, Location: b.location(n.Span)})
		}
	}
	if b.opts.IncludeFixes {
		// порядок fix-ов в выводе не зависит от порядка их добавления
		fixes := slices.Clone(d.Fixes)
		slices.SortStableFunc(fixes, func(x, y diag.Fix) int { return strings.Compare(x.Title, y.Title) })
		for _, f := range fixes {
			out.Fixes = append(out.Fixes, b.fix(f))
		}
	}
	return out
}

func (b jsonBuilder) fix(f diag.Fix) FixJSON {
	out := FixJSON{Title: f.Title}
	for _, e := range f.Edits {
		out.Edits = append(out.Edits, FixEditJSON{
			Location: b.location(e.Span),
			NewText:  e.NewText,
			OldText:  e.OldText,
		})
	}
	if b.opts.IncludePreviews {
		if p, err := previewFix(b.fs, f); err == nil {
			out.Preview = &FixPreviewJSON{StartLine: p.firstLine, Before: p.before, After: p.after}
		}
	}
	return out
}

// BuildDiagnosticsOutput builds the JSON document without encoding it, so
// callers can group several units into one object.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) (DiagnosticsOutput, error) {
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	b := jsonBuilder{fs: fs, opts: opts}
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, len(items))}
	for _, d := range items {
		out.Diagnostics = append(out.Diagnostics, b.diagnostic(d))
	}
	out.Count = len(out.Diagnostics)
	return out, nil
}

// JSON writes the diagnostics of bag as one indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	output, err := BuildDiagnosticsOutput(bag, fs, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
