package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"cohere/internal/source"
)

// shortLine is one rendered row of the short format.
type shortLine struct {
	label string
	code  string
	path  string
	pos   source.LineCol
	msg   string
}

func (l shortLine) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.label, l.code, l.path, l.pos.Line, l.pos.Col, l.msg)
}

func compareShort(a, b shortLine) int {
	return cmp.Or(
		cmp.Compare(a.path, b.path),
		cmp.Compare(a.pos.Line, b.pos.Line),
		cmp.Compare(a.pos.Col, b.pos.Col),
		cmp.Compare(a.label, b.label),
		cmp.Compare(a.code, b.code),
		cmp.Compare(a.msg, b.msg),
	)
}

// FormatShortDiagnostics renders one line per diagnostic,
// "<severity> <code> <path>:<line>:<col> <message>", sorted by location and
// joined with newlines. Paths are relative to the FileSet base so the output
// is stable across machines; golden tests and the "short" CLI format use it.
// Notes become rows of their own with severity "note" when includeNotes is set.
func FormatShortDiagnostics(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil {
		return ""
	}
	var lines []shortLine
	for _, d := range diags {
		if d == nil {
			continue
		}
		if l, ok := shortRow(fs, d.Primary, d.Severity.Label(), d.Code, d.Message); ok {
			lines = append(lines, l)
		}
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			if l, ok := shortRow(fs, n.Span, "note", d.Code, n.Msg); ok {
				lines = append(lines, l)
			}
		}
	}
	slices.SortStableFunc(lines, compareShort)

	rows := make([]string, len(lines))
	for i, l := range lines {
		rows[i] = l.String()
	}
	return strings.Join(rows, "\n")
}

// shortRow drops spans that point outside fs.
func shortRow(fs *source.FileSet, span source.Span, label string, code Code, msg string) (shortLine, bool) {
	if int(span.File) >= fs.Len() {
		return shortLine{}, false
	}
	pos, _ := fs.Resolve(span)
	return shortLine{
		label: label,
		code:  code.ID(),
		path:  fs.DisplayPath(span.File, source.PathRelative),
		pos:   pos,
		msg:   strings.NewReplacer("\r", " ", "\n", " ").Replace(msg),
	}, true
}
