package source

import (
	"bytes"
	"crypto/sha256"
	"sort"
)

// File is one loaded source file. Content is immutable once added.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Hash    [32]byte
	Flags   FileFlags
	newline []uint32 // смещения '\n' по возрастанию
}

func newFile(id FileID, path string, content []byte, flags FileFlags) *File {
	f := &File{
		ID:      id,
		Path:    path,
		Content: content,
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}
	for off := 0; ; {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			break
		}
		off += i
		f.newline = append(f.newline, uint32(off)) // #nosec G115 -- размер проверен в Add
		off++
	}
	return f
}

func (f *File) size() uint32 { return uint32(len(f.Content)) } // #nosec G115 -- размер проверен в Add

// LineCount is the number of lines; a trailing newline does not open a new one.
func (f *File) LineCount() uint32 {
	n := uint32(len(f.newline)) // #nosec G115
	if len(f.Content) > 0 && f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	return n
}

// Position maps a byte offset to a 1-based line/column pair.
// A '\n' belongs to the line it terminates.
func (f *File) Position(off uint32) LineCol {
	before := sort.Search(len(f.newline), func(i int) bool { return f.newline[i] >= off })
	lineStart := uint32(0)
	if before > 0 {
		lineStart = f.newline[before-1] + 1
	}
	return LineCol{Line: uint32(before) + 1, Col: off - lineStart + 1} // #nosec G115
}

// LineSpan returns the span of line (1-based) without its '\n'.
func (f *File) LineSpan(line uint32) (Span, bool) {
	if line == 0 || int(line) > len(f.newline)+1 {
		return Span{}, false
	}
	start := uint32(0)
	if line > 1 {
		start = f.newline[line-2] + 1
	}
	end := f.size()
	if int(line) <= len(f.newline) {
		end = f.newline[line-1]
	}
	return Span{File: f.ID, Start: start, End: end}, true
}

// GetLine returns the text of line (1-based), or "" when there is no such line.
func (f *File) GetLine(line uint32) string {
	sp, ok := f.LineSpan(line)
	if !ok {
		return ""
	}
	return string(f.Content[sp.Start:sp.End])
}

// Slice returns the text under span, clamped to the file.
func (f *File) Slice(span Span) string {
	start, end := min(span.Start, f.size()), min(span.End, f.size())
	if end < start {
		return ""
	}
	return string(f.Content[start:end])
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode strips a UTF-8 BOM and folds CRLF to LF; lone '\r' is kept.
func decode(raw []byte) ([]byte, FileFlags) {
	var flags FileFlags
	if bytes.HasPrefix(raw, utf8BOM) {
		raw = raw[len(utf8BOM):]
		flags |= FileHadBOM
	}
	if bytes.Contains(raw, []byte("\r\n")) {
		raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	return raw, flags
}
