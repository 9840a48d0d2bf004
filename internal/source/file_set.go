package source

import (
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet owns the .decl files of one run. FileIDs are dense indices from 0.
// Adding a path again creates a new version; Lookup returns the newest one.
//
// A FileSet is not safe for concurrent mutation: the driver loads every file
// before units are checked in parallel, after that it is read-only.
type FileSet struct {
	files  []*File
	byPath map[string]FileID
	base   string // каталог, относительно которого печатаются пути
}

func NewFileSet() *FileSet {
	return &FileSet{byPath: make(map[string]FileID)}
}

// NewFileSetWithBase is NewFileSet with relative paths shown against dir.
func NewFileSetWithBase(dir string) *FileSet {
	fs := NewFileSet()
	fs.base = dir
	return fs
}

func (fs *FileSet) SetBaseDir(dir string) { fs.base = dir }

// BaseDir returns the display base, the working directory when unset.
func (fs *FileSet) BaseDir() string {
	if fs.base != "" {
		return fs.base
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// Len counts every version ever added.
func (fs *FileSet) Len() int { return len(fs.files) }

// Add stores already-normalized content under path and returns its new ID.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("too many files in FileSet: %w", err))
	}
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("%s: file too large: %w", path, err))
	}
	f := newFile(FileID(n), normalizePath(path), content, flags)
	fs.files = append(fs.files, f)
	fs.byPath[f.Path] = f.ID
	return f.ID
}

// Load reads path from disk, strips a UTF-8 BOM, folds CRLF to LF and adds
// the result. The flags record what was normalized so the fix engine can
// refuse to write such files back.
func (fs *FileSet) Load(path string) (FileID, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- путь задаёт пользователь
	if err != nil {
		return 0, err
	}
	content, flags := decode(raw)
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds in-memory content (tests, fuzzing, stdin).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file with id; it panics on an ID from another FileSet.
func (fs *FileSet) Get(id FileID) *File { return fs.files[id] }

// Lookup returns the newest version of path.
func (fs *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fs.byPath[normalizePath(path)]
	return id, ok
}

// Resolve converts span offsets into 1-based line/column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.files[span.File]
	return f.Position(span.Start), f.Position(span.End)
}

// DisplayPath renders the path of id in the given style.
func (fs *FileSet) DisplayPath(id FileID, style PathStyle) string {
	path := fs.files[id].Path
	switch style {
	case PathAbsolute:
		if abs, err := AbsolutePath(path); err == nil {
			return abs
		}
	case PathRelative:
		if rel, err := RelativePath(path, fs.BaseDir()); err == nil {
			return rel
		}
	case PathBase:
		return BaseName(path)
	case PathAuto:
		// длинные абсолютные пути сокращаем до имени файла
		if len(path) >= 40 && isAbs(path) {
			return BaseName(path)
		}
	}
	return path
}
