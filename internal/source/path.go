package source

import (
	"path/filepath"
	"strings"
)

// PathStyle selects how diagnostics print file paths.
type PathStyle uint8

const (
	PathAuto     PathStyle = iota // как загружен; длинные абсолютные сокращаются до имени
	PathAbsolute
	PathRelative // относительно FileSet.BaseDir, вне его — абсолютный
	PathBase
)

// normalizePath даёт единый вид путей в выводе и в индексе FileSet.
func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

func isAbs(p string) bool {
	return filepath.IsAbs(filepath.FromSlash(p))
}

// AbsolutePath returns the normalized absolute form of path.
func AbsolutePath(path string) (string, error) {
	abs, err := filepath.Abs(filepath.FromSlash(path))
	if err != nil {
		return "", err
	}
	return normalizePath(abs), nil
}

// RelativePath returns path relative to baseDir. Paths that escape baseDir
// fall back to their absolute form.
func RelativePath(path, baseDir string) (string, error) {
	abs, err := filepath.Abs(filepath.FromSlash(path))
	if err != nil {
		return "", err
	}
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(abs), nil
	}
	return normalizePath(rel), nil
}

// BaseName returns the last element of path.
func BaseName(path string) string {
	return filepath.Base(filepath.FromSlash(path))
}
