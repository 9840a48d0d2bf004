package diagfmt

import (
	"cohere/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode = source.PathStyle

const (
	// PathModeAuto prints paths as loaded, shortening long absolute ones.
	PathModeAuto     = source.PathAuto
	PathModeAbsolute = source.PathAbsolute
	PathModeRelative = source.PathRelative
	PathModeBasename = source.PathBase
)

// PrettyOpts configures the human-readable renderer.
type PrettyOpts struct {
	Color       bool
	Context     int8 // строк контекста над основной
	PathMode    PathMode
	Width       uint8 // максимальная ширина строки, 0 - не ограничено
	ShowNotes   bool
	ShowFixes   bool
	ShowPreview bool // с ShowFixes: строки до и после применения fix-а
}

type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
	IncludeFixes     bool
	IncludePreviews  bool
}

// SarifRunMeta describes the tool for the SARIF run object.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InformationURI string
	InvocationArgs []string
}

// known reports whether span points into fs.
func known(fs *source.FileSet, span source.Span) bool {
	return fs != nil && int(span.File) < fs.Len()
}
