package source

type (
	// FileID indexes a File within its FileSet.
	FileID uint32
	// FileFlags records where a file came from and what Load normalized.
	FileFlags uint8
)

const (
	FileVirtual        FileFlags = 1 << iota // добавлен не с диска (тест, stdin)
	FileHadBOM                               // BOM снят при загрузке
	FileNormalizedCRLF                       // CRLF заменены на LF
)

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 `json:"line"` // 1-based
	Col  uint32 `json:"col"`  // 1-based, в байтах
}
