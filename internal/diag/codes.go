package diag

import (
	"fmt"
	"slices"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003

	// Парсерные
	SynInfo                 Code = 2000
	SynUnexpectedToken      Code = 2001
	SynUnclosedBrace        Code = 2007
	SynExpectSemicolon      Code = 2012
	SynUnexpectedTopLevel   Code = 2101
	SynExpectIdentifier     Code = 2102
	SynExpectLBrace         Code = 2103
	SynNegativeInherentImpl Code = 2104
	SynNegativeDefaultImpl  Code = 2105

	// Разрешение имён
	ResInfo            Code = 3000
	ResUnresolvedTrait Code = 3001
	ResNotATrait       Code = 3002
	ResDuplicateItem   Code = 3003
	ResSuperAtRoot     Code = 3004

	// Когерентность: unsafe-квалификаторы impl-ов.
	// Номера внутри семейства совпадают с историческими кодами ошибок.
	CohInfo                  Code = 4000
	CohUnsafeInherentImpl    Code = 4197
	CohUnsafeNegativeImpl    Code = 4198
	CohUnsafeImplOfSafeTrait Code = 4199
	CohSafeImplOfUnsafeTrait Code = 4200

	// Ввод-вывод
	IOInfo          Code = 5000
	IOLoadFileError Code = 5001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedString:       "Unterminated string",
		LexUnterminatedBlockComment: "Unterminated block comment",
		SynInfo:                     "Syntax information",
		SynUnexpectedToken:          "Unexpected token",
		SynUnclosedBrace:            "Unclosed brace",
		SynExpectSemicolon:          "Expected semicolon",
		SynUnexpectedTopLevel:       "Unexpected item",
		SynExpectIdentifier:         "Expected identifier",
		SynExpectLBrace:             "Expected '{'",
		SynNegativeInherentImpl:     "Inherent impls cannot be negative",
		SynNegativeDefaultImpl:      "Default impls cannot be negative",
		ResInfo:                     "Resolution information",
		ResUnresolvedTrait:          "Unresolved trait",
		ResNotATrait:                "Not a trait",
		ResDuplicateItem:            "Duplicate definition",
		ResSuperAtRoot:              "'super' at crate root",
		CohInfo:                     "Coherence information",
		CohUnsafeInherentImpl:       "Inherent impls cannot be declared as unsafe",
		CohUnsafeNegativeImpl:       "Negative implementations are not unsafe",
		CohUnsafeImplOfSafeTrait:    "Implementing a safe trait is not unsafe",
		CohSafeImplOfUnsafeTrait:    "Unsafe trait requires an `unsafe impl` declaration",
		IOInfo:                      "I/O information",
		IOLoadFileError:             "I/O load file error",
	}
)

// Codes returns every known code in ascending order.
func Codes() []Code {
	out := make([]Code, 0, len(codeDescription))
	for c := range codeDescription {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("COH%04d", ic-4000)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
