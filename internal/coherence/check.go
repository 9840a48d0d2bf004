package coherence

import (
	"fmt"

	"cohere/internal/ast"
	"cohere/internal/diag"
	"cohere/internal/source"
	"cohere/internal/symbols"
)

// Site locates an impl header in source.
type Site struct {
	Header source.Span
	// Unsafe is the span of the `unsafe` keyword; empty when the impl is safe.
	Unsafe source.Span
	// UnsafeTrail is the run of spaces and tabs between `unsafe` and `impl`.
	UnsafeTrail string
}

// CheckImpl evaluates one impl and reports at most one diagnostic.
// trait is nil for inherent impls.
func CheckImpl(rep diag.Reporter, site Site, trait *symbols.TraitDef, unsafety ast.Unsafety, polarity ast.Polarity) bool {
	var d *diag.Diagnostic
	switch v := evaluate(trait, unsafety, polarity); v {
	case verdictOK:
		return false
	case verdictUnsafeInherent:
		d = diag.NewError(diag.CohUnsafeInherentImpl, site.Header,
			"inherent impls cannot be declared as unsafe")
		removeUnsafe(d, site)
	case verdictUnsafeNegative:
		d = diag.NewError(diag.CohUnsafeNegativeImpl, site.Header,
			"negative implementations are not unsafe")
		noteTrait(d, trait)
		removeUnsafe(d, site)
	case verdictUnsafeImplOfSafeTrait:
		d = diag.NewError(diag.CohUnsafeImplOfSafeTrait, site.Header,
			fmt.Sprintf("implementing the trait `%s` is not unsafe", trait.Name))
		noteTrait(d, trait)
		removeUnsafe(d, site)
	case verdictSafeImplOfUnsafeTrait:
		d = diag.NewError(diag.CohSafeImplOfUnsafeTrait, site.Header,
			fmt.Sprintf("the trait `%s` requires an `unsafe impl` declaration", trait.Name))
		noteTrait(d, trait)
		insertUnsafe(d, site)
	default:
		// validateRules не пропускает такие ячейки
		panic(fmt.Sprintf("coherence: unset rule for %s %s impl", unsafety, polarity))
	}
	diag.Emit(rep, d)
	return true
}

// noteTrait указывает на определение trait-а; у внешних trait-ов места в исходниках нет.
func noteTrait(d *diag.Diagnostic, trait *symbols.TraitDef) {
	if trait.Extern {
		return
	}
	qual := "safe"
	if trait.Unsafety == ast.Unsafe {
		qual = "unsafe"
	}
	d.WithNote(trait.Span, fmt.Sprintf("%s trait `%s` is declared here", qual, trait.Name))
}

// removeUnsafe drops the keyword together with the blanks after it, so
// `unsafe impl X {}` becomes `impl X {}`.
func removeUnsafe(d *diag.Diagnostic, site Site) {
	if site.Unsafe.Empty() {
		return
	}
	sp := site.Unsafe
	sp.End += uint32(len(site.UnsafeTrail)) // #nosec G115 -- пробелы внутри одной строки
	d.WithFix("remove `unsafe`", diag.FixEdit{Span: sp, OldText: "unsafe" + site.UnsafeTrail})
}

func insertUnsafe(d *diag.Diagnostic, site Site) {
	d.WithFix("add `unsafe`", diag.FixEdit{Span: site.Header.ZeroideToStart(), NewText: "unsafe "})
}
