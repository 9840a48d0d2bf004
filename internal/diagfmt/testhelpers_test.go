package diagfmt

import (
	"cohere/internal/diag"
	"cohere/internal/source"
)

const sampleSrc = "unsafe trait Send {}\nimpl Send for Foo {}\n"

// sampleBag returns one COH0200 with a note at the trait and an insert fix.
func sampleBag(path string) (*source.FileSet, *diag.Bag) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual(path, []byte(sampleSrc))
	header := source.Span{File: fileID, Start: 21, End: 38}

	d := diag.NewError(diag.CohSafeImplOfUnsafeTrait, header,
		"the trait `Send` requires an `unsafe impl` declaration").
		WithNote(source.Span{File: fileID, Start: 0, End: 17}, "unsafe trait `Send` is declared here").
		WithFix("add `unsafe` keyword", diag.FixEdit{
			Span:    header.ZeroideToStart(),
			NewText: "unsafe ",
		})
	bag := diag.NewBag(10)
	bag.Add(d)
	return fs, bag
}
