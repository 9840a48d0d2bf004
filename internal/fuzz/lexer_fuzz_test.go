package fuzztests

import (
	"testing"

	"cohere/internal/diag"
	"cohere/internal/lexer"
	"cohere/internal/source"
	"cohere/internal/token"
)

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clamp(input, maxFuzzInput)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.decl", input))

		bag := diag.NewBag(64)
		lx := lexer.New(file, lexer.Options{Reporter: &diag.BagReporter{Bag: bag}})
		tokens := lx.All()
		if len(tokens) == 0 || tokens[len(tokens)-1].Kind != token.EOF {
			t.Fatalf("token stream must end with EOF, got %d tokens", len(tokens))
		}
		// спаны монотонны и не выходят за файл
		var prevEnd uint32
		for _, tok := range tokens {
			if tok.Span.Start < prevEnd || tok.Span.End < tok.Span.Start || int(tok.Span.End) > len(file.Content) {
				t.Fatalf("bad span %v after %d (len=%d)", tok.Span, prevEnd, len(file.Content))
			}
			prevEnd = tok.Span.End
		}
	})
}
