package token_test

import (
	"testing"

	"cohere/internal/source"
	"cohere/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{}}
}

func TestKeywordsRoundTrip(t *testing.T) {
	for _, word := range []string{"mod", "trait", "impl", "for", "unsafe", "struct", "enum", "type", "fn", "use", "pub", "crate", "self", "super", "where"} {
		k, ok := token.LookupKeyword(word)
		if !ok {
			t.Fatalf("%q must be a keyword", word)
		}
		if k.String() != word {
			t.Fatalf("Kind(%q).String() = %q", word, k.String())
		}
		if !tok(k).IsKeyword() {
			t.Fatalf("%v must report IsKeyword", k)
		}
	}
	if _, ok := token.LookupKeyword("Unsafe"); ok {
		t.Fatal("keywords are case-sensitive")
	}
}

func TestClassification(t *testing.T) {
	for _, k := range []token.Kind{token.LBrace, token.ColonColon, token.DotDot, token.Bang, token.Apostrophe} {
		if !tok(k).IsPunct() || tok(k).IsKeyword() {
			t.Fatalf("%v must be punctuation only", k)
		}
	}
	for _, k := range []token.Kind{token.Ident, token.KwCrate, token.KwSelf, token.KwSuper} {
		if !tok(k).IsPathSegment() {
			t.Fatalf("%v must be a path segment", k)
		}
	}
	if tok(token.KwTrait).IsPathSegment() {
		t.Fatal("trait is not a path segment")
	}
	if !token.ItemStarter(token.KwUnsafe) || token.ItemStarter(token.Ident) {
		t.Fatal("unexpected item starter classification")
	}
	if token.Kind(250).String() != "Unknown" {
		t.Fatal("out-of-range kind must print Unknown")
	}
}
