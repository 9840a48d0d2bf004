package token

import (
	"cohere/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwMod && t.Kind <= KwWhere
}

// IsPunct reports whether the token is punctuation.
func (t Token) IsPunct() bool {
	return t.Kind >= LBrace && t.Kind <= Apostrophe
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// IsPathSegment reports whether the token may start or continue a path.
func (t Token) IsPathSegment() bool {
	switch t.Kind {
	case Ident, KwCrate, KwSelf, KwSuper:
		return true
	default:
		return false
	}
}

// ItemStarter reports whether k may begin an item.
func ItemStarter(k Kind) bool {
	switch k {
	case KwMod, KwTrait, KwImpl, KwUnsafe, KwStruct, KwEnum, KwType, KwFn, KwUse, KwPub, Hash:
		return true
	default:
		return false
	}
}
