package token

var keywords = map[string]Kind{
	"mod":    KwMod,
	"trait":  KwTrait,
	"impl":   KwImpl,
	"for":    KwFor,
	"unsafe": KwUnsafe,
	"struct": KwStruct,
	"enum":   KwEnum,
	"type":   KwType,
	"fn":     KwFn,
	"use":    KwUse,
	"pub":    KwPub,
	"crate":  KwCrate,
	"self":   KwSelf,
	"super":  KwSuper,
	"where":  KwWhere,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
