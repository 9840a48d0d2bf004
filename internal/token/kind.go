package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident
	IntLit
	StringLit

	KwMod    // mod
	KwTrait  // trait
	KwImpl   // impl
	KwFor    // for
	KwUnsafe // unsafe
	KwStruct // struct
	KwEnum   // enum
	KwType   // type
	KwFn     // fn
	KwUse    // use
	KwPub    // pub
	KwCrate  // crate
	KwSelf   // self
	KwSuper  // super
	KwWhere  // where

	LBrace     // {
	RBrace     // }
	LParen     // (
	RParen     // )
	LBracket   // [
	RBracket   // ]
	Lt         // <
	Gt         // >
	Semicolon  // ;
	Comma      // ,
	Colon      // :
	ColonColon // ::
	Bang       // !
	Dot        // .
	DotDot     // ..
	Arrow      // ->
	Hash       // #
	Amp        // &
	Star       // *
	Eq         // =
	Plus       // +
	Minus      // -
	Question   // ?
	Apostrophe // ' (lifetimes)
)

var kindNames = [...]string{
	Invalid:    "Invalid",
	EOF:        "EOF",
	Ident:      "Ident",
	IntLit:     "IntLit",
	StringLit:  "StringLit",
	KwMod:      "mod",
	KwTrait:    "trait",
	KwImpl:     "impl",
	KwFor:      "for",
	KwUnsafe:   "unsafe",
	KwStruct:   "struct",
	KwEnum:     "enum",
	KwType:     "type",
	KwFn:       "fn",
	KwUse:      "use",
	KwPub:      "pub",
	KwCrate:    "crate",
	KwSelf:     "self",
	KwSuper:    "super",
	KwWhere:    "where",
	LBrace:     "{",
	RBrace:     "}",
	LParen:     "(",
	RParen:     ")",
	LBracket:   "[",
	RBracket:   "]",
	Lt:         "<",
	Gt:         ">",
	Semicolon:  ";",
	Comma:      ",",
	Colon:      ":",
	ColonColon: "::",
	Bang:       "!",
	Dot:        ".",
	DotDot:     "..",
	Arrow:      "->",
	Hash:       "#",
	Amp:        "&",
	Star:       "*",
	Eq:         "=",
	Plus:       "+",
	Minus:      "-",
	Question:   "?",
	Apostrophe: "'",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}
