package lexer

import (
	"fmt"

	"cohere/internal/diag"
	"cohere/internal/token"
)

var singlePunct = [256]token.Kind{
	'{':  token.LBrace,
	'}':  token.RBrace,
	'(':  token.LParen,
	')':  token.RParen,
	'[':  token.LBracket,
	']':  token.RBracket,
	'<':  token.Lt,
	'>':  token.Gt,
	';':  token.Semicolon,
	',':  token.Comma,
	':':  token.Colon,
	'!':  token.Bang,
	'.':  token.Dot,
	'#':  token.Hash,
	'&':  token.Amp,
	'*':  token.Star,
	'=':  token.Eq,
	'+':  token.Plus,
	'-':  token.Minus,
	'?':  token.Question,
	'\'': token.Apostrophe,
}

// Жадность: сначала 2-символьные (`::`, `..`, `->`), затем 1-символьные.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: k, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}

	switch {
	case lx.try2(':', ':'):
		return emit(token.ColonColon)
	case lx.try2('.', '.'):
		return emit(token.DotDot)
	case lx.try2('-', '>'):
		return emit(token.Arrow)
	}

	b := lx.cursor.Peek()
	if k := singlePunct[b]; k != token.Invalid {
		lx.cursor.Bump()
		return emit(k)
	}

	// неизвестный символ: съедаем целую руну, чтобы не резать UTF-8
	r, _ := lx.peekRune()
	lx.bumpRune()
	tok := emit(token.Invalid)
	lx.report(diag.LexUnknownChar, tok.Span, fmt.Sprintf("unknown character %q", r))
	return tok
}
