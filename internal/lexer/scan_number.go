package lexer

import "cohere/internal/token"

// scanNumber читает десятичный литерал с разделителями `_`.
// Числа встречаются только внутри пропускаемых тел (`[u8; 4]` и т.п.).
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if !isDec(b) && b != '_' && !isIdentStartByte(b) {
			break
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.IntLit, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
