package lexer

import (
	"cohere/internal/source"
	"cohere/internal/token"
)

// Lexer turns one .decl file into tokens. Comments and whitespace never
// reach the stream: they are attached to the next token as Leading.
type Lexer struct {
	file    *source.File
	cursor  Cursor
	opts    Options
	peeked  token.Token
	hasPeek bool
	hold    []token.Trivia // trivia перед ещё не выданным токеном
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

func (lx *Lexer) File() *source.File { return lx.file }

// Next returns the next significant token; after the end it keeps
// returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.hasPeek {
		lx.hasPeek = false
		return lx.peeked
	}
	lx.collectLeadingTrivia()
	tok := lx.scan()
	tok.Leading, lx.hold = lx.hold, nil
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	if !lx.hasPeek {
		lx.peeked = lx.Next()
		lx.hasPeek = true
	}
	return lx.peeked
}

// scan dispatches on the first byte at the cursor.
func (lx *Lexer) scan() token.Token {
	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.EmptySpan()}
	}
	switch ch := lx.cursor.Peek(); {
	case isIdentStartByte(ch), ch >= utf8RuneSelf:
		return lx.scanIdentOrKeyword()
	case isDec(ch):
		return lx.scanNumber()
	case ch == '"':
		return lx.scanString()
	default:
		return lx.scanOperatorOrPunct()
	}
}

// EmptySpan returns a zero-length span at the cursor.
func (lx *Lexer) EmptySpan() source.Span {
	return lx.cursor.SpanFrom(lx.cursor.Mark())
}

// All lexes the rest of the file; the result ends with EOF.
func (lx *Lexer) All() []token.Token {
	var out []token.Token
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}
