package parser

import (
	"cohere/internal/diag"
	"cohere/internal/source"
	"cohere/internal/token"
)

// advance — съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan — возвращает лучший span для диагностики.
// На EOF указываем сразу после последнего съеденного токена.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF && p.lastSpan.End > 0 {
		return p.lastSpan.ZeroideToEnd()
	}
	return peek.Span
}

// expect — ожидаем конкретный токен. Если нет — репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	diagSpan := p.getDiagnosticSpan()
	p.report(code, diag.SevError, diagSpan, msg)
	return token.Token{Kind: token.Invalid, Span: diagSpan, Text: p.lx.Peek().Text}, false
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if sev == diag.SevError {
		p.errors++
	}
	if p.opts.Reporter == nil || p.enough() {
		return false
	}
	p.opts.Reporter.Report(diag.New(sev, code, sp, msg))
	return true
}

func closerOf(k token.Kind) token.Kind {
	switch k {
	case token.LBrace:
		return token.RBrace
	case token.LParen:
		return token.RParen
	case token.LBracket:
		return token.RBracket
	case token.Lt:
		return token.Gt
	default:
		return token.Invalid
	}
}

// skipBalanced съедает группу, начиная с открывающей скобки под курсором,
// до парной закрывающей. Угловые скобки считаются только если группа
// открыта '<'. Возвращает span последнего токена группы.
func (p *Parser) skipBalanced() source.Span {
	open := p.advance()
	stack := []token.Kind{closerOf(open.Kind)}
	angles := open.Kind == token.Lt
	for len(stack) > 0 {
		tok := p.lx.Peek()
		switch tok.Kind {
		case token.EOF:
			p.report(diag.SynUnclosedBrace, diag.SevError, open.Span, "unclosed '"+open.Text+"'")
			return p.lastSpan
		case token.LBrace, token.LParen, token.LBracket:
			stack = append(stack, closerOf(tok.Kind))
		case token.Lt:
			if angles {
				stack = append(stack, token.Gt)
			}
		case token.RBrace, token.RParen, token.RBracket, token.Gt:
			if tok.Kind == token.Gt && !angles {
				break
			}
			if stack[len(stack)-1] != tok.Kind {
				p.report(diag.SynUnexpectedToken, diag.SevError, tok.Span, "mismatched '"+tok.Text+"'")
				if tok.Kind == token.RBrace {
					// не съедаем чужую '}': она закроет внешний блок
					return p.lastSpan
				}
				p.advance()
				continue
			}
			stack = stack[:len(stack)-1]
		}
		p.advance()
	}
	return p.lastSpan
}

// skipGenerics пропускает `<...>`, если он под курсором.
func (p *Parser) skipGenerics() {
	if p.at(token.Lt) {
		p.skipBalanced()
	}
}

// skipUntil пропускает токены до одного из stop на нулевой глубине вложенности.
func (p *Parser) skipUntil(stop ...token.Kind) {
	for !p.at(token.EOF) && !p.atOr(stop...) {
		switch p.lx.Peek().Kind {
		case token.LBrace, token.LParen, token.LBracket, token.Lt:
			p.skipBalanced()
		case token.RBrace, token.RParen, token.RBracket:
			return
		default:
			p.advance()
		}
	}
}

// skipWhere пропускает `where ...` до '{' или ';'.
func (p *Parser) skipWhere() {
	if p.at(token.KwWhere) {
		p.advance()
		p.skipUntil(token.LBrace, token.Semicolon)
	}
}
