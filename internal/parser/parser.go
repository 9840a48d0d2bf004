package parser

import (
	"slices"

	"cohere/internal/ast"
	"cohere/internal/diag"
	"cohere/internal/lexer"
	"cohere/internal/source"
	"cohere/internal/token"
)

type Options struct {
	MaxErrors uint // 0 = без ограничения
	Reporter  diag.Reporter
}

type Result struct {
	File   ast.FileID
	Errors uint // сколько синтаксических ошибок встретилось, включая подавленные лимитом
}

// Parser — состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer
	arenas   *ast.Builder
	file     ast.FileID
	opts     Options
	errors   uint
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
}

// ParseFile — входная точка для разбора одного файла.
func ParseFile(lx *lexer.Lexer, arenas *ast.Builder, opts Options) Result {
	p := Parser{
		lx:       lx,
		arenas:   arenas,
		file:     arenas.Files.New(lx.EmptySpan()),
		opts:     opts,
		lastSpan: lx.EmptySpan(),
	}

	p.parseItems()
	return Result{File: p.file, Errors: p.errors}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// enough: лимит ошибок исчерпан, дальше молчим.
func (p *Parser) enough() bool {
	return p.opts.MaxErrors != 0 && p.errors > p.opts.MaxErrors
}

// parseItems — основной цикл верхнего уровня: пока не EOF — parseItem.
func (p *Parser) parseItems() {
	startSpan := p.lx.Peek().Span
	for !p.at(token.EOF) {
		if p.at(token.RBrace) {
			p.err(diag.SynUnexpectedToken, "unexpected '}' at top level")
			p.advance()
			continue
		}
		itemID, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			continue
		}
		if itemID.IsValid() {
			p.arenas.PushItem(p.file, itemID)
		}
	}
	p.arenas.Files.Get(p.file).Span = startSpan.Cover(p.lx.Peek().Span)
}

// parseItemList разбирает `item* }` после уже съеденной `{`.
// Возвращает собранные элементы и span закрывающей скобки.
func (p *Parser) parseItemList(open source.Span) ([]ast.ItemID, source.Span) {
	items := make([]ast.ItemID, 0)
	for {
		switch {
		case p.at(token.RBrace):
			return items, p.advance().Span
		case p.at(token.EOF):
			p.report(diag.SynUnclosedBrace, diag.SevError, open, "unclosed '{'")
			return items, p.lastSpan
		}
		itemID, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			continue
		}
		if itemID.IsValid() {
			items = append(items, itemID)
		}
	}
}

// parseItem выбирает по первому токену нужный распознаватель.
// ok && !id.IsValid() означает: конструкция съедена, но элемент отброшен.
func (p *Parser) parseItem() (ast.ItemID, bool) {
	attrs := p.parseAttrs()
	start := p.lx.Peek().Span
	vis := p.parseVisibility()

	var id ast.ItemID
	var ok bool
	switch p.lx.Peek().Kind {
	case token.KwMod:
		id, ok = p.parseModItem(start)
	case token.KwUnsafe:
		unsafeTok := p.advance()
		switch p.lx.Peek().Kind {
		case token.KwTrait:
			id, ok = p.parseTraitItem(start, &unsafeTok)
		case token.KwImpl:
			id, ok = p.parseImplItem(start, &unsafeTok)
		case token.KwFn:
			id, ok = p.parseFnItem(start, &unsafeTok)
		default:
			p.err(diag.SynUnexpectedToken, "expected 'trait', 'impl' or 'fn' after 'unsafe'")
			return ast.NoItemID, false
		}
	case token.KwTrait:
		id, ok = p.parseTraitItem(start, nil)
	case token.KwImpl:
		id, ok = p.parseImplItem(start, nil)
	case token.KwStruct, token.KwEnum, token.KwType:
		id, ok = p.parseStructItem(start)
	case token.KwFn:
		id, ok = p.parseFnItem(start, nil)
	case token.KwUse:
		id, ok = p.parseUseItem(start)
	default:
		p.report(diag.SynUnexpectedTopLevel, diag.SevError, p.getDiagnosticSpan(),
			"expected an item, got \""+p.lx.Peek().Text+"\"")
		return ast.NoItemID, false
	}
	if ok && id.IsValid() {
		p.arenas.SetMeta(id, vis, attrs)
	}
	return id, ok
}

// resyncTop — восстановление после ошибки: прокручиваем до ';' (съедаем),
// до стартового токена следующего item, до '}' текущего блока или EOF.
// Вложенные блоки пропускаются целиком.
func (p *Parser) resyncTop() {
	for {
		tok := p.lx.Peek()
		switch {
		case tok.Kind == token.EOF || tok.Kind == token.RBrace:
			return
		case tok.Kind == token.Semicolon:
			p.advance()
			return
		case tok.Kind == token.LBrace || tok.Kind == token.LParen || tok.Kind == token.LBracket:
			p.skipBalanced()
		case token.ItemStarter(tok.Kind):
			return
		default:
			p.advance()
		}
	}
}

// parseIdent — ожидает Ident и интернирует его.
// На ошибке репортит SynExpectIdentifier.
func (p *Parser) parseIdent() (source.StringID, source.Span, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.arenas.StringsInterner.Intern(tok.Text), tok.Span, true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got \""+p.lx.Peek().Text+"\"")
	return source.NoStringID, source.Span{}, false
}
