package parser

import (
	"cohere/internal/ast"
	"cohere/internal/diag"
	"cohere/internal/source"
	"cohere/internal/token"
)

// parseAttrs разбирает `#[name ...]`; аргументы пропускаются.
func (p *Parser) parseAttrs() []ast.Attr {
	var attrs []ast.Attr
	for p.at(token.Hash) {
		hash := p.advance()
		if p.at(token.Bang) { // внутренний атрибут `#![...]`
			p.advance()
		}
		if !p.at(token.LBracket) {
			p.err(diag.SynUnexpectedToken, "expected '[' after '#'")
			return attrs
		}
		p.advance()
		name := source.NoStringID
		if p.at(token.Ident) {
			name = p.arenas.StringsInterner.Intern(p.advance().Text)
		}
		p.skipUntil(token.RBracket)
		end, _ := p.expect(token.RBracket, diag.SynUnexpectedToken, "expected ']' to close attribute")
		attrs = append(attrs, ast.Attr{Name: name, Span: hash.Span.Cover(end.Span)})
	}
	return attrs
}

// parseVisibility — `pub` или `pub(crate)` и т.п.
func (p *Parser) parseVisibility() ast.Visibility {
	if !p.at(token.KwPub) {
		return ast.VisPrivate
	}
	p.advance()
	if p.at(token.LParen) {
		p.skipBalanced()
	}
	return ast.VisPublic
}

// parseModItem: "mod" IDENT ( ";" | "{" item* "}" )
func (p *Parser) parseModItem(start source.Span) (ast.ItemID, bool) {
	p.advance() // mod
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	mod := ast.ModItem{Name: name, NameSpan: nameSpan}
	switch {
	case p.at(token.Semicolon):
		end := p.advance()
		return p.arenas.NewMod(start.Cover(end.Span), mod), true
	case p.at(token.LBrace):
		open := p.advance()
		items, end := p.parseItemList(open.Span)
		mod.Inline = true
		mod.Items = items
		return p.arenas.NewMod(start.Cover(end), mod), true
	default:
		p.err(diag.SynExpectLBrace, "expected '{' or ';' after module name")
		return ast.NoItemID, false
	}
}

// parseTraitItem: "unsafe"? "trait" IDENT generics? (":" bounds)? where? ( ";" | "{" item* "}" )
func (p *Parser) parseTraitItem(start source.Span, unsafeTok *token.Token) (ast.ItemID, bool) {
	headerStart := p.advance().Span // trait
	trait := ast.TraitItem{Unsafety: ast.Safe}
	if unsafeTok != nil {
		trait.Unsafety = ast.Unsafe
		headerStart = unsafeTok.Span
	}
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	trait.Name = name
	trait.NameSpan = nameSpan
	p.skipGenerics()
	if p.at(token.Colon) {
		p.advance()
		p.skipUntil(token.LBrace, token.Semicolon, token.KwWhere)
	}
	p.skipWhere()
	trait.Header = headerStart.Cover(p.lastSpan)

	switch {
	case p.at(token.Semicolon):
		end := p.advance()
		return p.arenas.NewTrait(start.Cover(end.Span), trait), true
	case p.at(token.LBrace):
		open := p.advance()
		items, end := p.parseItemList(open.Span)
		trait.Items = items
		return p.arenas.NewTrait(start.Cover(end), trait), true
	default:
		p.err(diag.SynExpectLBrace, "expected '{' or ';' after trait header")
		return ast.NoItemID, false
	}
}

// parseStructItem: ("struct" | "enum" | "type") IDENT generics? <body>
// Тело не интересует проверку когерентности и пропускается целиком.
func (p *Parser) parseStructItem(start source.Span) (ast.ItemID, bool) {
	kw := p.advance()
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	item := ast.StructItem{Name: name, NameSpan: nameSpan, Keyword: kw.Text}
	p.skipGenerics()

	switch {
	case kw.Kind == token.KwType:
		// `type A = B;`, `type Item;`, `type Item: Bound;`
		p.skipUntil(token.Semicolon)
	case p.at(token.LParen):
		p.skipBalanced()
		p.skipWhere()
	default:
		p.skipWhere()
		if p.at(token.LBrace) {
			end := p.skipBalanced()
			return p.arenas.NewStruct(start.Cover(end), item), true
		}
	}
	end, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after "+kw.Text+" declaration")
	if !ok {
		return ast.NoItemID, false
	}
	return p.arenas.NewStruct(start.Cover(end.Span), item), true
}

// parseFnItem: "unsafe"? "fn" IDENT generics? "(" balanced ")" ("->" type)? where? ( ";" | body )
func (p *Parser) parseFnItem(start source.Span, unsafeTok *token.Token) (ast.ItemID, bool) {
	p.advance() // fn
	fn := ast.FnItem{Unsafety: ast.Safe}
	if unsafeTok != nil {
		fn.Unsafety = ast.Unsafe
	}
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	fn.Name = name
	fn.NameSpan = nameSpan
	p.skipGenerics()
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); !ok {
		return ast.NoItemID, false
	}
	p.skipUntil(token.RParen)
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken, "expected ')' to close parameter list"); !ok {
		return ast.NoItemID, false
	}
	if p.at(token.Arrow) {
		p.advance()
		p.skipUntil(token.LBrace, token.Semicolon, token.KwWhere)
	}
	p.skipWhere()

	switch {
	case p.at(token.Semicolon):
		end := p.advance()
		return p.arenas.NewFn(start.Cover(end.Span), fn), true
	case p.at(token.LBrace):
		items, end := p.parseFnBody()
		fn.Items = items
		return p.arenas.NewFn(start.Cover(end), fn), true
	default:
		p.err(diag.SynExpectLBrace, "expected '{' or ';' after function signature")
		return ast.NoItemID, false
	}
}

// parseFnBody пропускает операторы тела функции, но собирает вложенные
// элементы: item может стоять в любом блоке, включая `unsafe { ... }`.
func (p *Parser) parseFnBody() ([]ast.ItemID, source.Span) {
	open := p.advance() // {
	items := make([]ast.ItemID, 0)
	for {
		tok := p.lx.Peek()
		switch {
		case tok.Kind == token.RBrace:
			return items, p.advance().Span
		case tok.Kind == token.EOF:
			p.report(diag.SynUnclosedBrace, diag.SevError, open.Span, "unclosed '{'")
			return items, p.lastSpan
		case tok.Kind == token.LBrace:
			inner, _ := p.parseFnBody()
			items = append(items, inner...)
		case tok.Kind == token.Hash:
			// атрибуты на операторах и вложенных элементах не сохраняются
			p.parseAttrs()
		case tok.Kind == token.KwUnsafe:
			unsafeTok := p.advance()
			if p.at(token.LBrace) {
				inner, _ := p.parseFnBody()
				items = append(items, inner...)
				continue
			}
			if id, ok := p.parseUnsafeItem(unsafeTok.Span, unsafeTok); ok && id.IsValid() {
				items = append(items, id)
			}
		case token.ItemStarter(tok.Kind):
			id, ok := p.parseItem()
			if !ok {
				p.resyncTop()
				continue
			}
			if id.IsValid() {
				items = append(items, id)
			}
		default:
			p.advance()
		}
	}
}

// parseUnsafeItem продолжает разбор после уже съеденного `unsafe`.
func (p *Parser) parseUnsafeItem(start source.Span, unsafeTok token.Token) (ast.ItemID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwTrait:
		return p.parseTraitItem(start, &unsafeTok)
	case token.KwImpl:
		return p.parseImplItem(start, &unsafeTok)
	case token.KwFn:
		return p.parseFnItem(start, &unsafeTok)
	default:
		p.err(diag.SynUnexpectedToken, "expected 'trait', 'impl' or 'fn' after 'unsafe'")
		return ast.NoItemID, false
	}
}

// parseUseItem: "use" path ("::" "{" ... "}" | "::" "*")? ("as" IDENT)? ";"
// Импорты не участвуют в разрешении trait-ов и хранятся только для полноты дерева.
func (p *Parser) parseUseItem(start source.Span) (ast.ItemID, bool) {
	p.advance() // use
	path, ok := p.parsePath()
	if !ok {
		return ast.NoItemID, false
	}
	p.skipUntil(token.Semicolon)
	end, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after use declaration")
	if !ok {
		return ast.NoItemID, false
	}
	return p.arenas.NewUse(start.Cover(end.Span), ast.UseItem{Path: path}), true
}

// parsePath: ("::")? segment ("::" segment)*, где generic-аргументы
// (`Foo<T>` и `Foo::<T>`) пропускаются.
func (p *Parser) parsePath() (ast.Path, bool) {
	var path ast.Path
	if p.at(token.ColonColon) {
		p.advance()
	}
	for {
		tok := p.lx.Peek()
		var seg ast.PathSegment
		switch tok.Kind {
		case token.Ident:
			seg = ast.PathSegment{Kind: ast.SegIdent, Name: p.arenas.StringsInterner.Intern(tok.Text), Span: tok.Span}
		case token.KwCrate:
			seg = ast.PathSegment{Kind: ast.SegCrate, Span: tok.Span}
		case token.KwSelf:
			seg = ast.PathSegment{Kind: ast.SegSelf, Span: tok.Span}
		case token.KwSuper:
			seg = ast.PathSegment{Kind: ast.SegSuper, Span: tok.Span}
		default:
			if len(path.Segments) > 0 && (tok.Kind == token.LBrace || tok.Kind == token.Star) {
				// `use a::{b, c}` / `use a::*`: хвост обрабатывает вызывающий
				return path, true
			}
			p.err(diag.SynExpectIdentifier, "expected path segment, got \""+tok.Text+"\"")
			return path, false
		}
		p.advance()
		if len(path.Segments) == 0 {
			path.Span = seg.Span
		}
		path.Segments = append(path.Segments, seg)
		path.Span = path.Span.Cover(seg.Span)

		p.skipGenerics()
		if !p.at(token.ColonColon) {
			return path, true
		}
		p.advance()
		if p.at(token.Lt) {
			p.skipGenerics()
			if !p.at(token.ColonColon) {
				return path, true
			}
			p.advance()
		}
	}
}
