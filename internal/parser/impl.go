package parser

import (
	"strings"

	"cohere/internal/ast"
	"cohere/internal/diag"
	"cohere/internal/source"
	"cohere/internal/token"
)

// parseImplItem разбирает все формы impl:
//
//	impl<G> Type { ... }                 inherent
//	impl<G> Trait for Type { ... }       positive
//	impl<G> !Trait for Type { ... }      negative
//	impl Trait for .. { ... }            default
//
// с необязательным `unsafe` перед `impl`.
func (p *Parser) parseImplItem(start source.Span, unsafeTok *token.Token) (ast.ItemID, bool) {
	implTok := p.advance() // impl
	headerStart := implTok.Span
	unsafety := ast.Safe
	var (
		unsafeSpan  source.Span
		unsafeTrail string
	)
	if unsafeTok != nil {
		unsafety = ast.Unsafe
		unsafeSpan = unsafeTok.Span
		unsafeTrail = p.blankBetween(unsafeTok.Span, implTok.Span)
		headerStart = unsafeTok.Span
	}
	p.skipGenerics()

	polarity := ast.Positive
	var bang source.Span
	if p.at(token.Bang) {
		polarity = ast.Negative
		bang = p.advance().Span
	}

	// Первая часть заголовка: либо путь trait-а, либо self-тип inherent impl-а.
	firstStart := p.lx.Peek().Span
	var traitPath ast.Path
	isPath := p.lx.Peek().IsPathSegment() || p.at(token.ColonColon)
	if isPath {
		path, ok := p.parsePath()
		if !ok {
			return ast.NoItemID, false
		}
		traitPath = path
	}
	// хвост типа (`&'a T`, `[T; N]`, `dyn A + B`) до `for` или тела
	p.skipUntil(token.LBrace, token.KwWhere, token.Semicolon, token.KwFor)

	if !p.at(token.KwFor) {
		if p.lastSpan.End <= firstStart.Start {
			p.err(diag.SynUnexpectedToken, "expected a type after 'impl'")
			return ast.NoItemID, false
		}
		selfSpan := firstStart.Cover(p.lastSpan)
		if polarity == ast.Negative {
			p.report(diag.SynNegativeInherentImpl, diag.SevError, bang,
				"inherent impls cannot be negative")
			polarity = ast.Positive
		}
		p.skipWhere()
		header := headerStart.Cover(p.lastSpan)
		items, end, ok := p.parseImplBody()
		if !ok {
			return ast.NoItemID, false
		}
		return p.arenas.NewImpl(start.Cover(end), ast.ImplItem{
			Unsafety:   unsafety,
			Polarity:   polarity,
			SelfType:   p.sourceText(selfSpan),
			SelfSpan:   selfSpan,
			UnsafeSpan:  unsafeSpan,
			UnsafeTrail: unsafeTrail,
			Header:      header,
			Items:       items,
		}), true
	}

	forTok := p.advance()
	if !isPath {
		p.report(diag.SynUnexpectedToken, diag.SevError, firstStart.Cover(forTok.Span),
			"expected a trait path before 'for'")
		return ast.NoItemID, false
	}

	if p.at(token.DotDot) {
		dots := p.advance()
		p.skipWhere()
		header := headerStart.Cover(p.lastSpan)
		items, end, ok := p.parseImplBody()
		if !ok {
			return ast.NoItemID, false
		}
		if polarity == ast.Negative {
			p.report(diag.SynNegativeDefaultImpl, diag.SevError, bang.Cover(dots.Span),
				"negative default impls are not supported")
			return ast.NoItemID, true
		}
		return p.arenas.NewDefaultImpl(start.Cover(end), ast.DefaultImplItem{
			Unsafety:    unsafety,
			Trait:       traitPath,
			UnsafeSpan:  unsafeSpan,
			UnsafeTrail: unsafeTrail,
			Header:      header,
			Items:       items,
		}), true
	}

	selfStart := p.lx.Peek().Span
	p.skipUntil(token.LBrace, token.KwWhere, token.Semicolon)
	if p.lastSpan.End <= selfStart.Start {
		p.err(diag.SynUnexpectedToken, "expected a type after 'for'")
		return ast.NoItemID, false
	}
	selfSpan := selfStart.Cover(p.lastSpan)
	p.skipWhere()
	header := headerStart.Cover(p.lastSpan)
	items, end, ok := p.parseImplBody()
	if !ok {
		return ast.NoItemID, false
	}
	return p.arenas.NewImpl(start.Cover(end), ast.ImplItem{
		Unsafety:   unsafety,
		Polarity:   polarity,
		Trait:      traitPath,
		SelfType:   p.sourceText(selfSpan),
		SelfSpan:   selfSpan,
		UnsafeSpan:  unsafeSpan,
		UnsafeTrail: unsafeTrail,
		Header:      header,
		Items:       items,
	}), true
}

func (p *Parser) parseImplBody() ([]ast.ItemID, source.Span, bool) {
	open, ok := p.expect(token.LBrace, diag.SynExpectLBrace, "expected '{' to open impl body")
	if !ok {
		return nil, source.Span{}, false
	}
	items, end := p.parseItemList(open.Span)
	return items, end, true
}

func (p *Parser) sourceText(sp source.Span) string {
	return p.lx.File().Slice(sp)
}

// blankBetween returns the text between two tokens when it is only spaces
// and tabs, otherwise "".
func (p *Parser) blankBetween(a, b source.Span) string {
	gap := p.sourceText(source.Span{File: a.File, Start: a.End, End: b.Start})
	if strings.Trim(gap, " \t") != "" {
		return ""
	}
	return gap
}
