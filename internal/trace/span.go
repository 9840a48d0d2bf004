package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// Span is an open interval of work. A nil or disabled Span is inert.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	unit    string
	pass    string
	started time.Time
}

// Begin opens a span under the span carried by ctx and returns a context
// in which it is the current one.
func Begin(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	return begin(ctx, scope, name, nil)
}

// BeginUnit opens the span of one checked file. Every event nested under it
// carries the path.
func BeginUnit(ctx context.Context, path string) (*Span, context.Context) {
	return begin(ctx, ScopeUnit, "unit", func(f *frame) { f.unit, f.pass = path, "" })
}

// BeginPass opens one phase (parse, resolve, coherence) of the current unit.
func BeginPass(ctx context.Context, pass string) (*Span, context.Context) {
	return begin(ctx, ScopePass, pass, func(f *frame) { f.pass = pass })
}

func begin(ctx context.Context, scope Scope, name string, adjust func(*frame)) (*Span, context.Context) {
	f := frameOf(ctx)
	if adjust != nil {
		adjust(&f)
	}
	if !f.tracer.Enabled() {
		return nil, ctx
	}
	if !f.tracer.Level().ShouldEmit(scope) {
		// span не пишется, но единица и фаза доходят до вложенных событий
		return nil, context.WithValue(ctx, frameKey{}, f)
	}

	s := &Span{
		tracer:  f.tracer,
		id:      spanCounter.Add(1),
		parent:  f.span,
		scope:   scope,
		name:    name,
		unit:    f.unit,
		pass:    f.pass,
		started: time.Now(),
	}
	s.emit(KindBegin, 0, nil)
	f.span = s.id
	return s, context.WithValue(ctx, frameKey{}, f)
}

// End closes the span; attrs go on the end event.
func (s *Span) End(attrs ...Attr) time.Duration {
	if s == nil {
		return 0
	}
	elapsed := time.Since(s.started)
	s.emit(KindEnd, elapsed, attrs)
	return elapsed
}

// ID returns the span ID, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

func (s *Span) emit(kind Kind, elapsed time.Duration, attrs []Attr) {
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Seq:      seqCounter.Add(1),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Unit:     s.unit,
		Pass:     s.pass,
		Elapsed:  elapsed,
		Attrs:    attrs,
	})
}

// Point emits an instant event under the current span of ctx.
func Point(ctx context.Context, scope Scope, name string, attrs ...Attr) {
	f := frameOf(ctx)
	if !f.tracer.Enabled() || !f.tracer.Level().ShouldEmit(scope) {
		return
	}
	f.tracer.Emit(&Event{
		Time:     time.Now(),
		Seq:      seqCounter.Add(1),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: f.span,
		Name:     name,
		Unit:     f.unit,
		Pass:     f.pass,
		Attrs:    attrs,
	})
}
