package trace

import "context"

// frame — то, что трассировка несёт через context: трейсер, открытый span,
// а также единица и фаза, к которым относятся вложенные события.
type frame struct {
	tracer Tracer
	span   uint64
	unit   string
	pass   string
}

type frameKey struct{}

func frameOf(ctx context.Context) frame {
	if ctx != nil {
		if f, ok := ctx.Value(frameKey{}).(frame); ok {
			return f
		}
	}
	return frame{tracer: Nop}
}

// WithTracer attaches t to ctx; nil means tracing off.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	f := frameOf(ctx)
	f.tracer = t
	return context.WithValue(ctx, frameKey{}, f)
}

// FromContext returns the tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return frameOf(ctx).tracer
}
