// Package trace records what a check is doing and where the time goes.
//
// Tracing is off by default. The check command enables it with
//
//	cohere check --trace=- --trace-level=detail ./src
//
// Spans nest as driver → unit → pass → node. A unit span belongs to one
// .decl file; pass spans are parse, resolve and coherence. The unit path
// and pass name travel through context and are stamped on every nested
// event, so NDJSON output can be grouped by file without rebuilding the tree:
//
//	span, ctx := trace.BeginUnit(ctx, "src/lib.decl")
//	pass, pctx := trace.BeginPass(ctx, "coherence")
//	trace.Point(pctx, trace.ScopeNode, "violation", trace.Str("code", "COH0200"))
//	pass.End(trace.Int("impls", 3))
//	span.End()
//
// StreamTracer writes events as they arrive, RingTracer keeps the last N for
// a dump on panic, MultiTracer feeds both. Heartbeat wraps any of them and
// periodically reports the oldest unit still in flight.
package trace
