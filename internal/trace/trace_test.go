package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopeDriver, true},
		{LevelPhase, ScopeUnit, true},
		{LevelPhase, ScopePass, false},
		{LevelDetail, ScopePass, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
		{Level(42), ScopeDriver, false},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
}

func TestParseLevelAndMode(t *testing.T) {
	if l, err := ParseLevel(" DETAIL "); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	_, err := ParseLevel("loud")
	if err == nil || !strings.Contains(err.Error(), "off|error|phase|detail|debug") {
		t.Fatalf("ParseLevel(loud) error = %v", err)
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode = %v, %v", m, err)
	}
	if _, err := ParseMode(""); err == nil {
		t.Fatal("empty mode must be rejected")
	}
}

type ndjsonEvent struct {
	Kind   string            `json:"kind"`
	Scope  string            `json:"scope"`
	Name   string            `json:"name"`
	Span   uint64            `json:"span"`
	Parent uint64            `json:"parent"`
	Unit   string            `json:"unit"`
	Pass   string            `json:"pass"`
	Attrs  map[string]string `json:"attrs"`
}

func decodeAll(t *testing.T, data string) []ndjsonEvent {
	t.Helper()
	var out []ndjsonEvent
	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		var ev ndjsonEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("unmarshal %q: %v", line, err)
		}
		out = append(out, ev)
	}
	return out
}

func TestUnitAndPassReachNestedEvents(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelDebug, FormatNDJSON))

	root, ctx := Begin(ctx, ScopeDriver, "check-dir")
	unit, uctx := BeginUnit(ctx, "src/lib.decl")
	pass, pctx := BeginPass(uctx, "coherence")
	Point(pctx, ScopeNode, "violation", Str("code", "COH0200"))
	pass.End(Int("impls", 3), Int("violations", 1))
	unit.End(Bool("cached", false))
	root.End()

	events := decodeAll(t, buf.String())
	if len(events) != 7 {
		t.Fatalf("got %d events:\n%s", len(events), buf.String())
	}
	point := events[3]
	if point.Kind != "point" || point.Unit != "src/lib.decl" || point.Pass != "coherence" || point.Attrs["code"] != "COH0200" {
		t.Fatalf("violation point = %+v", point)
	}
	if point.Parent != pass.ID() {
		t.Fatalf("point parent = %d, want %d", point.Parent, pass.ID())
	}
	passEnd := events[4]
	if passEnd.Kind != "end" || passEnd.Parent != unit.ID() || passEnd.Attrs["impls"] != "3" {
		t.Fatalf("pass end = %+v", passEnd)
	}
	if events[0].Unit != "" || events[6].Unit != "" {
		t.Fatal("driver events must not carry a unit")
	}
}

func TestFilteredPassStillLabelsUnit(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	ctx := WithTracer(context.Background(), ring)
	unit, uctx := BeginUnit(ctx, "a.decl")
	pass, _ := BeginPass(uctx, "resolve")
	if pass != nil {
		t.Fatal("pass span must be inert at phase level")
	}
	pass.End()
	unit.End()
	events := ring.Snapshot()
	if len(events) != 2 || events[1].Unit != "a.decl" || events[1].Kind != KindEnd {
		t.Fatalf("events = %+v", events)
	}
}

func TestTextFormat(t *testing.T) {
	ev := &Event{
		Time:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Seq:     7,
		Kind:    KindEnd,
		Scope:   ScopePass,
		Name:    "resolve",
		Unit:    "lib.decl",
		Pass:    "resolve",
		Elapsed: 1500 * time.Microsecond,
		Attrs:   []Attr{Int("traits", 2)},
	}
	want := "03:04:05.000 #7     ◂ resolve [lib.decl] traits=2 in 1.5ms\n"
	if got := string(FormatEvent(ev, FormatText)); got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestRingTracerWrapsAround(t *testing.T) {
	tr := NewRingTracer(3, LevelDebug)
	ctx := WithTracer(context.Background(), tr)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ctx, ScopeNode, name)
	}
	events := tr.Snapshot()
	var names []string
	for _, ev := range events {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ","); got != "c,d,e" {
		t.Fatalf("snapshot order = %s", got)
	}

	var buf bytes.Buffer
	if err := tr.Dump(&buf, FormatText); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "trace ring: last 3 of 5 events\n") || strings.Count(buf.String(), "\n") != 4 {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestMultiTracerFansOut(t *testing.T) {
	a := NewRingTracer(8, LevelDebug)
	b := NewRingTracer(8, LevelDebug)
	m := NewMultiTracer(LevelDebug, a, b)
	unit, _ := BeginUnit(WithTracer(context.Background(), m), "a.decl")
	unit.End()
	if len(a.Snapshot()) != 2 || len(b.Snapshot()) != 2 {
		t.Fatalf("fan-out mismatch: %d, %d", len(a.Snapshot()), len(b.Snapshot()))
	}
	if RingOf(m) != a {
		t.Fatal("RingOf must find the first ring behind MultiTracer")
	}
	if RingOf(Nop) != nil {
		t.Fatal("Nop keeps no ring")
	}
}

func TestNopContext(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop {
		t.Fatal("empty context must yield Nop")
	}
	span, got := Begin(ctx, ScopeDriver, "check")
	if span != nil || got != ctx {
		t.Fatal("disabled tracing must not allocate spans or contexts")
	}
	if span.ID() != 0 || span.End() != 0 {
		t.Fatal("nil span must be inert")
	}
}

func TestHeartbeatNamesOldestUnit(t *testing.T) {
	ring := NewRingTracer(64, LevelDetail)
	tr := WithHeartbeat(ring, time.Hour)
	hb, ok := tr.(*Heartbeat)
	if !ok {
		t.Fatalf("WithHeartbeat returned %T", tr)
	}
	defer hb.Close()
	if RingOf(tr) != ring {
		t.Fatal("RingOf must look through Heartbeat")
	}

	ctx := WithTracer(context.Background(), tr)
	slow, sctx := BeginUnit(ctx, "slow.decl")
	BeginPass(sctx, "resolve")
	time.Sleep(2 * time.Millisecond)
	fast, _ := BeginUnit(ctx, "fast.decl")

	ev := hb.pulse(time.Now())
	if ev.Unit != "slow.decl" || ev.Pass != "resolve" || ev.Attrs[1] != Int("in_flight", 2) {
		t.Fatalf("heartbeat = %+v", ev)
	}
	slow.End()
	fast.End()
	if ev := hb.pulse(time.Now()); ev.Unit != "" || ev.Attrs[1] != Int("in_flight", 0) {
		t.Fatalf("idle heartbeat = %+v", ev)
	}
	if WithHeartbeat(ring, 0) != Tracer(ring) || WithHeartbeat(Nop, time.Second) != Nop {
		t.Fatal("heartbeat must not wrap when disabled")
	}
}

func TestNewSelectsFormatAndMode(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, Path: "trace.ndjson"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	span, _ := Begin(WithTracer(context.Background(), tr), ScopeDriver, "check")
	span.End()
	if !strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("expected NDJSON output, got %q", buf.String())
	}
	if RingOf(tr) == nil {
		t.Fatal("both mode must keep a ring")
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	off, err := New(Config{Level: LevelOff})
	if err != nil || off.Enabled() {
		t.Fatal("LevelOff must produce a disabled tracer")
	}
	if _, err := New(Config{Level: LevelPhase}); err == nil {
		t.Fatal("missing mode must be rejected")
	}
}
