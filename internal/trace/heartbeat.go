package trace

import (
	"sync"
	"time"
)

// Heartbeat wraps a tracer and, every interval, emits an event naming the
// units still in flight: the oldest one, the pass it is in, and for how long.
// A unit that stays oldest across many heartbeats is where the check hangs.
type Heartbeat struct {
	Tracer
	interval time.Duration

	mu   sync.Mutex
	open map[uint64]*inflight // span юнита -> состояние
	beat int

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

type inflight struct {
	unit  string
	pass  string
	since time.Time
}

// WithHeartbeat returns t wrapped in a Heartbeat, or t itself when the
// interval is not positive or tracing is off.
func WithHeartbeat(t Tracer, interval time.Duration) Tracer {
	if t == nil || !t.Enabled() || interval <= 0 {
		return t
	}
	h := &Heartbeat{
		Tracer:   t,
		interval: interval,
		open:     make(map[uint64]*inflight),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

// Emit tracks unit and pass boundaries, then forwards ev.
func (h *Heartbeat) Emit(ev *Event) {
	h.mu.Lock()
	switch {
	case ev.Scope == ScopeUnit && ev.Kind == KindBegin:
		h.open[ev.SpanID] = &inflight{unit: ev.Unit, since: ev.Time}
	case ev.Scope == ScopeUnit && ev.Kind == KindEnd:
		delete(h.open, ev.SpanID)
	case ev.Scope == ScopePass && ev.Kind == KindBegin:
		if u := h.open[ev.ParentID]; u != nil {
			u.pass = ev.Pass
		}
	}
	h.mu.Unlock()
	h.Tracer.Emit(ev)
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			h.Tracer.Emit(h.pulse(now))
		case <-h.stop:
			return
		}
	}
}

func (h *Heartbeat) pulse(now time.Time) *Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.beat++
	ev := &Event{
		Time:  now,
		Seq:   seqCounter.Add(1),
		Kind:  KindHeartbeat,
		Scope: ScopeDriver,
		Name:  "heartbeat",
		Attrs: []Attr{Int("beat", h.beat), Int("in_flight", len(h.open))},
	}
	var oldest *inflight
	for _, u := range h.open {
		if oldest == nil || u.since.Before(oldest.since) || (u.since.Equal(oldest.since) && u.unit < oldest.unit) {
			oldest = u
		}
	}
	if oldest != nil {
		ev.Unit, ev.Pass = oldest.unit, oldest.pass
		ev.Attrs = append(ev.Attrs, Str("for", now.Sub(oldest.since).Round(time.Millisecond).String()))
	}
	return ev
}

// Close stops the ticker and closes the wrapped tracer. Safe to call twice.
func (h *Heartbeat) Close() error {
	h.once.Do(func() {
		close(h.stop)
		<-h.done
	})
	return h.Tracer.Close()
}
