package diag

import "sync"

// Reporter receives diagnostics from a phase. Implementations must not
// modify d; the same value may be handed to several sinks.
type Reporter interface {
	Report(d *Diagnostic)
}

// BagReporter collects into a Bag and drops what does not fit.
type BagReporter struct{ Bag *Bag }

func (r *BagReporter) Report(d *Diagnostic) {
	if r != nil && r.Bag != nil {
		r.Bag.Add(d)
	}
}

// MultiReporter forwards each diagnostic to every non-nil reporter in order.
type MultiReporter []Reporter

func (m MultiReporter) Report(d *Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}

// LockedReporter serializes Report calls so one sink can be shared by units
// checked on different goroutines.
type LockedReporter struct {
	mu   sync.Mutex
	next Reporter
}

func NewLockedReporter(next Reporter) *LockedReporter {
	return &LockedReporter{next: next}
}

func (r *LockedReporter) Report(d *Diagnostic) {
	if r == nil || r.next == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next.Report(d)
}

// Emit reports d when r is set; phases treat a nil Reporter as "discard".
func Emit(r Reporter, d *Diagnostic) {
	if r != nil && d != nil {
		r.Report(d)
	}
}
