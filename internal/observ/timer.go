package observ

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Phase accumulates one driver stage over every unit that ran it.
type Phase struct {
	Name    string
	Count   int
	Dur     time.Duration
	Slowest string // единица с самым долгим замером, "" для общих фаз
	Peak    time.Duration
}

// Timer sums stage durations. Units are checked in parallel, so Dur is CPU-like
// time and can exceed the wall clock. Safe for concurrent use; a nil Timer
// records nothing.
type Timer struct {
	mu     sync.Mutex
	start  time.Time
	phases []*Phase
	byName map[string]*Phase
}

func NewTimer() *Timer {
	return &Timer{start: time.Now(), byName: make(map[string]*Phase)}
}

// Measure starts timing stage for unit (may be ""); call the result to stop.
func (t *Timer) Measure(stage, unit string) func() {
	if t == nil {
		return func() {}
	}
	begin := time.Now()
	return func() { t.Add(stage, unit, time.Since(begin)) }
}

// Add records one run of stage; phases keep first-seen order.
func (t *Timer) Add(stage, unit string, d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.byName[stage]
	if p == nil {
		p = &Phase{Name: stage}
		t.phases = append(t.phases, p)
		t.byName[stage] = p
	}
	p.Count++
	p.Dur += d
	if unit != "" && d >= p.Peak {
		p.Peak, p.Slowest = d, unit
	}
}

// PhaseReport is the serialisable form of Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	DurationMS float64 `json:"duration_ms"`
	Slowest    string  `json:"slowest,omitempty"`
	PeakMS     float64 `json:"peak_ms,omitempty"`
}

// Report — TotalMS сумма фаз, WallMS с момента NewTimer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	WallMS  float64       `json:"wall_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	r := Report{WallMS: millis(time.Since(t.start))}
	var total time.Duration
	for _, p := range t.phases {
		total += p.Dur
		r.Phases = append(r.Phases, PhaseReport{
			Name:       p.Name,
			Count:      p.Count,
			DurationMS: millis(p.Dur),
			Slowest:    p.Slowest,
			PeakMS:     millis(p.Peak),
		})
	}
	r.TotalMS = millis(total)
	return r
}

// Summary renders the report for stderr, slowest stage first:
//
//	timings:
//	  coherence         1.20 ms  x4  slowest lib.decl 0.61 ms
//	  wall              3.02 ms
func (t *Timer) Summary() string {
	r := t.Report()
	phases := slices.Clone(r.Phases)
	slices.SortStableFunc(phases, func(a, b PhaseReport) int { return cmp.Compare(b.DurationMS, a.DurationMS) })

	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range phases {
		fmt.Fprintf(&sb, "  %-12s %8.2f ms  x%d", p.Name, p.DurationMS, p.Count)
		if p.Slowest != "" && p.Count > 1 {
			fmt.Fprintf(&sb, "  slowest %s %.2f ms", p.Slowest, p.PeakMS)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-12s %8.2f ms\n", "wall", r.WallMS)
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
