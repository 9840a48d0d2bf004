package diag

import (
	"cmp"
	"slices"
)

const (
	defaultBagCap = 100
	maxBagCap     = 0xFFFF
)

// Bag holds the diagnostics of one unit, up to a fixed cap.
type Bag struct {
	items []*Diagnostic
	max   uint16
}

// NewBag creates a bag holding at most max diagnostics; max <= 0 means 100.
func NewBag(max int) *Bag {
	if max <= 0 {
		max = defaultBagCap
	}
	max = min(max, maxBagCap)
	return &Bag{
		items: make([]*Diagnostic, 0, min(max, 64)),
		max:   uint16(max), // #nosec G115 -- ограничено выше
	}
}

// Add возвращает false, если d == nil или лимит уже достигнут.
func (b *Bag) Add(d *Diagnostic) bool {
	if d == nil || len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 { return b.max }

func (b *Bag) Len() int { return len(b.items) }

// Items returns the backing slice; callers must not modify it.
func (b *Bag) Items() []*Diagnostic { return b.items }

// Worst returns the highest severity in the bag and false when it is empty.
func (b *Bag) Worst() (Severity, bool) {
	if len(b.items) == 0 {
		return SevInfo, false
	}
	worst := SevInfo
	for _, d := range b.items {
		worst = max(worst, d.Severity)
	}
	return worst, true
}

func (b *Bag) HasErrors() bool {
	s, ok := b.Worst()
	return ok && s >= SevError
}

func (b *Bag) HasWarnings() bool {
	s, ok := b.Worst()
	return ok && s >= SevWarning
}

// CountCode returns how many diagnostics carry code.
func (b *Bag) CountCode(code Code) int {
	n := 0
	for _, d := range b.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Merge appends everything from other, growing the cap when needed.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	if total := len(b.items) + len(other.items); total > int(b.max) {
		b.max = uint16(min(total, maxBagCap)) // #nosec G115
	}
	for _, d := range other.items {
		b.Add(d)
	}
}

// Sort orders by file, start, end, then severity (worst first) and code.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y *Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}
