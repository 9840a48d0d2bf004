package source

import (
	"fmt"
	"sync"
	"testing"
)

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID must map to empty string, got %q, ok=%v", s, ok)
	}

	id1 := interner.Intern("Send")
	if id1 == NoStringID {
		t.Fatal("Intern returned NoStringID for non-empty string")
	}
	if id2 := interner.Intern("Send"); id1 != id2 {
		t.Fatalf("Intern not stable: %d != %d", id1, id2)
	}
	if s := interner.MustLookup(id1); s != "Send" {
		t.Fatalf("Lookup = %q", s)
	}
	if id3 := interner.Intern("Sync"); id3 == id1 {
		t.Fatal("different strings must get different IDs")
	}
	if interner.Len() != 3 {
		t.Fatalf("Len = %d, want 3", interner.Len())
	}
	if _, ok := interner.Lookup(StringID(99)); ok {
		t.Fatal("Lookup accepted an unknown ID")
	}
}

func TestInternerMustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewInterner().MustLookup(StringID(5))
}

func TestInternerConcurrentIntern(t *testing.T) {
	interner := NewInterner()
	const workers = 8
	const names = 200

	var wg sync.WaitGroup
	ids := make([][]StringID, workers)
	for w := range workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			ids[w] = make([]StringID, names)
			for i := range names {
				ids[w][i] = interner.Intern(fmt.Sprintf("trait%d", i))
			}
		}(w)
	}
	wg.Wait()

	for w := 1; w < workers; w++ {
		for i := range names {
			if ids[w][i] != ids[0][i] {
				t.Fatalf("worker %d got id %d for trait%d, worker 0 got %d", w, ids[w][i], i, ids[0][i])
			}
		}
	}
	if interner.Len() != names+1 {
		t.Fatalf("Len = %d, want %d", interner.Len(), names+1)
	}
}
