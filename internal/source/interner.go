package source

import (
	"fmt"
	"strings"
	"sync"
)

// StringID names an interned identifier; NoStringID is the empty string.
type StringID uint32

const NoStringID StringID = 0

// Interner maps identifiers (trait, type and path segment names) to dense
// IDs. One unit shares it between parser and resolver; it is safe for
// concurrent use so a catalog-seeded table can be shared too.
type Interner struct {
	mu    sync.Mutex
	names []string
	ids   map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		names: []string{""},
		ids:   map[string]StringID{"": NoStringID},
	}
}

// Intern returns the ID of s, adding it on first sight.
func (in *Interner) Intern(s string) StringID {
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.ids[s]; ok {
		return id
	}
	// токен ссылается на содержимое файла, храним копию
	s = strings.Clone(s)
	id := StringID(len(in.names)) // #nosec G115 -- память кончится раньше
	in.names = append(in.names, s)
	in.ids[s] = id
	return id
}

func (in *Interner) Lookup(id StringID) (string, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if int(id) >= len(in.names) {
		return "", false
	}
	return in.names[id], true
}

// MustLookup panics on an ID this interner never issued.
func (in *Interner) MustLookup(id StringID) string {
	s, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("source: unknown string id %d", id))
	}
	return s
}

// Len counts interned strings including the empty one.
func (in *Interner) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.names)
}
