package catalog

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

// Trait — trait, определённый вне единицы компиляции.
type Trait struct {
	Crate   string
	Path    string // путь внутри crate, например "marker::Send"
	Unsafe  bool
	Prelude bool
}

// Name returns the final path segment.
func (t Trait) Name() string {
	if i := strings.LastIndex(t.Path, "::"); i >= 0 {
		return t.Path[i+2:]
	}
	return t.Path
}

// FullPath returns `crate::path`.
func (t Trait) FullPath() string {
	return t.Crate + "::" + t.Path
}

// Catalog maps fully qualified paths of extern traits to their declarations.
// A Catalog is immutable after construction and safe for concurrent reads.
type Catalog struct {
	Sources []string
	traits  []Trait
	byPath  map[string]int
	prelude map[string]int
	crates  map[string]struct{}
	digest  [32]byte
}

type catalogDisk struct {
	Crates []crateDisk `yaml:"crates"`
}

type crateDisk struct {
	Name   string      `yaml:"name"`
	Traits []traitDisk `yaml:"traits"`
}

type traitDisk struct {
	Path    string `yaml:"path"`
	Unsafe  bool   `yaml:"unsafe"`
	Prelude bool   `yaml:"prelude"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	cat, err := Parse(defaultCatalog, "<builtin>")
	if err != nil {
		panic(fmt.Errorf("catalog: builtin catalog is invalid: %w", err))
	}
	return cat
}

// Load parses a catalog file from disk.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", abs, err)
	}
	return Parse(data, abs)
}

// LoadWithDefault loads path on top of the embedded catalog.
// An empty path yields the embedded catalog alone.
func LoadWithDefault(path string) (*Catalog, error) {
	base := Default()
	if path == "" {
		return base, nil
	}
	extra, err := Load(path)
	if err != nil {
		return nil, err
	}
	return base.Extend(extra)
}

// Parse decodes catalog YAML. Unknown fields are rejected.
func Parse(data []byte, origin string) (*Catalog, error) {
	var raw catalogDisk
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", origin, err)
	}

	traits := make([]Trait, 0)
	for ci, crate := range raw.Crates {
		crateName := norm.NFC.String(strings.TrimSpace(crate.Name))
		if !validSegment(crateName) {
			return nil, fmt.Errorf("catalog: %s: crates[%d]: invalid crate name %q", origin, ci, crate.Name)
		}
		for ti, tr := range crate.Traits {
			path := norm.NFC.String(strings.TrimSpace(tr.Path))
			if !validPath(path) {
				return nil, fmt.Errorf("catalog: %s: crates[%d].traits[%d]: invalid path %q", origin, ci, ti, tr.Path)
			}
			traits = append(traits, Trait{
				Crate:   crateName,
				Path:    path,
				Unsafe:  tr.Unsafe,
				Prelude: tr.Prelude,
			})
		}
	}
	return build([]string{origin}, traits)
}

// Extend returns a new catalog holding c's traits plus other's.
// Entries of other replace entries of c with the same full path.
func (c *Catalog) Extend(other *Catalog) (*Catalog, error) {
	merged := make([]Trait, 0, len(c.traits)+len(other.traits))
	for _, t := range c.traits {
		if _, dup := other.byPath[t.FullPath()]; dup {
			continue
		}
		merged = append(merged, t)
	}
	merged = append(merged, other.traits...)
	sources := append(append([]string{}, c.Sources...), other.Sources...)
	return build(sources, merged)
}

func build(sources []string, traits []Trait) (*Catalog, error) {
	sort.SliceStable(traits, func(i, j int) bool {
		return traits[i].FullPath() < traits[j].FullPath()
	})
	cat := &Catalog{
		Sources: sources,
		traits:  traits,
		byPath:  make(map[string]int, len(traits)),
		prelude: make(map[string]int),
		crates:  make(map[string]struct{}),
	}
	h := sha256.New()
	for i, t := range traits {
		full := t.FullPath()
		if _, dup := cat.byPath[full]; dup {
			return nil, fmt.Errorf("catalog: duplicate trait %s", full)
		}
		cat.byPath[full] = i
		cat.crates[t.Crate] = struct{}{}
		if t.Prelude {
			if prev, dup := cat.prelude[t.Name()]; dup {
				return nil, fmt.Errorf("catalog: prelude name %s is ambiguous: %s and %s",
					t.Name(), traits[prev].FullPath(), full)
			}
			cat.prelude[t.Name()] = i
		}
		fmt.Fprintf(h, "%s|%t|%t\n", full, t.Unsafe, t.Prelude)
	}
	copy(cat.digest[:], h.Sum(nil))
	return cat, nil
}

// Lookup finds a trait by `crate::path::Name`.
func (c *Catalog) Lookup(fullPath string) (Trait, bool) {
	i, ok := c.byPath[fullPath]
	if !ok {
		return Trait{}, false
	}
	return c.traits[i], true
}

// Prelude finds a trait available by its bare name.
func (c *Catalog) Prelude(name string) (Trait, bool) {
	i, ok := c.prelude[name]
	if !ok {
		return Trait{}, false
	}
	return c.traits[i], true
}

// HasCrate reports whether any trait of the catalog lives in crate.
func (c *Catalog) HasCrate(crate string) bool {
	_, ok := c.crates[crate]
	return ok
}

// Traits returns the traits sorted by full path. READONLY.
func (c *Catalog) Traits() []Trait { return c.traits }

// Digest is a content hash of the catalog; it keys the disk cache.
func (c *Catalog) Digest() [32]byte { return c.digest }

func validPath(path string) bool {
	if path == "" {
		return false
	}
	for _, seg := range strings.Split(path, "::") {
		if !validSegment(seg) {
			return false
		}
	}
	return true
}

func validSegment(seg string) bool {
	if seg == "" {
		return false
	}
	for i, r := range seg {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
