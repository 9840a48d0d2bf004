package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"cohere/internal/coherence"
	"cohere/internal/diag"
	"cohere/internal/project"
	"cohere/internal/source"
)

// diskCacheSchemaVersion входит в ключ и в payload: смена формата
// делает старые записи невидимыми.
const diskCacheSchemaVersion uint16 = 2

const unitsDir = "units"

// DiskCache keeps the verdicts of checked units between runs, keyed by
// content, catalog and limits (see unitKey). Entries live in
// <dir>/units/<xx>/<key>.mp and are written atomically.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached outcome of checking one unit.
type DiskPayload struct {
	Schema      uint16         `msgpack:"v"`
	Path        string         `msgpack:"path"`
	ContentHash project.Digest `msgpack:"content"`
	CatalogHash project.Digest `msgpack:"catalog"`

	Diagnostics []CachedDiagnostic `msgpack:"diags,omitempty"`
	Stats       coherence.Stats    `msgpack:"stats"`
}

// CachedSpan is a byte range inside the unit's own file.
type CachedSpan [2]uint32

func cachedSpan(sp source.Span) CachedSpan { return CachedSpan{sp.Start, sp.End} }

func (c CachedSpan) in(file source.FileID) source.Span {
	return source.Span{File: file, Start: c[0], End: c[1]}
}

// CachedDiagnostic хранит диагностику без FileID: все спаны единицы лежат в одном файле.
type CachedDiagnostic struct {
	Severity uint8        `msgpack:"sev"`
	Code     uint16       `msgpack:"code"`
	Message  string       `msgpack:"msg"`
	Primary  CachedSpan   `msgpack:"at"`
	Notes    []CachedNote `msgpack:"notes,omitempty"`
	Fixes    []CachedFix  `msgpack:"fixes,omitempty"`
}

type CachedNote struct {
	At  CachedSpan `msgpack:"at"`
	Msg string     `msgpack:"msg"`
}

type CachedFix struct {
	Title string       `msgpack:"title"`
	Edits []CachedEdit `msgpack:"edits"`
}

type CachedEdit struct {
	At      CachedSpan `msgpack:"at"`
	NewText string     `msgpack:"new,omitempty"`
	OldText string     `msgpack:"old,omitempty"`
}

// OpenDiskCache opens (creating if needed) a cache rooted at dir.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		return nil, errors.New("disk cache: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("disk cache: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// UserCacheDir returns $XDG_CACHE_HOME/app, falling back to os.UserCacheDir.
func UserCacheDir(app string) (string, error) {
	if base := os.Getenv("XDG_CACHE_HOME"); base != "" {
		return filepath.Join(base, app), nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, app), nil
}

func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// entry shards by the first key byte so one directory never grows huge.
func (c *DiskCache) entry(key project.Digest) string {
	hex := key.Hex()
	return filepath.Join(c.dir, unitsDir, hex[:2], hex+".mp")
}

// Put stores payload under key, replacing any previous entry.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) error {
	if c == nil || payload == nil {
		return nil
	}
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("disk cache: encode: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	path := c.entry(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Get loads the entry for key into out. Missing entries and entries of
// another schema are misses; a corrupt entry is removed and reported.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	data, err := os.ReadFile(c.entry(key))
	c.mu.RUnlock()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		c.mu.Lock()
		_ = os.Remove(c.entry(key))
		c.mu.Unlock()
		return false, fmt.Errorf("disk cache: decode %s: %w", key.Hex(), err)
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll removes every cached unit and leaves the cache directory empty.
// A missing cache directory is not an error.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, os.ErrNotExist) {
		return os.MkdirAll(c.dir, 0o755)
	}
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range entries {
		errs = append(errs, os.RemoveAll(filepath.Join(c.dir, e.Name())))
	}
	return errors.Join(errs...)
}

// unitKey = H(content || catalog || schema+limits).
func unitKey(content, catalogHash project.Digest, maxDiagnostics uint16) project.Digest {
	schema := project.DigestBytes(fmt.Appendf(nil, "cohere-unit/v%d/max=%d", diskCacheSchemaVersion, maxDiagnostics))
	return project.Combine(content, catalogHash, schema)
}

func bagToDiskPayload(path string, content, catalogHash project.Digest, bag *diag.Bag, stats coherence.Stats) *DiskPayload {
	payload := &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        path,
		ContentHash: content,
		CatalogHash: catalogHash,
		Stats:       stats,
	}
	for _, d := range bag.Items() {
		payload.Diagnostics = append(payload.Diagnostics, cacheDiagnostic(d))
	}
	return payload
}

func cacheDiagnostic(d *diag.Diagnostic) CachedDiagnostic {
	cd := CachedDiagnostic{
		Severity: uint8(d.Severity),
		Code:     uint16(d.Code),
		Message:  d.Message,
		Primary:  cachedSpan(d.Primary),
	}
	for _, n := range d.Notes {
		cd.Notes = append(cd.Notes, CachedNote{At: cachedSpan(n.Span), Msg: n.Msg})
	}
	for _, f := range d.Fixes {
		cf := CachedFix{Title: f.Title}
		for _, e := range f.Edits {
			cf.Edits = append(cf.Edits, CachedEdit{At: cachedSpan(e.Span), NewText: e.NewText, OldText: e.OldText})
		}
		cd.Fixes = append(cd.Fixes, cf)
	}
	return cd
}

// diskPayloadToBag восстанавливает диагностики, привязывая спаны к file.
func diskPayloadToBag(payload *DiskPayload, file source.FileID, maxDiagnostics int) *diag.Bag {
	bag := diag.NewBag(maxDiagnostics)
	for _, cd := range payload.Diagnostics {
		d := diag.New(diag.Severity(cd.Severity), diag.Code(cd.Code), cd.Primary.in(file), cd.Message)
		for _, n := range cd.Notes {
			d.WithNote(n.At.in(file), n.Msg)
		}
		for _, cf := range cd.Fixes {
			edits := make([]diag.FixEdit, 0, len(cf.Edits))
			for _, e := range cf.Edits {
				edits = append(edits, diag.FixEdit{Span: e.At.in(file), NewText: e.NewText, OldText: e.OldText})
			}
			d.WithFix(cf.Title, edits...)
		}
		bag.Add(d)
	}
	return bag
}
