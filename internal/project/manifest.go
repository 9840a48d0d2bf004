package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a parsed cohere.toml together with where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the sections of cohere.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Check   CheckConfig   `toml:"check"`
	Cache   CacheConfig   `toml:"cache"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type CheckConfig struct {
	// Catalog — путь к YAML-каталогу внешних trait-ов, относительно корня проекта.
	Catalog        string `toml:"catalog"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
	Jobs           int    `toml:"jobs"`
	Format         string `toml:"format"`
	// зарезервировано: все диагностики когерентности и так ошибки
	WarningsAsErrors bool `toml:"warnings_as_errors"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

var (
	// ErrPackageSectionMissing indicates that [package] is missing in cohere.toml.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing or blank.
	ErrPackageNameMissing = errors.New("missing [package].name")
)

var validFormats = map[string]bool{"": true, "pretty": true, "short": true, "json": true, "sarif": true}

// DefaultConfig returns the values used when no manifest is present.
func DefaultConfig() Config {
	return Config{
		Check: CheckConfig{
			MaxDiagnostics: 100,
			Format:         "pretty",
		},
		Cache: CacheConfig{
			Dir: ".cohere/cache",
		},
	}
}

// LoadManifest locates and parses cohere.toml starting at startDir.
// ok is false when no manifest exists up to the filesystem root.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig parses one cohere.toml; keys not set keep DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if !validFormats[cfg.Check.Format] {
		return Config{}, fmt.Errorf("%s: [check].format must be pretty|short|json|sarif, got %q", path, cfg.Check.Format)
	}
	if cfg.Check.MaxDiagnostics < 0 {
		return Config{}, fmt.Errorf("%s: [check].max_diagnostics must not be negative", path)
	}
	if cfg.Check.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [check].jobs must not be negative", path)
	}
	return cfg, nil
}

// CatalogPath returns the absolute catalog path, or "" when the built-in catalog is used.
func (m *Manifest) CatalogPath() string {
	if m == nil || m.Config.Check.Catalog == "" {
		return ""
	}
	if filepath.IsAbs(m.Config.Check.Catalog) {
		return m.Config.Check.Catalog
	}
	return filepath.Join(m.Root, filepath.FromSlash(m.Config.Check.Catalog))
}

// CacheDir returns the absolute cache directory.
func (m *Manifest) CacheDir() string {
	dir := DefaultConfig().Cache.Dir
	root := "."
	if m != nil {
		root = m.Root
		if m.Config.Cache.Dir != "" {
			dir = m.Config.Cache.Dir
		}
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, filepath.FromSlash(dir))
}

// WriteSkeleton creates dir/cohere.toml for a package named name.
// An existing manifest is never overwritten.
func WriteSkeleton(dir, name string) (string, error) {
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %q: %w", path, err)
	}
	cfg := DefaultConfig()
	cfg.Package.Name = name

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(cfg); err != nil {
		return "", fmt.Errorf("%s: failed to encode TOML: %w", path, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
