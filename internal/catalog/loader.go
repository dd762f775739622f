package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for the default and shop-override files.
type Paths struct {
	BaseDir string // config directory, e.g. ./config
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "catalog.yaml")
}
func (p Paths) ShopPath() string {
	return filepath.Join(p.BaseDir, "shop.yaml")
}

// Loader reads the catalog YAML and merges default → shop override.
type Loader struct {
	paths Paths

	mu     sync.RWMutex
	cached *Catalog
}

// NewLoader creates a catalog loader over the given config directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{paths: Paths{BaseDir: baseDir}}
}

// Load returns the merged, validated catalog. The result is cached until
// Invalidate is called (the watcher does this on file change).
func (l *Loader) Load() (*Catalog, error) {
	l.mu.RLock()
	if l.cached != nil {
		c := l.cached
		l.mu.RUnlock()
		return c, nil
	}
	l.mu.RUnlock()

	def, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	shop, err := readYAML(l.paths.ShopPath()) // shop override is optional
	if err != nil {
		return nil, fmt.Errorf("read shop override: %w", err)
	}

	merged := mergeCatalog(def, shop)
	if err := Validate(&merged); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cached = &merged
	l.mu.Unlock()
	return &merged, nil
}

// Invalidate clears the cache so the next Load rereads from disk.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = nil
}

// watchPaths lists the files the reload watcher should poll.
func (l *Loader) watchPaths() []string {
	return []string{l.paths.DefaultPath(), l.paths.ShopPath()}
}

// readYAML loads one catalog file. A missing file returns a zero catalog,
// no error, so the shop override stays optional.
func readYAML(path string) (Catalog, error) {
	var c Catalog
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Catalog{}, nil
		}
		return Catalog{}, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// mergeCatalog overlays 'b' on 'a'. Sections are replaced wholesale when
// the override provides them; a shop file that only redefines discounts
// keeps every product list from the default.
func mergeCatalog(a, b Catalog) Catalog {
	out := a
	if b.Studio != "" {
		out.Studio = b.Studio
	}
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if len(b.Sizes) > 0 {
		out.Sizes = append([]SizeSpec(nil), b.Sizes...)
	}
	if len(b.Addons) > 0 {
		out.Addons = append([]AddonSpec(nil), b.Addons...)
	}
	if len(b.Packages) > 0 {
		out.Packages = append([]PackageSpec(nil), b.Packages...)
	}
	if len(b.Rush) > 0 {
		out.Rush = append([]RushSpec(nil), b.Rush...)
	}
	if len(b.Packaging) > 0 {
		out.Packaging = append([]PackagingSpec(nil), b.Packaging...)
	}
	if len(b.Discounts) > 0 {
		out.Discounts = append([]DiscountSpec(nil), b.Discounts...)
	}
	if len(b.Presets) > 0 {
		out.Presets = append([]PresetSpec(nil), b.Presets...)
	}
	return out
}
