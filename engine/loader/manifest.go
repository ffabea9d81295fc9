package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest lists skeleton assets to load together with Loader.LoadAll.
type Manifest struct {
	// Workers overrides the loader's worker count when positive.
	Workers int
	Assets  []ManifestEntry
}

// ManifestEntry is one skeleton asset.
type ManifestEntry struct {
	// Name is the cache key.
	Name string
	// Path is the asset file. Relative paths in a manifest file are resolved against its directory.
	Path string
	// Scale is the load scale, 1 when the manifest omits it.
	Scale float32
}

type manifestSpec struct {
	Workers int                 `yaml:"workers"`
	Assets  []manifestEntrySpec `yaml:"assets"`
}

type manifestEntrySpec struct {
	Name  string   `yaml:"name"`
	Path  string   `yaml:"path"`
	Scale *float32 `yaml:"scale"`
}

// LoadManifest reads a YAML manifest file.
//
// Parameters:
//   - path: the manifest file
//
// Returns:
//   - *Manifest: the manifest with asset paths resolved against the manifest's directory
//   - error: error if the file cannot be read or is invalid
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: load %s: %w", path, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for i := range m.Assets {
		if !filepath.IsAbs(m.Assets[i].Path) {
			m.Assets[i].Path = filepath.Join(dir, m.Assets[i].Path)
		}
	}
	return m, nil
}

// ParseManifest decodes a YAML manifest. Paths are returned as written.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Manifest: the manifest
//   - error: ErrFormat (wrapped) for malformed YAML, a missing name or path, a duplicate
//     name or a non-positive scale
func ParseManifest(data []byte) (*Manifest, error) {
	var spec manifestSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: unmarshal manifest: %w", ErrFormat, err)
	}

	m := &Manifest{Workers: spec.Workers, Assets: make([]ManifestEntry, 0, len(spec.Assets))}
	seen := make(map[string]bool, len(spec.Assets))
	for i, a := range spec.Assets {
		if a.Name == "" || a.Path == "" {
			return nil, formatErrorf("manifest asset %d needs a name and a path", i)
		}
		if seen[a.Name] {
			return nil, formatErrorf("manifest asset %q listed twice", a.Name)
		}
		seen[a.Name] = true
		scale := float32(1)
		if a.Scale != nil {
			scale = *a.Scale
		}
		if scale <= 0 {
			return nil, formatErrorf("manifest asset %q: scale must be positive, got %v", a.Name, scale)
		}
		m.Assets = append(m.Assets, ManifestEntry{Name: a.Name, Path: a.Path, Scale: scale})
	}
	return m, nil
}
