package cutscene

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the top-level list of cutscenes an application ships.
//
// Structure:
//
//	version: "1.0"
//	base_path: movies
//	cutscenes:
//	  - id: intro
//	    title: Opening
//	    manifest: intro/cutscene.yaml
//	    skippable: true
type Catalog struct {
	Version   string         `yaml:"version"`   // Catalog file version
	BasePath  string         `yaml:"base_path"` // Directory all manifests are relative to
	Cutscenes []CatalogEntry `yaml:"cutscenes"` // Entries in menu order
}

// CatalogEntry describes a single cutscene.
//
// Fields:
//   - ID: Unique identifier used by scenes and the -play flag (e.g. "intro")
//   - Title: Display name for the menu, defaults to ID
//   - Manifest: Path of the sidecar relative to base_path
//   - Skippable: Whether the viewer may skip before having watched it once
type CatalogEntry struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title,omitempty"`
	Manifest  string `yaml:"manifest"`
	Skippable bool   `yaml:"skippable,omitempty"`
}

// DisplayTitle returns Title, or ID when no title is set.
func (e CatalogEntry) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	return e.ID
}

// LoadCatalog reads a catalog from fsys.
func LoadCatalog(fsys fs.FS, name string) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, path.Clean(strings.TrimPrefix(name, "./")))
	if err != nil {
		return nil, fmt.Errorf("failed to read cutscene catalog %s: %w", name, err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse cutscene catalog %s: %w", name, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cutscene catalog %s: %w", name, err)
	}
	return &c, nil
}

// Validate rejects empty or duplicate IDs and entries without a manifest.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Cutscenes))
	for i, e := range c.Cutscenes {
		if e.ID == "" {
			return fmt.Errorf("cutscene %d has no id", i)
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate cutscene id %q", e.ID)
		}
		seen[e.ID] = true
		if e.Manifest == "" {
			return fmt.Errorf("cutscene %q has no manifest", e.ID)
		}
	}
	return nil
}

// Entry looks up a cutscene by ID.
func (c *Catalog) Entry(id string) (CatalogEntry, bool) {
	for _, e := range c.Cutscenes {
		if e.ID == id {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// IDs returns every cutscene ID in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.Cutscenes))
	for _, e := range c.Cutscenes {
		ids = append(ids, e.ID)
	}
	return ids
}

// ManifestPath returns the full path of an entry's manifest.
func (c *Catalog) ManifestPath(e CatalogEntry) string {
	return buildFullPath(c.BasePath, e.Manifest)
}

// SingleCatalog builds a one-entry catalog around a manifest path. It is
// used when the player is pointed straight at a manifest.
func SingleCatalog(manifest string) *Catalog {
	id := path.Base(path.Dir(manifest))
	if id == "." || id == "" {
		id = strings.TrimSuffix(path.Base(manifest), path.Ext(manifest))
	}
	return &Catalog{
		Version:   "1.0",
		Cutscenes: []CatalogEntry{{ID: id, Manifest: manifest, Skippable: true}},
	}
}

// sortedKeys returns the keys of m in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// buildFullPath joins a base path and a relative resource path.
//
// Examples:
//
//	("movies", "intro/cutscene.yaml")  -> "movies/intro/cutscene.yaml"
//	("movies", "/intro/cutscene.yaml") -> "movies/intro/cutscene.yaml"
//	("", "intro/cutscene.yaml")        -> "intro/cutscene.yaml"
func buildFullPath(basePath, relativePath string) string {
	relativePath = strings.ReplaceAll(relativePath, "\\", "/")
	if basePath == "" {
		return path.Clean(strings.TrimPrefix(relativePath, "/"))
	}
	return path.Join(basePath, relativePath)
}
