package cutscene

import (
	"fmt"
	"io/fs"
	"log"
	"path"
	"strings"

	"github.com/decker502/cutscene/pkg/sheet"
)

// AudioLoader opens the soundtrack at name. It is supplied by the
// application so this package stays free of an audio context.
type AudioLoader func(fsys fs.FS, name string) (AudioTrack, error)

// Library loads cutscenes and caches their sheets.
//
// It replaces a global asset registry: the scene that plays cutscenes owns a
// Library value and passes it where needed. Sheets are cached by path so
// that two cutscenes sharing a sheet upload it once.
//
// Thread Safety Note:
// A Library is used only from the game loop goroutine and is not safe for
// concurrent use.
//
// Usage:
//
//	lib := cutscene.NewLibrary(os.DirFS("movies"))
//	if err := lib.LoadCatalog("catalog.yaml"); err != nil {
//	    log.Printf("Failed to load catalog: %v", err)
//	}
//	cs, err := lib.LoadCutscene("intro")
type Library struct {
	fsys        fs.FS
	upload      sheet.Uploader
	loadAudio   AudioLoader
	freeAudio   func(name string)
	catalog     *Catalog
	sheetCache  map[string]*sheet.SpriteSheet // sheet path -> sheet
	sheetUsers  map[string]int                // sheet path -> number of cached cutscenes using it
	heldSheets  map[string]bool               // sheet paths loaded through LoadSheet
	cutscenes   map[string]*Cutscene          // cutscene ID -> cutscene
	audioTracks map[string]AudioTrack         // cutscene ID -> soundtrack
}

// NewLibrary creates an empty library reading from fsys.
func NewLibrary(fsys fs.FS) *Library {
	return &Library{
		fsys:        fsys,
		upload:      sheet.DefaultUploader,
		sheetCache:  make(map[string]*sheet.SpriteSheet),
		sheetUsers:  make(map[string]int),
		heldSheets:  make(map[string]bool),
		cutscenes:   make(map[string]*Cutscene),
		audioTracks: make(map[string]AudioTrack),
	}
}

// SetUploader replaces the texture uploader. Tests use it to avoid the GPU.
func (l *Library) SetUploader(upload sheet.Uploader) {
	l.upload = upload
}

// SetAudioLoader enables soundtracks. Without one, cutscenes play silently.
func (l *Library) SetAudioLoader(loader AudioLoader) {
	l.loadAudio = loader
}

// SetAudioReleaser registers the function that frees a soundtrack once no
// cached cutscene plays it.
func (l *Library) SetAudioReleaser(release func(name string)) {
	l.freeAudio = release
}

// FS returns the file system the library reads from.
func (l *Library) FS() fs.FS { return l.fsys }

// LoadCatalog reads the catalog that maps IDs to manifests.
func (l *Library) LoadCatalog(name string) error {
	c, err := LoadCatalog(l.fsys, name)
	if err != nil {
		return err
	}
	l.SetCatalog(c)
	log.Printf("[Library] Loaded catalog %s (%d cutscenes)", name, len(c.Cutscenes))
	return nil
}

// SetCatalog installs an already parsed catalog.
func (l *Library) SetCatalog(c *Catalog) {
	l.catalog = c
}

// Catalog returns the installed catalog, or nil.
func (l *Library) Catalog() *Catalog { return l.catalog }

// IDs lists the catalog's cutscene IDs in catalog order.
func (l *Library) IDs() []string {
	if l.catalog == nil {
		return nil
	}
	return l.catalog.IDs()
}

// Entry returns the catalog entry for id.
func (l *Library) Entry(id string) (CatalogEntry, error) {
	if l.catalog == nil {
		return CatalogEntry{}, fmt.Errorf("cutscene catalog not loaded - call LoadCatalog first")
	}
	e, ok := l.catalog.Entry(id)
	if !ok {
		return CatalogEntry{}, fmt.Errorf("cutscene ID not found: %s", id)
	}
	return e, nil
}

// LoadManifest reads the manifest of a catalog entry.
func (l *Library) LoadManifest(id string) (*Manifest, error) {
	e, err := l.Entry(id)
	if err != nil {
		return nil, err
	}
	return LoadManifest(l.fsys, l.catalog.ManifestPath(e))
}

// LoadSheet loads a single sheet, returning the cached copy if present.
// The caller holds the sheet until ReleaseSheet: releasing a cutscene that
// shares it does not dispose it.
func (l *Library) LoadSheet(name string, grid sheet.Grid) (*sheet.SpriteSheet, error) {
	s, err := l.loadSheet(name, grid)
	if err != nil {
		return nil, err
	}
	l.heldSheets[name] = true
	return s, nil
}

// ReleaseSheet drops the hold taken by LoadSheet and disposes the sheet if
// no cached cutscene uses it.
func (l *Library) ReleaseSheet(name string) {
	if !l.heldSheets[name] {
		return
	}
	delete(l.heldSheets, name)
	l.dropUnused([]string{name})
}

func (l *Library) loadSheet(name string, grid sheet.Grid) (*sheet.SpriteSheet, error) {
	if s, ok := l.sheetCache[name]; ok {
		if s.Grid != grid {
			return nil, fmt.Errorf("sheet %s already loaded with grid %+v, requested %+v", name, s.Grid, grid)
		}
		return s, nil
	}

	s, err := sheet.LoadWith(l.fsys, name, grid, l.upload)
	if err != nil {
		return nil, err
	}
	l.sheetCache[name] = s
	return s, nil
}

// GetCutscene returns a previously loaded cutscene, or nil.
func (l *Library) GetCutscene(id string) *Cutscene {
	return l.cutscenes[id]
}

// LoadCutscene loads every sheet and the soundtrack of a catalog entry.
// A loaded cutscene is cached until Release.
//
// Any sheet failure aborts the whole cutscene and is returned to the caller,
// who decides whether to skip it. A soundtrack failure only logs a warning:
// the cutscene still plays, silently.
func (l *Library) LoadCutscene(id string) (*Cutscene, error) {
	if cs, ok := l.cutscenes[id]; ok {
		return cs, nil
	}

	m, err := l.LoadManifest(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load cutscene %s: %w", id, err)
	}

	var loaded []string
	sheets := make([]*sheet.SpriteSheet, 0, m.SheetCount())
	for i, p := range m.SheetPaths() {
		_, cached := l.sheetCache[p]
		s, err := l.loadSheet(p, m.SheetGrid(i))
		if err != nil {
			l.dropUnused(loaded)
			return nil, fmt.Errorf("failed to load cutscene %s: %w", id, err)
		}
		if !cached {
			loaded = append(loaded, p)
		}
		sheets = append(sheets, s)
	}

	cs, err := New(id, m, sheets)
	if err != nil {
		l.dropUnused(loaded)
		return nil, err
	}

	if track := l.openAudio(id, m); track != nil {
		cs.SetAudio(track)
		l.audioTracks[id] = track
	}

	for _, p := range m.SheetPaths() {
		l.sheetUsers[p]++
	}
	l.cutscenes[id] = cs
	log.Printf("[Library] Loaded cutscene %s: %d sheets, %d frames, %.1fs", id, len(sheets), m.TotalFrames, m.Duration())
	return cs, nil
}

func (l *Library) openAudio(id string, m *Manifest) AudioTrack {
	p := m.AudioPath()
	if p == "" || l.loadAudio == nil {
		return nil
	}
	track, err := l.loadAudio(l.fsys, p)
	if err != nil {
		log.Printf("[Library] Warning: cutscene %s plays without audio: %v", id, err)
		return nil
	}
	return track
}

// Release stops a cached cutscene and frees sheets no other cached cutscene
// uses. Releasing an unknown ID is a no-op.
func (l *Library) Release(id string) {
	cs, ok := l.cutscenes[id]
	if !ok {
		return
	}
	cs.Stop()
	delete(l.cutscenes, id)
	if _, ok := l.audioTracks[id]; ok {
		delete(l.audioTracks, id)
		l.releaseAudio(cs.Manifest().AudioPath())
	}

	var unused []string
	for _, p := range cs.Manifest().SheetPaths() {
		l.sheetUsers[p]--
		if l.sheetUsers[p] <= 0 {
			delete(l.sheetUsers, p)
			unused = append(unused, p)
		}
	}
	l.dropUnused(unused)
	log.Printf("[Library] Released cutscene %s", id)
}

// releaseAudio frees the soundtrack at name unless another cached cutscene
// still plays it.
func (l *Library) releaseAudio(name string) {
	if l.freeAudio == nil || name == "" {
		return
	}
	for other := range l.audioTracks {
		if l.cutscenes[other].Manifest().AudioPath() == name {
			return
		}
	}
	l.freeAudio(name)
}

// dropUnused disposes cached sheets with no remaining users.
func (l *Library) dropUnused(paths []string) {
	for _, p := range paths {
		if l.sheetUsers[p] > 0 || l.heldSheets[p] {
			continue
		}
		if s, ok := l.sheetCache[p]; ok {
			s.Dispose()
			delete(l.sheetCache, p)
		}
	}
}

// AffectedBy returns the IDs of cached cutscenes whose directory contains
// name, i.e. whose manifest, sheets or soundtrack may have changed.
func (l *Library) AffectedBy(name string) []string {
	name = path.Clean(strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "./"))

	var ids []string
	for _, id := range sortedKeys(l.cutscenes) {
		m := l.cutscenes[id].Manifest()
		if name == m.Dir() || strings.HasPrefix(name, m.Dir()+"/") || m.Dir() == "." {
			ids = append(ids, id)
		}
	}
	return ids
}

// Loaded returns the IDs of cached cutscenes in lexical order.
func (l *Library) Loaded() []string {
	return sortedKeys(l.cutscenes)
}

// SheetCount returns the number of sheets currently cached.
func (l *Library) SheetCount() int {
	return len(l.sheetCache)
}

// Close releases every cached cutscene and any sheet loaded directly.
func (l *Library) Close() {
	for _, id := range sortedKeys(l.cutscenes) {
		l.Release(id)
	}
	for p, s := range l.sheetCache {
		s.Dispose()
		delete(l.sheetCache, p)
	}
	clear(l.heldSheets)
}
