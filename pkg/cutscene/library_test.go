package cutscene

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/decker502/cutscene/pkg/sheet"
)

const testCatalog = `
version: "1.0"
base_path: movies
cutscenes:
  - id: intro
    manifest: intro/cutscene.yaml
  - id: broken
    manifest: broken/cutscene.yaml
  - id: reuse
    manifest: reuse/cutscene.yaml
`

// newTestLibrary builds a library over an in-memory movies tree:
// intro has two 3x2 sheets of 20x10 frames, broken has a sheet whose width
// is not divisible by its columns, and reuse shares intro's first sheet.
func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	fsys := fstest.MapFS{
		"catalog.yaml": {Data: []byte(testCatalog)},
		"movies/intro/cutscene.yaml": {Data: []byte(`
frame_rate: 15
columns: 3
rows: 2
total_frames: 9
sheets:
  pattern: sheet_%03d.png
  count: 2
audio: audio.wav
`)},
		"movies/intro/sheet_000.png": {Data: encodeTestPNG(t, 60, 20)},
		"movies/intro/sheet_001.png": {Data: encodeTestPNG(t, 60, 20)},
		"movies/intro/audio.wav":     {Data: []byte("RIFF")},
		"movies/broken/cutscene.yaml": {Data: []byte(`
frame_rate: 15
columns: 3
rows: 2
sheets:
  files: [sheet.png]
`)},
		"movies/broken/sheet.png": {Data: encodeTestPNG(t, 61, 20)},
		"movies/reuse/cutscene.yaml": {Data: []byte(`
frame_rate: 15
columns: 3
rows: 2
mode: loop
sheets:
  files: [/movies/intro/sheet_000.png]
`)},
	}

	lib := NewLibrary(fsys)
	lib.SetUploader(noUpload)
	if err := lib.LoadCatalog("catalog.yaml"); err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	return lib
}

func TestLibraryLoadCutscene(t *testing.T) {
	lib := newTestLibrary(t)
	track := &fakeTrack{}
	var audioPaths []string
	lib.SetAudioLoader(func(fsys fs.FS, name string) (AudioTrack, error) {
		audioPaths = append(audioPaths, name)
		return track, nil
	})

	cs, err := lib.LoadCutscene("intro")
	if err != nil {
		t.Fatalf("LoadCutscene: %v", err)
	}

	if cs.TotalFrames() != 9 {
		t.Errorf("TotalFrames() = %d, want 9", cs.TotalFrames())
	}
	if w, h := cs.FrameSize(); w != 20 || h != 10 {
		t.Errorf("FrameSize() = %dx%d, want 20x10", w, h)
	}
	if len(audioPaths) != 1 || audioPaths[0] != "movies/intro/audio.wav" {
		t.Errorf("audio loader called with %v", audioPaths)
	}

	cs.Play()
	if !track.playing {
		t.Error("soundtrack not attached to cutscene")
	}

	again, err := lib.LoadCutscene("intro")
	if err != nil || again != cs {
		t.Errorf("second LoadCutscene returned %p, %v; want cached %p", again, err, cs)
	}
	if lib.GetCutscene("intro") != cs {
		t.Error("GetCutscene did not return the cached cutscene")
	}
}

func TestLibraryDimensionMismatch(t *testing.T) {
	lib := newTestLibrary(t)

	_, err := lib.LoadCutscene("broken")
	if !errors.Is(err, sheet.ErrDimensionMismatch) {
		t.Fatalf("LoadCutscene(broken) error = %v, want dimension mismatch", err)
	}
	var loadErr *sheet.LoadError
	if !errors.As(err, &loadErr) || loadErr.Path != "movies/broken/sheet.png" {
		t.Errorf("LoadError = %+v", loadErr)
	}
	if lib.SheetCount() != 0 {
		t.Errorf("SheetCount() = %d after failed load, want 0", lib.SheetCount())
	}
}

func TestLibraryUnknownID(t *testing.T) {
	lib := newTestLibrary(t)
	if _, err := lib.LoadCutscene("nope"); err == nil {
		t.Error("LoadCutscene(nope) returned no error")
	}

	empty := NewLibrary(fstest.MapFS{})
	if _, err := empty.LoadCutscene("intro"); err == nil {
		t.Error("LoadCutscene without catalog returned no error")
	}
}

func TestLibraryAudioFailureIsNotFatal(t *testing.T) {
	lib := newTestLibrary(t)
	lib.SetAudioLoader(func(fs.FS, string) (AudioTrack, error) {
		return nil, errors.New("unsupported audio")
	})

	if _, err := lib.LoadCutscene("intro"); err != nil {
		t.Fatalf("LoadCutscene failed on audio error: %v", err)
	}
}

func TestLibrarySharedSheetRelease(t *testing.T) {
	lib := newTestLibrary(t)

	if _, err := lib.LoadCutscene("intro"); err != nil {
		t.Fatalf("LoadCutscene(intro): %v", err)
	}
	if _, err := lib.LoadCutscene("reuse"); err != nil {
		t.Fatalf("LoadCutscene(reuse): %v", err)
	}

	// reuse plays intro's first sheet, so it is uploaded once.
	if lib.SheetCount() != 2 {
		t.Errorf("SheetCount() = %d, want 2", lib.SheetCount())
	}

	lib.Release("intro")
	if lib.SheetCount() != 1 {
		t.Errorf("SheetCount() = %d after releasing intro, want 1 (shared sheet kept)", lib.SheetCount())
	}
	if lib.GetCutscene("intro") != nil {
		t.Error("released cutscene still cached")
	}

	lib.Release("reuse")
	if lib.SheetCount() != 0 {
		t.Errorf("SheetCount() = %d after releasing both, want 0", lib.SheetCount())
	}

	lib.Release("intro") // no-op
}

func TestLibraryHeldSheetOutlivesCutscene(t *testing.T) {
	lib := newTestLibrary(t)

	grid := sheet.Grid{Columns: 3, Rows: 2, FrameCount: 6, FrameRate: 15}
	held, err := lib.LoadSheet("movies/intro/sheet_000.png", grid)
	if err != nil {
		t.Fatalf("LoadSheet: %v", err)
	}
	if _, err := lib.LoadCutscene("intro"); err != nil {
		t.Fatalf("LoadCutscene: %v", err)
	}

	lib.Release("intro")
	if lib.SheetCount() != 1 {
		t.Fatalf("SheetCount() = %d after releasing intro, want 1 (held sheet kept)", lib.SheetCount())
	}
	again, err := lib.LoadSheet("movies/intro/sheet_000.png", grid)
	if err != nil || again != held {
		t.Errorf("LoadSheet after Release returned %p, %v; want held %p", again, err, held)
	}

	lib.ReleaseSheet("movies/intro/sheet_000.png")
	if lib.SheetCount() != 0 {
		t.Errorf("SheetCount() = %d after ReleaseSheet, want 0", lib.SheetCount())
	}
	lib.ReleaseSheet("movies/intro/sheet_000.png") // no-op
}

func TestLibrarySheetGridConflict(t *testing.T) {
	lib := newTestLibrary(t)

	grid := sheet.Grid{Columns: 3, Rows: 2, FrameCount: 6, FrameRate: 15}
	if _, err := lib.LoadSheet("movies/intro/sheet_000.png", grid); err != nil {
		t.Fatalf("LoadSheet: %v", err)
	}
	grid.FrameCount = 5
	if _, err := lib.LoadSheet("movies/intro/sheet_000.png", grid); err == nil {
		t.Error("LoadSheet accepted a cached sheet with a different grid")
	}
}

func TestLibraryAffectedBy(t *testing.T) {
	lib := newTestLibrary(t)
	if _, err := lib.LoadCutscene("intro"); err != nil {
		t.Fatalf("LoadCutscene: %v", err)
	}

	if ids := lib.AffectedBy("movies/intro/sheet_001.png"); len(ids) != 1 || ids[0] != "intro" {
		t.Errorf("AffectedBy(sheet) = %v, want [intro]", ids)
	}
	if ids := lib.AffectedBy("movies/other/x.png"); len(ids) != 0 {
		t.Errorf("AffectedBy(other) = %v, want none", ids)
	}
}

func TestLibraryClose(t *testing.T) {
	lib := newTestLibrary(t)
	if _, err := lib.LoadCutscene("intro"); err != nil {
		t.Fatalf("LoadCutscene: %v", err)
	}
	if _, err := lib.LoadSheet("movies/broken/sheet.png", sheet.Grid{Columns: 1, Rows: 1, FrameCount: 1, FrameRate: 1}); err != nil {
		t.Fatalf("LoadSheet: %v", err)
	}

	lib.Close()

	if len(lib.Loaded()) != 0 || lib.SheetCount() != 0 {
		t.Errorf("after Close: loaded=%v sheets=%d", lib.Loaded(), lib.SheetCount())
	}
}

func TestLibraryReleaseFreesSoundtrack(t *testing.T) {
	lib := newTestLibrary(t)
	lib.SetAudioLoader(func(fs.FS, string) (AudioTrack, error) {
		return &fakeTrack{}, nil
	})
	var freed []string
	lib.SetAudioReleaser(func(name string) {
		freed = append(freed, name)
	})

	if _, err := lib.LoadCutscene("intro"); err != nil {
		t.Fatalf("LoadCutscene: %v", err)
	}
	lib.Release("intro")
	if len(freed) != 1 || freed[0] != "movies/intro/audio.wav" {
		t.Errorf("freed soundtracks = %v, want [movies/intro/audio.wav]", freed)
	}

	lib.Release("intro")
	if len(freed) != 1 {
		t.Errorf("second Release freed again: %v", freed)
	}
}
