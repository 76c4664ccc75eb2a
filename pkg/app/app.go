// Package app wires the cutscene player together and implements ebiten.Game.
//
// main.go builds a Config from command-line flags and calls NewApp; the
// returned App is passed to ebiten.RunGame.
package app

import (
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"log"
	"os"
	"path"

	"github.com/decker502/cutscene/internal/watch"
	"github.com/decker502/cutscene/pkg/config"
	"github.com/decker502/cutscene/pkg/cutscene"
	"github.com/decker502/cutscene/pkg/game"
	"github.com/decker502/cutscene/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

// Config defines the startup configuration.
type Config struct {
	// Verbose enables log output.
	Verbose bool
	// AssetsDir is the directory every catalog, manifest and sheet path is
	// relative to. Ignored when FS is set.
	AssetsDir string
	// FS overrides AssetsDir, e.g. with an embed.FS.
	FS fs.FS
	// Catalog is the catalog (or a single manifest) inside the assets.
	Catalog string
	// Play starts this cutscene ID directly instead of the menu.
	Play string
	// Watch reloads cutscenes when their files change on disk.
	// Only available with AssetsDir.
	Watch bool
}

// App implements ebiten.Game.
type App struct {
	services     scenes.Services
	sceneManager *game.SceneManager
	watcher      *watch.Watcher
	catalogName  string
	verbose      bool

	pendingWindowSizeReset   bool
	windowSizeResetCountdown int
}

// NewApp creates the managers, loads the catalog and shows the first scene.
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	if cfg.Catalog == "" {
		cfg.Catalog = config.DefaultCatalog
	}
	fsys := cfg.FS
	if fsys == nil {
		if cfg.AssetsDir == "" {
			cfg.AssetsDir = config.DefaultAssetsDir
		}
		fsys = os.DirFS(cfg.AssetsDir)
	}

	settingsManager := openSettings()
	ebiten.SetFullscreen(settingsManager.GetSettings().Fullscreen)

	audioContext := audio.NewContext(game.AudioSampleRate)
	audioManager := game.NewAudioManager(audioContext, settingsManager)
	log.Printf("[App] AudioManager initialized")

	library := cutscene.NewLibrary(fsys)
	library.SetAudioLoader(audioManager.LoadSoundtrack)
	library.SetAudioReleaser(audioManager.Release)
	if err := loadCatalog(library, cfg.Catalog); err != nil {
		return nil, err
	}

	sceneManager := game.NewSceneManager()
	services := scenes.Services{
		Library:  library,
		Audio:    audioManager,
		Settings: settingsManager,
		Scenes:   sceneManager,
	}
	sceneManager.SetSceneFactory(func(cutsceneID string) game.Scene {
		return scenes.NewCutsceneScene(services, cutsceneID)
	})

	a := &App{
		services:     services,
		sceneManager: sceneManager,
		catalogName:  cfg.Catalog,
		verbose:      cfg.Verbose,
	}

	if cfg.Watch {
		if cfg.FS != nil {
			log.Printf("[App] Warning: -watch needs an assets directory, ignoring")
		} else if w, err := watch.New(cfg.AssetsDir); err != nil {
			log.Printf("[App] Warning: Failed to watch %s: %v", cfg.AssetsDir, err)
		} else {
			a.watcher = w
			log.Printf("[App] Watching %s for changes", cfg.AssetsDir)
		}
	}

	playID := cfg.Play
	if playID == "" && len(library.IDs()) == 1 {
		playID = library.IDs()[0]
	}
	if playID == "" || !sceneManager.PlayCutscene(playID) {
		sceneManager.SwitchTo(scenes.NewMenuScene(services))
	}

	return a, nil
}

// openSettings opens persisted settings, falling back to memory-only
// settings when the storage is unavailable.
func openSettings() *game.SettingsManager {
	gdataManager, err := gdata.Open(gdata.Config{AppName: config.SettingsAppName})
	if err != nil {
		log.Printf("[App] Warning: settings storage unavailable, using defaults: %v", err)
		gdataManager = nil
	}
	sm, err := game.NewSettingsManager(gdataManager)
	if err != nil {
		log.Printf("[App] Warning: Failed to load settings: %v", err)
	}
	return sm
}

// loadCatalog installs the catalog at name. A manifest is accepted too and
// becomes a one-entry catalog.
func loadCatalog(library *cutscene.Library, name string) error {
	catalogErr := library.LoadCatalog(name)
	if catalogErr == nil && len(library.IDs()) > 0 {
		return nil
	}
	if _, err := cutscene.LoadManifest(library.FS(), name); err == nil {
		library.SetCatalog(cutscene.SingleCatalog(name))
		log.Printf("[App] Playing single manifest %s", name)
		return nil
	}
	if catalogErr != nil {
		return fmt.Errorf("failed to load catalog: %w", catalogErr)
	}
	return fmt.Errorf("catalog %s lists no cutscenes", name)
}

// Update advances the current scene by one fixed tick.
func (a *App) Update() error {
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
			a.pendingWindowSizeReset = false
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}

	if a.watcher != nil {
		if changed := a.watcher.Drain(); len(changed) > 0 {
			a.reload(changed)
		}
	}

	a.sceneManager.Update(config.DeltaTime())
	return nil
}

func (a *App) toggleFullscreen() {
	fullscreen := !ebiten.IsFullscreen()
	ebiten.SetFullscreen(fullscreen)
	if !fullscreen {
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = config.FullscreenRestoreDelay
	}
	if sm := a.services.Settings; sm != nil {
		sm.SetFullscreen(fullscreen)
		if err := sm.Save(); err != nil {
			log.Printf("[App] Warning: Failed to save settings: %v", err)
		}
	}
}

// reload drops cached cutscenes whose files changed and restarts the one on
// screen. A changed catalog rebuilds the menu.
func (a *App) reload(changed []string) {
	lib := a.services.Library
	current := a.sceneManager.GetCurrentScene()

	for _, name := range changed {
		if path.Clean(name) == path.Clean(a.catalogName) {
			if err := loadCatalog(lib, a.catalogName); err != nil {
				log.Printf("[App] Catalog reload failed, keeping the old one: %v", err)
				continue
			}
			if _, ok := current.(*scenes.MenuScene); ok {
				a.sceneManager.SwitchTo(scenes.NewMenuScene(a.services))
			}
			continue
		}

		for _, id := range lib.AffectedBy(name) {
			log.Printf("[App] %s changed, reloading cutscene %s", name, id)
			lib.Release(id)
			if cs, ok := current.(*scenes.CutsceneScene); ok && cs.Cutscene() != nil && cs.Cutscene().ID() == id {
				a.sceneManager.SwitchTo(scenes.NewCutsceneScene(a.services, id))
				current = a.sceneManager.GetCurrentScene()
			}
		}
	}
}

// Draw renders the current scene.
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen implements ebiten.FinalScreenDrawer so fullscreen
// letterbox bars are black and upscaling is smooth.
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout returns the logical screen size.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.GameWindowWidth, config.GameWindowHeight
}

// Close stops the watcher and frees every texture and soundtrack.
func (a *App) Close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	a.sceneManager.Close()
	a.services.Library.Close()
	if a.services.Audio != nil {
		a.services.Audio.Close()
	}
}

// GetSceneManager returns the scene manager.
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// IsVerbose reports whether log output is enabled.
func (a *App) IsVerbose() bool {
	return a.verbose
}
