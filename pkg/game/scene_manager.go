package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneFactory builds the playback scene for a cutscene ID. It returns nil
// when the cutscene cannot be loaded.
type SceneFactory func(cutsceneID string) Scene

// SceneManager manages the application's high-level state by controlling
// which scene is active. Only one scene's Update and Draw run at a time.
type SceneManager struct {
	currentScene Scene
	sceneFactory SceneFactory
}

// NewSceneManager creates a SceneManager with no active scene; use SwitchTo
// to set the initial scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SetSceneFactory installs the factory used by PlayCutscene.
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SwitchTo changes the active scene. The previous scene is closed if it
// implements Closer.
func (sm *SceneManager) SwitchTo(scene Scene) {
	if sm.currentScene == scene {
		return
	}
	if c, ok := sm.currentScene.(Closer); ok {
		c.Close()
	}
	sm.currentScene = scene
}

// GetCurrentScene returns the active scene, or nil.
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// PlayCutscene switches to the playback scene for cutsceneID.
// It reports whether the switch happened; on failure the current scene stays.
func (sm *SceneManager) PlayCutscene(cutsceneID string) bool {
	log.Printf("[SceneManager] Loading cutscene: %s", cutsceneID)

	if sm.sceneFactory == nil {
		log.Printf("[SceneManager] Error: SceneFactory not set")
		return false
	}

	newScene := sm.sceneFactory(cutsceneID)
	if newScene == nil {
		log.Printf("[SceneManager] Error: could not create scene for cutscene: %s", cutsceneID)
		return false
	}

	sm.SwitchTo(newScene)
	log.Printf("[SceneManager] Switched to cutscene: %s", cutsceneID)
	return true
}

// Update updates the active scene. deltaTime is in seconds.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw renders the active scene.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}

// Close closes the active scene if it owns resources.
func (sm *SceneManager) Close() {
	if c, ok := sm.currentScene.(Closer); ok {
		c.Close()
	}
	sm.currentScene = nil
}
