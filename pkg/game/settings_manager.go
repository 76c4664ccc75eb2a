package game

import (
	"fmt"
	"log"
	"slices"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// PlayerSettings holds the viewer preferences persisted between runs.
// They are global to the installation, not per cutscene.
type PlayerSettings struct {
	// Audio
	MusicVolume  float64 `yaml:"musicVolume"`  // soundtrack volume 0.0 ~ 1.0
	MusicEnabled bool    `yaml:"musicEnabled"` // soundtrack on/off

	// Display
	Fullscreen  bool `yaml:"fullscreen"`  // start in fullscreen
	ShowOverlay bool `yaml:"showOverlay"` // frame/sheet/TPS overlay
	KeepAspect  bool `yaml:"keepAspect"`  // letterbox instead of stretching

	// Cutscenes the viewer has seen to the end. A watched cutscene can
	// always be skipped.
	Watched []string `yaml:"watched,omitempty"`
}

// DefaultSettings returns the settings used on first run.
func DefaultSettings() *PlayerSettings {
	return &PlayerSettings{
		MusicVolume:  0.7,
		MusicEnabled: true,
		Fullscreen:   false,
		ShowOverlay:  false,
		KeepAspect:   true,
	}
}

// SettingsManager loads, edits and saves PlayerSettings.
type SettingsManager struct {
	gdataManager *gdata.Manager  // cross-platform storage, nil means memory only
	settings     *PlayerSettings // current settings
}

const (
	settingsObject   = "settings"
	settingsProperty = "player"
)

// NewSettingsManager creates a settings manager and loads saved settings.
//
// Parameters:
//   - gdataManager: storage from gdata.Open, may be nil (settings then live
//     in memory only).
//
// Returns:
//   - *SettingsManager: never nil.
//   - error: always nil; a failed load falls back to defaults and is logged.
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// Load reads settings from gdata. Missing data yields defaults.
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil {
		sm.settings = DefaultSettings()
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.MusicVolume = clampVolume(loaded.MusicVolume)

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save writes settings to gdata. Without storage it does nothing.
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings returns the live settings value.
func (sm *SettingsManager) GetSettings() *PlayerSettings {
	return sm.settings
}

// SetMusicVolume sets the soundtrack volume, clamped to 0.0 ~ 1.0.
// Call Save to persist.
func (sm *SettingsManager) SetMusicVolume(volume float64) {
	sm.settings.MusicVolume = clampVolume(volume)
}

// SetMusicEnabled turns the soundtrack on or off.
func (sm *SettingsManager) SetMusicEnabled(enabled bool) {
	sm.settings.MusicEnabled = enabled
}

// SetFullscreen records the fullscreen preference.
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// SetShowOverlay toggles the debug overlay.
func (sm *SettingsManager) SetShowOverlay(show bool) {
	sm.settings.ShowOverlay = show
}

// SetKeepAspect selects letterboxing (true) or stretching (false).
func (sm *SettingsManager) SetKeepAspect(keep bool) {
	sm.settings.KeepAspect = keep
}

// MarkWatched records that the viewer has seen a cutscene to the end.
// It reports whether the set changed.
func (sm *SettingsManager) MarkWatched(id string) bool {
	if id == "" || slices.Contains(sm.settings.Watched, id) {
		return false
	}
	sm.settings.Watched = append(sm.settings.Watched, id)
	slices.Sort(sm.settings.Watched)
	return true
}

// HasWatched reports whether a cutscene has been seen to the end.
func (sm *SettingsManager) HasWatched(id string) bool {
	return slices.Contains(sm.settings.Watched, id)
}

// clampVolume limits a volume to 0.0 ~ 1.0.
func clampVolume(volume float64) float64 {
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}
