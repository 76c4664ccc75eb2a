package scenes

import (
	"log"

	"github.com/decker502/cutscene/pkg/cutscene"
	"github.com/decker502/cutscene/pkg/game"
)

// Services bundles the long-lived managers every scene needs.
// The App owns them; scenes only borrow.
type Services struct {
	Library  *cutscene.Library
	Audio    *game.AudioManager // may be nil when audio is unavailable
	Settings *game.SettingsManager
	Scenes   *game.SceneManager
}

// saveSettings persists settings, logging instead of failing.
func (s Services) saveSettings(scene string) {
	if s.Settings == nil {
		return
	}
	if err := s.Settings.Save(); err != nil {
		log.Printf("[%s] Warning: Failed to save settings: %v", scene, err)
	}
}
