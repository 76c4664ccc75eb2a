package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents one screen of the application (the cutscene menu, a
// playing cutscene). Each scene has its own update and rendering logic.
type Scene interface {
	// Update updates the scene logic based on the elapsed time.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)
}

// Closer is optionally implemented by scenes that own resources (textures,
// audio players). SceneManager calls Close when switching away from them.
type Closer interface {
	Close()
}
