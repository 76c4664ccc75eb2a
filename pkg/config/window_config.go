package config

// Window and loop configuration.
// The logical screen is a 600x250 movie frame scaled x2, so such frames fill
// it without letterboxing.
const (
	// GameWindowWidth is the logical screen width in pixels.
	GameWindowWidth = 1200

	// GameWindowHeight is the logical screen height in pixels.
	GameWindowHeight = 500

	// WindowTitle is shown in the title bar.
	WindowTitle = "Cutscene Player"

	// TPS is the fixed update rate. Every Update advances playback by 1/TPS seconds.
	TPS = 60

	// FullscreenRestoreDelay is the number of ticks to wait after leaving
	// fullscreen before resetting the window size.
	FullscreenRestoreDelay = 3
)

// Default locations, relative to the working directory.
const (
	// DefaultAssetsDir is the root all manifest and sheet paths resolve against.
	DefaultAssetsDir = "assets"

	// DefaultCatalog is the catalog file inside the assets directory.
	DefaultCatalog = "catalog.yaml"

	// SettingsAppName is the gdata application name for persisted settings.
	SettingsAppName = "cutscene_player"
)

// DeltaTime returns the seconds simulated by one Update.
func DeltaTime() float64 {
	return 1.0 / float64(TPS)
}
