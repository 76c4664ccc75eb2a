package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/decker502/cutscene/pkg/app"
	"github.com/decker502/cutscene/pkg/config"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging")
	assetsFlag  = flag.String("assets", config.DefaultAssetsDir, "Directory holding the catalog, manifests and sheets")
	catalogFlag = flag.String("catalog", config.DefaultCatalog, "Catalog (or single manifest) inside the assets directory")
	playFlag    = flag.String("play", "", "Cutscene ID to play immediately instead of showing the menu")
	watchFlag   = flag.Bool("watch", false, "Reload cutscenes when their files change")
)

func main() {
	flag.Parse()

	gameApp, err := app.NewApp(app.Config{
		Verbose:   *verboseFlag,
		AssetsDir: *assetsFlag,
		Catalog:   *catalogFlag,
		Play:      *playFlag,
		Watch:     *watchFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer gameApp.Close()

	ebiten.SetWindowSize(config.GameWindowWidth, config.GameWindowHeight)
	ebiten.SetWindowTitle(config.WindowTitle)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(config.TPS)

	if err := ebiten.RunGame(gameApp); err != nil {
		// os.Exit skips deferred calls.
		gameApp.Close()
		fmt.Fprintf(os.Stderr, "Game exited with error: %v\n", err)
		os.Exit(1)
	}
}
