// check_sheets validates cutscene sprite sheets without opening a window.
//
// Usage:
//
//	go run ./cmd/check_sheets -assets assets -catalog catalog.yaml
//	go run ./cmd/check_sheets -assets assets -catalog movies/intro/cutscene.yaml
//
// Every sheet's dimensions are checked against its manifest grid. The exit
// status is 1 when any cutscene has a problem.
package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/decker502/cutscene/pkg/config"
	"github.com/decker502/cutscene/pkg/cutscene"
	"github.com/decker502/cutscene/pkg/sheet"
)

var (
	assetsFlag  = flag.String("assets", config.DefaultAssetsDir, "Directory holding the catalog, manifests and sheets")
	catalogFlag = flag.String("catalog", config.DefaultCatalog, "Catalog (or single manifest) inside the assets directory")
	quietFlag   = flag.Bool("quiet", false, "Only print problems")
)

func main() {
	flag.Parse()

	failures, err := run(os.DirFS(*assetsFlag), *catalogFlag, os.Stdout, *quietFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if failures > 0 {
		fmt.Printf("\n%d cutscene(s) failed\n", failures)
		os.Exit(1)
	}
}

// run checks every cutscene of the catalog and returns the number that
// failed. err is set only when the catalog itself cannot be read.
func run(fsys fs.FS, catalogName string, out io.Writer, quiet bool) (int, error) {
	catalog, err := openCatalog(fsys, catalogName)
	if err != nil {
		return 0, err
	}

	failures := 0
	for _, entry := range catalog.Cutscenes {
		if !checkCutscene(fsys, catalog.ManifestPath(entry), entry.ID, out, quiet) {
			failures++
		}
	}
	return failures, nil
}

func openCatalog(fsys fs.FS, name string) (*cutscene.Catalog, error) {
	catalog, catalogErr := cutscene.LoadCatalog(fsys, name)
	if catalogErr == nil && len(catalog.Cutscenes) > 0 {
		return catalog, nil
	}
	if _, err := cutscene.LoadManifest(fsys, name); err == nil {
		return cutscene.SingleCatalog(name), nil
	}
	if catalogErr != nil {
		return nil, catalogErr
	}
	return nil, fmt.Errorf("catalog %s lists no cutscenes", name)
}

// checkCutscene inspects each sheet of one manifest and reports whether all
// of them match.
func checkCutscene(fsys fs.FS, manifestPath, id string, out io.Writer, quiet bool) bool {
	m, err := cutscene.LoadManifest(fsys, manifestPath)
	if err != nil {
		fmt.Fprintf(out, "✗ %s: %v\n", id, err)
		return false
	}
	if !quiet {
		fmt.Fprintf(out, "%s: %d sheets, %d frames at %.1f fps (%.1fs)\n",
			id, m.SheetCount(), m.TotalFrames, m.FrameRate, m.Duration())
	}

	ok := true
	var frameW, frameH int
	for i, p := range m.SheetPaths() {
		info, err := sheet.Inspect(fsys, p, m.SheetGrid(i))
		if err != nil {
			fmt.Fprintf(out, "  ✗ %v\n", err)
			ok = false
			continue
		}
		if frameW == 0 {
			frameW, frameH = info.FrameWidth, info.FrameHeight
		} else if info.FrameWidth != frameW || info.FrameHeight != frameH {
			fmt.Fprintf(out, "  ✗ %s: frame size %dx%d differs from %dx%d\n",
				p, info.FrameWidth, info.FrameHeight, frameW, frameH)
			ok = false
			continue
		}
		if !quiet {
			fmt.Fprintf(out, "  ✓ %s %dx%d (%s, frames %dx%d)\n",
				p, info.Width, info.Height, info.Format, info.FrameWidth, info.FrameHeight)
		}
	}

	if audio := m.AudioPath(); audio != "" {
		if _, err := fs.Stat(fsys, audio); err != nil {
			fmt.Fprintf(out, "  ✗ soundtrack %s: %v\n", audio, err)
			ok = false
		} else if !quiet {
			fmt.Fprintf(out, "  ✓ soundtrack %s\n", audio)
		}
	}
	return ok
}
