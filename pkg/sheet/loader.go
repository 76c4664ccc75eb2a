package sheet

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io/fs"
	"path"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/webp" // Register WebP decoder (cwebp output of the extraction tool)
)

// Uploader turns a decoded image into a GPU texture.
// The default is ebiten.NewImageFromImage.
type Uploader func(img image.Image) *ebiten.Image

// DefaultUploader uploads through Ebitengine.
func DefaultUploader(img image.Image) *ebiten.Image {
	return ebiten.NewImageFromImage(img)
}

// Load reads the sheet image at name from fsys, checks it against grid and
// uploads it as a texture.
//
// Parameters:
//   - fsys: where the sheet lives (os.DirFS for a movies directory, or an embed.FS).
//   - name: slash-separated path within fsys (e.g. "intro/sheets/sprite_sheet_000.png").
//   - grid: columns, rows, frame count and frame rate of the sheet.
//
// Returns:
//   - The immutable SpriteSheet.
//   - A *LoadError if the file is missing, unreadable, undecodable, or its
//     pixel size is not an exact multiple of the grid.
func Load(fsys fs.FS, name string, grid Grid) (*SpriteSheet, error) {
	return LoadWith(fsys, name, grid, DefaultUploader)
}

// LoadWith is Load with an explicit texture uploader.
func LoadWith(fsys fs.FS, name string, grid Grid, upload Uploader) (*SpriteSheet, error) {
	name = cleanName(name)

	data, err := readSheet(fsys, name)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, newLoadError(Undecodable, name, err, "")
	}

	fw, fh, err := frameSize(name, img.Bounds(), grid)
	if err != nil {
		return nil, err
	}

	if upload == nil {
		upload = DefaultUploader
	}

	return &SpriteSheet{
		Path:        name,
		Grid:        grid,
		FrameWidth:  fw,
		FrameHeight: fh,
		texture:     upload(img),
	}, nil
}

// SheetInfo is the result of Inspect.
type SheetInfo struct {
	Path        string
	Format      string
	Width       int
	Height      int
	FrameWidth  int
	FrameHeight int
}

// Inspect checks a sheet against grid by reading only the image header.
// No texture is created, so it is usable from command line tools that never
// open a window.
func Inspect(fsys fs.FS, name string, grid Grid) (SheetInfo, error) {
	name = cleanName(name)
	info := SheetInfo{Path: name}

	data, err := readSheet(fsys, name)
	if err != nil {
		return info, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return info, newLoadError(Undecodable, name, err, "")
	}
	info.Format = format
	info.Width, info.Height = cfg.Width, cfg.Height

	fw, fh, err := frameSize(name, image.Rect(0, 0, cfg.Width, cfg.Height), grid)
	if err != nil {
		return info, err
	}
	info.FrameWidth, info.FrameHeight = fw, fh
	return info, nil
}

func readSheet(fsys fs.FS, name string) ([]byte, error) {
	if fsys == nil {
		return nil, newLoadError(Unreadable, name, nil, "no file system")
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newLoadError(NotFound, name, err, "")
		}
		return nil, newLoadError(Unreadable, name, err, "")
	}
	return data, nil
}

// cleanName normalizes a path for io/fs, which only accepts unrooted
// slash-separated names.
func cleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	return path.Clean(name)
}
