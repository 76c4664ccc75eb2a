// Package sheet plays pre-rendered video frames packed into sprite-sheet
// images.
//
// A sprite sheet is one image holding equally sized frames laid out
// left-to-right, top-to-bottom. Load decodes the image and checks it against
// the declared Grid, FrameClock turns elapsed seconds into a frame index, and
// Player combines the two to produce the source rectangle of the current
// frame and draw it through a Canvas.
//
// Everything in this package runs on the goroutine driving the Ebitengine
// loop. Nothing blocks and nothing is locked.
package sheet

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Grid is the frame layout metadata negotiated with the extraction tool.
type Grid struct {
	Columns    int     `yaml:"columns"`
	Rows       int     `yaml:"rows"`
	FrameCount int     `yaml:"frame_count"` // frames actually used, <= Columns*Rows
	FrameRate  float64 `yaml:"frame_rate"`  // frames per second of playback
}

// Capacity returns the number of cells in the grid.
func (g Grid) Capacity() int {
	return g.Columns * g.Rows
}

// Validate reports whether the grid can describe a playable sheet.
func (g Grid) Validate() error {
	switch {
	case g.Columns <= 0 || g.Rows <= 0:
		return fmt.Errorf("columns and rows must be positive, got %dx%d", g.Columns, g.Rows)
	case g.FrameCount <= 0:
		return fmt.Errorf("frame count must be positive, got %d", g.FrameCount)
	case g.FrameCount > g.Capacity():
		return fmt.Errorf("frame count %d exceeds grid capacity %d", g.FrameCount, g.Capacity())
	case g.FrameRate <= 0:
		return fmt.Errorf("frame rate must be positive, got %v", g.FrameRate)
	}
	return nil
}

// SpriteSheet is a loaded sheet texture together with its layout.
// It is owned by a single player and never modified after Load.
type SpriteSheet struct {
	Path        string
	Grid        Grid
	FrameWidth  int
	FrameHeight int

	texture *ebiten.Image
}

// Texture returns the uploaded sheet image.
func (s *SpriteSheet) Texture() *ebiten.Image {
	return s.texture
}

// Duration returns the playback length of the sheet in seconds.
func (s *SpriteSheet) Duration() float64 {
	return float64(s.Grid.FrameCount) / s.Grid.FrameRate
}

// FrameRect returns the source rectangle of frame i within the texture.
// i is clamped to [0, FrameCount).
func (s *SpriteSheet) FrameRect(i int) image.Rectangle {
	if i < 0 {
		i = 0
	}
	if i >= s.Grid.FrameCount {
		i = s.Grid.FrameCount - 1
	}
	x := (i % s.Grid.Columns) * s.FrameWidth
	y := (i / s.Grid.Columns) * s.FrameHeight
	return image.Rect(x, y, x+s.FrameWidth, y+s.FrameHeight)
}

// Dispose releases the GPU texture. The sheet must not be drawn afterwards.
func (s *SpriteSheet) Dispose() {
	if s.texture != nil {
		s.texture.Deallocate()
		s.texture = nil
	}
}

// frameSize derives the per-frame size from the image bounds and checks that
// the grid divides the image exactly.
func frameSize(path string, bounds image.Rectangle, grid Grid) (int, int, error) {
	if err := grid.Validate(); err != nil {
		return 0, 0, newLoadError(InvalidGrid, path, nil, "%v", err)
	}
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return 0, 0, newLoadError(DimensionMismatch, path, nil, "image is empty (%dx%d)", w, h)
	}
	if w%grid.Columns != 0 {
		return 0, 0, newLoadError(DimensionMismatch, path, nil,
			"width %d is not divisible by %d columns", w, grid.Columns)
	}
	if h%grid.Rows != 0 {
		return 0, 0, newLoadError(DimensionMismatch, path, nil,
			"height %d is not divisible by %d rows", h, grid.Rows)
	}
	return w / grid.Columns, h / grid.Rows, nil
}
