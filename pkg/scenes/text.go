package scenes

import (
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

// lineHeight is the advance between lines of the built-in 7x13 face.
const lineHeight = 16

var uiFace text.Face

// defaultFace returns the built-in bitmap face, created on first use.
func defaultFace() text.Face {
	if uiFace == nil {
		uiFace = text.NewGoXFace(basicfont.Face7x13)
	}
	return uiFace
}

// drawLines draws lines top-left aligned at (x, y).
func drawLines(screen *ebiten.Image, lines []string, x, y float64, clr color.Color) {
	face := defaultFace()
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.LineSpacing = lineHeight
	text.Draw(screen, strings.Join(lines, "\n"), face, op)
}

// drawCentered draws lines centred horizontally on the screen, starting at y.
func drawCentered(screen *ebiten.Image, lines []string, y float64, clr color.Color) {
	face := defaultFace()
	sw := float64(screen.Bounds().Dx())
	for i, line := range lines {
		w, _ := text.Measure(line, face, 0)
		drawLines(screen, []string{line}, (sw-w)/2, y+float64(i*lineHeight), clr)
	}
}

// drawPanel draws lines on a translucent box, used by the debug overlay.
func drawPanel(screen *ebiten.Image, lines []string, x, y float64) {
	face := defaultFace()
	var maxW float64
	for _, line := range lines {
		if w, _ := text.Measure(line, face, 0); w > maxW {
			maxW = w
		}
	}
	const pad = 6
	vector.DrawFilledRect(screen,
		float32(x), float32(y),
		float32(maxW+2*pad), float32(len(lines)*lineHeight+2*pad),
		color.NRGBA{A: 170}, false)
	drawLines(screen, lines, x+pad, y+pad, colornames.White)
}

// contrastColor picks black or white text for the given background.
func contrastColor(bg color.Color) color.Color {
	r, g, b, _ := bg.RGBA()
	// Rec. 601 luma on 16-bit channels.
	luma := (299*r + 587*g + 114*b) / 1000
	if luma > 0x7fff {
		return colornames.Black
	}
	return colornames.White
}
