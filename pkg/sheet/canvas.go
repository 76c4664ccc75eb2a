package sheet

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Rect is a destination rectangle in screen coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Canvas is the draw primitive the player depends on: draw the src region of
// a texture stretched over dst.
type Canvas interface {
	DrawTexture(texture *ebiten.Image, src image.Rectangle, dst Rect)
}

// ScreenCanvas draws onto an Ebitengine image, usually the screen passed to
// Game.Draw.
type ScreenCanvas struct {
	Target *ebiten.Image
	Filter ebiten.Filter
}

// DrawTexture implements Canvas.
func (c ScreenCanvas) DrawTexture(texture *ebiten.Image, src image.Rectangle, dst Rect) {
	if c.Target == nil || texture == nil || src.Empty() {
		return
	}
	frame := texture.SubImage(src).(*ebiten.Image)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(dst.W/float64(src.Dx()), dst.H/float64(src.Dy()))
	op.GeoM.Translate(dst.X, dst.Y)
	op.Filter = c.Filter
	c.Target.DrawImage(frame, op)
}

// FitRect returns the largest rectangle with the aspect ratio of a
// frameW x frameH frame centred inside a screenW x screenH area.
func FitRect(frameW, frameH, screenW, screenH int) Rect {
	if frameW <= 0 || frameH <= 0 || screenW <= 0 || screenH <= 0 {
		return Rect{}
	}
	sx := float64(screenW) / float64(frameW)
	sy := float64(screenH) / float64(frameH)
	scale := min(sx, sy)
	w := float64(frameW) * scale
	h := float64(frameH) * scale
	return Rect{
		X: (float64(screenW) - w) / 2,
		Y: (float64(screenH) - h) / 2,
		W: w,
		H: h,
	}
}

// FillRect stretches to the whole screen, ignoring aspect ratio.
func FillRect(screenW, screenH int) Rect {
	return Rect{W: float64(screenW), H: float64(screenH)}
}
