package cutscene

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/decker502/cutscene/pkg/sheet"
	"github.com/hajimehoshi/ebiten/v2"
)

// encodeTestPNG creates a w x h opaque PNG.
func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// noUpload keeps tests off the GPU.
func noUpload(image.Image) *ebiten.Image { return nil }

// fakeTrack records soundtrack calls.
type fakeTrack struct {
	playing  bool
	plays    int
	pauses   int
	seeks    int
	position time.Duration
}

func (f *fakeTrack) Play()           { f.playing = true; f.plays++ }
func (f *fakeTrack) Pause()          { f.playing = false; f.pauses++ }
func (f *fakeTrack) IsPlaying() bool { return f.playing }

func (f *fakeTrack) SetPosition(offset time.Duration) error {
	f.position = offset
	f.seeks++
	return nil
}

type drawCall struct {
	texture *ebiten.Image
	src     image.Rectangle
	dst     sheet.Rect
}

type recordingCanvas struct {
	calls []drawCall
}

func (c *recordingCanvas) DrawTexture(texture *ebiten.Image, src image.Rectangle, dst sheet.Rect) {
	c.calls = append(c.calls, drawCall{texture: texture, src: src, dst: dst})
}
