package sheet

import (
	"fmt"
	"image"
)

// PlayerState is the playback state of a Player.
type PlayerState int

const (
	// Playing means frames are still advancing.
	Playing PlayerState = iota
	// Finished means a Once player has shown its last frame. It stays
	// finished until Restart.
	Finished
)

func (s PlayerState) String() string {
	if s == Finished {
		return "finished"
	}
	return "playing"
}

// Player animates a single sprite sheet.
type Player struct {
	sheet *SpriteSheet
	clock *FrameClock
}

// NewPlayer creates a player positioned at frame 0.
func NewPlayer(s *SpriteSheet, mode PlaybackMode) (*Player, error) {
	if s == nil {
		return nil, fmt.Errorf("new player: nil sprite sheet")
	}
	clock, err := NewFrameClock(s.Grid.FrameRate, s.Grid.FrameCount, mode)
	if err != nil {
		return nil, fmt.Errorf("new player for %s: %w", s.Path, err)
	}
	return &Player{sheet: s, clock: clock}, nil
}

// Tick advances playback by delta seconds and returns the source rectangle
// of the frame now current.
func (p *Player) Tick(delta float64) image.Rectangle {
	p.clock.Advance(delta)
	return p.SourceRect()
}

// SourceRect returns the source rectangle of the current frame.
func (p *Player) SourceRect() image.Rectangle {
	return p.sheet.FrameRect(p.clock.CurrentFrame())
}

// CurrentFrame returns the index of the frame being shown.
func (p *Player) CurrentFrame() int {
	return p.clock.CurrentFrame()
}

// State returns Playing or Finished.
func (p *Player) State() PlayerState {
	if p.clock.Finished() {
		return Finished
	}
	return Playing
}

// IsFinished reports whether a non-looping player has reached its end.
func (p *Player) IsFinished() bool {
	return p.State() == Finished
}

// Restart rewinds to frame 0 and returns to Playing.
func (p *Player) Restart() {
	p.clock.Restart()
}

// Sheet returns the sheet being played.
func (p *Player) Sheet() *SpriteSheet { return p.sheet }

// Clock returns the underlying frame clock.
func (p *Player) Clock() *FrameClock { return p.clock }

// Draw draws the current frame into dst. This is the only place the player
// calls into the host renderer.
func (p *Player) Draw(canvas Canvas, dst Rect) {
	if canvas == nil {
		return
	}
	canvas.DrawTexture(p.sheet.Texture(), p.SourceRect(), dst)
}
