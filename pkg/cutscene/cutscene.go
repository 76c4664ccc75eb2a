package cutscene

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"time"

	"github.com/decker502/cutscene/pkg/sheet"
	"github.com/hajimehoshi/ebiten/v2"
)

// AudioTrack is the soundtrack played alongside the frames.
// *audio.Player from Ebitengine satisfies it.
type AudioTrack interface {
	Play()
	Pause()
	SetPosition(offset time.Duration) error
	IsPlaying() bool
}

// State is the playback state of a Cutscene.
type State int

const (
	// Stopped shows nothing; the frame position is back at 0.
	Stopped State = iota
	// Playing advances frames every Update.
	Playing
	// Paused holds the current frame.
	Paused
	// Finished holds the last frame of a one-shot cutscene until Restart or Stop.
	Finished
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Cutscene plays an ordered run of sprite sheets as one continuous video.
//
// A single FrameClock spans every frame of every sheet. Global frame g is
// shown by the player of sheet g/FramesPerSheet, positioned at local frame
// g%FramesPerSheet.
type Cutscene struct {
	id       string
	manifest *Manifest
	sheets   []*sheet.SpriteSheet
	players  []*sheet.Player // one per sheet
	clock    *sheet.FrameClock
	audio    AudioTrack
	state    State
	loops    int // clock passes already synced to the soundtrack

	onFinished func(id string)
}

// New assembles a cutscene from loaded sheets. The sheets must match the
// manifest one to one.
func New(id string, m *Manifest, sheets []*sheet.SpriteSheet) (*Cutscene, error) {
	if m == nil {
		return nil, fmt.Errorf("cutscene %s: nil manifest", id)
	}
	if len(sheets) != m.SheetCount() {
		return nil, fmt.Errorf("cutscene %s: manifest lists %d sheets, got %d", id, m.SheetCount(), len(sheets))
	}
	for i, s := range sheets {
		if s == nil {
			return nil, fmt.Errorf("cutscene %s: sheet %d is nil", id, i)
		}
		want := m.SheetGrid(i)
		if s.Grid.Columns != want.Columns || s.Grid.Rows != want.Rows || s.Grid.FrameCount != want.FrameCount {
			return nil, fmt.Errorf("cutscene %s: sheet %d grid %+v does not match manifest %+v", id, i, s.Grid, want)
		}
		if i > 0 && (s.FrameWidth != sheets[0].FrameWidth || s.FrameHeight != sheets[0].FrameHeight) {
			return nil, fmt.Errorf("cutscene %s: sheet %d frame size %dx%d differs from %dx%d",
				id, i, s.FrameWidth, s.FrameHeight, sheets[0].FrameWidth, sheets[0].FrameHeight)
		}
	}

	clock, err := sheet.NewFrameClock(m.FrameRate, m.TotalFrames, m.PlaybackMode())
	if err != nil {
		return nil, fmt.Errorf("cutscene %s: %w", id, err)
	}

	players := make([]*sheet.Player, len(sheets))
	for i, s := range sheets {
		p, err := sheet.NewPlayer(s, sheet.Once)
		if err != nil {
			return nil, fmt.Errorf("cutscene %s: sheet %d: %w", id, i, err)
		}
		players[i] = p
	}

	return &Cutscene{
		id:       id,
		manifest: m,
		sheets:   sheets,
		players:  players,
		clock:    clock,
	}, nil
}

// SetAudio attaches a soundtrack. It is started, paused and rewound together
// with the frames.
func (c *Cutscene) SetAudio(track AudioTrack) {
	c.audio = track
}

// OnFinished registers a callback fired once when a one-shot cutscene
// reaches its end.
func (c *Cutscene) OnFinished(fn func(id string)) {
	c.onFinished = fn
}

// Play starts playback from frame 0, or resumes if paused.
func (c *Cutscene) Play() {
	switch c.state {
	case Playing:
		return
	case Paused:
		c.Resume()
		return
	}
	c.clock.Restart()
	c.loops = 0
	c.state = Playing
	c.SyncAudio()
	log.Printf("[Cutscene] %s: playing (%d frames at %.1f fps)", c.id, c.clock.FrameCount(), c.clock.FrameRate())
}

// Stop halts playback and rewinds to frame 0.
func (c *Cutscene) Stop() {
	if c.state == Stopped {
		return
	}
	c.state = Stopped
	c.clock.Restart()
	c.loops = 0
	c.stopAudio()
	log.Printf("[Cutscene] %s: stopped", c.id)
}

// Toggle plays a stopped or finished cutscene and stops a running one.
func (c *Cutscene) Toggle() {
	if c.state == Playing || c.state == Paused {
		c.Stop()
		return
	}
	c.Play()
}

// Pause holds the current frame.
func (c *Cutscene) Pause() {
	if c.state != Playing {
		return
	}
	c.state = Paused
	if c.audio != nil {
		c.audio.Pause()
	}
}

// Resume continues a paused cutscene.
func (c *Cutscene) Resume() {
	if c.state != Paused {
		return
	}
	c.state = Playing
	c.SyncAudio()
}

// Restart rewinds to frame 0 and plays.
func (c *Cutscene) Restart() {
	c.state = Stopped
	c.stopAudio()
	c.Play()
}

// Update advances playback by delta seconds. It must be called from the
// game loop once per tick.
func (c *Cutscene) Update(delta float64) {
	if c.state != Playing {
		return
	}
	c.clock.Advance(delta)
	if loops := c.clock.Loops(); loops != c.loops {
		// A one-shot soundtrack starts over with each pass of the frames.
		c.loops = loops
		c.SyncAudio()
	}
	if !c.clock.Finished() {
		return
	}

	c.state = Finished
	if c.audio != nil {
		c.audio.Pause()
	}
	log.Printf("[Cutscene] %s: finished after %.2fs", c.id, c.clock.Elapsed())
	if c.onFinished != nil {
		c.onFinished(c.id)
	}
}

// Draw draws the current frame into dst through the active sheet's player
// and reports whether anything was drawn. A stopped cutscene draws nothing;
// the caller clears the screen with Background.
func (c *Cutscene) Draw(canvas sheet.Canvas, dst sheet.Rect) bool {
	if c.state == Stopped || canvas == nil {
		return false
	}
	_, p := c.activePlayer()
	p.Draw(canvas, dst)
	return true
}

// activePlayer returns the player of the sheet holding the current frame,
// positioned on that frame.
func (c *Cutscene) activePlayer() (int, *sheet.Player) {
	idx, local := c.SheetIndex(c.clock.CurrentFrame())
	p := c.players[idx]
	p.Clock().Seek(float64(local) / p.Clock().FrameRate())
	return idx, p
}

// SheetIndex splits a global frame into sheet index and local frame.
func (c *Cutscene) SheetIndex(global int) (sheetIndex, local int) {
	per := c.manifest.FramesPerSheet
	sheetIndex = global / per
	if sheetIndex >= len(c.sheets) {
		sheetIndex = len(c.sheets) - 1
	}
	return sheetIndex, global - sheetIndex*per
}

// SourceRect returns the sheet index and source rectangle of the current frame.
func (c *Cutscene) SourceRect() (int, image.Rectangle) {
	idx, p := c.activePlayer()
	return idx, p.SourceRect()
}

// ID returns the catalog ID.
func (c *Cutscene) ID() string { return c.id }

// Manifest returns the manifest the cutscene was built from.
func (c *Cutscene) Manifest() *Manifest { return c.manifest }

// State returns the playback state.
func (c *Cutscene) State() State { return c.state }

// IsPlaying reports whether frames are advancing.
func (c *Cutscene) IsPlaying() bool { return c.state == Playing }

// IsFinished reports whether a one-shot cutscene has reached its end.
func (c *Cutscene) IsFinished() bool { return c.state == Finished }

// CurrentFrame returns the global frame index.
func (c *Cutscene) CurrentFrame() int { return c.clock.CurrentFrame() }

// TotalFrames returns the number of frames across all sheets.
func (c *Cutscene) TotalFrames() int { return c.clock.FrameCount() }

// Elapsed returns seconds of playback since the last start.
func (c *Cutscene) Elapsed() float64 { return c.clock.Elapsed() }

// Duration returns the length of one pass in seconds.
func (c *Cutscene) Duration() float64 { return c.clock.Duration() }

// FrameSize returns the pixel size of a single frame.
func (c *Cutscene) FrameSize() (int, int) {
	return c.sheets[0].FrameWidth, c.sheets[0].FrameHeight
}

// Background returns the clear colour for the stopped state.
func (c *Cutscene) Background() color.Color { return c.manifest.BackgroundColor() }

// Filter returns the texture filter used when scaling frames.
func (c *Cutscene) Filter() ebiten.Filter {
	if c.manifest.Filter == "linear" {
		return ebiten.FilterLinear
	}
	return ebiten.FilterNearest
}

// Sheets returns the loaded sheets in playback order.
func (c *Cutscene) Sheets() []*sheet.SpriteSheet { return c.sheets }

// SyncAudio moves the soundtrack to the current playback time and plays it
// if the frames are playing. Call it after something outside the cutscene,
// such as unmuting, paused the soundtrack.
func (c *Cutscene) SyncAudio() {
	if c.audio == nil || c.state != Playing {
		return
	}
	if err := c.audio.SetPosition(c.audioPosition()); err != nil {
		log.Printf("[Cutscene] %s: Warning: failed to seek audio: %v", c.id, err)
	}
	c.audio.Play()
}

func (c *Cutscene) audioPosition() time.Duration {
	return time.Duration(c.clock.Elapsed() * float64(time.Second))
}

func (c *Cutscene) stopAudio() {
	if c.audio == nil {
		return
	}
	c.audio.Pause()
	if err := c.audio.SetPosition(0); err != nil {
		log.Printf("[Cutscene] %s: Warning: failed to rewind audio: %v", c.id, err)
	}
}
