package sheet

import (
	"errors"
	"fmt"
	"math"
)

// PlaybackMode selects what happens after the last frame.
type PlaybackMode int

const (
	// Once plays the frames a single time and holds the last frame.
	Once PlaybackMode = iota
	// Loop wraps back to frame 0 forever.
	Loop
)

func (m PlaybackMode) String() string {
	switch m {
	case Once:
		return "once"
	case Loop:
		return "loop"
	default:
		return fmt.Sprintf("PlaybackMode(%d)", int(m))
	}
}

// ParsePlaybackMode accepts "once", "loop" and the empty string (once).
func ParsePlaybackMode(s string) (PlaybackMode, error) {
	switch s {
	case "", "once":
		return Once, nil
	case "loop":
		return Loop, nil
	}
	return Once, fmt.Errorf("unknown playback mode %q (want once or loop)", s)
}

// ErrInvalidClock is returned when a clock is built with a non-positive
// frame rate or frame count.
var ErrInvalidClock = errors.New("invalid frame clock")

// frameEpsilon absorbs float accumulation error so that sixty ticks of 1/60s
// land on frame 15 at 15 fps rather than 14.
const frameEpsilon = 1e-9

// FrameClock converts accumulated playback time into a frame index.
//
// The frame index is never stored. It is derived from elapsed time on every
// call, so rounding in individual deltas cannot drift the cadence. A looping
// clock keeps elapsed within one pass and counts completed passes.
type FrameClock struct {
	frameRate  float64
	frameCount int
	mode       PlaybackMode
	elapsed    float64 // seconds since start, last Restart or last wrap
	loops      int
}

// NewFrameClock creates a clock at zero elapsed time.
func NewFrameClock(frameRate float64, frameCount int, mode PlaybackMode) (*FrameClock, error) {
	if frameRate <= 0 || math.IsNaN(frameRate) || math.IsInf(frameRate, 0) {
		return nil, fmt.Errorf("%w: frame rate must be positive, got %v", ErrInvalidClock, frameRate)
	}
	if frameCount <= 0 {
		return nil, fmt.Errorf("%w: frame count must be positive, got %d", ErrInvalidClock, frameCount)
	}
	return &FrameClock{
		frameRate:  frameRate,
		frameCount: frameCount,
		mode:       mode,
	}, nil
}

// Advance adds delta seconds of playback. Negative or NaN deltas are ignored.
func (c *FrameClock) Advance(delta float64) {
	if !(delta > 0) {
		return
	}
	c.elapsed += delta
	c.wrap()
}

// Restart returns the clock to zero elapsed time.
func (c *FrameClock) Restart() {
	c.elapsed = 0
	c.loops = 0
}

// Seek sets the elapsed time directly, clamped at zero. The loop count is
// kept.
func (c *FrameClock) Seek(elapsed float64) {
	if !(elapsed > 0) {
		elapsed = 0
	}
	c.elapsed = elapsed
	c.wrap()
}

// wrap folds whole passes of a looping clock into the loop counter.
func (c *FrameClock) wrap() {
	if c.mode != Loop {
		return
	}
	raw := c.rawFrame()
	if raw < c.frameCount {
		return
	}
	n := raw / c.frameCount
	c.loops += n
	c.elapsed -= float64(n) * c.Duration()
	if c.elapsed < 0 {
		c.elapsed = 0
	}
}

// CurrentFrame returns the frame to display for the elapsed time.
func (c *FrameClock) CurrentFrame() int {
	raw := c.rawFrame()
	if c.mode == Loop {
		return raw % c.frameCount
	}
	if raw >= c.frameCount {
		return c.frameCount - 1
	}
	return raw
}

// Loops returns how many times a looping clock has wrapped.
// It is always 0 for Once.
func (c *FrameClock) Loops() int {
	if c.mode != Loop {
		return 0
	}
	return c.loops + c.rawFrame()/c.frameCount
}

// Finished reports whether a Once clock has played its last frame for a full
// frame period. Looping clocks never finish.
func (c *FrameClock) Finished() bool {
	return c.mode == Once && c.rawFrame() >= c.frameCount
}

// Elapsed returns seconds since start or the last Restart. For a looping
// clock it is the position within the current pass.
func (c *FrameClock) Elapsed() float64 { return c.elapsed }

// Duration returns the length of one pass over all frames, in seconds.
func (c *FrameClock) Duration() float64 {
	return float64(c.frameCount) / c.frameRate
}

// FrameRate returns the configured frames per second.
func (c *FrameClock) FrameRate() float64 { return c.frameRate }

// FrameCount returns the number of frames in one pass.
func (c *FrameClock) FrameCount() int { return c.frameCount }

// Mode returns the playback mode.
func (c *FrameClock) Mode() PlaybackMode { return c.mode }

func (c *FrameClock) rawFrame() int {
	f := math.Floor(c.elapsed*c.frameRate + frameEpsilon)
	if f >= math.MaxInt {
		return math.MaxInt
	}
	return int(f)
}
