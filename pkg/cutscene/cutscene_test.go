package cutscene

import (
	"image"
	"testing"
	"time"

	"github.com/decker502/cutscene/pkg/sheet"
)

// newTestCutscene builds a cutscene of three 2x2 sheets holding 10 frames of
// 600x250 at 10 fps, without textures.
func newTestCutscene(t *testing.T, mode string) *Cutscene {
	t.Helper()
	m, err := ParseManifest([]byte(`
frame_rate: 10
columns: 2
rows: 2
total_frames: 10
sheets:
  pattern: sheet_%d.png
  count: 3
mode: ` + mode))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}

	sheets := make([]*sheet.SpriteSheet, m.SheetCount())
	for i := range sheets {
		sheets[i] = &sheet.SpriteSheet{
			Path:        m.SheetPath(i),
			Grid:        m.SheetGrid(i),
			FrameWidth:  600,
			FrameHeight: 250,
		}
	}

	cs, err := New("test", m, sheets)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return cs
}

func TestCutsceneStartsStopped(t *testing.T) {
	cs := newTestCutscene(t, "once")

	if cs.State() != Stopped {
		t.Errorf("State() = %v, want stopped", cs.State())
	}
	canvas := &recordingCanvas{}
	if cs.Draw(canvas, sheet.Rect{W: 600, H: 250}) {
		t.Error("stopped cutscene drew a frame")
	}
	cs.Update(1)
	if cs.CurrentFrame() != 0 {
		t.Errorf("stopped cutscene advanced to frame %d", cs.CurrentFrame())
	}
}

func TestCutsceneSpansSheets(t *testing.T) {
	cs := newTestCutscene(t, "once")
	cs.Play()

	tests := []struct {
		delta float64
		frame int
		sheet int
		src   image.Rectangle
	}{
		{0.0, 0, 0, image.Rect(0, 0, 600, 250)},
		{0.3, 3, 0, image.Rect(600, 250, 1200, 500)},
		{0.1, 4, 1, image.Rect(0, 0, 600, 250)},
		{0.5, 9, 2, image.Rect(600, 0, 1200, 250)},
	}

	for _, tt := range tests {
		cs.Update(tt.delta)
		if cs.CurrentFrame() != tt.frame {
			t.Fatalf("CurrentFrame() = %d, want %d", cs.CurrentFrame(), tt.frame)
		}
		idx, src := cs.SourceRect()
		if idx != tt.sheet || src != tt.src {
			t.Errorf("frame %d: SourceRect() = (%d, %v), want (%d, %v)", tt.frame, idx, src, tt.sheet, tt.src)
		}
	}
}

func TestCutsceneFinishesOnce(t *testing.T) {
	cs := newTestCutscene(t, "once")
	track := &fakeTrack{}
	cs.SetAudio(track)

	var finished []string
	cs.OnFinished(func(id string) { finished = append(finished, id) })

	cs.Play()
	if !track.playing {
		t.Fatal("soundtrack not started with playback")
	}

	for i := 0; i < 120; i++ {
		cs.Update(1.0 / 60.0)
	}

	if !cs.IsFinished() {
		t.Fatalf("State() = %v after 2s of a 1s cutscene, want finished", cs.State())
	}
	if len(finished) != 1 || finished[0] != "test" {
		t.Errorf("OnFinished calls = %v, want [test]", finished)
	}
	if track.playing {
		t.Error("soundtrack still playing after finish")
	}
	if cs.CurrentFrame() != 9 {
		t.Errorf("CurrentFrame() = %d, want last frame 9", cs.CurrentFrame())
	}

	// The last frame stays on screen.
	canvas := &recordingCanvas{}
	if !cs.Draw(canvas, sheet.Rect{W: 600, H: 250}) {
		t.Error("finished cutscene drew nothing")
	}
}

func TestCutsceneLoops(t *testing.T) {
	cs := newTestCutscene(t, "loop")
	cs.Play()

	cs.Update(1.5) // 15 frames into a 10 frame loop

	if cs.IsFinished() {
		t.Fatal("looping cutscene finished")
	}
	if cs.CurrentFrame() != 5 {
		t.Errorf("CurrentFrame() = %d, want 5", cs.CurrentFrame())
	}
}

func TestCutsceneToggleStopsAndRewinds(t *testing.T) {
	cs := newTestCutscene(t, "once")
	track := &fakeTrack{}
	cs.SetAudio(track)

	cs.Toggle()
	if !cs.IsPlaying() {
		t.Fatal("Toggle did not start playback")
	}
	cs.Update(0.45)

	cs.Toggle()
	if cs.State() != Stopped {
		t.Fatalf("State() = %v after second Toggle, want stopped", cs.State())
	}
	if cs.CurrentFrame() != 0 {
		t.Errorf("CurrentFrame() = %d after stop, want 0", cs.CurrentFrame())
	}
	if track.playing {
		t.Error("soundtrack still playing after stop")
	}
	if track.position != 0 {
		t.Errorf("soundtrack position = %v after stop, want 0", track.position)
	}
}

func TestCutsceneDrawsActiveSheetFrame(t *testing.T) {
	cs := newTestCutscene(t, "once")
	cs.Play()
	cs.Update(0.55) // frame 5: sheet 1, local frame 1

	canvas := &recordingCanvas{}
	dst := sheet.Rect{X: 10, Y: 20, W: 300, H: 125}
	if !cs.Draw(canvas, dst) {
		t.Fatal("Draw reported nothing drawn")
	}
	if len(canvas.calls) != 1 {
		t.Fatalf("DrawTexture calls = %d, want 1", len(canvas.calls))
	}
	call := canvas.calls[0]
	if want := image.Rect(600, 0, 1200, 250); call.src != want {
		t.Errorf("src = %v, want %v", call.src, want)
	}
	if call.dst != dst {
		t.Errorf("dst = %+v, want %+v", call.dst, dst)
	}
	if call.texture != cs.Sheets()[1].Texture() {
		t.Error("frame drawn from the wrong sheet")
	}

	// Going back to an earlier sheet repositions its player.
	cs.Restart()
	cs.Update(0.3)
	canvas.calls = nil
	cs.Draw(canvas, dst)
	if want := image.Rect(600, 250, 1200, 500); canvas.calls[0].src != want {
		t.Errorf("after restart src = %v, want %v", canvas.calls[0].src, want)
	}
}

func TestCutsceneSyncAudioFollowsFrames(t *testing.T) {
	cs := newTestCutscene(t, "once")
	track := &fakeTrack{}
	cs.SetAudio(track)
	cs.Play()
	cs.Update(0.2)

	// Muting pauses the track behind the cutscene's back while frames
	// keep advancing.
	track.Pause()
	cs.Update(0.4)

	cs.SyncAudio()
	if !track.playing {
		t.Fatal("SyncAudio did not restart the soundtrack")
	}
	want := time.Duration(cs.Elapsed() * float64(time.Second))
	if track.position != want {
		t.Errorf("position = %v, want %v", track.position, want)
	}

	cs.Pause()
	cs.SyncAudio()
	if track.playing {
		t.Error("SyncAudio played the soundtrack of a paused cutscene")
	}
}

func TestCutsceneResumeSeeksAudio(t *testing.T) {
	cs := newTestCutscene(t, "once")
	track := &fakeTrack{}
	cs.SetAudio(track)
	cs.Play()
	cs.Update(0.3)
	cs.Pause()

	track.position = 7 * time.Second
	cs.Resume()
	want := time.Duration(cs.Elapsed() * float64(time.Second))
	if track.position != want || !track.playing {
		t.Errorf("after Resume: position=%v playing=%v, want %v/true", track.position, track.playing, want)
	}
}

func TestCutsceneLoopRewindsAudio(t *testing.T) {
	cs := newTestCutscene(t, "loop")
	track := &fakeTrack{}
	cs.SetAudio(track)
	cs.Play()
	cs.Update(0.5)
	seeks := track.seeks

	cs.Update(0.7) // wraps to frame 2
	if track.seeks != seeks+1 {
		t.Fatalf("seeks = %d after wrap, want %d", track.seeks, seeks+1)
	}
	want := time.Duration(cs.Elapsed() * float64(time.Second))
	if track.position != want {
		t.Errorf("position = %v after wrap, want %v", track.position, want)
	}
}

func TestCutscenePauseResume(t *testing.T) {
	cs := newTestCutscene(t, "once")
	cs.Play()
	cs.Update(0.25)

	cs.Pause()
	cs.Update(5)
	if cs.State() != Paused || cs.CurrentFrame() != 2 {
		t.Fatalf("paused: state=%v frame=%d, want paused/2", cs.State(), cs.CurrentFrame())
	}

	cs.Play() // resumes, does not rewind
	cs.Update(0.1)
	if cs.State() != Playing || cs.CurrentFrame() != 3 {
		t.Errorf("resumed: state=%v frame=%d, want playing/3", cs.State(), cs.CurrentFrame())
	}
}

func TestCutsceneRestartAfterFinish(t *testing.T) {
	cs := newTestCutscene(t, "once")
	cs.Play()
	cs.Update(2)
	if !cs.IsFinished() {
		t.Fatal("expected finished")
	}

	cs.Restart()
	if !cs.IsPlaying() || cs.CurrentFrame() != 0 {
		t.Errorf("after Restart: state=%v frame=%d, want playing/0", cs.State(), cs.CurrentFrame())
	}
}

func TestNewRejectsMismatchedSheets(t *testing.T) {
	m, err := ParseManifest([]byte("frame_rate: 10\ncolumns: 2\nrows: 2\nsheets: {files: [a.png, b.png]}"))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}

	one := []*sheet.SpriteSheet{{Grid: m.SheetGrid(0), FrameWidth: 4, FrameHeight: 4}}
	if _, err := New("x", m, one); err == nil {
		t.Error("New accepted too few sheets")
	}

	wrongSize := []*sheet.SpriteSheet{
		{Grid: m.SheetGrid(0), FrameWidth: 4, FrameHeight: 4},
		{Grid: m.SheetGrid(1), FrameWidth: 8, FrameHeight: 4},
	}
	if _, err := New("x", m, wrongSize); err == nil {
		t.Error("New accepted sheets with different frame sizes")
	}
}
