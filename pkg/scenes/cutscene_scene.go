package scenes

import (
	"fmt"
	"image/color"
	"log"

	"github.com/decker502/cutscene/pkg/cutscene"
	"github.com/decker502/cutscene/pkg/sheet"
	"github.com/hajimehoshi/ebiten/v2"
)

// CutsceneScene plays one catalog cutscene fullscreen.
//
// Controls:
//   - P: toggle play/stop
//   - Space: pause/resume
//   - R: restart from the first frame
//   - Esc: skip (only when the entry is skippable or was watched before)
//   - F3: debug overlay
//   - +/-: music volume, M: mute
//   - A: letterbox or stretch
//
// When the cutscene finishes or is skipped it is marked watched and the
// scene returns to the menu.
type CutsceneScene struct {
	services Services
	id       string
	entry    cutscene.CatalogEntry
	cs       *cutscene.Cutscene
	loadErr  error

	finished    bool // set by the cutscene's OnFinished callback
	exited      bool
	showOverlay bool
}

// NewCutsceneScene loads the cutscene and starts playing it.
// A load failure does not panic: the scene shows the error and Esc returns
// to the menu.
func NewCutsceneScene(services Services, id string) *CutsceneScene {
	s := &CutsceneScene{
		services: services,
		id:       id,
	}
	if services.Settings != nil {
		s.showOverlay = services.Settings.GetSettings().ShowOverlay
	}

	entry, err := services.Library.Entry(id)
	if err != nil {
		s.loadErr = err
		log.Printf("[CutsceneScene] %v", err)
		return s
	}
	s.entry = entry

	cs, err := services.Library.LoadCutscene(id)
	if err != nil {
		s.loadErr = err
		log.Printf("[CutsceneScene] Failed to load %s: %v", id, err)
		return s
	}
	cs.OnFinished(func(string) { s.finished = true })
	s.cs = cs
	cs.Play()
	return s
}

// Update handles input and advances playback.
func (s *CutsceneScene) Update(deltaTime float64) {
	for _, action := range justPressed(cutsceneBindings) {
		s.HandleAction(action)
	}
	if s.exited {
		return
	}
	if s.cs != nil {
		s.cs.Update(deltaTime)
	}
	if s.finished {
		s.exit("finished")
	}
}

// HandleAction applies one control action.
func (s *CutsceneScene) HandleAction(action Action) {
	if s.exited {
		return
	}
	switch action {
	case ActionOverlay:
		s.toggleOverlay()
		return
	case ActionVolumeUp, ActionVolumeDown, ActionMute:
		s.adjustAudio(action)
		return
	case ActionAspect:
		if sm := s.services.Settings; sm != nil {
			sm.SetKeepAspect(!sm.GetSettings().KeepAspect)
			s.services.saveSettings("CutsceneScene")
		}
		return
	}
	if s.cs == nil {
		if action == ActionSkip || action == ActionToggle {
			s.exit("load failed")
		}
		return
	}

	switch action {
	case ActionToggle:
		s.cs.Toggle()
	case ActionPause:
		if s.cs.State() == cutscene.Paused {
			s.cs.Resume()
		} else {
			s.cs.Pause()
		}
	case ActionRestart:
		s.finished = false
		s.cs.Restart()
	case ActionSkip:
		if !s.CanSkip() {
			log.Printf("[CutsceneScene] %s cannot be skipped before it was watched once", s.id)
			return
		}
		s.exit("skipped")
	}
}

// CanSkip reports whether Esc leaves the cutscene.
func (s *CutsceneScene) CanSkip() bool {
	if s.cs == nil || s.entry.Skippable {
		return true
	}
	return s.services.Settings != nil && s.services.Settings.HasWatched(s.id)
}

// Cutscene returns the playing cutscene, nil if it failed to load.
func (s *CutsceneScene) Cutscene() *cutscene.Cutscene { return s.cs }

// LoadError returns why the cutscene could not be loaded, if it could not.
func (s *CutsceneScene) LoadError() error { return s.loadErr }

// Exited reports whether the scene has handed control back to the menu.
func (s *CutsceneScene) Exited() bool { return s.exited }

func (s *CutsceneScene) toggleOverlay() {
	s.showOverlay = !s.showOverlay
	if s.services.Settings != nil {
		s.services.Settings.SetShowOverlay(s.showOverlay)
		s.services.saveSettings("CutsceneScene")
	}
}

func (s *CutsceneScene) adjustAudio(action Action) {
	am := s.services.Audio
	if am == nil {
		return
	}
	switch action {
	case ActionVolumeUp:
		am.SetMusicVolume(am.GetMusicVolume() + volumeStep)
	case ActionVolumeDown:
		am.SetMusicVolume(am.GetMusicVolume() - volumeStep)
	case ActionMute:
		enabled := !am.IsMusicEnabled()
		am.SetMusicEnabled(enabled)
		if enabled && s.cs != nil {
			// Muting paused the soundtrack; pick it up where the frames are.
			s.cs.SyncAudio()
		}
	}
	log.Printf("[CutsceneScene] Music volume %.1f", am.GetMusicVolume())
	s.services.saveSettings("CutsceneScene")
}

// exit marks the cutscene watched and switches back to the menu.
func (s *CutsceneScene) exit(reason string) {
	if s.exited {
		return
	}
	s.exited = true
	log.Printf("[CutsceneScene] %s %s", s.id, reason)

	if s.cs != nil && s.services.Settings != nil && s.services.Settings.MarkWatched(s.id) {
		s.services.saveSettings("CutsceneScene")
	}
	if s.services.Scenes != nil {
		s.services.Scenes.SwitchTo(NewMenuScene(s.services))
	}
}

// Close releases the cutscene's sheets and soundtrack, unless the library
// already replaced it with a reloaded copy.
func (s *CutsceneScene) Close() {
	if s.cs == nil {
		return
	}
	if s.services.Library.GetCutscene(s.id) == s.cs {
		s.services.Library.Release(s.id)
	}
	s.cs = nil
}

// Draw clears to the cutscene background and draws the current frame.
func (s *CutsceneScene) Draw(screen *ebiten.Image) {
	var bg color.Color = color.White
	if s.cs != nil {
		bg = s.cs.Background()
	}
	screen.Fill(bg)
	fg := contrastColor(bg)
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()

	if s.cs == nil {
		lines := []string{fmt.Sprintf("Cannot play %q", s.id)}
		if s.loadErr != nil {
			lines = append(lines, s.loadErr.Error())
		}
		lines = append(lines, "", "Press Esc to return")
		drawCentered(screen, lines, float64(sh)/3, fg)
		return
	}

	canvas := sheet.ScreenCanvas{Target: screen, Filter: s.cs.Filter()}
	if !s.cs.Draw(canvas, s.DestRect(sw, sh)) {
		drawCentered(screen, []string{"Press P to play"}, float64(sh)/2, fg)
	}
	if s.showOverlay {
		drawPanel(screen, s.overlayLines(), 8, 8)
	}
}

// DestRect returns where frames are drawn on a sw x sh screen.
func (s *CutsceneScene) DestRect(sw, sh int) sheet.Rect {
	if s.cs == nil {
		return sheet.FillRect(sw, sh)
	}
	if s.services.Settings != nil && !s.services.Settings.GetSettings().KeepAspect {
		return sheet.FillRect(sw, sh)
	}
	fw, fh := s.cs.FrameSize()
	return sheet.FitRect(fw, fh, sw, sh)
}

func (s *CutsceneScene) overlayLines() []string {
	idx, src := s.cs.SourceRect()
	return []string{
		fmt.Sprintf("%s [%s] %s", s.id, s.cs.State(), s.cs.Manifest().PlaybackMode()),
		fmt.Sprintf("frame %d/%d  sheet %d/%d", s.cs.CurrentFrame()+1, s.cs.TotalFrames(), idx+1, len(s.cs.Sheets())),
		fmt.Sprintf("src (%d,%d) %dx%d", src.Min.X, src.Min.Y, src.Dx(), src.Dy()),
		fmt.Sprintf("time %.2f / %.2fs", s.cs.Elapsed(), s.cs.Duration()),
		fmt.Sprintf("TPS %.1f  FPS %.1f", ebiten.ActualTPS(), ebiten.ActualFPS()),
	}
}
