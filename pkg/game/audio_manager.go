package game

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path"
	"strings"

	"github.com/decker502/cutscene/pkg/cutscene"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// AudioSampleRate is the sample rate of the shared audio context.
// Soundtracks at other rates are resampled on decode.
const AudioSampleRate = 48000

// AudioManager decodes cutscene soundtracks and keeps their volume in line
// with SettingsManager.
//
// Responsibilities:
//   - decode WAV (the extraction tool's output), MP3 and OGG soundtracks
//   - apply MusicVolume / MusicEnabled to every soundtrack it created
//   - close players when the owning scene is torn down
type AudioManager struct {
	audioContext    *audio.Context
	settingsManager *SettingsManager       // may be nil
	tracks          map[string]*Soundtrack // soundtrack path -> track
	muted           bool                   // used when settingsManager is nil
}

// NewAudioManager creates an audio manager.
//
// Parameters:
//   - audioContext: the process-wide audio context (Ebitengine allows one).
//   - sm: settings for volume, may be nil.
func NewAudioManager(audioContext *audio.Context, sm *SettingsManager) *AudioManager {
	return &AudioManager{
		audioContext:    audioContext,
		settingsManager: sm,
		tracks:          make(map[string]*Soundtrack),
	}
}

// Soundtrack is a one-shot audio player that honours MusicEnabled.
// It implements cutscene.AudioTrack.
type Soundtrack struct {
	*audio.Player
	manager *AudioManager
	path    string
}

// Play starts the soundtrack unless music is disabled.
func (s *Soundtrack) Play() {
	if !s.manager.IsMusicEnabled() {
		return
	}
	s.Player.SetVolume(s.manager.getMusicVolume())
	s.Player.Play()
}

// Path returns the file the soundtrack was decoded from.
func (s *Soundtrack) Path() string { return s.path }

// LoadSoundtrack decodes the soundtrack at name. It matches
// cutscene.AudioLoader so it can be handed to Library.SetAudioLoader.
//
// Supported formats: WAV (.wav), MP3 (.mp3) and OGG Vorbis (.ogg).
func (am *AudioManager) LoadSoundtrack(fsys fs.FS, name string) (cutscene.AudioTrack, error) {
	if track, exists := am.tracks[name]; exists {
		return track, nil
	}
	if am.audioContext == nil {
		return nil, fmt.Errorf("no audio context for soundtrack %s", name)
	}

	// Read the whole file so the stream can seek without an open handle.
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read soundtrack %s: %w", name, err)
	}

	stream, err := decodeAudio(am.audioContext.SampleRate(), name, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	player, err := am.audioContext.NewPlayer(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player for %s: %w", name, err)
	}
	player.SetVolume(am.getMusicVolume())

	track := &Soundtrack{Player: player, manager: am, path: name}
	am.tracks[name] = track
	log.Printf("[AudioManager] Loaded soundtrack %s", name)
	return track, nil
}

// decodeAudio picks a decoder by file extension.
func decodeAudio(sampleRate int, name string, r io.Reader) (io.ReadSeeker, error) {
	ext := strings.ToLower(path.Ext(name))

	switch ext {
	case ".wav":
		s, err := wav.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, fmt.Errorf("failed to decode WAV audio %s: %w", name, err)
		}
		return s, nil
	case ".mp3":
		s, err := mp3.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, fmt.Errorf("failed to decode MP3 audio %s: %w", name, err)
		}
		return s, nil
	case ".ogg":
		s, err := vorbis.DecodeWithSampleRate(sampleRate, r)
		if err != nil {
			return nil, fmt.Errorf("failed to decode OGG audio %s: %w", name, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .wav, .mp3, .ogg)", ext)
	}
}

// SetMusicVolume updates the setting and every loaded soundtrack.
func (am *AudioManager) SetMusicVolume(volume float64) {
	if am.settingsManager != nil {
		am.settingsManager.SetMusicVolume(volume)
	}
	v := am.getMusicVolume()
	for _, track := range am.tracks {
		track.Player.SetVolume(v)
	}
}

// SetMusicEnabled updates the setting and pauses every soundtrack when
// music is turned off.
func (am *AudioManager) SetMusicEnabled(enabled bool) {
	if am.settingsManager != nil {
		am.settingsManager.SetMusicEnabled(enabled)
	} else {
		am.muted = !enabled
	}
	if enabled {
		return
	}
	for _, track := range am.tracks {
		track.Player.Pause()
	}
}

// GetMusicVolume returns the current soundtrack volume.
func (am *AudioManager) GetMusicVolume() float64 {
	return am.getMusicVolume()
}

// Release closes the soundtrack decoded from name, if any.
func (am *AudioManager) Release(name string) {
	track, ok := am.tracks[name]
	if !ok {
		return
	}
	track.Player.Pause()
	if err := track.Player.Close(); err != nil {
		log.Printf("[AudioManager] Warning: Failed to close soundtrack %s: %v", name, err)
	}
	delete(am.tracks, name)
}

// Close releases every soundtrack.
func (am *AudioManager) Close() {
	for name := range am.tracks {
		am.Release(name)
	}
}

// IsMusicEnabled reports whether soundtracks may play.
func (am *AudioManager) IsMusicEnabled() bool {
	if am.settingsManager != nil {
		return am.settingsManager.GetSettings().MusicEnabled
	}
	return !am.muted
}

func (am *AudioManager) getMusicVolume() float64 {
	if am.settingsManager != nil {
		return am.settingsManager.GetSettings().MusicVolume
	}
	return 0.7
}
