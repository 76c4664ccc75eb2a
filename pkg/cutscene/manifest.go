// Package cutscene assembles sprite sheets produced by the extraction tool
// into playable cutscenes.
//
// A cutscene directory holds numbered sheet images, an optional soundtrack and
// a YAML sidecar (the Manifest) describing the grid. A Catalog maps cutscene
// IDs to manifests, and a Library loads, caches and releases them on behalf
// of the scene that owns it.
package cutscene

import (
	"fmt"
	"image/color"
	"io/fs"
	"path"
	"strings"

	"github.com/decker502/cutscene/pkg/sheet"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// DefaultBackground is cleared behind a stopped cutscene.
const DefaultBackground = "white"

// Manifest is the sidecar written next to the sheets of one cutscene.
//
// Structure:
//
//	version: "1.0"
//	name: intro
//	frame_rate: 15
//	columns: 3
//	rows: 8
//	frames_per_sheet: 24
//	total_frames: 696
//	sheets:
//	  pattern: sheets/sprite_sheet_%03d.png
//	  count: 29
//	audio: audio.wav
//	mode: once
//
// All relative paths are resolved against the directory holding the manifest.
type Manifest struct {
	Version        string    `yaml:"version"`
	Name           string    `yaml:"name"`
	FrameRate      float64   `yaml:"frame_rate"`
	Columns        int       `yaml:"columns"`
	Rows           int       `yaml:"rows"`
	FramesPerSheet int       `yaml:"frames_per_sheet"`       // defaults to columns*rows
	TotalFrames    int       `yaml:"total_frames,omitempty"` // defaults to every cell of every sheet
	Sheets         SheetList `yaml:"sheets"`                 // sheet images in playback order
	Audio          string    `yaml:"audio,omitempty"`        // soundtrack started with playback
	Mode           string    `yaml:"mode,omitempty"`         // once | loop
	Background     string    `yaml:"background,omitempty"`   // colour name, see colornames
	Filter         string    `yaml:"filter,omitempty"`       // nearest | linear

	dir string
}

// SheetList names the sheet images either explicitly or with a printf
// pattern and a count.
type SheetList struct {
	Pattern string   `yaml:"pattern,omitempty"` // e.g. sprite_sheet_%03d.png
	Start   int      `yaml:"start,omitempty"`   // first index fed to Pattern
	Count   int      `yaml:"count,omitempty"`
	Files   []string `yaml:"files,omitempty"`
}

// LoadManifest reads and validates a manifest from fsys.
func LoadManifest(fsys fs.FS, name string) (*Manifest, error) {
	name = path.Clean(strings.TrimPrefix(name, "./"))

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read cutscene manifest %s: %w", name, err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cutscene manifest %s: %w", name, err)
	}
	m.dir = path.Dir(name)
	return m, nil
}

// ParseManifest decodes and validates manifest YAML. Relative paths resolve
// against the fs root until the manifest is loaded through LoadManifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) applyDefaults() {
	if m.FramesPerSheet == 0 {
		m.FramesPerSheet = m.Columns * m.Rows
	}
	if m.TotalFrames == 0 {
		m.TotalFrames = m.SheetCount() * m.FramesPerSheet
	}
	if m.dir == "" {
		m.dir = "."
	}
}

// Validate checks the manifest describes a playable cutscene.
func (m *Manifest) Validate() error {
	if m.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %v", m.FrameRate)
	}
	if m.Columns <= 0 || m.Rows <= 0 {
		return fmt.Errorf("columns and rows must be positive, got %dx%d", m.Columns, m.Rows)
	}
	if m.FramesPerSheet <= 0 || m.FramesPerSheet > m.Columns*m.Rows {
		return fmt.Errorf("frames_per_sheet %d outside 1..%d", m.FramesPerSheet, m.Columns*m.Rows)
	}
	if m.Sheets.Pattern != "" && len(m.Sheets.Files) > 0 {
		return fmt.Errorf("sheets: pattern and files are mutually exclusive")
	}
	if m.Sheets.Pattern != "" && !strings.Contains(m.Sheets.Pattern, "%") {
		return fmt.Errorf("sheets: pattern %q has no index verb", m.Sheets.Pattern)
	}
	n := m.SheetCount()
	if n == 0 {
		return fmt.Errorf("no sheets listed")
	}
	if m.TotalFrames <= 0 || m.TotalFrames > n*m.FramesPerSheet {
		return fmt.Errorf("total_frames %d outside 1..%d", m.TotalFrames, n*m.FramesPerSheet)
	}
	if m.TotalFrames <= (n-1)*m.FramesPerSheet {
		return fmt.Errorf("total_frames %d leaves sheet %d unused", m.TotalFrames, n-1)
	}
	if _, err := sheet.ParsePlaybackMode(m.Mode); err != nil {
		return err
	}
	if m.Background != "" {
		if _, ok := colornames.Map[strings.ToLower(m.Background)]; !ok {
			return fmt.Errorf("unknown background colour %q", m.Background)
		}
	}
	switch m.Filter {
	case "", "nearest", "linear":
	default:
		return fmt.Errorf("unknown filter %q (want nearest or linear)", m.Filter)
	}
	return nil
}

// SheetCount returns how many sheet images the cutscene spans.
func (m *Manifest) SheetCount() int {
	if len(m.Sheets.Files) > 0 {
		return len(m.Sheets.Files)
	}
	if m.Sheets.Pattern != "" {
		return m.Sheets.Count
	}
	return 0
}

// SheetPaths returns every sheet path in playback order, resolved against
// the manifest directory.
func (m *Manifest) SheetPaths() []string {
	n := m.SheetCount()
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		paths = append(paths, m.SheetPath(i))
	}
	return paths
}

// SheetPath returns the resolved path of sheet i.
func (m *Manifest) SheetPath(i int) string {
	var rel string
	if len(m.Sheets.Files) > 0 {
		rel = m.Sheets.Files[i]
	} else {
		rel = fmt.Sprintf(m.Sheets.Pattern, m.Sheets.Start+i)
	}
	return m.resolve(rel)
}

// SheetGrid returns the grid of sheet i. Every sheet holds FramesPerSheet
// frames except the last, which holds whatever remains of TotalFrames.
func (m *Manifest) SheetGrid(i int) sheet.Grid {
	count := m.FramesPerSheet
	if i == m.SheetCount()-1 {
		count = m.TotalFrames - i*m.FramesPerSheet
	}
	return sheet.Grid{
		Columns:    m.Columns,
		Rows:       m.Rows,
		FrameCount: count,
		FrameRate:  m.FrameRate,
	}
}

// AudioPath returns the resolved soundtrack path, or "" when there is none.
func (m *Manifest) AudioPath() string {
	if m.Audio == "" {
		return ""
	}
	return m.resolve(m.Audio)
}

// PlaybackMode returns the parsed mode. Validate has already rejected
// unknown values.
func (m *Manifest) PlaybackMode() sheet.PlaybackMode {
	mode, _ := sheet.ParsePlaybackMode(m.Mode)
	return mode
}

// BackgroundColor returns the colour cleared behind a stopped cutscene.
func (m *Manifest) BackgroundColor() color.Color {
	name := m.Background
	if name == "" {
		name = DefaultBackground
	}
	if c, ok := colornames.Map[strings.ToLower(name)]; ok {
		return c
	}
	return colornames.White
}

// Duration returns the cutscene length in seconds.
func (m *Manifest) Duration() float64 {
	return float64(m.TotalFrames) / m.FrameRate
}

// Dir returns the directory the manifest was loaded from.
func (m *Manifest) Dir() string { return m.dir }

func (m *Manifest) resolve(rel string) string {
	rel = strings.ReplaceAll(rel, "\\", "/")
	if strings.HasPrefix(rel, "/") {
		return path.Clean(strings.TrimPrefix(rel, "/"))
	}
	return path.Join(m.dir, rel)
}
