package scenes

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/colornames"
)

// MenuScene lists the catalog's cutscenes. Up/Down (or W/S) choose and
// Enter plays the selection.
type MenuScene struct {
	services Services
	ids      []string
	titles   map[string]string
	selected int
}

// NewMenuScene builds the list from the library's catalog.
func NewMenuScene(services Services) *MenuScene {
	m := &MenuScene{
		services: services,
		ids:      services.Library.IDs(),
		titles:   make(map[string]string),
	}
	for _, id := range m.ids {
		if entry, err := services.Library.Entry(id); err == nil {
			m.titles[id] = entry.DisplayTitle()
		}
	}
	log.Printf("[MenuScene] %d cutscenes available", len(m.ids))
	return m
}

// Update handles menu input.
func (m *MenuScene) Update(deltaTime float64) {
	for _, action := range justPressed(menuBindings) {
		m.HandleAction(action)
	}
}

// HandleAction moves the selection or starts the selected cutscene.
// The selection wraps at both ends.
func (m *MenuScene) HandleAction(action Action) {
	if len(m.ids) == 0 {
		return
	}
	switch action {
	case ActionUp:
		m.selected = (m.selected - 1 + len(m.ids)) % len(m.ids)
	case ActionDown:
		m.selected = (m.selected + 1) % len(m.ids)
	case ActionSelect:
		id := m.Selected()
		if m.services.Scenes == nil || !m.services.Scenes.PlayCutscene(id) {
			log.Printf("[MenuScene] Cannot start cutscene %s", id)
		}
	}
}

// Selected returns the highlighted cutscene ID, "" when the catalog is empty.
func (m *MenuScene) Selected() string {
	if len(m.ids) == 0 {
		return ""
	}
	return m.ids[m.selected]
}

// Draw renders the list.
func (m *MenuScene) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	sh := float64(screen.Bounds().Dy())

	drawCentered(screen, []string{"CUTSCENES"}, 40, colornames.Gold)
	if len(m.ids) == 0 {
		drawCentered(screen, []string{"No cutscenes in catalog"}, 100, colornames.Lightgray)
		return
	}

	lines := m.entryLines()
	for i, line := range lines {
		clr := colornames.Lightgray
		if i == m.selected {
			clr = colornames.White
		}
		drawLines(screen, []string{line}, 80, 90+float64(i*lineHeight*2), clr)
	}
	drawCentered(screen, []string{"Up/Down: choose   Enter: play   F11: fullscreen"}, sh-40, colornames.Gray)
}

// entryLines formats one row per cutscene.
func (m *MenuScene) entryLines() []string {
	lines := make([]string, len(m.ids))
	for i, id := range m.ids {
		marker := "  "
		if i == m.selected {
			marker = "> "
		}
		title := m.titles[id]
		if title == "" {
			title = id
		}
		watched := ""
		if m.services.Settings != nil && m.services.Settings.HasWatched(id) {
			watched = "  (watched)"
		}
		lines[i] = fmt.Sprintf("%s%s%s", marker, title, watched)
	}
	return lines
}
