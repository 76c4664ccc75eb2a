package scenes

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action is a scene command bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionToggle
	ActionPause
	ActionRestart
	ActionSkip
	ActionOverlay
	ActionUp
	ActionDown
	ActionSelect
	ActionVolumeUp
	ActionVolumeDown
	ActionMute
	ActionAspect
)

// volumeStep is the music volume change per key press.
const volumeStep = 0.1

// binding maps one key to an action.
type binding struct {
	key    ebiten.Key
	action Action
}

// cutsceneBindings are the playback controls.
var cutsceneBindings = []binding{
	{ebiten.KeyP, ActionToggle},
	{ebiten.KeySpace, ActionPause},
	{ebiten.KeyR, ActionRestart},
	{ebiten.KeyEscape, ActionSkip},
	{ebiten.KeyF3, ActionOverlay},
	{ebiten.KeyEqual, ActionVolumeUp},
	{ebiten.KeyMinus, ActionVolumeDown},
	{ebiten.KeyM, ActionMute},
	{ebiten.KeyA, ActionAspect},
}

// menuBindings drive the cutscene list.
var menuBindings = []binding{
	{ebiten.KeyArrowUp, ActionUp},
	{ebiten.KeyW, ActionUp},
	{ebiten.KeyArrowDown, ActionDown},
	{ebiten.KeyS, ActionDown},
	{ebiten.KeyEnter, ActionSelect},
	{ebiten.KeySpace, ActionSelect},
}

// justPressed returns the actions whose keys went down this tick, in
// binding order.
func justPressed(bindings []binding) []Action {
	var actions []Action
	for _, b := range bindings {
		if inpututil.IsKeyJustPressed(b.key) {
			actions = append(actions, b.action)
		}
	}
	return actions
}
