package game

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// MockScene is a mock implementation of the Scene interface for testing.
type MockScene struct {
	updateCalled bool
	drawCalled   bool
	closed       int
	deltaTime    float64
}

// Update records that Update was called and stores the deltaTime.
func (m *MockScene) Update(deltaTime float64) {
	m.updateCalled = true
	m.deltaTime = deltaTime
}

// Draw records that Draw was called.
func (m *MockScene) Draw(screen *ebiten.Image) {
	m.drawCalled = true
}

// Close records that the scene was closed.
func (m *MockScene) Close() {
	m.closed++
}

// plainScene does not implement Closer.
type plainScene struct{}

func (plainScene) Update(float64)     {}
func (plainScene) Draw(*ebiten.Image)    {}

// TestNewSceneManager verifies that NewSceneManager creates a valid instance.
func TestNewSceneManager(t *testing.T) {
	sm := NewSceneManager()
	if sm == nil {
		t.Fatal("NewSceneManager() returned nil")
	}
	if sm.GetCurrentScene() != nil {
		t.Error("Expected currentScene to be nil initially")
	}
}

// TestSceneManagerUpdate verifies that Update calls the current scene's Update method.
func TestSceneManagerUpdate(t *testing.T) {
	sm := NewSceneManager()
	mockScene := &MockScene{}
	sm.SwitchTo(mockScene)

	deltaTime := 0.016 // ~60 FPS
	sm.Update(deltaTime)

	if !mockScene.updateCalled {
		t.Error("Scene's Update method was not called")
	}
	if mockScene.deltaTime != deltaTime {
		t.Errorf("Expected deltaTime %.3f, got %.3f", deltaTime, mockScene.deltaTime)
	}
}

// TestSceneManagerNoScene verifies that Update and Draw handle a nil scene.
func TestSceneManagerNoScene(t *testing.T) {
	sm := NewSceneManager()
	sm.Update(0.016)
	sm.Draw(nil)
	sm.Close()
}

// TestSceneManagerDraw verifies that Draw calls the current scene's Draw method.
func TestSceneManagerDraw(t *testing.T) {
	sm := NewSceneManager()
	mockScene := &MockScene{}
	sm.SwitchTo(mockScene)

	sm.Draw(nil)

	if !mockScene.drawCalled {
		t.Error("Scene's Draw method was not called")
	}
}

// TestSceneManagerSwitchClosesPrevious verifies resources of the old scene are released.
func TestSceneManagerSwitchClosesPrevious(t *testing.T) {
	sm := NewSceneManager()
	scene1 := &MockScene{}
	scene2 := &MockScene{}

	sm.SwitchTo(scene1)
	sm.SwitchTo(scene1) // same scene, must not close
	if scene1.closed != 0 {
		t.Fatalf("scene1 closed %d times when re-selected", scene1.closed)
	}

	sm.SwitchTo(scene2)
	if scene1.closed != 1 {
		t.Errorf("scene1 closed %d times, want 1", scene1.closed)
	}
	sm.Update(0.016)
	if scene1.updateCalled {
		t.Error("Scene1's Update was called after switching away")
	}
	if !scene2.updateCalled {
		t.Error("Scene2's Update was not called after switching")
	}

	sm.SwitchTo(plainScene{})
	if scene2.closed != 1 {
		t.Errorf("scene2 closed %d times, want 1", scene2.closed)
	}
}

// TestSceneManagerPlayCutscene verifies the factory is used and failures keep the current scene.
func TestSceneManagerPlayCutscene(t *testing.T) {
	sm := NewSceneManager()
	menu := &MockScene{}
	sm.SwitchTo(menu)

	if sm.PlayCutscene("intro") {
		t.Fatal("PlayCutscene succeeded without a factory")
	}

	var requested []string
	playback := &MockScene{}
	sm.SetSceneFactory(func(id string) Scene {
		requested = append(requested, id)
		if id == "missing" {
			return nil
		}
		return playback
	})

	if sm.PlayCutscene("missing") {
		t.Error("PlayCutscene(missing) reported success")
	}
	if sm.GetCurrentScene() != menu {
		t.Error("failed PlayCutscene changed the scene")
	}

	if !sm.PlayCutscene("intro") {
		t.Fatal("PlayCutscene(intro) failed")
	}
	if sm.GetCurrentScene() != playback {
		t.Error("PlayCutscene did not switch to the playback scene")
	}
	if len(requested) != 2 || requested[1] != "intro" {
		t.Errorf("factory requests = %v", requested)
	}
	if menu.closed != 1 {
		t.Errorf("menu closed %d times, want 1", menu.closed)
	}
}
