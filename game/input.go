package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windy/camera"
	"github.com/pthm-cable/windy/ui"
)

// overlayKeys are the keys bound in the overlay registry.
var overlayKeys = []int32{rl.KeyW, rl.KeyS, rl.KeyN, rl.KeyL, rl.KeyF3}

// Update handles input and runs one loop pass at wall clock time. The pass
// ends in Draw.
func (g *Game) Update() {
	g.perf.RecordRefresh()
	g.perf.StartPass()
	g.handleResize()
	g.handleInput()
	g.Step(time.Now())
}

func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
	g.Resize(w, h)
	g.controls.SetPosition(int32(w)-190, 10)
	g.perfPanel.SetPosition(int32(w)-250, int32(h)-170)
}

func (g *Game) handleInput() {
	for _, key := range overlayKeys {
		if rl.IsKeyPressed(key) {
			if id, on, ok := g.overlays.HandleKeyPress(key); ok {
				g.setOverlay(id, on)
			}
		}
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.cam.Projection = (g.cam.Projection + 1) % (camera.Orthographic + 1)
		g.Resize(g.cam.Size())
	}
	if rl.IsKeyPressed(rl.KeyF12) {
		g.saveScreenshot()
	}

	g.handleCameraInput()
}

// handleCameraInput pans and zooms the map. Any view change this frame is
// reported to the layers as a drag so they rebuild once the map settles.
func (g *Game) handleCameraInput() {
	mouse := rl.GetMousePosition()
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !g.controls.Contains(mouse) {
		g.dragging = true
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		g.dragging = false
	}

	moved := false
	if g.dragging {
		d := rl.GetMouseDelta()
		if d.X != 0 || d.Y != 0 {
			g.cam.Pan(float64(d.X), float64(d.Y))
		}
	}

	// Arrow keys pan by a fixed number of pixels
	const panStep = 10.0
	if rl.IsKeyDown(rl.KeyRight) {
		g.cam.Pan(-panStep, 0)
		moved = true
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.cam.Pan(panStep, 0)
		moved = true
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.cam.Pan(0, -panStep)
		moved = true
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.cam.Pan(0, panStep)
		moved = true
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.cam.ZoomBy(1 + float64(wheel)*0.1)
		moved = true
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.cam.ZoomBy(1.25)
		moved = true
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.cam.ZoomBy(0.8)
		moved = true
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.cam.Reset()
		moved = true
	}

	g.SetDragging(g.dragging || moved)
}

// overlayShown reports whether a display overlay is on.
func (g *Game) overlayShown(id ui.OverlayID) bool {
	return g.overlays.IsEnabled(id)
}
