package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"
)

// ControlsPanel renders the overlay toggle buttons.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32 // as of the last Draw
	visible  bool
}

// NewControlsPanel creates a new, visible controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point lies over the visible panel.
func (c *ControlsPanel) Contains(p rl.Vector2) bool {
	if !c.visible {
		return false
	}
	return rl.CheckCollisionPointRec(p, rl.Rectangle{
		X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(c.height),
	})
}

// Draw renders one button per overlay and returns the overlays whose button
// was clicked this frame. The caller applies the toggles.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) []OverlayID {
	if !c.visible {
		return nil
	}

	r := c.renderer
	padding := r.Theme.Padding
	const buttonHeight = 22

	categories := overlays.Categories()
	rows := 0
	for _, cat := range categories {
		rows += len(overlays.ByCategory(cat))
	}
	height := int32(rows)*(buttonHeight+4) + int32(len(categories))*r.Theme.LineHeight + padding*2 + 20
	c.height = height
	r.DrawPanel(c.x, c.y, c.width, height)

	y := c.y + padding
	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += 20

	var clicked []OverlayID
	for _, category := range categories {
		y = r.DrawSectionHeader(c.x+padding, y, categoryLabel(category))
		for _, desc := range overlays.ByCategory(category) {
			bounds := rl.Rectangle{
				X:      float32(c.x + padding),
				Y:      float32(y),
				Width:  float32(c.width - padding*2),
				Height: buttonHeight,
			}
			if gui.Button(bounds, toggleLabel(desc, overlays.IsEnabled(desc.ID))) {
				clicked = append(clicked, desc.ID)
			}
			y += buttonHeight + 4
		}
	}
	return clicked
}

func toggleLabel(desc OverlayDescriptor, enabled bool) string {
	state := "off"
	if enabled {
		state = "on"
	}
	return fmt.Sprintf("[%s] %s: %s", desc.KeyLabel, desc.Name, state)
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "layers":
		return "Layers"
	case "display":
		return "Display"
	default:
		return cat
	}
}
