package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windy/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	FPS          int32
	Projection   string
	Zoom         float64
	CenterLon    float64
	CenterLat    float64
	ForecastTime time.Time

	WindState     string
	Particles     int
	BuildProgress float64
	Drag          string
	Rebuilds      int

	// Errors holds the last failure of each layer, empty when healthy.
	Errors []string
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer(), width: 260}
}

// Draw renders the HUD panel at the top left.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	pad := r.Theme.Padding
	lines := int32(9 + len(data.Errors))
	r.DrawPanel(pad, pad, h.width, lines*r.Theme.LineHeight+pad*2+8)

	x := pad * 2
	y := pad * 2
	rl.DrawText(data.Title, x, y, 18, rl.White)
	y += 24

	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", data.FPS))
	y = r.DrawLabelValue(x, y, "Projection", data.Projection)
	y = r.DrawLabelValue(x, y, "View", fmt.Sprintf("%.1f, %.1f @ %.1fx", data.CenterLon, data.CenterLat, data.Zoom))
	y = r.DrawLabelValue(x, y, "Forecast", data.ForecastTime.UTC().Format("2006-01-02 15:04Z"))
	y = r.DrawLabelValue(x, y, "Wind", data.WindState)
	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d", data.Particles))
	y = r.DrawLabelValue(x, y, "Drag", fmt.Sprintf("%s (%d builds)", data.Drag, data.Rebuilds))
	y = r.DrawBar(x, y, "Field", float32(data.BuildProgress), h.width-pad*2)

	for _, msg := range data.Errors {
		rl.DrawText(msg, x, y, r.Theme.FontSize, r.Theme.Warning)
		y += r.Theme.LineHeight
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y
	phases := telemetry.Phases()
	p.renderer.DrawPanel(x-6, y-6, 240, int32(len(phases)+2)*14+28)

	rl.DrawText("Frame Phases", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Pass: %s (%.0f/s)", stats.AvgPassDuration.Round(time.Microsecond), stats.PassesPerSecond), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range phases {
		pct := stats.PhasePct[name]
		c := rl.LightGray
		if pct > 40 {
			c = rl.Red
		} else if pct > 20 {
			c = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-12s %8s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct),
			x, y, 12, c,
		)
		y += 14
	}
}
