package game

import (
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/windy/layer"
	"github.com/pthm-cable/windy/renderer"
	"github.com/pthm-cable/windy/telemetry"
	"github.com/pthm-cable/windy/ui"
)

// oceanColor is painted under every layer.
var oceanColor = color.RGBA{R: 12, G: 22, B: 38, A: 255}

const controlsHint = "Drag/arrows: pan | Wheel/+/-: zoom | Home: reset | P: projection | Tab: panel | F12: snapshot"

func (g *Game) initViewer() {
	w, h := int32(g.cfg.Screen.Width), int32(g.cfg.Screen.Height)
	g.hud = ui.NewHUD()
	g.controls = ui.NewControlsPanel(w-190, 10, 180)
	g.perfPanel = ui.NewPerfPanel(w-250, h-170)
	g.windSurface = renderer.NewSurface(true)
	g.solarSurface = renderer.NewSurface(false)
	g.snowSurface = renderer.NewSurface(false)
	g.legendSurface = renderer.NewSurface(true)
	g.legendSurface.Upload(g.legend)
}

// Draw presents the layers and UI, ending the pass begun in Update.
func (g *Game) Draw() {
	g.perf.StartPhase(telemetry.PhasePresent)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: oceanColor.R, G: oceanColor.G, B: oceanColor.B, A: 255})

	drawIntensity(g.solar, &g.solarRenders, g.solarSurface)
	drawIntensity(g.snow, &g.snowRenders, g.snowSurface)

	if g.wind.Enabled() {
		g.windSurface.Upload(g.canvas.Image())
		g.windSurface.Draw(0, 0)
	}

	g.drawUI()
	rl.EndDrawing()

	g.perf.EndPass()
}

// drawIntensity uploads a layer's raster only when it has rendered since the
// last upload.
func drawIntensity(l *layer.IntensityLayer, uploaded *int, s *renderer.Surface) {
	img := l.Image()
	if img == nil {
		return
	}
	if n := l.Renders(); n != *uploaded {
		s.Upload(img)
		*uploaded = n
	}
	s.Draw(0, 0)
}

func (g *Game) drawUI() {
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())

	if g.overlayShown(ui.OverlayLegend) {
		g.legendSurface.Draw(w/2-int32(g.legend.Rect.Dx())/2, h-int32(g.legend.Rect.Dy())-36)
	}

	g.hud.Draw(g.hudData())
	g.hud.DrawControls(h, controlsHint)

	for _, id := range g.controls.Draw(g.overlays) {
		g.setOverlay(id, !g.overlays.IsEnabled(id))
	}

	if g.overlayShown(ui.OverlayPerf) {
		g.perfPanel.Draw(g.perf.Stats())
	}
}

func (g *Game) hudData() ui.HUDData {
	data := ui.HUDData{
		Title:         "Windy",
		FPS:           rl.GetFPS(),
		Projection:    g.cam.Projection.String(),
		Zoom:          g.cam.Zoom,
		CenterLon:     g.cam.Center[0],
		CenterLat:     g.cam.Center[1],
		ForecastTime:  g.at,
		WindState:     "off",
		BuildProgress: 1,
		Drag:          g.wind.DragState().String(),
		Rebuilds:      g.wind.Rebuilds(),
	}
	if anim := g.wind.Animator(); anim != nil {
		data.WindState = anim.State().String()
		data.Particles = anim.ParticleCount()
		data.BuildProgress = anim.BuildProgress()
	}
	if err := g.wind.Err(); err != nil {
		data.Errors = append(data.Errors, fmt.Sprintf("wind: %v", err))
	}
	for _, l := range []*layer.IntensityLayer{g.solar, g.snow} {
		if err := l.Err(); err != nil {
			data.Errors = append(data.Errors, fmt.Sprintf("%s: %v", l.Name(), err))
		}
	}
	return data
}

// saveScreenshot writes a composited snapshot to the output directory, or
// the working directory when output is disabled.
func (g *Game) saveScreenshot() {
	dir := g.output.Dir()
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("windy-%s.png", time.Now().Format("20060102-150405")))
	if err := g.WriteSnapshot(path); err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path)
}
