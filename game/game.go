// Package game wires the wind and intensity layers to a map camera and runs
// them either in a raylib window or headless.
package game

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/pthm-cable/windy/camera"
	"github.com/pthm-cable/windy/config"
	"github.com/pthm-cable/windy/layer"
	"github.com/pthm-cable/windy/renderer"
	"github.com/pthm-cable/windy/systems"
	"github.com/pthm-cable/windy/telemetry"
	"github.com/pthm-cable/windy/ui"
)

// Options configures a Game.
type Options struct {
	Seed      int64  // particle RNG seed (0 = config, then time based)
	LogStats  bool   // log telemetry windows via slog
	OutputDir string // directory for CSV logs and config snapshot (empty = disabled)
	Headless  bool   // run without a window on a virtual clock

	// RefTime anchors synthetic forecasts. Zero uses the current time
	// truncated to six hours.
	RefTime time.Time
}

// headlessEpoch is where the virtual clock starts.
var headlessEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Game is the viewer: a camera over the globe, the three layers drawing into
// it and the loop that drives them.
type Game struct {
	cfg *config.Config
	cam *camera.Camera

	loop  *layer.Loop
	clock time.Time // virtual clock, headless only
	frame int

	canvas  *renderer.Canvas
	buckets systems.ColorBuckets
	legend  *image.RGBA
	wind    *layer.WindLayer
	solar   *layer.IntensityLayer
	snow    *layer.IntensityLayer
	data    forecasts
	at      time.Time

	// Telemetry
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	logStats  bool
	anim      *systems.Animator
	animFrame int

	// Viewer state
	headless      bool
	overlays      *ui.OverlayRegistry
	hud           *ui.HUD
	controls      *ui.ControlsPanel
	perfPanel     *ui.PerfPanel
	windSurface   *renderer.Surface
	solarSurface  *renderer.Surface
	snowSurface   *renderer.Surface
	legendSurface *renderer.Surface
	solarRenders  int
	snowRenders   int
	dragging      bool
}

// NewGame creates a game from the global configuration. In windowed mode the
// raylib window must already be open.
func NewGame(opts Options) (*Game, error) {
	cfg := config.Cfg()

	cam, err := newCamera(cfg)
	if err != nil {
		return nil, err
	}
	buckets, err := newBuckets(cfg.Buckets)
	if err != nil {
		return nil, err
	}

	refTime := opts.RefTime
	if refTime.IsZero() {
		refTime = time.Now().UTC().Truncate(6 * time.Hour)
	}
	data, err := loadForecasts(cfg.Forecast, refTime)
	if err != nil {
		return nil, err
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	start := time.Now()
	if opts.Headless {
		start = headlessEpoch
	}

	g := &Game{
		cfg:       cfg,
		cam:       cam,
		loop:      layer.NewLoop(start),
		clock:     start,
		canvas:    renderer.NewCanvas(cfg.Screen.Width, cfg.Screen.Height),
		buckets:   buckets,
		data:      data,
		at:        data.windAt(cfg.Forecast.OffsetHours),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector: telemetry.NewCollector(cfg.Telemetry.LogIntervalFrames),
		output:    output,
		logStats:  opts.LogStats,
		headless:  opts.Headless,
		overlays:  ui.NewOverlayRegistry(),
	}

	g.legend = renderer.WindLegend(buckets, renderer.LegendStyle{
		Width:      cfg.Legend.Width,
		Height:     cfg.Legend.Height,
		BlurRadius: cfg.Legend.BlurRadius,
		Unit:       "m/s",
	})

	g.wind = layer.NewWindLayer(windConfig(cfg, opts.Seed), cam, g.canvas, g.loop, buckets)
	g.wind.SetPerf(g.perf)
	g.wind.SetForecast(data.wind, g.at)

	solarRenderer, err := newIntensityRenderer("solar", cfg.Solar, g.perf)
	if err != nil {
		return nil, err
	}
	snowRenderer, err := newIntensityRenderer("snow", cfg.Snow, g.perf)
	if err != nil {
		return nil, err
	}
	g.solar = layer.NewIntensityLayer("solar", solarRenderer, cam, g.loop, cfg.Derived.SettleDelay)
	g.solar.SetForecast(data.solar, g.at)
	g.snow = layer.NewIntensityLayer("snow", snowRenderer, cam, g.loop, cfg.Derived.SettleDelay)
	g.snow.SetForecast(data.snow, g.at)

	if !opts.Headless {
		g.initViewer()
	}

	g.overlays.SetEnabled(ui.OverlayLegend, true)
	g.setOverlay(ui.OverlayWind, cfg.Layers.Wind)
	g.setOverlay(ui.OverlaySolar, cfg.Layers.Solar)
	g.setOverlay(ui.OverlaySnow, cfg.Layers.Snow)

	slog.Info("viewer ready",
		"projection", cam.Projection.String(),
		"forecast", g.at,
		"headless", opts.Headless,
		"output_dir", output.Dir(),
	)
	return g, nil
}

// setOverlay applies an overlay state to the registry and its layer.
func (g *Game) setOverlay(id ui.OverlayID, enabled bool) {
	g.overlays.SetEnabled(id, enabled)
	switch id {
	case ui.OverlayWind:
		g.wind.SetEnabled(enabled)
	case ui.OverlaySolar:
		g.solar.SetEnabled(enabled)
	case ui.OverlaySnow:
		g.snow.SetEnabled(enabled)
	}
}

// Step runs one pass of the display loop at now.
func (g *Game) Step(now time.Time) {
	g.loop.Advance(now)
	g.frame++
	g.observeWind()
	g.flushTelemetry()
}

// UpdateHeadless advances the virtual clock by one nominal frame and steps.
func (g *Game) UpdateHeadless() {
	g.perf.StartPass()
	g.clock = g.clock.Add(g.cfg.Derived.NominalFrame)
	g.Step(g.clock)
	g.perf.EndPass()
}

// SetDragging forwards the map drag flag to every layer.
func (g *Game) SetDragging(dragging bool) {
	g.wind.SetDragging(dragging)
	g.solar.SetDragging(dragging)
	g.snow.SetDragging(dragging)
}

// Resize changes the viewport and rebuilds the layers.
func (g *Game) Resize(width, height int) {
	g.cam.Resize(float64(width), float64(height))
	g.canvas.Resize(width, height)
	g.wind.Resize()
	g.solar.Resize()
	g.snow.Resize()
}

// Frame returns the number of loop passes run.
func (g *Game) Frame() int {
	return g.frame
}

// Camera returns the map camera.
func (g *Game) Camera() *camera.Camera {
	return g.cam
}

// Wind returns the wind layer.
func (g *Game) Wind() *layer.WindLayer {
	return g.wind
}

// Solar returns the solar intensity layer.
func (g *Game) Solar() *layer.IntensityLayer {
	return g.solar
}

// Snow returns the snow intensity layer.
func (g *Game) Snow() *layer.IntensityLayer {
	return g.snow
}

// Snapshot composites the visible layers over the ocean colour.
func (g *Game) Snapshot() *image.RGBA {
	w, h := g.cam.Size()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	var layers []image.Image
	for _, l := range []*layer.IntensityLayer{g.solar, g.snow} {
		if img := l.Image(); img != nil {
			layers = append(layers, img)
		}
	}
	if g.wind.Enabled() {
		layers = append(layers, g.canvas.Image())
	}
	renderer.Composite(dst, oceanColor, layers...)
	return dst
}

// WriteSnapshot saves Snapshot as a PNG.
func (g *Game) WriteSnapshot(path string) error {
	if err := renderer.WritePNG(path, g.Snapshot()); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Unload stops the layers, flushes telemetry and releases GPU resources.
func (g *Game) Unload() {
	g.wind.SetEnabled(false)
	g.solar.SetEnabled(false)
	g.snow.SetEnabled(false)

	if err := g.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	if g.headless {
		return
	}
	for _, s := range []*renderer.Surface{g.windSurface, g.solarSurface, g.snowSurface, g.legendSurface} {
		s.Unload()
	}
}
