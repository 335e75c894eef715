// Intensity layer preview tool - renders a synthetic solar or snow raster and
// tunes its lattice and blur with sliders.
//
// Usage: go run ./cmd/blurpreview [-config config.yaml]
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	gui "github.com/gen2brain/raylib-go/raygui"

	"github.com/pthm-cable/windy/camera"
	"github.com/pthm-cable/windy/config"
	"github.com/pthm-cable/windy/forecast"
	"github.com/pthm-cable/windy/renderer"
	"github.com/pthm-cable/windy/systems"
)

const (
	windowWidth  = 1100
	windowHeight = 620
	previewW     = 720
	previewH     = 360
	panelWidth   = windowWidth - previewW - 40
)

// previewParams holds the tunable layer settings.
type previewParams struct {
	Snow        bool
	Samples     int
	BlurRadius  int
	MaxOpacity  float32
	OffsetHours float32
	Zoom        float32
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rl.InitWindow(windowWidth, windowHeight, "Intensity Blur Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	synth := forecast.NewSynthetic(cfg.Forecast.SyntheticSeed, cfg.Forecast.SyntheticDX, cfg.Forecast.SyntheticDY,
		time.Now().UTC().Truncate(6*time.Hour))
	cam := camera.New(camera.Equirectangular, previewW, previewH)

	params := fromConfig(cfg.Solar, false)
	img := image.NewNRGBA(image.Rect(0, 0, previewW, previewH))
	surface := renderer.NewSurface(false)
	defer surface.Unload()

	var elapsed time.Duration
	needsRender := true

	for !rl.WindowShouldClose() {
		if needsRender {
			ic := cfg.Solar
			generate := synth.Solar
			if params.Snow {
				ic, generate = cfg.Snow, synth.Snow
			}
			cam.SetZoom(float64(params.Zoom))
			start := time.Now()
			if err := render(img, cam, ic, params, generate); err != nil {
				slog.Error("render failed", "error", err)
			}
			elapsed = time.Since(start)
			surface.Upload(img)
			needsRender = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Color{R: 12, G: 22, B: 38, A: 255})

		surface.Draw(10, 10)
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Render: %s  Blur radius at zoom: %d", elapsed.Round(time.Microsecond),
			renderer.StackBlurRadius(params.BlurRadius, float64(params.Zoom))), 15, previewH+20, 16, rl.LightGray)

		panelX := float32(previewW + 30)
		panelY := float32(10)
		rl.DrawText("Intensity Layer", int32(panelX), int32(panelY), 20, rl.RayWhite)
		panelY += 35

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(params.Snow, "Show Solar", "Show Snow")) {
			if params.Snow {
				params = fromConfig(cfg.Solar, false)
			} else {
				params = fromConfig(cfg.Snow, true)
			}
			needsRender = true
		}
		panelY += 45

		slider := func(label, format string, value, lo, hi float32) float32 {
			rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				fmt.Sprintf(format, lo), fmt.Sprintf(format, hi),
				value, lo, hi,
			)
			rl.DrawText(fmt.Sprintf(format, value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.LightGray)
			panelY += 35
			if v != value {
				needsRender = true
			}
			return v
		}

		params.Samples = int(slider("Samples (lattice size)", "%.0f", float32(params.Samples), 4, 200))
		params.BlurRadius = int(slider("Blur radius (px at zoom 1)", "%.0f", float32(params.BlurRadius), 0, 40))
		params.MaxOpacity = slider("Max opacity", "%.2f", params.MaxOpacity, 0, 1)
		params.OffsetHours = slider("Forecast offset (hours)", "%.1f", params.OffsetHours, 0, 6)
		params.Zoom = slider("Zoom", "%.1f", params.Zoom, 1, 8)

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset") {
			if params.Snow {
				params = fromConfig(cfg.Snow, true)
			} else {
				params = fromConfig(cfg.Solar, false)
			}
			needsRender = true
		}
		panelY += 45

		name := "solar"
		if params.Snow {
			name = "snow"
		}
		yaml := fmt.Sprintf("%s:\n  samples: %d\n  blur_radius: %d\n  max_opacity: %.2f",
			name, params.Samples, params.BlurRadius, params.MaxOpacity)
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.LightGray)
		rl.DrawText(yaml, int32(panelX), int32(panelY)+22, 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), windowHeight-30, 12, rl.Gray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

func fromConfig(ic config.IntensityConfig, snow bool) previewParams {
	return previewParams{
		Snow:        snow,
		Samples:     ic.Samples,
		BlurRadius:  ic.BlurRadius,
		MaxOpacity:  float32(ic.MaxOpacity),
		OffsetHours: 1.5,
		Zoom:        1,
	}
}

// render draws one raster with the tuned settings.
func render(dst *image.NRGBA, cam *camera.Camera, ic config.IntensityConfig, p previewParams, generate func(float64) *forecast.Grid) error {
	ramp, err := systems.NewColorRamp(ic.Colors, ic.Alphas)
	if err != nil {
		return err
	}
	pair, err := forecast.NewScalarPair(generate(0), generate(6))
	if err != nil {
		return err
	}
	at := pair.Before.TargetTime().Add(time.Duration(float64(p.OffsetHours) * float64(time.Hour)))
	grid, err := pair.Blend(at)
	if err != nil {
		return err
	}
	sampler, err := forecast.NewScalarSampler(grid)
	if err != nil {
		return err
	}
	r := renderer.NewIntensityRenderer(renderer.IntensityStyle{
		Domain:     ic.Domain,
		Ramp:       ramp,
		MaxOpacity: float64(p.MaxOpacity),
		BlurRadius: p.BlurRadius,
	}, p.Samples)
	r.Render(dst, sampler, cam, cam.Bounds(), cam.Extent(), cam.ZoomLevel())
	return nil
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
