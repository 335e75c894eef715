package game

import (
	"fmt"

	"github.com/pthm-cable/windy/camera"
	"github.com/pthm-cable/windy/config"
	"github.com/pthm-cable/windy/layer"
	"github.com/pthm-cable/windy/renderer"
	"github.com/pthm-cable/windy/systems"
)

// newCamera builds the initial map view.
func newCamera(cfg *config.Config) (*camera.Camera, error) {
	proj, err := camera.ParseProjection(cfg.Camera.Projection)
	if err != nil {
		return nil, err
	}
	cam := camera.New(proj, float64(cfg.Screen.Width), float64(cfg.Screen.Height))
	if cfg.Camera.MinZoom > 0 {
		cam.MinZoom = cfg.Camera.MinZoom
	}
	if cfg.Camera.MaxZoom > 0 {
		cam.MaxZoom = cfg.Camera.MaxZoom
	}
	cam.Center[0] = cfg.Camera.CenterLon
	cam.Center[1] = cfg.Camera.CenterLat
	cam.SetZoom(cfg.Camera.Zoom)
	return cam, nil
}

// newBuckets builds the wind speed classes.
func newBuckets(cfg config.BucketsConfig) (systems.ColorBuckets, error) {
	ramp, err := systems.NewColorRamp(cfg.Colors, nil)
	if err != nil {
		return systems.ColorBuckets{}, fmt.Errorf("wind colors: %w", err)
	}
	return systems.NewColorBuckets(ramp, systems.BucketsConfig{
		Count:         cfg.Count,
		MaxIntensity:  cfg.MaxIntensity,
		BaseLineWidth: cfg.BaseLineWidth,
		LineWidthStep: cfg.LineWidthStep,
		Opacity:       cfg.Opacity,
	}), nil
}

// windConfig maps the particle and field settings onto the animator.
func windConfig(cfg *config.Config, seed int64) layer.WindConfig {
	if seed == 0 {
		seed = cfg.Particles.Seed
	}
	return layer.WindConfig{
		Animator: systems.AnimatorConfig{
			Field: systems.FieldBuilderConfig{
				Stride:            cfg.Field.Stride,
				BatchBudget:       cfg.Derived.BatchBudget,
				VelocityScale:     cfg.Particles.VelocityScale,
				RandomizeAttempts: cfg.Field.RandomizeAttempts,
			},
			BatchDelay:     cfg.Derived.BatchDelay,
			MaxAge:         cfg.Particles.MaxAge,
			Density:        cfg.Particles.Density,
			TouchReduction: cfg.Particles.TouchReduction,
			Fade:           cfg.Particles.Fade,
			NominalFrame:   cfg.Derived.NominalFrame,
			Seed:           seed,
		},
		SettleDelay: cfg.Derived.SettleDelay,
	}
}

// newIntensityRenderer builds the raster renderer for one scalar layer.
func newIntensityRenderer(name string, ic config.IntensityConfig, perf systems.PhaseRecorder) (*renderer.IntensityRenderer, error) {
	ramp, err := systems.NewColorRamp(ic.Colors, ic.Alphas)
	if err != nil {
		return nil, fmt.Errorf("%s colors: %w", name, err)
	}
	r := renderer.NewIntensityRenderer(renderer.IntensityStyle{
		Domain:     ic.Domain,
		Ramp:       ramp,
		MaxOpacity: ic.MaxOpacity,
		BlurRadius: ic.BlurRadius,
	}, ic.Samples)
	r.Perf = perf
	return r, nil
}
