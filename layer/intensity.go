package layer

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/pthm-cable/windy/forecast"
	"github.com/pthm-cable/windy/renderer"
	"github.com/pthm-cable/windy/systems"
)

// IntensityLayer renders a scalar forecast such as solar irradiance or snow
// depth. The raster is hidden while the map is dragged and redrawn once the
// map settles.
type IntensityLayer struct {
	name     string
	renderer *renderer.IntensityRenderer
	view     View
	drag     *DragTracker

	pair    *forecast.ScalarPair
	at      time.Time
	enabled bool

	img     *image.NRGBA
	visible bool
	renders int
	err     error
}

// NewIntensityLayer creates a disabled layer drawing through r.
func NewIntensityLayer(name string, r *renderer.IntensityRenderer, view View, sched systems.Scheduler, settle time.Duration) *IntensityLayer {
	l := &IntensityLayer{name: name, renderer: r, view: view}
	l.drag = NewDragTracker(sched, settle, l.hide, l.redraw)
	return l
}

// Name returns the layer name.
func (l *IntensityLayer) Name() string {
	return l.name
}

// SetForecast installs a forecast pair and the instant to render.
func (l *IntensityLayer) SetForecast(pair forecast.ScalarPair, at time.Time) {
	l.pair = &pair
	l.at = at
	if l.enabled && l.drag.State() == DragIdle {
		l.redraw()
	}
}

// SetEnabled shows or hides the layer.
func (l *IntensityLayer) SetEnabled(enabled bool) {
	if enabled == l.enabled {
		return
	}
	l.enabled = enabled
	if enabled {
		l.redraw()
		return
	}
	l.drag.Reset()
	l.hide()
	l.img = nil
}

// Enabled reports whether the layer is shown.
func (l *IntensityLayer) Enabled() bool {
	return l.enabled
}

// SetDragging forwards the host's drag flag to the drag state machine.
func (l *IntensityLayer) SetDragging(dragging bool) {
	if l.enabled {
		l.drag.SetDragging(dragging)
	}
}

// Resize redraws for new viewport dimensions.
func (l *IntensityLayer) Resize() {
	if l.enabled {
		l.redraw()
	}
}

// Image returns the rendered raster, or nil while hidden.
func (l *IntensityLayer) Image() *image.NRGBA {
	if !l.visible {
		return nil
	}
	return l.img
}

// Renders returns how many rasters have been drawn.
func (l *IntensityLayer) Renders() int {
	return l.renders
}

// Err returns the error of the last failed render.
func (l *IntensityLayer) Err() error {
	return l.err
}

func (l *IntensityLayer) hide() {
	l.visible = false
}

func (l *IntensityLayer) redraw() {
	if !l.enabled || l.pair == nil {
		return
	}
	if err := l.render(); err != nil {
		l.err = err
		l.visible = false
		slog.Error("intensity layer render failed", "layer", l.name, "at", l.at, "err", err)
		return
	}
	l.err = nil
	l.visible = true
}

func (l *IntensityLayer) render() error {
	grid, err := l.pair.Blend(l.at)
	if err != nil {
		return fmt.Errorf("blending %s forecast: %w", l.name, err)
	}
	sampler, err := forecast.NewScalarSampler(grid)
	if err != nil {
		return fmt.Errorf("sampling %s forecast: %w", l.name, err)
	}

	w, h := l.view.Size()
	if l.img == nil || l.img.Rect.Dx() != w || l.img.Rect.Dy() != h {
		l.img = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	l.renderer.Render(l.img, sampler, l.view, l.view.Bounds(), l.view.Extent(), l.view.ZoomLevel())
	l.renders++
	return nil
}
