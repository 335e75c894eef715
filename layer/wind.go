package layer

import (
	"log/slog"
	"time"

	"github.com/paulmach/orb"

	"github.com/pthm-cable/windy/camera"
	"github.com/pthm-cable/windy/forecast"
	"github.com/pthm-cable/windy/systems"
)

// View is the map widget as seen by the layers. Implemented by camera.Camera.
type View interface {
	systems.Projector
	Bounds() camera.Bounds
	Extent() orb.Bound
	Size() (width, height int)
	ZoomLevel() float64
}

// WindConfig configures a WindLayer.
type WindConfig struct {
	Animator    systems.AnimatorConfig
	SettleDelay time.Duration
}

// WindLayer owns the particle animator for the visible map. It rebuilds the
// animator from scratch whenever the forecast, viewport or visibility changes.
type WindLayer struct {
	cfg     WindConfig
	view    View
	canvas  systems.Canvas
	sched   systems.Scheduler
	buckets systems.ColorBuckets
	perf    systems.PhaseRecorder

	pair    *forecast.Pair
	at      time.Time
	enabled bool

	anim     *systems.Animator
	drag     *DragTracker
	rebuilds int
	err      error
}

// NewWindLayer creates a disabled wind layer.
func NewWindLayer(cfg WindConfig, view View, canvas systems.Canvas, sched systems.Scheduler, buckets systems.ColorBuckets) *WindLayer {
	l := &WindLayer{cfg: cfg, view: view, canvas: canvas, sched: sched, buckets: buckets}
	l.drag = NewDragTracker(sched, cfg.SettleDelay, l.dragStarted, l.rebuild)
	return l
}

// SetPerf attaches a phase recorder to future animators.
func (l *WindLayer) SetPerf(p systems.PhaseRecorder) {
	l.perf = p
}

// SetForecast installs a forecast pair and the instant to render.
func (l *WindLayer) SetForecast(pair forecast.Pair, at time.Time) {
	l.pair = &pair
	l.at = at
	if l.enabled && l.drag.State() == DragIdle {
		l.rebuild()
	}
}

// SetEnabled shows or hides the layer. Hiding stops the animator and
// releases its field.
func (l *WindLayer) SetEnabled(enabled bool) {
	if enabled == l.enabled {
		return
	}
	l.enabled = enabled
	if enabled {
		l.start()
		return
	}
	l.drag.Reset()
	l.stop()
}

// Enabled reports whether the layer is shown.
func (l *WindLayer) Enabled() bool {
	return l.enabled
}

// SetDragging forwards the host's drag flag to the drag state machine.
func (l *WindLayer) SetDragging(dragging bool) {
	if !l.enabled {
		return
	}
	l.drag.SetDragging(dragging)
}

// Resize rebuilds for new viewport dimensions. The caller resizes the canvas
// and view first.
func (l *WindLayer) Resize() {
	if l.enabled {
		l.rebuild()
	}
}

// Animator returns the live animator, or nil while stopped.
func (l *WindLayer) Animator() *systems.Animator {
	return l.anim
}

// DragState returns the drag coordination state.
func (l *WindLayer) DragState() DragState {
	return l.drag.State()
}

// Rebuilds returns how many animators have been started.
func (l *WindLayer) Rebuilds() int {
	return l.rebuilds
}

// Err returns the error of the last failed start.
func (l *WindLayer) Err() error {
	return l.err
}

func (l *WindLayer) dragStarted() {
	if l.anim != nil {
		l.anim.Pause()
	}
	l.canvas.Clear()
}

func (l *WindLayer) rebuild() {
	l.stop()
	l.start()
}

func (l *WindLayer) start() {
	if !l.enabled || l.pair == nil || l.anim != nil {
		return
	}
	l.canvas.Clear()

	params := systems.AnimatorParams{
		Pair:      *l.pair,
		At:        l.at,
		Projector: l.view,
		Canvas:    l.canvas,
		Scheduler: l.sched,
		Buckets:   l.buckets,
		Perf:      l.perf,
	}

	anim := systems.NewAnimator(l.cfg.Animator, params)
	w, h := l.view.Size()
	if err := anim.Start(l.view.Bounds(), w, h, l.view.Extent()); err != nil {
		l.err = err
		slog.Error("wind layer start failed", "at", l.at, "err", err)
		return
	}
	l.err = nil
	l.anim = anim
	l.rebuilds++
	slog.Debug("wind layer started", "bounds", l.view.Bounds(), "state", anim.State().String())
}

func (l *WindLayer) stop() {
	if l.anim != nil {
		l.anim.Stop()
		l.anim = nil
	}
	l.canvas.Clear()
}
