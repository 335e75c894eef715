package systems

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"
	"github.com/paulmach/orb"

	"github.com/pthm-cable/windy/camera"
	"github.com/pthm-cable/windy/components"
	"github.com/pthm-cable/windy/forecast"
	"github.com/pthm-cable/windy/telemetry"
)

// ErrAlreadyStarted is returned by Start on an animator that is not stopped.
var ErrAlreadyStarted = errors.New("animator already started")

// State is the animator lifecycle state.
type State int

const (
	StateStopped State = iota
	StateBuilding
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// AnimatorConfig holds particle animation parameters.
type AnimatorConfig struct {
	Field      FieldBuilderConfig
	BatchDelay time.Duration

	MaxAge         int
	Density        float64 // particles per pixel of bounds width
	TouchReduction float64
	Touch          bool

	// Fade is the trail alpha kept per NominalFrame.
	Fade         float64
	NominalFrame time.Duration

	Seed int64
}

// AnimatorParams are the animator's collaborators.
type AnimatorParams struct {
	Pair      forecast.Pair
	At        time.Time
	Projector Projector
	Canvas    Canvas
	Scheduler Scheduler
	Buckets   ColorBuckets
	Perf      PhaseRecorder // optional
}

// FrameCounts tallies what happened to particles during one frame.
type FrameCounts struct {
	Visible   int // drew a segment
	Invisible int // advected without drawing
	Escaped   int // no wind at the current position
	Respawned int
}

// Particle is a snapshot of one particle.
type Particle struct {
	X, Y, XT, YT float64
	Age          int
}

// Animator advects particles through a wind field and draws their fading
// trails. It is driven entirely by its Scheduler and is not safe for
// concurrent use.
type Animator struct {
	cfg     AnimatorConfig
	p       AnimatorParams
	builder *FieldBuilder
	rng     *rand.Rand

	started bool
	paused  bool

	building *Interpolation
	field    VectorField
	bounds   camera.Bounds

	batch, frame Handle
	lastFrame    time.Time
	frames       int

	world    *ecs.World
	mapper   *ecs.Map3[components.Position, components.Target, components.Age]
	filter   *ecs.Filter3[components.Position, components.Target, components.Age]
	count    int
	segments [][]Segment
	counts   FrameCounts
}

// NewAnimator creates a stopped animator.
func NewAnimator(cfg AnimatorConfig, p AnimatorParams) *Animator {
	if cfg.MaxAge < 1 {
		cfg.MaxAge = 1
	}
	if cfg.NominalFrame <= 0 {
		cfg.NominalFrame = time.Second / 60
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Animator{
		cfg:      cfg,
		p:        p,
		builder:  NewFieldBuilder(cfg.Field, p.Projector),
		rng:      rand.New(rand.NewSource(seed)),
		segments: make([][]Segment, max(p.Buckets.Len(), 1)),
	}
}

// Builder returns the field builder, for clock injection in tests.
func (a *Animator) Builder() *FieldBuilder {
	return a.builder
}

// State returns the current lifecycle state.
func (a *Animator) State() State {
	switch {
	case !a.started:
		return StateStopped
	case a.field == nil:
		return StateBuilding
	case a.paused:
		return StatePaused
	default:
		return StateRunning
	}
}

// Start blends the forecast pair at the configured instant and begins a
// chunked field build over bounds clipped to width x height. The first batch
// runs immediately; later batches are scheduled through the Scheduler. When
// the field completes, particles are seeded and the frame loop starts.
func (a *Animator) Start(bounds camera.Bounds, width, height int, extent orb.Bound) error {
	if a.started {
		return ErrAlreadyStarted
	}

	a.phase(telemetry.PhaseBlend)
	blended, err := a.p.Pair.Blend(a.p.At)
	if err != nil {
		return fmt.Errorf("blending forecast: %w", err)
	}
	sampler, err := forecast.NewVectorSampler(blended)
	if err != nil {
		return fmt.Errorf("sampling forecast: %w", err)
	}

	a.started = true
	a.bounds = clip(bounds, width, height)
	a.building = a.builder.Begin(sampler, a.bounds, extent)
	a.runBatch()
	return nil
}

// clip restricts b to [0, width) x [0, height).
func clip(b camera.Bounds, width, height int) camera.Bounds {
	x0, y0 := max(b.X, 0), max(b.Y, 0)
	x1, y1 := min(b.X+b.Width, width), min(b.Y+b.Height, height)
	return camera.Bounds{X: x0, Y: y0, Width: max(x1-x0, 0), Height: max(y1-y0, 0)}
}

func (a *Animator) runBatch() {
	a.batch = 0
	if a.building == nil {
		return
	}
	a.phase(telemetry.PhaseInterpolate)
	if !a.building.Step() {
		a.batch = a.p.Scheduler.After(a.cfg.BatchDelay, a.runBatch)
		return
	}
	field := a.building.Field()
	a.building = nil
	a.Run(field, a.bounds)
}

// Run seeds the particle pool into field and starts the frame loop. Start
// calls it once the field build completes.
func (a *Animator) Run(field VectorField, bounds camera.Bounds) {
	if a.field != nil && a.field != field {
		a.field.Release()
	}
	a.started = true
	a.field = field
	a.bounds = bounds
	a.frames = 0
	a.lastFrame = time.Time{}

	a.world = ecs.NewWorld()
	a.mapper = ecs.NewMap3[components.Position, components.Target, components.Age](a.world)
	a.filter = ecs.NewFilter3[components.Position, components.Target, components.Age](a.world)

	a.count = a.particleCount(bounds)
	for i := 0; i < a.count; i++ {
		x, y := field.Randomize(a.rng)
		pos := components.Position{X: x, Y: y}
		tgt := components.Target{X: x, Y: y}
		age := components.Age{Frames: a.rng.Intn(a.cfg.MaxAge)}
		a.mapper.NewEntity(&pos, &tgt, &age)
	}

	if a.frame == 0 {
		a.frame = a.p.Scheduler.Frame(a.onFrame)
	}
}

func (a *Animator) particleCount(bounds camera.Bounds) int {
	n := math.Round(float64(bounds.Width) * a.cfg.Density)
	if a.cfg.Touch && a.cfg.TouchReduction > 0 {
		n = math.Round(n * a.cfg.TouchReduction)
	}
	return int(n)
}

// Stop cancels pending callbacks, releases the field and discards the
// particles. Stopping a stopped animator does nothing.
func (a *Animator) Stop() {
	if !a.started {
		return
	}
	if a.batch != 0 {
		a.p.Scheduler.Cancel(a.batch)
		a.batch = 0
	}
	if a.frame != 0 {
		a.p.Scheduler.Cancel(a.frame)
		a.frame = 0
	}
	if a.field != nil {
		a.field.Release()
		a.field = nil
	}
	a.building = nil
	a.world = nil
	a.mapper = nil
	a.filter = nil
	a.count = 0
	a.started = false
	a.paused = false
}

// Pause suspends advection and drawing. The frame loop keeps running.
func (a *Animator) Pause() {
	a.paused = true
}

// Resume continues after Pause.
func (a *Animator) Resume() {
	if a.paused {
		a.paused = false
		a.lastFrame = time.Time{}
	}
}

func (a *Animator) onFrame(now time.Time) {
	a.frame = a.p.Scheduler.Frame(a.onFrame)
	a.Frame(now)
}

// Frame advances and draws one animation frame. It does nothing unless the
// animator is running.
func (a *Animator) Frame(now time.Time) {
	if a.State() != StateRunning {
		return
	}
	elapsed := a.cfg.NominalFrame
	if !a.lastFrame.IsZero() {
		elapsed = now.Sub(a.lastFrame)
	}
	a.lastFrame = now

	a.phase(telemetry.PhaseEvolve)
	a.evolve()
	a.phase(telemetry.PhaseDraw)
	a.draw(elapsed)
	a.frames++
}

// evolve moves every particle one step and collects visible segments by
// speed bucket.
func (a *Animator) evolve() {
	for i := range a.segments {
		a.segments[i] = a.segments[i][:0]
	}
	a.counts = FrameCounts{}

	query := a.filter.Query()
	for query.Next() {
		pos, tgt, age := query.Get()

		if age.Frames > a.cfg.MaxAge {
			pos.X, pos.Y = a.field.Randomize(a.rng)
			tgt.X, tgt.Y = pos.X, pos.Y
			age.Frames = 0
			a.counts.Respawned++
		}

		if v, ok := a.field.Lookup(pos.X, pos.Y); !ok {
			// Escaped; respawn on the next frame.
			age.Frames = a.cfg.MaxAge
			a.counts.Escaped++
		} else {
			xt, yt := pos.X+v.U, pos.Y+v.V
			if _, visible := a.field.Lookup(xt, yt); visible {
				tgt.X, tgt.Y = xt, yt
				idx := min(a.p.Buckets.IndexFor(v.M), len(a.segments)-1)
				a.segments[idx] = append(a.segments[idx], Segment{X0: pos.X, Y0: pos.Y, X1: xt, Y1: yt})
				a.counts.Visible++
			} else {
				pos.X, pos.Y = xt, yt
				tgt.X, tgt.Y = xt, yt
				a.counts.Invisible++
			}
		}
		age.Frames++
	}
}

// draw fades existing trails by the elapsed time, strokes each bucket and
// moves drawn particles to their targets.
func (a *Animator) draw(elapsed time.Duration) {
	a.p.Canvas.Fade(FadeFactor(a.cfg.Fade, elapsed, a.cfg.NominalFrame))

	for i, segs := range a.segments {
		if len(segs) == 0 || i >= len(a.p.Buckets.Styles) {
			continue
		}
		a.p.Canvas.Stroke(a.p.Buckets.Styles[i], segs)
	}

	query := a.filter.Query()
	for query.Next() {
		pos, tgt, _ := query.Get()
		pos.X, pos.Y = tgt.X, tgt.Y
	}
}

// FadeFactor returns the alpha kept after elapsed time when fade is kept per
// nominal frame.
func FadeFactor(fade float64, elapsed, nominal time.Duration) float64 {
	if elapsed <= 0 || nominal <= 0 {
		return 1
	}
	return math.Pow(fade, float64(elapsed)/float64(nominal))
}

// Particles returns a snapshot of the particle pool.
func (a *Animator) Particles() []Particle {
	if a.filter == nil {
		return nil
	}
	out := make([]Particle, 0, a.count)
	query := a.filter.Query()
	for query.Next() {
		pos, tgt, age := query.Get()
		out = append(out, Particle{X: pos.X, Y: pos.Y, XT: tgt.X, YT: tgt.Y, Age: age.Frames})
	}
	return out
}

// ParticleCount returns the size of the particle pool.
func (a *Animator) ParticleCount() int {
	return a.count
}

// Frames returns the number of frames drawn since the field was installed.
func (a *Animator) Frames() int {
	return a.frames
}

// Field returns the live field, or nil while stopped or building.
func (a *Animator) Field() VectorField {
	return a.field
}

// BuildProgress returns the fraction of the pending field build completed,
// or 1 when no build is pending.
func (a *Animator) BuildProgress() float64 {
	if a.building == nil {
		return 1
	}
	return a.building.Progress()
}

// LastFrame returns the particle tallies of the most recent frame.
func (a *Animator) LastFrame() FrameCounts {
	return a.counts
}

// Segments returns the segments collected by the last frame, by bucket.
func (a *Animator) Segments() [][]Segment {
	return a.segments
}

func (a *Animator) phase(name string) {
	if a.p.Perf != nil {
		a.p.Perf.StartPhase(name)
	}
}
