package systems

import (
	"math"
	"math/rand"
	"time"

	"github.com/pthm-cable/windy/camera"
	"github.com/pthm-cable/windy/forecast"
)

var refTime = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

// uniformPair returns identical global wind forecasts six hours apart.
func uniformPair(u, v float64) forecast.Pair {
	grid := func(hours float64) *forecast.VectorGrid {
		h := forecast.Header{NX: 36, NY: 19, Lo1: 0, La1: 90, DX: 10, DY: 10, RefTime: refTime, ForecastTime: hours}
		g := &forecast.VectorGrid{Header: h, U: make([]float64, h.Cells()), V: make([]float64, h.Cells())}
		for i := range g.U {
			g.U[i], g.V[i] = u, v
		}
		return g
	}
	return forecast.Pair{Before: grid(0), After: grid(6)}
}

func uniformSampler(u, v float64) *forecast.Sampler {
	s, err := forecast.NewVectorSampler(uniformPair(u, v).Before)
	if err != nil {
		panic(err)
	}
	return s
}

type timer struct {
	d  time.Duration
	fn func()
}

// fakeScheduler records callbacks so tests can fire them explicitly.
type fakeScheduler struct {
	next   Handle
	frames map[Handle]func(time.Time)
	timers map[Handle]timer
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{frames: make(map[Handle]func(time.Time)), timers: make(map[Handle]timer)}
}

func (s *fakeScheduler) Frame(fn func(now time.Time)) Handle {
	s.next++
	s.frames[s.next] = fn
	return s.next
}

func (s *fakeScheduler) After(d time.Duration, fn func()) Handle {
	s.next++
	s.timers[s.next] = timer{d: d, fn: fn}
	return s.next
}

func (s *fakeScheduler) Cancel(h Handle) {
	delete(s.frames, h)
	delete(s.timers, h)
}

// tick runs every pending frame callback once.
func (s *fakeScheduler) tick(now time.Time) {
	fs := s.frames
	s.frames = make(map[Handle]func(time.Time))
	for _, fn := range fs {
		fn(now)
	}
}

// fire runs every pending timer once.
func (s *fakeScheduler) fire() {
	ts := s.timers
	s.timers = make(map[Handle]timer)
	for _, t := range ts {
		t.fn()
	}
}

// fakeCanvas records drawing calls.
type fakeCanvas struct {
	fades   []float64
	styles  []BucketStyle
	strokes []int // segment count per Stroke call
	clears  int
}

func newFakeCanvas() *fakeCanvas {
	return &fakeCanvas{}
}

func (c *fakeCanvas) Fade(keep float64) { c.fades = append(c.fades, keep) }

func (c *fakeCanvas) Stroke(style BucketStyle, segs []Segment) {
	c.styles = append(c.styles, style)
	c.strokes = append(c.strokes, len(segs))
}

func (c *fakeCanvas) Clear() { c.clears++ }

// stubField is a VectorField with a fixed wind over a rectangle.
type stubField struct {
	defined    func(x, y int) bool
	wind       func(x, y float64) forecast.Vector
	seedX      float64
	seedY      float64
	randomized int
	released   int
}

func (f *stubField) Lookup(x, y float64) (forecast.Vector, bool) {
	if math.IsNaN(x) || math.IsNaN(y) || !f.defined(int(math.Round(x)), int(math.Round(y))) {
		return forecast.Vector{}, false
	}
	return f.wind(x, y), true
}

func (f *stubField) Randomize(rng *rand.Rand) (float64, float64) {
	f.randomized++
	return f.seedX, f.seedY
}

func (f *stubField) Release() { f.released++ }

// nullField never has wind.
func nullField() *stubField {
	return &stubField{defined: func(int, int) bool { return false }, seedX: 5, seedY: 5}
}

// eastField blows speed px/frame east over [0, width) x [0, 100).
func eastField(width int, speed, m float64) *stubField {
	return &stubField{
		defined: func(x, y int) bool { return x >= 0 && x < width && y >= 0 && y < 100 },
		wind:    func(float64, float64) forecast.Vector { return forecast.Vector{U: speed, V: 0, M: m} },
		seedX:   10,
		seedY:   10,
	}
}

func testBuckets() ColorBuckets {
	ramp, err := NewColorRamp([]string{"#0000ff", "#ff0000"}, nil)
	if err != nil {
		panic(err)
	}
	return NewColorBuckets(ramp, BucketsConfig{Count: 10, MaxIntensity: 30, BaseLineWidth: 1, LineWidthStep: 0.1, Opacity: 1})
}

func testAnimatorConfig() AnimatorConfig {
	return AnimatorConfig{
		Field:        FieldBuilderConfig{Stride: 2, BatchBudget: time.Second, VelocityScale: 0.0005, RandomizeAttempts: 30},
		BatchDelay:   25 * time.Millisecond,
		MaxAge:       100,
		Density:      0.1,
		Fade:         0.97,
		NominalFrame: 16 * time.Millisecond,
		Seed:         1,
	}
}

// unitOrthographic returns a centred orthographic camera at one pixel per degree.
func unitOrthographic() *camera.Camera {
	side := 360 / math.Pi
	return camera.New(camera.Orthographic, side, side)
}

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	t := refTime
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}
