package systems

import (
	"math"
	"math/rand"
	"time"

	"github.com/paulmach/orb"

	"github.com/pthm-cable/windy/camera"
	"github.com/pthm-cable/windy/forecast"
)

// VectorField provides per-pixel screen velocities to the animator.
// Implemented by Field; tests substitute stubs.
type VectorField interface {
	// Lookup returns the displacement at the pixel nearest (x, y).
	Lookup(x, y float64) (forecast.Vector, bool)
	// Randomize picks a seed position for a particle.
	Randomize(rng *rand.Rand) (x, y float64)
	// Release drops the field's storage. The field is unusable afterwards.
	Release()
}

// sample is one field cell. ok is false where no wind is known.
type sample struct {
	v  forecast.Vector
	ok bool
}

// Field is a sparse column-major lookup of screen velocities over a pixel
// rectangle. Adjacent columns may share storage.
type Field struct {
	bounds   camera.Bounds
	columns  [][]sample
	attempts int
}

// Bounds returns the pixel rectangle covered by the field.
func (f *Field) Bounds() camera.Bounds {
	return f.bounds
}

// Lookup returns the displacement at the pixel nearest (x, y).
func (f *Field) Lookup(x, y float64) (forecast.Vector, bool) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return forecast.Vector{}, false
	}
	xi := int(math.Round(x)) - f.bounds.X
	yi := int(math.Round(y)) - f.bounds.Y
	if xi < 0 || xi >= len(f.columns) {
		return forecast.Vector{}, false
	}
	col := f.columns[xi]
	if yi < 0 || yi >= len(col) {
		return forecast.Vector{}, false
	}
	s := col[yi]
	return s.v, s.ok
}

// Defined reports whether the pixel nearest (x, y) carries wind.
func (f *Field) Defined(x, y float64) bool {
	_, ok := f.Lookup(x, y)
	return ok
}

// Randomize draws a pixel within the bounds, retrying up to the configured
// number of attempts to find one with wind. When every draw misses, the last
// point is returned anyway; the particle then escapes on its next frame.
func (f *Field) Randomize(rng *rand.Rand) (x, y float64) {
	if f.bounds.Empty() {
		return float64(f.bounds.X), float64(f.bounds.Y)
	}
	for i := 0; ; i++ {
		x = float64(f.bounds.X + rng.Intn(f.bounds.Width))
		y = float64(f.bounds.Y + rng.Intn(f.bounds.Height))
		if f.Defined(x, y) || i >= f.attempts {
			return x, y
		}
	}
}

// Release drops the column storage.
func (f *Field) Release() {
	f.columns = nil
}

// Released reports whether Release has been called.
func (f *Field) Released() bool {
	return f.columns == nil
}

// FieldBuilderConfig controls field interpolation.
type FieldBuilderConfig struct {
	// Stride is the pixel step between sampled columns and rows. Each sample
	// is copied into the stride-1 pixels after it.
	Stride int
	// BatchBudget is the wall clock time one Step may spend.
	BatchBudget time.Duration
	// VelocityScale is multiplied by (extent area in deg²)^0.4.
	VelocityScale float64
	// RandomizeAttempts bounds the retries in Field.Randomize.
	RandomizeAttempts int
}

// FieldBuilder turns a blended wind grid into a screen space Field.
type FieldBuilder struct {
	cfg  FieldBuilderConfig
	proj Projector
	now  func() time.Time
}

// NewFieldBuilder creates a builder projecting through proj.
func NewFieldBuilder(cfg FieldBuilderConfig, proj Projector) *FieldBuilder {
	if cfg.Stride < 1 {
		cfg.Stride = 1
	}
	return &FieldBuilder{cfg: cfg, proj: proj, now: time.Now}
}

// SetClock overrides the clock used for batch budgets.
func (b *FieldBuilder) SetClock(now func() time.Time) {
	b.now = now
}

// VelocityScale returns the per-frame scale for winds over extent.
func (b *FieldBuilder) VelocityScale(extent orb.Bound) float64 {
	area := math.Abs((extent.Max[0] - extent.Min[0]) * (extent.Max[1] - extent.Min[1]))
	return b.cfg.VelocityScale * math.Pow(area, 0.4)
}

// Interpolation is a field build in progress. Columns are filled left to
// right by successive calls to Step.
type Interpolation struct {
	b       *FieldBuilder
	sampler *forecast.Sampler
	bounds  camera.Bounds
	scale   float64
	columns [][]sample
	x       int
	done    bool
}

// Begin starts a chunked build over bounds. No work is done until Step.
func (b *FieldBuilder) Begin(sampler *forecast.Sampler, bounds camera.Bounds, extent orb.Bound) *Interpolation {
	width := max(bounds.Width, 0)
	return &Interpolation{
		b:       b,
		sampler: sampler,
		bounds:  bounds,
		scale:   b.VelocityScale(extent),
		columns: make([][]sample, width),
	}
}

// Build interpolates the whole field synchronously.
func (b *FieldBuilder) Build(sampler *forecast.Sampler, bounds camera.Bounds, extent orb.Bound) *Field {
	in := b.Begin(sampler, bounds, extent)
	for !in.Step() {
	}
	return in.Field()
}

// Step interpolates columns until the batch budget is spent, always making
// progress by at least one column. It reports whether the build is complete.
func (in *Interpolation) Step() bool {
	if in.done {
		return true
	}
	start := in.b.now()
	stride := in.b.cfg.Stride
	for in.x < len(in.columns) {
		in.column(in.x)
		in.x += stride
		if in.b.now().Sub(start) > in.b.cfg.BatchBudget {
			break
		}
	}
	if in.x >= len(in.columns) {
		in.done = true
	}
	return in.done
}

// Done reports whether every column has been interpolated.
func (in *Interpolation) Done() bool {
	return in.done
}

// Progress returns the fraction of columns interpolated.
func (in *Interpolation) Progress() float64 {
	if len(in.columns) == 0 {
		return 1
	}
	return math.Min(1, float64(in.x)/float64(len(in.columns)))
}

// Field returns the finished field, or nil while the build is still running.
func (in *Interpolation) Field() *Field {
	if !in.done {
		return nil
	}
	return &Field{bounds: in.bounds, columns: in.columns, attempts: in.b.cfg.RandomizeAttempts}
}

// column fills the column at offset xi and shares it with the following
// stride-1 columns.
func (in *Interpolation) column(xi int) {
	stride := in.b.cfg.Stride
	height := max(in.bounds.Height, 0)
	col := make([]sample, height)
	x := float64(in.bounds.X + xi)

	for yi := 0; yi < height; yi += stride {
		y := float64(in.bounds.Y + yi)
		p := in.b.proj.Unproject(x, y)
		lon, lat := p[0], p[1]
		if !finite(lon) || !finite(lat) {
			continue
		}
		wind, ok := in.sampler.Interpolate(lon, lat)
		if !ok {
			continue
		}
		v := Distort(in.b.proj, lon, lat, x, y, in.scale, wind)
		if !finite(v.U) || !finite(v.V) {
			// The probe stepped off the projection, as at an orthographic limb.
			continue
		}
		s := sample{v: v, ok: true}
		for k := yi; k < yi+stride && k < height; k++ {
			col[k] = s
		}
	}

	for k := xi; k < xi+stride && k < len(in.columns); k++ {
		in.columns[k] = col
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
