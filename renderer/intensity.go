package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/paulmach/orb"

	"github.com/pthm-cable/windy/camera"
	"github.com/pthm-cable/windy/forecast"
	"github.com/pthm-cable/windy/systems"
	"github.com/pthm-cable/windy/telemetry"
)

// IntensityStyle parameterises a raster intensity layer such as solar
// irradiance or snow depth.
type IntensityStyle struct {
	// Domain is the value mapped to full intensity.
	Domain     float64
	Ramp       systems.ColorRamp
	MaxOpacity float64
	// BlurRadius is the blur at zoom 1 in pixels.
	BlurRadius int
}

// IntensityRenderer rasterises a scalar grid over the visible viewport.
// Values are sampled on a coarse lattice, scaled up to screen resolution by
// nearest neighbour, smoothed with StackBlur and coloured through the style ramp.
type IntensityRenderer struct {
	style   IntensityStyle
	samples int
	colors  []color.NRGBA

	lattice []uint8
	alpha   *image.Alpha
	covered []bool

	// Perf receives raster and blur phase boundaries when set.
	Perf systems.PhaseRecorder
}

// NewIntensityRenderer creates a renderer sampling a samples x samples lattice.
func NewIntensityRenderer(style IntensityStyle, samples int) *IntensityRenderer {
	if samples < 2 {
		samples = 2
	}
	if style.Domain <= 0 {
		style.Domain = 1
	}
	r := &IntensityRenderer{style: style, samples: samples, lattice: make([]uint8, samples*samples)}
	r.buildColors()
	return r
}

// buildColors precomputes one colour per integer intensity in [0, Domain].
func (r *IntensityRenderer) buildColors() {
	n := int(math.Ceil(r.style.Domain)) + 1
	r.colors = make([]color.NRGBA, n)
	maxA := uint8(math.Round(clamp01(r.style.MaxOpacity) * 255))
	for i := range r.colors {
		c := r.style.Ramp.RGBA(float64(i)/r.style.Domain, 1)
		c.A = min(c.A, maxA)
		r.colors[i] = c
	}
}

// ColorAt returns the colour drawn for value v.
func (r *IntensityRenderer) ColorAt(v float64) color.NRGBA {
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	return r.colors[min(int(math.Round(v)), len(r.colors)-1)]
}

// Render draws the grid behind sampler into dst over bounds. Pixels that do
// not unproject onto the grid extent are left transparent.
func (r *IntensityRenderer) Render(dst *image.NRGBA, sampler *forecast.Sampler, proj systems.Projector, bounds camera.Bounds, extent orb.Bound, zoom float64) {
	clear(dst.Pix)
	b := image.Rect(bounds.X, bounds.Y, bounds.X+bounds.Width, bounds.Y+bounds.Height).Intersect(dst.Rect)
	if b.Empty() {
		return
	}

	r.phase(telemetry.PhaseRaster)
	r.sampleLattice(sampler, extent)
	r.upscale(dst.Rect, b, proj, extent)

	r.phase(telemetry.PhaseBlur)
	StackBlurAlpha(r.alpha, b.Min.X, b.Min.Y, b.Dx(), b.Dy(), StackBlurRadius(r.style.BlurRadius, zoom))

	r.phase(telemetry.PhaseRaster)
	r.colorize(dst, b)
}

// sampleLattice encodes the nearest grid value at each lattice point as an
// alpha over [0, Domain]. Missing values encode as zero.
func (r *IntensityRenderer) sampleLattice(sampler *forecast.Sampler, extent orb.Bound) {
	n := r.samples
	lonSpan := extent.Max[0] - extent.Min[0]
	latSpan := extent.Max[1] - extent.Min[1]
	for yi := 0; yi < n; yi++ {
		lat := extent.Max[1] - latSpan*float64(yi)/float64(n-1)
		for xi := 0; xi < n; xi++ {
			lon := extent.Min[0] + lonSpan*float64(xi)/float64(n-1)
			v, ok := sampler.Nearest(lon, lat)
			if !ok {
				r.lattice[yi*n+xi] = 0
				continue
			}
			r.lattice[yi*n+xi] = uint8(math.Round(clamp01(v/r.style.Domain) * 255))
		}
	}
}

// upscale fills the full-size alpha raster by reverse indexing each pixel's
// geographic position into the lattice.
func (r *IntensityRenderer) upscale(full, b image.Rectangle, proj systems.Projector, extent orb.Bound) {
	if r.alpha == nil || r.alpha.Rect != full {
		r.alpha = image.NewAlpha(full)
		r.covered = make([]bool, full.Dx()*full.Dy())
	} else {
		clear(r.alpha.Pix)
		clear(r.covered)
	}

	n := r.samples
	lonSpan := extent.Max[0] - extent.Min[0]
	latSpan := extent.Max[1] - extent.Min[1]
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := proj.Unproject(float64(x), float64(y))
			if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
				continue
			}
			xi, yi := 0, 0
			if lonSpan > 0 {
				xi = int(math.Round((p[0] - extent.Min[0]) / lonSpan * float64(n-1)))
			}
			if latSpan > 0 {
				yi = int(math.Round((extent.Max[1] - p[1]) / latSpan * float64(n-1)))
			}
			if xi < 0 || xi >= n || yi < 0 || yi >= n {
				continue
			}
			r.alpha.Pix[r.alpha.PixOffset(x, y)] = r.lattice[yi*n+xi]
			r.covered[(y-full.Min.Y)*full.Dx()+(x-full.Min.X)] = true
		}
	}
}

// colorize maps blurred alpha back to a value and writes its colour.
func (r *IntensityRenderer) colorize(dst *image.NRGBA, b image.Rectangle) {
	full := dst.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !r.covered[(y-full.Min.Y)*full.Dx()+(x-full.Min.X)] {
				continue
			}
			a := r.alpha.Pix[r.alpha.PixOffset(x, y)]
			dst.SetNRGBA(x, y, r.ColorAt(float64(a)/255*r.style.Domain))
		}
	}
}

func (r *IntensityRenderer) phase(name string) {
	if r.Perf != nil {
		r.Perf.StartPhase(name)
	}
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
