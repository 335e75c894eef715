package systems

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorRamp is an ordered list of colour stops blended in HCL space.
type ColorRamp struct {
	stops  []colorful.Color
	alphas []float64
}

// NewColorRamp parses hex colour stops. alphas, when non-empty, gives one
// opacity per stop; otherwise every stop is opaque.
func NewColorRamp(hexes []string, alphas []float64) (ColorRamp, error) {
	if len(hexes) == 0 {
		return ColorRamp{}, fmt.Errorf("color ramp needs at least one stop")
	}
	if len(alphas) != 0 && len(alphas) != len(hexes) {
		return ColorRamp{}, fmt.Errorf("color ramp: %d alphas for %d stops", len(alphas), len(hexes))
	}
	r := ColorRamp{stops: make([]colorful.Color, len(hexes)), alphas: make([]float64, len(hexes))}
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return ColorRamp{}, fmt.Errorf("color ramp stop %d: %w", i, err)
		}
		r.stops[i] = c
		r.alphas[i] = 1
		if len(alphas) != 0 {
			r.alphas[i] = clamp01(alphas[i])
		}
	}
	return r, nil
}

// At returns the colour and opacity at t in [0, 1].
func (r ColorRamp) At(t float64) (colorful.Color, float64) {
	t = clamp01(t)
	if len(r.stops) == 1 {
		return r.stops[0], r.alphas[0]
	}
	pos := t * float64(len(r.stops)-1)
	i := int(math.Floor(pos))
	if i >= len(r.stops)-1 {
		i = len(r.stops) - 2
	}
	f := pos - float64(i)
	c := r.stops[i].BlendHcl(r.stops[i+1], f).Clamped()
	a := r.alphas[i] + (r.alphas[i+1]-r.alphas[i])*f
	return c, a
}

// RGBA returns the colour at t as non-premultiplied RGBA with opacity scaled
// by opacity.
func (r ColorRamp) RGBA(t, opacity float64) color.NRGBA {
	c, a := r.At(t)
	cr, cg, cb := c.RGB255()
	return color.NRGBA{R: cr, G: cg, B: cb, A: uint8(math.Round(clamp01(a*opacity) * 255))}
}

// BucketStyle is the stroke used for one speed class.
type BucketStyle struct {
	Color     color.NRGBA
	LineWidth float64
}

// ColorBuckets maps wind speed to one of a fixed number of stroke styles.
type ColorBuckets struct {
	Styles       []BucketStyle
	MaxIntensity float64
}

// BucketsConfig describes the speed classes.
type BucketsConfig struct {
	Count         int
	MaxIntensity  float64
	BaseLineWidth float64
	LineWidthStep float64
	Opacity       float64
}

// NewColorBuckets builds count styles sampled evenly along ramp, with line
// widths growing by LineWidthStep per class.
func NewColorBuckets(ramp ColorRamp, cfg BucketsConfig) ColorBuckets {
	n := max(cfg.Count, 1)
	b := ColorBuckets{Styles: make([]BucketStyle, n), MaxIntensity: cfg.MaxIntensity}
	for i := range b.Styles {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		b.Styles[i] = BucketStyle{
			Color:     ramp.RGBA(t, cfg.Opacity),
			LineWidth: cfg.BaseLineWidth + cfg.LineWidthStep*float64(i),
		}
	}
	return b
}

// Len returns the number of buckets.
func (b ColorBuckets) Len() int {
	return len(b.Styles)
}

// IndexFor maps a magnitude to its bucket: floor(min(m, max) / max * (n-1)).
func (b ColorBuckets) IndexFor(m float64) int {
	if b.MaxIntensity <= 0 || len(b.Styles) == 0 || math.IsNaN(m) || m < 0 {
		return 0
	}
	return int(math.Floor(math.Min(m, b.MaxIntensity) / b.MaxIntensity * float64(len(b.Styles)-1)))
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
