package renderer

import (
	"image"
	"math"
)

// MaxBlurRadius is the largest supported blur radius.
const MaxBlurRadius = 254

// mulTable and shgTable hold the fixed-point divisor of each radius:
// (sum * mul) >> shg approximates sum / (r+1)². mul is rounded down so a
// blurred image never carries more alpha than its source.
var mulTable, shgTable [MaxBlurRadius + 1]int

func init() {
	for r := range mulTable {
		d := (r + 1) * (r + 1)
		shg := 0
		for (1 << (shg + 1)) <= 512*d {
			shg++
		}
		mulTable[r] = (1 << shg) / d
		shgTable[r] = shg
	}
}

// StackBlurAlpha blurs the rectangle (x0, y0, width, height) of img in place.
// Radii below 1 leave the image untouched; radii above MaxBlurRadius are capped.
func StackBlurAlpha(img *image.Alpha, x0, y0, width, height, radius int) {
	if img == nil {
		return
	}
	rect := image.Rect(x0, y0, x0+width, y0+height).Intersect(img.Rect)
	if radius < 1 || rect.Empty() {
		return
	}
	base := img.PixOffset(rect.Min.X, rect.Min.Y)
	stackBlur(img.Pix, base, img.Stride, 1, rect.Dx(), rect.Dy(), radius)
}

// StackBlurNRGBAAlpha blurs only the alpha channel of img, leaving colour
// channels as they are.
func StackBlurNRGBAAlpha(img *image.NRGBA, x0, y0, width, height, radius int) {
	if img == nil {
		return
	}
	rect := image.Rect(x0, y0, x0+width, y0+height).Intersect(img.Rect)
	if radius < 1 || rect.Empty() {
		return
	}
	base := img.PixOffset(rect.Min.X, rect.Min.Y) + 3
	stackBlur(img.Pix, base, img.Stride, 4, rect.Dx(), rect.Dy(), radius)
}

// StackBlurRadius scales a base radius by zoom, rounding to a whole pixel.
func StackBlurRadius(base int, zoom float64) int {
	if base < 1 || zoom <= 0 || math.IsNaN(zoom) {
		return 0
	}
	return min(int(math.Round(float64(base)*zoom)), MaxBlurRadius)
}

// stackBlur runs the horizontal then vertical pass over a w x h block of one
// channel. base indexes the block's first sample, stride advances one row and
// step one pixel.
func stackBlur(pix []uint8, base, stride, step, w, h, radius int) {
	radius = min(radius, MaxBlurRadius)
	ring := make([]int, 2*radius+1)

	for y := 0; y < h; y++ {
		blurLine(pix, base+y*stride, step, w, radius, ring)
	}
	for x := 0; x < w; x++ {
		blurLine(pix, base+x*step, stride, h, radius, ring)
	}
}

// blurLine blurs n samples starting at start, spaced step apart. The ring
// holds the window's samples; sum carries the triangular weighting while
// sumIn and sumOut track the leading and trailing halves.
func blurLine(pix []uint8, start, step, n, radius int, ring []int) {
	div := len(ring)
	r1 := radius + 1
	mul, shg := int64(mulTable[radius]), shgTable[radius]
	last := n - 1

	at := func(i int) int {
		return int(pix[start+min(i, last)*step])
	}

	first := at(0)
	sumOut := r1 * first
	sum := r1 * (r1 + 1) / 2 * first
	sumIn := 0
	for i := 0; i <= radius; i++ {
		ring[i] = first
	}
	for i := 1; i <= radius; i++ {
		v := at(i)
		ring[i+radius] = v
		sum += v * (r1 - i)
		sumIn += v
	}

	in, out := 0, r1
	for x := 0; x < n; x++ {
		// sum*mul reaches ~8.5e9 at the largest radius
		pix[start+x*step] = uint8((int64(sum) * mul) >> shg)

		sum -= sumOut
		sumOut -= ring[in]

		v := at(x + r1)
		ring[in] = v
		sumIn += v
		sum += sumIn
		in++
		if in == div {
			in = 0
		}

		v = ring[out]
		sumOut += v
		sumIn -= v
		out++
		if out == div {
			out = 0
		}
	}
}
