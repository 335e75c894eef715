package renderer

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/pthm-cable/windy/systems"
)

// Canvas is the particle trail surface: a premultiplied RGBA image drawn
// with gg. It implements systems.Canvas.
type Canvas struct {
	img *image.RGBA
	dc  *gg.Context

	// fade lookup for the last keep factor
	keep float64
	lut  [256]uint8
}

// NewCanvas creates a transparent canvas.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{keep: -1}
	c.Resize(width, height)
	return c
}

// Resize replaces the backing image. Existing trails are discarded.
func (c *Canvas) Resize(width, height int) {
	c.img = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	c.dc = gg.NewContextForRGBA(c.img)
	c.dc.SetLineCap(gg.LineCapRound)
	c.dc.SetLineJoin(gg.LineJoinRound)
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (width, height int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

// Fade keeps the given fraction of every pixel's alpha. Because pixels are
// premultiplied all four channels scale together, which leaves the colour
// unchanged. Values are truncated so trails always decay to transparent.
func (c *Canvas) Fade(keep float64) {
	if keep >= 1 {
		return
	}
	if keep <= 0 {
		c.Clear()
		return
	}
	if keep != c.keep {
		for i := range c.lut {
			c.lut[i] = uint8(float64(i) * keep)
		}
		c.keep = keep
	}
	pix := c.img.Pix
	for i, v := range pix {
		pix[i] = c.lut[v]
	}
}

// Stroke draws all segments as one path with the bucket's colour and line width.
func (c *Canvas) Stroke(style systems.BucketStyle, segs []systems.Segment) {
	if len(segs) == 0 {
		return
	}
	c.dc.SetColor(style.Color)
	c.dc.SetLineWidth(style.LineWidth)
	for _, s := range segs {
		c.dc.MoveTo(s.X0, s.Y0)
		c.dc.LineTo(s.X1, s.Y1)
	}
	c.dc.Stroke()
}

// Clear makes every pixel transparent.
func (c *Canvas) Clear() {
	c.dc.SetColor(color.Transparent)
	c.dc.Clear()
}
