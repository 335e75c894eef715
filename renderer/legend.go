package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/pthm-cable/windy/systems"
)

const legendLabelHeight = 16

// LegendStyle sizes the wind speed legend.
type LegendStyle struct {
	Width, Height int
	BlurRadius    int
	Unit          string
}

// WindLegend draws the bucket colours as a horizontal bar with softened edges
// and speed labels underneath.
func WindLegend(buckets systems.ColorBuckets, style LegendStyle) *image.RGBA {
	pad := max(style.BlurRadius, 0)
	barW, barH := max(style.Width, 1), max(style.Height, 1)

	bar := image.NewNRGBA(image.Rect(0, 0, barW+2*pad, barH+2*pad))
	for x := 0; x < bar.Rect.Dx(); x++ {
		// Padding takes the colour of the nearest bar column
		bx := min(max(x-pad, 0), barW-1)
		speed := (float64(bx) + 0.5) / float64(barW) * buckets.MaxIntensity
		c := color.NRGBA{A: 255}
		if buckets.Len() > 0 {
			c = buckets.Styles[buckets.IndexFor(speed)].Color
		}
		for y := 0; y < bar.Rect.Dy(); y++ {
			inside := x >= pad && x < pad+barW && y >= pad && y < pad+barH
			px := c
			if !inside {
				px.A = 0
			}
			bar.SetNRGBA(x, y, px)
		}
	}
	StackBlurNRGBAAlpha(bar, 0, 0, bar.Rect.Dx(), bar.Rect.Dy(), style.BlurRadius)

	img := image.NewRGBA(image.Rect(0, 0, bar.Rect.Dx(), bar.Rect.Dy()+legendLabelHeight))
	dc := gg.NewContextForRGBA(img)
	dc.DrawImage(bar, 0, 0)
	dc.SetColor(color.White)

	y := float64(bar.Rect.Dy()) + legendLabelHeight/2
	dc.DrawStringAnchored("0", float64(pad), y, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("%g %s", buckets.MaxIntensity, style.Unit), float64(pad+barW), y, 1, 0.5)
	return img
}
