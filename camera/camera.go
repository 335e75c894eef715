// Package camera provides a 2D map camera for viewport control.
package camera

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Projection selects how geographic coordinates map to the screen.
type Projection int

const (
	Equirectangular Projection = iota
	Mercator
	Orthographic
)

// maxMercatorLat is the latitude at which the square web mercator world ends.
const maxMercatorLat = 85.05112878

// earthCircumference is the mercator world width in meters.
var earthCircumference = project.WGS84.ToMercator(orb.Point{180, 0})[0] * 2

// ParseProjection maps a config name to a Projection.
func ParseProjection(name string) (Projection, error) {
	switch name {
	case "", "equirectangular":
		return Equirectangular, nil
	case "mercator":
		return Mercator, nil
	case "orthographic":
		return Orthographic, nil
	}
	return 0, fmt.Errorf("unknown projection %q", name)
}

func (p Projection) String() string {
	switch p {
	case Mercator:
		return "mercator"
	case Orthographic:
		return "orthographic"
	default:
		return "equirectangular"
	}
}

// Bounds is a pixel rectangle.
type Bounds struct {
	X, Y, Width, Height int
}

// Empty reports whether the rectangle has no area.
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Contains reports whether pixel (x, y) lies inside the rectangle.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Camera controls the viewport onto the globe.
// Supports pan and zoom with longitude wrapping.
type Camera struct {
	Projection Projection

	// Center is the geographic point at the viewport center.
	Center orb.Point

	// Zoom level (1.0 = whole world width fits the viewport)
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Zoom constraints
	MinZoom, MaxZoom float64
}

// New creates a camera centered on (0, 0) with 1:1 zoom.
func New(proj Projection, viewportW, viewportH float64) *Camera {
	return &Camera{
		Projection: proj,
		Zoom:       1.0,
		ViewportW:  viewportW,
		ViewportH:  viewportH,
		MinZoom:    1.0,
		MaxZoom:    32.0,
	}
}

// scale returns pixels per projected unit: degrees for equirectangular,
// meters for mercator and the globe radius in pixels for orthographic.
func (c *Camera) scale() float64 {
	switch c.Projection {
	case Mercator:
		return c.ViewportW / earthCircumference * c.Zoom
	case Orthographic:
		return math.Min(c.ViewportW, c.ViewportH) / 2 * c.Zoom
	default:
		return c.ViewportW / 360 * c.Zoom
	}
}

// PixelsPerDegree returns the horizontal scale at the view center.
func (c *Camera) PixelsPerDegree() float64 {
	switch c.Projection {
	case Mercator:
		return c.ViewportW / 360 * c.Zoom / math.Cos(clampLat(c.Center[1], maxMercatorLat)*math.Pi/180)
	case Orthographic:
		return c.scale() * math.Pi / 180
	default:
		return c.scale()
	}
}

// Project converts a lon/lat point to screen coordinates. Points on the far
// side of an orthographic globe project to NaN.
func (c *Camera) Project(p orb.Point) (x, y float64) {
	cx, cy := c.ViewportW/2, c.ViewportH/2
	s := c.scale()

	switch c.Projection {
	case Mercator:
		m := project.WGS84.ToMercator(orb.Point{p[0], clampLat(p[1], maxMercatorLat)})
		o := project.WGS84.ToMercator(orb.Point{c.Center[0], clampLat(c.Center[1], maxMercatorLat)})
		dx := wrapDelta(m[0]-o[0], earthCircumference)
		return cx + dx*s, cy - (m[1]-o[1])*s

	case Orthographic:
		lam := wrapDelta(p[0]-c.Center[0], 360) * math.Pi / 180
		phi := p[1] * math.Pi / 180
		phi0 := c.Center[1] * math.Pi / 180
		cosC := math.Sin(phi0)*math.Sin(phi) + math.Cos(phi0)*math.Cos(phi)*math.Cos(lam)
		if cosC < 0 {
			return math.NaN(), math.NaN()
		}
		ox := math.Cos(phi) * math.Sin(lam)
		oy := math.Cos(phi0)*math.Sin(phi) - math.Sin(phi0)*math.Cos(phi)*math.Cos(lam)
		return cx + ox*s, cy - oy*s

	default:
		dx := wrapDelta(p[0]-c.Center[0], 360)
		return cx + dx*s, cy - (p[1]-c.Center[1])*s
	}
}

// Unproject converts screen coordinates to a lon/lat point. Longitudes are
// continuous across the view (center ± offset) rather than normalized, so a
// view spanning the antimeridian has a monotonic extent. Pixels off the world
// unproject to NaN.
func (c *Camera) Unproject(x, y float64) orb.Point {
	s := c.scale()
	dx := (x - c.ViewportW/2) / s
	dy := (c.ViewportH/2 - y) / s

	switch c.Projection {
	case Mercator:
		o := project.WGS84.ToMercator(orb.Point{c.Center[0], clampLat(c.Center[1], maxMercatorLat)})
		m := orb.Point{o[0], o[1] + dy}
		p := project.Mercator.ToWGS84(m)
		if math.Abs(p[1]) > maxMercatorLat {
			return orb.Point{math.NaN(), math.NaN()}
		}
		return orb.Point{c.Center[0] + dx/earthCircumference*360, p[1]}

	case Orthographic:
		rho := math.Hypot(dx, dy)
		if rho > 1 {
			return orb.Point{math.NaN(), math.NaN()}
		}
		if rho == 0 {
			return c.Center
		}
		phi0 := c.Center[1] * math.Pi / 180
		cc := math.Asin(rho)
		sinC, cosC := math.Sin(cc), math.Cos(cc)
		phi := math.Asin(cosC*math.Sin(phi0) + dy*sinC*math.Cos(phi0)/rho)
		lam := math.Atan2(dx*sinC, rho*cosC*math.Cos(phi0)-dy*sinC*math.Sin(phi0))
		return orb.Point{c.Center[0] + lam*180/math.Pi, phi * 180 / math.Pi}

	default:
		lat := c.Center[1] + dy
		if math.Abs(lat) > 90 {
			return orb.Point{math.NaN(), math.NaN()}
		}
		return orb.Point{c.Center[0] + dx, lat}
	}
}

// Bounds returns the pixel rectangle of the viewport covered by the world.
func (c *Camera) Bounds() Bounds {
	w, h := c.ViewportW, c.ViewportH
	var x0, y0, x1, y1 float64

	switch c.Projection {
	case Orthographic:
		r := c.scale()
		x0, x1 = w/2-r, w/2+r
		y0, y1 = h/2-r, h/2+r
	case Mercator:
		x0, x1 = 0, w
		_, y0 = c.Project(orb.Point{c.Center[0], maxMercatorLat})
		_, y1 = c.Project(orb.Point{c.Center[0], -maxMercatorLat})
	default:
		x0, x1 = 0, w
		_, y0 = c.Project(orb.Point{c.Center[0], 90})
		_, y1 = c.Project(orb.Point{c.Center[0], -90})
	}

	ix0 := int(math.Max(0, math.Floor(x0)))
	iy0 := int(math.Max(0, math.Floor(y0)))
	ix1 := int(math.Min(w, math.Ceil(x1)))
	iy1 := int(math.Min(h, math.Ceil(y1)))
	if ix1 < ix0 {
		ix1 = ix0
	}
	if iy1 < iy0 {
		iy1 = iy0
	}
	return Bounds{X: ix0, Y: iy0, Width: ix1 - ix0, Height: iy1 - iy0}
}

// extentSamples is the lattice size used to trace the visible extent.
const extentSamples = 16

// Extent returns the geographic bound of the visible area, traced by
// unprojecting a lattice over the pixel bounds. Visible poles extend the
// latitude range to ±90.
func (c *Camera) Extent() orb.Bound {
	b := c.Bounds()
	ext := orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}
	if b.Empty() {
		return orb.Bound{Min: c.Center, Max: c.Center}
	}

	for i := 0; i <= extentSamples; i++ {
		for j := 0; j <= extentSamples; j++ {
			x := float64(b.X) + float64(b.Width)*float64(i)/extentSamples
			y := float64(b.Y) + float64(b.Height)*float64(j)/extentSamples
			p := c.Unproject(x, y)
			if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
				continue
			}
			ext = ext.Extend(p)
		}
	}

	for _, pole := range []float64{90, -90} {
		px, py := c.Project(orb.Point{c.Center[0], pole})
		if !math.IsNaN(px) && b.Contains(int(px), int(py)) {
			ext = ext.Extend(orb.Point{ext.Min[0], pole})
			if c.Projection == Orthographic {
				ext.Min[0] = c.Center[0] - 180
				ext.Max[0] = c.Center[0] + 180
			}
		}
	}

	if math.IsInf(ext.Min[0], 1) {
		return orb.Bound{Min: c.Center, Max: c.Center}
	}
	return ext
}

// Size returns the viewport in whole pixels.
func (c *Camera) Size() (width, height int) {
	return int(c.ViewportW), int(c.ViewportH)
}

// ZoomLevel returns the current zoom.
func (c *Camera) ZoomLevel() float64 {
	return c.Zoom
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the view by the given delta in screen pixels, the way a drag
// moves the map under the pointer. Longitude wraps; latitude is clamped.
func (c *Camera) Pan(dx, dy float64) {
	s := c.scale()
	switch c.Projection {
	case Orthographic:
		c.Center[0] -= dx / s * 180 / math.Pi
		c.Center[1] += dy / s * 180 / math.Pi
	case Mercator:
		o := project.WGS84.ToMercator(orb.Point{c.Center[0], clampLat(c.Center[1], maxMercatorLat)})
		o[0] -= dx / s
		o[1] += dy / s
		p := project.Mercator.ToWGS84(o)
		c.Center = orb.Point{p[0], p[1]}
	default:
		c.Center[0] -= dx / s
		c.Center[1] += dy / s
	}
	c.Center[0] = normalizeLon(c.Center[0])
	c.Center[1] = clampLat(c.Center[1], 90)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.Center = orb.Point{0, 0}
	c.Zoom = 1.0
}

// wrapDelta folds d into [-size/2, size/2).
func wrapDelta(d, size float64) float64 {
	return d - size*math.Floor(d/size+0.5)
}

// normalizeLon maps lon into [-180, 180).
func normalizeLon(lon float64) float64 {
	return wrapDelta(lon, 360)
}

func clampLat(lat, limit float64) float64 {
	return clamp(lat, -limit, limit)
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
