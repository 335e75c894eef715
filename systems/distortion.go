package systems

import (
	"math"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/windy/forecast"
)

// DistortionProbe is the finite difference step in degrees.
var DistortionProbe = math.Pow(10, -5.2)

// Jacobian holds the screen displacement, in pixels per degree, of one
// degree of longitude (Lambda) and one degree of latitude (Phi) at a point.
// Lambda is corrected by the meridian scale factor cos(lat).
type Jacobian struct {
	Lambda, Phi r2.Vec
}

// Distortion measures the local Jacobian of proj at (lon, lat), which is
// known to project to (x, y). The probe steps toward the prime meridian and
// the equator.
func Distortion(proj Projector, lon, lat, x, y float64) Jacobian {
	hl := DistortionProbe
	if lon >= 0 {
		hl = -DistortionProbe
	}
	hp := DistortionProbe
	if lat >= 0 {
		hp = -DistortionProbe
	}

	lx, ly := proj.Project(orb.Point{lon + hl, lat})
	px, py := proj.Project(orb.Point{lon, lat + hp})
	k := math.Cos(lat * math.Pi / 180)

	return Jacobian{
		Lambda: r2.Vec{X: (lx - x) / hl / k, Y: (ly - y) / hl / k},
		Phi:    r2.Vec{X: (px - x) / hp, Y: (py - y) / hp},
	}
}

// Distort converts a wind vector at (lon, lat) into a screen space
// displacement per frame. u and v are multiplied by scale, then mapped
// through the local Jacobian. M keeps the real world magnitude for colouring.
func Distort(proj Projector, lon, lat, x, y, scale float64, wind forecast.Vector) forecast.Vector {
	d := Distortion(proj, lon, lat, x, y)
	w := r2.Add(r2.Scale(wind.U*scale, d.Lambda), r2.Scale(wind.V*scale, d.Phi))
	return forecast.Vector{U: w.X, V: w.Y, M: wind.M}
}
