package forecast

import (
	"math"
	"time"

	"github.com/ojrac/opensimplex-go"
)

// Synthetic generates plausible global forecasts from coherent noise, for demos
// and offline runs. Longitude is sampled on a cylinder so every field wraps
// seamlessly at the antimeridian.
type Synthetic struct {
	noise  opensimplex.Noise
	header Header
}

// NewSynthetic returns a generator over a global lattice with the given spacing.
func NewSynthetic(seed int64, dx, dy float64, refTime time.Time) *Synthetic {
	return &Synthetic{
		noise: opensimplex.New(seed),
		header: Header{
			NX:      int(math.Round(360 / dx)),
			NY:      int(math.Round(180/dy)) + 1,
			Lo1:     0,
			La1:     90,
			DX:      dx,
			DY:      dy,
			RefTime: refTime.UTC(),
		},
	}
}

// Header returns the lattice for the given forecast hour.
func (s *Synthetic) Header(forecastHours float64) Header {
	h := s.header
	h.ForecastTime = forecastHours
	return h
}

// sample evaluates 4D noise with longitude wrapped on a circle of radius r.
func (s *Synthetic) sample(lon, lat, t, freq, offset float64) float64 {
	theta := lon * math.Pi / 180
	r := freq * 360 / (2 * math.Pi)
	return s.noise.Eval4(math.Cos(theta)*r+offset, math.Sin(theta)*r, lat*freq, t)
}

func (s *Synthetic) each(h Header, fn func(idx int, lon, lat float64)) {
	for j := 0; j < h.NY; j++ {
		lat := h.La1 - float64(j)*h.DY
		for i := 0; i < h.NX; i++ {
			fn(j*h.NX+i, h.Lo1+float64(i)*h.DX, lat)
		}
	}
}

// Wind returns a wind grid for the given forecast hour: banded zonal flow
// (trade easterlies, mid-latitude westerlies) perturbed by noise eddies.
func (s *Synthetic) Wind(forecastHours float64) *VectorGrid {
	h := s.Header(forecastHours)
	u := make([]float64, h.Cells())
	v := make([]float64, h.Cells())
	t := forecastHours * 0.05
	s.each(h, func(idx int, lon, lat float64) {
		phi := lat * math.Pi / 180
		zonal := -6*math.Cos(3*phi) + 4*math.Cos(phi)
		u[idx] = zonal + 8*s.sample(lon, lat, t, 0.03, 0)
		v[idx] = 8 * s.sample(lon, lat, t, 0.03, 100)
	})
	return &VectorGrid{Header: h, U: u, V: v}
}

// Solar returns a downward shortwave radiation grid (W/m^2) for the given
// forecast hour, from solar elevation dimmed by noise clouds.
func (s *Synthetic) Solar(forecastHours float64) *Grid {
	h := s.Header(forecastHours)
	at := h.TargetTime()
	data := make([]float64, h.Cells())
	t := forecastHours * 0.05
	s.each(h, func(idx int, lon, lat float64) {
		cosZ := SolarElevation(at, lon, lat)
		if cosZ <= 0 {
			return
		}
		cloud := 0.5 + 0.5*s.sample(lon, lat, t, 0.05, 300)
		data[idx] = 1000 * cosZ * (1 - 0.7*cloud)
	})
	return &Grid{Header: h, Data: data}
}

// Snow returns a snow depth grid (cm), present poleward of the snow line.
func (s *Synthetic) Snow(forecastHours float64) *Grid {
	h := s.Header(forecastHours)
	data := make([]float64, h.Cells())
	s.each(h, func(idx int, lon, lat float64) {
		absLat := math.Abs(lat)
		if absLat < 45 {
			return
		}
		depth := (absLat - 45) * 2 * (0.6 + 0.4*s.sample(lon, lat, 0, 0.04, 500))
		data[idx] = math.Max(0, depth)
	})
	return &Grid{Header: h, Data: data}
}

// WindPair returns synthetic before/after wind forecasts hoursApart apart.
func (s *Synthetic) WindPair(beforeHours, hoursApart float64) Pair {
	return Pair{Before: s.Wind(beforeHours), After: s.Wind(beforeHours + hoursApart)}
}

// SolarElevation returns the cosine of the solar zenith angle at (lon, lat) and t.
func SolarElevation(t time.Time, lon, lat float64) float64 {
	t = t.UTC()
	doy := float64(t.YearDay())
	decl := -23.44 * math.Pi / 180 * math.Cos(2*math.Pi/365*(doy+10))
	hours := float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
	hourAngle := ((hours-12)*15 + lon) * math.Pi / 180
	phi := lat * math.Pi / 180
	return math.Sin(phi)*math.Sin(decl) + math.Cos(phi)*math.Cos(decl)*math.Cos(hourAngle)
}
