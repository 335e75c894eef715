package forecast

import (
	"math"
	"time"
)

var refTime = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

// globalHeader returns a wrapping global lattice with the given spacing.
func globalHeader(dx, dy, forecastHours float64) Header {
	return Header{
		NX:           int(360 / dx),
		NY:           int(180/dy) + 1,
		Lo1:          0,
		La1:          90,
		DX:           dx,
		DY:           dy,
		RefTime:      refTime,
		ForecastTime: forecastHours,
	}
}

func uniformWind(h Header, u, v float64) *VectorGrid {
	us := make([]float64, h.Cells())
	vs := make([]float64, h.Cells())
	for i := range us {
		us[i] = u
		vs[i] = v
	}
	return &VectorGrid{Header: h, U: us, V: vs}
}

// rampWind fills u with a function of the cell indices and v with another, so
// that lattice lookups are distinguishable.
func rampWind(h Header) *VectorGrid {
	g := &VectorGrid{Header: h, U: make([]float64, h.Cells()), V: make([]float64, h.Cells())}
	for j := 0; j < h.NY; j++ {
		for i := 0; i < h.NX; i++ {
			g.U[j*h.NX+i] = math.Sin(float64(i)*0.3) * 10
			g.V[j*h.NX+i] = math.Cos(float64(j)*0.2) * 5
		}
	}
	return g
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
