package layer

import (
	"testing"
	"time"

	"github.com/pthm-cable/windy/forecast"
	"github.com/pthm-cable/windy/systems"
)

var refTime = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func globalHeader(hours float64) forecast.Header {
	return forecast.Header{NX: 36, NY: 19, Lo1: 0, La1: 90, DX: 10, DY: 10, RefTime: refTime, ForecastTime: hours}
}

func uniformPair(t *testing.T, u, v float64) forecast.Pair {
	t.Helper()
	grid := func(hours float64) *forecast.VectorGrid {
		h := globalHeader(hours)
		g := &forecast.VectorGrid{Header: h, U: make([]float64, h.Cells()), V: make([]float64, h.Cells())}
		for i := range g.U {
			g.U[i], g.V[i] = u, v
		}
		return g
	}
	pair, err := forecast.NewPair(grid(0), grid(6))
	if err != nil {
		t.Fatal(err)
	}
	return pair
}

func uniformScalarPair(t *testing.T, value float64) forecast.ScalarPair {
	t.Helper()
	grid := func(hours float64) *forecast.Grid {
		h := globalHeader(hours)
		data := make([]float64, h.Cells())
		for i := range data {
			data[i] = value
		}
		g, err := forecast.NewGrid(h, data)
		if err != nil {
			t.Fatal(err)
		}
		return g
	}
	pair, err := forecast.NewScalarPair(grid(0), grid(6))
	if err != nil {
		t.Fatal(err)
	}
	return pair
}

func testBuckets(t *testing.T) systems.ColorBuckets {
	t.Helper()
	ramp, err := systems.NewColorRamp([]string{"#ffffff", "#ff0000"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return systems.NewColorBuckets(ramp, systems.BucketsConfig{
		Count: 5, MaxIntensity: 30, BaseLineWidth: 1.5, LineWidthStep: 0.1, Opacity: 1,
	})
}

func testWindConfig() WindConfig {
	return WindConfig{
		Animator: systems.AnimatorConfig{
			Field: systems.FieldBuilderConfig{
				Stride:            2,
				BatchBudget:       time.Hour,
				VelocityScale:     0.01,
				RandomizeAttempts: 30,
			},
			BatchDelay:   25 * time.Millisecond,
			MaxAge:       50,
			Density:      0.1,
			Fade:         0.9,
			NominalFrame: 16 * time.Millisecond,
			Seed:         1,
		},
		SettleDelay: 500 * time.Millisecond,
	}
}
