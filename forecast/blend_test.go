package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats"
)

func TestBlendEndpoints(t *testing.T) {
	before := rampWind(globalHeader(10, 10, 0))
	after := uniformWind(globalHeader(10, 10, 6), 1.1, -0.3)

	atBefore, err := BlendVector(before, after, before.TargetTime())
	if err != nil {
		t.Fatalf("blend at k=0: %v", err)
	}
	if !floats.Equal(atBefore.U, before.U) || !floats.Equal(atBefore.V, before.V) {
		t.Error("expected blend at k=0 to equal before exactly")
	}

	atAfter, err := BlendVector(before, after, after.TargetTime())
	if err != nil {
		t.Fatalf("blend at k=1: %v", err)
	}
	if !floats.Equal(atAfter.U, after.U) || !floats.Equal(atAfter.V, after.V) {
		t.Error("expected blend at k=1 to equal after exactly")
	}
}

func TestBlendMidpoint(t *testing.T) {
	h0 := Header{NX: 2, NY: 1, DX: 1, DY: 1, RefTime: refTime, ForecastTime: 0}
	h1 := h0
	h1.ForecastTime = 4
	before := &Grid{Header: h0, Data: []float64{0, 10}}
	after := &Grid{Header: h1, Data: []float64{4, 20}}

	got, err := Blend(before, after, refTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("blend: %v", err)
	}
	want := []float64{1, 12.5}
	if !floats.EqualApprox(got.Data, want, 1e-12) {
		t.Errorf("expected %v, got %v", want, got.Data)
	}
	if got.Header.ForecastTime != 1 {
		t.Errorf("expected blended forecast hour 1, got %v", got.Header.ForecastTime)
	}
	// Inputs are untouched
	if before.Data[0] != 0 || after.Data[0] != 4 {
		t.Error("blend mutated its inputs")
	}
}

func TestBlendOutOfBounds(t *testing.T) {
	before := uniformWind(globalHeader(10, 10, 0), 1, 1)
	after := uniformWind(globalHeader(10, 10, 3), 2, 2)

	_, err := BlendVector(before, after, after.TargetTime().Add(time.Minute))
	if !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds past after, got %v", err)
	}

	_, err = BlendVector(before, after, before.TargetTime().Add(-time.Minute))
	if !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds before before, got %v", err)
	}
}

func TestBlendShapeMismatch(t *testing.T) {
	before := uniformWind(globalHeader(10, 10, 0), 1, 1)
	after := uniformWind(globalHeader(5, 5, 3), 2, 2)
	if _, err := BlendVector(before, after, before.TargetTime()); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestBlendSameInstant(t *testing.T) {
	g := uniformWind(globalHeader(10, 10, 3), 5, 5)
	got, err := BlendVector(g, g, g.TargetTime())
	if err != nil {
		t.Fatalf("blend: %v", err)
	}
	if !floats.Equal(got.U, g.U) {
		t.Error("expected identical result for zero-span pair")
	}
}

func TestBlendPropagatesMissing(t *testing.T) {
	h0 := Header{NX: 2, NY: 1, DX: 1, DY: 1, RefTime: refTime}
	h1 := h0
	h1.ForecastTime = 2
	before := &Grid{Header: h0, Data: []float64{math.NaN(), 1}}
	after := &Grid{Header: h1, Data: []float64{3, 1}}

	got, err := Blend(before, after, refTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("blend: %v", err)
	}
	if !math.IsNaN(got.Data[0]) {
		t.Errorf("expected missing cell to stay missing mid-blend, got %v", got.Data[0])
	}
}

// A uniform 10 m/s eastward wind stays exactly uniform after blending two
// identical forecasts, and samples as [10, 0, 10] everywhere.
func TestUniformWindEndToEnd(t *testing.T) {
	before := uniformWind(globalHeader(2, 2, 0), 10, 0)
	after := uniformWind(globalHeader(2, 2, 6), 10, 0)
	pair, err := NewPair(before, after)
	if err != nil {
		t.Fatalf("pair: %v", err)
	}

	for _, hours := range []float64{0, 1.25, 3, 6} {
		blended, err := pair.Blend(refTime.Add(time.Duration(hours * float64(time.Hour))))
		if err != nil {
			t.Fatalf("blend at %vh: %v", hours, err)
		}
		if !floats.Equal(blended.U, before.U) || !floats.Equal(blended.V, before.V) {
			t.Fatalf("blend at %vh changed a uniform field", hours)
		}

		s, err := NewVectorSampler(blended)
		if err != nil {
			t.Fatalf("sampler: %v", err)
		}
		for _, pt := range [][2]float64{{0, 0}, {13.7, 52.5}, {-179.9, -89}, {359.99, 0.5}, {-73.2, 40.7}} {
			v, ok := s.Interpolate(pt[0], pt[1])
			if !ok {
				t.Fatalf("expected a value at %v", pt)
			}
			if !approx(v.U, 10, 1e-9) || !approx(v.V, 0, 1e-9) || !approx(v.M, 10, 1e-9) {
				t.Errorf("at %v expected [10 0 10], got [%v %v %v]", pt, v.U, v.V, v.M)
			}
		}
	}
}

func TestNewPairRejectsReversedTimes(t *testing.T) {
	before := uniformWind(globalHeader(10, 10, 6), 1, 1)
	after := uniformWind(globalHeader(10, 10, 0), 1, 1)
	if _, err := NewPair(before, after); err == nil {
		t.Error("expected error for after preceding before")
	}
}

// Identical forecasts blend to themselves bit for bit at every minute of the
// window.
func TestBlendIdenticalExact(t *testing.T) {
	before := uniformWind(globalHeader(2, 2, 0), 10, -3.3)
	after := uniformWind(globalHeader(2, 2, 6), 10, -3.3)
	pair, err := NewPair(before, after)
	if err != nil {
		t.Fatalf("pair: %v", err)
	}

	for minute := 1; minute < 360; minute++ {
		blended, err := pair.Blend(refTime.Add(time.Duration(minute) * time.Minute))
		if err != nil {
			t.Fatalf("blend at minute %d: %v", minute, err)
		}
		if !floats.Equal(blended.U, before.U) || !floats.Equal(blended.V, before.V) {
			t.Fatalf("minute %d: U=%v V=%v", minute, blended.U[0], blended.V[0])
		}
	}
}
