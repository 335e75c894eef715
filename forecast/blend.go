package forecast

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Pair brackets an instant with the wind forecasts valid before and after it.
type Pair struct {
	Before, After *VectorGrid
}

// NewPair validates that before and after share a lattice and are ordered in time.
func NewPair(before, after *VectorGrid) (Pair, error) {
	if !before.Header.SameShape(after.Header) {
		return Pair{}, fmt.Errorf("%w: before %dx%d, after %dx%d", ErrShapeMismatch,
			before.Header.NX, before.Header.NY, after.Header.NX, after.Header.NY)
	}
	if after.TargetTime().Before(before.TargetTime()) {
		return Pair{}, fmt.Errorf("after forecast (%s) precedes before forecast (%s)",
			after.TargetTime().Format(time.RFC3339), before.TargetTime().Format(time.RFC3339))
	}
	return Pair{Before: before, After: after}, nil
}

// Blend interpolates the pair at t.
func (p Pair) Blend(t time.Time) (*VectorGrid, error) {
	return BlendVector(p.Before, p.After, t)
}

// ScalarPair brackets an instant with scalar forecasts.
type ScalarPair struct {
	Before, After *Grid
}

// NewScalarPair validates that before and after share a lattice and are ordered in time.
func NewScalarPair(before, after *Grid) (ScalarPair, error) {
	if !before.Header.SameShape(after.Header) {
		return ScalarPair{}, fmt.Errorf("%w: before %dx%d, after %dx%d", ErrShapeMismatch,
			before.Header.NX, before.Header.NY, after.Header.NX, after.Header.NY)
	}
	if after.TargetTime().Before(before.TargetTime()) {
		return ScalarPair{}, fmt.Errorf("after forecast (%s) precedes before forecast (%s)",
			after.TargetTime().Format(time.RFC3339), before.TargetTime().Format(time.RFC3339))
	}
	return ScalarPair{Before: before, After: after}, nil
}

// Blend interpolates the pair at t.
func (p ScalarPair) Blend(t time.Time) (*Grid, error) {
	return Blend(p.Before, p.After, t)
}

// Fraction returns k = (t - before) / (after - before). Instants outside
// [before, after] are rejected with ErrOutOfBounds, never clamped.
func Fraction(before, after, t time.Time) (float64, error) {
	if t.After(after) {
		return 0, fmt.Errorf("%w: %s is after %s", ErrOutOfBounds,
			t.Format(time.RFC3339), after.Format(time.RFC3339))
	}
	if t.Before(before) {
		return 0, fmt.Errorf("%w: %s is before %s", ErrOutOfBounds,
			t.Format(time.RFC3339), before.Format(time.RFC3339))
	}
	span := after.Sub(before)
	if span == 0 {
		return 0, nil
	}
	return float64(t.Sub(before)) / float64(span), nil
}

// Blend returns a new grid with each cell linearly interpolated between before
// and after at t. The result carries the before header with its forecast time
// moved to t.
func Blend(before, after *Grid, t time.Time) (*Grid, error) {
	if !before.Header.SameShape(after.Header) || len(before.Data) != len(after.Data) {
		return nil, fmt.Errorf("%w: before %dx%d, after %dx%d", ErrShapeMismatch,
			before.Header.NX, before.Header.NY, after.Header.NX, after.Header.NY)
	}
	k, err := Fraction(before.TargetTime(), after.TargetTime(), t)
	if err != nil {
		return nil, err
	}
	return &Grid{Header: blendedHeader(before.Header, t), Data: lerp(before.Data, after.Data, k)}, nil
}

// BlendVector blends u and v independently.
func BlendVector(before, after *VectorGrid, t time.Time) (*VectorGrid, error) {
	if !before.Header.SameShape(after.Header) || len(before.U) != len(after.U) || len(before.V) != len(after.V) {
		return nil, fmt.Errorf("%w: before %dx%d, after %dx%d", ErrShapeMismatch,
			before.Header.NX, before.Header.NY, after.Header.NX, after.Header.NY)
	}
	k, err := Fraction(before.TargetTime(), after.TargetTime(), t)
	if err != nil {
		return nil, err
	}
	return &VectorGrid{
		Header: blendedHeader(before.Header, t),
		U:      lerp(before.U, after.U, k),
		V:      lerp(before.V, after.V, k),
	}, nil
}

// lerp computes a + (b-a)*k, which is exactly a wherever a == b. The
// endpoints are plain copies so that missing cells in the unused grid do not
// leak in.
func lerp(a, b []float64, k float64) []float64 {
	dst := make([]float64, len(a))
	switch k {
	case 0:
		copy(dst, a)
		return dst
	case 1:
		copy(dst, b)
		return dst
	}
	floats.SubTo(dst, b, a)
	floats.Scale(k, dst)
	floats.Add(dst, a)
	return dst
}

func blendedHeader(h Header, t time.Time) Header {
	h.ForecastTime = t.Sub(h.RefTime).Hours()
	return h
}
