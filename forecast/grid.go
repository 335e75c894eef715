// Package forecast models gridded weather forecasts: time-stamped lon/lat grids of
// scalar or vector samples, their JSON payload, temporal blending and spatial
// sampling.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidGrid reports a grid whose header and data disagree.
	ErrInvalidGrid = errors.New("invalid grid")
	// ErrShapeMismatch reports two grids that cannot be combined cell by cell.
	ErrShapeMismatch = errors.New("grid shape mismatch")
	// ErrOutOfBounds reports a blend instant outside the bracketing forecasts.
	ErrOutOfBounds = errors.New("instant outside forecast bounds")
)

// Header describes the lattice of a forecast grid. The origin (Lo1, La1) is the
// north-west sample; rows run southward by DY and columns eastward by DX.
type Header struct {
	NX           int       `json:"nx"`
	NY           int       `json:"ny"`
	Lo1          float64   `json:"lo1"`
	La1          float64   `json:"la1"`
	DX           float64   `json:"dx"`
	DY           float64   `json:"dy"`
	RefTime      time.Time `json:"refTime"`
	ForecastTime float64   `json:"forecastTime"` // hours after RefTime

	ParameterCategory int `json:"parameterCategory,omitempty"`
	ParameterNumber   int `json:"parameterNumber,omitempty"`
}

// GRIB2 meteorological parameter numbers (category 2, momentum) for wind components.
const (
	ParameterWindU = 2
	ParameterWindV = 3
)

// TargetTime is the instant the grid is valid for.
func (h Header) TargetTime() time.Time {
	return h.RefTime.Add(time.Duration(h.ForecastTime * float64(time.Hour)))
}

// Cells returns nx*ny.
func (h Header) Cells() int {
	return h.NX * h.NY
}

// Wraps reports whether the grid covers the full circle of longitude, in which
// case the first column is treated as also following the last one.
func (h Header) Wraps() bool {
	return math.Floor(float64(h.NX)*h.DX) >= 360
}

// SameShape reports whether two headers describe the same lattice.
func (h Header) SameShape(o Header) bool {
	return h.NX == o.NX && h.NY == o.NY &&
		h.Lo1 == o.Lo1 && h.La1 == o.La1 &&
		h.DX == o.DX && h.DY == o.DY
}

func (h Header) validate() error {
	if h.NX <= 0 || h.NY <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidGrid, h.NX, h.NY)
	}
	if h.DX <= 0 || h.DY <= 0 {
		return fmt.Errorf("%w: non-positive spacing dx=%v dy=%v", ErrInvalidGrid, h.DX, h.DY)
	}
	return nil
}

// Grid is a scalar forecast field. Data is row-major: Data[j*NX + i]. Missing
// samples are NaN. A Grid is never modified once built.
type Grid struct {
	Header Header
	Data   []float64
}

// NewGrid validates and returns a grid over data.
func NewGrid(h Header, data []float64) (*Grid, error) {
	g := &Grid{Header: h, Data: data}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks that the data length matches the header lattice.
func (g *Grid) Validate() error {
	if err := g.Header.validate(); err != nil {
		return err
	}
	// int64 product so large grids cannot overflow on 32-bit platforms
	expected := int64(g.Header.NX) * int64(g.Header.NY)
	if int64(len(g.Data)) != expected {
		return fmt.Errorf("%w: %d values, expected %d (%dx%d)",
			ErrInvalidGrid, len(g.Data), expected, g.Header.NX, g.Header.NY)
	}
	return nil
}

// TargetTime is the instant the grid is valid for.
func (g *Grid) TargetTime() time.Time {
	return g.Header.TargetTime()
}

// At returns the value at column i, row j.
func (g *Grid) At(i, j int) float64 {
	return g.Data[j*g.Header.NX+i]
}

// VectorGrid is a wind forecast: u (eastward) and v (northward) components
// sharing one header.
type VectorGrid struct {
	Header Header
	U, V   []float64
}

// NewVectorGrid pairs u and v component grids. Both must share a lattice and
// target time.
func NewVectorGrid(u, v *Grid) (*VectorGrid, error) {
	if err := u.Validate(); err != nil {
		return nil, fmt.Errorf("u component: %w", err)
	}
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("v component: %w", err)
	}
	if !u.Header.SameShape(v.Header) {
		return nil, fmt.Errorf("%w: u %dx%d, v %dx%d",
			ErrShapeMismatch, u.Header.NX, u.Header.NY, v.Header.NX, v.Header.NY)
	}
	if !u.TargetTime().Equal(v.TargetTime()) {
		return nil, fmt.Errorf("%w: u valid at %s, v valid at %s",
			ErrShapeMismatch, u.TargetTime().Format(time.RFC3339), v.TargetTime().Format(time.RFC3339))
	}
	return &VectorGrid{Header: u.Header, U: u.Data, V: v.Data}, nil
}

// Validate checks both component lengths against the header.
func (g *VectorGrid) Validate() error {
	if err := (&Grid{Header: g.Header, Data: g.U}).Validate(); err != nil {
		return fmt.Errorf("u component: %w", err)
	}
	if err := (&Grid{Header: g.Header, Data: g.V}).Validate(); err != nil {
		return fmt.Errorf("v component: %w", err)
	}
	return nil
}

// TargetTime is the instant the grid is valid for.
func (g *VectorGrid) TargetTime() time.Time {
	return g.Header.TargetTime()
}

// Components splits the vector grid into u and v scalar grids sharing its header.
func (g *VectorGrid) Components() (u, v *Grid) {
	return &Grid{Header: g.Header, Data: g.U}, &Grid{Header: g.Header, Data: g.V}
}
