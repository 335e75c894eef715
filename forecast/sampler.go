package forecast

import "math"

// Vector is an interpolated wind sample. M is recomputed from U and V, never
// interpolated on its own.
type Vector struct {
	U, V, M float64
}

// Sampler performs bilinear lookups over a grid. Wrapping grids behave as if
// their first column were repeated after the last one.
type Sampler struct {
	header Header
	wraps  bool
	u, v   []float64 // v is nil for scalar grids
}

// NewVectorSampler returns a sampler over a wind grid.
func NewVectorSampler(g *VectorGrid) (*Sampler, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &Sampler{header: g.Header, wraps: g.Header.Wraps(), u: g.U, v: g.V}, nil
}

// NewScalarSampler returns a sampler over a scalar grid.
func NewScalarSampler(g *Grid) (*Sampler, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &Sampler{header: g.Header, wraps: g.Header.Wraps(), u: g.Data}, nil
}

// Header returns the lattice being sampled.
func (s *Sampler) Header() Header {
	return s.header
}

// floorMod is the modulo with the sign of the divisor.
func floorMod(a, n float64) float64 {
	return a - n*math.Floor(a/n)
}

// index converts a position to fractional column and row indices.
func (s *Sampler) index(lon, lat float64) (i, j float64) {
	i = floorMod(lon-s.header.Lo1, 360) / s.header.DX
	j = (s.header.La1 - lat) / s.header.DY
	return i, j
}

// column maps a column index onto stored data, resolving the virtual seam column.
func (s *Sampler) column(i int) (int, bool) {
	if i >= 0 && i < s.header.NX {
		return i, true
	}
	if s.wraps && i == s.header.NX {
		return 0, true
	}
	return 0, false
}

func (s *Sampler) row(j int) bool {
	return j >= 0 && j < s.header.NY
}

// corners resolves the four cells around (lon, lat). ok is false when any corner
// lies outside the grid.
func (s *Sampler) corners(lon, lat float64) (c [4]int, x, y float64, ok bool) {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return c, 0, 0, false
	}
	i, j := s.index(lon, lat)
	fi, ci := int(math.Floor(i)), int(math.Ceil(i))
	fj, cj := int(math.Floor(j)), int(math.Ceil(j))

	c0, ok0 := s.column(fi)
	c1, ok1 := s.column(ci)
	if !ok0 || !ok1 || !s.row(fj) || !s.row(cj) {
		return c, 0, 0, false
	}
	nx := s.header.NX
	c = [4]int{fj*nx + c0, fj*nx + c1, cj*nx + c0, cj*nx + c1}
	return c, i - float64(fi), j - float64(fj), true
}

func valid(vals []float64, idx [4]int) bool {
	for _, k := range idx {
		if math.IsNaN(vals[k]) {
			return false
		}
	}
	return true
}

func bilinear(x, y float64, vals []float64, c [4]int) float64 {
	rx, ry := 1-x, 1-y
	a, b, cc, d := rx*ry, x*ry, rx*y, x*y
	return vals[c[0]]*a + vals[c[1]]*b + vals[c[2]]*cc + vals[c[3]]*d
}

// Interpolate returns the wind vector at (lon, lat). ok is false when any of the
// four surrounding cells is missing or off-grid; no partial result is produced.
func (s *Sampler) Interpolate(lon, lat float64) (Vector, bool) {
	if s.v == nil {
		return Vector{}, false
	}
	c, x, y, ok := s.corners(lon, lat)
	if !ok || !valid(s.u, c) || !valid(s.v, c) {
		return Vector{}, false
	}
	u := bilinear(x, y, s.u, c)
	v := bilinear(x, y, s.v, c)
	return Vector{U: u, V: v, M: math.Sqrt(u*u + v*v)}, true
}

// InterpolateScalar returns the bilinear value at (lon, lat). For vector grids
// it interpolates the u component.
func (s *Sampler) InterpolateScalar(lon, lat float64) (float64, bool) {
	c, x, y, ok := s.corners(lon, lat)
	if !ok || !valid(s.u, c) {
		return 0, false
	}
	return bilinear(x, y, s.u, c), true
}

// Nearest returns the value of the cell closest to (lon, lat).
func (s *Sampler) Nearest(lon, lat float64) (float64, bool) {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return 0, false
	}
	i, j := s.index(lon, lat)
	col, ok := s.column(int(math.Round(i)))
	row := int(math.Round(j))
	if !ok || !s.row(row) {
		return 0, false
	}
	val := s.u[row*s.header.NX+col]
	if math.IsNaN(val) {
		return 0, false
	}
	return val, true
}
