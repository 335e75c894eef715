package forecast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// maxPayloadBytes caps decoded payload size. A 0.5 degree global wind pair is ~20 MB
// of JSON.
const maxPayloadBytes = 128 << 20

// Entry is one element of a payload: either a scalar grid or a u/v pair.
type Entry struct {
	Scalar *Grid
	Vector *VectorGrid
}

// Payload is the forecast document consumed by the layers:
// {"forecasts": [before, after]}.
type Payload struct {
	Forecasts [2]Entry
}

type rawGrid struct {
	Header Header     `json:"header"`
	Data   []*float64 `json:"data"`
}

func (r rawGrid) grid() (*Grid, error) {
	data := make([]float64, len(r.Data))
	for i, v := range r.Data {
		if v == nil {
			data[i] = math.NaN()
			continue
		}
		data[i] = *v
	}
	return NewGrid(r.Header, data)
}

// UnmarshalJSON accepts a grid object or an array of two grid objects.
func (e *Entry) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var raws []rawGrid
		if err := json.Unmarshal(b, &raws); err != nil {
			return err
		}
		if len(raws) != 2 {
			return fmt.Errorf("vector forecast needs 2 component grids, got %d", len(raws))
		}
		u, err := raws[0].grid()
		if err != nil {
			return fmt.Errorf("component 0: %w", err)
		}
		v, err := raws[1].grid()
		if err != nil {
			return fmt.Errorf("component 1: %w", err)
		}
		// Prefer the GRIB parameter number over array order when both are tagged.
		if u.Header.ParameterNumber == ParameterWindV && v.Header.ParameterNumber == ParameterWindU {
			u, v = v, u
		}
		vg, err := NewVectorGrid(u, v)
		if err != nil {
			return err
		}
		e.Vector = vg
		return nil
	}

	var raw rawGrid
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	g, err := raw.grid()
	if err != nil {
		return err
	}
	e.Scalar = g
	return nil
}

// DecodePayload reads a forecast payload. Both entries must be of the same kind.
func DecodePayload(r io.Reader) (*Payload, error) {
	var doc struct {
		Forecasts []Entry `json:"forecasts"`
	}
	dec := json.NewDecoder(io.LimitReader(r, maxPayloadBytes))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding forecast payload: %w", err)
	}
	if len(doc.Forecasts) != 2 {
		return nil, fmt.Errorf("forecast payload needs 2 forecasts, got %d", len(doc.Forecasts))
	}
	before, after := doc.Forecasts[0], doc.Forecasts[1]
	if (before.Vector == nil) != (after.Vector == nil) {
		return nil, fmt.Errorf("%w: mixed scalar and vector forecasts", ErrShapeMismatch)
	}
	return &Payload{Forecasts: [2]Entry{before, after}}, nil
}

// VectorPair returns the payload as a wind forecast pair.
func (p *Payload) VectorPair() (Pair, error) {
	if p.Forecasts[0].Vector == nil {
		return Pair{}, fmt.Errorf("payload holds scalar forecasts")
	}
	return NewPair(p.Forecasts[0].Vector, p.Forecasts[1].Vector)
}

// ScalarPair returns the payload as a scalar forecast pair.
func (p *Payload) ScalarPair() (ScalarPair, error) {
	if p.Forecasts[0].Scalar == nil {
		return ScalarPair{}, fmt.Errorf("payload holds vector forecasts")
	}
	return NewScalarPair(p.Forecasts[0].Scalar, p.Forecasts[1].Scalar)
}

// EncodeVectorPayload writes a wind pair in payload form. Missing values are
// written as null.
func EncodeVectorPayload(w io.Writer, pair Pair) error {
	entry := func(g *VectorGrid) []rawGrid {
		uh, vh := g.Header, g.Header
		uh.ParameterCategory, uh.ParameterNumber = 2, ParameterWindU
		vh.ParameterCategory, vh.ParameterNumber = 2, ParameterWindV
		return []rawGrid{{Header: uh, Data: nullable(g.U)}, {Header: vh, Data: nullable(g.V)}}
	}
	doc := struct {
		Forecasts [2][]rawGrid `json:"forecasts"`
	}{Forecasts: [2][]rawGrid{entry(pair.Before), entry(pair.After)}}
	return json.NewEncoder(w).Encode(doc)
}

func nullable(data []float64) []*float64 {
	out := make([]*float64, len(data))
	for i := range data {
		if math.IsNaN(data[i]) {
			continue
		}
		out[i] = &data[i]
	}
	return out
}
