package forecast

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

const windPayload = `{"forecasts": [
  [
    {"header": {"nx": 2, "ny": 2, "lo1": 0, "la1": 10, "dx": 5, "dy": 5,
                "refTime": "2026-03-01T06:00:00.000Z", "forecastTime": 0,
                "parameterCategory": 2, "parameterNumber": 3},
     "data": [1, 2, 3, 4]},
    {"header": {"nx": 2, "ny": 2, "lo1": 0, "la1": 10, "dx": 5, "dy": 5,
                "refTime": "2026-03-01T06:00:00.000Z", "forecastTime": 0,
                "parameterCategory": 2, "parameterNumber": 2},
     "data": [5, null, 7, 8]}
  ],
  [
    {"header": {"nx": 2, "ny": 2, "lo1": 0, "la1": 10, "dx": 5, "dy": 5,
                "refTime": "2026-03-01T06:00:00.000Z", "forecastTime": 3},
     "data": [1, 1, 1, 1]},
    {"header": {"nx": 2, "ny": 2, "lo1": 0, "la1": 10, "dx": 5, "dy": 5,
                "refTime": "2026-03-01T06:00:00.000Z", "forecastTime": 3},
     "data": [2, 2, 2, 2]}
  ]
]}`

func TestDecodeVectorPayload(t *testing.T) {
	p, err := DecodePayload(strings.NewReader(windPayload))
	if err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	pair, err := p.VectorPair()
	if err != nil {
		t.Fatalf("vector pair: %v", err)
	}

	// First entry is tagged v-then-u and must be reordered
	if pair.Before.U[0] != 5 || pair.Before.V[0] != 1 {
		t.Errorf("expected u/v swapped by parameter number, got u=%v v=%v", pair.Before.U[0], pair.Before.V[0])
	}
	if !math.IsNaN(pair.Before.U[1]) {
		t.Errorf("expected null to decode as NaN, got %v", pair.Before.U[1])
	}
	if pair.After.Header.ForecastTime != 3 {
		t.Errorf("expected after forecast hour 3, got %v", pair.After.Header.ForecastTime)
	}
	if _, err := p.ScalarPair(); err == nil {
		t.Error("expected error asking a vector payload for a scalar pair")
	}
}

func TestDecodeScalarPayload(t *testing.T) {
	doc := `{"forecasts": [
	  {"header": {"nx": 1, "ny": 2, "lo1": 0, "la1": 0, "dx": 1, "dy": 1,
	              "refTime": "2026-03-01T06:00:00Z", "forecastTime": 0}, "data": [100, 200]},
	  {"header": {"nx": 1, "ny": 2, "lo1": 0, "la1": 0, "dx": 1, "dy": 1,
	              "refTime": "2026-03-01T06:00:00Z", "forecastTime": 6}, "data": [300, 400]}
	]}`
	p, err := DecodePayload(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	pair, err := p.ScalarPair()
	if err != nil {
		t.Fatalf("scalar pair: %v", err)
	}
	if pair.After.Data[1] != 400 {
		t.Errorf("expected 400, got %v", pair.After.Data[1])
	}
}

func TestDecodePayloadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"one forecast", `{"forecasts": [{"header": {"nx": 1, "ny": 1, "dx": 1, "dy": 1}, "data": [1]}]}`},
		{"short data", `{"forecasts": [
			{"header": {"nx": 2, "ny": 2, "dx": 1, "dy": 1}, "data": [1]},
			{"header": {"nx": 2, "ny": 2, "dx": 1, "dy": 1}, "data": [1, 2, 3, 4]}]}`},
		{"mixed kinds", `{"forecasts": [
			{"header": {"nx": 1, "ny": 1, "dx": 1, "dy": 1}, "data": [1]},
			[{"header": {"nx": 1, "ny": 1, "dx": 1, "dy": 1}, "data": [1]},
			 {"header": {"nx": 1, "ny": 1, "dx": 1, "dy": 1}, "data": [1]}]]}`},
		{"three components", `{"forecasts": [
			[{"header": {"nx": 1, "ny": 1, "dx": 1, "dy": 1}, "data": [1]},
			 {"header": {"nx": 1, "ny": 1, "dx": 1, "dy": 1}, "data": [1]},
			 {"header": {"nx": 1, "ny": 1, "dx": 1, "dy": 1}, "data": [1]}],
			{"header": {"nx": 1, "ny": 1, "dx": 1, "dy": 1}, "data": [1]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePayload(strings.NewReader(tt.doc)); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

func TestEncodeVectorPayloadRoundtrip(t *testing.T) {
	before := uniformWind(globalHeader(30, 30, 0), 3, -1)
	before.U[4] = math.NaN()
	after := uniformWind(globalHeader(30, 30, 6), 4, 2)

	var buf bytes.Buffer
	if err := EncodeVectorPayload(&buf, Pair{Before: before, After: after}); err != nil {
		t.Fatalf("encoding: %v", err)
	}
	p, err := DecodePayload(&buf)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	pair, err := p.VectorPair()
	if err != nil {
		t.Fatalf("vector pair: %v", err)
	}
	if !math.IsNaN(pair.Before.U[4]) {
		t.Errorf("expected missing value to survive roundtrip, got %v", pair.Before.U[4])
	}
	if pair.After.V[0] != 2 {
		t.Errorf("expected v=2, got %v", pair.After.V[0])
	}
	if !pair.After.TargetTime().Equal(after.TargetTime()) {
		t.Errorf("expected target %s, got %s", after.TargetTime(), pair.After.TargetTime())
	}
}
