package telemetry

import (
	"log/slog"
	"sort"
)

// WindowStats holds aggregated particle statistics for a window of frames.
type WindowStats struct {
	WindowStartFrame int `csv:"-"`
	WindowEndFrame   int `csv:"window_end"`
	Frames           int `csv:"frames"`

	// Pool size at window end
	Particles int `csv:"particles"`

	// Per-frame visible segment counts
	VisibleMean float64 `csv:"visible_mean"`
	VisibleP10  float64 `csv:"visible_p10"`
	VisibleP50  float64 `csv:"visible_p50"`
	VisibleP90  float64 `csv:"visible_p90"`

	// Totals over the window
	Invisible int `csv:"invisible"`
	Escaped   int `csv:"escaped"`
	Respawned int `csv:"respawned"`

	// Share of particle updates that drew a segment
	VisibleRate float64 `csv:"visible_rate"`

	// Field rebuilds during the window
	Rebuilds int `csv:"rebuilds"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean and percentiles of values.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartFrame),
		slog.Int("window_end", s.WindowEndFrame),
		slog.Int("frames", s.Frames),
		slog.Int("particles", s.Particles),
		slog.Float64("visible_mean", s.VisibleMean),
		slog.Float64("visible_p10", s.VisibleP10),
		slog.Float64("visible_p50", s.VisibleP50),
		slog.Float64("visible_p90", s.VisibleP90),
		slog.Int("invisible", s.Invisible),
		slog.Int("escaped", s.Escaped),
		slog.Int("respawned", s.Respawned),
		slog.Float64("visible_rate", s.VisibleRate),
		slog.Int("rebuilds", s.Rebuilds),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
