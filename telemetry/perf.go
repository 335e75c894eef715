package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one pass of the display loop.
const (
	PhaseBlend       = "blend"
	PhaseInterpolate = "interpolate"
	PhaseEvolve      = "evolve"
	PhaseDraw        = "draw"
	PhaseRaster      = "raster"
	PhaseBlur        = "blur"
	PhasePresent     = "present"
)

// phases lists every phase in reporting order.
var phases = []string{
	PhaseBlend, PhaseInterpolate, PhaseEvolve, PhaseDraw,
	PhaseRaster, PhaseBlur, PhasePresent,
}

// Phases returns every phase name in reporting order.
func Phases() []string {
	return append([]string(nil), phases...)
}

// PerfSample holds timing data for a single loop pass.
type PerfSample struct {
	PassDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	passStart     time.Time
	phaseStart    time.Time
	lastPhase     string
	now           func() time.Time

	// Display refresh timing
	lastRefresh     time.Time
	refreshInterval time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of passes to average over (e.g., 60 for 1 second at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
		now:           time.Now,
	}
}

// SetClock overrides the collector's time source.
func (p *PerfCollector) SetClock(now func() time.Time) {
	p.now = now
}

// StartPass begins timing a new pass of the display loop.
func (p *PerfCollector) StartPass() {
	p.passStart = p.now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	// End previous phase if any
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndPass finishes timing the current pass and records the sample.
func (p *PerfCollector) EndPass() {
	now := p.now()
	// End final phase
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	sample := PerfSample{
		PassDuration: now.Sub(p.passStart),
		Phases:       p.currentPhases,
	}
	p.lastPhase = ""

	p.samples[p.writeIndex] = sample
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// RecordRefresh records the interval between display refreshes.
func (p *PerfCollector) RecordRefresh() {
	now := p.now()
	if !p.lastRefresh.IsZero() {
		p.refreshInterval = now.Sub(p.lastRefresh)
	}
	p.lastRefresh = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Pass timing
	AvgPassDuration time.Duration
	MinPassDuration time.Duration
	MaxPassDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total pass time
	PhasePct map[string]float64

	// Passes the loop could sustain per second
	PassesPerSecond float64

	// Display refresh timing
	RefreshInterval time.Duration
	FPS             float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	// Refresh timing is always available (independent of pass samples)
	var fps float64
	if p.refreshInterval > 0 {
		fps = float64(time.Second) / float64(p.refreshInterval)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:        make(map[string]time.Duration),
			PhasePct:        make(map[string]float64),
			RefreshInterval: p.refreshInterval,
			FPS:             fps,
		}
	}

	var totalPass time.Duration
	var minPass, maxPass time.Duration
	phaseSum := make(map[string]time.Duration)

	// Iterate over valid samples
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalPass += s.PassDuration

		if i == 0 || s.PassDuration < minPass {
			minPass = s.PassDuration
		}
		if s.PassDuration > maxPass {
			maxPass = s.PassDuration
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgPass := totalPass / time.Duration(p.sampleCount)

	// Calculate phase averages and percentages
	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgPass > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgPass) * 100
		}
	}

	var passesPerSec float64
	if avgPass > 0 {
		passesPerSec = float64(time.Second) / float64(avgPass)
	}

	return PerfStats{
		AvgPassDuration: avgPass,
		MinPassDuration: minPass,
		MaxPassDuration: maxPass,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		PassesPerSecond: passesPerSec,
		RefreshInterval: p.refreshInterval,
		FPS:             fps,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_pass_us", s.AvgPassDuration.Microseconds(),
		"min_pass_us", s.MinPassDuration.Microseconds(),
		"max_pass_us", s.MaxPassDuration.Microseconds(),
		"passes_per_sec", int(s.PassesPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_pass_us", s.AvgPassDuration.Microseconds()),
		slog.Int64("min_pass_us", s.MinPassDuration.Microseconds()),
		slog.Int64("max_pass_us", s.MaxPassDuration.Microseconds()),
		slog.Float64("passes_per_sec", s.PassesPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd      int     `csv:"window_end"`
	AvgPassUS      int64   `csv:"avg_pass_us"`
	MinPassUS      int64   `csv:"min_pass_us"`
	MaxPassUS      int64   `csv:"max_pass_us"`
	PassesPerSec   float64 `csv:"passes_per_sec"`
	FPS            float64 `csv:"fps"`
	BlendPct       float64 `csv:"blend_pct"`
	InterpolatePct float64 `csv:"interpolate_pct"`
	EvolvePct      float64 `csv:"evolve_pct"`
	DrawPct        float64 `csv:"draw_pct"`
	RasterPct      float64 `csv:"raster_pct"`
	BlurPct        float64 `csv:"blur_pct"`
	PresentPct     float64 `csv:"present_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgPassUS:      s.AvgPassDuration.Microseconds(),
		MinPassUS:      s.MinPassDuration.Microseconds(),
		MaxPassUS:      s.MaxPassDuration.Microseconds(),
		PassesPerSec:   s.PassesPerSecond,
		FPS:            s.FPS,
		BlendPct:       s.PhasePct[PhaseBlend],
		InterpolatePct: s.PhasePct[PhaseInterpolate],
		EvolvePct:      s.PhasePct[PhaseEvolve],
		DrawPct:        s.PhasePct[PhaseDraw],
		RasterPct:      s.PhasePct[PhaseRaster],
		BlurPct:        s.PhasePct[PhaseBlur],
		PresentPct:     s.PhasePct[PhasePresent],
	}
}
