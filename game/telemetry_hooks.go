package game

import (
	"log/slog"
)

// observeWind feeds the collector with the wind animator's latest frame.
func (g *Game) observeWind() {
	anim := g.wind.Animator()
	if anim != g.anim {
		if anim != nil {
			g.collector.RecordRebuild()
		}
		g.anim = anim
		g.animFrame = 0
	}
	if anim == nil {
		return
	}
	if n := anim.Frames(); n != g.animFrame {
		g.animFrame = n
		c := anim.LastFrame()
		g.collector.RecordFrame(c.Visible, c.Invisible, c.Escaped, c.Respawned)
	}
}

// flushTelemetry writes the stats window once it is full.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush() {
		return
	}

	particles := 0
	if g.anim != nil {
		particles = g.anim.ParticleCount()
	}
	stats := g.collector.Flush(particles)
	perfStats := g.perf.Stats()

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.output.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
