package telemetry

// Collector accumulates per-frame particle counts and produces WindowStats.
type Collector struct {
	windowFrames int

	// Current window tracking
	windowStart int
	frames      int

	visible   []float64
	invisible int
	escaped   int
	respawned int
	rebuilds  int
}

// NewCollector creates a collector flushing every windowFrames frames.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{
		windowFrames: windowFrames,
		visible:      make([]float64, 0, windowFrames),
	}
}

// RecordFrame adds one frame's particle tallies.
func (c *Collector) RecordFrame(visible, invisible, escaped, respawned int) {
	c.frames++
	c.visible = append(c.visible, float64(visible))
	c.invisible += invisible
	c.escaped += escaped
	c.respawned += respawned
}

// RecordRebuild records a field rebuild.
func (c *Collector) RecordRebuild() {
	c.rebuilds++
}

// ShouldFlush returns true once the window holds windowFrames frames.
func (c *Collector) ShouldFlush() bool {
	return c.frames >= c.windowFrames
}

// Flush computes stats for the current window and starts a new one.
func (c *Collector) Flush(particles int) WindowStats {
	mean, p10, p50, p90 := ComputeDistribution(c.visible)

	var visibleTotal float64
	for _, v := range c.visible {
		visibleTotal += v
	}
	updates := visibleTotal + float64(c.invisible+c.escaped)
	var rate float64
	if updates > 0 {
		rate = visibleTotal / updates
	}

	stats := WindowStats{
		WindowStartFrame: c.windowStart,
		WindowEndFrame:   c.windowStart + c.frames,
		Frames:           c.frames,
		Particles:        particles,
		VisibleMean:      mean,
		VisibleP10:       p10,
		VisibleP50:       p50,
		VisibleP90:       p90,
		Invisible:        c.invisible,
		Escaped:          c.escaped,
		Respawned:        c.respawned,
		VisibleRate:      rate,
		Rebuilds:         c.rebuilds,
	}

	c.windowStart += c.frames
	c.frames = 0
	c.visible = c.visible[:0]
	c.invisible, c.escaped, c.respawned, c.rebuilds = 0, 0, 0, 0

	return stats
}
