// Package components defines ECS components for wind particles.
package components

// Position represents a particle's current screen position in pixels.
type Position struct {
	X, Y float64
}

// Target is the position the particle reaches at the end of the frame.
// It only differs from Position while a visible segment is pending.
type Target struct {
	X, Y float64
}

// Age counts frames since the particle was last seeded.
type Age struct {
	Frames int
}
