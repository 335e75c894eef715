package systems

import (
	"time"

	"github.com/paulmach/orb"
)

// Projector converts between geographic and screen coordinates.
// Implemented by camera.Camera.
type Projector interface {
	Project(p orb.Point) (x, y float64)
	Unproject(x, y float64) orb.Point
}

// Handle identifies a scheduled callback.
type Handle uint64

// Scheduler runs callbacks on the host's display loop. Frame callbacks run
// once on the next refresh; After callbacks run once the delay has passed.
type Scheduler interface {
	Frame(fn func(now time.Time)) Handle
	After(d time.Duration, fn func()) Handle
	Cancel(h Handle)
}

// Segment is one trail line drawn in a frame.
type Segment struct {
	X0, Y0, X1, Y1 float64
}

// Canvas receives particle trails.
type Canvas interface {
	// Fade multiplies the alpha of every pixel by keep, leaving colour intact.
	Fade(keep float64)
	// Stroke draws the segments with one style.
	Stroke(style BucketStyle, segs []Segment)
	Clear()
}

// PhaseRecorder receives timing phase boundaries. Implemented by
// telemetry.PerfCollector.
type PhaseRecorder interface {
	StartPhase(phase string)
}
