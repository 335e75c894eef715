package layer

import (
	"time"

	"github.com/pthm-cable/windy/systems"
)

// DragState is the map drag coordination state.
type DragState int

const (
	DragIdle DragState = iota
	DragDragging
	DragSettling
)

func (s DragState) String() string {
	switch s {
	case DragDragging:
		return "dragging"
	case DragSettling:
		return "settling"
	default:
		return "idle"
	}
}

// DragTracker turns the host's dragging flag into start and settled events.
// Releasing the map starts a debounce; dragging again before it expires
// cancels it.
type DragTracker struct {
	sched systems.Scheduler
	delay time.Duration
	state DragState
	timer systems.Handle

	onStart   func()
	onSettled func()
}

// NewDragTracker creates an idle tracker. onStart runs on leaving idle and
// onSettled once the map has been still for delay.
func NewDragTracker(sched systems.Scheduler, delay time.Duration, onStart, onSettled func()) *DragTracker {
	return &DragTracker{sched: sched, delay: delay, onStart: onStart, onSettled: onSettled}
}

// State returns the current state.
func (d *DragTracker) State() DragState {
	return d.state
}

// SetDragging reports whether a pointer drag or zoom gesture is in progress.
func (d *DragTracker) SetDragging(dragging bool) {
	switch {
	case dragging && d.state == DragIdle:
		d.state = DragDragging
		if d.onStart != nil {
			d.onStart()
		}
	case dragging && d.state == DragSettling:
		d.sched.Cancel(d.timer)
		d.timer = 0
		d.state = DragDragging
	case !dragging && d.state == DragDragging:
		d.state = DragSettling
		d.timer = d.sched.After(d.delay, d.settle)
	}
}

func (d *DragTracker) settle() {
	d.timer = 0
	d.state = DragIdle
	if d.onSettled != nil {
		d.onSettled()
	}
}

// Reset cancels a pending debounce and returns to idle without firing.
func (d *DragTracker) Reset() {
	if d.timer != 0 {
		d.sched.Cancel(d.timer)
		d.timer = 0
	}
	d.state = DragIdle
}
