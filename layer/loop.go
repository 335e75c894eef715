// Package layer drives the wind and intensity layers from a single-threaded
// display loop.
package layer

import (
	"sort"
	"time"

	"github.com/pthm-cable/windy/systems"
)

type timerEntry struct {
	h   systems.Handle
	due time.Time
	seq uint64
	fn  func()
}

type frameEntry struct {
	h  systems.Handle
	fn func(now time.Time)
}

// Loop is a cooperative scheduler advanced once per display refresh. It
// implements systems.Scheduler. Callbacks registered while the loop is
// advancing run on a later Advance.
type Loop struct {
	now    time.Time
	next   systems.Handle
	seq    uint64
	timers []timerEntry
	frames []frameEntry
	dead   map[systems.Handle]struct{}
}

// NewLoop creates a loop whose clock starts at start.
func NewLoop(start time.Time) *Loop {
	return &Loop{now: start, dead: make(map[systems.Handle]struct{})}
}

// Now returns the time of the last Advance.
func (l *Loop) Now() time.Time {
	return l.now
}

// Frame schedules fn for the next Advance.
func (l *Loop) Frame(fn func(now time.Time)) systems.Handle {
	l.next++
	l.frames = append(l.frames, frameEntry{h: l.next, fn: fn})
	return l.next
}

// After schedules fn once d has elapsed on the loop clock.
func (l *Loop) After(d time.Duration, fn func()) systems.Handle {
	l.next++
	l.seq++
	l.timers = append(l.timers, timerEntry{h: l.next, due: l.now.Add(d), seq: l.seq, fn: fn})
	return l.next
}

// Cancel drops a pending callback. Unknown or fired handles are ignored.
func (l *Loop) Cancel(h systems.Handle) {
	for i, t := range l.timers {
		if t.h == h {
			l.timers = append(l.timers[:i], l.timers[i+1:]...)
			return
		}
	}
	for i, f := range l.frames {
		if f.h == h {
			l.frames = append(l.frames[:i], l.frames[i+1:]...)
			return
		}
	}
	// Possibly cancelled from inside a callback of the running batch
	l.dead[h] = struct{}{}
}

// Advance moves the clock to now, runs due timers in due order and then the
// frame callbacks registered before this call.
func (l *Loop) Advance(now time.Time) {
	if now.After(l.now) {
		l.now = now
	}
	frames := l.frames
	l.frames = nil

	var due, later []timerEntry
	for _, t := range l.timers {
		if !t.due.After(l.now) {
			due = append(due, t)
		} else {
			later = append(later, t)
		}
	}
	l.timers = later
	sort.Slice(due, func(i, j int) bool {
		if !due[i].due.Equal(due[j].due) {
			return due[i].due.Before(due[j].due)
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		if l.cancelled(t.h) {
			continue
		}
		t.fn()
	}

	for _, f := range frames {
		if l.cancelled(f.h) {
			continue
		}
		f.fn(l.now)
	}
	clear(l.dead)
}

func (l *Loop) cancelled(h systems.Handle) bool {
	_, ok := l.dead[h]
	return ok
}

// Pending returns the number of scheduled timers and frame callbacks.
func (l *Loop) Pending() (timers, frames int) {
	return len(l.timers), len(l.frames)
}
