package layer

import (
	"testing"
	"time"
)

func TestLoopTimersFireInDueOrder(t *testing.T) {
	l := NewLoop(refTime)
	var order []string

	l.After(30*time.Millisecond, func() { order = append(order, "c") })
	l.After(10*time.Millisecond, func() { order = append(order, "a") })
	l.After(10*time.Millisecond, func() { order = append(order, "b") })
	l.After(time.Second, func() { order = append(order, "late") })

	l.Advance(refTime.Add(50 * time.Millisecond))

	if got := len(order); got != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("expected [a b c], got %v", order)
	}
	if timers, _ := l.Pending(); timers != 1 {
		t.Errorf("expected the late timer pending, got %d", timers)
	}
}

func TestLoopFrameRunsOnce(t *testing.T) {
	l := NewLoop(refTime)
	var runs int
	var at time.Time
	l.Frame(func(now time.Time) {
		runs++
		at = now
	})

	next := refTime.Add(16 * time.Millisecond)
	l.Advance(next)
	l.Advance(next.Add(16 * time.Millisecond))

	if runs != 1 {
		t.Errorf("expected one run, got %d", runs)
	}
	if !at.Equal(next) {
		t.Errorf("expected callback time %v, got %v", next, at)
	}
}

func TestLoopCallbacksScheduledDuringAdvanceWait(t *testing.T) {
	l := NewLoop(refTime)
	var frames, timers int

	var frame func(time.Time)
	frame = func(time.Time) {
		frames++
		l.Frame(frame)
	}
	l.Frame(frame)
	l.After(0, func() {
		timers++
		l.After(0, func() { timers++ })
	})

	l.Advance(refTime.Add(time.Millisecond))
	if frames != 1 || timers != 1 {
		t.Fatalf("expected one frame and one timer, got %d and %d", frames, timers)
	}

	l.Advance(refTime.Add(2 * time.Millisecond))
	if frames != 2 || timers != 2 {
		t.Errorf("expected rescheduled callbacks on the next pass, got %d and %d", frames, timers)
	}
}

func TestLoopCancel(t *testing.T) {
	l := NewLoop(refTime)
	var fired bool

	h := l.After(time.Millisecond, func() { fired = true })
	f := l.Frame(func(time.Time) { fired = true })
	l.Cancel(h)
	l.Cancel(f)
	l.Cancel(9999)

	l.Advance(refTime.Add(time.Second))
	if fired {
		t.Error("expected cancelled callbacks not to run")
	}
	if timers, frames := l.Pending(); timers != 0 || frames != 0 {
		t.Errorf("expected nothing pending, got %d timers %d frames", timers, frames)
	}
}

func TestLoopCancelFromCallback(t *testing.T) {
	l := NewLoop(refTime)
	var second bool

	var h2 = l.After(2*time.Millisecond, func() { second = true })
	l.After(time.Millisecond, func() { l.Cancel(h2) })

	l.Advance(refTime.Add(10 * time.Millisecond))
	if second {
		t.Error("expected timer cancelled by an earlier timer not to run")
	}
}

func TestLoopClockMonotonic(t *testing.T) {
	l := NewLoop(refTime)
	l.Advance(refTime.Add(time.Second))
	l.Advance(refTime)
	if !l.Now().Equal(refTime.Add(time.Second)) {
		t.Errorf("expected clock not to run backwards, got %v", l.Now())
	}
}
