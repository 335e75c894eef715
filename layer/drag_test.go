package layer

import (
	"testing"
	"time"
)

func TestDragTrackerSettles(t *testing.T) {
	l := NewLoop(refTime)
	var starts, settles int
	d := NewDragTracker(l, 500*time.Millisecond, func() { starts++ }, func() { settles++ })

	d.SetDragging(true)
	d.SetDragging(true)
	if d.State() != DragDragging || starts != 1 {
		t.Fatalf("expected a single start, got state %s starts %d", d.State(), starts)
	}

	d.SetDragging(false)
	if d.State() != DragSettling {
		t.Fatalf("expected settling, got %s", d.State())
	}

	l.Advance(refTime.Add(499 * time.Millisecond))
	if settles != 0 {
		t.Fatal("expected no settle before the delay")
	}
	l.Advance(refTime.Add(500 * time.Millisecond))
	if d.State() != DragIdle || settles != 1 {
		t.Errorf("expected idle after one settle, got %s with %d", d.State(), settles)
	}
}

func TestDragTrackerRedragCancelsDebounce(t *testing.T) {
	l := NewLoop(refTime)
	var starts, settles int
	d := NewDragTracker(l, 500*time.Millisecond, func() { starts++ }, func() { settles++ })

	d.SetDragging(true)
	d.SetDragging(false)
	l.Advance(refTime.Add(300 * time.Millisecond))
	d.SetDragging(true)
	l.Advance(refTime.Add(2 * time.Second))

	if d.State() != DragDragging || settles != 0 {
		t.Errorf("expected to keep dragging without settling, got %s with %d", d.State(), settles)
	}
	if starts != 1 {
		t.Errorf("expected resuming a drag not to restart, got %d starts", starts)
	}

	d.SetDragging(false)
	l.Advance(refTime.Add(3 * time.Second))
	if settles != 1 {
		t.Errorf("expected one settle, got %d", settles)
	}
}

func TestDragTrackerReset(t *testing.T) {
	l := NewLoop(refTime)
	var settles int
	d := NewDragTracker(l, 100*time.Millisecond, nil, func() { settles++ })

	d.SetDragging(true)
	d.SetDragging(false)
	d.Reset()
	l.Advance(refTime.Add(time.Second))

	if d.State() != DragIdle || settles != 0 {
		t.Errorf("expected reset to drop the debounce, got %s with %d", d.State(), settles)
	}
	if timers, _ := l.Pending(); timers != 0 {
		t.Errorf("expected no pending timers, got %d", timers)
	}
}

func TestDragStateString(t *testing.T) {
	for s, want := range map[DragState]string{DragIdle: "idle", DragDragging: "dragging", DragSettling: "settling"} {
		if s.String() != want {
			t.Errorf("expected %s, got %s", want, s)
		}
	}
}
