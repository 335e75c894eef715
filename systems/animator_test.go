package systems

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/windy/camera"
	"github.com/pthm-cable/windy/forecast"
)

func newTestAnimator(cfg AnimatorConfig) (*Animator, *fakeScheduler, *fakeCanvas) {
	sched := newFakeScheduler()
	canvas := newFakeCanvas()
	cam := camera.New(camera.Equirectangular, 360, 180)
	a := NewAnimator(cfg, AnimatorParams{
		Pair:      uniformPair(10, 0),
		At:        refTime.Add(90 * time.Minute),
		Projector: cam,
		Canvas:    canvas,
		Scheduler: sched,
		Buckets:   testBuckets(),
	})
	return a, sched, canvas
}

var square = camera.Bounds{Width: 100, Height: 100}

func TestEscapedParticleAgesOut(t *testing.T) {
	a, _, canvas := newTestAnimator(testAnimatorConfig())
	field := nullField()
	a.Run(field, square)

	if a.ParticleCount() != 10 {
		t.Fatalf("expected 10 particles, got %d", a.ParticleCount())
	}

	for frame := 0; frame < 3; frame++ {
		a.Frame(refTime.Add(time.Duration(frame) * 16 * time.Millisecond))
		for i, p := range a.Particles() {
			if p.Age != a.cfg.MaxAge+1 {
				t.Fatalf("frame %d: particle %d age %d, want %d", frame, i, p.Age, a.cfg.MaxAge+1)
			}
		}
	}
	if len(canvas.strokes) != 0 {
		t.Errorf("expected nothing drawn for escaped particles, got %d strokes", len(canvas.strokes))
	}
	// Seeded once at start, then respawned on frames 2 and 3
	if field.randomized != 30 {
		t.Errorf("expected 30 randomize calls, got %d", field.randomized)
	}
}

func TestParticlesAdvect(t *testing.T) {
	a, _, canvas := newTestAnimator(testAnimatorConfig())
	a.Run(eastField(100, 1, 12), square)

	before := a.Particles()
	a.Frame(refTime)
	after := a.Particles()

	if len(after) != len(before) {
		t.Fatalf("particle count changed: %d -> %d", len(before), len(after))
	}
	for i := range after {
		if after[i].X != before[i].X+1 || after[i].Y != before[i].Y {
			t.Errorf("particle %d moved from (%v,%v) to (%v,%v)", i, before[i].X, before[i].Y, after[i].X, after[i].Y)
		}
		if after[i].Age != before[i].Age+1 {
			t.Errorf("particle %d age %d -> %d", i, before[i].Age, after[i].Age)
		}
	}

	// Speed 12 of max 30 over 10 buckets lands in bucket 3
	if len(canvas.styles) != 1 || canvas.styles[0] != a.p.Buckets.Styles[3] {
		t.Fatalf("expected a single stroke in bucket 3, got %+v", canvas.styles)
	}
	if canvas.strokes[0] != len(after) {
		t.Errorf("expected %d segments, got %d", len(after), canvas.strokes[0])
	}
}

func TestInvisibleAdvection(t *testing.T) {
	cfg := testAnimatorConfig()
	cfg.Density = 0.01 // one particle
	a, _, canvas := newTestAnimator(cfg)
	field := eastField(50, 1, 5)
	field.seedX, field.seedY = 49.4, 10
	a.Run(field, square)

	a.Frame(refTime)
	p := a.Particles()[0]
	if math.Abs(p.X-50.4) > 1e-12 {
		t.Errorf("expected particle to keep moving to 50.4, got %v", p.X)
	}
	if len(canvas.strokes) != 0 {
		t.Error("expected no visible segment when the destination leaves the field")
	}
}

// A particle lives MaxAge+1 frames: it respawns once its age exceeds MaxAge.
func TestRespawnAfterMaxAge(t *testing.T) {
	cfg := testAnimatorConfig()
	cfg.MaxAge = 1
	cfg.Density = 0.01
	a, _, _ := newTestAnimator(cfg)
	field := eastField(100, 1, 5)
	a.Run(field, square)

	a.Frame(refTime)
	if p := a.Particles()[0]; p.Age != 1 || p.X != 11 {
		t.Fatalf("after first frame expected age 1 at x=11, got %+v", p)
	}
	a.Frame(refTime.Add(16 * time.Millisecond))
	if field.randomized != 1 {
		t.Errorf("expected no respawn at MaxAge, got %d randomize calls", field.randomized)
	}
	if p := a.Particles()[0]; p.Age != 2 || p.X != 12 {
		t.Fatalf("after second frame expected age 2 at x=12, got %+v", p)
	}
	a.Frame(refTime.Add(32 * time.Millisecond))
	if field.randomized != 2 {
		t.Errorf("expected a respawn past MaxAge, got %d randomize calls", field.randomized)
	}
	if p := a.Particles()[0]; p.Age != 1 || p.X != 11 {
		t.Errorf("expected respawned particle advanced once, got %+v", p)
	}
}

func TestFadeScaledByElapsed(t *testing.T) {
	a, _, canvas := newTestAnimator(testAnimatorConfig())
	a.Run(eastField(100, 1, 5), square)

	a.Frame(refTime)
	a.Frame(refTime.Add(32 * time.Millisecond))
	a.Frame(refTime.Add(40 * time.Millisecond))

	want := []float64{0.97, 0.97 * 0.97, math.Sqrt(0.97)}
	for i, w := range want {
		if math.Abs(canvas.fades[i]-w) > 1e-12 {
			t.Errorf("fade %d: expected %v, got %v", i, w, canvas.fades[i])
		}
	}
}

func TestFadeFactor(t *testing.T) {
	if got := FadeFactor(0.9, 0, time.Second); got != 1 {
		t.Errorf("expected no fade for zero elapsed, got %v", got)
	}
	if got := FadeFactor(0.9, 3*time.Second, time.Second); math.Abs(got-0.729) > 1e-12 {
		t.Errorf("expected 0.729, got %v", got)
	}
}

func TestStartBuildsAndRuns(t *testing.T) {
	a, sched, _ := newTestAnimator(testAnimatorConfig())
	if a.State() != StateStopped {
		t.Fatalf("expected stopped, got %s", a.State())
	}

	bounds := camera.Bounds{Width: 360, Height: 180}
	if err := a.Start(bounds, 360, 180, camera.New(camera.Equirectangular, 360, 180).Extent()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if a.State() != StateRunning {
		t.Fatalf("expected running after a one batch build, got %s", a.State())
	}
	if a.ParticleCount() != 36 {
		t.Errorf("expected 36 particles, got %d", a.ParticleCount())
	}
	if len(sched.frames) != 1 {
		t.Fatalf("expected one frame scheduled, got %d", len(sched.frames))
	}

	// Each frame callback reschedules itself
	sched.tick(refTime)
	sched.tick(refTime.Add(16 * time.Millisecond))
	if a.Frames() != 2 || len(sched.frames) != 1 {
		t.Errorf("expected 2 frames and one pending, got %d and %d", a.Frames(), len(sched.frames))
	}

	if err := a.Start(bounds, 360, 180, camera.New(camera.Equirectangular, 360, 180).Extent()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestStartChunked(t *testing.T) {
	cfg := testAnimatorConfig()
	cfg.Field.BatchBudget = 0
	a, sched, _ := newTestAnimator(cfg)
	a.Builder().SetClock(steppingClock(time.Millisecond))

	cam := camera.New(camera.Equirectangular, 360, 180)
	if err := a.Start(camera.Bounds{Width: 8, Height: 8}, 360, 180, cam.Extent()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if a.State() != StateBuilding {
		t.Fatalf("expected building, got %s", a.State())
	}
	for i := 0; i < 3; i++ {
		if len(sched.timers) != 1 {
			t.Fatalf("batch %d: expected one pending batch, got %d", i, len(sched.timers))
		}
		for _, tm := range sched.timers {
			if tm.d != cfg.BatchDelay {
				t.Errorf("expected batch delay %v, got %v", cfg.BatchDelay, tm.d)
			}
		}
		sched.fire()
	}
	if a.State() != StateRunning || len(sched.timers) != 0 {
		t.Errorf("expected running with no pending batches, got %s and %d", a.State(), len(sched.timers))
	}
}

func TestStopCancelsAndReleases(t *testing.T) {
	cfg := testAnimatorConfig()
	cfg.Field.BatchBudget = 0
	a, sched, _ := newTestAnimator(cfg)
	a.Builder().SetClock(steppingClock(time.Millisecond))

	cam := camera.New(camera.Equirectangular, 360, 180)
	if err := a.Start(camera.Bounds{Width: 8, Height: 8}, 360, 180, cam.Extent()); err != nil {
		t.Fatalf("start: %v", err)
	}
	a.Stop()
	if len(sched.timers) != 0 {
		t.Error("expected pending batch to be cancelled")
	}
	if a.State() != StateStopped {
		t.Errorf("expected stopped, got %s", a.State())
	}

	field := eastField(100, 1, 5)
	a.Run(field, square)
	a.Stop()
	if field.released != 1 || len(sched.frames) != 0 || a.Field() != nil {
		t.Errorf("expected field released and frames cancelled, got %d releases, %d frames", field.released, len(sched.frames))
	}
	if a.Particles() != nil {
		t.Error("expected particles discarded")
	}

	// Idempotent
	a.Stop()
	if field.released != 1 {
		t.Errorf("expected a single release, got %d", field.released)
	}
}

func TestPauseKeepsSchedule(t *testing.T) {
	a, sched, canvas := newTestAnimator(testAnimatorConfig())
	a.Run(eastField(100, 1, 5), square)
	a.Pause()
	if a.State() != StatePaused {
		t.Fatalf("expected paused, got %s", a.State())
	}

	before := a.Particles()
	for i := 0; i < 3; i++ {
		sched.tick(refTime.Add(time.Duration(i) * 16 * time.Millisecond))
	}
	if len(sched.frames) != 1 {
		t.Fatalf("expected the frame loop to stay scheduled, got %d", len(sched.frames))
	}
	if len(canvas.fades) != 0 || a.Particles()[0] != before[0] {
		t.Error("expected no drawing or advection while paused")
	}

	a.Resume()
	sched.tick(refTime.Add(time.Second))
	if a.Frames() != 1 {
		t.Errorf("expected one frame after resume, got %d", a.Frames())
	}
	// Resuming does not fade by the whole pause duration
	if canvas.fades[0] != 0.97 {
		t.Errorf("expected nominal fade after resume, got %v", canvas.fades[0])
	}
}

func TestStartOutOfBounds(t *testing.T) {
	a, _, _ := newTestAnimator(testAnimatorConfig())
	a.p.At = refTime.Add(7 * time.Hour)

	err := a.Start(square, 100, 100, camera.New(camera.Equirectangular, 100, 100).Extent())
	if !errors.Is(err, forecast.ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
	if a.State() != StateStopped {
		t.Errorf("expected stopped after a failed start, got %s", a.State())
	}
}

func TestParticleCountTouch(t *testing.T) {
	cfg := testAnimatorConfig()
	cfg.Density = 4
	a, _, _ := newTestAnimator(cfg)
	if got := a.particleCount(camera.Bounds{Width: 200, Height: 10}); got != 800 {
		t.Errorf("expected 800 particles, got %d", got)
	}

	cfg.Touch = true
	cfg.TouchReduction = 0.75
	a, _, _ = newTestAnimator(cfg)
	if got := a.particleCount(camera.Bounds{Width: 200, Height: 10}); got != 600 {
		t.Errorf("expected 600 particles on touch agents, got %d", got)
	}
}

func TestStateStrings(t *testing.T) {
	for s, want := range map[State]string{
		StateStopped: "stopped", StateBuilding: "building", StateRunning: "running", StatePaused: "paused",
	} {
		if s.String() != want {
			t.Errorf("expected %s, got %s", want, s)
		}
	}
}
