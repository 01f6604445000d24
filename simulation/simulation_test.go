package simulation

import (
	"testing"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/pmove"
	"github.com/oomph-ac/pmove/world"
)

func testWorld() *world.World {
	w := world.New(nil)
	w.AddBrush(world.BoxBrush("floor", cube.Box(-1024, -1024, -16, 1024, 1024, 0)))
	w.AddBrush(world.BoxBrush("wall", cube.Box(300, -1024, 0, 332, 1024, 256)))
	w.Spawn(world.EntityOptions{
		Name:    "crate",
		Origin:  mgl32.Vec3{0, 150, world.DistEpsilon},
		Brushes: []*world.Brush{world.BoxBrush("crate", cube.Box(-16, -16, 0, 16, 16, 32))},
		Movable: true,
		Mass:    50,
	})
	return w
}

func testRun(t *testing.T, ticks int) *Runner {
	t.Helper()
	r := NewRunner(testWorld(), pmove.DefaultConfig(), 16, nil)
	a, err := r.Add("alice", mgl32.Vec3{0, 0, world.DistEpsilon}, pmove.Options{})
	if err != nil {
		t.Fatalf("add alice: %v", err)
	}
	b, err := r.Add("bob", mgl32.Vec3{0, 64, world.DistEpsilon}, pmove.Options{})
	if err != nil {
		t.Fatalf("add bob: %v", err)
	}

	for i := 0; i < ticks; i++ {
		switch {
		case i < 40:
			a.SetInput(pmove.Command{ForwardMove: 127}, mgl32.Vec3{})
			b.SetInput(pmove.Command{ForwardMove: 127}, mgl32.Vec3{0, 90, 0})
		case i < 45:
			a.SetInput(pmove.Command{ForwardMove: 127, UpMove: 127}, mgl32.Vec3{0, 20, 0})
			b.SetInput(pmove.Command{RightMove: -127}, mgl32.Vec3{0, 90, 0})
		default:
			a.SetInput(pmove.Command{}, mgl32.Vec3{0, 20, 0})
			b.SetInput(pmove.Command{ForwardMove: 127}, mgl32.Vec3{0, 180, 0})
		}
		r.Tick()
	}
	return r
}

func TestRunnerRecordsHistory(t *testing.T) {
	r := testRun(t, 60)
	if r.Ticks() != 60 {
		t.Fatalf("expected 60 ticks, got %d", r.Ticks())
	}
	a, ok := r.Character("alice")
	if !ok {
		t.Fatalf("expected alice to exist")
	}
	h := a.History()
	if len(h) != 60 {
		t.Fatalf("expected 60 frames, got %d", len(h))
	}
	if h[0].Checksum == h[10].Checksum {
		t.Fatalf("expected the checksum to follow the moving state")
	}
	if h[0].Command.ForwardMove != 127 || h[59].Command.ForwardMove != 0 {
		t.Fatalf("expected the commands to be recorded")
	}
	if a.Player.Origin().X() <= 0 {
		t.Fatalf("expected alice to have moved, got %v", a.Player.Origin())
	}

	mean, stdDev, max := a.SpeedStats()
	// Turning while jumping may carry her a little past walk speed.
	if max < 139 || max > 200 {
		t.Fatalf("expected alice to reach about walk speed, got %v", max)
	}
	if mean <= 0 || mean >= max || stdDev <= 0 {
		t.Fatalf("unexpected speed stats: mean %v stddev %v max %v", mean, stdDev, max)
	}
}

func TestRunnerPushedEntities(t *testing.T) {
	r := NewRunner(testWorld(), pmove.DefaultConfig(), 16, nil)
	if pushed := r.PushedEntities(); len(pushed) != 0 {
		t.Fatalf("expected nothing to be pushed yet, got %v", pushed)
	}

	// Bob walks straight into the crate.
	b, err := r.Add("bob", mgl32.Vec3{0, 64, world.DistEpsilon}, pmove.Options{})
	if err != nil {
		t.Fatalf("add bob: %v", err)
	}
	b.SetInput(pmove.Command{ForwardMove: 127}, mgl32.Vec3{0, 90, 0})
	for i := 0; i < 60; i++ {
		r.Tick()
	}
	if pushed := r.PushedEntities(); len(pushed) != 1 || pushed[0] != "crate" {
		t.Fatalf("expected the crate to be pushed, got %v", pushed)
	}
}

func TestRunnerRejectsBadCharacters(t *testing.T) {
	r := NewRunner(testWorld(), pmove.DefaultConfig(), 16, nil)
	if _, err := r.Add("alice", mgl32.Vec3{}, pmove.Options{}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := r.Add("alice", mgl32.Vec3{}, pmove.Options{}); err == nil {
		t.Fatalf("expected a duplicate name to fail")
	}
	r.Tick()
	if _, err := r.Add("bob", mgl32.Vec3{}, pmove.Options{}); err == nil {
		t.Fatalf("expected adding after the first tick to fail")
	}
}

func TestReplayMatches(t *testing.T) {
	rec := testRun(t, 80).Recording()
	m, err := Replay(rec)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if m != nil {
		t.Fatalf("expected the replay to match, got %+v", *m)
	}
	// The recorded world is left untouched and can be replayed again.
	if m, _ := Replay(rec); m != nil {
		t.Fatalf("expected a second replay to match, got %+v", *m)
	}
}

func TestReplayDetectsDivergence(t *testing.T) {
	rec := testRun(t, 50).Recording()
	rec.Characters[1].History[20].Command = pmove.Command{ForwardMove: -127}

	m, err := Replay(rec)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if m == nil || m.Character != "bob" || m.Tick != 20 {
		t.Fatalf("expected bob to diverge at tick 20, got %+v", m)
	}
}

func TestReplayRejectsShortHistory(t *testing.T) {
	rec := testRun(t, 10).Recording()
	rec.Characters[0].History = rec.Characters[0].History[:5]
	if _, err := Replay(rec); err == nil {
		t.Fatalf("expected a short history to fail")
	}
}

func TestVerifier(t *testing.T) {
	good := testRun(t, 40).Recording()
	bad := testRun(t, 40).Recording()
	bad.Characters[0].History[30].ViewAngles = mgl32.Vec3{0, 180, 0}
	short := testRun(t, 40).Recording()
	short.Ticks = 41

	v := NewVerifier(nil)
	mismatches, errs := v.Verify(good, bad, short, good)
	if len(mismatches) != 1 || mismatches[0].Character != "alice" || mismatches[0].Tick != 30 {
		t.Fatalf("expected alice to diverge at tick 30, got %+v", mismatches)
	}
	if len(errs) != 1 {
		t.Fatalf("expected one failed replay, got %v", errs)
	}
	if v.Jobs() != 4 || v.Mismatches() != 1 || v.Failures() != 1 {
		t.Fatalf("unexpected counters: jobs %d mismatches %d failures %d", v.Jobs(), v.Mismatches(), v.Failures())
	}
}
