package pmove_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/pmove"
	"github.com/oomph-ac/pmove/world"
)

var playerHandle = game.Handle{ID: 1000, Generation: 1}

func near(a, b, tolerance float32) bool {
	return math32.Abs(a-b) <= tolerance
}

func floorWorld(brushes ...*world.Brush) *world.World {
	w := world.New(nil)
	w.AddBrush(world.BoxBrush("floor", cube.Box(-1024, -1024, -16, 1024, 1024, 0)))
	for _, b := range brushes {
		w.AddBrush(b)
	}
	return w
}

func spawn(w *world.World, origin mgl32.Vec3, opts pmove.Options) *pmove.Player {
	opts.Config = pmove.DefaultConfig()
	opts.Self = playerHandle
	p := pmove.New(w, opts)
	p.SetOrigin(origin)
	return p
}

func run(p *pmove.Player, cmd pmove.Command, angles mgl32.Vec3, ticks int) pmove.MoveResult {
	var res pmove.MoveResult
	for i := 0; i < ticks; i++ {
		p.SetPlayerInput(cmd, angles)
		res = p.Evaluate(16)
	}
	return res
}

func TestWalkAcrossFloor(t *testing.T) {
	w := floorWorld()
	p := spawn(w, mgl32.Vec3{0, 0, world.DistEpsilon}, pmove.Options{})

	res := run(p, pmove.Command{ForwardMove: 127}, mgl32.Vec3{}, 100)
	if !res.Walking || res.Locomotion != pmove.LocomotionWalk {
		t.Fatalf("expected to walk, got %+v", res)
	}
	if !near(res.Velocity.Len(), 140, 0.1) {
		t.Fatalf("expected to walk at 140, got %v", res.Velocity)
	}
	if !near(res.Origin.Z(), world.DistEpsilon, 1e-3) || res.Origin.X() < 150 {
		t.Fatalf("expected to have walked along the floor, got %v", res.Origin)
	}
	if !p.GroundEntity().IsWorld() {
		t.Fatalf("expected to stand on the world, got %v", p.GroundEntity())
	}
	if w.Linked() != 1 {
		t.Fatalf("expected the player to be linked into the world")
	}

	res = run(p, pmove.Command{}, mgl32.Vec3{}, 60)
	if res.Velocity != (mgl32.Vec3{}) {
		t.Fatalf("expected to come to a stop, got %v", res.Velocity)
	}
}

func TestFallAndLand(t *testing.T) {
	w := floorWorld()
	var landings int
	p := spawn(w, mgl32.Vec3{0, 0, 200}, pmove.Options{OnCollide: func(tr game.Trace, _ mgl32.Vec3) {
		if tr.Contact.Normal.Z() > 0.7 {
			landings++
		}
	}})

	res := run(p, pmove.Command{}, mgl32.Vec3{}, 100)
	if !res.Walking || !near(res.Origin.Z(), world.DistEpsilon, 1e-3) {
		t.Fatalf("expected to have landed on the floor, got %+v", res)
	}
	if landings == 0 {
		t.Fatalf("expected the landing to be reported")
	}
}

func TestWalkIntoWall(t *testing.T) {
	w := floorWorld(world.BoxBrush("wall", cube.Box(100, -512, 0, 132, 512, 256)))
	p := spawn(w, mgl32.Vec3{0, 0, world.DistEpsilon}, pmove.Options{})

	res := run(p, pmove.Command{ForwardMove: 127}, mgl32.Vec3{}, 100)
	if res.Origin.X()+16 > 100 {
		t.Fatalf("walked into the wall: %v", res.Origin)
	}
	if !near(res.Origin.X(), 84, 0.1) {
		t.Fatalf("expected to stand against the wall, got %v", res.Origin)
	}
}

func TestClimbStairs(t *testing.T) {
	var brushes []*world.Brush
	for i := 0; i < 4; i++ {
		x := float32(64 + 32*i)
		brushes = append(brushes, world.BoxBrush("stair", cube.Box(x, -64, 0, 512, 64, float32(12*(i+1)))))
	}
	w := floorWorld(brushes...)
	p := spawn(w, mgl32.Vec3{0, 0, world.DistEpsilon}, pmove.Options{})

	stepped := false
	for i := 0; i < 120; i++ {
		p.SetPlayerInput(pmove.Command{ForwardMove: 127}, mgl32.Vec3{})
		p.Evaluate(16)
		stepped = stepped || p.HasSteppedUp()
	}
	if !stepped {
		t.Fatalf("expected to step up")
	}
	if !near(p.Origin().Z(), 48+world.DistEpsilon, 1e-2) || !p.OnGround() {
		t.Fatalf("expected to stand on the top stair, got %v", p.Origin())
	}
}

func TestStepTooHigh(t *testing.T) {
	w := floorWorld(world.BoxBrush("ledge", cube.Box(64, -64, 0, 512, 64, 24)))
	p := spawn(w, mgl32.Vec3{0, 0, world.DistEpsilon}, pmove.Options{})

	res := run(p, pmove.Command{ForwardMove: 127}, mgl32.Vec3{}, 60)
	if res.Origin.Z() > 1 || res.Origin.X() > 48 {
		t.Fatalf("must not step onto a ledge higher than the step height, got %v", res.Origin)
	}
}

func TestPushCrate(t *testing.T) {
	w := floorWorld()
	crate := w.Spawn(world.EntityOptions{
		Name:    "crate",
		Origin:  mgl32.Vec3{100, 0, world.DistEpsilon},
		Brushes: []*world.Brush{world.BoxBrush("crate", cube.Box(-16, -16, 0, 16, 16, 32))},
		Movable: true,
		Mass:    50,
	})
	p := spawn(w, mgl32.Vec3{0, 0, world.DistEpsilon}, pmove.Options{})

	run(p, pmove.Command{ForwardMove: 127}, mgl32.Vec3{}, 100)
	if crate.Origin().X() <= 100 {
		t.Fatalf("expected the crate to be pushed, got %v", crate.Origin())
	}
	if p.Origin().X()+16 > crate.Origin().X()-16 {
		t.Fatalf("expected the player to stay behind the crate, player %v crate %v", p.Origin(), crate.Origin())
	}
	if v := crate.Velocity(); v.X() <= 0 || !near(v.Y(), 0, 1e-3) {
		t.Fatalf("expected the push to set the crate moving forward, got %v", v)
	}
}

func TestClimbLadder(t *testing.T) {
	ladder := world.BoxBrush("ladder", cube.Box(64, -64, 0, 96, 64, 256))
	ladder.Surface = game.SurfaceLadder
	w := floorWorld(ladder)
	p := spawn(w, mgl32.Vec3{0, 0, world.DistEpsilon}, pmove.Options{})

	res := run(p, pmove.Command{ForwardMove: 127}, mgl32.Vec3{}, 80)
	if !res.Ladder || res.Locomotion != pmove.LocomotionLadder {
		t.Fatalf("expected to be on the ladder, got %+v", res)
	}
	if !near(res.Velocity.Z(), pmove.LadderSpeed, 0.5) {
		t.Fatalf("expected to climb at ladder speed, got %v", res.Velocity)
	}
	if res.Origin.Z() < 20 || res.Origin.X()+16 > 64 {
		t.Fatalf("expected to have climbed up in front of the ladder, got %v", res.Origin)
	}
}

func TestPlainWallIsNoLadder(t *testing.T) {
	w := floorWorld(world.BoxBrush("wall", cube.Box(64, -64, 0, 96, 64, 256)))
	p := spawn(w, mgl32.Vec3{0, 0, world.DistEpsilon}, pmove.Options{})

	res := run(p, pmove.Command{ForwardMove: 127}, mgl32.Vec3{}, 80)
	if res.Ladder || res.Origin.Z() > 1 {
		t.Fatalf("must not climb a wall without a ladder surface, got %+v", res)
	}
}

func TestWaterJumpOntoLedge(t *testing.T) {
	w := floorWorld(
		world.WaterBrush("pool", cube.Box(-256, -256, 0, 64, 256, 50)),
		world.BoxBrush("ledge", cube.Box(64, -256, 0, 512, 256, 16)),
	)
	p := spawn(w, mgl32.Vec3{0, 0, world.DistEpsilon}, pmove.Options{})

	jumped := false
	for i := 0; i < 100 && !jumped; i++ {
		p.SetPlayerInput(pmove.Command{ForwardMove: 127}, mgl32.Vec3{})
		res := p.Evaluate(16)
		jumped = res.Flags.Has(pmove.FlagTimeWaterJump)
	}
	if !jumped {
		t.Fatalf("expected to jump out of the water, stuck at %v", p.Origin())
	}

	res := run(p, pmove.Command{ForwardMove: 127}, mgl32.Vec3{}, 60)
	if res.Origin.X() <= 64 || !near(res.Origin.Z(), 16+world.DistEpsilon, 0.1) {
		t.Fatalf("expected to stand on the ledge, got %v", res.Origin)
	}
	if res.Flags.Has(pmove.FlagTimeWaterJump) || res.WaterLevel != pmove.WaterLevelNone {
		t.Fatalf("expected to be out of the water, got %+v", res)
	}
}

func TestStaticPillarBlocks(t *testing.T) {
	w := floorWorld()
	w.Spawn(world.EntityOptions{
		Name:    "pillar",
		Origin:  mgl32.Vec3{100, 0, 0},
		Brushes: []*world.Brush{world.BoxBrush("pillar", cube.Box(-16, -16, 0, 16, 16, 128))},
	})
	p := spawn(w, mgl32.Vec3{0, 0, world.DistEpsilon}, pmove.Options{})

	res := run(p, pmove.Command{ForwardMove: 127}, mgl32.Vec3{}, 100)
	if !near(res.Origin.X(), 68, 0.1) {
		t.Fatalf("expected to stop in front of the pillar, got %v", res.Origin)
	}
}

func TestMantleOntoBox(t *testing.T) {
	w := floorWorld(world.BoxBrush("box", cube.Box(20, -64, 0, 120, 64, 60)))
	var phases []pmove.MantlePhase
	p := spawn(w, mgl32.Vec3{0, 0, world.DistEpsilon}, pmove.Options{OnMantle: func(_, to pmove.MantlePhase) {
		phases = append(phases, to)
	}})

	// Holding jump jumps first and grabs the ledge once it was held long enough.
	run(p, pmove.Command{UpMove: 127}, mgl32.Vec3{}, 10)
	if !p.IsMantling() {
		t.Fatalf("expected to be mantling, phase %v at %v", p.MantlePhase(), p.Origin())
	}
	if len(phases) == 0 || phases[0] != pmove.MantleHanging {
		t.Fatalf("expected to hang off the ledge first, got %v", phases)
	}

	res := run(p, pmove.Command{UpMove: 127}, mgl32.Vec3{}, 250)
	if p.MantlePhase() != pmove.MantleNotMantling {
		t.Fatalf("expected the mantle to be over, got %v", p.MantlePhase())
	}
	for i := 1; i < len(phases)-1; i++ {
		if phases[i] <= phases[i-1] {
			t.Fatalf("phases went backwards: %v", phases)
		}
	}
	// The push ends just above the top, within contact distance of it.
	if !res.Walking || res.Origin.Z() < 60 || res.Origin.Z() > 60+pmove.ContactEpsilon {
		t.Fatalf("expected to stand on the box, got %+v", res)
	}
	if !near(res.Origin.X(), 20, 2) {
		t.Fatalf("expected to stand on the edge of the box, got %v", res.Origin)
	}
}

func TestSwimInPool(t *testing.T) {
	w := floorWorld(world.WaterBrush("pool", cube.Box(-256, -256, 0, 256, 256, 128)))
	p := spawn(w, mgl32.Vec3{0, 0, 32}, pmove.Options{})

	res := run(p, pmove.Command{}, mgl32.Vec3{}, 1)
	if res.Locomotion != pmove.LocomotionSwim || res.WaterLevel != pmove.WaterLevelHead {
		t.Fatalf("expected to swim under water, got %+v", res)
	}
	res = run(p, pmove.Command{UpMove: 127}, mgl32.Vec3{}, 60)
	if res.Origin.Z() <= 32 {
		t.Fatalf("expected to swim up, got %v", res.Origin)
	}
}

func TestCharactersCollide(t *testing.T) {
	w := floorWorld()
	other := pmove.New(w, pmove.Options{Config: pmove.DefaultConfig(), Self: game.Handle{ID: 1001, Generation: 1}})
	other.SetOrigin(mgl32.Vec3{100, 0, world.DistEpsilon})
	other.Evaluate(16)

	p := spawn(w, mgl32.Vec3{0, 0, world.DistEpsilon}, pmove.Options{})
	res := run(p, pmove.Command{ForwardMove: 127}, mgl32.Vec3{}, 100)
	if res.Origin.X()+16 > 84 {
		t.Fatalf("walked through another character: %v", res.Origin)
	}
	if w.Linked() != 2 {
		t.Fatalf("expected both characters to be linked, got %d", w.Linked())
	}
}

func TestCloneReplaysIdentically(t *testing.T) {
	w := floorWorld(world.BoxBrush("wall", cube.Box(100, -512, 0, 132, 512, 256)))
	a := spawn(w, mgl32.Vec3{0, 0, world.DistEpsilon}, pmove.Options{})
	clone := w.Clone()
	b := spawn(clone, mgl32.Vec3{0, 0, world.DistEpsilon}, pmove.Options{})

	angles := mgl32.Vec3{0, 30, 0}
	for i := 0; i < 80; i++ {
		a.SetPlayerInput(pmove.Command{ForwardMove: 127, RightMove: 50}, angles)
		b.SetPlayerInput(pmove.Command{ForwardMove: 127, RightMove: 50}, angles)
		if ra, rb := a.Evaluate(16), b.Evaluate(16); ra != rb {
			t.Fatalf("tick %d diverged: %+v != %+v", i, ra, rb)
		}
	}
}
