package world

import (
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
)

func approxEqual(a, b float32) bool {
	return math32.Abs(a-b) < 1e-3
}

func floorWorld() *World {
	w := New(nil)
	w.AddBrush(BoxBrush("floor", cube.Box(-512, -512, -16, 512, 512, 0)))
	return w
}

func playerBox() cube.BBox {
	return game.PlayerBounds(32, 74)
}

func TestPointTraceStopsInFrontOfFloor(t *testing.T) {
	w := floorWorld()
	tr := w.Trace(game.PointQuery(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{0, 0, -10}, game.MaskSolid, game.NoEntity))
	if !tr.Blocked() {
		t.Fatalf("expected the trace to hit the floor")
	}
	if !approxEqual(tr.EndPos.Z(), DistEpsilon) {
		t.Fatalf("expected to stop %v above the floor, got %v", DistEpsilon, tr.EndPos.Z())
	}
	if tr.Contact.Normal != (mgl32.Vec3{0, 0, 1}) {
		t.Fatalf("expected an up facing normal, got %v", tr.Contact.Normal)
	}
	if !tr.Contact.Entity.IsWorld() {
		t.Fatalf("expected the static world to be hit, got %v", tr.Contact.Entity)
	}
}

func TestBoxTraceAgainstWall(t *testing.T) {
	w := floorWorld()
	w.AddBrush(BoxBrush("wall", cube.Box(100, -512, 0, 116, 512, 200)))

	tr := w.Trace(game.TraceQuery{
		Shape: playerBox(),
		Axis:  mgl32.Ident3(),
		Start: mgl32.Vec3{0, 0, 1},
		End:   mgl32.Vec3{200, 0, 1},
		Mask:  game.MaskPlayerSolid,
	})
	if !approxEqual(tr.EndPos.X(), 84-DistEpsilon) {
		t.Fatalf("expected to stop in front of the wall, got %v", tr.EndPos)
	}
	if tr.Contact.Normal != (mgl32.Vec3{-1, 0, 0}) {
		t.Fatalf("expected the wall normal, got %v", tr.Contact.Normal)
	}
	if tr.StartSolid {
		t.Fatalf("trace did not start in solid")
	}
}

func TestTraceStartingInSolid(t *testing.T) {
	w := floorWorld()
	tr := w.Trace(game.TraceQuery{
		Shape: playerBox(),
		Start: mgl32.Vec3{0, 0, -4},
		End:   mgl32.Vec3{50, 0, -4},
		Mask:  game.MaskPlayerSolid,
	})
	if !tr.StartSolid || tr.Fraction != 0 {
		t.Fatalf("expected an all solid trace, got %+v", tr)
	}

	// Leaving the brush is allowed.
	tr = w.Trace(game.TraceQuery{
		Shape: playerBox(),
		Start: mgl32.Vec3{0, 0, -4},
		End:   mgl32.Vec3{0, 0, 20},
		Mask:  game.MaskPlayerSolid,
	})
	if !tr.StartSolid || tr.Fraction != 1 {
		t.Fatalf("expected the trace to get out, got %+v", tr)
	}
}

func TestContentsAndShapeContents(t *testing.T) {
	w := floorWorld()
	w.AddBrush(WaterBrush("pool", cube.Box(200, -100, 0, 400, 100, 50)))

	if c := w.Contents(mgl32.Vec3{300, 0, 10}, game.MaskAll, game.NoEntity); !c.Has(game.ContentsWater) {
		t.Fatalf("expected water, got %b", c)
	}
	if c := w.Contents(mgl32.Vec3{300, 0, 60}, game.MaskAll, game.NoEntity); c != 0 {
		t.Fatalf("expected nothing above the pool, got %b", c)
	}
	if c := w.Contents(mgl32.Vec3{0, 0, -8}, game.MaskAll, game.NoEntity); !c.Has(game.ContentsSolid) {
		t.Fatalf("expected solid inside the floor, got %b", c)
	}

	if c := w.ShapeContents(playerBox(), mgl32.Ident3(), mgl32.Vec3{0, 0, 1}, game.MaskAll, game.NoEntity); c != 0 {
		t.Fatalf("expected a free standing box, got %b", c)
	}
	if c := w.ShapeContents(playerBox(), mgl32.Ident3(), mgl32.Vec3{0, 0, -1}, game.MaskAll, game.NoEntity); !c.Has(game.ContentsSolid) {
		t.Fatalf("expected the sunken box to be in solid, got %b", c)
	}
}

func TestContactsFindGround(t *testing.T) {
	w := floorWorld()
	w.AddBrush(BoxBrush("wall", cube.Box(16+DistEpsilon, -512, 0, 40, 512, 200)))

	contacts := w.Contacts(game.ContactQuery{
		Shape:  playerBox(),
		Origin: mgl32.Vec3{0, 0, DistEpsilon},
		Dir:    mgl32.Vec3{0, 0, -1},
		Depth:  0.25,
		Mask:   game.MaskPlayerSolid,
	})
	if len(contacts) != 1 {
		t.Fatalf("expected only the floor as contact, got %d", len(contacts))
	}
	if contacts[0].Normal != (mgl32.Vec3{0, 0, 1}) || !contacts[0].Entity.IsWorld() {
		t.Fatalf("unexpected contact %+v", contacts[0])
	}

	contacts = w.Contacts(game.ContactQuery{
		Shape:  playerBox(),
		Origin: mgl32.Vec3{0, 0, 10},
		Dir:    mgl32.Vec3{0, 0, -1},
		Depth:  0.25,
		Mask:   game.MaskPlayerSolid,
	})
	if len(contacts) != 0 {
		t.Fatalf("expected no contacts in the air, got %d", len(contacts))
	}
}

func TestHandlesAreGenerational(t *testing.T) {
	w := floorWorld()
	crate := w.Spawn(EntityOptions{Name: "crate", Brushes: []*Brush{BoxBrush("crate", cube.Box(-8, -8, 0, 8, 8, 16))}})
	h := crate.Handle()
	if h.IsNone() || h.IsWorld() {
		t.Fatalf("unexpected handle %v", h)
	}
	if _, ok := w.Entity(h); !ok {
		t.Fatalf("expected the crate to resolve")
	}
	if !w.Remove(h) {
		t.Fatalf("expected the crate to be removed")
	}
	if _, ok := w.Entity(h); ok {
		t.Fatalf("removed entity must not resolve")
	}

	other := w.Spawn(EntityOptions{Name: "other"})
	if other.Handle().ID != h.ID || other.Handle().Generation == h.Generation {
		t.Fatalf("expected the slot to be reused with a new generation, got %v after %v", other.Handle(), h)
	}
	if _, ok := w.Entity(h); ok {
		t.Fatalf("stale handle must not resolve to the new entity")
	}
	if w.Remove(game.WorldHandle) {
		t.Fatalf("the static world must not be removable")
	}
}

func TestRotatedEntity(t *testing.T) {
	w := New(nil)
	w.Spawn(EntityOptions{
		Name:    "beam",
		Origin:  mgl32.Vec3{100, 0, 0},
		Yaw:     90,
		Brushes: []*Brush{BoxBrush("beam", cube.Box(-10, -5, 0, 10, 5, 20))},
	})
	if c := w.Contents(mgl32.Vec3{100, 8, 10}, game.MaskAll, game.NoEntity); !c.Has(game.ContentsSolid) {
		t.Fatalf("expected the rotated beam to extend along Y")
	}
	if c := w.Contents(mgl32.Vec3{108, 0, 10}, game.MaskAll, game.NoEntity); c != 0 {
		t.Fatalf("expected the rotated beam to be narrow along X")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	w := floorWorld()
	crate := w.Spawn(EntityOptions{Name: "crate", Brushes: []*Brush{BoxBrush("crate", cube.Box(-8, -8, 0, 8, 8, 16))}})

	c := w.Clone()
	if c.ID() == w.ID() {
		t.Fatalf("clone must have its own id")
	}
	w.Move(crate.Handle(), mgl32.Vec3{300, 0, 0}, mgl32.Ident3())

	if got := c.Contents(mgl32.Vec3{0, 0, 8}, game.MaskAll, game.NoEntity); !got.Has(game.ContentsSolid) {
		t.Fatalf("moving the original must not move the clone")
	}
	if got := w.Contents(mgl32.Vec3{0, 0, 8}, game.MaskAll, game.NoEntity); got != 0 {
		t.Fatalf("expected the original crate to have moved")
	}
	ent, ok := c.Entity(crate.Handle())
	if !ok || ent.Origin() != (mgl32.Vec3{}) {
		t.Fatalf("expected the cloned crate at the origin")
	}
}

func TestClipPushMovesMovableEntity(t *testing.T) {
	w := floorWorld()
	crate := w.Spawn(EntityOptions{
		Name:    "crate",
		Origin:  mgl32.Vec3{100, 0, 1},
		Brushes: []*Brush{BoxBrush("crate", cube.Box(-16, -16, 0, 16, 16, 32))},
		Movable: true,
		Mass:    50,
	})

	q := game.TraceQuery{
		Shape: playerBox(),
		Start: mgl32.Vec3{0, 0, 1},
		End:   mgl32.Vec3{200, 0, 1},
		Mask:  game.MaskPlayerSolid,
	}
	hit := w.Trace(q)
	if hit.Contact.Entity != crate.Handle() {
		t.Fatalf("expected to run into the crate, got %v", hit.Contact.Entity)
	}

	q.Start = hit.EndPos
	tr, mass := w.ClipPush(q, hit)
	if mass != 50 {
		t.Fatalf("expected a pushed mass of 50, got %v", mass)
	}
	if crate.Origin().X() <= 200 {
		t.Fatalf("expected the crate to be pushed ahead, got %v", crate.Origin())
	}
	if tr.Fraction < 0.9 {
		t.Fatalf("expected the retrace to get almost all the way, got %v", tr.Fraction)
	}
}

func TestClipPushIgnoresStaticEntity(t *testing.T) {
	w := floorWorld()
	pillar := w.Spawn(EntityOptions{
		Name:    "pillar",
		Origin:  mgl32.Vec3{100, 0, 1},
		Brushes: []*Brush{BoxBrush("pillar", cube.Box(-16, -16, 0, 16, 16, 32))},
	})
	q := game.TraceQuery{Shape: playerBox(), Start: mgl32.Vec3{0, 0, 1}, End: mgl32.Vec3{200, 0, 1}, Mask: game.MaskPlayerSolid}
	hit := w.Trace(q)
	tr, mass := w.ClipPush(q, hit)
	if mass != 0 || tr != hit {
		t.Fatalf("static entities must not be pushed")
	}
	if pillar.Origin() != (mgl32.Vec3{100, 0, 1}) {
		t.Fatalf("pillar moved to %v", pillar.Origin())
	}
}

type fakeBody struct {
	handle game.Handle
	origin mgl32.Vec3
}

func (b fakeBody) Handle() game.Handle     { return b.handle }
func (b fakeBody) Origin() mgl32.Vec3      { return b.origin }
func (b fakeBody) Axis() mgl32.Mat3        { return mgl32.Ident3() }
func (b fakeBody) Bounds() cube.BBox       { return playerBox() }
func (b fakeBody) ClipMask() game.Contents { return game.MaskPlayerSolid }

func TestLinkedBodiesBlockTraces(t *testing.T) {
	w := New(nil)
	other := fakeBody{handle: game.Handle{ID: 99, Generation: 1}, origin: mgl32.Vec3{100, 0, 0}}
	w.Link(other)
	w.Link(fakeBody{handle: game.NoEntity})
	if w.Linked() != 1 {
		t.Fatalf("expected one linked body, got %d", w.Linked())
	}

	q := game.TraceQuery{Shape: playerBox(), Start: mgl32.Vec3{0, 0, 0}, End: mgl32.Vec3{200, 0, 0}, Mask: game.MaskPlayerSolid}
	tr := w.Trace(q)
	if tr.Contact.Entity != other.handle || !tr.Contact.Contents.Has(game.ContentsBody) {
		t.Fatalf("expected to hit the linked body, got %+v", tr.Contact)
	}

	q.Ignore = other.handle
	if tr := w.Trace(q); tr.Blocked() {
		t.Fatalf("a body must not block its own traces")
	}

	w.Unlink(other.handle)
	q.Ignore = game.NoEntity
	if tr := w.Trace(q); tr.Blocked() {
		t.Fatalf("unlinked body still blocks traces")
	}
}

const testLevel = `
name = "test"
spawn = [0.0, 0.0, 0.03125]

[[brush]]
name = "floor"
min = [-512.0, -512.0, -16.0]
max = [512.0, 512.0, 0.0]

[[brush]]
name = "ice"
min = [0.0, 100.0, -16.0]
max = [100.0, 200.0, 0.0]
surface = ["slick"]

[[brush]]
name = "ramp"
min = [200.0, -64.0, 0.0]
max = [328.0, 64.0, 64.0]

  [[brush.plane]]
  normal = [-1.0, 0.0, 2.0]
  dist = -89.4427

[[brush]]
name = "pool"
min = [-300.0, -100.0, -16.0]
max = [-100.0, 100.0, 40.0]
contents = ["water"]

[[entity]]
name = "crate"
origin = [0.0, -200.0, 1.0]
mantleable = true
movable = true
mass = 50.0

  [[entity.brush]]
  name = "crate"
  min = [-16.0, -16.0, 0.0]
  max = [16.0, 16.0, 32.0]
`

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel([]byte(testLevel))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Name != "test" || len(l.Brushes) != 4 || len(l.Entities) != 1 {
		t.Fatalf("unexpected level %+v", l)
	}
	if !l.Brushes[1].Surface.Has(game.SurfaceSlick) {
		t.Fatalf("expected the ice to be slick")
	}
	if l.Brushes[3].Contents != game.ContentsWater {
		t.Fatalf("expected the pool to be water, got %b", l.Brushes[3].Contents)
	}
	if len(l.Brushes[2].Planes) != 1 || !approxEqual(l.Brushes[2].Planes[0].Normal.Len(), 1) {
		t.Fatalf("expected a normalized ramp plane")
	}
	crate := l.Entities[0]
	if !crate.Movable || !crate.Mantleable || crate.Mass != 50 || len(crate.Brushes) != 1 {
		t.Fatalf("unexpected crate %+v", crate)
	}

	w := l.Build(nil)
	if len(w.Entities()) != 1 {
		t.Fatalf("expected one entity in the built world")
	}
	// Under the slope of the ramp, but above where the bounds would end.
	if c := w.Contents(mgl32.Vec3{210, 0, 60}, game.MaskAll, game.NoEntity); c != 0 {
		t.Fatalf("expected the ramp plane to cut the box")
	}
	if c := w.Contents(mgl32.Vec3{320, 0, 50}, game.MaskAll, game.NoEntity); !c.Has(game.ContentsSolid) {
		t.Fatalf("expected the high end of the ramp to be solid")
	}
}

func TestParseLevelErrors(t *testing.T) {
	_, err := ParseLevel([]byte("[[brush]]\nname = \"flat\"\nmin = [0.0, 0.0, 0.0]\nmax = [10.0, 10.0, 0.0]\n"))
	if err == nil || !strings.Contains(err.Error(), "has no extent") {
		t.Fatalf("expected an extent error, got %v", err)
	}
	_, err = ParseLevel([]byte("[[brush]]\nname = \"odd\"\nmin = [0.0, 0.0, 0.0]\nmax = [10.0, 10.0, 10.0]\ncontents = [\"jelly\"]\n"))
	if err == nil || !strings.Contains(err.Error(), "unknown contents") {
		t.Fatalf("expected a contents error, got %v", err)
	}
	_, err = ParseLevel([]byte("spawn = [1.0, 2.0]\n"))
	if err == nil {
		t.Fatalf("expected a component count error")
	}
}

func TestLevelCacheSharesParsedLevels(t *testing.T) {
	data := []byte(testLevel + "\n# cache test\n")
	before := cachedLevels()

	a, err := Cache(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Cache(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("expected the same cached level")
	}
	if cachedLevels() != before+1 {
		t.Fatalf("expected one new cached level")
	}
	a.Release()
	if cachedLevels() != before+1 {
		t.Fatalf("level dropped while still subscribed")
	}
	b.Release()
	if cachedLevels() != before {
		t.Fatalf("expected the level to be dropped after the last release")
	}
}
