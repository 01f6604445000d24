package pmove

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
)

const fakeEpsilon = 1.0 / 32

// fakeGeo is a world with at most a flat floor at FloorZ. Any query can be
// overridden.
type fakeGeo struct {
	floor  bool
	floorZ float32

	trace    func(q game.TraceQuery) game.Trace
	contents func(point mgl32.Vec3) game.Contents
	contacts func(q game.ContactQuery) []game.Contact

	entities map[game.Handle]game.Entity
	traces   int
}

func newFakeGeo() *fakeGeo {
	return &fakeGeo{entities: map[game.Handle]game.Entity{
		game.WorldHandle: &fakeEntity{handle: game.WorldHandle, mantleable: true, axis: mgl32.Ident3()},
	}}
}

func floorGeo() *fakeGeo {
	g := newFakeGeo()
	g.floor = true
	return g
}

func (g *fakeGeo) Trace(q game.TraceQuery) game.Trace {
	g.traces++
	if g.trace != nil {
		return g.trace(q)
	}
	tr := game.Trace{Fraction: 1, EndPos: q.End}
	if !g.floor {
		return tr
	}

	bottom := q.Shape.Min()[2]
	d1 := q.Start[2] + bottom - g.floorZ
	d2 := q.End[2] + bottom - g.floorZ
	if d1 < 0 {
		tr.StartSolid = true
		if d2 < 0 {
			tr.Fraction, tr.EndPos = 0, q.Start
			tr.Contact = game.Contact{Normal: mgl32.Vec3{0, 0, 1}, Contents: game.ContentsSolid, Entity: game.WorldHandle}
		}
		return tr
	}
	if d2 >= 0 || d1 <= d2 {
		return tr
	}

	f := (d1 - fakeEpsilon) / (d1 - d2)
	if f < 0 {
		f = 0
	}
	tr.Fraction = f
	tr.EndPos = q.Start.Add(q.End.Sub(q.Start).Mul(f))
	tr.Contact = game.Contact{
		Point:    mgl32.Vec3{tr.EndPos[0], tr.EndPos[1], g.floorZ},
		Normal:   mgl32.Vec3{0, 0, 1},
		Dist:     g.floorZ,
		Contents: game.ContentsSolid,
		Entity:   game.WorldHandle,
	}
	return tr
}

func (g *fakeGeo) Contents(point mgl32.Vec3, _ game.Contents, _ game.Handle) game.Contents {
	if g.contents != nil {
		return g.contents(point)
	}
	if g.floor && point[2] < g.floorZ {
		return game.ContentsSolid
	}
	return 0
}

func (g *fakeGeo) ShapeContents(shape cube.BBox, _ mgl32.Mat3, origin mgl32.Vec3, _ game.Contents, _ game.Handle) game.Contents {
	if g.floor && origin[2]+shape.Min()[2] < g.floorZ {
		return game.ContentsSolid
	}
	return 0
}

func (g *fakeGeo) Contacts(q game.ContactQuery) []game.Contact {
	if g.contacts != nil {
		return g.contacts(q)
	}
	if !g.floor {
		return nil
	}
	gap := q.Origin[2] + q.Shape.Min()[2] - g.floorZ
	if gap < 0 || gap > q.Depth {
		return nil
	}
	return []game.Contact{{
		Point:    mgl32.Vec3{q.Origin[0], q.Origin[1], g.floorZ},
		Normal:   mgl32.Vec3{0, 0, 1},
		Dist:     g.floorZ,
		Contents: game.ContentsSolid,
		Entity:   game.WorldHandle,
	}}
}

func (g *fakeGeo) Entity(h game.Handle) (game.Entity, bool) {
	e, ok := g.entities[h]
	return e, ok
}

type fakeEntity struct {
	handle     game.Handle
	mantleable bool
	origin     mgl32.Vec3
	axis       mgl32.Mat3
	invMass    float32
	impulses   []mgl32.Vec3
}

func (e *fakeEntity) Handle() game.Handle { return e.handle }
func (e *fakeEntity) Mantleable() bool    { return e.mantleable }
func (e *fakeEntity) Origin() mgl32.Vec3  { return e.origin }
func (e *fakeEntity) Axis() mgl32.Mat3    { return e.axis }

func (e *fakeEntity) ImpactInfo(_ int32, point mgl32.Vec3) game.ImpactInfo {
	return game.ImpactInfo{InvMass: e.invMass, Position: point}
}

func (e *fakeEntity) ApplyImpulse(_ int32, _ mgl32.Vec3, impulse mgl32.Vec3) {
	e.impulses = append(e.impulses, impulse)
}

func newTestPlayer(geo GeometryQuery) *Player {
	return New(geo, Options{Config: DefaultConfig(), Self: game.Handle{ID: 7, Generation: 1}})
}

func approxEqual(a, b float32) bool {
	return math32.Abs(a-b) < 1e-3
}

func vecApproxEqual(a, b mgl32.Vec3) bool {
	return approxEqual(a[0], b[0]) && approxEqual(a[1], b[1]) && approxEqual(a[2], b[2])
}
