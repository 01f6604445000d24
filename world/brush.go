package world

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
)

// DistEpsilon is how far traces stop in front of the surfaces they hit.
const DistEpsilon = 1.0 / 32

// Plane is a half space boundary. Points with a positive distance are outside.
type Plane struct {
	Normal mgl32.Vec3
	Dist   float32
}

// Distance returns the signed distance of the point to the plane.
func (pl Plane) Distance(p mgl32.Vec3) float32 {
	return p.Dot(pl.Normal) - pl.Dist
}

// Brush is a convex volume: its bounding box cut by any number of extra
// planes. Brushes are defined in the frame of the entity owning them.
type Brush struct {
	Name     string
	Bounds   cube.BBox
	Planes   []Plane
	Contents game.Contents
	Surface  game.SurfaceFlags
}

// BoxBrush returns a solid axis aligned box.
func BoxBrush(name string, bb cube.BBox) *Brush {
	return &Brush{Name: name, Bounds: bb, Contents: game.ContentsSolid}
}

// WaterBrush returns a box of water.
func WaterBrush(name string, bb cube.BBox) *Brush {
	return &Brush{Name: name, Bounds: bb, Contents: game.ContentsWater}
}

// boxPlanes returns the six faces of the box.
func boxPlanes(bb cube.BBox) []Plane {
	min, max := bb.Min(), bb.Max()
	return []Plane{
		{Normal: mgl32.Vec3{1, 0, 0}, Dist: max[0]},
		{Normal: mgl32.Vec3{-1, 0, 0}, Dist: -min[0]},
		{Normal: mgl32.Vec3{0, 1, 0}, Dist: max[1]},
		{Normal: mgl32.Vec3{0, -1, 0}, Dist: -min[1]},
		{Normal: mgl32.Vec3{0, 0, 1}, Dist: max[2]},
		{Normal: mgl32.Vec3{0, 0, -1}, Dist: -min[2]},
	}
}

// solid is a brush placed in world space.
type solid struct {
	planes   []Plane
	bounds   cube.BBox
	contents game.Contents
	surface  game.SurfaceFlags
	entity   game.Handle
	id       int32
}

// place transforms the brush into world space.
func (b *Brush) place(origin mgl32.Vec3, axis mgl32.Mat3, entity game.Handle, id int32) solid {
	local := append(boxPlanes(b.Bounds), b.Planes...)
	s := solid{
		planes:   make([]Plane, len(local)),
		contents: b.Contents,
		surface:  b.Surface,
		entity:   entity,
		id:       id,
	}
	for i, pl := range local {
		n := axis.Mul3x1(pl.Normal)
		s.planes[i] = Plane{Normal: n, Dist: pl.Dist + n.Dot(origin)}
	}

	min, max := b.Bounds.Min(), b.Bounds.Max()
	var wMin, wMax mgl32.Vec3
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{min[0], min[1], min[2]}
		if i&1 != 0 {
			corner[0] = max[0]
		}
		if i&2 != 0 {
			corner[1] = max[1]
		}
		if i&4 != 0 {
			corner[2] = max[2]
		}
		p := origin.Add(axis.Mul3x1(corner))
		if i == 0 {
			wMin, wMax = p, p
			continue
		}
		for k := 0; k < 3; k++ {
			wMin[k] = min32(wMin[k], p[k])
			wMax[k] = max32(wMax[k], p[k])
		}
	}
	s.bounds = cube.Box(wMin[0], wMin[1], wMin[2], wMax[0], wMax[1], wMax[2])
	return s
}

// boxSolid returns an axis aligned solid, used for linked bodies.
func boxSolid(bb cube.BBox, contents game.Contents, entity game.Handle) solid {
	return solid{planes: boxPlanes(bb), bounds: bb, contents: contents, entity: entity}
}

// clipResult is the outcome of sweeping a box against a single solid.
type clipResult struct {
	fraction   float32
	startSolid bool
	allSolid   bool
	plane      Plane
}

// supportOffset returns the corner of the box that lies furthest behind a plane
// with the given normal.
func supportOffset(n, mins, maxs mgl32.Vec3) mgl32.Vec3 {
	var c mgl32.Vec3
	for i := 0; i < 3; i++ {
		if n[i] < 0 {
			c[i] = maxs[i]
		} else {
			c[i] = mins[i]
		}
	}
	return c
}

// clip sweeps the box mins/maxs from start to end against the solid. A zero
// length sweep tests the position, touching counts as inside.
func (s *solid) clip(mins, maxs, start, end mgl32.Vec3) (clipResult, bool) {
	enterFrac, leaveFrac := float32(-1), float32(1)
	var clipPlane Plane
	getOut, startOut := false, false

	for _, pl := range s.planes {
		dist := pl.Dist - supportOffset(pl.Normal, mins, maxs).Dot(pl.Normal)
		d1 := start.Dot(pl.Normal) - dist
		d2 := end.Dot(pl.Normal) - dist

		if d2 > 0 {
			getOut = true
		}
		if d1 > 0 {
			startOut = true
		}

		// Completely in front of the face.
		if d1 > 0 && (d2 >= DistEpsilon || d2 >= d1) {
			return clipResult{}, false
		}
		if d1 <= 0 && d2 <= 0 {
			continue
		}

		if d1 > d2 {
			f := (d1 - DistEpsilon) / (d1 - d2)
			if f < 0 {
				f = 0
			}
			if f > enterFrac {
				enterFrac = f
				clipPlane = pl
			}
		} else {
			f := (d1 + DistEpsilon) / (d1 - d2)
			if f > 1 {
				f = 1
			}
			if f < leaveFrac {
				leaveFrac = f
			}
		}
	}

	if !startOut {
		return clipResult{fraction: 1, startSolid: true, allSolid: !getOut}, true
	}
	if enterFrac < leaveFrac && enterFrac > -1 {
		if enterFrac < 0 {
			enterFrac = 0
		}
		return clipResult{fraction: enterFrac, plane: clipPlane}, true
	}
	return clipResult{}, false
}

// containsPoint returns true if the point is inside or on the solid.
func (s *solid) containsPoint(p mgl32.Vec3) bool {
	for _, pl := range s.planes {
		if pl.Distance(p) > 0 {
			return false
		}
	}
	return true
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
