package world

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/ethaniccc/float32-cube/cube/trace"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
)

// MaxContacts is the most contacts a single contact query returns.
const MaxContacts = 16

// each calls fn for every solid matching mask whose bounds overlap the area.
// Solids owned by any of the skipped handles are left out. The world must be
// locked.
func (w *World) each(area cube.BBox, mask game.Contents, fn func(s *solid), skip ...game.Handle) {
	area = area.Grow(DistEpsilon * 2)
	skipped := func(h game.Handle) bool {
		for _, s := range skip {
			if s == h {
				return true
			}
		}
		return false
	}

	for _, sl := range w.slots {
		if sl.ent == nil || skipped(sl.ent.handle) {
			continue
		}
		for i := range sl.ent.solids {
			s := &sl.ent.solids[i]
			if s.contents.Has(mask) && s.bounds.IntersectsWith(area) {
				fn(s)
			}
		}
	}
	for i := range w.bodies {
		s := &w.bodies[i].solid
		if skipped(s.entity) || !s.contents.Has(mask) || !s.bounds.IntersectsWith(area) {
			continue
		}
		fn(s)
	}
}

// Trace sweeps the query shape through the world. The shape is treated as axis
// aligned whatever its axis.
func (w *World) Trace(q game.TraceQuery) game.Trace {
	w.RLock()
	defer w.RUnlock()
	return w.trace(q, q.Ignore)
}

func (w *World) trace(q game.TraceQuery, skip ...game.Handle) game.Trace {
	mins, maxs := q.Shape.Min(), q.Shape.Max()
	delta := q.End.Sub(q.Start)
	point := q.Shape == cube.BBox{}

	var (
		tr    = game.Trace{Fraction: 1}
		best  clipResult
		owner *solid
	)
	w.each(q.Shape.Translate(q.Start).Extend(delta), q.Mask, func(s *solid) {
		if point && !s.bounds.Vec3Within(q.Start) {
			// Rays that miss the bounds entirely can not hit the brush.
			if _, ok := trace.BBoxIntercept(s.bounds.Grow(DistEpsilon), q.Start, q.End); !ok {
				return
			}
		}
		res, ok := s.clip(mins, maxs, q.Start, q.End)
		if !ok {
			return
		}
		if res.startSolid {
			tr.StartSolid = true
			if res.allSolid && tr.Fraction > 0 {
				tr.Fraction = 0
				best, owner = res, s
			}
			return
		}
		if res.fraction < tr.Fraction {
			tr.Fraction = res.fraction
			best, owner = res, s
		}
	}, skip...)

	tr.EndPos = q.Start.Add(delta.Mul(tr.Fraction))
	if owner != nil {
		tr.Contact = contactOf(owner, best.plane, tr.EndPos, mins, maxs)
	}
	return tr
}

// contactOf builds the contact of a box resting at pos against a plane of the
// solid. The contact point is the box corner closest to the plane, moved onto it.
func contactOf(s *solid, pl Plane, pos, mins, maxs mgl32.Vec3) game.Contact {
	p := pos.Add(supportOffset(pl.Normal, mins, maxs))
	p = p.Sub(pl.Normal.Mul(pl.Distance(p)))
	return game.Contact{
		Point:    p,
		Normal:   pl.Normal,
		Dist:     pl.Dist,
		Contents: s.contents,
		Surface:  s.surface,
		Entity:   s.entity,
		ID:       s.id,
	}
}

// Contents returns the combined contents of every solid containing the point.
func (w *World) Contents(point mgl32.Vec3, mask game.Contents, ignore game.Handle) game.Contents {
	w.RLock()
	defer w.RUnlock()

	var c game.Contents
	w.each(cube.Box(point[0], point[1], point[2], point[0], point[1], point[2]), mask, func(s *solid) {
		if s.containsPoint(point) {
			c |= s.contents
		}
	}, ignore)
	return c
}

// ShapeContents returns the combined contents of every solid the shape touches
// when placed at origin.
func (w *World) ShapeContents(shape cube.BBox, _ mgl32.Mat3, origin mgl32.Vec3, mask game.Contents, ignore game.Handle) game.Contents {
	w.RLock()
	defer w.RUnlock()

	mins, maxs := shape.Min(), shape.Max()
	var c game.Contents
	w.each(shape.Translate(origin), mask, func(s *solid) {
		if res, ok := s.clip(mins, maxs, origin, origin); ok && res.startSolid {
			c |= s.contents
		}
	}, ignore)
	return c
}

// Contacts sweeps the shape Depth units along Dir and returns a contact for
// every solid it would run into. Solids the shape is embedded in are left out.
func (w *World) Contacts(q game.ContactQuery) []game.Contact {
	w.RLock()
	defer w.RUnlock()

	mins, maxs := q.Shape.Min(), q.Shape.Max()
	move := q.Dir.Mul(q.Depth)
	end := q.Origin.Add(move)

	var contacts []game.Contact
	w.each(q.Shape.Translate(q.Origin).Extend(move), q.Mask, func(s *solid) {
		if len(contacts) >= MaxContacts {
			return
		}
		res, ok := s.clip(mins, maxs, q.Origin, end)
		if !ok || res.startSolid {
			return
		}
		contacts = append(contacts, contactOf(s, res.plane, q.Origin.Add(move.Mul(res.fraction)), mins, maxs))
	}, q.Ignore)
	return contacts
}
