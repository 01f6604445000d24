package world

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/oomph-ac/pmove/game"
	"github.com/sirupsen/logrus"
)

// ClipPush pushes the movable entity hit by a character out of its way. The
// entity moves along the hit normal by as much of the remaining move as it can
// without running into anything else, after which the move is traced again.
// The returned mass is zero if nothing moved. Only the position changes here,
// the pushing character applies the impulse through the entity.
func (w *World) ClipPush(q game.TraceQuery, hit game.Trace) (game.Trace, float32) {
	w.Lock()
	defer w.Unlock()

	e, ok := w.entity(hit.Contact.Entity)
	if !ok || !e.movable || hit.Contact.Entity.IsWorld() || len(e.solids) == 0 {
		return hit, 0
	}

	n := hit.Contact.Normal
	into := q.End.Sub(q.Start).Dot(n)
	if into >= 0 {
		return hit, 0
	}
	push := n.Mul(into)

	bounds := e.solids[0].bounds
	for _, s := range e.solids[1:] {
		bounds = unionBox(bounds, s.bounds)
	}
	moved := w.trace(game.TraceQuery{
		Shape: bounds.Translate(e.origin.Mul(-1)),
		Start: e.origin,
		End:   e.origin.Add(push),
		Mask:  game.MaskPlayerSolid,
	}, e.handle, q.Ignore)
	if moved.StartSolid || moved.Fraction == 0 {
		return w.trace(q, q.Ignore), 0
	}

	e.origin = moved.EndPos
	e.place()
	w.log.WithFields(logrus.Fields{"world": w.id, "entity": e.handle, "fraction": moved.Fraction}).Debug("pushed entity")

	return w.trace(q, q.Ignore), e.mass
}

func unionBox(a, b cube.BBox) cube.BBox {
	aMin, aMax := a.Min(), a.Max()
	bMin, bMax := b.Min(), b.Max()
	return cube.Box(
		min32(aMin[0], bMin[0]), min32(aMin[1], bMin[1]), min32(aMin[2], bMin[2]),
		max32(aMax[0], bMax[0]), max32(aMax[1], bMax[1]), max32(aMax[2], bMax[2]),
	)
}
