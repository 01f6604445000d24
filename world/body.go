package world

import (
	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/pmove"
)

// Link places a character in the world as a solid box so other characters
// collide with it. Linking an already linked body updates its position.
// Bodies without a handle can not be linked.
func (w *World) Link(b pmove.MovementBody) {
	h := b.Handle()
	if h.IsNone() || h.IsWorld() {
		return
	}
	s := boxSolid(b.Bounds().Translate(b.Origin()), game.ContentsBody, h)

	w.Lock()
	defer w.Unlock()

	for i := range w.bodies {
		if w.bodies[i].b.Handle() == h {
			w.bodies[i] = body{b: b, solid: s}
			return
		}
	}
	w.bodies = append(w.bodies, body{b: b, solid: s})
}

// Unlink removes a character from the world.
func (w *World) Unlink(h game.Handle) {
	w.Lock()
	defer w.Unlock()

	for i := range w.bodies {
		if w.bodies[i].b.Handle() == h {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return
		}
	}
}

// Linked returns the number of linked bodies.
func (w *World) Linked() int {
	w.RLock()
	defer w.RUnlock()
	return len(w.bodies)
}
