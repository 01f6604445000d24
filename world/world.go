package world

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/pmove"
	"github.com/samber/lo"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

var currentWorldId = atomic.NewUint64(0)

// World is the reference collision world: static brushes, brush entities and
// the characters linked into it. It implements pmove.GeometryQuery together
// with pmove.Pusher and pmove.BodyLinker.
type World struct {
	id uint64

	// slots holds every entity by handle ID minus one. Slot 0 is the static world.
	slots []slot
	free  []uint32

	bodies []body

	log *logrus.Logger

	deadlock.RWMutex
}

type slot struct {
	generation uint32
	ent        *Entity
}

type body struct {
	b     pmove.MovementBody
	solid solid
}

// New creates an empty world. A nil logger discards everything.
func New(log *logrus.Logger) *World {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	w := &World{
		id:  currentWorldId.Inc(),
		log: log,
	}
	static := &Entity{w: w, handle: game.WorldHandle, name: "world", axis: mgl32.Ident3(), mantleable: true}
	w.slots = append(w.slots, slot{generation: game.WorldHandle.Generation, ent: static})
	return w
}

// ID returns the unique ID of the world.
func (w *World) ID() uint64 {
	return w.id
}

// AddBrush adds a brush to the static world.
func (w *World) AddBrush(b *Brush) {
	w.Lock()
	defer w.Unlock()

	static := w.slots[0].ent
	static.brushes = append(static.brushes, b)
	static.place()
}

// Spawn adds a brush entity to the world and returns it.
func (w *World) Spawn(opts EntityOptions) *Entity {
	w.Lock()
	defer w.Unlock()

	var id uint32
	if n := len(w.free); n > 0 {
		id = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		w.slots = append(w.slots, slot{})
		id = uint32(len(w.slots))
	}
	s := &w.slots[id-1]
	s.generation++

	e := &Entity{
		w:          w,
		handle:     game.Handle{ID: id, Generation: s.generation},
		name:       opts.Name,
		origin:     opts.Origin,
		axis:       mgl32.Rotate3DZ(mgl32.DegToRad(opts.Yaw)),
		brushes:    opts.Brushes,
		mantleable: opts.Mantleable,
		movable:    opts.Movable && opts.Mass > 0,
		mass:       opts.Mass,
	}
	e.place()
	s.ent = e

	w.log.WithFields(logrus.Fields{"world": w.id, "entity": e.handle, "name": e.name}).Debug("spawned entity")
	return e
}

// Remove removes an entity. Handles to it stop resolving, even after the slot
// is reused. The static world can not be removed.
func (w *World) Remove(h game.Handle) bool {
	w.Lock()
	defer w.Unlock()

	if _, ok := w.entity(h); !ok || h.IsWorld() {
		return false
	}
	w.slots[h.ID-1].ent = nil
	w.free = append(w.free, h.ID)
	w.log.WithFields(logrus.Fields{"world": w.id, "entity": h}).Debug("removed entity")
	return true
}

// Move places an entity at a new origin and heading.
func (w *World) Move(h game.Handle, origin mgl32.Vec3, axis mgl32.Mat3) bool {
	w.Lock()
	defer w.Unlock()

	e, ok := w.entity(h)
	if !ok || h.IsWorld() {
		return false
	}
	e.origin, e.axis = origin, axis
	e.place()
	return true
}

// Entity resolves a handle to a brush entity or a linked body.
func (w *World) Entity(h game.Handle) (game.Entity, bool) {
	w.RLock()
	defer w.RUnlock()

	if e, ok := w.entity(h); ok {
		return e, true
	}
	for _, b := range w.bodies {
		if b.b.Handle() != h {
			continue
		}
		if ent, ok := b.b.(game.Entity); ok {
			return ent, true
		}
	}
	return nil, false
}

// Entities returns every brush entity except the static world.
func (w *World) Entities() []*Entity {
	w.RLock()
	defer w.RUnlock()

	live := lo.Filter(w.slots[1:], func(s slot, _ int) bool {
		return s.ent != nil
	})
	return lo.Map(live, func(s slot, _ int) *Entity {
		return s.ent
	})
}

// entity resolves a brush entity. The world must be locked.
func (w *World) entity(h game.Handle) (*Entity, bool) {
	if h.IsNone() || int(h.ID) > len(w.slots) {
		return nil, false
	}
	s := w.slots[h.ID-1]
	if s.ent == nil || s.generation != h.Generation {
		return nil, false
	}
	return s.ent, true
}

// Clone returns a deep copy of the brush entities of the world. Linked bodies
// are not copied, characters link themselves into the clone when they move.
func (w *World) Clone() *World {
	w.RLock()
	defer w.RUnlock()

	c := &World{
		id:    currentWorldId.Inc(),
		slots: make([]slot, len(w.slots)),
		free:  append([]uint32(nil), w.free...),
		log:   w.log,
	}
	for i, s := range w.slots {
		c.slots[i].generation = s.generation
		if s.ent == nil {
			continue
		}
		e := *s.ent
		e.w = c
		e.solids = nil
		e.place()
		c.slots[i].ent = &e
	}
	return c
}
