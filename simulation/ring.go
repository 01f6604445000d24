package simulation

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/pmove/pmove"
)

// predicted is a tick the client simulated ahead of the server.
type predicted struct {
	Tick       uint64
	Command    pmove.Command
	ViewAngles mgl32.Vec3
	// State is the kinematic state after the tick.
	State pmove.KinematicState
}

// ring is a fixed-size circular buffer of predicted ticks, oldest overwritten first.
type ring struct {
	buffer   []predicted
	capacity int
	head     int // Points to the next write position
	size     int
}

func newRing(capacity int) *ring {
	return &ring{
		buffer:   make([]predicted, capacity),
		capacity: capacity,
	}
}

func (rb *ring) add(p predicted) {
	rb.buffer[rb.head] = p
	rb.head = (rb.head + 1) % rb.capacity
	if rb.size < rb.capacity {
		rb.size++
	}
}

// index returns the buffer index of the given tick.
func (rb *ring) index(tick uint64) (int, bool) {
	// Search backwards from most recent
	for i := 0; i < rb.size; i++ {
		idx := (rb.head - 1 - i + rb.capacity) % rb.capacity
		if rb.buffer[idx].Tick == tick {
			return idx, true
		}
		if rb.buffer[idx].Tick < tick {
			break
		}
	}
	return 0, false
}

func (rb *ring) get(tick uint64) (predicted, bool) {
	idx, ok := rb.index(tick)
	if !ok {
		return predicted{}, false
	}
	return rb.buffer[idx], true
}

// after returns pointers to every tick newer than the given one, oldest first.
func (rb *ring) after(tick uint64) []*predicted {
	var res []*predicted
	for i := rb.size - 1; i >= 0; i-- {
		idx := (rb.head - 1 - i + rb.capacity) % rb.capacity
		if rb.buffer[idx].Tick > tick {
			res = append(res, &rb.buffer[idx])
		}
	}
	return res
}

func (rb *ring) len() int {
	return rb.size
}
