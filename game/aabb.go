package game

import "github.com/ethaniccc/float32-cube/cube"

// PlayerBounds returns a box with its feet at the origin, centered horizontally,
// extending height units up the Z axis.
func PlayerBounds(width, height float32) cube.BBox {
	h := width / 2
	return cube.Box(
		-h, -h, 0,
		h, h, height,
	)
}

// WithHeight returns the box with its top moved to the given height.
func WithHeight(bb cube.BBox, height float32) cube.BBox {
	min, max := bb.Min(), bb.Max()
	return cube.Box(min[0], min[1], min[2], max[0], max[1], height)
}

// MidlineSlab returns a thin vertical slab through the middle of the box, the
// full height of the box and thickness units wide on both horizontal axes.
func MidlineSlab(bb cube.BBox, thickness float32) cube.BBox {
	min, max := bb.Min(), bb.Max()
	mid := (min[1]+max[1])/2 - thickness/2
	return cube.Box(mid, mid, min[2], mid+thickness, mid+thickness, max[2])
}
