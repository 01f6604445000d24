package snapshot

import (
	"encoding/binary"
	"fmt"

	"github.com/oomph-ac/pmove/pmove"
	"github.com/zeebo/xxh3"
)

// Checksum hashes every field of the archive in order. Two players that
// simulated identically produce the same checksum.
func Checksum(a *pmove.Archive) uint64 {
	h := xxh3.New()
	for el := a.Front(); el != nil; el = el.Next() {
		_, _ = h.Write([]byte(el.Key))
		if err := binary.Write(h, binary.LittleEndian, el.Value); err != nil {
			fmt.Fprintf(h, "%v", el.Value)
		}
	}
	return h.Sum64()
}

// StateChecksum hashes the snapshot encoding of a kinematic state.
func StateChecksum(s pmove.KinematicState) uint64 {
	return xxh3.Hash(Encode(s))
}
