package snapshot

import (
	"math"

	"github.com/oomph-ac/pmove/game"
	"github.com/oomph-ac/pmove/oerror"
)

// Writer appends values to a message at bit granularity. Bits are written
// least significant first.
type Writer struct {
	buf  []byte
	bits int
}

// WriteBits writes the low n bits of v. n must be in [1, 32].
func (w *Writer) WriteBits(v uint32, n int) {
	for i := 0; i < n; i++ {
		if w.bits%8 == 0 {
			w.buf = append(w.buf, 0)
		}
		if v&(1<<i) != 0 {
			w.buf[w.bits/8] |= 1 << (w.bits % 8)
		}
		w.bits++
	}
}

func (w *Writer) WriteBool(b bool) {
	var v uint32
	if b {
		v = 1
	}
	w.WriteBits(v, 1)
}

// WriteFloat writes the full 32 bits of f.
func (w *Writer) WriteFloat(f float32) {
	w.WriteBits(math.Float32bits(f), 32)
}

// WriteReducedFloat writes f with the given exponent and mantissa widths, see
// reduceFloat.
func (w *Writer) WriteReducedFloat(f float32, exponentBits, mantissaBits int) {
	w.WriteBits(reduceFloat(f, exponentBits, mantissaBits), 1+exponentBits+mantissaBits)
}

func (w *Writer) WriteInt(v int32) {
	w.WriteBits(uint32(v), 32)
}

// WriteDeltaFloat writes f only if it differs from base.
func (w *Writer) WriteDeltaFloat(base, f float32) {
	changed := math.Float32bits(base) != math.Float32bits(f)
	w.WriteBool(changed)
	if changed {
		w.WriteFloat(f)
	}
}

// WriteDeltaReducedFloat writes the reduced f only if it differs from the
// reduced base.
func (w *Writer) WriteDeltaReducedFloat(base, f float32, exponentBits, mantissaBits int) {
	v := reduceFloat(f, exponentBits, mantissaBits)
	changed := reduceFloat(base, exponentBits, mantissaBits) != v
	w.WriteBool(changed)
	if changed {
		w.WriteBits(v, 1+exponentBits+mantissaBits)
	}
}

// WriteDeltaInt writes v only if it differs from base.
func (w *Writer) WriteDeltaInt(base, v int32) {
	w.WriteBool(base != v)
	if base != v {
		w.WriteInt(v)
	}
}

// Bytes returns the message. The last byte is padded with zero bits.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bits written.
func (w *Writer) Len() int {
	return w.bits
}

// Reader reads values written by a Writer. The first read past the end of the
// message sets the error, after which every read returns zero.
type Reader struct {
	data []byte
	pos  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) ReadBits(n int) uint32 {
	if r.err != nil {
		return 0
	}
	if r.pos+n > len(r.data)*8 {
		r.err = oerror.New(game.ErrorSnapshotTruncated, n, r.pos)
		return 0
	}
	var v uint32
	for i := 0; i < n; i++ {
		if r.data[r.pos/8]&(1<<(r.pos%8)) != 0 {
			v |= 1 << i
		}
		r.pos++
	}
	return v
}

func (r *Reader) ReadBool() bool {
	return r.ReadBits(1) == 1
}

func (r *Reader) ReadFloat() float32 {
	return math.Float32frombits(r.ReadBits(32))
}

func (r *Reader) ReadReducedFloat(exponentBits, mantissaBits int) float32 {
	return expandFloat(r.ReadBits(1+exponentBits+mantissaBits), exponentBits, mantissaBits)
}

func (r *Reader) ReadInt() int32 {
	return int32(r.ReadBits(32))
}

func (r *Reader) ReadDeltaFloat(base float32) float32 {
	if r.ReadBool() {
		return r.ReadFloat()
	}
	return base
}

func (r *Reader) ReadDeltaReducedFloat(base float32, exponentBits, mantissaBits int) float32 {
	if r.ReadBool() {
		return r.ReadReducedFloat(exponentBits, mantissaBits)
	}
	return expandFloat(reduceFloat(base, exponentBits, mantissaBits), exponentBits, mantissaBits)
}

func (r *Reader) ReadDeltaInt(base int32) int32 {
	if r.ReadBool() {
		return r.ReadInt()
	}
	return base
}

// Err returns the first error the reader ran into.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the number of unread bits, padding included.
func (r *Reader) Remaining() int {
	return len(r.data)*8 - r.pos
}

// reduceFloat packs f into a sign bit, a biased exponent and a truncated
// mantissa. An exponent field of zero encodes zero, so magnitudes below the
// smallest exponent flush to zero and magnitudes above the largest saturate.
func reduceFloat(f float32, exponentBits, mantissaBits int) uint32 {
	bits := math.Float32bits(f)
	sign := bits >> 31
	exp := int32(bits>>23&0xff) - 127
	mantissa := bits & (1<<23 - 1)

	bias := int32(1)<<(exponentBits-1) - 1
	maxExp := int32(1)<<exponentBits - 1

	e := exp + bias
	switch {
	case bits&0x7fffffff == 0 || e <= 0:
		return 0
	case e > maxExp:
		e = maxExp
		mantissa = 1<<23 - 1
	}
	return sign<<(exponentBits+mantissaBits) | uint32(e)<<mantissaBits | mantissa>>(23-mantissaBits)
}

// expandFloat is the inverse of reduceFloat.
func expandFloat(v uint32, exponentBits, mantissaBits int) float32 {
	sign := v >> (exponentBits + mantissaBits) & 1
	e := int32(v >> mantissaBits & (1<<exponentBits - 1))
	if e == 0 {
		if sign == 1 {
			return float32(math.Copysign(0, -1))
		}
		return 0
	}
	bias := int32(1)<<(exponentBits-1) - 1
	mantissa := v & (1<<mantissaBits - 1)
	return math.Float32frombits(sign<<31 | uint32(e-bias+127)<<23 | mantissa<<(23-mantissaBits))
}
