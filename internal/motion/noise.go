package motion

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// Wobble phase rate and the two fixed sample rows; each axis reads its own
// row so the offsets are independent but share one phase.
const (
	wobblePhaseRate = 7.73
	wobbleRowX      = 0.123
	wobbleRowY      = 0.456
)

func latticeHash(seed int64, x, y int) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(seed))
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(x)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(int64(y)))
	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

func latticeValue(seed int64, x, y int) float64 {
	return float64(latticeHash(seed, x, y)&0xfffffff) / float64(0xfffffff)
}

func smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// valueNoise2D is smooth value noise in [0,1] over a unit lattice.
func valueNoise2D(seed int64, x, y float64) float64 {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	tx := smoothstep(x - float64(x0))
	ty := smoothstep(y - float64(y0))
	n00 := latticeValue(seed, x0, y0)
	n10 := latticeValue(seed, x0+1, y0)
	n01 := latticeValue(seed, x0, y0+1)
	n11 := latticeValue(seed, x0+1, y0+1)
	nx0 := n00 + (n10-n00)*tx
	nx1 := n01 + (n11-n01)*tx
	return nx0 + (nx1-nx0)*ty
}

// wobbleOffset returns a bounded offset in [-amplitude/2, amplitude/2] on both
// axes for the given clock reading in seconds.
func wobbleOffset(seed int64, seconds, amplitude float64) (float64, float64) {
	phase := seconds * wobblePhaseRate
	x := (valueNoise2D(seed, phase, wobbleRowX) - 0.5) * amplitude
	y := (valueNoise2D(seed, wobbleRowY, phase) - 0.5) * amplitude
	return x, y
}
