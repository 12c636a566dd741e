package rig

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SampleIndex maps a normalized scroll offset onto a sequence of m samples,
// rounding to the nearest sample. Offsets outside [0, 1] (and NaN) are
// clamped first, so the result is always a valid index when m > 0.
func SampleIndex(offset float32, m int) int {
	if m <= 0 {
		return 0
	}
	if offset != offset {
		offset = 0
	}
	offset = mgl32.Clamp(offset, 0, 1)

	idx := int(math.Round(float64(offset) * float64(m)))
	if idx > m-1 {
		idx = m - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// Lookahead returns the sample at idx and its successor. The successor is
// clamped to the last sample; the path never wraps.
func Lookahead(samples []mgl32.Vec3, idx int) (cur, ahead mgl32.Vec3) {
	last := len(samples) - 1
	if idx > last {
		idx = last
	}
	if idx < 0 {
		idx = 0
	}
	next := idx + 1
	if next > last {
		next = last
	}
	return samples[idx], samples[next]
}
