// Package aabb provides axis-aligned bounding box helpers over sdfx's
// sdf.Box3. Boxes are closed: a point on a face is contained.
package aabb

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// New returns the box spanning min to max.
func New(min, max v3.Vec) sdf.Box3 {
	return sdf.Box3{Min: min, Max: max}
}

// Cube returns the box centred on the origin with the given half-width.
func Cube(half float64) sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: -half, Y: -half, Z: -half},
		Max: v3.Vec{X: half, Y: half, Z: half},
	}
}

// Corners returns the eight corners of b. Bit 0 of the index selects
// Max.X, bit 1 Max.Y and bit 2 Max.Z, so corners i and i^(1<<k) share
// an edge along axis k.
func Corners(b sdf.Box3) [8]v3.Vec {
	var c [8]v3.Vec
	for i := range c {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		c[i] = p
	}
	return c
}

// Edges lists the corner index pairs of the twelve box edges.
var Edges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // along X
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // along Y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // along Z
}

// Contains reports whether p lies inside b, faces included.
func Contains(b sdf.Box3, p v3.Vec) bool {
	return p.X <= b.Max.X && p.X >= b.Min.X &&
		p.Y <= b.Max.Y && p.Y >= b.Min.Y &&
		p.Z <= b.Max.Z && p.Z >= b.Min.Z
}

// Empty reports whether b is inverted along any axis.
func Empty(b sdf.Box3) bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Tighter returns the componentwise intersection of a and b. The result
// may be empty when the boxes are disjoint.
func Tighter(a, b sdf.Box3) sdf.Box3 {
	return sdf.Box3{Min: a.Min.Max(b.Min), Max: a.Max.Min(b.Max)}
}

// Looser returns the smallest box containing both a and b.
func Looser(a, b sdf.Box3) sdf.Box3 {
	return sdf.Box3{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// Clip restricts inner to candidate. Unlike Tighter, an inner box that
// misses candidate entirely yields candidate unchanged, since an empty
// box carries no usable bounds for the caller.
func Clip(inner, candidate sdf.Box3) sdf.Box3 {
	c := Tighter(inner, candidate)
	if Empty(c) {
		return candidate
	}
	return c
}

// Bound returns the componentwise min/max of pts. ok is false when pts
// is empty.
func Bound(pts []v3.Vec) (b sdf.Box3, ok bool) {
	if len(pts) == 0 {
		return sdf.Box3{}, false
	}
	b.Min = v3.Vec{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}
	b.Max = v3.Vec{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}
	for _, p := range pts {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b, true
}

// Equal reports whether a and b match within tol on every bound.
func Equal(a, b sdf.Box3, tol float64) bool {
	return near(a.Min.X, b.Min.X, tol) && near(a.Min.Y, b.Min.Y, tol) && near(a.Min.Z, b.Min.Z, tol) &&
		near(a.Max.X, b.Max.X, tol) && near(a.Max.Y, b.Max.Y, tol) && near(a.Max.Z, b.Max.Z, tol)
}

// Within reports whether inner lies inside outer, faces included.
func Within(inner, outer sdf.Box3) bool {
	return Contains(outer, inner.Min) && Contains(outer, inner.Max)
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
