// Package surface defines the geometric primitives that rule trees are
// built over. A Surface splits space into a positive and a negative
// half-space; rule leaves select one of the two by sign.
//
// Implementations (Plane, Sphere, Cylinder, SDF) supply the half-space
// test and a bounding box for their negative region. The abstraction lets
// the rule package stay independent of any particular primitive.
package surface

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tolerance is the distance within which a point counts as lying on a
// surface.
const Tolerance = 1e-6

// Surface is a signed half-space primitive.
type Surface interface {
	// Side returns 1 for points on the positive side, -1 for points on the
	// negative side and 0 for points within Tolerance of the surface.
	Side(p v3.Vec) int

	// BoundingBox returns a box enclosing the part of box that lies on the
	// negative side (Side <= 0). Unbounded directions keep box's extent.
	BoundingBox(box sdf.Box3) sdf.Box3

	// Clone returns an independent copy.
	Clone() Surface

	String() string
}

// SignMap maps a surface key to the Side of a query point: 1, -1, or 0 on
// the surface. It is built once per point and shared by every leaf that
// references the key.
type SignMap map[int]int

// Classify evaluates each surface once at p.
func Classify(p v3.Vec, surfaces map[int]Surface) SignMap {
	m := make(SignMap, len(surfaces))
	for key, s := range surfaces {
		m[key] = s.Side(p)
	}
	return m
}

// sideOf maps a signed distance to -1, 0 or 1.
func sideOf(d float64) int {
	switch {
	case d > Tolerance:
		return 1
	case d < -Tolerance:
		return -1
	default:
		return 0
	}
}
