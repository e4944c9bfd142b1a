package rule

import (
	"github.com/chazu/halfspace/pkg/aabb"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// complementBoundingBox approximates the box of the complement of a region
// whose own box is inner, within the candidate box. It collects the
// candidate corners not covered by inner and the inner corners covered by
// the candidate, then bounds that point set. When nothing is collected the
// candidate is returned unchanged.
func complementBoundingBox(candidate, inner sdf.Box3) sdf.Box3 {
	pts := make([]v3.Vec, 0, 16)
	for _, c := range aabb.Corners(candidate) {
		if !aabb.Contains(inner, c) {
			pts = append(pts, c)
		}
	}
	for _, c := range aabb.Corners(inner) {
		if aabb.Contains(candidate, c) {
			pts = append(pts, c)
		}
	}
	if b, ok := aabb.Bound(pts); ok {
		return b
	}
	return candidate
}
