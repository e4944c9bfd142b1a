package surface

import (
	"errors"
	"fmt"

	"github.com/chazu/halfspace/pkg/aabb"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrZeroNormal is returned when a plane or cylinder is given a
// zero-length direction.
var ErrZeroNormal = errors.New("surface: zero-length direction vector")

// Plane is the set of points p with Normal·p == Dist. The positive side
// is the one the normal points into.
type Plane struct {
	Normal v3.Vec // unit length
	Dist   float64
}

// Compile-time interface check.
var _ Surface = (*Plane)(nil)

// NewPlane returns the plane normal·p == dist. The normal is normalised
// and dist scaled to match.
func NewPlane(normal v3.Vec, dist float64) (*Plane, error) {
	l := normal.Length()
	if l < Tolerance {
		return nil, fmt.Errorf("surface: plane: %w", ErrZeroNormal)
	}
	return &Plane{Normal: normal.MulScalar(1 / l), Dist: dist / l}, nil
}

// Distance returns the signed distance from the plane to p.
func (pl *Plane) Distance(p v3.Vec) float64 {
	return pl.Normal.Dot(p) - pl.Dist
}

// Side returns the half-space of p.
func (pl *Plane) Side(p v3.Vec) int {
	return sideOf(pl.Distance(p))
}

// BoundingBox bounds the corners of box on the negative side together with
// the points where the plane crosses box's edges.
func (pl *Plane) BoundingBox(box sdf.Box3) sdf.Box3 {
	corners := aabb.Corners(box)
	var dist [8]float64
	pts := make([]v3.Vec, 0, 20)
	for i, c := range corners {
		dist[i] = pl.Distance(c)
		if dist[i] <= Tolerance {
			pts = append(pts, c)
		}
	}
	for _, e := range aabb.Edges {
		da, db := dist[e[0]], dist[e[1]]
		if (da < 0) == (db < 0) || da == db {
			continue
		}
		t := da / (da - db)
		a, b := corners[e[0]], corners[e[1]]
		pts = append(pts, a.Add(b.Sub(a).MulScalar(t)))
	}
	if bb, ok := aabb.Bound(pts); ok {
		return bb
	}
	return box
}

// Clone returns a copy of the plane.
func (pl *Plane) Clone() Surface {
	c := *pl
	return &c
}

func (pl *Plane) String() string {
	return fmt.Sprintf("plane n=(%g %g %g) d=%g", pl.Normal.X, pl.Normal.Y, pl.Normal.Z, pl.Dist)
}
