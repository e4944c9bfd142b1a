package surface

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/halfspace/pkg/aabb"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrBadRadius is returned for non-positive radii.
var ErrBadRadius = errors.New("surface: radius must be positive")

// ---------------------------------------------------------------------------
// Sphere
// ---------------------------------------------------------------------------

// Sphere is positive outside and negative inside.
type Sphere struct {
	Center v3.Vec
	Radius float64
}

var _ Surface = (*Sphere)(nil)

// NewSphere returns a sphere of radius r around c.
func NewSphere(c v3.Vec, r float64) (*Sphere, error) {
	if r <= 0 {
		return nil, fmt.Errorf("surface: sphere: %w", ErrBadRadius)
	}
	return &Sphere{Center: c, Radius: r}, nil
}

// Side returns the half-space of p.
func (s *Sphere) Side(p v3.Vec) int {
	return sideOf(p.Sub(s.Center).Length() - s.Radius)
}

// BoundingBox returns the sphere's box clipped to box.
func (s *Sphere) BoundingBox(box sdf.Box3) sdf.Box3 {
	r := v3.Vec{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return aabb.Clip(aabb.New(s.Center.Sub(r), s.Center.Add(r)), box)
}

// Clone returns a copy of the sphere.
func (s *Sphere) Clone() Surface {
	c := *s
	return &c
}

func (s *Sphere) String() string {
	return fmt.Sprintf("sphere c=(%g %g %g) r=%g", s.Center.X, s.Center.Y, s.Center.Z, s.Radius)
}

// ---------------------------------------------------------------------------
// Cylinder
// ---------------------------------------------------------------------------

// Cylinder is an infinite circular cylinder around the line through Center
// along Axis. It is positive outside and negative inside.
type Cylinder struct {
	Center v3.Vec
	Axis   v3.Vec // unit length
	Radius float64
}

var _ Surface = (*Cylinder)(nil)

// NewCylinder returns a cylinder of radius r around the line through c
// along axis.
func NewCylinder(c, axis v3.Vec, r float64) (*Cylinder, error) {
	if r <= 0 {
		return nil, fmt.Errorf("surface: cylinder: %w", ErrBadRadius)
	}
	l := axis.Length()
	if l < Tolerance {
		return nil, fmt.Errorf("surface: cylinder: %w", ErrZeroNormal)
	}
	return &Cylinder{Center: c, Axis: axis.MulScalar(1 / l), Radius: r}, nil
}

// Side returns the half-space of p.
func (cy *Cylinder) Side(p v3.Vec) int {
	d := p.Sub(cy.Center)
	radial := d.Sub(cy.Axis.MulScalar(d.Dot(cy.Axis)))
	return sideOf(radial.Length() - cy.Radius)
}

// BoundingBox clips box along every axis perpendicular to the cylinder
// axis. Along any other axis the cylinder is unbounded and box is kept.
func (cy *Cylinder) BoundingBox(box sdf.Box3) sdf.Box3 {
	inner := box
	if math.Abs(cy.Axis.X) < Tolerance {
		inner.Min.X, inner.Max.X = cy.Center.X-cy.Radius, cy.Center.X+cy.Radius
	}
	if math.Abs(cy.Axis.Y) < Tolerance {
		inner.Min.Y, inner.Max.Y = cy.Center.Y-cy.Radius, cy.Center.Y+cy.Radius
	}
	if math.Abs(cy.Axis.Z) < Tolerance {
		inner.Min.Z, inner.Max.Z = cy.Center.Z-cy.Radius, cy.Center.Z+cy.Radius
	}
	return aabb.Clip(inner, box)
}

// Clone returns a copy of the cylinder.
func (cy *Cylinder) Clone() Surface {
	c := *cy
	return &c
}

func (cy *Cylinder) String() string {
	return fmt.Sprintf("cylinder c=(%g %g %g) a=(%g %g %g) r=%g",
		cy.Center.X, cy.Center.Y, cy.Center.Z, cy.Axis.X, cy.Axis.Y, cy.Axis.Z, cy.Radius)
}
