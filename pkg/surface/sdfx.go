package surface

import (
	"fmt"

	"github.com/chazu/halfspace/pkg/aabb"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// SDF adapts an sdfx signed distance field to a Surface. sdfx fields are
// negative inside, so the inside is the negative half-space.
type SDF struct {
	s    sdf.SDF3
	desc string
}

var _ Surface = (*SDF)(nil)

// NewSDF wraps s. desc is used by String.
func NewSDF(s sdf.SDF3, desc string) *SDF {
	return &SDF{s: s, desc: desc}
}

// SDFBox returns a closed box of the given size centred on center.
func SDFBox(size, center v3.Vec) (*SDF, error) {
	s, err := sdf.Box3D(size, 0)
	if err != nil {
		return nil, fmt.Errorf("surface: sdfx.Box3D: %w", err)
	}
	s = sdf.Transform3D(s, sdf.Translate3d(center))
	return NewSDF(s, fmt.Sprintf("sdf-box size=(%g %g %g) c=(%g %g %g)",
		size.X, size.Y, size.Z, center.X, center.Y, center.Z)), nil
}

// SDFSphere returns a sphere of the given radius centred on center.
func SDFSphere(radius float64, center v3.Vec) (*SDF, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("surface: sdfx.Sphere3D: %w", err)
	}
	s = sdf.Transform3D(s, sdf.Translate3d(center))
	return NewSDF(s, fmt.Sprintf("sdf-sphere r=%g c=(%g %g %g)", radius, center.X, center.Y, center.Z)), nil
}

// SDFCylinder returns a finite, capped cylinder along Z centred on center.
func SDFCylinder(height, radius float64, center v3.Vec) (*SDF, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("surface: sdfx.Cylinder3D: %w", err)
	}
	s = sdf.Transform3D(s, sdf.Translate3d(center))
	return NewSDF(s, fmt.Sprintf("sdf-cylinder h=%g r=%g c=(%g %g %g)",
		height, radius, center.X, center.Y, center.Z)), nil
}

// Field returns the wrapped distance field.
func (s *SDF) Field() sdf.SDF3 {
	return s.s
}

// Side returns the half-space of p.
func (s *SDF) Side(p v3.Vec) int {
	return sideOf(s.s.Evaluate(p))
}

// BoundingBox returns the field's own box clipped to box.
func (s *SDF) BoundingBox(box sdf.Box3) sdf.Box3 {
	return aabb.Clip(s.s.BoundingBox(), box)
}

// Clone returns a new wrapper. sdfx fields are immutable, so the field
// itself is shared.
func (s *SDF) Clone() Surface {
	c := *s
	return &c
}

func (s *SDF) String() string {
	return s.desc
}
