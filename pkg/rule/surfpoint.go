package rule

import (
	"fmt"
	"strconv"

	"github.com/chazu/halfspace/pkg/surface"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// SurfPoint is a leaf selecting one half-space of a surface. The signed
// key -3 means "the negative side of surface 3".
type SurfPoint struct {
	parent Rule
	surf   surface.Surface
	keyN   int // >= 0
	sign   int // -1 or 1
}

var _ Rule = (*SurfPoint)(nil)

// NewSurfPoint returns a leaf for the signed key. The leaf owns a clone of
// s; s may be nil and attached later with SetSurface.
func NewSurfPoint(s surface.Surface, signedKey int) *SurfPoint {
	sp := &SurfPoint{}
	sp.SetKeyN(signedKey)
	sp.SetSurface(s)
	return sp
}

func (sp *SurfPoint) Kind() Kind { return KindSurfPoint }
func (sp *SurfPoint) Type() int { return 0 }
func (sp *SurfPoint) Parent() Rule { return sp.parent }
func (sp *SurfPoint) setParent(p Rule) { sp.parent = p }

// SetKeyN splits a signed key into sign and absolute key.
func (sp *SurfPoint) SetKeyN(k int) {
	sp.sign = 1
	if k < 0 {
		sp.sign = -1
	}
	sp.keyN = sp.sign * k
}

// KeyN returns the absolute surface key.
func (sp *SurfPoint) KeyN() int { return sp.keyN }

// Sign returns -1 or 1.
func (sp *SurfPoint) Sign() int { return sp.sign }

// SignedKey returns sign*keyN.
func (sp *SurfPoint) SignedKey() int { return sp.sign * sp.keyN }

// Surface returns the owned surface, or nil.
func (sp *SurfPoint) Surface() surface.Surface { return sp.surf }

// SetSurface stores a clone of s.
func (sp *SurfPoint) SetSurface(s surface.Surface) {
	if s == nil {
		sp.surf = nil
		return
	}
	sp.surf = s.Clone()
}

// Clone returns a copy owning its own surface clone.
func (sp *SurfPoint) Clone() Rule {
	c := &SurfPoint{keyN: sp.keyN, sign: sp.sign}
	c.SetSurface(sp.surf)
	return c
}

// IsValid reports whether p lies on the selected side of the surface.
// Points on the surface belong to both sides. Without a surface nothing
// is inside.
func (sp *SurfPoint) IsValid(p v3.Vec) bool {
	if sp.surf == nil {
		return false
	}
	return sp.surf.Side(p)*sp.sign >= 0
}

// IsValidMap looks up the key in m. An absent key is outside.
func (sp *SurfPoint) IsValidMap(m surface.SignMap) bool {
	side, ok := m[sp.keyN]
	if !ok {
		return false
	}
	return side*sp.sign >= 0
}

// BoundingBox forwards to the surface's own box for the negative side.
// For the positive side it returns the complement of that box within the
// candidate.
func (sp *SurfPoint) BoundingBox(box sdf.Box3) sdf.Box3 {
	if sp.surf == nil {
		return box
	}
	if sp.sign < 1 {
		return sp.surf.BoundingBox(box)
	}
	return complementBoundingBox(box, sp.surf.BoundingBox(box))
}

// Display renders the signed key.
func (sp *SurfPoint) Display() (string, error) {
	return sp.signedKey(), nil
}

// DisplayAddress renders the signed key with the node address.
func (sp *SurfPoint) DisplayAddress() (string, error) {
	return fmt.Sprintf("%s[%p]", sp.signedKey(), sp), nil
}

func (sp *SurfPoint) signedKey() string {
	if sp.sign < 0 {
		return "-" + strconv.Itoa(sp.keyN)
	}
	return strconv.Itoa(sp.keyN)
}

// FindLeaf matches the leaf itself.
func (sp *SurfPoint) FindLeaf(r Rule) Side {
	if r != nil && Rule(sp) == r {
		return Left
	}
	return NotFound
}

// FindKey returns sp when its absolute key matches.
func (sp *SurfPoint) FindKey(key int) *SurfPoint {
	if sp.keyN == key {
		return sp
	}
	return nil
}

// SetLeaf copies key, sign and surface from another SurfPoint.
func (sp *SurfPoint) SetLeaf(r Rule, _ Side) error {
	o, ok := r.(*SurfPoint)
	if !ok || o == nil {
		return fmt.Errorf("%w: surf-point cannot copy %s", ErrInvalidNodeKind, kindName(r))
	}
	if o == sp {
		return nil
	}
	sp.keyN, sp.sign = o.keyN, o.sign
	sp.SetSurface(o.surf)
	return nil
}

// SetLeaves is SetLeaf(a, Left).
func (sp *SurfPoint) SetLeaves(a, _ Rule) error {
	return sp.SetLeaf(a, Left)
}

func (sp *SurfPoint) IsComplementary() int { return 0 }

func (sp *SurfPoint) Simplify() SimplifyResult { return Unchanged }

func (sp *SurfPoint) replacement() Rule { return nil }

// kindName names r's kind for error messages.
func kindName(r Rule) string {
	if r == nil {
		return "nil"
	}
	return r.Kind().String()
}
