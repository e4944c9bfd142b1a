package rule

import (
	"fmt"

	"github.com/chazu/halfspace/pkg/surface"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// CompObj is a leaf standing for the complement of a named Object. The
// object is referenced, not owned.
type CompObj struct {
	parent Rule
	objN   int
	obj    Object
}

var _ Rule = (*CompObj)(nil)

// NewCompObj returns the complement of obj, displayed as "#objN".
func NewCompObj(objN int, obj Object) *CompObj {
	return &CompObj{objN: objN, obj: obj}
}

func (c *CompObj) Kind() Kind { return KindCompObj }
func (c *CompObj) Type() int { return 0 }
func (c *CompObj) Parent() Rule { return c.parent }
func (c *CompObj) setParent(p Rule) { c.parent = p }

// ObjN returns the display id.
func (c *CompObj) ObjN() int { return c.objN }

// SetObjN sets the display id.
func (c *CompObj) SetObjN(n int) { c.objN = n }

// Object returns the referenced object, or nil.
func (c *CompObj) Object() Object { return c.obj }

// SetObject changes the referenced object.
func (c *CompObj) SetObject(o Object) { c.obj = o }

// Clone returns a new leaf referring to the same object.
func (c *CompObj) Clone() Rule {
	return &CompObj{objN: c.objN, obj: c.obj}
}

// IsValid is the negation of the object's test. An empty complement
// excludes nothing.
func (c *CompObj) IsValid(p v3.Vec) bool {
	if c.obj == nil {
		return true
	}
	return !c.obj.IsValid(p)
}

// IsValidMap is IsValid against a precomputed sign map.
func (c *CompObj) IsValidMap(m surface.SignMap) bool {
	if c.obj == nil {
		return true
	}
	return !c.obj.IsValidMap(m)
}

// BoundingBox returns the complement box of the object's box.
func (c *CompObj) BoundingBox(box sdf.Box3) sdf.Box3 {
	if c.obj == nil {
		return box
	}
	return complementBoundingBox(box, c.obj.BoundingBox(box))
}

func (c *CompObj) Display() (string, error) {
	return fmt.Sprintf("#%d", c.objN), nil
}

func (c *CompObj) DisplayAddress() (string, error) {
	return fmt.Sprintf("#%d[%p]", c.objN, c), nil
}

// FindLeaf matches the leaf itself.
func (c *CompObj) FindLeaf(r Rule) Side {
	if r != nil && Rule(c) == r {
		return Left
	}
	return NotFound
}

// FindKey never looks through the complement boundary.
func (c *CompObj) FindKey(int) *SurfPoint { return nil }

// SetLeaf copies the id and object reference from another CompObj.
func (c *CompObj) SetLeaf(r Rule, _ Side) error {
	o, ok := r.(*CompObj)
	if !ok || o == nil {
		return fmt.Errorf("%w: comp-obj cannot copy %s", ErrInvalidNodeKind, kindName(r))
	}
	c.objN, c.obj = o.objN, o.obj
	return nil
}

// SetLeaves is SetLeaf(a, Left).
func (c *CompObj) SetLeaves(a, _ Rule) error {
	return c.SetLeaf(a, Left)
}

func (c *CompObj) IsComplementary() int { return 1 }

func (c *CompObj) Simplify() SimplifyResult { return Unchanged }

func (c *CompObj) replacement() Rule { return nil }
