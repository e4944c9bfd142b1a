package rule

import (
	"fmt"

	"github.com/chazu/halfspace/pkg/aabb"
	"github.com/chazu/halfspace/pkg/surface"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Union is the logical OR of two owned children.
type Union struct {
	parent Rule
	a, b   Rule
}

var _ Rule = (*Union)(nil)

// NewUnion takes ownership of a and b. Either may be nil while the tree is
// under construction.
func NewUnion(a, b Rule) *Union {
	u := &Union{a: a, b: b}
	attach(u, a)
	attach(u, b)
	return u
}

// Left returns the first child.
func (u *Union) Left() Rule { return u.a }

// Right returns the second child.
func (u *Union) Right() Rule { return u.b }

func (u *Union) Kind() Kind { return KindUnion }
func (u *Union) Type() int { return 1 }
func (u *Union) Parent() Rule { return u.parent }
func (u *Union) setParent(p Rule) { u.parent = p }

func (u *Union) complete() bool {
	return u.a != nil && u.b != nil
}

// Clone returns a deep copy of the subtree.
func (u *Union) Clone() Rule {
	return NewUnion(cloneOf(u.a), cloneOf(u.b))
}

// IsValid reports whether p is inside either child. A missing child makes
// the node classify everything as outside.
func (u *Union) IsValid(p v3.Vec) bool {
	if !u.complete() {
		return false
	}
	return u.a.IsValid(p) || u.b.IsValid(p)
}

// IsValidMap is IsValid against a precomputed sign map.
func (u *Union) IsValidMap(m surface.SignMap) bool {
	if !u.complete() {
		return false
	}
	return u.a.IsValidMap(m) || u.b.IsValidMap(m)
}

// BoundingBox computes both children's boxes from the same candidate and
// keeps the looser bound on every side.
func (u *Union) BoundingBox(box sdf.Box3) sdf.Box3 {
	if !u.complete() {
		return box
	}
	return aabb.Looser(u.a.BoundingBox(box), u.b.BoundingBox(box))
}

// Display renders "A : B", bracketing children that are themselves
// unions.
func (u *Union) Display() (string, error) {
	return u.display(false)
}

// DisplayAddress renders the tree annotated with node addresses.
func (u *Union) DisplayAddress() (string, error) {
	return u.display(true)
}

func (u *Union) display(address bool) (string, error) {
	if !u.complete() {
		return "", fmt.Errorf("%w: union", ErrIncomplete)
	}
	left, err := displayChild(u.a, 1, address)
	if err != nil {
		return "", err
	}
	right, err := displayChild(u.b, 1, address)
	if err != nil {
		return "", err
	}
	if address {
		return fmt.Sprintf("[%p] %s : %s", u, left, right), nil
	}
	return left + " : " + right, nil
}

// FindLeaf reports which slot holds r.
func (u *Union) FindLeaf(r Rule) Side {
	switch {
	case u.a != nil && u.a == r:
		return Left
	case u.b != nil && u.b == r:
		return Right
	default:
		return NotFound
	}
}

// FindKey searches the left subtree, then the right.
func (u *Union) FindKey(key int) *SurfPoint {
	if u.a != nil {
		if sp := u.a.FindKey(key); sp != nil {
			return sp
		}
	}
	if u.b != nil {
		return u.b.FindKey(key)
	}
	return nil
}

// SetLeaf replaces the child at side (Left, or Right for anything else).
// The old child is released.
func (u *Union) SetLeaf(r Rule, side Side) error {
	if side == Left {
		release(u, u.a)
		u.a = r
	} else {
		release(u, u.b)
		u.b = r
	}
	attach(u, r)
	return nil
}

// SetLeaves replaces both children.
func (u *Union) SetLeaves(a, b Rule) error {
	release(u, u.a)
	release(u, u.b)
	u.a, u.b = a, b
	attach(u, a)
	attach(u, b)
	return nil
}

// IsComplementary reports where a complement occurs below the node.
func (u *Union) IsComplementary() int {
	if u.a != nil && u.a.IsComplementary() != 0 {
		return 1
	}
	if u.b != nil && u.b.IsComplementary() != 0 {
		return -1
	}
	return 0
}

// Simplify applies, after simplifying both children:
//
//	x True  -> True
//	x False -> x
//	S S     -> S
//	S -S    -> True
func (u *Union) Simplify() SimplifyResult {
	if !u.complete() {
		return Unchanged
	}
	res := Unchanged
	if simplifyChild(u.a, func(r Rule) { u.SetLeaf(r, Left) }) {
		res = Reduced
	}
	if simplifyChild(u.b, func(r Rule) { u.SetLeaf(r, Right) }) {
		res = Reduced
	}

	sa, okA := statusOf(u.a)
	sb, okB := statusOf(u.b)
	switch {
	case okA && sa == StatusTrue:
		u.SetLeaf(nil, Right)
		return Replace
	case okB && sb == StatusTrue:
		u.SetLeaf(nil, Left)
		return Replace
	case okA && sa == StatusFalse:
		u.SetLeaf(nil, Left)
		return Replace
	case okB && sb == StatusFalse:
		u.SetLeaf(nil, Right)
		return Replace
	}

	if pa, pb, ok := surfPair(u.a, u.b); ok {
		if pa.sign == pb.sign {
			u.SetLeaf(nil, Right)
		} else {
			u.SetLeaves(NewBoolValue(StatusTrue), nil)
		}
		return Replace
	}
	return res
}

func (u *Union) replacement() Rule {
	return soleChild(u.a, u.b)
}
