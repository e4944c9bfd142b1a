package rule

import (
	"fmt"

	"github.com/chazu/halfspace/pkg/aabb"
	"github.com/chazu/halfspace/pkg/surface"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Intersection is the logical AND of two owned children.
type Intersection struct {
	parent Rule
	a, b   Rule
}

var _ Rule = (*Intersection)(nil)

// NewIntersection takes ownership of a and b. Either may be nil while the
// tree is under construction.
func NewIntersection(a, b Rule) *Intersection {
	in := &Intersection{a: a, b: b}
	attach(in, a)
	attach(in, b)
	return in
}

// Left returns the first child.
func (in *Intersection) Left() Rule { return in.a }

// Right returns the second child.
func (in *Intersection) Right() Rule { return in.b }

func (in *Intersection) Kind() Kind { return KindIntersection }
func (in *Intersection) Type() int { return -1 }
func (in *Intersection) Parent() Rule { return in.parent }
func (in *Intersection) setParent(p Rule) { in.parent = p }

func (in *Intersection) complete() bool {
	return in.a != nil && in.b != nil
}

// Clone returns a deep copy of the subtree.
func (in *Intersection) Clone() Rule {
	return NewIntersection(cloneOf(in.a), cloneOf(in.b))
}

// IsValid reports whether p is inside both children. A missing child
// makes the node classify everything as outside.
func (in *Intersection) IsValid(p v3.Vec) bool {
	if !in.complete() {
		return false
	}
	return in.a.IsValid(p) && in.b.IsValid(p)
}

// IsValidMap is IsValid against a precomputed sign map.
func (in *Intersection) IsValidMap(m surface.SignMap) bool {
	if !in.complete() {
		return false
	}
	return in.a.IsValidMap(m) && in.b.IsValidMap(m)
}

// BoundingBox computes both children's boxes from the same candidate and
// keeps the tighter bound on every side.
func (in *Intersection) BoundingBox(box sdf.Box3) sdf.Box3 {
	if !in.complete() {
		return box
	}
	return aabb.Tighter(in.a.BoundingBox(box), in.b.BoundingBox(box))
}

// Display renders "A B", bracketing children that are themselves
// intersections.
func (in *Intersection) Display() (string, error) {
	return in.display(false)
}

// DisplayAddress renders the tree annotated with node addresses.
func (in *Intersection) DisplayAddress() (string, error) {
	return in.display(true)
}

func (in *Intersection) display(address bool) (string, error) {
	if !in.complete() {
		return "", fmt.Errorf("%w: intersection", ErrIncomplete)
	}
	left, err := displayChild(in.a, -1, address)
	if err != nil {
		return "", err
	}
	right, err := displayChild(in.b, -1, address)
	if err != nil {
		return "", err
	}
	if address {
		return fmt.Sprintf("[%p] %s %s", in, left, right), nil
	}
	return left + " " + right, nil
}

// FindLeaf reports which slot holds r.
func (in *Intersection) FindLeaf(r Rule) Side {
	switch {
	case in.a != nil && in.a == r:
		return Left
	case in.b != nil && in.b == r:
		return Right
	default:
		return NotFound
	}
}

// FindKey searches the left subtree, then the right.
func (in *Intersection) FindKey(key int) *SurfPoint {
	if in.a != nil {
		if sp := in.a.FindKey(key); sp != nil {
			return sp
		}
	}
	if in.b != nil {
		return in.b.FindKey(key)
	}
	return nil
}

// SetLeaf replaces the child at side (Left, or Right for anything else).
// The old child is released.
func (in *Intersection) SetLeaf(r Rule, side Side) error {
	if side == Left {
		release(in, in.a)
		in.a = r
	} else {
		release(in, in.b)
		in.b = r
	}
	attach(in, r)
	return nil
}

// SetLeaves replaces both children.
func (in *Intersection) SetLeaves(a, b Rule) error {
	release(in, in.a)
	release(in, in.b)
	in.a, in.b = a, b
	attach(in, a)
	attach(in, b)
	return nil
}

// IsComplementary reports where a complement occurs below the node.
func (in *Intersection) IsComplementary() int {
	if in.a != nil && in.a.IsComplementary() != 0 {
		return 1
	}
	if in.b != nil && in.b.IsComplementary() != 0 {
		return -1
	}
	return 0
}

// Simplify applies, after simplifying both children:
//
//	x False -> False
//	x True  -> x
//	S S     -> S
//	S -S    -> False
func (in *Intersection) Simplify() SimplifyResult {
	if !in.complete() {
		return Unchanged
	}
	res := Unchanged
	if simplifyChild(in.a, func(r Rule) { in.SetLeaf(r, Left) }) {
		res = Reduced
	}
	if simplifyChild(in.b, func(r Rule) { in.SetLeaf(r, Right) }) {
		res = Reduced
	}

	sa, okA := statusOf(in.a)
	sb, okB := statusOf(in.b)
	switch {
	case okA && sa == StatusFalse:
		in.SetLeaf(nil, Right)
		return Replace
	case okB && sb == StatusFalse:
		in.SetLeaf(nil, Left)
		return Replace
	case okA && sa == StatusTrue:
		in.SetLeaf(nil, Left)
		return Replace
	case okB && sb == StatusTrue:
		in.SetLeaf(nil, Right)
		return Replace
	}

	// S -S is left alone: it still holds the points on the surface.
	if pa, pb, ok := surfPair(in.a, in.b); ok && pa.sign == pb.sign {
		in.SetLeaf(nil, Right)
		return Replace
	}
	return res
}

func (in *Intersection) replacement() Rule {
	return soleChild(in.a, in.b)
}
