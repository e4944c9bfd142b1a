package rule

import (
	"fmt"

	"github.com/chazu/halfspace/pkg/surface"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// CompGrp is the complement of an owned subtree.
type CompGrp struct {
	parent Rule
	a      Rule
}

var _ Rule = (*CompGrp)(nil)

// NewCompGrp takes ownership of a.
func NewCompGrp(a Rule) *CompGrp {
	g := &CompGrp{a: a}
	attach(g, a)
	return g
}

func (g *CompGrp) Kind() Kind { return KindCompGrp }
func (g *CompGrp) Type() int { return 0 }
func (g *CompGrp) Parent() Rule { return g.parent }
func (g *CompGrp) setParent(p Rule) { g.parent = p }

// Leaf returns the complemented subtree.
func (g *CompGrp) Leaf() Rule { return g.a }

// Clone returns a deep copy of the subtree.
func (g *CompGrp) Clone() Rule {
	return NewCompGrp(cloneOf(g.a))
}

// IsValid negates the child. Without a child nothing is excluded. The
// complement of an Unknown constant is still Unknown, so it stays outside.
func (g *CompGrp) IsValid(p v3.Vec) bool {
	if g.a == nil {
		return true
	}
	if g.unknown() {
		return false
	}
	return !g.a.IsValid(p)
}

// IsValidMap is IsValid against a precomputed sign map.
func (g *CompGrp) IsValidMap(m surface.SignMap) bool {
	if g.a == nil {
		return true
	}
	if g.unknown() {
		return false
	}
	return !g.a.IsValidMap(m)
}

func (g *CompGrp) unknown() bool {
	s, ok := statusOf(g.a)
	return ok && s == StatusUnknown
}

// BoundingBox returns the complement box of the child's box.
func (g *CompGrp) BoundingBox(box sdf.Box3) sdf.Box3 {
	if g.a == nil {
		return box
	}
	return complementBoundingBox(box, g.a.BoundingBox(box))
}

// Display renders "#( A )".
func (g *CompGrp) Display() (string, error) {
	if g.a == nil {
		return "#( )", nil
	}
	s, err := g.a.Display()
	if err != nil {
		return "", err
	}
	return "#( " + s + " )", nil
}

func (g *CompGrp) DisplayAddress() (string, error) {
	if g.a == nil {
		return fmt.Sprintf("#[%p]( )", g), nil
	}
	s, err := g.a.DisplayAddress()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("#[%p]( %s )", g, s), nil
}

// FindLeaf matches the single child.
func (g *CompGrp) FindLeaf(r Rule) Side {
	if g.a != nil && g.a == r {
		return Left
	}
	return NotFound
}

// FindKey never looks through the complement boundary.
func (g *CompGrp) FindKey(int) *SurfPoint { return nil }

// SetLeaf replaces the child; side is ignored.
func (g *CompGrp) SetLeaf(r Rule, _ Side) error {
	release(g, g.a)
	g.a = r
	attach(g, r)
	return nil
}

// SetLeaves replaces the child with a; b is ignored.
func (g *CompGrp) SetLeaves(a, _ Rule) error {
	return g.SetLeaf(a, Left)
}

func (g *CompGrp) IsComplementary() int { return 1 }

// Simplify simplifies the child, then removes double complements and
// complemented constants.
func (g *CompGrp) Simplify() SimplifyResult {
	if g.a == nil {
		return Unchanged
	}
	res := Unchanged
	if simplifyChild(g.a, func(r Rule) { g.SetLeaf(r, Left) }) {
		res = Reduced
	}
	switch c := g.a.(type) {
	case *CompGrp:
		// #( Unknown ) classifies outside, so #( #( Unknown ) ) is not Unknown.
		if s, ok := statusOf(c.a); ok && s == StatusUnknown {
			return res
		}
		if c.a != nil {
			return Replace
		}
	case *BoolValue:
		if c.status != StatusUnknown {
			return Replace
		}
	}
	return res
}

func (g *CompGrp) replacement() Rule {
	switch c := g.a.(type) {
	case *CompGrp:
		return c.a
	case *BoolValue:
		return c.negate()
	}
	return nil
}
