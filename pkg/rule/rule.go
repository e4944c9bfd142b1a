// Package rule implements the boolean expression tree that defines a solid
// as a composition of signed half-spaces.
//
// A tree is made of six node kinds: Intersection and Union (binary),
// CompGrp (unary complement), and the leaves SurfPoint, CompObj and
// BoolValue. Interior nodes own their children exclusively; Clone always
// returns a fully independent subtree. Parent links are maintained on
// every structural edit but are informational only.
//
// Trees are not safe for concurrent mutation. The owner (see package
// object) must publish a tree for querying only after edits complete.
package rule

import (
	"errors"
	"fmt"

	"github.com/chazu/halfspace/pkg/surface"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	// ErrIncomplete is returned when a binary or unary node is missing a
	// child.
	ErrIncomplete = errors.New("rule: incomplete type")

	// ErrInvalidNodeKind is returned when a leaf is asked to copy a node of
	// a different kind.
	ErrInvalidNodeKind = errors.New("rule: invalid node kind")

	// ErrSharedNode is returned by Validate when a node is reachable twice.
	ErrSharedNode = errors.New("rule: node shared within tree")
)

// Kind enumerates the node variants.
type Kind int

const (
	KindIntersection Kind = iota
	KindUnion
	KindCompGrp
	KindSurfPoint
	KindCompObj
	KindBoolValue
)

func (k Kind) String() string {
	switch k {
	case KindIntersection:
		return "intersection"
	case KindUnion:
		return "union"
	case KindCompGrp:
		return "comp-grp"
	case KindSurfPoint:
		return "surf-point"
	case KindCompObj:
		return "comp-obj"
	case KindBoolValue:
		return "bool-value"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Side names a child slot of a binary node.
type Side int

const (
	NotFound Side = -1
	Left     Side = 0
	Right    Side = 1
)

// SimplifyResult is the outcome of Rule.Simplify.
type SimplifyResult int

const (
	// Replace means the caller must substitute the node with its single
	// remaining child.
	Replace SimplifyResult = -1
	// Unchanged means no rewrite applied.
	Unchanged SimplifyResult = 0
	// Reduced means clauses below the node were removed and the node is
	// kept.
	Reduced SimplifyResult = 1
)

// Object is a named solid that a CompObj leaf may reference. The leaf does
// not own it.
type Object interface {
	Name() string
	IsValid(p v3.Vec) bool
	IsValidMap(m surface.SignMap) bool
	BoundingBox(box sdf.Box3) sdf.Box3
}

// Rule is a node of the expression tree. The set of implementations is
// closed: Intersection, Union, CompGrp, SurfPoint, CompObj and BoolValue.
type Rule interface {
	Kind() Kind

	// Type is the bracketing tag used by Display: -1 for Intersection, 1
	// for Union and 0 for every other kind.
	Type() int

	// Parent returns the owning node, or nil at the root.
	Parent() Rule

	// Clone returns an independent deep copy with no parent.
	Clone() Rule

	// IsValid reports whether p lies inside the solid.
	IsValid(p v3.Vec) bool

	// IsValidMap is IsValid with each surface pre-classified in m.
	IsValidMap(m surface.SignMap) bool

	// BoundingBox tightens the candidate box around the solid.
	BoundingBox(box sdf.Box3) sdf.Box3

	Display() (string, error)
	DisplayAddress() (string, error)

	// FindLeaf reports which child slot holds r, by identity.
	FindLeaf(r Rule) Side

	// FindKey returns the SurfPoint leaf with the given key, or nil. Key
	// search does not descend into complements.
	FindKey(key int) *SurfPoint

	SetLeaf(r Rule, side Side) error
	SetLeaves(a, b Rule) error

	// IsComplementary returns 1 if a complement exists in the left of the
	// subtree, -1 if only in the right, and 0 otherwise.
	IsComplementary() int

	Simplify() SimplifyResult

	setParent(p Rule)
	// replacement returns the node that substitutes this one after
	// Simplify answered Replace.
	replacement() Rule
}

// attach makes parent the owner of child.
func attach(parent, child Rule) {
	if child != nil {
		child.setParent(parent)
	}
}

// release clears child's parent link if parent owns it.
func release(parent, child Rule) {
	if child != nil && child.Parent() == parent {
		child.setParent(nil)
	}
}

// cloneOf clones r, passing nil through.
func cloneOf(r Rule) Rule {
	if r == nil {
		return nil
	}
	return r.Clone()
}

// displayChild renders child, bracketing it when its Type equals bracket.
func displayChild(child Rule, bracket int, address bool) (string, error) {
	var (
		s   string
		err error
	)
	if address {
		s, err = child.DisplayAddress()
	} else {
		s, err = child.Display()
	}
	if err != nil {
		return "", err
	}
	if child.Type() == bracket {
		return "(" + s + ")", nil
	}
	return s, nil
}

// String renders r for logs; incomplete trees render as a placeholder.
func String(r Rule) string {
	if r == nil {
		return "<nil>"
	}
	s, err := r.Display()
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return s
}
