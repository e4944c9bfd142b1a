package rule

import (
	"fmt"

	"github.com/chazu/halfspace/pkg/surface"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Status is a tri-state truth value.
type Status int

const (
	StatusUnknown Status = -1
	StatusFalse   Status = 0
	StatusTrue    Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusTrue:
		return "True"
	case StatusFalse:
		return "False"
	default:
		return "Unknown"
	}
}

// BoolValue is a constant leaf. Unknown classifies as outside.
type BoolValue struct {
	parent Rule
	status Status
}

var _ Rule = (*BoolValue)(nil)

// NewBoolValue returns a constant leaf.
func NewBoolValue(s Status) *BoolValue {
	return &BoolValue{status: s}
}

func (bv *BoolValue) Kind() Kind { return KindBoolValue }
func (bv *BoolValue) Type() int { return 0 }
func (bv *BoolValue) Parent() Rule { return bv.parent }
func (bv *BoolValue) setParent(p Rule) { bv.parent = p }

// Status returns the constant.
func (bv *BoolValue) Status() Status { return bv.status }

// SetStatus changes the constant. Values outside the tri-state map to
// Unknown.
func (bv *BoolValue) SetStatus(s Status) {
	switch s {
	case StatusTrue, StatusFalse:
		bv.status = s
	default:
		bv.status = StatusUnknown
	}
}

func (bv *BoolValue) Clone() Rule {
	return &BoolValue{status: bv.status}
}

func (bv *BoolValue) IsValid(v3.Vec) bool { return bv.status > 0 }

func (bv *BoolValue) IsValidMap(surface.SignMap) bool { return bv.status > 0 }

// BoundingBox returns box unchanged; a constant has no extent.
func (bv *BoolValue) BoundingBox(box sdf.Box3) sdf.Box3 { return box }

func (bv *BoolValue) Display() (string, error) {
	return bv.status.String(), nil
}

func (bv *BoolValue) DisplayAddress() (string, error) {
	return fmt.Sprintf("%s[%p]", bv.status, bv), nil
}

func (bv *BoolValue) FindLeaf(r Rule) Side {
	if r != nil && Rule(bv) == r {
		return Left
	}
	return NotFound
}

func (bv *BoolValue) FindKey(int) *SurfPoint { return nil }

// SetLeaf copies the status from another BoolValue.
func (bv *BoolValue) SetLeaf(r Rule, _ Side) error {
	o, ok := r.(*BoolValue)
	if !ok || o == nil {
		return fmt.Errorf("%w: bool-value cannot copy %s", ErrInvalidNodeKind, kindName(r))
	}
	bv.status = o.status
	return nil
}

func (bv *BoolValue) SetLeaves(a, _ Rule) error {
	return bv.SetLeaf(a, Left)
}

func (bv *BoolValue) IsComplementary() int { return 0 }

func (bv *BoolValue) Simplify() SimplifyResult { return Unchanged }

func (bv *BoolValue) replacement() Rule { return nil }

// negate returns a new constant with True and False swapped.
func (bv *BoolValue) negate() *BoolValue {
	switch bv.status {
	case StatusTrue:
		return NewBoolValue(StatusFalse)
	case StatusFalse:
		return NewBoolValue(StatusTrue)
	default:
		return NewBoolValue(StatusUnknown)
	}
}
