package rule

import (
	"strings"
	"testing"

	"github.com/chazu/halfspace/pkg/aabb"
	"github.com/chazu/halfspace/pkg/surface"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// zPlane returns the plane z == d with its positive side above.
func zPlane(t *testing.T, d float64) surface.Surface {
	t.Helper()
	pl, err := surface.NewPlane(v3.Vec{Z: 1}, d)
	require.NoError(t, err)
	return pl
}

// leaf returns a SurfPoint over a z-plane at height |key| for quick
// structural tests where the geometry does not matter.
func leaf(t *testing.T, signedKey int) *SurfPoint {
	t.Helper()
	k := signedKey
	if k < 0 {
		k = -k
	}
	return NewSurfPoint(zPlane(t, float64(k)), signedKey)
}

// slab returns the solid 0 < z < 10: the positive side of z=0 (key 1)
// and the negative side of z=10 (key 2).
func slab(t *testing.T) Rule {
	t.Helper()
	return NewIntersection(
		NewSurfPoint(zPlane(t, 0), 1),
		NewSurfPoint(zPlane(t, 10), -2),
	)
}

// fakeObject is a rule.Object with a fixed classification and box.
type fakeObject struct {
	name   string
	inside func(v3.Vec) bool
	key    int
	box    sdf.Box3
}

func (o *fakeObject) Name() string { return o.name }
func (o *fakeObject) IsValid(p v3.Vec) bool { return o.inside(p) }
func (o *fakeObject) IsValidMap(m surface.SignMap) bool { return m[o.key] > 0 }
func (o *fakeObject) BoundingBox(b sdf.Box3) sdf.Box3 {
	return aabb.Clip(o.box, b)
}

func display(t *testing.T, r Rule) string {
	t.Helper()
	s, err := r.Display()
	require.NoError(t, err)
	return s
}

// ---------------------------------------------------------------------------
// Point classification
// ---------------------------------------------------------------------------

func TestSlabIsValid(t *testing.T) {
	r := slab(t)
	tests := []struct {
		name string
		p    v3.Vec
		want bool
	}{
		{"inside", v3.Vec{Z: 5}, true},
		{"below", v3.Vec{Z: -1}, false},
		{"above", v3.Vec{Z: 11}, false},
		{"far sideways", v3.Vec{X: 1e6, Y: -1e6, Z: 2}, true},
		{"on lower face", v3.Vec{Z: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsValid(tt.p))
		})
	}
}

func TestIsValidMapAgreesWithDirectTest(t *testing.T) {
	r := NewUnion(slab(t), NewCompGrp(NewSurfPoint(zPlane(t, 20), 3)))
	surfaces := Surfaces(r)
	require.Len(t, surfaces, 3)

	for z := -5.5; z <= 30; z += 1.0 {
		p := v3.Vec{X: 1, Y: 2, Z: z}
		m := surface.Classify(p, surfaces)
		assert.Equal(t, r.IsValid(p), r.IsValidMap(m), "z=%g", z)
	}

	// Points exactly on each plane.
	for _, z := range []float64{0, 10, 20} {
		p := v3.Vec{X: 1, Y: 2, Z: z}
		assert.Equal(t, r.IsValid(p), r.IsValidMap(surface.Classify(p, surfaces)), "z=%g", z)
	}
	top := v3.Vec{Z: 10}
	assert.True(t, r.IsValidMap(surface.Classify(top, surfaces)), "the slab face belongs to the slab")
}

func TestSurfPointMapSingleSurface(t *testing.T) {
	s := zPlane(t, 0)
	for _, key := range []int{4, -4} {
		sp := NewSurfPoint(s, key)
		for _, z := range []float64{-3, 0, 3} {
			p := v3.Vec{Z: z}
			m := surface.SignMap{4: s.Side(p)}
			assert.Equal(t, sp.IsValid(p), sp.IsValidMap(m), "key=%d z=%g", key, z)
		}
	}
}

func TestSurfPointMissingKey(t *testing.T) {
	sp := leaf(t, 7)
	assert.False(t, sp.IsValidMap(surface.SignMap{1: 1}))
	assert.False(t, NewSurfPoint(nil, 7).IsValid(v3.Vec{}))
}

func TestSetKeyN(t *testing.T) {
	sp := &SurfPoint{}
	sp.SetKeyN(-12)
	assert.Equal(t, 12, sp.KeyN())
	assert.Equal(t, -1, sp.Sign())
	assert.Equal(t, -12, sp.SignedKey())

	sp.SetKeyN(3)
	assert.Equal(t, 3, sp.KeyN())
	assert.Equal(t, 1, sp.Sign())

	sp.SetKeyN(0)
	assert.Equal(t, 0, sp.KeyN())
	assert.Equal(t, 1, sp.Sign())
}

func TestBoolValue(t *testing.T) {
	p := v3.Vec{X: 3}
	assert.True(t, NewBoolValue(StatusTrue).IsValid(p))
	assert.False(t, NewBoolValue(StatusFalse).IsValid(p))
	assert.False(t, NewBoolValue(StatusUnknown).IsValid(p))
	assert.False(t, NewBoolValue(StatusUnknown).IsValidMap(nil))

	assert.Equal(t, "True", display(t, NewBoolValue(StatusTrue)))
	assert.Equal(t, "False", display(t, NewBoolValue(StatusFalse)))
	assert.Equal(t, "Unknown", display(t, NewBoolValue(StatusUnknown)))

	bv := NewBoolValue(StatusTrue)
	bv.SetStatus(Status(42))
	assert.Equal(t, StatusUnknown, bv.Status())
}

func TestCompGrpIsValid(t *testing.T) {
	p := v3.Vec{X: 1, Y: 1, Z: 1}
	assert.False(t, NewCompGrp(NewBoolValue(StatusTrue)).IsValid(p))
	assert.False(t, NewCompGrp(NewBoolValue(StatusUnknown)).IsValid(p))
	assert.False(t, NewCompGrp(NewBoolValue(StatusUnknown)).IsValidMap(surface.SignMap{}))
	assert.True(t, NewCompGrp(NewBoolValue(StatusFalse)).IsValid(p))
	assert.True(t, NewCompGrp(nil).IsValid(p))

	outside := NewCompGrp(slab(t))
	assert.True(t, outside.IsValid(v3.Vec{Z: 20}))
	assert.False(t, outside.IsValid(v3.Vec{Z: 5}))
}

func TestCompObjIsValid(t *testing.T) {
	ball := &fakeObject{
		name:   "ball",
		key:    9,
		inside: func(p v3.Vec) bool { return p.Length() < 1 },
		box:    aabb.Cube(1),
	}
	c := NewCompObj(4, ball)
	assert.False(t, c.IsValid(v3.Vec{}))
	assert.True(t, c.IsValid(v3.Vec{X: 2}))
	assert.False(t, c.IsValidMap(surface.SignMap{9: 1}))
	assert.True(t, c.IsValidMap(surface.SignMap{9: -1}))

	empty := NewCompObj(5, nil)
	assert.True(t, empty.IsValid(v3.Vec{}))
	assert.True(t, empty.IsValidMap(nil))

	assert.Equal(t, "#4", display(t, c))
	assert.Same(t, ball, c.Object())
}

// ---------------------------------------------------------------------------
// Display
// ---------------------------------------------------------------------------

func TestDisplayBracketing(t *testing.T) {
	tests := []struct {
		name string
		rule func() Rule
		want string
	}{
		{
			name: "intersection under union is bare",
			rule: func() Rule { return NewUnion(NewIntersection(leaf(t, 1), leaf(t, 2)), leaf(t, 3)) },
			want: "1 2 : 3",
		},
		{
			name: "intersection under intersection is bracketed",
			rule: func() Rule { return NewIntersection(NewIntersection(leaf(t, 1), leaf(t, 2)), leaf(t, 3)) },
			want: "(1 2) 3",
		},
		{
			name: "union under union is bracketed",
			rule: func() Rule { return NewUnion(leaf(t, 1), NewUnion(leaf(t, 2), leaf(t, -3))) },
			want: "1 : (2 : -3)",
		},
		{
			name: "union under intersection is bare",
			rule: func() Rule { return NewIntersection(NewUnion(leaf(t, 1), leaf(t, 2)), leaf(t, 3)) },
			want: "1 : 2 3",
		},
		{
			name: "complement group",
			rule: func() Rule { return NewIntersection(NewCompGrp(NewUnion(leaf(t, 1), leaf(t, 2))), leaf(t, -4)) },
			want: "#( 1 : 2 ) -4",
		},
		{
			name: "complement object",
			rule: func() Rule { return NewUnion(NewCompObj(7, nil), NewBoolValue(StatusUnknown)) },
			want: "#7 : Unknown",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, display(t, tt.rule()))
		})
	}
}

func TestDisplayIncomplete(t *testing.T) {
	for _, r := range []Rule{
		NewIntersection(leaf(t, 1), nil),
		NewUnion(nil, leaf(t, 1)),
		NewCompGrp(NewUnion(leaf(t, 1), nil)),
	} {
		_, err := r.Display()
		assert.ErrorIs(t, err, ErrIncomplete, "%s", r.Kind())
		_, err = r.DisplayAddress()
		assert.ErrorIs(t, err, ErrIncomplete, "%s", r.Kind())
	}
	assert.True(t, strings.HasPrefix(String(NewUnion(nil, nil)), "<rule: incomplete type"))
	assert.Equal(t, "#( )", display(t, NewCompGrp(nil)))
}

func TestIncompleteClassifiesOutside(t *testing.T) {
	p := v3.Vec{Z: 5}
	in := NewIntersection(NewBoolValue(StatusTrue), nil)
	u := NewUnion(nil, NewBoolValue(StatusTrue))
	assert.False(t, in.IsValid(p))
	assert.False(t, u.IsValid(p))
	assert.False(t, in.IsValidMap(surface.SignMap{}))
	assert.False(t, u.IsValidMap(surface.SignMap{}))

	box := aabb.Cube(3)
	assert.Equal(t, box, in.BoundingBox(box))
	assert.Equal(t, box, u.BoundingBox(box))
	assert.Equal(t, box, NewCompGrp(nil).BoundingBox(box))
}

func TestDisplayAddress(t *testing.T) {
	r := NewUnion(slab(t), NewCompGrp(NewCompObj(2, nil)))
	s, err := r.DisplayAddress()
	require.NoError(t, err)
	assert.Contains(t, s, "[0x")
	assert.Contains(t, s, " : ")
	assert.Contains(t, s, "-2[0x")
	assert.Contains(t, s, "#2[0x")
}

// ---------------------------------------------------------------------------
// Structure
// ---------------------------------------------------------------------------

func TestParentLinks(t *testing.T) {
	a, b, c := leaf(t, 1), leaf(t, 2), leaf(t, 3)
	in := NewIntersection(a, b)
	assert.Equal(t, Rule(in), a.Parent())
	assert.Equal(t, Rule(in), b.Parent())
	assert.Nil(t, in.Parent())

	require.NoError(t, in.SetLeaf(c, Left))
	assert.Nil(t, a.Parent(), "replaced child is released")
	assert.Equal(t, Rule(in), c.Parent())
	assert.Equal(t, Rule(c), in.Left())

	d, e := leaf(t, 4), leaf(t, 5)
	u := NewUnion(nil, nil)
	require.NoError(t, u.SetLeaves(d, e))
	assert.Equal(t, Rule(u), d.Parent())
	assert.Equal(t, Rule(u), e.Parent())

	g := NewCompGrp(u)
	assert.Equal(t, Rule(g), u.Parent())
	require.NoError(t, g.SetLeaves(in, leaf(t, 9)))
	assert.Nil(t, u.Parent())
	assert.Equal(t, Rule(in), g.Leaf())
}

func TestSetLeafRightForNonLeftSide(t *testing.T) {
	a, b, c := leaf(t, 1), leaf(t, 2), leaf(t, 3)
	u := NewUnion(a, b)
	require.NoError(t, u.SetLeaf(c, NotFound))
	assert.Equal(t, Rule(c), u.Right())
	assert.Equal(t, "1 : 3", display(t, u))
}

func TestClone(t *testing.T) {
	orig := NewUnion(slab(t), NewCompGrp(NewSurfPoint(zPlane(t, 20), 3)))
	cp := orig.Clone()

	assert.Equal(t, display(t, orig), display(t, cp))
	assert.Nil(t, cp.Parent())

	// Every node in the copy is new and parented inside the copy.
	origNodes := make(map[Rule]bool)
	Walk(orig, func(n Rule) bool {
		origNodes[n] = true
		return true
	})
	Walk(cp, func(n Rule) bool {
		assert.False(t, origNodes[n], "node %p shared with original", n)
		if n != cp {
			assert.NotNil(t, n.Parent())
			assert.NotEqual(t, NotFound, n.Parent().FindLeaf(n))
		}
		return true
	})

	// Mutating the copy leaves the original alone.
	sp := cp.FindKey(2)
	require.NotNil(t, sp)
	sp.SetKeyN(-8)
	sp.SetSurface(zPlane(t, 100))
	assert.Equal(t, "1 -2 : #( 3 )", display(t, orig))
	assert.Equal(t, "1 -8 : #( 3 )", display(t, cp))
	assert.False(t, orig.IsValid(v3.Vec{Z: 50}))
	assert.True(t, cp.IsValid(v3.Vec{Z: 50}))

	// Surfaces are cloned too.
	assert.NotSame(t, orig.FindKey(1).Surface(), cp.FindKey(1).Surface())
}

func TestFindLeaf(t *testing.T) {
	a, b := leaf(t, 1), leaf(t, 2)
	in := NewIntersection(a, b)
	assert.Equal(t, Left, in.FindLeaf(a))
	assert.Equal(t, Right, in.FindLeaf(b))
	assert.Equal(t, NotFound, in.FindLeaf(leaf(t, 1)))
	assert.Equal(t, NotFound, in.FindLeaf(nil))

	g := NewCompGrp(a)
	assert.Equal(t, Left, g.FindLeaf(a))
	assert.Equal(t, NotFound, g.FindLeaf(b))

	assert.Equal(t, Left, b.FindLeaf(b))
	assert.Equal(t, NotFound, b.FindLeaf(a))
	bv := NewBoolValue(StatusTrue)
	assert.Equal(t, Left, bv.FindLeaf(bv))
	co := NewCompObj(1, nil)
	assert.Equal(t, Left, co.FindLeaf(co))
}

func TestFindKey(t *testing.T) {
	hidden := leaf(t, 1)
	visible := leaf(t, -2)
	r := NewUnion(NewIntersection(NewCompGrp(hidden), visible), NewCompObj(3, nil))

	assert.Same(t, visible, r.FindKey(2))
	assert.Nil(t, r.FindKey(1), "complement groups are opaque to key search")
	assert.Nil(t, r.FindKey(3))
	assert.Nil(t, NewCompGrp(hidden).FindKey(1))
	assert.Same(t, hidden, hidden.FindKey(1))
}

func TestLeafSetLeaf(t *testing.T) {
	t.Run("surf point copies same kind", func(t *testing.T) {
		sp := leaf(t, 1)
		src := NewSurfPoint(zPlane(t, 3), -5)
		require.NoError(t, sp.SetLeaf(src, Left))
		assert.Equal(t, "-5", display(t, sp))
		assert.NotSame(t, src.Surface(), sp.Surface())
		assert.Equal(t, src.IsValid(v3.Vec{Z: 1}), sp.IsValid(v3.Vec{Z: 1}))
	})
	t.Run("surf point rejects other kinds", func(t *testing.T) {
		sp := leaf(t, 1)
		err := sp.SetLeaf(NewBoolValue(StatusTrue), Left)
		assert.ErrorIs(t, err, ErrInvalidNodeKind)
		assert.Equal(t, "1", display(t, sp))
		assert.ErrorIs(t, sp.SetLeaves(nil, nil), ErrInvalidNodeKind)
	})
	t.Run("comp obj", func(t *testing.T) {
		c := NewCompObj(1, nil)
		require.NoError(t, c.SetLeaves(NewCompObj(6, nil), nil))
		assert.Equal(t, "#6", display(t, c))
		assert.ErrorIs(t, c.SetLeaf(leaf(t, 1), Left), ErrInvalidNodeKind)
	})
	t.Run("bool value", func(t *testing.T) {
		bv := NewBoolValue(StatusFalse)
		require.NoError(t, bv.SetLeaf(NewBoolValue(StatusTrue), Right))
		assert.Equal(t, StatusTrue, bv.Status())
		assert.ErrorIs(t, bv.SetLeaf(NewCompObj(1, nil), Left), ErrInvalidNodeKind)
	})
}

func TestIsComplementary(t *testing.T) {
	tests := []struct {
		name string
		rule func() Rule
		want int
	}{
		{"plain", func() Rule { return NewIntersection(leaf(t, 1), leaf(t, 2)) }, 0},
		{"left group", func() Rule { return NewIntersection(NewCompGrp(leaf(t, 1)), leaf(t, 2)) }, 1},
		{"right object", func() Rule { return NewUnion(leaf(t, 1), NewCompObj(2, nil)) }, -1},
		{"both", func() Rule { return NewUnion(NewCompObj(1, nil), NewCompObj(2, nil)) }, 1},
		{"nested right", func() Rule {
			return NewUnion(NewIntersection(leaf(t, 1), NewCompObj(3, nil)), leaf(t, 2))
		}, 1},
		{"group", func() Rule { return NewCompGrp(leaf(t, 1)) }, 1},
		{"leaf", func() Rule { return leaf(t, 1) }, 0},
		{"constant", func() Rule { return NewBoolValue(StatusTrue) }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule().IsComplementary())
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "intersection", KindIntersection.String())
	assert.Equal(t, "bool-value", KindBoolValue.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
	assert.Equal(t, -1, NewIntersection(nil, nil).Type())
	assert.Equal(t, 1, NewUnion(nil, nil).Type())
	assert.Equal(t, 0, NewCompGrp(nil).Type())
}
