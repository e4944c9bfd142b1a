package model

import (
	"strings"
	"testing"

	"github.com/chazu/halfspace/pkg/aabb"
	"github.com/chazu/halfspace/pkg/object"
	"github.com/chazu/halfspace/pkg/rule"
	"github.com/chazu/halfspace/pkg/surface"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// slabModel defines surfaces 1 (z=0), 2 (z=10) and 3 (sphere r=2 at z=5),
// an object "slab" for 0 < z < 10 and an object "ball" inside the sphere.
func slabModel(t *testing.T) *Model {
	t.Helper()
	m := New(WithWorld(aabb.Cube(100)))

	lo, err := surface.NewPlane(v3.Vec{Z: 1}, 0)
	require.NoError(t, err)
	hi, err := surface.NewPlane(v3.Vec{Z: 1}, 10)
	require.NoError(t, err)
	ball, err := surface.NewSphere(v3.Vec{Z: 5}, 2)
	require.NoError(t, err)
	require.NoError(t, m.DefineSurface(1, lo))
	require.NoError(t, m.DefineSurface(2, hi))
	require.NoError(t, m.DefineSurface(3, ball))

	require.NoError(t, m.NewObject("slab").SetRule(rule.NewIntersection(sp(t, m, 1), sp(t, m, -2))))
	require.NoError(t, m.NewObject("ball").SetRule(sp(t, m, -3)))
	return m
}

func sp(t *testing.T, m *Model, signedKey int) *rule.SurfPoint {
	t.Helper()
	k := signedKey
	if k < 0 {
		k = -k
	}
	s, ok := m.Surface(k)
	require.True(t, ok, "surface %d", k)
	return rule.NewSurfPoint(s, signedKey)
}

func messages(errs []ValidationError) string {
	var b strings.Builder
	for _, e := range errs {
		b.WriteString(e.Error())
		b.WriteByte('\n')
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func TestDefineSurface(t *testing.T) {
	m := New()
	pl, err := surface.NewPlane(v3.Vec{X: 1}, 0)
	require.NoError(t, err)

	require.NoError(t, m.DefineSurface(4, pl))
	assert.ErrorIs(t, m.DefineSurface(4, pl), ErrDuplicate)
	assert.ErrorIs(t, m.DefineSurface(0, pl), ErrBadKey)
	assert.ErrorIs(t, m.DefineSurface(-1, pl), ErrBadKey)
	assert.Equal(t, []int{4}, m.SurfaceKeys())
	assert.Equal(t, DefaultWorld, m.World)
}

func TestObjectsAndIDs(t *testing.T) {
	m := slabModel(t)
	objs := m.Objects()
	require.Len(t, objs, 2)
	assert.Equal(t, "slab", objs[0].Name())
	assert.Equal(t, 1, objs[0].ID())
	assert.Equal(t, 2, objs[1].ID())
	assert.Same(t, objs[1], m.Object("ball"))
	assert.Same(t, objs[0], m.ObjectByID(1))
	assert.Nil(t, m.Object("nope"))
	assert.Nil(t, m.ObjectByID(9))
}

func TestContaining(t *testing.T) {
	m := slabModel(t)
	names := func(p v3.Vec) []string {
		var out []string
		for _, o := range m.Containing(p) {
			out = append(out, o.Name())
		}
		return out
	}
	assert.Equal(t, []string{"slab", "ball"}, names(v3.Vec{Z: 5}))
	assert.Equal(t, []string{"slab"}, names(v3.Vec{X: 3, Z: 5}))
	assert.Empty(t, names(v3.Vec{Z: 50}))
}

func TestBoundingBox(t *testing.T) {
	m := slabModel(t)
	b, err := m.BoundingBox("ball")
	require.NoError(t, err)
	assert.True(t, aabb.Equal(aabb.New(v3.Vec{X: -2, Y: -2, Z: 3}, v3.Vec{X: 2, Y: 2, Z: 7}), b, 1e-9))

	b, err = m.BoundingBox("slab")
	require.NoError(t, err)
	assert.InDelta(t, 10, b.Max.Z, 1e-9)

	_, err = m.BoundingBox("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func TestValidateClean(t *testing.T) {
	m := slabModel(t)
	res := ValidateAll(m)
	assert.True(t, res.OK(), messages(res.Errors))
	assert.Empty(t, res.Warnings)
}

func TestValidateStructure(t *testing.T) {
	m := slabModel(t)
	m.NewObject("blank")
	dup := m.NewObject("slab")
	require.NoError(t, dup.SetRule(sp(t, m, 1)))

	errs := Validate(m)
	msg := messages(errs)
	assert.Contains(t, msg, `object "blank": object has no rule`)
	assert.Contains(t, msg, `object "slab": duplicate object name`)
	for _, e := range errs {
		assert.Equal(t, SeverityError, e.Severity)
	}
}

func TestValidateSurfaceRefs(t *testing.T) {
	m := slabModel(t)
	stray, err := surface.NewPlane(v3.Vec{Y: 1}, 0)
	require.NoError(t, err)
	o := m.NewObject("stray")
	require.NoError(t, o.SetRule(rule.NewUnion(rule.NewSurfPoint(stray, 9), rule.NewSurfPoint(stray, -9))))

	errs := Validate(m)
	require.Len(t, errs, 1, messages(errs))
	assert.Equal(t, "stray", errs[0].Object)
	assert.Contains(t, errs[0].Message, "surface 9 is not defined")
}

func TestValidateObjectRefs(t *testing.T) {
	m := slabModel(t)
	outsider := object.New("outsider", object.WithID(2))
	require.NoError(t, outsider.SetRule(sp(t, m, 1)))

	o := m.NewObject("refs")
	require.NoError(t, o.SetRule(rule.NewUnion(
		rule.NewCompObj(7, nil),
		rule.NewCompObj(2, outsider),
	)))

	msg := messages(Validate(m))
	assert.Contains(t, msg, "complement #7 references no object")
	assert.Contains(t, msg, `complement #2 references "outsider"`)
}

func TestValidateCycle(t *testing.T) {
	m := slabModel(t)
	slab, ball := m.Object("slab"), m.Object("ball")

	require.NoError(t, slab.Edit(func(r rule.Rule) (rule.Rule, error) {
		return rule.NewIntersection(r, rule.NewCompObj(ball.ID(), ball)), nil
	}))
	assert.True(t, ValidateAll(m).OK())

	require.NoError(t, ball.Edit(func(r rule.Rule) (rule.Rule, error) {
		return rule.NewUnion(r, rule.NewCompObj(slab.ID(), slab)), nil
	}))
	res := ValidateAll(m)
	require.False(t, res.OK())
	assert.Contains(t, messages(res.Errors), "cycle detected")
	assert.Empty(t, res.Warnings, "advisory tier is skipped on errors")
}

func TestValidateWarnings(t *testing.T) {
	m := slabModel(t)
	extra, err := surface.NewPlane(v3.Vec{X: 1}, 3)
	require.NoError(t, err)
	require.NoError(t, m.DefineSurface(5, extra))

	require.NoError(t, m.NewObject("maybe").SetRule(rule.NewIntersection(sp(t, m, -3), rule.NewBoolValue(rule.StatusUnknown))))
	require.NoError(t, m.NewObject("outside-ball").SetRule(sp(t, m, 3)))

	res := ValidateAll(m)
	require.True(t, res.OK(), messages(res.Errors))

	var got []string
	for _, w := range res.Warnings {
		got = append(got, w.String())
	}
	assert.Equal(t, []string{
		`object "maybe": rule contains 1 Unknown constant(s)`,
		"surface 5 is never used",
		`object "outside-ball": bounding box fills the world box; the object may be unbounded`,
	}, got)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "ValidationSeverity(7)", ValidationSeverity(7).String())
	assert.Equal(t, "[error] model broken", ValidationError{Message: "model broken"}.Error())
}
