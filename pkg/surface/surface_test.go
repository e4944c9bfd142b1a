package surface

import (
	"testing"

	"github.com/chazu/halfspace/pkg/aabb"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaneSide(t *testing.T) {
	pl, err := NewPlane(v3.Vec{Z: 2}, 20) // z = 10
	require.NoError(t, err)
	assert.InDelta(t, 1.0, pl.Normal.Z, 1e-12)
	assert.InDelta(t, 10.0, pl.Dist, 1e-12)

	tests := []struct {
		name string
		p    v3.Vec
		want int
	}{
		{"above", v3.Vec{Z: 11}, 1},
		{"below", v3.Vec{Z: 5}, -1},
		{"on", v3.Vec{X: 3, Z: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pl.Side(tt.p))
		})
	}
}

func TestPlaneZeroNormal(t *testing.T) {
	_, err := NewPlane(v3.Vec{}, 1)
	assert.ErrorIs(t, err, ErrZeroNormal)
}

func TestPlaneBoundingBox(t *testing.T) {
	cand := aabb.Cube(10)

	t.Run("axis aligned", func(t *testing.T) {
		pl, err := NewPlane(v3.Vec{Z: 1}, 2)
		require.NoError(t, err)
		got := pl.BoundingBox(cand)
		want := aabb.New(v3.Vec{X: -10, Y: -10, Z: -10}, v3.Vec{X: 10, Y: 10, Z: 2})
		assert.True(t, aabb.Equal(want, got, 1e-9), "got %v", got)
	})

	t.Run("diagonal", func(t *testing.T) {
		pl, err := NewPlane(v3.Vec{X: 1, Y: 1}, 0) // x + y <= 0
		require.NoError(t, err)
		got := pl.BoundingBox(cand)
		assert.True(t, aabb.Equal(cand, got, 1e-9), "diagonal plane splits every axis extent fully, got %v", got)
	})

	t.Run("plane misses box", func(t *testing.T) {
		pl, err := NewPlane(v3.Vec{Z: 1}, -20) // z <= -20
		require.NoError(t, err)
		assert.Equal(t, cand, pl.BoundingBox(cand))
	})
}

func TestSphere(t *testing.T) {
	s, err := NewSphere(v3.Vec{X: 1}, 2)
	require.NoError(t, err)

	assert.Equal(t, -1, s.Side(v3.Vec{X: 1}))
	assert.Equal(t, 1, s.Side(v3.Vec{X: 4}))
	assert.Equal(t, 0, s.Side(v3.Vec{X: 3}))

	got := s.BoundingBox(aabb.Cube(10))
	assert.Equal(t, aabb.New(v3.Vec{X: -1, Y: -2, Z: -2}, v3.Vec{X: 3, Y: 2, Z: 2}), got)

	clipped := s.BoundingBox(aabb.Cube(1))
	assert.Equal(t, aabb.New(v3.Vec{X: -1, Y: -1, Z: -1}, v3.Vec{X: 1, Y: 1, Z: 1}), clipped)

	_, err = NewSphere(v3.Vec{}, 0)
	assert.ErrorIs(t, err, ErrBadRadius)
}

func TestCylinder(t *testing.T) {
	cy, err := NewCylinder(v3.Vec{}, v3.Vec{Z: 3}, 1)
	require.NoError(t, err)

	assert.Equal(t, -1, cy.Side(v3.Vec{Z: 100}))
	assert.Equal(t, 1, cy.Side(v3.Vec{X: 2, Z: -100}))

	got := cy.BoundingBox(aabb.Cube(10))
	assert.Equal(t, aabb.New(v3.Vec{X: -1, Y: -1, Z: -10}, v3.Vec{X: 1, Y: 1, Z: 10}), got)

	oblique, err := NewCylinder(v3.Vec{}, v3.Vec{X: 1, Z: 1}, 1)
	require.NoError(t, err)
	got = oblique.BoundingBox(aabb.Cube(10))
	assert.Equal(t, aabb.New(v3.Vec{X: -10, Y: -1, Z: -10}, v3.Vec{X: 10, Y: 1, Z: 10}), got)
}

func TestSDFBox(t *testing.T) {
	s, err := SDFBox(v3.Vec{X: 2, Y: 4, Z: 6}, v3.Vec{X: 10})
	require.NoError(t, err)

	assert.Equal(t, -1, s.Side(v3.Vec{X: 10}))
	assert.Equal(t, 1, s.Side(v3.Vec{}))

	got := s.BoundingBox(aabb.Cube(100))
	want := aabb.New(v3.Vec{X: 9, Y: -2, Z: -3}, v3.Vec{X: 11, Y: 2, Z: 3})
	assert.True(t, aabb.Equal(want, got, 1e-6), "got %v", got)
}

func TestSDFSphereAndCylinder(t *testing.T) {
	sp, err := SDFSphere(3, v3.Vec{})
	require.NoError(t, err)
	assert.Equal(t, -1, sp.Side(v3.Vec{X: 1}))
	assert.Equal(t, 1, sp.Side(v3.Vec{X: 5}))

	cy, err := SDFCylinder(10, 1, v3.Vec{})
	require.NoError(t, err)
	assert.Equal(t, -1, cy.Side(v3.Vec{Z: 4}))
	assert.Equal(t, 1, cy.Side(v3.Vec{Z: 6}))
}

func TestClone(t *testing.T) {
	pl, err := NewPlane(v3.Vec{Z: 1}, 0)
	require.NoError(t, err)
	c := pl.Clone().(*Plane)
	c.Dist = 5
	assert.Equal(t, 0.0, pl.Dist)
}

func TestClassify(t *testing.T) {
	lo, _ := NewPlane(v3.Vec{Z: 1}, 0)
	hi, _ := NewPlane(v3.Vec{Z: 1}, 10)
	surfaces := map[int]Surface{1: lo, 2: hi}

	m := Classify(v3.Vec{Z: 5}, surfaces)
	assert.Equal(t, SignMap{1: 1, 2: -1}, m)

	m = Classify(v3.Vec{Z: 10}, surfaces)
	assert.Equal(t, 0, m[2], "on-surface points keep side 0")
}
