// Package model holds the surfaces and objects produced by evaluating a
// DSL file, and validates them as a whole.
package model

import (
	"errors"
	"fmt"
	"slices"

	"github.com/chazu/halfspace/pkg/aabb"
	"github.com/chazu/halfspace/pkg/object"
	"github.com/chazu/halfspace/pkg/surface"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

var (
	// ErrBadKey is returned for surface keys that are not positive.
	ErrBadKey = errors.New("model: surface key must be positive")
	// ErrDuplicate is returned when a surface key is defined twice.
	ErrDuplicate = errors.New("model: duplicate definition")
	// ErrNotFound is returned for unknown object names.
	ErrNotFound = errors.New("model: not found")
)

// DefaultWorld is the candidate box used when none is configured.
var DefaultWorld = aabb.Cube(1000)

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger passed to every object the model creates.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithWorld sets the candidate box for bounding-box queries.
func WithWorld(b sdf.Box3) Option {
	return func(m *Model) { m.World = b }
}

// Model is a set of keyed surfaces and named objects. A Model is built by
// a single goroutine; once built, its objects may be queried concurrently.
type Model struct {
	World sdf.Box3

	surfaces map[int]surface.Surface
	objects  []*object.Object
	byName   map[string]*object.Object
	log      *zap.Logger
}

// New returns an empty model.
func New(opts ...Option) *Model {
	m := &Model{
		World:    DefaultWorld,
		surfaces: make(map[int]surface.Surface),
		byName:   make(map[string]*object.Object),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ---------------------------------------------------------------------------
// Surfaces
// ---------------------------------------------------------------------------

// DefineSurface registers s under key.
func (m *Model) DefineSurface(key int, s surface.Surface) error {
	if key <= 0 {
		return fmt.Errorf("model: define surface %d: %w", key, ErrBadKey)
	}
	if _, ok := m.surfaces[key]; ok {
		return fmt.Errorf("model: define surface %d: %w", key, ErrDuplicate)
	}
	m.surfaces[key] = s
	m.log.Debug("surface defined", zap.Int("key", key), zap.Stringer("surface", s))
	return nil
}

// Surface returns the surface registered under key.
func (m *Model) Surface(key int) (surface.Surface, bool) {
	s, ok := m.surfaces[key]
	return s, ok
}

// SurfaceKeys returns the registered keys in ascending order.
func (m *Model) SurfaceKeys() []int {
	keys := make([]int, 0, len(m.surfaces))
	for k := range m.surfaces {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SignMap classifies p against every registered surface.
func (m *Model) SignMap(p v3.Vec) surface.SignMap {
	return surface.Classify(p, m.surfaces)
}

// ---------------------------------------------------------------------------
// Objects
// ---------------------------------------------------------------------------

// NewObject creates an object with the next display id and adds it to the
// model. Names are not checked here; ValidateAll reports duplicates.
func (m *Model) NewObject(name string) *object.Object {
	o := object.New(name,
		object.WithID(len(m.objects)+1),
		object.WithLogger(m.log),
	)
	m.AddObject(o)
	return o
}

// AddObject appends o. A later object with the same name shadows an
// earlier one in Object lookups.
func (m *Model) AddObject(o *object.Object) {
	m.objects = append(m.objects, o)
	m.byName[o.Name()] = o
}

// Object returns the object with the given name, or nil.
func (m *Model) Object(name string) *object.Object {
	return m.byName[name]
}

// ObjectByID returns the object with the given display id, or nil.
func (m *Model) ObjectByID(id int) *object.Object {
	for _, o := range m.objects {
		if o.ID() == id {
			return o
		}
	}
	return nil
}

// Objects returns the objects in definition order.
func (m *Model) Objects() []*object.Object {
	return slices.Clone(m.objects)
}

// BoundingBox returns the box of the named object within the world box.
func (m *Model) BoundingBox(name string) (sdf.Box3, error) {
	o := m.Object(name)
	if o == nil {
		return sdf.Box3{}, fmt.Errorf("model: bounding box %q: %w", name, ErrNotFound)
	}
	return o.BoundingBox(m.World), nil
}

// Containing returns the objects containing p, in definition order. Each
// surface is evaluated once. The model must be free of reference cycles
// (see ValidateAll).
func (m *Model) Containing(p v3.Vec) []*object.Object {
	sm := m.SignMap(p)
	var out []*object.Object
	for _, o := range m.objects {
		if o.IsValidMap(sm) {
			out = append(out, o)
		}
	}
	return out
}
