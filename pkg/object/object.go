// Package object provides a named solid that owns one rule tree and
// answers point and bounding-box queries against it.
//
// An Object is safe for concurrent use. Queries hold a read lock for the
// duration of the evaluation; SetRule and Edit publish a fully validated
// tree under the write lock, so readers never observe a partially built
// tree.
package object

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/chazu/halfspace/pkg/rule"
	"github.com/chazu/halfspace/pkg/surface"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// ErrNoRule is returned by operations that need a published tree.
var ErrNoRule = errors.New("object: no rule")

// Option configures an Object.
type Option func(*Object)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *Object) {
		if l != nil {
			o.log = l
		}
	}
}

// WithID sets the display id used when other trees reference this object.
func WithID(id int) Option {
	return func(o *Object) { o.id = id }
}

// Object is a named solid.
type Object struct {
	name string
	id   int
	log  *zap.Logger

	// editMu serialises Edit so concurrent edits cannot lose updates.
	editMu sync.Mutex

	mu       sync.RWMutex
	root     rule.Rule
	surfaces map[int]surface.Surface
	targets  []*Object
}

var _ rule.Object = (*Object)(nil)

// New returns an object with no rule. It classifies every point outside
// until SetRule succeeds.
func New(name string, opts ...Option) *Object {
	o := &Object{
		name: name,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Object) Name() string { return o.name }

// ID returns the display id.
func (o *Object) ID() int { return o.id }

// SetRule validates r and publishes it. The object takes ownership of r;
// callers must not edit it afterwards.
func (o *Object) SetRule(r rule.Rule) error {
	if err := rule.Validate(r); err != nil {
		return fmt.Errorf("object: set rule %q: %w", o.name, err)
	}
	o.publish(r)
	return nil
}

// Edit applies fn to a private copy of the current tree and publishes the
// result if it validates. fn receives nil when no rule is set. Concurrent
// Edits are applied one at a time.
func (o *Object) Edit(fn func(rule.Rule) (rule.Rule, error)) error {
	o.editMu.Lock()
	defer o.editMu.Unlock()

	next, err := fn(o.Rule())
	if err != nil {
		return fmt.Errorf("object: edit %q: %w", o.name, err)
	}
	if err := rule.Validate(next); err != nil {
		return fmt.Errorf("object: edit %q: %w", o.name, err)
	}
	o.publish(next)
	return nil
}

func (o *Object) publish(r rule.Rule) {
	surfaces := rule.Surfaces(r)
	var targets []*Object
	for _, c := range rule.CompObjs(r) {
		if t, ok := c.Object().(*Object); ok && t != nil {
			targets = append(targets, t)
		}
	}

	o.mu.Lock()
	o.root = r
	o.surfaces = surfaces
	o.targets = targets
	o.mu.Unlock()

	o.log.Debug("rule published",
		zap.String("object", o.name),
		zap.Int("nodes", rule.Size(r)),
		zap.Int("surfaces", len(surfaces)),
	)
}

// Rule returns a copy of the published tree, or nil.
func (o *Object) Rule() rule.Rule {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.root == nil {
		return nil
	}
	return o.root.Clone()
}

// HasRule reports whether a tree has been published.
func (o *Object) HasRule() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.root != nil
}

// IsValid reports whether p is inside the object.
func (o *Object) IsValid(p v3.Vec) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.root == nil {
		return false
	}
	return o.root.IsValid(p)
}

// IsValidMap reports whether the point classified by m is inside.
func (o *Object) IsValidMap(m surface.SignMap) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.root == nil {
		return false
	}
	return o.root.IsValidMap(m)
}

// SignMap classifies p against every surface this object depends on,
// including those of referenced objects, evaluating each surface once.
func (o *Object) SignMap(p v3.Vec) surface.SignMap {
	return surface.Classify(p, o.Surfaces())
}

// Surfaces returns the surfaces of this object and of every object it
// references through complements. For keys defined more than once the
// nearest definition wins.
func (o *Object) Surfaces() map[int]surface.Surface {
	out := make(map[int]surface.Surface)
	o.collect(out, make(map[*Object]bool))
	return out
}

func (o *Object) collect(out map[int]surface.Surface, seen map[*Object]bool) {
	if seen[o] {
		return
	}
	seen[o] = true

	o.mu.RLock()
	for k, s := range o.surfaces {
		if _, ok := out[k]; !ok {
			out[k] = s
		}
	}
	targets := o.targets
	o.mu.RUnlock()

	for _, t := range targets {
		t.collect(out, seen)
	}
}

// Keys returns the sorted surface keys used directly by the tree.
func (o *Object) Keys() []int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	keys := make([]int, 0, len(o.surfaces))
	for k := range o.surfaces {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// BoundingBox tightens box around the object. Without a rule box is
// returned unchanged.
func (o *Object) BoundingBox(box sdf.Box3) sdf.Box3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.root == nil {
		return box
	}
	return o.root.BoundingBox(box)
}

// Display renders the tree in infix form.
func (o *Object) Display() (string, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.root == nil {
		return "", fmt.Errorf("object: display %q: %w", o.name, ErrNoRule)
	}
	return o.root.Display()
}

// Simplify rewrites the tree with rule.Simplify and publishes the result.
// It reports the node count before and after.
func (o *Object) Simplify() (before, after int, err error) {
	err = o.Edit(func(r rule.Rule) (rule.Rule, error) {
		if r == nil {
			return nil, ErrNoRule
		}
		before = rule.Size(r)
		r = rule.Simplify(r)
		after = rule.Size(r)
		return r, nil
	})
	if err != nil {
		return 0, 0, err
	}
	o.log.Debug("rule simplified",
		zap.String("object", o.name),
		zap.Int("before", before),
		zap.Int("after", after),
	)
	return before, after, nil
}

func (o *Object) String() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return fmt.Sprintf("%s #%d: %s", o.name, o.id, rule.String(o.root))
}
