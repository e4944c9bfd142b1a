package model

import (
	"fmt"

	"github.com/chazu/halfspace/pkg/aabb"
	"github.com/chazu/halfspace/pkg/object"
	"github.com/chazu/halfspace/pkg/rule"
)

// ValidationSeverity indicates whether a finding blocks queries or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks queries
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Object   string             // object name (empty if model-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Object == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] object %q: %s", e.Severity, e.Object, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	Object  string
	Message string
}

func (w ValidationWarning) String() string {
	if w.Object == "" {
		return w.Message
	}
	return fmt.Sprintf("object %q: %s", w.Object, w.Message)
}

// ValidationResult bundles errors (blocking) and warnings (advisory) from
// all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether no blocking errors were found.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs the structural and reference checks and returns every
// finding. An empty slice means the model can be queried safely. It never
// mutates the model.
func Validate(m *Model) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateStructure(m)...)
	errs = append(errs, validateNames(m)...)
	errs = append(errs, validateSurfaceRefs(m)...)
	errs = append(errs, validateObjectRefs(m)...)
	errs = append(errs, validateAcyclic(m)...)
	return errs
}

// ValidateAll runs all tiers and separates errors from warnings. The
// advisory tier is skipped while blocking errors remain, since bounding
// boxes cannot be computed safely over a broken model.
func ValidateAll(m *Model) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(m) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Object:  e.Object,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	if len(result.Errors) == 0 {
		result.Warnings = append(result.Warnings, validateAdvisory(m)...)
	}
	return result
}

// ---------------------------------------------------------------------------
// Tier 1: structure
// ---------------------------------------------------------------------------

// validateStructure checks every object holds a complete, unshared tree.
func validateStructure(m *Model) []ValidationError {
	var errs []ValidationError
	for _, o := range m.objects {
		r := o.Rule()
		if r == nil {
			errs = append(errs, ValidationError{
				Object:   o.Name(),
				Message:  "object has no rule",
				Severity: SeverityError,
			})
			continue
		}
		if err := rule.Validate(r); err != nil {
			errs = append(errs, ValidationError{
				Object:   o.Name(),
				Message:  err.Error(),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateNames checks object names are unique and non-empty.
func validateNames(m *Model) []ValidationError {
	var errs []ValidationError
	count := make(map[string]int)
	for _, o := range m.objects {
		if o.Name() == "" {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("object #%d has an empty name", o.ID()),
				Severity: SeverityError,
			})
			continue
		}
		count[o.Name()]++
		if count[o.Name()] == 2 {
			errs = append(errs, ValidationError{
				Object:   o.Name(),
				Message:  "duplicate object name",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// ---------------------------------------------------------------------------
// Tier 2: references
// ---------------------------------------------------------------------------

// validateSurfaceRefs checks every surface key used by a tree is defined
// in the model.
func validateSurfaceRefs(m *Model) []ValidationError {
	var errs []ValidationError
	for _, o := range m.objects {
		reported := make(map[int]bool)
		for _, sp := range rule.SurfPoints(o.Rule()) {
			k := sp.KeyN()
			if reported[k] {
				continue
			}
			if _, ok := m.surfaces[k]; !ok {
				reported[k] = true
				errs = append(errs, ValidationError{
					Object:   o.Name(),
					Message:  fmt.Sprintf("surface %d is not defined", k),
					Severity: SeverityError,
				})
			} else if sp.Surface() == nil {
				reported[k] = true
				errs = append(errs, ValidationError{
					Object:   o.Name(),
					Message:  fmt.Sprintf("surface %d is not attached to its leaf", k),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateObjectRefs checks every complemented object belongs to the model
// under the id its leaf displays.
func validateObjectRefs(m *Model) []ValidationError {
	var errs []ValidationError
	for _, o := range m.objects {
		for _, c := range rule.CompObjs(o.Rule()) {
			target, _ := c.Object().(*object.Object)
			switch {
			case target == nil:
				errs = append(errs, ValidationError{
					Object:   o.Name(),
					Message:  fmt.Sprintf("complement #%d references no object", c.ObjN()),
					Severity: SeverityError,
				})
			case m.ObjectByID(c.ObjN()) != target:
				errs = append(errs, ValidationError{
					Object:   o.Name(),
					Message:  fmt.Sprintf("complement #%d references %q which is not model object #%d", c.ObjN(), target.Name(), c.ObjN()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateAcyclic checks the complement-reference graph for cycles using
// DFS with 3-color marking. White (0) = unvisited, gray (1) = in current
// DFS path, black (2) = fully explored. Reaching a gray object closes a
// cycle.
func validateAcyclic(m *Model) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[*object.Object]int)
	var errs []ValidationError

	var visit func(o *object.Object) bool // returns true if cycle found
	visit = func(o *object.Object) bool {
		switch color[o] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				Object:   o.Name(),
				Message:  "cycle detected: object is part of a complement cycle",
				Severity: SeverityError,
			})
			return true
		}

		color[o] = gray
		for _, c := range rule.CompObjs(o.Rule()) {
			if t, ok := c.Object().(*object.Object); ok && t != nil {
				if visit(t) {
					return true
				}
			}
		}
		color[o] = black
		return false
	}

	for _, o := range m.objects {
		if color[o] == white {
			if visit(o) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}
	return errs
}

// ---------------------------------------------------------------------------
// Tier 3: advisory
// ---------------------------------------------------------------------------

func validateAdvisory(m *Model) []ValidationWarning {
	var warnings []ValidationWarning
	warnings = append(warnings, warnUnknownConstants(m)...)
	warnings = append(warnings, warnUnusedSurfaces(m)...)
	warnings = append(warnings, warnUnbounded(m)...)
	return warnings
}

// warnUnknownConstants flags trees that still contain Unknown, which
// classifies as outside everywhere.
func warnUnknownConstants(m *Model) []ValidationWarning {
	var warnings []ValidationWarning
	for _, o := range m.objects {
		n := 0
		rule.Walk(o.Rule(), func(r rule.Rule) bool {
			if bv, ok := r.(*rule.BoolValue); ok && bv.Status() == rule.StatusUnknown {
				n++
			}
			return true
		})
		if n > 0 {
			warnings = append(warnings, ValidationWarning{
				Object:  o.Name(),
				Message: fmt.Sprintf("rule contains %d Unknown constant(s)", n),
			})
		}
	}
	return warnings
}

// warnUnusedSurfaces flags surfaces no object refers to.
func warnUnusedSurfaces(m *Model) []ValidationWarning {
	used := make(map[int]bool)
	for _, o := range m.objects {
		for _, k := range o.Keys() {
			used[k] = true
		}
	}
	var warnings []ValidationWarning
	for _, k := range m.SurfaceKeys() {
		if !used[k] {
			warnings = append(warnings, ValidationWarning{
				Message: fmt.Sprintf("surface %d is never used", k),
			})
		}
	}
	return warnings
}

// warnUnbounded flags objects whose box could not be tightened at all
// inside the world box.
func warnUnbounded(m *Model) []ValidationWarning {
	var warnings []ValidationWarning
	for _, o := range m.objects {
		if aabb.Equal(o.BoundingBox(m.World), m.World, 1e-9) {
			warnings = append(warnings, ValidationWarning{
				Object:  o.Name(),
				Message: "bounding box fills the world box; the object may be unbounded",
			})
		}
	}
	return warnings
}
