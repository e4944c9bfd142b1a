package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/halfspace/pkg/aabb"
	"github.com/chazu/halfspace/pkg/model"
	"github.com/chazu/halfspace/pkg/rule"
	"github.com/chazu/halfspace/pkg/surface"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites model source into something zygomys reads:
// :radius becomes the string "__kw_radius", sdf-box becomes sdf_box, and
// ; comments become // comments. String literals pass through untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only when the hyphen sits between identifier characters; a
		// leading minus on a number is left alone.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a point or direction.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSurface is returned by the surface constructors. It carries only the
// key; the surface itself lives in the model.
type sexpSurface struct {
	key  int
	desc string
}

func (s *sexpSurface) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(surface %d %s)", s.key, s.desc)
}
func (s *sexpSurface) Type() *zygo.RegisteredType { return nil }

// sexpRule wraps a rule tree under construction. Builtins that consume a
// rule always take a clone, so a value bound with def can be reused
// without two trees sharing nodes.
type sexpRule struct {
	r rule.Rule
}

func (s *sexpRule) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(rule %q)", rule.String(s.r))
}
func (s *sexpRule) Type() *zygo.RegisteredType { return nil }

// sexpObject is returned by defobject.
type sexpObject struct {
	name string
	id   int
}

func (o *sexpObject) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(object %q #%d)", o.name, o.id)
}
func (o *sexpObject) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// vecArg returns keyword arg name as a vector, or def when absent.
func (pa kwArgs) vecArg(name string, def v3.Vec) (v3.Vec, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	return toVec3(v)
}

// floatArg returns keyword arg name as a number. It is required.
func (pa kwArgs) floatArg(name string) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return 0, fmt.Errorf("missing :%s", name)
	}
	return toFloat64(v)
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer. Floats are accepted when integral.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_true) and plain strings ("true").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toStatus converts :true, :false or :unknown.
func toStatus(s zygo.Sexp) (rule.Status, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return rule.StatusUnknown, fmt.Errorf("expected :true, :false or :unknown: %w", err)
	}
	switch name {
	case "true":
		return rule.StatusTrue, nil
	case "false":
		return rule.StatusFalse, nil
	case "unknown":
		return rule.StatusUnknown, nil
	}
	return rule.StatusUnknown, fmt.Errorf("invalid constant %q, expected true, false or unknown", name)
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toRule returns a private copy of the tree held by a sexpRule.
func toRule(s zygo.Sexp) (rule.Rule, error) {
	if r, ok := s.(*sexpRule); ok && r.r != nil {
		return r.r.Clone(), nil
	}
	return nil, fmt.Errorf("expected rule, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ruleOperands collects the operands of inter and union. A single list or
// array argument is expanded.
func ruleOperands(op string, args []zygo.Sexp) ([]rule.Rule, error) {
	if len(args) == 1 {
		if items, err := sexpListToSlice(args[0]); err == nil {
			args = items
		}
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("%s requires at least 2 operands, got %d", op, len(args))
	}
	out := make([]rule.Rule, 0, len(args))
	for i, a := range args {
		r, err := toRule(a)
		if err != nil {
			return nil, fmt.Errorf("%s: operand %d: %w", op, i+1, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all halfspace DSL builtins into a zygomys
// environment. The builtins operate on the provided Model, populating it
// during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, m *model.Model) {

	// defineSurface registers s under the positional key of args.
	defineSurface := func(fn string, pa kwArgs, build func() (surface.Surface, error)) (zygo.Sexp, error) {
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("%s requires a surface key as first argument", fn)
		}
		key, err := toInt(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: key: %w", fn, err)
		}
		s, err := build()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
		}
		if err := m.DefineSurface(key, s); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
		}
		return &sexpSurface{key: key, desc: s.String()}, nil
	}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (plane 1 :normal (vec3 0 0 1) :dist 0)
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		return defineSurface("plane", pa, func() (surface.Surface, error) {
			n, err := pa.vecArg("normal", v3.Vec{Z: 1})
			if err != nil {
				return nil, fmt.Errorf("normal: %w", err)
			}
			var d float64
			if _, ok := pa.kw["dist"]; ok {
				if d, err = pa.floatArg("dist"); err != nil {
					return nil, fmt.Errorf("dist: %w", err)
				}
			}
			return surface.NewPlane(n, d)
		})
	})

	// -----------------------------------------------------------------------
	// (sphere 3 :center (vec3 0 0 5) :radius 2)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		return defineSurface("sphere", pa, func() (surface.Surface, error) {
			c, err := pa.vecArg("center", v3.Vec{})
			if err != nil {
				return nil, fmt.Errorf("center: %w", err)
			}
			r, err := pa.floatArg("radius")
			if err != nil {
				return nil, fmt.Errorf("radius: %w", err)
			}
			return surface.NewSphere(c, r)
		})
	})

	// -----------------------------------------------------------------------
	// (cylinder 4 :center (vec3 0 0 0) :axis (vec3 0 0 1) :radius 1)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		return defineSurface("cylinder", pa, func() (surface.Surface, error) {
			c, err := pa.vecArg("center", v3.Vec{})
			if err != nil {
				return nil, fmt.Errorf("center: %w", err)
			}
			axis, err := pa.vecArg("axis", v3.Vec{Z: 1})
			if err != nil {
				return nil, fmt.Errorf("axis: %w", err)
			}
			r, err := pa.floatArg("radius")
			if err != nil {
				return nil, fmt.Errorf("radius: %w", err)
			}
			return surface.NewCylinder(c, axis, r)
		})
	})

	// -----------------------------------------------------------------------
	// (sdf-box 5 :size (vec3 2 2 2) :center (vec3 0 0 0))
	//
	// Registered with underscores; the preprocessor rewrites kebab-case.
	// -----------------------------------------------------------------------
	env.AddFunction("sdf_box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		return defineSurface("sdf-box", pa, func() (surface.Surface, error) {
			size, ok := pa.kw["size"]
			if !ok {
				return nil, fmt.Errorf("size: missing :size")
			}
			sz, err := toVec3(size)
			if err != nil {
				return nil, fmt.Errorf("size: %w", err)
			}
			c, err := pa.vecArg("center", v3.Vec{})
			if err != nil {
				return nil, fmt.Errorf("center: %w", err)
			}
			return surface.SDFBox(sz, c)
		})
	})

	// -----------------------------------------------------------------------
	// (sdf-sphere 6 :radius 1 :center (vec3 0 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("sdf_sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		return defineSurface("sdf-sphere", pa, func() (surface.Surface, error) {
			r, err := pa.floatArg("radius")
			if err != nil {
				return nil, fmt.Errorf("radius: %w", err)
			}
			c, err := pa.vecArg("center", v3.Vec{})
			if err != nil {
				return nil, fmt.Errorf("center: %w", err)
			}
			return surface.SDFSphere(r, c)
		})
	})

	// -----------------------------------------------------------------------
	// (sdf-cylinder 7 :height 4 :radius 1 :center (vec3 0 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("sdf_cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		return defineSurface("sdf-cylinder", pa, func() (surface.Surface, error) {
			h, err := pa.floatArg("height")
			if err != nil {
				return nil, fmt.Errorf("height: %w", err)
			}
			r, err := pa.floatArg("radius")
			if err != nil {
				return nil, fmt.Errorf("radius: %w", err)
			}
			c, err := pa.vecArg("center", v3.Vec{})
			if err != nil {
				return nil, fmt.Errorf("center: %w", err)
			}
			return surface.SDFCylinder(h, r, c)
		})
	})

	// -----------------------------------------------------------------------
	// (surf -2)
	// -----------------------------------------------------------------------
	env.AddFunction("surf", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("surf requires exactly 1 argument, got %d", len(args))
		}
		var signed int
		switch v := args[0].(type) {
		case *sexpSurface:
			signed = v.key
		default:
			k, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("surf: key: %w", err)
			}
			signed = k
		}
		key := signed
		if key < 0 {
			key = -key
		}
		s, ok := m.Surface(key)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("surf: no surface with key %d", key)
		}
		return &sexpRule{r: rule.NewSurfPoint(s, signed)}, nil
	})

	// -----------------------------------------------------------------------
	// (inter a b c) == ((a b) c)
	// -----------------------------------------------------------------------
	env.AddFunction("inter", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ops, err := ruleOperands("inter", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		acc := ops[0]
		for _, r := range ops[1:] {
			acc = rule.NewIntersection(acc, r)
		}
		return &sexpRule{r: acc}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b c) == ((a : b) : c)
	// -----------------------------------------------------------------------
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ops, err := ruleOperands("union", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		acc := ops[0]
		for _, r := range ops[1:] {
			acc = rule.NewUnion(acc, r)
		}
		return &sexpRule{r: acc}, nil
	})

	// -----------------------------------------------------------------------
	// (complement a)
	// -----------------------------------------------------------------------
	env.AddFunction("complement", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("complement requires exactly 1 argument, got %d", len(args))
		}
		r, err := toRule(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("complement: %w", err)
		}
		return &sexpRule{r: rule.NewCompGrp(r)}, nil
	})

	// -----------------------------------------------------------------------
	// (comp-obj "name")
	// -----------------------------------------------------------------------
	env.AddFunction("comp_obj", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("comp-obj requires exactly 1 argument, got %d", len(args))
		}
		var objName string
		switch v := args[0].(type) {
		case *sexpObject:
			objName = v.name
		default:
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("comp-obj: name: %w", err)
			}
			objName = s
		}
		o := m.Object(objName)
		if o == nil {
			return zygo.SexpNull, fmt.Errorf("comp-obj: no object named %q", objName)
		}
		return &sexpRule{r: rule.NewCompObj(o.ID(), o)}, nil
	})

	// -----------------------------------------------------------------------
	// (const :true)
	// -----------------------------------------------------------------------
	env.AddFunction("const", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("const requires exactly 1 argument, got %d", len(args))
		}
		st, err := toStatus(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("const: %w", err)
		}
		return &sexpRule{r: rule.NewBoolValue(st)}, nil
	})

	// -----------------------------------------------------------------------
	// (defobject "name" rule)
	// -----------------------------------------------------------------------
	env.AddFunction("defobject", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defobject requires a name and a rule expression")
		}
		objName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defobject: name: %w", err)
		}
		if objName == "" {
			return zygo.SexpNull, fmt.Errorf("defobject: name must not be empty")
		}
		if m.Object(objName) != nil {
			return zygo.SexpNull, fmt.Errorf("defobject: object %q already defined", objName)
		}
		r, err := toRule(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defobject: %w", err)
		}
		o := m.NewObject(objName)
		if err := o.SetRule(r); err != nil {
			return zygo.SexpNull, fmt.Errorf("defobject: %w", err)
		}
		return &sexpObject{name: objName, id: o.ID()}, nil
	})

	// -----------------------------------------------------------------------
	// (world :min (vec3 -10 -10 -10) :max (vec3 10 10 10))
	// -----------------------------------------------------------------------
	env.AddFunction("world", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		lo, err := pa.vecArg("min", m.World.Min)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("world: min: %w", err)
		}
		hi, err := pa.vecArg("max", m.World.Max)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("world: max: %w", err)
		}
		b := aabb.New(lo, hi)
		if aabb.Empty(b) {
			return zygo.SexpNull, fmt.Errorf("world: min must not exceed max")
		}
		m.World = b
		return zygo.SexpNull, nil
	})
}
