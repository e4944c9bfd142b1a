package rule

import (
	"errors"
	"fmt"

	"github.com/chazu/halfspace/pkg/surface"
)

// children returns the owned children of r in left-to-right order. Missing
// children are returned as nil.
func children(r Rule) []Rule {
	switch n := r.(type) {
	case *Intersection:
		return []Rule{n.a, n.b}
	case *Union:
		return []Rule{n.a, n.b}
	case *CompGrp:
		return []Rule{n.a}
	default:
		return nil
	}
}

// Walk visits r and its descendants in pre-order, left to right, using an
// explicit stack. Returning false from fn skips the node's children.
func Walk(r Rule, fn func(Rule) bool) {
	if r == nil {
		return
	}
	stack := []Rule{r}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		kids := children(n)
		for i := len(kids) - 1; i >= 0; i-- {
			if kids[i] != nil {
				stack = append(stack, kids[i])
			}
		}
	}
}

// Size returns the number of nodes in the tree.
func Size(r Rule) int {
	n := 0
	Walk(r, func(Rule) bool {
		n++
		return true
	})
	return n
}

// Depth returns the number of nodes on the longest root-to-leaf path.
func Depth(r Rule) int {
	if r == nil {
		return 0
	}
	type frame struct {
		n     Rule
		depth int
	}
	max := 0
	stack := []frame{{r, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.depth > max {
			max = f.depth
		}
		for _, c := range children(f.n) {
			if c != nil {
				stack = append(stack, frame{c, f.depth + 1})
			}
		}
	}
	return max
}

// SurfPoints returns every SurfPoint leaf, left to right. Unlike FindKey
// this descends into complement groups.
func SurfPoints(r Rule) []*SurfPoint {
	var out []*SurfPoint
	Walk(r, func(n Rule) bool {
		if sp, ok := n.(*SurfPoint); ok {
			out = append(out, sp)
		}
		return true
	})
	return out
}

// Surfaces returns one surface per key referenced by the tree, for
// building a SignMap with surface.Classify.
func Surfaces(r Rule) map[int]surface.Surface {
	out := make(map[int]surface.Surface)
	for _, sp := range SurfPoints(r) {
		if sp.surf == nil {
			continue
		}
		if _, ok := out[sp.keyN]; !ok {
			out[sp.keyN] = sp.surf
		}
	}
	return out
}

// CompObjs returns every CompObj leaf, left to right.
func CompObjs(r Rule) []*CompObj {
	var out []*CompObj
	Walk(r, func(n Rule) bool {
		if c, ok := n.(*CompObj); ok {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Validate checks that the tree is well formed: every binary and unary
// node is complete and no node is reachable twice. All findings are
// joined into the returned error.
func Validate(r Rule) error {
	if r == nil {
		return fmt.Errorf("%w: empty tree", ErrIncomplete)
	}
	var errs []error
	seen := make(map[Rule]bool)
	Walk(r, func(n Rule) bool {
		if seen[n] {
			errs = append(errs, fmt.Errorf("%w: %s node %p", ErrSharedNode, n.Kind(), n))
			return false
		}
		seen[n] = true
		for i, c := range children(n) {
			if c == nil {
				errs = append(errs, fmt.Errorf("%w: %s node %p missing child %d", ErrIncomplete, n.Kind(), n, i))
			}
		}
		return true
	})
	return errors.Join(errs...)
}
