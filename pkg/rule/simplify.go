package rule

// Simplify rewrites the tree rooted at r until no rule applies and returns
// the new root, detached from any parent. r itself may be consumed.
func Simplify(r Rule) Rule {
	for r != nil && r.Simplify() == Replace {
		next := r.replacement()
		release(r, next)
		r = next
	}
	if r != nil {
		r.setParent(nil)
	}
	return r
}

// simplifyChild simplifies child and installs its replacement through set
// for as long as it answers Replace. It reports whether anything changed.
func simplifyChild(child Rule, set func(Rule)) bool {
	changed := false
	for child != nil {
		res := child.Simplify()
		if res == Reduced {
			changed = true
		}
		if res != Replace {
			return changed
		}
		child = child.replacement()
		set(child)
		changed = true
	}
	return changed
}

// statusOf returns the constant held by r when r is a BoolValue.
func statusOf(r Rule) (Status, bool) {
	bv, ok := r.(*BoolValue)
	if !ok || bv == nil {
		return StatusUnknown, false
	}
	return bv.status, true
}

// surfPair returns a and b when both are SurfPoints over the same key.
func surfPair(a, b Rule) (*SurfPoint, *SurfPoint, bool) {
	pa, okA := a.(*SurfPoint)
	pb, okB := b.(*SurfPoint)
	if !okA || !okB || pa == nil || pb == nil || pa.keyN != pb.keyN {
		return nil, nil, false
	}
	return pa, pb, true
}

// soleChild returns the only non-nil argument, or nil when both or
// neither are set.
func soleChild(a, b Rule) Rule {
	switch {
	case a != nil && b == nil:
		return a
	case a == nil && b != nil:
		return b
	default:
		return nil
	}
}
