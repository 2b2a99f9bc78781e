package alloc

import (
	interdex "github.com/grittycedar/interdex"
	"github.com/grittycedar/interdex/class"
)

// RefSet tracks one bin's accumulated method-refs, field-refs, and
// linear-alloc estimate (spec §3's EmitTracker fields, factored out since
// the capacity model is independently testable).
type RefSet struct {
	MRefs         map[class.MethodRef]struct{}
	FRefs         map[class.FieldRef]struct{}
	LinearAllocBytes int64
}

// New returns an empty RefSet.
func New() *RefSet {
	return &RefSet{
		MRefs: make(map[class.MethodRef]struct{}),
		FRefs: make(map[class.FieldRef]struct{}),
	}
}

// Reset clears all accumulated state, as happens when a bin is sealed and
// a new one begins.
func (r *RefSet) Reset() {
	r.MRefs = make(map[class.MethodRef]struct{})
	r.FRefs = make(map[class.FieldRef]struct{})
	r.LinearAllocBytes = 0
}

// extraMethodCount returns how many of refs are not already present in have.
func extraMethodCount(have map[class.MethodRef]struct{}, refs []class.MethodRef) int {
	n := 0
	for _, r := range refs {
		if _, ok := have[r]; !ok {
			n++
		}
	}
	return n
}

func extraFieldCount(have map[class.FieldRef]struct{}, refs []class.FieldRef) int {
	n := 0
	for _, r := range refs {
		if _, ok := have[r]; !ok {
			n++
		}
	}
	return n
}

// WouldOverflow reports whether admitting a class contributing mrefs,
// frefs, and la bytes would overflow any of the three budgets in limits.
// The ref comparisons are strict '>=' on the admitted total (spec §4.1's
// Open Question): the largest a bin's ref set can grow to is cap-1.
func (r *RefSet) WouldOverflow(mrefs []class.MethodRef, frefs []class.FieldRef, la int64, limits interdex.Limits) bool {
	if r.LinearAllocBytes+la > limits.LinearAllocLimit {
		return true
	}
	if len(r.MRefs)+extraMethodCount(r.MRefs, mrefs) >= limits.MethodRefCap {
		return true
	}
	if len(r.FRefs)+extraFieldCount(r.FRefs, frefs) >= limits.FieldRefCap {
		return true
	}
	return false
}

// Admits whether the class fits without any overflow, using the
// admission predicate of spec §4.1: strict '<' on the post-admission
// totals. This is the mirror image of WouldOverflow and is provided for
// callers that want to phrase the check positively.
func (r *RefSet) Admits(mrefs []class.MethodRef, frefs []class.FieldRef, la int64, limits interdex.Limits) bool {
	return !r.WouldOverflow(mrefs, frefs, la, limits)
}

// Union folds mrefs, frefs, and la into the accumulated state. Idempotent
// per individual ref (adding the same ref twice is a no-op on the set),
// but la always accumulates — callers must not call Union twice for the
// same class.
func (r *RefSet) Union(mrefs []class.MethodRef, frefs []class.FieldRef, la int64) {
	for _, m := range mrefs {
		r.MRefs[m] = struct{}{}
	}
	for _, f := range frefs {
		r.FRefs[f] = struct{}{}
	}
	r.LinearAllocBytes += la
}
