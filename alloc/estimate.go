package alloc

import (
	"strings"

	"github.com/grittycedar/interdex/class"
)

// penaltyPattern is one entry of the ordered vtable-penalty suffix table.
// The list is checked in declaration order; the first matching suffix
// wins. This mirrors the original's kPatterns table exactly, including
// its ordering (ViewGroup; is checked after View; which is harmless under
// endswith semantics since the two suffixes are mutually exclusive, but
// the order is preserved for bug-compatibility with the reference tool).
type penaltyPattern struct {
	suffix  string
	penalty int64
}

var vtablePenaltyTable = []penaltyPattern{
	{"Layout;", 1500},
	{"View;", 1500},
	{"ViewGroup;", 1800},
	{"Activity;", 1500},
}

const (
	objectVtablePenalty int64 = 48
	methodSize          int64 = 52
	instanceFieldSize   int64 = 16
	vtableSlotSize      int64 = 4
)

// matchPenalty returns the first vtable penalty whose suffix matches
// name, and whether one was found.
func matchPenalty(name string) (int64, bool) {
	for _, p := range vtablePenaltyTable {
		if strings.HasSuffix(name, p.suffix) {
			return p.penalty, true
		}
	}
	return 0, false
}

// vtablePenalty computes the vtable-size guess for a non-interface class:
// its own descriptor is checked against the suffix table first; failing
// that, its super-class's descriptor is checked once. Neither match falls
// back to the flat 48-byte java/lang/Object estimate.
func vtablePenalty(name string, super class.Type) int64 {
	if p, ok := matchPenalty(name); ok {
		return p
	}
	if super != nil {
		if p, ok := matchPenalty(super.Name()); ok {
			return p
		}
	}
	return objectVtablePenalty
}

// EstimateLinearAlloc computes the fixed, reproducible per-class byte
// estimate used as one of the three admission budgets (spec §4.2). The
// formula is a deliberate bug-compatible approximation, not an accuracy
// target.
func EstimateLinearAlloc(c class.Class) int64 {
	var la int64

	vmethods := int64(len(c.VirtualMethods()))
	dmethods := int64(len(c.DirectMethods()))

	if !c.Interface() {
		la += vtablePenalty(c.Name(), c.Super())
		la += vmethods * vtableSlotSize
	}
	la += (dmethods + vmethods) * methodSize
	la += int64(len(c.InstanceFields())) * instanceFieldSize
	return la
}
