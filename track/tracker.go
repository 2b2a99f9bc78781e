package track

import (
	"github.com/grittycedar/interdex/alloc"
	"github.com/grittycedar/interdex/class"
)

// Tracker accumulates one bin's contents while it fills, plus the run-wide
// bookkeeping (Lookup, Emitted) that outlives any single bin. A Driver owns
// exactly one Tracker per output stream (the main tracker, and — when
// normal_primary_dex is not set — a separate one for the primary dex).
type Tracker struct {
	// Outs is the ordered class list of the bin currently being filled.
	Outs []class.Class
	// Refs is the current bin's accumulated ref-set and linear-alloc total.
	Refs *alloc.RefSet

	// Lookup resolves a descriptor name to its class across the whole run.
	// Shared by reference across every Tracker in a run; never reset.
	Lookup map[string]class.Class
	// Emitted is the set of classes placed into any bin so far, across the
	// whole run. Shared by reference; never reset.
	Emitted map[class.Class]struct{}
}

// New returns a Tracker sharing the given run-wide lookup and emitted-set
// with its siblings.
func New(lookup map[string]class.Class, emitted map[class.Class]struct{}) *Tracker {
	return &Tracker{
		Outs:    nil,
		Refs:    alloc.New(),
		Lookup:  lookup,
		Emitted: emitted,
	}
}

// StartNewBin clears per-bin state (Outs, Refs) while retaining the
// run-wide Lookup and Emitted maps, per spec §4.4.
func (t *Tracker) StartNewBin() {
	t.Outs = nil
	t.Refs.Reset()
}

// Admit records c as placed into the current bin, folding mrefs, frefs, and
// la into the running ref-set. It is a no-op if c has already been emitted
// in any bin this run, matching spec §4.4's idempotence requirement — a
// class reachable through more than one plugin or reference path is never
// placed twice.
func (t *Tracker) Admit(c class.Class, mrefs []class.MethodRef, frefs []class.FieldRef, la int64) {
	if _, already := t.Emitted[c]; already {
		return
	}
	t.Outs = append(t.Outs, c)
	t.Refs.Union(mrefs, frefs, la)
	t.Emitted[c] = struct{}{}
}

// Admitted reports whether c has already been emitted in any bin this run.
func (t *Tracker) Admitted(c class.Class) bool {
	_, ok := t.Emitted[c]
	return ok
}
