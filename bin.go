package interdex

import "github.com/grittycedar/interdex/class"

// Counters accumulates the run-local statistics named in spec §6/§9. It
// deliberately lives inside a struct threaded through the run instead of
// as package-level state — the original implementation's globals are
// diagnostic only, and the Design Notes call out that a Go port should
// carry them in a run-local context object.
type Counters struct {
	SecondaryDexCount int
	ColdstartDexes    int
	ExtendedSetDexes  int
	ScrollDexes       int
	NumMixedModeDexes int

	ColdStartSetDexCount int
	ScrollSetDexCount    int

	SkippedInPrimary   int
	SkippedInSecondary int

	// Stats mirrors the original's global_* class/ref counters, updated
	// once per admitted class and once per sealed bin.
	Stats Stats
}

// Stats mirrors the original implementation's global_cls_cnt/global_methref_cnt/
// etc. counters (see SPEC_FULL.md's Supplemented Features section).
type Stats struct {
	ClassCount     int
	MethodRefCount int
	FieldRefCount  int
	DirectMethods  int
	StaticMethods  int
	VirtualMethods int
}

// UpdateClassStats folds one admitted class's direct/static/virtual method
// counts into s. Called once per class at admission time, mirroring
// update_class_stats in original_source.
func UpdateClassStats(s *Stats, c class.Class) {
	s.DirectMethods += len(c.DirectMethods())
	s.VirtualMethods += len(c.VirtualMethods())
	for _, m := range c.DirectMethods() {
		if m.Static() {
			s.StaticMethods++
		}
	}
}

// UpdateDexStats folds one sealed bin's final class/ref counts into s.
// Called once per flush, mirroring update_dex_stats: unlike
// UpdateClassStats, these are bin-level unique counts, not per-class
// contributions summed across the whole run.
func UpdateDexStats(s *Stats, classCount, methodRefCount, fieldRefCount int) {
	s.ClassCount += classCount
	s.MethodRefCount += methodRefCount
	s.FieldRefCount += fieldRefCount
}
